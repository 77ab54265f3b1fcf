// Package session implements the per-guild playback session controller: the
// state machine tracking the voice connection, current track, queue and
// inactivity, and serializing commands against that shared state.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SamOutabrae/Sprocket-music/internal/music/engine"
	"github.com/SamOutabrae/Sprocket-music/internal/music/track"
)

var (
	ErrNotConnected    = errors.New("not connected to a voice channel")
	ErrChannelMismatch = errors.New("user is in a different voice channel")
	ErrNothingPlaying  = errors.New("nothing is playing")
)

// errNoop tells do() that an operation was ignored and must not refresh the
// activity timestamp.
var errNoop = errors.New("no-op")

// Notifier delivers unsolicited playback notifications to a text channel.
type Notifier interface {
	NotifyTrack(channelID string, t track.Track)
	NotifyText(channelID string, msg string)
}

// PlayRequest carries the context of a play command.
type PlayRequest struct {
	Query        string // empty means "resume"
	VoiceChannel string // requester's current voice channel
	TextChannel  string // channel the command was issued from
}

// Outcome distinguishes the user-visible results of play and pause commands.
type Outcome int

const (
	OutcomeNowPlaying Outcome = iota
	OutcomeQueued
	OutcomeResumed
	OutcomePaused
)

// PlayResult reports what a play or pause-toggle command did.
type PlayResult struct {
	Outcome Outcome
	Track   track.Track
}

// SkipResult reports what a skip command did.
type SkipResult struct {
	// QueueEmpty is set when nothing followed the current track, in which
	// case the skip degraded to a stop.
	QueueEmpty bool
}

// Session is the playback controller for a single guild. All exported
// methods are safe for concurrent use; commands, the track-end handler and
// the inactivity monitor all serialize on the same mutex.
type Session struct {
	mu sync.Mutex

	id      string
	guildID string
	engine  engine.Engine
	notify  Notifier
	volume  int
	log     zerolog.Logger

	voiceChannel string // empty means disconnected
	boundChannel string // text channel for unsolicited notifications
	current      *track.Track
	queue        track.Queue
	paused       bool
	lastAction   time.Time
	skipNotify   func(track.Track) // pending skip requester, consumed on advance
}

// New creates a session for a guild. Sessions are created lazily on the
// first play command and discarded on leave or inactivity timeout.
func New(guildID string, eng engine.Engine, notify Notifier, volume int, log zerolog.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		id:      id,
		guildID: guildID,
		engine:  eng,
		notify:  notify,
		volume:  volume,
		log: log.With().
			Str("component", "session").
			Str("guild", guildID).
			Str("session", id[:8]).
			Logger(),
	}
}

// do serializes a playback-affecting operation and refreshes the activity
// timestamp when it succeeds. Every state-mutating command funnels through
// here so the refresh is applied in exactly one place.
func (s *Session) do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := fn()
	if errors.Is(err, errNoop) {
		return nil
	}
	if err != nil {
		return err
	}
	s.lastAction = time.Now()
	return nil
}

// Play handles the play command: connect lazily, resolve the query, enqueue
// and start playback when idle. An empty query is treated as a resume
// request and delegates to the pause toggle.
func (s *Session) Play(ctx context.Context, req PlayRequest) (PlayResult, error) {
	var res PlayResult
	err := s.do(func() error {
		if s.boundChannel == "" {
			s.boundChannel = req.TextChannel
		}

		if s.voiceChannel != "" && s.voiceChannel != req.VoiceChannel {
			return ErrChannelMismatch
		}

		if req.Query == "" {
			out, err := s.toggleLocked(ctx)
			if err != nil {
				return err
			}
			res = PlayResult{Outcome: out, Track: *s.current}
			return nil
		}

		if s.voiceChannel == "" {
			if req.VoiceChannel == "" {
				return ErrNotConnected
			}
			if err := s.engine.Connect(ctx, s.guildID, req.VoiceChannel); err != nil {
				return err
			}
			s.voiceChannel = req.VoiceChannel
			s.log.Info().Str("channel", req.VoiceChannel).Msg("joined voice channel")
		}

		tracks, err := s.engine.Search(ctx, req.Query)
		if err != nil {
			return err
		}
		if len(tracks) == 0 {
			return engine.ErrNoResults
		}

		t := tracks[0]
		s.queue.Enqueue(t)

		if s.current != nil {
			s.log.Debug().Str("track", t.Title).Int("queued", s.queue.Len()).Msg("track added to queue")
			res = PlayResult{Outcome: OutcomeQueued, Track: t}
			return nil
		}

		next, _ := s.queue.Next()
		if err := s.engine.Play(ctx, s.guildID, next, s.volume); err != nil {
			return err
		}
		cur := next
		s.current = &cur
		s.paused = false
		s.log.Info().Str("track", cur.Title).Msg("now playing")
		res = PlayResult{Outcome: OutcomeNowPlaying, Track: cur}
		return nil
	})
	return res, err
}

// PauseToggle flips between playing and paused, reporting which direction.
func (s *Session) PauseToggle(ctx context.Context) (PlayResult, error) {
	var res PlayResult
	err := s.do(func() error {
		out, err := s.toggleLocked(ctx)
		if err != nil {
			return err
		}
		res = PlayResult{Outcome: out, Track: *s.current}
		return nil
	})
	return res, err
}

func (s *Session) toggleLocked(ctx context.Context) (Outcome, error) {
	if s.voiceChannel == "" {
		return 0, ErrNotConnected
	}
	if s.current == nil {
		return 0, ErrNothingPlaying
	}
	if s.paused {
		if err := s.engine.Pause(ctx, s.guildID, false); err != nil {
			return 0, err
		}
		s.paused = false
		return OutcomeResumed, nil
	}
	if err := s.engine.Pause(ctx, s.guildID, true); err != nil {
		return 0, err
	}
	s.paused = true
	return OutcomePaused, nil
}

// Stop halts playback. The queue and the voice connection are kept.
func (s *Session) Stop(ctx context.Context) error {
	return s.do(func() error {
		if s.voiceChannel == "" {
			return ErrNotConnected
		}
		// Settle state before the node reports the stop back to us, so the
		// resulting track-end event finds nothing to advance.
		s.current = nil
		s.paused = false
		return s.engine.Stop(ctx, s.guildID)
	})
}

// Skip ends the current track early. When nothing follows, it degrades to a
// stop. The notify callback is remembered so the next-track notification is
// routed to the requester instead of the bound channel.
func (s *Session) Skip(ctx context.Context, notify func(track.Track)) (SkipResult, error) {
	var res SkipResult
	err := s.do(func() error {
		if s.voiceChannel == "" {
			return ErrNotConnected
		}
		if s.current == nil || s.queue.Len() == 0 {
			s.current = nil
			s.paused = false
			res.QueueEmpty = true
			return s.engine.Stop(ctx, s.guildID)
		}
		s.skipNotify = notify
		return s.engine.Stop(ctx, s.guildID)
	})
	return res, err
}

// Leave disconnects and discards all playback state. A subsequent play
// command re-establishes the session from scratch.
func (s *Session) Leave(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.voiceChannel == "" {
		return ErrNotConnected
	}
	s.voiceChannel = ""
	s.current = nil
	s.paused = false
	s.queue.Clear()
	s.skipNotify = nil
	s.lastAction = time.Time{}
	s.log.Info().Msg("left voice channel")
	return s.engine.Disconnect(ctx, s.guildID)
}

// HandleTrackEnd reacts to a track-end event from the media node. On a
// natural end (or a pending skip) the next queued track is started and the
// notification routed to the skip requester or the bound channel. With an
// empty queue the session falls to idle silently.
func (s *Session) HandleTrackEnd(ctx context.Context, reason engine.EndReason) {
	err := s.do(func() error {
		skip := s.skipNotify
		s.skipNotify = nil

		if !reason.ShouldAdvance() && skip == nil {
			return errNoop
		}
		if s.voiceChannel == "" {
			return errNoop
		}

		s.current = nil
		s.paused = false

		next, ok := s.queue.Next()
		if !ok {
			// Idle now; no notification for the silent stop.
			return nil
		}
		if err := s.engine.Play(ctx, s.guildID, next, s.volume); err != nil {
			return err
		}
		cur := next
		s.current = &cur
		s.log.Info().Str("track", cur.Title).Str("reason", string(reason)).Msg("advanced to next track")

		if skip != nil {
			skip(cur)
		} else if s.boundChannel != "" {
			s.notify.NotifyTrack(s.boundChannel, cur)
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to advance queue")
	}
}

// ExpireIfIdle disconnects the session when it has been idle for longer
// than timeout, posting notice to the bound channel. Reports whether the
// session expired. Sessions that never became active, are disconnected, or
// are actively playing are never candidates.
func (s *Session) ExpireIfIdle(ctx context.Context, now time.Time, timeout time.Duration, notice string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastAction.IsZero() {
		return false
	}
	if s.voiceChannel == "" {
		return false
	}
	if s.current != nil && !s.paused {
		return false
	}
	if now.Sub(s.lastAction) <= timeout {
		return false
	}

	if err := s.engine.Disconnect(ctx, s.guildID); err != nil {
		s.log.Error().Err(err).Msg("inactivity disconnect failed")
	}
	s.voiceChannel = ""
	s.current = nil
	s.paused = false
	s.queue.Clear()
	s.skipNotify = nil
	s.lastAction = time.Time{}

	if s.boundChannel != "" {
		s.notify.NotifyText(s.boundChannel, notice)
	}
	s.log.Info().Msg("session expired after inactivity")
	return true
}

// Touch refreshes the activity timestamp without changing playback state.
// Read-only commands (queue, now-playing) count as activity too.
func (s *Session) Touch() {
	_ = s.do(func() error { return nil })
}

// Connected reports whether the session owns a voice connection.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voiceChannel != ""
}

// NowPlaying returns the current track. The second return value is false
// when nothing is loaded.
func (s *Session) NowPlaying() (track.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return track.Track{}, false
	}
	return *s.current, true
}

// Paused reports whether playback is suspended.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// QueueSnapshot returns the pending tracks in playback order.
func (s *Session) QueueSnapshot() []track.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Tracks()
}

// LastAction returns the time of the last playback-affecting event, or the
// zero time when the session was never active.
func (s *Session) LastAction() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAction
}

// BoundChannel returns the text channel bound for notifications.
func (s *Session) BoundChannel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundChannel
}
