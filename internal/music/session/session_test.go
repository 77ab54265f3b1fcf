package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamOutabrae/Sprocket-music/internal/music/engine"
	"github.com/SamOutabrae/Sprocket-music/internal/music/track"
)

// fakeEngine resolves every query to a single track named after it, so
// tests can tell queued tracks apart.
type fakeEngine struct {
	mu          sync.Mutex
	noResults   bool
	connects    []string
	disconnects int
	played      []track.Track
	pauses      []bool
	stops       int
	events      chan engine.Event
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{events: make(chan engine.Event, 4)}
}

func (f *fakeEngine) Connect(_ context.Context, _, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects = append(f.connects, channelID)
	return nil
}

func (f *fakeEngine) Disconnect(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	return nil
}

func (f *fakeEngine) Search(_ context.Context, query string) ([]track.Track, error) {
	if f.noResults {
		return nil, nil
	}
	return []track.Track{{
		Title:      query,
		URI:        "https://tracks/" + query,
		Identifier: query,
		Duration:   200 * time.Second,
	}}, nil
}

func (f *fakeEngine) Play(_ context.Context, _ string, t track.Track, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, t)
	return nil
}

func (f *fakeEngine) Pause(_ context.Context, _ string, paused bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses = append(f.pauses, paused)
	return nil
}

func (f *fakeEngine) Stop(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeEngine) Position(string) (time.Duration, bool) { return 0, false }

func (f *fakeEngine) Events() <-chan engine.Event { return f.events }

func (f *fakeEngine) playedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.played)
}

type notification struct {
	channelID string
	text      string
	track     track.Track
}

type fakeNotifier struct {
	mu     sync.Mutex
	tracks []notification
	texts  []notification
}

func (f *fakeNotifier) NotifyTrack(channelID string, t track.Track) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracks = append(f.tracks, notification{channelID: channelID, track: t})
}

func (f *fakeNotifier) NotifyText(channelID, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, notification{channelID: channelID, text: msg})
}

func newTestSession() (*Session, *fakeEngine, *fakeNotifier) {
	eng := newFakeEngine()
	notif := &fakeNotifier{}
	return New("guild-1", eng, notif, 30, zerolog.Nop()), eng, notif
}

func play(t *testing.T, s *Session, query string) PlayResult {
	t.Helper()
	res, err := s.Play(context.Background(), PlayRequest{
		Query:        query,
		VoiceChannel: "vc-1",
		TextChannel:  "tc-1",
	})
	require.NoError(t, err)
	return res
}

func TestPlayConnectsAndStartsPlayback(t *testing.T) {
	s, eng, _ := newTestSession()

	res := play(t, s, "first song")

	assert.Equal(t, OutcomeNowPlaying, res.Outcome)
	assert.Equal(t, "first song", res.Track.Title)
	assert.Equal(t, []string{"vc-1"}, eng.connects)
	assert.Equal(t, 1, eng.playedCount())
	assert.True(t, s.Connected())
	assert.Equal(t, "tc-1", s.BoundChannel())

	current, ok := s.NowPlaying()
	require.True(t, ok)
	assert.Equal(t, "first song", current.Title)
	assert.Empty(t, s.QueueSnapshot())
	assert.False(t, s.LastAction().IsZero())
}

func TestPlayQueuesBehindCurrentTrack(t *testing.T) {
	s, eng, _ := newTestSession()

	play(t, s, "first")
	res := play(t, s, "second")

	assert.Equal(t, OutcomeQueued, res.Outcome)
	assert.Equal(t, "second", res.Track.Title)
	assert.Equal(t, 1, eng.playedCount(), "queued track must not start")
	assert.Equal(t, []string{"vc-1"}, eng.connects, "connection is reused")

	pending := s.QueueSnapshot()
	require.Len(t, pending, 1)
	assert.Equal(t, "second", pending[0].Title)
}

func TestPlayNoResults(t *testing.T) {
	s, eng, _ := newTestSession()
	eng.noResults = true

	_, err := s.Play(context.Background(), PlayRequest{
		Query:        "nothing",
		VoiceChannel: "vc-1",
		TextChannel:  "tc-1",
	})

	assert.ErrorIs(t, err, engine.ErrNoResults)
	_, ok := s.NowPlaying()
	assert.False(t, ok)
	assert.Empty(t, s.QueueSnapshot())
	assert.True(t, s.LastAction().IsZero(), "failed command must not count as activity")
}

func TestPlayRejectsOtherVoiceChannel(t *testing.T) {
	s, eng, _ := newTestSession()
	play(t, s, "first")

	_, err := s.Play(context.Background(), PlayRequest{
		Query:        "second",
		VoiceChannel: "vc-other",
		TextChannel:  "tc-1",
	})

	assert.ErrorIs(t, err, ErrChannelMismatch)
	assert.Equal(t, 1, eng.playedCount())
	assert.Empty(t, s.QueueSnapshot())
}

func TestPauseToggleTwiceReturnsToPlaying(t *testing.T) {
	s, eng, _ := newTestSession()
	play(t, s, "song")

	res, err := s.PauseToggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomePaused, res.Outcome)
	assert.True(t, s.Paused())

	res, err = s.PauseToggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeResumed, res.Outcome)
	assert.Equal(t, "song", res.Track.Title)
	assert.False(t, s.Paused())

	assert.Equal(t, []bool{true, false}, eng.pauses)
}

func TestBarePlayResumesWhenPaused(t *testing.T) {
	s, _, _ := newTestSession()
	play(t, s, "song")

	_, err := s.PauseToggle(context.Background())
	require.NoError(t, err)

	res := play(t, s, "")
	assert.Equal(t, OutcomeResumed, res.Outcome)
	assert.False(t, s.Paused())
}

func TestPauseRequiresConnection(t *testing.T) {
	s, _, _ := newTestSession()

	_, err := s.PauseToggle(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestPauseRequiresCurrentTrack(t *testing.T) {
	s, _, _ := newTestSession()
	play(t, s, "song")
	require.NoError(t, s.Stop(context.Background()))

	_, err := s.PauseToggle(context.Background())
	assert.ErrorIs(t, err, ErrNothingPlaying)
}

func TestStopKeepsQueueAndConnection(t *testing.T) {
	s, eng, notif := newTestSession()
	play(t, s, "first")
	play(t, s, "second")

	require.NoError(t, s.Stop(context.Background()))

	assert.Equal(t, 1, eng.stops)
	assert.True(t, s.Connected())
	_, ok := s.NowPlaying()
	assert.False(t, ok)
	assert.Len(t, s.QueueSnapshot(), 1, "stop must not clear the queue")

	// The node reports the stop back as a track end; it must not restart
	// the queue.
	s.HandleTrackEnd(context.Background(), engine.ReasonStopped)
	assert.Equal(t, 1, eng.playedCount())
	assert.Empty(t, notif.tracks)
}

func TestSkipRoutesNotificationToRequester(t *testing.T) {
	s, eng, notif := newTestSession()
	play(t, s, "first")
	play(t, s, "second")

	var toRequester []track.Track
	res, err := s.Skip(context.Background(), func(next track.Track) {
		toRequester = append(toRequester, next)
	})
	require.NoError(t, err)
	assert.False(t, res.QueueEmpty)
	assert.Equal(t, 1, eng.stops)

	// The engine confirms the early end; only then does the queue advance.
	s.HandleTrackEnd(context.Background(), engine.ReasonStopped)

	assert.Equal(t, 2, eng.playedCount())
	require.Len(t, toRequester, 1)
	assert.Equal(t, "second", toRequester[0].Title)
	assert.Empty(t, notif.tracks, "bound channel must not be notified on skip")

	current, ok := s.NowPlaying()
	require.True(t, ok)
	assert.Equal(t, "second", current.Title)
}

func TestSkipWithEmptyQueueDegradesToStop(t *testing.T) {
	s, eng, _ := newTestSession()
	play(t, s, "only song")

	res, err := s.Skip(context.Background(), func(track.Track) {
		t.Fatal("no next track must be announced")
	})
	require.NoError(t, err)

	assert.True(t, res.QueueEmpty)
	assert.Equal(t, 1, eng.stops)
	_, ok := s.NowPlaying()
	assert.False(t, ok)
	assert.True(t, s.Connected())
}

func TestNaturalEndAdvancesAndNotifiesBoundChannel(t *testing.T) {
	s, eng, notif := newTestSession()
	play(t, s, "first")
	play(t, s, "second")

	s.HandleTrackEnd(context.Background(), engine.ReasonFinished)

	assert.Equal(t, 2, eng.playedCount())
	require.Len(t, notif.tracks, 1)
	assert.Equal(t, "tc-1", notif.tracks[0].channelID)
	assert.Equal(t, "second", notif.tracks[0].track.Title)
}

func TestNaturalEndWithEmptyQueueIsSilent(t *testing.T) {
	s, _, notif := newTestSession()
	play(t, s, "only song")

	s.HandleTrackEnd(context.Background(), engine.ReasonFinished)

	_, ok := s.NowPlaying()
	assert.False(t, ok)
	assert.True(t, s.Connected())
	assert.Empty(t, notif.tracks)
	assert.Empty(t, notif.texts)
}

func TestLeaveDiscardsEverything(t *testing.T) {
	s, eng, _ := newTestSession()
	play(t, s, "first")
	play(t, s, "second")

	require.NoError(t, s.Leave(context.Background()))

	assert.Equal(t, 1, eng.disconnects)
	assert.False(t, s.Connected())
	assert.Empty(t, s.QueueSnapshot())
	assert.True(t, s.LastAction().IsZero())

	// A fresh play re-establishes the session from scratch.
	res := play(t, s, "third")
	assert.Equal(t, OutcomeNowPlaying, res.Outcome)
	assert.Equal(t, []string{"vc-1", "vc-1"}, eng.connects)
}

func TestLeaveRequiresConnection(t *testing.T) {
	s, _, _ := newTestSession()
	assert.ErrorIs(t, s.Leave(context.Background()), ErrNotConnected)
}

func TestLastActionNeverDecreases(t *testing.T) {
	s, _, _ := newTestSession()

	var stamps []time.Time
	record := func() { stamps = append(stamps, s.LastAction()) }

	play(t, s, "first")
	record()
	play(t, s, "second")
	record()
	_, err := s.PauseToggle(context.Background())
	require.NoError(t, err)
	record()
	s.Touch()
	record()
	require.NoError(t, s.Stop(context.Background()))
	record()

	for i := 1; i < len(stamps); i++ {
		assert.False(t, stamps[i].Before(stamps[i-1]), "stamp %d went backwards", i)
	}
}

func TestExpireIfIdle(t *testing.T) {
	ctx := context.Background()
	timeout := 15 * time.Minute

	t.Run("idle past timeout expires", func(t *testing.T) {
		s, eng, notif := newTestSession()
		play(t, s, "song")
		require.NoError(t, s.Stop(ctx))

		expired := s.ExpireIfIdle(ctx, time.Now().Add(16*time.Minute), timeout, "gone")
		assert.True(t, expired)
		assert.Equal(t, 1, eng.disconnects)
		assert.False(t, s.Connected())
		assert.True(t, s.LastAction().IsZero())
		require.Len(t, notif.texts, 1)
		assert.Equal(t, "tc-1", notif.texts[0].channelID)
		assert.Equal(t, "gone", notif.texts[0].text)
	})

	t.Run("actively playing never expires", func(t *testing.T) {
		s, eng, _ := newTestSession()
		play(t, s, "song")

		expired := s.ExpireIfIdle(ctx, time.Now().Add(16*time.Minute), timeout, "gone")
		assert.False(t, expired)
		assert.Equal(t, 0, eng.disconnects)
		assert.True(t, s.Connected())
	})

	t.Run("paused sessions do expire", func(t *testing.T) {
		s, _, _ := newTestSession()
		play(t, s, "song")
		_, err := s.PauseToggle(ctx)
		require.NoError(t, err)

		expired := s.ExpireIfIdle(ctx, time.Now().Add(16*time.Minute), timeout, "gone")
		assert.True(t, expired)
	})

	t.Run("recent activity is kept", func(t *testing.T) {
		s, _, _ := newTestSession()
		play(t, s, "song")
		require.NoError(t, s.Stop(ctx))

		expired := s.ExpireIfIdle(ctx, time.Now().Add(10*time.Minute), timeout, "gone")
		assert.False(t, expired)
		assert.True(t, s.Connected())
	})

	t.Run("never-active session is skipped", func(t *testing.T) {
		s, eng, _ := newTestSession()

		expired := s.ExpireIfIdle(ctx, time.Now().Add(time.Hour), timeout, "gone")
		assert.False(t, expired)
		assert.Equal(t, 0, eng.disconnects)
	})
}
