// Package engine defines the contract between playback sessions and the
// external media node that performs search, decoding and streaming.
package engine

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/SamOutabrae/Sprocket-music/internal/music/track"
)

// ErrNoResults is returned by Search when the query matches nothing.
var ErrNoResults = errors.New("no matching tracks")

// EndReason reports why a track stopped playing on the media node.
type EndReason string

const (
	ReasonFinished   EndReason = "finished"
	ReasonStopped    EndReason = "stopped"
	ReasonReplaced   EndReason = "replaced"
	ReasonLoadFailed EndReason = "loadFailed"
	ReasonCleanup    EndReason = "cleanup"
)

// ShouldAdvance reports whether this end reason moves the queue forward on
// its own. A user-initiated stop keeps the queue where it is.
func (r EndReason) ShouldAdvance() bool {
	return r == ReasonFinished || r == ReasonLoadFailed
}

// Event is an asynchronous notification from the media node.
type Event struct {
	GuildID string
	Track   *track.Track
	Reason  EndReason
}

// Engine is the outbound playback interface. Implementations own the voice
// connection and the audio pipeline; sessions only drive state.
type Engine interface {
	// Connect joins the given voice channel. Idempotent when already joined.
	Connect(ctx context.Context, guildID, channelID string) error

	// Disconnect leaves the voice channel for the guild.
	Disconnect(ctx context.Context, guildID string) error

	// Search resolves a query (or direct URL) to an ordered list of tracks.
	// Returns ErrNoResults when nothing matches.
	Search(ctx context.Context, query string) ([]track.Track, error)

	// Play loads and starts a track at the given volume (0-100).
	Play(ctx context.Context, guildID string, t track.Track, volume int) error

	// Pause suspends or resumes the current track.
	Pause(ctx context.Context, guildID string, paused bool) error

	// Stop ends the current track. The node reports the end via Events.
	Stop(ctx context.Context, guildID string) error

	// Position reports the live playback position of the current track.
	// The second return value is false when nothing is playing.
	Position(guildID string) (time.Duration, bool)

	// Events delivers track-end notifications.
	Events() <-chan Event
}
