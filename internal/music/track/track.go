// Package track defines the playable track value type and the FIFO queue.
package track

import "time"

// Track is a single playable audio item. Immutable once created.
type Track struct {
	Title      string
	URI        string
	Identifier string // source-specific ID, e.g. a YouTube video ID
	Duration   time.Duration
}

// Queue is an ordered FIFO sequence of pending tracks. It is not safe for
// concurrent use; the owning session serializes access.
type Queue struct {
	tracks []Track
}

// Enqueue appends a track to the tail of the queue.
func (q *Queue) Enqueue(t Track) {
	q.tracks = append(q.tracks, t)
}

// Next removes and returns the head of the queue. The second return value is
// false when the queue is empty.
func (q *Queue) Next() (Track, bool) {
	if len(q.tracks) == 0 {
		return Track{}, false
	}
	t := q.tracks[0]
	q.tracks = q.tracks[1:]
	return t, true
}

// Tracks returns a copy of the pending tracks in playback order.
func (q *Queue) Tracks() []Track {
	out := make([]Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}

// Len returns the number of pending tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// Clear discards all pending tracks.
func (q *Queue) Clear() {
	q.tracks = nil
}
