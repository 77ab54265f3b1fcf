package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/SamOutabrae/Sprocket-music/internal/music/track"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		expected string
	}{
		{name: "zero", d: 0, expected: "0:00"},
		{name: "seconds only", d: 7 * time.Second, expected: "0:07"},
		{name: "over a minute", d: 65 * time.Second, expected: "1:05"},
		{name: "long track", d: 200 * time.Second, expected: "3:20"},
		{name: "over an hour", d: 61 * time.Minute, expected: "61:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.d))
		})
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name      string
		position  time.Duration
		duration  time.Duration
		markerIdx int
	}{
		{name: "at start", position: 0, duration: 3 * time.Minute, markerIdx: 0},
		{name: "halfway", position: 90 * time.Second, duration: 3 * time.Minute, markerIdx: 15},
		{name: "near end", position: 179 * time.Second, duration: 180 * time.Second, markerIdx: 29},
		{name: "zero duration", position: 10 * time.Second, duration: 0, markerIdx: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := ProgressBar(tt.position, tt.duration)

			// Strip the backticks and the leading "m:ss " stamp.
			inner := bar[1 : len(bar)-1]
			start := len(FormatDuration(tt.position)) + 1
			line := inner[start : start+progressWidth]

			for i, c := range line {
				if i == tt.markerIdx {
					assert.Equal(t, '|', c, "marker at %d", i)
				} else {
					assert.Equal(t, '-', c, "dash at %d", i)
				}
			}
		})
	}
}

func TestThumbnailURL(t *testing.T) {
	assert.Equal(t,
		"https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
		ThumbnailURL(track.Track{Identifier: "dQw4w9WgXcQ"}),
	)
	assert.Empty(t, ThumbnailURL(track.Track{}))
}

func TestTrackEmbed(t *testing.T) {
	tr := track.Track{
		Title:      "Test Song",
		URI:        "https://youtube.com/watch?v=abc123def45",
		Identifier: "abc123def45",
		Duration:   200 * time.Second,
	}

	embed := NowPlayingEmbed(tr, nil)
	assert.Equal(t, "**Now Playing**", embed.Title)
	assert.Equal(t, EmbedColor, embed.Color)
	assert.Contains(t, embed.Description, "[Test Song](https://youtube.com/watch?v=abc123def45)")
	assert.NotContains(t, embed.Description, "|", "no progress bar without a position")
	assert.NotNil(t, embed.Image)

	pos := 100 * time.Second
	withBar := NowPlayingEmbed(tr, &pos)
	assert.Contains(t, withBar.Description, "1:40")
	assert.Contains(t, withBar.Description, "3:20")

	queued := AddedToQueueEmbed(tr)
	assert.Equal(t, "**Added to Queue**", queued.Title)
}

func TestQueueEmbed(t *testing.T) {
	current := track.Track{Title: "Now", URI: "https://a", Duration: time.Minute}
	pending := []track.Track{
		{Title: "First", URI: "https://b", Duration: 2 * time.Minute},
		{Title: "Second", URI: "https://c", Duration: 3 * time.Minute},
	}

	embed := QueueEmbed(current, pending)
	assert.Equal(t, "**Music Queue (2 tracks)**", embed.Title)
	assert.Len(t, embed.Fields, 1)
	assert.Equal(t, "**Now Playing**", embed.Fields[0].Name)

	body := embed.Fields[0].Value
	assert.Contains(t, body, "[Now](https://a)")
	assert.Contains(t, body, "`1` [First](https://b)")
	assert.Contains(t, body, "`2` [Second](https://c)")
}
