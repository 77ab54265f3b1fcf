package track

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueueFIFO(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{name: "single track", count: 1},
		{name: "a few tracks", count: 3},
		{name: "many tracks", count: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Queue
			for i := 0; i < tt.count; i++ {
				q.Enqueue(Track{Title: fmt.Sprintf("track-%d", i)})
			}
			assert.Equal(t, tt.count, q.Len())

			for i := 0; i < tt.count; i++ {
				got, ok := q.Next()
				assert.True(t, ok)
				assert.Equal(t, fmt.Sprintf("track-%d", i), got.Title)
			}
			assert.Equal(t, 0, q.Len())
		})
	}
}

func TestQueueNextEmpty(t *testing.T) {
	var q Queue

	got, ok := q.Next()
	assert.False(t, ok)
	assert.Equal(t, Track{}, got)

	// Draining past empty stays safe.
	q.Enqueue(Track{Title: "a"})
	q.Next()
	_, ok = q.Next()
	assert.False(t, ok)
}

func TestQueueTracksIsACopy(t *testing.T) {
	var q Queue
	q.Enqueue(Track{Title: "a", Duration: 3 * time.Minute})
	q.Enqueue(Track{Title: "b"})

	snapshot := q.Tracks()
	snapshot[0].Title = "mutated"

	fresh := q.Tracks()
	assert.Equal(t, "a", fresh[0].Title)
	assert.Equal(t, 2, q.Len())
}

func TestQueueClear(t *testing.T) {
	var q Queue
	q.Enqueue(Track{Title: "a"})
	q.Enqueue(Track{Title: "b"})

	q.Clear()
	assert.Equal(t, 0, q.Len())
	_, ok := q.Next()
	assert.False(t, ok)
}
