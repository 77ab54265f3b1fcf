package medianode

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/SamOutabrae/Sprocket-music/internal/music/track"
)

// loadedTrack is a track as the node describes it. The encoded blob is the
// node's own handle; we keep it to reference the track in player updates.
type loadedTrack struct {
	Encoded string    `json:"encoded"`
	Info    trackInfo `json:"info"`
}

type trackInfo struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	URI        string `json:"uri"`
	Length     int64  `json:"length"` // milliseconds
}

func (t loadedTrack) domain() track.Track {
	return track.Track{
		Title:      t.Info.Title,
		URI:        t.Info.URI,
		Identifier: t.Info.Identifier,
		Duration:   time.Duration(t.Info.Length) * time.Millisecond,
	}
}

// loadResult is the polymorphic response of the track load endpoint: the
// data payload depends on loadType.
type loadResult struct {
	LoadType string          `json:"loadType"`
	Data     json.RawMessage `json:"data"`
}

func (r loadResult) tracks() ([]loadedTrack, error) {
	switch r.LoadType {
	case "empty":
		return nil, nil
	case "track":
		var t loadedTrack
		if err := json.Unmarshal(r.Data, &t); err != nil {
			return nil, err
		}
		return []loadedTrack{t}, nil
	case "search":
		var ts []loadedTrack
		if err := json.Unmarshal(r.Data, &ts); err != nil {
			return nil, err
		}
		return ts, nil
	case "playlist":
		var pl struct {
			Tracks []loadedTrack `json:"tracks"`
		}
		if err := json.Unmarshal(r.Data, &pl); err != nil {
			return nil, err
		}
		return pl.Tracks, nil
	case "error":
		var ex struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(r.Data, &ex)
		return nil, errors.Newf("media node load error: %s", ex.Message)
	default:
		return nil, errors.Newf("unknown load type %q", r.LoadType)
	}
}

// playerUpdateRequest mutates a player on the node. Nil fields are left
// untouched; a track update with a nil encoded blob stops playback.
type playerUpdateRequest struct {
	Track  *trackUpdate `json:"track,omitempty"`
	Volume *int         `json:"volume,omitempty"`
	Paused *bool        `json:"paused,omitempty"`
	Voice  *voiceUpdate `json:"voice,omitempty"`
}

type trackUpdate struct {
	Encoded *string `json:"encoded"`
}

type voiceUpdate struct {
	Token     string `json:"token"`
	Endpoint  string `json:"endpoint"`
	SessionID string `json:"sessionId"`
}
