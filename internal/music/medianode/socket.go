package medianode

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"

	"github.com/SamOutabrae/Sprocket-music/internal/music/engine"
	"github.com/SamOutabrae/Sprocket-music/internal/version"
)

// wsConn is the subset of the websocket connection the node uses; narrowed
// for tests.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	Close() error
}

// message is the envelope of every frame on the node's event socket.
type message struct {
	Op        string `json:"op"`
	SessionID string `json:"sessionId,omitempty"` // op=ready
	GuildID   string `json:"guildId,omitempty"`

	// op=playerUpdate
	State *struct {
		Position int64 `json:"position"` // milliseconds
		Time     int64 `json:"time"`
	} `json:"state,omitempty"`

	// op=event
	Type   string       `json:"type,omitempty"`
	Reason string       `json:"reason,omitempty"`
	Track  *loadedTrack `json:"track,omitempty"`
}

// Open dials the node's event socket, waits for the ready frame and starts
// the event pump.
func (n *Node) Open(ctx context.Context) error {
	wsURL := strings.TrimRight(n.cfg.URI, "/") + "/v4/websocket"
	wsURL = strings.Replace(wsURL, "http", "ws", 1)

	header := http.Header{}
	header.Set("Authorization", n.cfg.Password)
	header.Set("User-Id", n.cfg.UserID)
	header.Set("Client-Name", version.AppName+"/"+version.Version)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return errors.Wrap(err, "failed to dial media node")
	}

	// The first frame must announce the node session.
	_, data, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "failed to read ready frame")
	}
	var ready message
	if err := json.Unmarshal(data, &ready); err != nil || ready.Op != "ready" || ready.SessionID == "" {
		conn.Close()
		return errors.New("media node did not send a ready frame")
	}

	n.mu.Lock()
	n.conn = conn
	n.sessionID = ready.SessionID
	n.mu.Unlock()

	n.log.Info().Str("session", ready.SessionID).Msg("connected to media node")

	go n.readLoop(conn)
	return nil
}

// Close tears down the event socket.
func (n *Node) Close() error {
	close(n.done)

	n.mu.Lock()
	conn := n.conn
	n.conn = nil
	n.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (n *Node) readLoop(conn wsConn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-n.done:
			default:
				n.log.Error().Err(err).Msg("event socket closed")
			}
			return
		}

		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			n.log.Warn().Err(err).Msg("undecodable node frame")
			continue
		}
		n.handleMessage(msg)
	}
}

func (n *Node) handleMessage(msg message) {
	switch msg.Op {
	case "playerUpdate":
		if msg.State == nil {
			return
		}
		n.mu.Lock()
		if p, ok := n.players[msg.GuildID]; ok {
			p.position = time.Duration(msg.State.Position) * time.Millisecond
			p.positionAt = time.Now()
		}
		n.mu.Unlock()

	case "event":
		if msg.Type != "TrackEndEvent" {
			return
		}
		n.mu.Lock()
		if p, ok := n.players[msg.GuildID]; ok {
			p.playing = false
		}
		n.mu.Unlock()

		ev := engine.Event{
			GuildID: msg.GuildID,
			Reason:  engine.EndReason(msg.Reason),
		}
		if msg.Track != nil {
			t := msg.Track.domain()
			ev.Track = &t
		}
		n.emit(ev)
	}
}

// emit sends an event without blocking the read loop.
func (n *Node) emit(ev engine.Event) {
	select {
	case n.events <- ev:
	default:
		n.log.Warn().Str("guild", ev.GuildID).Msg("event dropped, channel full")
	}
}
