// Package medianode is a thin client for the external media node that
// performs search, decoding and streaming. It implements engine.Engine:
// player operations go over the node's REST API, track events arrive on a
// websocket. Audio itself never touches this process.
package medianode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/SamOutabrae/Sprocket-music/internal/music/engine"
	"github.com/SamOutabrae/Sprocket-music/internal/music/track"
)

// Gateway sends voice-channel join/leave requests through the chat
// platform's gateway. The media node receives the resulting voice
// credentials via HandleVoiceStateUpdate/HandleVoiceServerUpdate.
type Gateway interface {
	JoinVoice(guildID, channelID string) error
	LeaveVoice(guildID string) error
}

// Config holds the node endpoint and credentials.
type Config struct {
	URI      string // http(s) base URL, e.g. http://localhost:2333
	Password string
	UserID   string // bot user ID, required by the node handshake
}

type playerState struct {
	voiceToken    string
	voiceEndpoint string
	voiceSession  string
	position      time.Duration
	positionAt    time.Time
	playing       bool
}

// Node is a client for a single media node.
type Node struct {
	cfg     Config
	gateway Gateway
	client  *http.Client
	log     zerolog.Logger

	mu        sync.Mutex
	sessionID string // assigned by the node's ready frame
	players   map[string]*playerState
	encoded   map[string]string // track URI -> node-encoded track blob

	conn   wsConn
	events chan engine.Event
	done   chan struct{}
}

// New creates a node client. Open must be called before use.
func New(cfg Config, gateway Gateway, log zerolog.Logger) *Node {
	return &Node{
		cfg:     cfg,
		gateway: gateway,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log.With().Str("component", "medianode").Logger(),
		players: make(map[string]*playerState),
		encoded: make(map[string]string),
		events:  make(chan engine.Event, 16),
		done:    make(chan struct{}),
	}
}

// Events implements engine.Engine.
func (n *Node) Events() <-chan engine.Event {
	return n.events
}

// Connect implements engine.Engine. The actual voice handshake completes
// asynchronously once the gateway delivers the voice server credentials.
func (n *Node) Connect(ctx context.Context, guildID, channelID string) error {
	n.mu.Lock()
	if _, ok := n.players[guildID]; !ok {
		n.players[guildID] = &playerState{}
	}
	n.mu.Unlock()

	if err := n.gateway.JoinVoice(guildID, channelID); err != nil {
		return errors.Wrap(err, "failed to join voice channel")
	}
	return nil
}

// Disconnect implements engine.Engine.
func (n *Node) Disconnect(ctx context.Context, guildID string) error {
	if err := n.rest(ctx, http.MethodDelete, n.playerPath(guildID), nil, nil); err != nil {
		n.log.Warn().Err(err).Str("guild", guildID).Msg("failed to destroy player")
	}

	n.mu.Lock()
	delete(n.players, guildID)
	n.mu.Unlock()

	return n.gateway.LeaveVoice(guildID)
}

// Search implements engine.Engine. Plain text queries are resolved through
// the node's search prefix; anything that parses as a URL is loaded as-is.
func (n *Node) Search(ctx context.Context, query string) ([]track.Track, error) {
	identifier := query
	if !isURL(query) {
		identifier = "ytsearch:" + query
	}

	var res loadResult
	path := "/v4/loadtracks?identifier=" + url.QueryEscape(identifier)
	if err := n.rest(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, errors.Wrap(err, "track load failed")
	}

	loaded, err := res.tracks()
	if err != nil {
		return nil, err
	}

	tracks := make([]track.Track, 0, len(loaded))
	n.mu.Lock()
	for _, lt := range loaded {
		tracks = append(tracks, lt.domain())
		n.encoded[lt.Info.URI] = lt.Encoded
	}
	n.mu.Unlock()
	return tracks, nil
}

// Play implements engine.Engine.
func (n *Node) Play(ctx context.Context, guildID string, t track.Track, volume int) error {
	n.mu.Lock()
	enc, ok := n.encoded[t.URI]
	n.mu.Unlock()
	if !ok {
		return errors.Newf("track %q was not resolved by this node", t.URI)
	}

	body := playerUpdateRequest{
		Track:  &trackUpdate{Encoded: &enc},
		Volume: &volume,
	}
	if err := n.rest(ctx, http.MethodPatch, n.playerPath(guildID), body, nil); err != nil {
		return errors.Wrap(err, "play request failed")
	}

	n.mu.Lock()
	if p, ok := n.players[guildID]; ok {
		p.playing = true
		p.position = 0
		p.positionAt = time.Now()
	}
	n.mu.Unlock()
	return nil
}

// Pause implements engine.Engine.
func (n *Node) Pause(ctx context.Context, guildID string, paused bool) error {
	body := playerUpdateRequest{Paused: &paused}
	return n.rest(ctx, http.MethodPatch, n.playerPath(guildID), body, nil)
}

// Stop implements engine.Engine. Clearing the loaded track makes the node
// emit a track-end event with a "stopped" reason.
func (n *Node) Stop(ctx context.Context, guildID string) error {
	body := playerUpdateRequest{Track: &trackUpdate{Encoded: nil}}
	if err := n.rest(ctx, http.MethodPatch, n.playerPath(guildID), body, nil); err != nil {
		return err
	}

	n.mu.Lock()
	if p, ok := n.players[guildID]; ok {
		p.playing = false
	}
	n.mu.Unlock()
	return nil
}

// Position implements engine.Engine, extrapolating from the last player
// update frame.
func (n *Node) Position(guildID string) (time.Duration, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	p, ok := n.players[guildID]
	if !ok || !p.playing {
		return 0, false
	}
	return p.position + time.Since(p.positionAt), true
}

// HandleVoiceStateUpdate records the gateway voice session for a guild.
func (n *Node) HandleVoiceStateUpdate(ctx context.Context, guildID, sessionID string) {
	n.mu.Lock()
	p, ok := n.players[guildID]
	if !ok {
		n.mu.Unlock()
		return
	}
	p.voiceSession = sessionID
	n.mu.Unlock()

	n.pushVoiceUpdate(ctx, guildID)
}

// HandleVoiceServerUpdate forwards fresh voice server credentials to the
// node, completing (or migrating) the voice connection.
func (n *Node) HandleVoiceServerUpdate(ctx context.Context, guildID, token, endpoint string) {
	n.mu.Lock()
	p, ok := n.players[guildID]
	if !ok {
		n.mu.Unlock()
		return
	}
	p.voiceToken = token
	p.voiceEndpoint = endpoint
	n.mu.Unlock()

	n.pushVoiceUpdate(ctx, guildID)
}

func (n *Node) pushVoiceUpdate(ctx context.Context, guildID string) {
	n.mu.Lock()
	p, ok := n.players[guildID]
	if !ok || p.voiceToken == "" || p.voiceEndpoint == "" || p.voiceSession == "" {
		n.mu.Unlock()
		return
	}
	body := playerUpdateRequest{Voice: &voiceUpdate{
		Token:     p.voiceToken,
		Endpoint:  p.voiceEndpoint,
		SessionID: p.voiceSession,
	}}
	n.mu.Unlock()

	if err := n.rest(ctx, http.MethodPatch, n.playerPath(guildID), body, nil); err != nil {
		n.log.Error().Err(err).Str("guild", guildID).Msg("voice update failed")
	}
}

func (n *Node) playerPath(guildID string) string {
	return fmt.Sprintf("/v4/sessions/%s/players/%s", n.currentSession(), guildID)
}

func (n *Node) currentSession() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sessionID
}

// rest performs a JSON request against the node's HTTP API.
func (n *Node) rest(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(n.cfg.URI, "/")+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", n.cfg.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Newf("media node returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
