// Package discord wires the chat platform to the playback core: it owns the
// gateway session, dispatches slash commands, forwards voice credentials to
// the media node and routes track events back into sessions.
package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/SamOutabrae/Sprocket-music/internal/command"
	"github.com/SamOutabrae/Sprocket-music/internal/config"
	"github.com/SamOutabrae/Sprocket-music/internal/music/medianode"
	"github.com/SamOutabrae/Sprocket-music/internal/music/session"
	"github.com/SamOutabrae/Sprocket-music/internal/music/track"
	"github.com/SamOutabrae/Sprocket-music/internal/music/ui"
	"github.com/SamOutabrae/Sprocket-music/internal/storage"
)

// Bot is the Discord-facing runtime.
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	store    *storage.Storage
	node     *medianode.Node
	sessions *session.Registry
	monitor  *session.Monitor
	log      zerolog.Logger
}

// NewBot creates the bot. Run must be called to connect.
func NewBot(cfg *config.Config, store *storage.Storage, log zerolog.Logger) *Bot {
	b := &Bot{
		cfg:   cfg,
		store: store,
		log:   log.With().Str("component", "bot").Logger(),
	}
	b.sessions = session.NewRegistry(func(guildID string) *session.Session {
		return session.New(guildID, b.node, b, cfg.DefaultVolume, log)
	})
	b.monitor = session.NewMonitor(b.sessions, cfg.MonitorInterval, cfg.InactivityTimeout, log)
	return b
}

// Run connects to Discord and the media node and blocks until the context
// is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return errors.Wrap(err, "failed to create session")
	}
	b.dg = dg

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onVoiceStateUpdate)
	dg.AddHandler(b.onVoiceServerUpdate)

	if err := dg.Open(); err != nil {
		return errors.Wrap(err, "failed to open Discord session")
	}
	defer dg.Close()

	appID, err := b.appID()
	if err != nil {
		return err
	}

	b.node = medianode.New(medianode.Config{
		URI:      b.cfg.MediaNodeURI,
		Password: b.cfg.MediaNodePassword,
		UserID:   appID,
	}, b, b.log)
	if err := b.node.Open(ctx); err != nil {
		return err
	}
	defer b.node.Close()

	go b.pumpEngineEvents(ctx)
	go b.monitor.Run(ctx)

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received")
	return nil
}

// pumpEngineEvents routes track-end events from the media node to the
// owning session.
func (b *Bot) pumpEngineEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.node.Events():
			if sess, ok := b.sessions.Get(ev.GuildID); ok {
				sess.HandleTrackEnd(ctx, ev.Reason)
			}
		}
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		b.log.Warn().Err(err).Msg("failed to retrieve bot user")
		return
	}

	if b.cfg.InitSlashCommands {
		for _, g := range r.Guilds {
			if err := b.registerCommands(g.ID); err != nil {
				b.log.Error().Err(err).Str("guild", g.ID).Msg("failed to register slash commands")
			}
		}
	} else {
		b.log.Info().Msg("slash command registration skipped")
	}

	b.log.Info().Str("user", botInfo.Username).Msg("bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.log.Info().Str("guild", g.Guild.ID).Str("name", g.Guild.Name).Msg("added to guild")
	if err := b.registerCommands(g.Guild.ID); err != nil {
		b.log.Error().Err(err).Str("guild", g.Guild.ID).Msg("failed to register slash commands")
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand || b.node == nil {
		return
	}

	name := i.ApplicationCommandData().Name
	cmd, ok := command.Get(name)
	if !ok {
		b.log.Warn().Str("command", name).Msg("unknown command")
		return
	}

	ctx := &command.SlashContext{Session: s, Event: i, Storage: b.store}
	if err := cmd.Run(ctx); err != nil {
		b.log.Error().Err(err).Str("command", name).Msg("command failed")
	}
}

// onVoiceStateUpdate forwards the bot's own voice session ID to the media
// node; other users' movements are irrelevant here.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, e *discordgo.VoiceStateUpdate) {
	if b.node == nil || s.State.User == nil || e.UserID != s.State.User.ID {
		return
	}
	if e.ChannelID == "" {
		return
	}
	b.node.HandleVoiceStateUpdate(context.Background(), e.GuildID, e.SessionID)
}

// onVoiceServerUpdate forwards fresh voice server credentials to the media
// node, which completes the voice handshake on our behalf.
func (b *Bot) onVoiceServerUpdate(s *discordgo.Session, e *discordgo.VoiceServerUpdate) {
	if b.node == nil {
		return
	}
	b.node.HandleVoiceServerUpdate(context.Background(), e.GuildID, e.Token, e.Endpoint)
}

// --- medianode.Gateway ---

// JoinVoice asks the gateway to move the bot into a voice channel without
// opening a local voice connection; the media node handles the audio leg.
func (b *Bot) JoinVoice(guildID, channelID string) error {
	return b.dg.ChannelVoiceJoinManual(guildID, channelID, false, true)
}

// LeaveVoice disconnects the bot from voice in the guild.
func (b *Bot) LeaveVoice(guildID string) error {
	return b.dg.ChannelVoiceJoinManual(guildID, "", false, true)
}

// --- session.Notifier ---

func (b *Bot) NotifyTrack(channelID string, t track.Track) {
	if err := command.MessageEmbed(b.dg, channelID, ui.NowPlayingEmbed(t, nil)); err != nil {
		b.log.Error().Err(err).Str("channel", channelID).Msg("failed to send track notification")
	}
}

func (b *Bot) NotifyText(channelID string, msg string) {
	if err := command.Message(b.dg, channelID, msg); err != nil {
		b.log.Error().Err(err).Str("channel", channelID).Msg("failed to send notification")
	}
}

// --- music.Provider ---

func (b *Bot) SessionFor(guildID string) *session.Session {
	return b.sessions.GetOrCreate(guildID)
}

func (b *Bot) LookupSession(guildID string) (*session.Session, bool) {
	return b.sessions.Get(guildID)
}

func (b *Bot) DropSession(guildID string) {
	b.sessions.Remove(guildID)
}

// UserVoiceChannel walks the cached guild voice states to find the channel
// the user currently sits in.
func (b *Bot) UserVoiceChannel(guildID, userID string) (string, bool) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return "", false
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID, true
		}
	}
	return "", false
}

func (b *Bot) Position(guildID string) (time.Duration, bool) {
	if b.node == nil {
		return 0, false
	}
	return b.node.Position(guildID)
}

// appID returns the bot's application ID, fetching it when the gateway
// state has not populated yet.
func (b *Bot) appID() (string, error) {
	if b.dg.State.User != nil && b.dg.State.User.ID != "" {
		return b.dg.State.User.ID, nil
	}
	u, err := b.dg.User("@me")
	if err != nil {
		return "", errors.Wrap(err, "failed to fetch bot user")
	}
	return u.ID, nil
}
