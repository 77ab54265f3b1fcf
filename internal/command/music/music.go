// Package music holds the playback slash commands. Each command resolves
// the guild's playback session through the Provider and translates session
// outcomes into interaction responses.
package music

import (
	"time"

	"github.com/SamOutabrae/Sprocket-music/internal/command"
	"github.com/SamOutabrae/Sprocket-music/internal/music/session"
)

const (
	notConnectedReply    = "To run this the bot must be in a voice channel."
	wrongChannelReply    = "You must be in the same voice channel as the bot."
	nothingPlayingReply  = "Nothing is playing."
	stoppedReply         = "Stopped."
	queueEmptyReply      = "The queue is empty, so nothing else will be played."
	pausedReply          = "**Paused.** ⏸️"
	resumedReply         = "**Resumed.** ▶️"
	userNotInVoiceReply = "You must be in a voice channel to use this command."
)

// Provider gives commands access to playback sessions and voice state. The
// bot runtime implements it.
type Provider interface {
	// SessionFor returns the guild's session, creating it on first use.
	SessionFor(guildID string) *session.Session
	// LookupSession returns the guild's session without creating one.
	LookupSession(guildID string) (*session.Session, bool)
	// DropSession discards the guild's session after an explicit leave.
	DropSession(guildID string)
	// UserVoiceChannel reports the voice channel the user currently sits in.
	UserVoiceChannel(guildID, userID string) (string, bool)
	// Position reports the live playback position for the guild.
	Position(guildID string) (time.Duration, bool)
}

// RegisterAll registers every playback command against the global registry.
func RegisterAll(p Provider) {
	mws := []command.Middleware{
		command.WithGuildOnly(),
		command.WithCommandLogger(),
	}
	for _, cmd := range []command.Command{
		&PlayCommand{Music: p},
		&PauseCommand{Music: p},
		&StopCommand{Music: p},
		&SkipCommand{Music: p},
		&QueueCommand{Music: p},
		&NowPlayingCommand{Music: p},
		&LeaveCommand{Music: p},
	} {
		command.Register(cmd, mws...)
	}
}

// connected is the shared precondition guard: every command except play
// requires a live voice connection. When the guard fails it answers the
// interaction itself and the command body must not run.
func connected(slash *command.SlashContext, p Provider) (*session.Session, bool) {
	sess, ok := p.LookupSession(slash.Event.GuildID)
	if !ok || !sess.Connected() {
		_ = command.Respond(slash.Session, slash.Event, notConnectedReply)
		return nil, false
	}
	return sess, true
}

// positionOf returns the live playback position, or nil when the engine has
// no player for the guild.
func positionOf(p Provider, guildID string) *time.Duration {
	pos, ok := p.Position(guildID)
	if !ok {
		return nil
	}
	return &pos
}

// requester returns the invoking user's ID.
func requester(slash *command.SlashContext) string {
	e := slash.Event
	if e.Member != nil && e.Member.User != nil {
		return e.Member.User.ID
	}
	if e.User != nil {
		return e.User.ID
	}
	return ""
}
