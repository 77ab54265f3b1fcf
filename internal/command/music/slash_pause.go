package music

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"

	"github.com/SamOutabrae/Sprocket-music/internal/command"
	"github.com/SamOutabrae/Sprocket-music/internal/music/session"
	"github.com/SamOutabrae/Sprocket-music/internal/music/ui"
)

type PauseCommand struct {
	Music Provider
}

func (c *PauseCommand) Name() string        { return "pause" }
func (c *PauseCommand) Description() string { return "Toggles pausing/playing songs." }
func (c *PauseCommand) Group() string       { return "music" }

func (c *PauseCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *PauseCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*command.SlashContext)
	if !ok {
		return errors.New("wrong context type")
	}
	sess, ok := connected(slash, c.Music)
	if !ok {
		return nil
	}

	res, err := sess.PauseToggle(context.Background())
	switch {
	case errors.Is(err, session.ErrNothingPlaying):
		return command.Respond(slash.Session, slash.Event, nothingPlayingReply)
	case err != nil:
		return errors.Wrap(err, "pause command")
	}

	if res.Outcome == session.OutcomeResumed {
		embed := ui.NowPlayingEmbed(res.Track, positionOf(c.Music, slash.Event.GuildID))
		return command.RespondWithEmbed(slash.Session, slash.Event, resumedReply, embed)
	}
	return command.Respond(slash.Session, slash.Event, pausedReply)
}
