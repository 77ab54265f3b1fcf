package music

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"

	"github.com/SamOutabrae/Sprocket-music/internal/command"
)

type LeaveCommand struct {
	Music Provider
}

func (c *LeaveCommand) Name() string        { return "leave" }
func (c *LeaveCommand) Description() string { return "Tells the bot to leave the voice channel." }
func (c *LeaveCommand) Group() string       { return "music" }

func (c *LeaveCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *LeaveCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*command.SlashContext)
	if !ok {
		return errors.New("wrong context type")
	}
	sess, ok := connected(slash, c.Music)
	if !ok {
		return nil
	}

	if err := sess.Leave(context.Background()); err != nil {
		return errors.Wrap(err, "leave command")
	}
	c.Music.DropSession(slash.Event.GuildID)
	return command.RespondEphemeral(slash.Session, slash.Event, "👋")
}
