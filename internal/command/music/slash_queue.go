package music

import (
	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"

	"github.com/SamOutabrae/Sprocket-music/internal/command"
	"github.com/SamOutabrae/Sprocket-music/internal/music/ui"
)

type QueueCommand struct {
	Music Provider
}

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Displays the queue." }
func (c *QueueCommand) Group() string       { return "music" }

func (c *QueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *QueueCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*command.SlashContext)
	if !ok {
		return errors.New("wrong context type")
	}
	sess, ok := connected(slash, c.Music)
	if !ok {
		return nil
	}
	sess.Touch()

	current, playing := sess.NowPlaying()
	if !playing {
		return command.Respond(slash.Session, slash.Event, nothingPlayingReply)
	}
	embed := ui.QueueEmbed(current, sess.QueueSnapshot())
	return command.RespondEmbed(slash.Session, slash.Event, embed)
}
