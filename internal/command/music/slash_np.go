package music

import (
	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"

	"github.com/SamOutabrae/Sprocket-music/internal/command"
	"github.com/SamOutabrae/Sprocket-music/internal/music/ui"
)

type NowPlayingCommand struct {
	Music Provider
}

func (c *NowPlayingCommand) Name() string        { return "np" }
func (c *NowPlayingCommand) Description() string { return "Displays the currently playing song." }
func (c *NowPlayingCommand) Group() string       { return "music" }

func (c *NowPlayingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *NowPlayingCommand) Run(ctx interface{}) error {
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
	embed := ui.NowPlayingEmbed(current, positionOf(c.Music, slash.Event.GuildID))
	return command.RespondEmbed(slash.Session, slash.Event, embed)
}
