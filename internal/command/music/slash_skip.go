package music

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"

	"github.com/SamOutabrae/Sprocket-music/internal/command"
	"github.com/SamOutabrae/Sprocket-music/internal/music/track"
	"github.com/SamOutabrae/Sprocket-music/internal/music/ui"
)

type SkipCommand struct {
	Music Provider
}

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Skips the playing song." }
func (c *SkipCommand) Group() string       { return "music" }

func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *SkipCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*command.SlashContext)
	if !ok {
		return errors.New("wrong context type")
	}
	sess, ok := connected(slash, c.Music)
	if !ok {
		return nil
	}

	// The next-track embed only exists once the engine reports the current
	// track ended, so the interaction is answered from that callback.
	if err := command.RespondDeferred(slash.Session, slash.Event); err != nil {
		return errors.Wrap(err, "defer response")
	}

	res, err := sess.Skip(context.Background(), func(next track.Track) {
		_ = command.FollowupEmbed(slash.Session, slash.Event, ui.NowPlayingEmbed(next, nil))
	})
	if err != nil {
		return errors.Wrap(err, "skip command")
	}
	if res.QueueEmpty {
		return command.Followup(slash.Session, slash.Event, queueEmptyReply)
	}
	return nil
}
