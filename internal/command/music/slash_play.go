package music

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"

	"github.com/SamOutabrae/Sprocket-music/internal/command"
	"github.com/SamOutabrae/Sprocket-music/internal/music/engine"
	"github.com/SamOutabrae/Sprocket-music/internal/music/session"
	"github.com/SamOutabrae/Sprocket-music/internal/music/ui"
)

type PlayCommand struct {
	Music Provider
}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Play a song. Unpauses if paused." }
func (c *PlayCommand) Group() string       { return "music" }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "song_title",
				Description: "Enter the title or url of the song you want to play.",
				Required:    false,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*command.SlashContext)
	if !ok {
		return errors.New("wrong context type")
	}
	event := slash.Event
	guildID := event.GuildID

	var query string
	if opts := event.ApplicationCommandData().Options; len(opts) > 0 {
		query = opts[0].StringValue()
	}

	voiceChannel, inVoice := c.Music.UserVoiceChannel(guildID, requester(slash))
	if !inVoice {
		return command.Respond(slash.Session, event, userNotInVoiceReply)
	}

	// Searching and connecting can outlast the interaction token window.
	if err := command.RespondDeferred(slash.Session, event); err != nil {
		return errors.Wrap(err, "defer response")
	}

	sess := c.Music.SessionFor(guildID)
	res, err := sess.Play(context.Background(), session.PlayRequest{
		Query:        query,
		VoiceChannel: voiceChannel,
		TextChannel:  event.ChannelID,
	})
	switch {
	case errors.Is(err, session.ErrNotConnected):
		return command.Followup(slash.Session, event, notConnectedReply)
	case errors.Is(err, session.ErrChannelMismatch):
		return command.Followup(slash.Session, event, wrongChannelReply)
	case errors.Is(err, engine.ErrNoResults):
		return command.Followup(slash.Session, event, fmt.Sprintf("No songs found for %s.", query))
	case errors.Is(err, session.ErrNothingPlaying):
		return command.Followup(slash.Session, event, nothingPlayingReply)
	case err != nil:
		return errors.Wrap(err, "play command")
	}

	switch res.Outcome {
	case session.OutcomeNowPlaying:
		return command.FollowupEmbed(slash.Session, event, ui.NowPlayingEmbed(res.Track, nil))
	case session.OutcomeQueued:
		return command.FollowupEmbed(slash.Session, event, ui.AddedToQueueEmbed(res.Track))
	case session.OutcomeResumed:
		embed := ui.NowPlayingEmbed(res.Track, positionOf(c.Music, guildID))
		return command.FollowupWithEmbed(slash.Session, event, resumedReply, embed)
	case session.OutcomePaused:
		return command.Followup(slash.Session, event, pausedReply)
	}
	return nil
}
