// Package ui renders playback state into Discord embeds.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/SamOutabrae/Sprocket-music/internal/music/track"
)

const EmbedColor = 0x7DC1FF

const progressWidth = 30

// FormatDuration renders a duration as m:ss.
func FormatDuration(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// ProgressBar renders a fixed-width position marker line, e.g.
// `1:23 ---------|-------------------- 4:05`.
func ProgressBar(position, duration time.Duration) string {
	idx := 0
	if duration > 0 {
		idx = int(int64(position) * progressWidth / int64(duration))
		idx %= progressWidth
		if idx < 0 {
			idx = 0
		}
	}

	bar := []byte(strings.Repeat("-", progressWidth))
	bar[idx] = '|'
	return fmt.Sprintf("`%s %s %s`", FormatDuration(position), bar, FormatDuration(duration))
}

// ThumbnailURL returns the cover image for a track, or empty when the
// source has none.
func ThumbnailURL(t track.Track) string {
	if t.Identifier == "" {
		return ""
	}
	return fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", t.Identifier)
}

// TrackEmbed renders a single track under the given title. When position is
// non-nil a live progress bar is included.
func TrackEmbed(t track.Track, title string, position *time.Duration) *discordgo.MessageEmbed {
	desc := fmt.Sprintf("[%s](%s)", t.Title, t.URI)
	if position != nil {
		desc += "\n" + ProgressBar(*position, t.Duration)
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: desc,
		Color:       EmbedColor,
	}
	if url := ThumbnailURL(t); url != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: url}
	}
	return embed
}

// NowPlayingEmbed renders the current track.
func NowPlayingEmbed(t track.Track, position *time.Duration) *discordgo.MessageEmbed {
	return TrackEmbed(t, "**Now Playing**", position)
}

// AddedToQueueEmbed renders a track that was enqueued behind the current one.
func AddedToQueueEmbed(t track.Track) *discordgo.MessageEmbed {
	return TrackEmbed(t, "**Added to Queue**", nil)
}

// QueueEmbed renders the current track followed by the numbered pending list.
func QueueEmbed(current track.Track, pending []track.Track) *discordgo.MessageEmbed {
	var body strings.Builder
	fmt.Fprintf(&body, "[%s](%s)`%s`\n\n", current.Title, current.URI, FormatDuration(current.Duration))
	for i, t := range pending {
		fmt.Fprintf(&body, "`%d` [%s](%s)`%s`\n", i+1, t.Title, t.URI, FormatDuration(t.Duration))
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("**Music Queue (%d tracks)**", len(pending)),
		Color: EmbedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "**Now Playing**", Value: body.String()},
		},
	}
}
