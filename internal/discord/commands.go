package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/SamOutabrae/Sprocket-music/internal/command"
)

// commandAPILimiter paces command create/delete calls so a burst of guilds
// at startup stays under Discord's rate limit.
var commandAPILimiter = rate.NewLimiter(rate.Every(50*time.Millisecond), 1)

// registerCommands syncs the guild's slash commands with the local
// registry: creates or updates every registered command and deletes remote
// ones that no longer exist locally.
func (b *Bot) registerCommands(guildID string) error {
	appID, err := b.appID()
	if err != nil {
		return err
	}

	remote, _ := b.dg.ApplicationCommands(appID, guildID)

	wanted := make(map[string]struct{})
	for _, c := range command.All() {
		def := slashDefinition(c)
		if def == nil {
			continue
		}
		wanted[def.Name] = struct{}{}

		if err := commandAPILimiter.Wait(context.Background()); err != nil {
			return err
		}
		if _, err := b.dg.ApplicationCommandCreate(appID, guildID, def); err != nil {
			b.log.Error().Err(err).Str("guild", guildID).Str("command", def.Name).Msg("failed to register command")
		} else {
			b.log.Debug().Str("guild", guildID).Str("command", def.Name).Msg("registered command")
		}
	}

	for _, rc := range remote {
		if _, ok := wanted[rc.Name]; ok {
			continue
		}
		if err := commandAPILimiter.Wait(context.Background()); err != nil {
			return err
		}
		if err := b.dg.ApplicationCommandDelete(appID, guildID, rc.ID); err != nil {
			b.log.Error().Err(err).Str("guild", guildID).Str("command", rc.Name).Msg("failed to delete obsolete command")
		} else {
			b.log.Info().Str("guild", guildID).Str("command", rc.Name).Msg("deleted obsolete command")
		}
	}
	return nil
}

// slashDefinition extracts the ApplicationCommand definition from a
// registered command.
func slashDefinition(c command.Command) *discordgo.ApplicationCommand {
	sp, ok := c.(command.SlashProvider)
	if !ok {
		return nil
	}
	def := sp.SlashDefinition()
	if def != nil && def.Type == 0 {
		def.Type = discordgo.ChatApplicationCommand
	}
	return def
}
