// Package command defines the command contract, the registry and the
// middleware chain shared by every slash command.
package command

import (
	"github.com/bwmarrin/discordgo"

	"github.com/SamOutabrae/Sprocket-music/internal/storage"
)

// Command is a single user-facing command.
type Command interface {
	Name() string
	Description() string
	Group() string
	Run(ctx interface{}) error
}

// SlashProvider is implemented by commands registered as slash commands.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// SlashContext is what the runtime hands a command executed as a slash
// interaction.
type SlashContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}
