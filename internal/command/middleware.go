package command

import (
	"github.com/bwmarrin/discordgo"
	zlog "github.com/rs/zerolog/log"
)

// Middleware wraps a command (logging, guards, metrics). The wrapped value
// remains a Command, so middlewares compose.
type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	wrap func(ctx interface{}) error
}

func (w *wrappedCommand) Run(ctx interface{}) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// ApplyMiddlewares wraps cmd; the first middleware is the outermost.
func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

// WithGuildOnly drops command invocations that arrive outside a guild.
func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if v, ok := ctx.(*SlashContext); ok && v.Event.GuildID == "" {
					return nil
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithCommandLogger records every executed command into guild history.
func WithCommandLogger() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				err := cmd.Run(ctx)

				v, ok := ctx.(*SlashContext)
				if !ok || v.Storage == nil {
					return err
				}
				user := resolveUser(v.Event)
				if logErr := v.Storage.LogCommand(v.Event.GuildID, v.Event.ChannelID, user.ID, user.Username, cmd.Name()); logErr != nil {
					zlog.Warn().Err(logErr).Str("command", cmd.Name()).Msg("failed to log command")
				}
				return err
			},
		}
	}
}

// resolveUser retrieves the invoking user from an interaction event.
func resolveUser(e *discordgo.InteractionCreate) *discordgo.User {
	if e.Member != nil && e.Member.User != nil {
		return e.Member.User
	}
	if e.User != nil {
		return e.User
	}
	return &discordgo.User{ID: "unknown", Username: "Unknown"}
}
