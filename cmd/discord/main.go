package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	zlog "github.com/rs/zerolog/log"

	"github.com/SamOutabrae/Sprocket-music/internal/command/music"
	"github.com/SamOutabrae/Sprocket-music/internal/config"
	"github.com/SamOutabrae/Sprocket-music/internal/discord"
	"github.com/SamOutabrae/Sprocket-music/internal/logger"
	"github.com/SamOutabrae/Sprocket-music/internal/storage"
	"github.com/SamOutabrae/Sprocket-music/internal/version"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init(cfg.LogLevel)
	zlog.Info().Str("version", version.Version).Msgf("starting %s", version.AppName)

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to open storage")
	}
	defer store.Close()

	bot := discord.NewBot(cfg, store, zlog.Logger)
	music.RegisterAll(bot)

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		zlog.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
	case err := <-errCh:
		if err != nil {
			zlog.Error().Err(err).Msg("bot exited with error")
		}
		cancel()
	case <-ctx.Done():
	}

	zlog.Info().Msg("exited cleanly")
}
