package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
)

// Config holds all runtime configuration, loaded from the environment.
// A .env file in the working directory is honored when present.
type Config struct {
	DiscordToken      string `env:"DISCORD_TOKEN,required"`
	MediaNodeURI      string `env:"MEDIA_NODE_URI" envDefault:"http://localhost:2333"`
	MediaNodePassword string `env:"MEDIA_NODE_PASSWORD,required"`
	StoragePath       string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	InitSlashCommands bool   `env:"INIT_SLASH_COMMANDS" envDefault:"true"`

	InactivityTimeout time.Duration `env:"INACTIVITY_TIMEOUT" envDefault:"15m"`
	MonitorInterval   time.Duration `env:"MONITOR_INTERVAL" envDefault:"1m"`
	DefaultVolume     int           `env:"DEFAULT_VOLUME" envDefault:"30"`
}

// New loads configuration from the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		zlog.Info().Msg("No .env file found, falling back to system environment variables")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
