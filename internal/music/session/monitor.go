package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Monitor periodically disconnects sessions that have been idle for too
// long. One monitor runs for the lifetime of the process; it is the only
// background writer of session state besides the track-end handler.
type Monitor struct {
	registry *Registry
	interval time.Duration
	timeout  time.Duration
	log      zerolog.Logger
}

// NewMonitor creates a monitor over the given registry.
func NewMonitor(registry *Registry, interval, timeout time.Duration, log zerolog.Logger) *Monitor {
	return &Monitor{
		registry: registry,
		interval: interval,
		timeout:  timeout,
		log:      log.With().Str("component", "inactivity-monitor").Logger(),
	}
}

// Run blocks until the context is cancelled, sweeping on every tick.
func (m *Monitor) Run(ctx context.Context) {
	m.log.Info().
		Dur("interval", m.interval).
		Dur("timeout", m.timeout).
		Msg("starting inactivity monitor")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("inactivity monitor stopped")
			return
		case <-ticker.C:
			m.sweep(ctx, time.Now())
		}
	}
}

// sweep expires every idle session and discards it from the registry, so a
// fresh play command rebuilds it from scratch.
func (m *Monitor) sweep(ctx context.Context, now time.Time) {
	notice := fmt.Sprintf("Bot has been inactive for the last %d minutes. Leaving channel.", int(m.timeout.Minutes()))

	m.registry.ForEach(func(guildID string, s *Session) {
		if s.ExpireIfIdle(ctx, now, m.timeout, notice) {
			m.log.Info().Str("guild", guildID).Msg("disconnected idle session")
			m.registry.Remove(guildID)
		}
	})
}
