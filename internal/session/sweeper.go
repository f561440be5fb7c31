package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SweepWorker periodically evicts idle sessions from the registry.
type SweepWorker struct {
	registry *Registry
	onEvict  func(uuid.UUID)
	logger   zerolog.Logger
	interval time.Duration
}

// NewSweepWorker builds a worker; onEvict (optional) runs for every evicted ID.
func NewSweepWorker(registry *Registry, interval time.Duration, onEvict func(uuid.UUID), logger zerolog.Logger) *SweepWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SweepWorker{
		registry: registry,
		onEvict:  onEvict,
		logger:   logger.With().Str("component", "session_sweep_worker").Logger(),
		interval: interval,
	}
}

// Run blocks until context cancellation.
func (w *SweepWorker) Run(ctx context.Context) error {
	if w.registry == nil {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *SweepWorker) tick() {
	for _, id := range w.registry.Sweep() {
		w.logger.Debug().Str("session_id", id.String()).Msg("session evicted")
		if w.onEvict != nil {
			w.onEvict(id)
		}
	}
}
