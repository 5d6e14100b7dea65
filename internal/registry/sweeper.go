package registry

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper periodically runs the expiry pass so codes on an idle server
// still get their expired log entries. Every registry operation sweeps
// lazily anyway, so the interval only bounds log latency.
type Sweeper struct {
	logger   *logrus.Entry
	registry *Registry
	interval time.Duration
}

func NewSweeper(logger *logrus.Logger, registry *Registry, interval time.Duration) *Sweeper {
	return &Sweeper{
		logger:   logger.WithField("component", "expiry_sweeper"),
		registry: registry,
		interval: interval,
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.WithField("interval", s.interval).Info("Starting expiry sweeper")

	for {
		select {
		case <-ticker.C:
			if count := s.registry.Sweep(); count > 0 {
				s.logger.WithField("count", count).Info("Expired access codes")
			}
		case <-ctx.Done():
			s.logger.Info("Stopping expiry sweeper")
			return
		}
	}
}
