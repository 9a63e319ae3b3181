package game

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/er1ck02/blobbet-server/internal/config"
)

// Loop drives every room at a fixed tick rate from a single goroutine, so
// passes never overlap.
type Loop struct {
	registry    *Registry
	interval    time.Duration
	statusEvery time.Duration
	log         *zap.Logger
	now         func() time.Time

	ticks      uint64
	lastStatus time.Time
}

// NewLoop creates a loop bound to the registry
func NewLoop(registry *Registry, cfg *config.Config, log *zap.Logger) *Loop {
	return &Loop{
		registry:    registry,
		interval:    cfg.World.TickInterval,
		statusEvery: cfg.World.StatusLogEvery,
		log:         log,
		now:         time.Now,
	}
}

// Run ticks until ctx is cancelled
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	l.log.Info("game loop started", zap.Duration("interval", l.interval))

	for {
		select {
		case <-ctx.Done():
			l.log.Info("game loop stopped", zap.Uint64("ticks", l.ticks))
			return
		case <-ticker.C:
			l.tick()
		}
	}
}

// tick runs one registry pass and reports overruns
func (l *Loop) tick() {
	start := l.now()
	l.registry.Tick(start)
	l.ticks++

	if took := l.now().Sub(start); took > l.interval {
		l.log.Warn("tick overran interval",
			zap.Uint64("tick", l.ticks),
			zap.Duration("took", took),
			zap.Duration("interval", l.interval))
	}

	if l.statusEvery > 0 && start.Sub(l.lastStatus) >= l.statusEvery {
		l.lastStatus = start
		st := l.registry.Stats()
		l.log.Info("status",
			zap.Uint64("tick", l.ticks),
			zap.Int("rooms", st.Rooms),
			zap.Int("sessions", st.Sessions),
			zap.Any("by_mode", st.ByMode))
	}
}
