package syncer

import (
	"context"
	"gomarket_sync/pkg/logger"
	"time"
)

// Runner -- то, что запускает планировщик. Реализуется *Service.
type Runner interface {
	Run(ctx context.Context) (*Report, error)
}

// Scheduler повторяет прогоны с интервалом. Прогоны идут в одной горутине и не пересекаются,
// лишние тики за время долгого прогона тикер отбрасывает сам.
type Scheduler struct {
	Runner   Runner
	Interval time.Duration
	Timeout  time.Duration
	Log      logger.Logger
}

// Run делает первый прогон сразу и дальше по тикеру, пока не отменен ctx.
func (s *Scheduler) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	s.tick(ctx)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Log.Info("Scheduler stopped")
			return
		case <-t.C:
			s.tick(ctx)
		}
	}
}

// tick выполняет один прогон с таймаутом.
func (s *Scheduler) tick(ctx context.Context) {
	runCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	if _, err := s.Runner.Run(runCtx); err != nil {
		// подробности уже в логе сервиса, следующий тик попробует снова
		s.Log.Warn("Scheduled sync failed: %s", err)
	}
}
