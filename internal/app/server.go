// Package app собирает сервис синхронизации из конфига.
package app

import (
	"context"
	"errors"
	"gomarket_sync/config"
	"gomarket_sync/internal/marketplaces/ozon"
	"gomarket_sync/internal/marketplaces/yandex"
	"gomarket_sync/internal/storage"
	"gomarket_sync/internal/suppliers/timeworld"
	"gomarket_sync/internal/syncer"
	"gomarket_sync/metrics"
	"gomarket_sync/pkg/business/service/feed"
	"gomarket_sync/pkg/dbconnect"
	"gomarket_sync/pkg/dbconnect/migration"
	"gomarket_sync/pkg/dbconnect/postgres"
	"gomarket_sync/pkg/logger"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

type SyncServer struct {
	cfg  *config.AppConfig
	root *logger.BaseLogger
	log  logger.Logger
}

func NewSyncServer(cfg *config.AppConfig, writer io.Writer) *SyncServer {
	root := logger.NewLogger(writer, "")
	return &SyncServer{cfg: cfg, root: root, log: root.WithPrefix("[SyncServer]")}
}

func (s *SyncServer) component(prefix string) *logger.BaseLogger {
	return s.root.WithPrefix(prefix)
}

// Targets строит цели в порядке конфига: кампании Яндекса, затем Ozon.
// Кампании Яндекса работают под одним токеном и делят один лимитер.
func (s *SyncServer) Targets() []syncer.Target {
	var targets []syncer.Target

	if s.cfg.YandexEnabled() {
		yc := s.cfg.Yandex
		limiter := newLimiter(yc.RequestsPerMinute)
		for _, campaign := range yc.Campaigns {
			client := yandex.NewClient(yc, campaign, s.component("[Yandex "+campaign.Name+"]"))
			targets = append(targets, syncer.Target{
				Marketplace: client,
				CampaignID:  campaign.CampaignID,
				WarehouseID: campaign.WarehouseID,
				Limits:      yc.Limits,
				Policy:      syncer.Policy{MaxStock: yc.MaxStock, ZeroMissing: yc.ZeroMissing},
				Limiter:     limiter,
			})
		}
	}

	if s.cfg.OzonEnabled() {
		oc := s.cfg.Ozon
		targets = append(targets, syncer.Target{
			Marketplace: ozon.NewClient(oc, s.component("[Ozon]")),
			CampaignID:  oc.ClientID,
			WarehouseID: oc.WarehouseID,
			Limits:      oc.Limits,
			Policy:      syncer.Policy{MaxStock: oc.MaxStock, ZeroMissing: oc.ZeroMissing},
			Limiter:     newLimiter(oc.RequestsPerMinute),
		})
	}
	return targets
}

func newLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// Service собирает сервис синхронизации. Если журнал включен, но база недоступна,
// сервис работает без журнала. closeFn закрывает подключение к базе.
func (s *SyncServer) Service(ctx context.Context) (svc *syncer.Service, closeFn func()) {
	supplier := timeworld.NewStockFeed(s.cfg.Supplier, feed.NewHTTPFetcher(s.cfg.Supplier.Timeout), s.component("[TimeWorld]"))
	svc = syncer.NewService(supplier, s.Targets(), s.component("[Sync]"))
	closeFn = func() {}

	if !s.cfg.Postgres.Enabled {
		return svc, closeFn
	}

	var connector dbconnect.Database = postgres.NewPgConnector(&s.cfg.Postgres, s.component("[Postgres]")).
		SetRetries(s.cfg.Postgres.MaxRetries, s.cfg.Postgres.RetryDelay)
	db, err := connector.Connect(ctx)
	if err != nil {
		s.log.Error(err, "Run journal disabled: cannot connect to Postgres")
		return svc, closeFn
	}
	if err := migration.Apply(db, storage.Migrations(s.component("[Migrations]"))...); err != nil {
		s.log.Error(err, "Run journal disabled: migrations failed")
		connector.Close()
		return svc, closeFn
	}
	s.log.Info("Run journal migrations applied successfully!")

	svc.SetJournal(storage.NewJournalRepository(db))
	return svc, func() { connector.Close() }
}

// RunOnce выполняет один прогон с таймаутом.
func (s *SyncServer) RunOnce(ctx context.Context, timeout time.Duration) error {
	svc, closeFn := s.Service(ctx)
	defer closeFn()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	_, err := svc.Run(ctx)
	return err
}

// RunScheduled повторяет прогоны с интервалом и отдает /metrics, пока не отменен ctx.
func (s *SyncServer) RunScheduled(ctx context.Context, interval, timeout time.Duration) error {
	svc, closeFn := s.Service(ctx)
	defer closeFn()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.MetricsHandler())
	srv := &http.Server{Addr: s.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	// без метрик планировщик не работает: падение сервера останавливает прогоны
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		s.log.Info("Serving metrics on %s/metrics", s.cfg.Metrics.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error(err, "Metrics server failed")
			serveErr <- err
			stop()
		}
		close(serveErr)
	}()

	scheduler := &syncer.Scheduler{Runner: svc, Interval: interval, Timeout: timeout, Log: s.component("[Scheduler]")}
	scheduler.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("metrics server shutdown: %s", err)
	}
	return <-serveErr
}
