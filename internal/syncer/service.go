// Package syncer выполняет прогон синхронизации: фид поставщика -> каталог -> план -> пакеты.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"gomarket_sync/config/values"
	"gomarket_sync/internal/core/errs"
	"gomarket_sync/internal/core/models"
	"gomarket_sync/internal/core/services"
	"gomarket_sync/metrics"
	"gomarket_sync/pkg/logger"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Этапы прогона.
const (
	StageFetch   = "fetch"
	StageCatalog = "catalog"
	StageStocks  = "stocks"
	StagePrices  = "prices"
)

// Target -- одна кампания или аккаунт маркетплейса.
type Target struct {
	Marketplace services.Marketplace
	CampaignID  string
	WarehouseID string
	Limits      values.Limits
	Policy      Policy
	Limiter     *rate.Limiter
}

// Journal -- журнал прогонов. Только пишет, на планирование не влияет.
type Journal interface {
	StartRun(ctx context.Context, runID uuid.UUID, startedAt time.Time) error
	RecordBatch(ctx context.Context, batch models.BatchRecord) error
	FinishRun(ctx context.Context, runID uuid.UUID, finishedAt time.Time, runErr error) error
}

// StageError указывает этап и цель, на которых оборвался прогон.
type StageError struct {
	Stage  string
	Target string
	Err    error
}

func (e *StageError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Target, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type TargetReport struct {
	Target  string
	Offers  int
	Stocks  int
	Prices  int
	Batches int
}

// Report -- итог одного прогона.
type Report struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Records    int
	Targets    []TargetReport
}

type Service struct {
	supplier services.SupplierAdapter
	targets  []Target
	journal  Journal
	log      logger.Logger
	now      func() time.Time
}

func NewService(supplier services.SupplierAdapter, targets []Target, log logger.Logger) *Service {
	return &Service{supplier: supplier, targets: targets, log: log, now: time.Now}
}

// SetJournal включает журнал прогонов.
func (s *Service) SetJournal(journal Journal) *Service {
	s.journal = journal
	return s
}

// Run выполняет один прогон. Фид скачивается до первого обращения к маркетплейсам,
// поэтому битый фид не порождает ни одного вызова API.
// Любая ошибка прерывает прогон и возвращается как *StageError.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.New(), StartedAt: s.now()}
	runMetrics := &metrics.SyncMetrics{}
	s.log.Info("Sync run %s started, %d targets", report.RunID, len(s.targets))
	s.journalStart(ctx, report)

	err := s.run(ctx, report, runMetrics)

	report.FinishedAt = s.now()
	s.journalFinish(ctx, report, err)

	var stageErr *StageError
	stage := ""
	if errors.As(err, &stageErr) {
		stage = stageErr.Stage
	}
	metrics.RecordRun(stage, err)

	if err != nil {
		kind, _ := errs.KindOf(err)
		s.log.Error(err, "Sync run %s failed at stage %s (kind=%s)", report.RunID, stage, kind)
		return report, err
	}
	s.log.Info("Sync run %s finished in %s: records=%d offers=%d stocks=%d prices=%d batches=%d",
		report.RunID, report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond),
		runMetrics.Records.Load(), runMetrics.Offers.Load(), runMetrics.StockUpdates.Load(),
		runMetrics.PriceUpdates.Load(), runMetrics.Batches.Load())
	return report, nil
}

func (s *Service) run(ctx context.Context, report *Report, runMetrics *metrics.SyncMetrics) error {
	records, err := s.supplier.FetchRecords(ctx)
	if err != nil {
		return &StageError{Stage: StageFetch, Err: err}
	}
	report.Records = len(records)
	runMetrics.Records.Store(int64(len(records)))

	for _, target := range s.targets {
		tr, err := s.syncTarget(ctx, report.RunID, target, records, runMetrics)
		report.Targets = append(report.Targets, tr)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) syncTarget(ctx context.Context, runID uuid.UUID, target Target, records []models.ProductRecord, runMetrics *metrics.SyncMetrics) (TargetReport, error) {
	name := target.Marketplace.Name()
	tr := TargetReport{Target: name}

	ids, err := CollectOffers(ctx, target.Marketplace)
	if err != nil {
		return tr, &StageError{Stage: StageCatalog, Target: name, Err: err}
	}
	tr.Offers = len(ids)
	runMetrics.Offers.Add(int64(len(ids)))

	plan := BuildPlan(records, toOffers(ids, target.CampaignID, target.WarehouseID), target.Policy)
	s.log.Info("%s: %d offers in catalog, %d stock and %d price updates planned",
		name, len(ids), len(plan.Stocks), len(plan.Prices))
	if plan.Empty() {
		return tr, nil
	}

	applied := runMetrics.Batches.Load()
	stocks, err := Submit(ctx, s.submitter(ctx, runID, name, models.BatchKindStocks, target, &tr, runMetrics),
		plan.Stocks, target.Limits.StockBatch, target.Marketplace.UpdateStocks)
	tr.Stocks = stocks
	runMetrics.StockUpdates.Add(int64(stocks))
	if err != nil {
		return tr, &StageError{Stage: StageStocks, Target: name, Err: withApplied(err, applied)}
	}

	applied = runMetrics.Batches.Load()
	prices, err := Submit(ctx, s.submitter(ctx, runID, name, models.BatchKindPrices, target, &tr, runMetrics),
		plan.Prices, target.Limits.PriceBatch, target.Marketplace.UpdatePrices)
	tr.Prices = prices
	runMetrics.PriceUpdates.Add(int64(prices))
	if err != nil {
		return tr, &StageError{Stage: StagePrices, Target: name, Err: withApplied(err, applied)}
	}
	return tr, nil
}

// withApplied помечает ошибку отправки пакетами, уже принятыми в этом прогоне:
// после них прогон частичный, даже если упал первый пакет вызова.
func withApplied(err error, applied int64) error {
	var se *errs.SubmitError
	if errors.As(err, &se) {
		se.Applied = int(applied)
	}
	return err
}

func (s *Service) submitter(ctx context.Context, runID uuid.UUID, target, kind string, t Target, tr *TargetReport, runMetrics *metrics.SyncMetrics) Submitter {
	return Submitter{
		Limiter: t.Limiter,
		OnBatch: func(index, size int, err error) {
			metrics.RecordBatch(target, kind, size, err)
			if err != nil {
				return
			}
			tr.Batches++
			runMetrics.Batches.Add(1)
			s.log.Debug("%s: %s batch %d (%d items) accepted", target, kind, index+1, size)
			s.journalBatch(ctx, models.BatchRecord{
				RunID: runID, Target: target, Kind: kind, Chunk: index, Size: size, SubmittedAt: s.now(),
			})
		},
	}
}

// Ошибки журнала только пишутся в лог и не влияют на прогон.

func (s *Service) journalStart(ctx context.Context, report *Report) {
	if s.journal == nil {
		return
	}
	if err := s.journal.StartRun(ctx, report.RunID, report.StartedAt); err != nil {
		s.log.Warn("journal: failed to start run %s: %s", report.RunID, err)
	}
}

func (s *Service) journalBatch(ctx context.Context, batch models.BatchRecord) {
	if s.journal == nil {
		return
	}
	if err := s.journal.RecordBatch(ctx, batch); err != nil {
		s.log.Warn("journal: failed to record batch: %s", err)
	}
}

func (s *Service) journalFinish(ctx context.Context, report *Report, runErr error) {
	if s.journal == nil {
		return
	}
	// прогон мог упасть по таймауту контекста, итог все равно записываем
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.journal.FinishRun(ctx, report.RunID, report.FinishedAt, runErr); err != nil {
		s.log.Warn("journal: failed to finish run %s: %s", report.RunID, err)
	}
}
