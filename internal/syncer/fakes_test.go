package syncer

import (
	"context"
	"gomarket_sync/internal/core/models"
	"gomarket_sync/internal/core/services"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeSupplier struct {
	records []models.ProductRecord
	err     error
	calls   int
}

func (f *fakeSupplier) FetchRecords(ctx context.Context) ([]models.ProductRecord, error) {
	f.calls++
	return f.records, f.err
}

// fakeMarketplace отдает каталог из pages (ключ -- токен страницы) и запоминает пакеты.
type fakeMarketplace struct {
	name  string
	pages map[string]services.CatalogPage

	catalogErr   error
	stockErrAt   int // номер вызова UpdateStocks с ошибкой, с единицы; 0 -- без ошибок
	stockErr     error
	priceErrAt   int
	priceErr     error
	catalogCalls []string
	stockCalls   [][]models.StockUpdate
	priceCalls   [][]models.PriceUpdate
}

func newFakeMarketplace(name string, ids ...string) *fakeMarketplace {
	return &fakeMarketplace{name: name, pages: map[string]services.CatalogPage{"": {OfferIDs: ids}}}
}

func (f *fakeMarketplace) Name() string { return f.name }

func (f *fakeMarketplace) ReadCatalogPage(ctx context.Context, token string) (services.CatalogPage, error) {
	f.catalogCalls = append(f.catalogCalls, token)
	if f.catalogErr != nil {
		return services.CatalogPage{}, f.catalogErr
	}
	return f.pages[token], nil
}

func (f *fakeMarketplace) UpdateStocks(ctx context.Context, stocks []models.StockUpdate) error {
	f.stockCalls = append(f.stockCalls, stocks)
	if f.stockErrAt == len(f.stockCalls) {
		return f.stockErr
	}
	return nil
}

func (f *fakeMarketplace) UpdatePrices(ctx context.Context, prices []models.PriceUpdate) error {
	f.priceCalls = append(f.priceCalls, prices)
	if f.priceErrAt == len(f.priceCalls) {
		return f.priceErr
	}
	return nil
}

func (f *fakeMarketplace) apiCalls() int {
	return len(f.catalogCalls) + len(f.stockCalls) + len(f.priceCalls)
}

type fakeJournal struct {
	mu       sync.Mutex
	started  []uuid.UUID
	batches  []models.BatchRecord
	finished map[uuid.UUID]error
	err      error
}

func (j *fakeJournal) StartRun(ctx context.Context, runID uuid.UUID, startedAt time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.started = append(j.started, runID)
	return j.err
}

func (j *fakeJournal) RecordBatch(ctx context.Context, batch models.BatchRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.batches = append(j.batches, batch)
	return j.err
}

func (j *fakeJournal) FinishRun(ctx context.Context, runID uuid.UUID, finishedAt time.Time, runErr error) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.finished == nil {
		j.finished = map[uuid.UUID]error{}
	}
	j.finished[runID] = runErr
	return j.err
}

func record(sku string, qty int, price int64) models.ProductRecord {
	return models.ProductRecord{SKU: sku, Quantity: qty, Price: decimal.NewFromInt(price)}
}

func skus[T any](items []T, sku func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, sku(it))
	}
	return out
}

func stockSKU(s models.StockUpdate) string { return s.SKU }
func priceSKU(p models.PriceUpdate) string { return p.SKU }
