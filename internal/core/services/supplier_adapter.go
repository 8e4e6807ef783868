package services

import (
	"context"
	"gomarket_sync/internal/core/models"
)

// SupplierAdapter определяет, что должен уметь источник данных поставщика.
type SupplierAdapter interface {
	// FetchRecords скачивает и разбирает актуальный фид поставщика.
	FetchRecords(ctx context.Context) ([]models.ProductRecord, error)
}

// CatalogPage -- одна страница каталога маркетплейса.
// Пустой NextToken означает, что страниц больше нет.
type CatalogPage struct {
	OfferIDs  []string
	NextToken string
}

// CatalogReader читает каталог постранично, начиная с любого токена.
type CatalogReader interface {
	ReadCatalogPage(ctx context.Context, pageToken string) (CatalogPage, error)
}

// Marketplace -- клиент одной кампании/аккаунта маркетплейса.
type Marketplace interface {
	CatalogReader
	Name() string
	UpdateStocks(ctx context.Context, stocks []models.StockUpdate) error
	UpdatePrices(ctx context.Context, prices []models.PriceUpdate) error
}
