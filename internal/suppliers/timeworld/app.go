package timeworld

import (
	"archive/zip"
	"context"
	"fmt"
	"gomarket_sync/config"
	"gomarket_sync/internal/core/errs"
	"gomarket_sync/internal/core/models"
	"gomarket_sync/pkg/business/service/feed"
	"gomarket_sync/pkg/business/service/feed/converters"
	"gomarket_sync/pkg/logger"
	"io"
	"os"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/htmlindex"
)

const opFetch = "timeworld.fetch"

// StockFeed -- фид остатков поставщика: zip-архив с одной таблицей через ';'.
type StockFeed struct {
	url       string
	member    string
	tempDir   string
	fetcher   feed.Fetcher
	processor *feed.Processor
	log       logger.Logger
}

func NewStockFeed(cfg config.SupplierConfig, fetcher feed.Fetcher, log logger.Logger) *StockFeed {
	columns := []string{cfg.SKUColumn, cfg.QuantityColumn, cfg.PriceColumn}
	processor := feed.NewProcessor(columns).SetNewConverters(map[string]converters.ColumnConverter{
		cfg.SKUColumn:      converters.SKUConverter,
		cfg.QuantityColumn: converters.QuantityConverter(cfg.StockOverflow, cfg.StockReserve),
		cfg.PriceColumn:    converters.PriceConverter,
	}).SetKeyColumn(cfg.SKUColumn)
	// значения уже проверены config.Validate, неизвестные оставляют формат по умолчанию
	if enc, err := htmlindex.Get(cfg.Encoding); err == nil {
		processor.SetEncoding(enc)
	}
	if comma, _ := utf8.DecodeRuneInString(cfg.Delimiter); comma != utf8.RuneError {
		processor.SetComma(comma)
	}
	return &StockFeed{
		url:       cfg.URL,
		member:    cfg.ArchiveMember,
		fetcher:   fetcher,
		processor: processor,
		log:       log,
	}
}

// SetTempDir задает каталог для временного архива, пустая строка -- os.TempDir().
func (f *StockFeed) SetTempDir(dir string) *StockFeed {
	f.tempDir = dir
	return f
}

// FetchRecords скачивает архив во временный файл, разбирает таблицу и удаляет файл.
// Файл удаляется при любом исходе.
func (f *StockFeed) FetchRecords(ctx context.Context) ([]models.ProductRecord, error) {
	f.log.Info("Downloading supplier feed %s", f.url)
	body, err := f.fetcher.Fetch(ctx, f.url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(f.tempDir, "supplier-feed-*.zip")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			f.log.Warn("failed to remove temp file %s: %s", tmp.Name(), err)
		}
	}()

	size, err := io.Copy(tmp, body)
	if err != nil {
		return nil, errs.Network(opFetch, fmt.Errorf("download feed: %w", err))
	}
	f.log.Debug("Fetched feed archive size: %d bytes", size)

	archive, err := zip.NewReader(tmp, size)
	if err != nil {
		return nil, errs.Formatf(opFetch, "feed is not a zip archive: %v", err)
	}
	file, err := f.pickMember(archive)
	if err != nil {
		return nil, err
	}

	rc, err := file.Open()
	if err != nil {
		return nil, errs.Formatf(opFetch, "open %s: %v", file.Name, err)
	}
	defer rc.Close()

	rows, err := f.processor.ProcessCSV(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Name, err)
	}

	records := toRecords(rows)
	f.log.Info("Parsed %d supplier records from %s", len(records), file.Name)
	return records, nil
}

// pickMember возвращает файл из архива: заданный в конфиге или первый .csv/.txt.
func (f *StockFeed) pickMember(archive *zip.Reader) (*zip.File, error) {
	for _, file := range archive.File {
		if file.FileInfo().IsDir() {
			continue
		}
		name := path.Base(file.Name)
		if f.member != "" {
			if name == f.member {
				return file, nil
			}
			continue
		}
		switch strings.ToLower(path.Ext(name)) {
		case ".csv", ".txt":
			return file, nil
		}
	}
	if f.member != "" {
		return nil, errs.Formatf(opFetch, "archive has no member %q", f.member)
	}
	return nil, errs.Formatf(opFetch, "archive has no .csv or .txt member")
}

// toRecords собирает записи в порядке фида. Пустой SKU пропускается, при повторе берется первая строка.
func toRecords(rows [][]interface{}) []models.ProductRecord {
	seen := make(map[string]struct{}, len(rows))
	records := make([]models.ProductRecord, 0, len(rows))
	for _, row := range rows {
		sku, _ := row[0].(string)
		if sku == "" {
			continue
		}
		if _, dup := seen[sku]; dup {
			continue
		}
		seen[sku] = struct{}{}

		quantity, _ := row[1].(int)
		price, _ := row[2].(decimal.Decimal)
		records = append(records, models.ProductRecord{SKU: sku, Quantity: quantity, Price: price})
	}
	return records
}
