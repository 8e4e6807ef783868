package timeworld

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"gomarket_sync/config"
	"gomarket_sync/internal/core/errs"
	"gomarket_sync/pkg/business/service/feed"
	"gomarket_sync/pkg/logger"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"
)

func zipFeed(t *testing.T, name, csv string) []byte {
	t.Helper()
	encoded, err := charmap.Windows1251.NewEncoder().String(csv)
	if err != nil {
		t.Fatal(err)
	}
	return zipRaw(t, name, encoded)
}

func zipRaw(t *testing.T, name, encoded string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, encoded); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newFeed(t *testing.T, payload []byte, member string) (*StockFeed, string) {
	t.Helper()
	cfg := config.Default().Supplier
	cfg.ArchiveMember = member
	return newFeedWithConfig(t, payload, cfg)
}

func newFeedWithConfig(t *testing.T, payload []byte, cfg config.SupplierConfig) (*StockFeed, string) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	t.Cleanup(ts.Close)

	cfg.URL = ts.URL + "/ostatki.zip"
	dir := t.TempDir()
	f := NewStockFeed(cfg, feed.NewHTTPFetcher(5*time.Second), logger.NewLogger(io.Discard, "[test]")).SetTempDir(dir)
	return f, dir
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("temp file left behind: %v", entries)
	}
}

const sampleFeed = "Прайс-лист;;;\n" +
	"Наименование;Код;Количество;Цена\n" +
	"Casio;;;\n" +
	"Часы A;A100;>10;12 990.00\n" +
	"Часы B;A200;1;5000\n" +
	"Часы C;A300;4;7000,50\n" +
	"Часы A дубль;A100;2;1\n"

func TestFetchRecords(t *testing.T) {
	f, dir := newFeed(t, zipFeed(t, "ostatki.csv", sampleFeed), "")

	records, err := f.FetchRecords(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	assertDirEmpty(t, dir)

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %+v", records)
	}
	want := []struct {
		sku   string
		qty   int
		price string
	}{{"A100", 100, "12990"}, {"A200", 0, "5000"}, {"A300", 4, "7000.5"}}
	for i, w := range want {
		r := records[i]
		if r.SKU != w.sku || r.Quantity != w.qty || r.Price.String() != w.price {
			t.Fatalf("record %d = %+v, want %+v", i, r, w)
		}
	}
}

func TestFetchRecordsConfiguredFormat(t *testing.T) {
	cfg := config.Default().Supplier
	cfg.Encoding = "utf-8"
	cfg.Delimiter = ","
	payload := zipRaw(t, "stock.csv", "Код,Количество,Цена\nB1,5,\"1 200,00 руб.\"\n")
	f, _ := newFeedWithConfig(t, payload, cfg)

	records, err := f.FetchRecords(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].SKU != "B1" || records[0].Quantity != 5 || records[0].Price.String() != "1200" {
		t.Fatalf("records = %+v", records)
	}
}

func TestFetchRecordsMissingFieldIsFormatError(t *testing.T) {
	f, dir := newFeed(t, zipFeed(t, "ostatki.csv", "Код;Количество\nA100;3\n"), "")

	_, err := f.FetchRecords(context.Background())
	if !errors.Is(err, errs.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
	assertDirEmpty(t, dir)
}

func TestFetchRecordsNotZip(t *testing.T) {
	f, dir := newFeed(t, []byte("<html>maintenance</html>"), "")

	if _, err := f.FetchRecords(context.Background()); !errors.Is(err, errs.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
	assertDirEmpty(t, dir)
}

func TestFetchRecordsMemberSelection(t *testing.T) {
	f, _ := newFeed(t, zipFeed(t, "ostatki.csv", sampleFeed), "other.csv")
	if _, err := f.FetchRecords(context.Background()); !errors.Is(err, errs.ErrFormat) {
		t.Fatalf("expected format error for missing member, got %v", err)
	}

	f, _ = newFeed(t, zipFeed(t, "data/ostatki.csv", sampleFeed), "ostatki.csv")
	records, err := f.FetchRecords(context.Background())
	if err != nil || len(records) != 3 {
		t.Fatalf("member in subdirectory: %v %v", records, err)
	}
}

func TestFetchRecordsUnreachable(t *testing.T) {
	cfg := config.Default().Supplier
	ts := httptest.NewServer(http.NotFoundHandler())
	cfg.URL = ts.URL
	ts.Close()

	f := NewStockFeed(cfg, feed.NewHTTPFetcher(time.Second), logger.NewLogger(io.Discard, "[test]"))
	if _, err := f.FetchRecords(context.Background()); !errors.Is(err, errs.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}
