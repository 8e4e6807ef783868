package yandex

import (
	"context"
	"encoding/json"
	"errors"
	"gomarket_sync/config"
	"gomarket_sync/internal/core/errs"
	"gomarket_sync/internal/core/models"
	"gomarket_sync/pkg/logger"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	cfg := config.Default().Yandex
	cfg.BaseURL = ts.URL
	cfg.Token = "token"
	c := NewClient(cfg, config.CampaignConfig{Name: "fbs", CampaignID: "111", WarehouseID: "777"}, logger.NewLogger(io.Discard, "[Yandex]"))
	c.now = func() time.Time { return time.Date(2024, 5, 1, 10, 20, 30, 999, time.FixedZone("MSK", 3*3600)) }
	return c
}

func TestReadCatalogPagePaging(t *testing.T) {
	var tokens []string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/campaigns/111/offer-mapping-entries" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "200" {
			t.Errorf("limit = %q", r.URL.Query().Get("limit"))
		}
		token := r.URL.Query().Get("page_token")
		tokens = append(tokens, token)
		switch token {
		case "":
			_, _ = io.WriteString(w, `{"status":"OK","result":{"paging":{"nextPageToken":"p2"},
				"offerMappingEntries":[{"offer":{"shopSku":"A1"}},{"offer":{"shopSku":"A2"}}]}}`)
		case "p2":
			_, _ = io.WriteString(w, `{"status":"OK","result":{"paging":{},
				"offerMappingEntries":[{"offer":{"shopSku":"A3"}},{"offer":{}}]}}`)
		}
	})

	first, err := c.ReadCatalogPage(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(first.OfferIDs) != 2 || first.NextToken != "p2" {
		t.Fatalf("first page = %+v", first)
	}
	second, err := c.ReadCatalogPage(context.Background(), first.NextToken)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.OfferIDs) != 1 || second.OfferIDs[0] != "A3" || second.NextToken != "" {
		t.Fatalf("second page = %+v", second)
	}
	if len(tokens) != 2 || tokens[1] != "p2" {
		t.Fatalf("tokens = %v", tokens)
	}
}

func TestReadCatalogPageAuthError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	if _, err := c.ReadCatalogPage(context.Background(), ""); !errors.Is(err, errs.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestUpdateStocksBody(t *testing.T) {
	var got stocksRequest
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/campaigns/111/offers/stocks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		_, _ = io.WriteString(w, `{"status":"OK"}`)
	})

	err := c.UpdateStocks(context.Background(), []models.StockUpdate{
		{SKU: "A1", Quantity: 5, WarehouseID: "777"},
		{SKU: "A2", Quantity: 0, WarehouseID: "777"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Skus) != 2 {
		t.Fatalf("skus = %+v", got.Skus)
	}
	s := got.Skus[0]
	if s.Sku != "A1" || s.WarehouseID != 777 || len(s.Items) != 1 {
		t.Fatalf("sku = %+v", s)
	}
	item := s.Items[0]
	if item.Count != 5 || item.Type != "FIT" || item.UpdatedAt != "2024-05-01T07:20:30Z" {
		t.Fatalf("item = %+v", item)
	}
}

func TestUpdateStocksBadWarehouse(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	})
	err := c.UpdateStocks(context.Background(), []models.StockUpdate{{SKU: "A1", Quantity: 1, WarehouseID: "main"}})
	if !errors.Is(err, errs.ErrConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestUpdatePricesBody(t *testing.T) {
	var got pricesRequest
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/campaigns/111/offer-prices/updates" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		_, _ = io.WriteString(w, `{"status":"OK"}`)
	})

	err := c.UpdatePrices(context.Background(), []models.PriceUpdate{
		{SKU: "A1", Price: decimal.RequireFromString("12990.99")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Offers) != 1 {
		t.Fatalf("offers = %+v", got.Offers)
	}
	o := got.Offers[0]
	if o.ID != "A1" || o.Price.Value != 12990 || o.Price.CurrencyID != "RUR" {
		t.Fatalf("offer = %+v", o)
	}
}

func TestUpdatePricesErrorStatus(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"ERROR","errors":[{"code":"BAD_REQUEST","message":"offers is empty"}]}`)
	})
	err := c.UpdatePrices(context.Background(), []models.PriceUpdate{{SKU: "A1", Price: decimal.NewFromInt(1)}})
	if !errors.Is(err, errs.ErrResponse) {
		t.Fatalf("expected response error, got %v", err)
	}
}

func TestRateLimit(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	err := c.UpdatePrices(context.Background(), []models.PriceUpdate{{SKU: "A1", Price: decimal.NewFromInt(1)}})
	if !errors.Is(err, errs.ErrRateLimit) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestName(t *testing.T) {
	c := NewClient(config.Default().Yandex, config.CampaignConfig{CampaignID: "42"}, logger.NewLogger(io.Discard, ""))
	if c.Name() != "yandex/42" {
		t.Fatalf("name = %q", c.Name())
	}
}
