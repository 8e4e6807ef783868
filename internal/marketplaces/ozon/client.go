// Package ozon -- клиент Seller API Ozon.
package ozon

import (
	"context"
	"gomarket_sync/config"
	"gomarket_sync/internal/core/errs"
	"gomarket_sync/internal/core/models"
	"gomarket_sync/internal/core/services"
	"gomarket_sync/pkg/clients"
	"gomarket_sync/pkg/logger"
	"gomarket_sync/pkg/middleware"
	"net/http"
	"strconv"
)

const (
	Marketplace = "ozon"

	productListURL  = "/v2/product/list"
	importStocksURL = "/v1/product/import/stocks"
	importPricesURL = "/v1/product/import/prices"

	catalogPageLimit = 1000

	currencyRUB   = "RUB"
	autoActionOff = "UNKNOWN"
	noOldPrice    = "0"
)

type Client struct {
	*clients.BaseClient
	log logger.Logger
}

var _ services.Marketplace = (*Client)(nil)

func NewClient(cfg config.OzonConfig, log logger.Logger) *Client {
	return &Client{
		BaseClient: clients.NewBaseClient(Marketplace, cfg.BaseURL, clients.NewClientKeyAuth(cfg.ClientID, cfg.APIKey), cfg.Timeout, log,
			middleware.Logging(log)),
		log: log,
	}
}

func (c *Client) Name() string { return Marketplace }

// ReadCatalogPage читает страницу /v2/product/list. Токен страницы -- last_id.
// Каталог кончается на пустом last_id или на странице короче лимита.
func (c *Client) ReadCatalogPage(ctx context.Context, pageToken string) (services.CatalogPage, error) {
	req := productListRequest{
		Filter: productFilter{Visibility: "ALL"},
		LastID: pageToken,
		Limit:  catalogPageLimit,
	}
	var resp productListResponse
	if err := c.DoRequest(ctx, http.MethodPost, productListURL, req, &resp); err != nil {
		return services.CatalogPage{}, err
	}

	items := resp.Result.Items
	page := services.CatalogPage{OfferIDs: make([]string, 0, len(items))}
	for _, item := range items {
		if item.OfferID == "" {
			continue
		}
		page.OfferIDs = append(page.OfferIDs, item.OfferID)
	}
	if len(items) == catalogPageLimit {
		page.NextToken = resp.Result.LastID
	}
	c.log.Debug("Ozon catalog page: %d items, total %d", len(items), resp.Result.Total)
	return page, nil
}

// UpdateStocks отправляет пакет остатков. warehouse_id не передается, если склад не задан.
func (c *Client) UpdateStocks(ctx context.Context, stocks []models.StockUpdate) error {
	body := stocksRequest{Stocks: make([]stockItem, 0, len(stocks))}
	for _, s := range stocks {
		item := stockItem{OfferID: s.SKU, Stock: s.Quantity}
		if s.WarehouseID != "" {
			id, err := strconv.ParseInt(s.WarehouseID, 10, 64)
			if err != nil {
				return errs.Configf("ozon.stocks", "warehouse id %q for %s is not a number", s.WarehouseID, s.SKU)
			}
			item.WarehouseID = id
		}
		body.Stocks = append(body.Stocks, item)
	}

	var resp importResponse
	if err := c.DoRequest(ctx, http.MethodPost, importStocksURL, body, &resp); err != nil {
		return err
	}
	c.reportRejected("stocks", resp)
	return nil
}

// UpdatePrices отправляет пакет цен целыми рублями, без старой цены и без автоакций.
func (c *Client) UpdatePrices(ctx context.Context, prices []models.PriceUpdate) error {
	body := pricesRequest{Prices: make([]priceItem, 0, len(prices))}
	for _, p := range prices {
		body.Prices = append(body.Prices, priceItem{
			AutoActionEnabled: autoActionOff,
			CurrencyCode:      currencyRUB,
			OfferID:           p.SKU,
			OldPrice:          noOldPrice,
			Price:             strconv.FormatInt(p.Price.IntPart(), 10),
		})
	}

	var resp importResponse
	if err := c.DoRequest(ctx, http.MethodPost, importPricesURL, body, &resp); err != nil {
		return err
	}
	c.reportRejected("prices", resp)
	return nil
}

// reportRejected пишет в лог позиции, которые Ozon принял в запросе, но не обновил.
func (c *Client) reportRejected(kind string, resp importResponse) {
	rejected := 0
	for _, r := range resp.Result {
		if r.Updated {
			continue
		}
		rejected++
		if len(r.Errors) > 0 {
			c.log.Warn("Ozon rejected %s for %s: %s %s", kind, r.OfferID, r.Errors[0].Code, r.Errors[0].Message)
		}
	}
	if rejected > 0 {
		c.log.Warn("Ozon did not update %d of %d %s", rejected, len(resp.Result), kind)
	}
}
