// Package yandex -- клиент Partner API Яндекс.Маркета для одной кампании (FBS или DBS).
package yandex

import (
	"context"
	"fmt"
	"gomarket_sync/config"
	"gomarket_sync/internal/core/errs"
	"gomarket_sync/internal/core/models"
	"gomarket_sync/internal/core/services"
	"gomarket_sync/pkg/clients"
	"gomarket_sync/pkg/logger"
	"gomarket_sync/pkg/middleware"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	Marketplace = "yandex"

	// максимальный размер страницы offer-mapping-entries
	catalogPageLimit = 200

	stockTypeFit = "FIT"
	currencyRUR  = "RUR"
)

type Client struct {
	*clients.BaseClient
	campaign config.CampaignConfig
	log      logger.Logger
	now      func() time.Time
}

var _ services.Marketplace = (*Client)(nil)

func NewClient(cfg config.YandexConfig, campaign config.CampaignConfig, log logger.Logger) *Client {
	return &Client{
		BaseClient: clients.NewBaseClient(Marketplace, cfg.BaseURL, clients.NewBearerAuth(cfg.Token), cfg.Timeout, log,
			middleware.Logging(log)),
		campaign: campaign,
		log:      log,
		now:      time.Now,
	}
}

// Name -- имя цели в логах и метриках, например yandex/fbs.
func (c *Client) Name() string {
	if c.campaign.Name != "" {
		return Marketplace + "/" + c.campaign.Name
	}
	return Marketplace + "/" + c.campaign.CampaignID
}

func (c *Client) campaignPath(suffix string) string {
	return "/campaigns/" + url.PathEscape(c.campaign.CampaignID) + suffix
}

// ReadCatalogPage читает одну страницу offer-mapping-entries.
func (c *Client) ReadCatalogPage(ctx context.Context, pageToken string) (services.CatalogPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(catalogPageLimit))
	if pageToken != "" {
		query.Set("page_token", pageToken)
	}

	var resp offerMappingEntriesResponse
	if err := c.DoRequest(ctx, http.MethodGet, c.campaignPath("/offer-mapping-entries?"+query.Encode()), nil, &resp); err != nil {
		return services.CatalogPage{}, err
	}

	page := services.CatalogPage{
		OfferIDs:  make([]string, 0, len(resp.Result.OfferMappingEntries)),
		NextToken: resp.Result.Paging.NextPageToken,
	}
	for _, entry := range resp.Result.OfferMappingEntries {
		if entry.Offer.ShopSku == "" {
			continue
		}
		page.OfferIDs = append(page.OfferIDs, entry.Offer.ShopSku)
	}
	return page, nil
}

// UpdateStocks отправляет один пакет остатков (PUT offers/stocks).
func (c *Client) UpdateStocks(ctx context.Context, stocks []models.StockUpdate) error {
	updatedAt := c.now().UTC().Truncate(time.Second).Format(time.RFC3339)

	body := stocksRequest{Skus: make([]skuStock, 0, len(stocks))}
	for _, s := range stocks {
		warehouseID, err := strconv.ParseInt(s.WarehouseID, 10, 64)
		if err != nil {
			return errs.Configf("yandex.stocks", "warehouse id %q for %s is not a number", s.WarehouseID, s.SKU)
		}
		body.Skus = append(body.Skus, skuStock{
			Sku:         s.SKU,
			WarehouseID: warehouseID,
			Items:       []stockItem{{Count: s.Quantity, Type: stockTypeFit, UpdatedAt: updatedAt}},
		})
	}

	var resp statusResponse
	if err := c.DoRequest(ctx, http.MethodPut, c.campaignPath("/offers/stocks"), body, &resp); err != nil {
		return err
	}
	return checkStatus("yandex.stocks", resp)
}

// UpdatePrices отправляет один пакет цен. Цена уходит целыми рублями, копейки отбрасываются.
func (c *Client) UpdatePrices(ctx context.Context, prices []models.PriceUpdate) error {
	body := pricesRequest{Offers: make([]offerPrice, 0, len(prices))}
	for _, p := range prices {
		body.Offers = append(body.Offers, offerPrice{
			ID:    p.SKU,
			Price: price{Value: p.Price.IntPart(), CurrencyID: currencyRUR},
		})
	}

	var resp statusResponse
	if err := c.DoRequest(ctx, http.MethodPost, c.campaignPath("/offer-prices/updates"), body, &resp); err != nil {
		return err
	}
	return checkStatus("yandex.prices", resp)
}

func checkStatus(op string, resp statusResponse) error {
	if resp.Status == "" || resp.Status == "OK" {
		return nil
	}
	if len(resp.Errors) > 0 {
		return errs.Response(op, fmt.Errorf("status %s: %s: %s", resp.Status, resp.Errors[0].Code, resp.Errors[0].Message))
	}
	return errs.Response(op, fmt.Errorf("status %s", resp.Status))
}
