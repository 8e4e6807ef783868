package syncer

import (
	"gomarket_sync/internal/core/models"
)

// Policy -- правила планирования для одной цели.
type Policy struct {
	// MaxStock ограничивает остаток сверху, 0 -- без ограничения.
	MaxStock int
	// ZeroMissing обнуляет остаток у карточек каталога, которых нет в фиде.
	ZeroMissing bool
}

// BuildPlan сопоставляет записи поставщика с каталогом маркетплейса.
// В план попадают только SKU, которые есть и в фиде, и в каталоге, в порядке фида.
// С ZeroMissing в конец остатков добавляются нули для остальных карточек каталога в его порядке.
// Функция чистая: одинаковый вход дает одинаковый план.
func BuildPlan(records []models.ProductRecord, offers []models.Offer, policy Policy) models.Plan {
	catalog := make(map[string]models.Offer, len(offers))
	for _, o := range offers {
		if _, ok := catalog[o.OfferID]; !ok {
			catalog[o.OfferID] = o
		}
	}

	var plan models.Plan
	matched := make(map[string]struct{}, len(records))
	for _, r := range records {
		offer, ok := catalog[r.SKU]
		if !ok {
			continue
		}
		if _, dup := matched[r.SKU]; dup {
			continue
		}
		matched[r.SKU] = struct{}{}

		plan.Stocks = append(plan.Stocks, models.StockUpdate{
			SKU:         r.SKU,
			Quantity:    clampStock(r.Quantity, policy.MaxStock),
			WarehouseID: offer.WarehouseID,
		})
		plan.Prices = append(plan.Prices, models.PriceUpdate{SKU: r.SKU, Price: r.Price})
	}

	if policy.ZeroMissing {
		for _, o := range offers {
			if _, ok := matched[o.OfferID]; ok {
				continue
			}
			matched[o.OfferID] = struct{}{}
			plan.Stocks = append(plan.Stocks, models.StockUpdate{SKU: o.OfferID, Quantity: 0, WarehouseID: o.WarehouseID})
		}
	}
	return plan
}

func clampStock(quantity, maxStock int) int {
	if quantity < 0 {
		return 0
	}
	if maxStock > 0 && quantity > maxStock {
		return maxStock
	}
	return quantity
}

// toOffers привязывает offer id каталога к кампании и складу цели.
func toOffers(ids []string, campaignID, warehouseID string) []models.Offer {
	offers := make([]models.Offer, 0, len(ids))
	for _, id := range ids {
		offers = append(offers, models.Offer{OfferID: id, CampaignID: campaignID, WarehouseID: warehouseID})
	}
	return offers
}
