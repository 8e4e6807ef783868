package models

import "github.com/shopspring/decimal"

// ProductRecord -- строка фида поставщика после разбора.
// Живет только в пределах одного прогона, пересобирается каждый раз.
type ProductRecord struct {
	SKU      string          `json:"sku"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Offer -- карточка, уже размещенная в каталоге маркетплейса.
type Offer struct {
	OfferID     string `json:"offer_id"`
	CampaignID  string `json:"campaign_id"`
	WarehouseID string `json:"warehouse_id"`
}
