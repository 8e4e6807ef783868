package models

import "github.com/shopspring/decimal"

// StockUpdate -- остаток, который уйдет в маркетплейс.
type StockUpdate struct {
	SKU         string `json:"sku"`
	Quantity    int    `json:"quantity"`
	WarehouseID string `json:"warehouse_id"`
}

// PriceUpdate -- цена, которая уйдет в маркетплейс.
type PriceUpdate struct {
	SKU   string          `json:"sku"`
	Price decimal.Decimal `json:"price"`
}

// Plan -- результат планировщика для одной цели.
type Plan struct {
	Stocks []StockUpdate
	Prices []PriceUpdate
}

func (p Plan) Empty() bool {
	return len(p.Stocks) == 0 && len(p.Prices) == 0
}
