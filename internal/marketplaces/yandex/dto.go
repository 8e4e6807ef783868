package yandex

type offerMappingEntriesResponse struct {
	Status string `json:"status"`
	Result struct {
		Paging struct {
			NextPageToken string `json:"nextPageToken"`
		} `json:"paging"`
		OfferMappingEntries []struct {
			Offer struct {
				ShopSku string `json:"shopSku"`
			} `json:"offer"`
		} `json:"offerMappingEntries"`
	} `json:"result"`
}

type stocksRequest struct {
	Skus []skuStock `json:"skus"`
}

type skuStock struct {
	Sku         string      `json:"sku"`
	WarehouseID int64       `json:"warehouseId"`
	Items       []stockItem `json:"items"`
}

type stockItem struct {
	Count     int    `json:"count"`
	Type      string `json:"type"`
	UpdatedAt string `json:"updatedAt"`
}

type pricesRequest struct {
	Offers []offerPrice `json:"offers"`
}

type offerPrice struct {
	ID    string `json:"id"`
	Price price  `json:"price"`
}

type price struct {
	Value      int64  `json:"value"`
	CurrencyID string `json:"currencyId"`
}

type statusResponse struct {
	Status string `json:"status"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}
