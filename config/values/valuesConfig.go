package values

// Limits -- максимальное число элементов в одном запросе к API.
type Limits struct {
	StockBatch int `yaml:"stock_batch"`
	PriceBatch int `yaml:"price_batch"`
}

// Лимиты API маркетплейсов по умолчанию.
var (
	YandexLimits = Limits{StockBatch: 2000, PriceBatch: 500}
	OzonLimits   = Limits{StockBatch: 100, PriceBatch: 1000}
)

// Колонки фида поставщика по умолчанию.
const (
	SKUColumn      = "Код"
	QuantityColumn = "Количество"
	PriceColumn    = "Цена"
)

// Формат фида по умолчанию: выгрузка 1С в Windows-1251 через ';'.
const (
	FeedEncoding  = "windows-1251"
	FeedDelimiter = ";"
)

const (
	// StockOverflow -- остаток для ячеек вида ">10".
	StockOverflow = 100
	// StockReserve -- остатки не больше этого значения отправляются как 0.
	StockReserve = 1
)

// WithDefaults подставляет лимиты по умолчанию вместо нулевых.
func (l Limits) WithDefaults(def Limits) Limits {
	if l.StockBatch == 0 {
		l.StockBatch = def.StockBatch
	}
	if l.PriceBatch == 0 {
		l.PriceBatch = def.PriceBatch
	}
	return l
}
