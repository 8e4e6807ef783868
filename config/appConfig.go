package config

import (
	"gomarket_sync/config/values"
	"gomarket_sync/internal/core/errs"
	"os"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSupplierURL = "https://timeworld.ru/upload/files/ostatki.zip"
	DefaultYandexURL   = "https://api.partner.market.yandex.ru"
	DefaultOzonURL     = "https://api-seller.ozon.ru"
)

type SupplierConfig struct {
	URL            string        `yaml:"url"`
	ArchiveMember  string        `yaml:"archive_member"`
	SKUColumn      string        `yaml:"sku_column"`
	QuantityColumn string        `yaml:"quantity_column"`
	PriceColumn    string        `yaml:"price_column"`
	Encoding       string        `yaml:"encoding"`
	Delimiter      string        `yaml:"delimiter"`
	StockOverflow  int           `yaml:"stock_overflow"`
	StockReserve   int           `yaml:"stock_reserve"`
	Timeout        time.Duration `yaml:"timeout"`
}

// CampaignConfig -- кампания Яндекс.Маркета (FBS или DBS) со своим складом.
type CampaignConfig struct {
	Name        string `yaml:"name"`
	CampaignID  string `yaml:"campaign_id"`
	WarehouseID string `yaml:"warehouse_id"`
}

// MarketplaceConfig -- общие для маркетплейсов настройки отправки.
type MarketplaceConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Limits            values.Limits `yaml:"limits"`
	MaxStock          int           `yaml:"max_stock"`
	ZeroMissing       bool          `yaml:"zero_missing"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Timeout           time.Duration `yaml:"timeout"`
}

type YandexConfig struct {
	MarketplaceConfig `yaml:",inline"`
	Token             string           `yaml:"token"`
	Campaigns         []CampaignConfig `yaml:"campaigns"`
}

type OzonConfig struct {
	MarketplaceConfig `yaml:",inline"`
	ClientID          string `yaml:"client_id"`
	APIKey            string `yaml:"api_key"`
	WarehouseID       string `yaml:"warehouse_id"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type AppConfig struct {
	LogLevel string         `yaml:"log_level"`
	Supplier SupplierConfig `yaml:"supplier"`
	Yandex   YandexConfig   `yaml:"yandex"`
	Ozon     OzonConfig     `yaml:"ozon"`
	Postgres PostgresConfig `yaml:"postgres"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// Default возвращает конфиг со значениями по умолчанию, без учетных данных.
func Default() *AppConfig {
	return &AppConfig{
		LogLevel: "info",
		Supplier: SupplierConfig{
			URL:            DefaultSupplierURL,
			SKUColumn:      values.SKUColumn,
			QuantityColumn: values.QuantityColumn,
			PriceColumn:    values.PriceColumn,
			Encoding:       values.FeedEncoding,
			Delimiter:      values.FeedDelimiter,
			StockOverflow:  values.StockOverflow,
			StockReserve:   values.StockReserve,
			Timeout:        2 * time.Minute,
		},
		Yandex: YandexConfig{MarketplaceConfig: MarketplaceConfig{
			BaseURL:           DefaultYandexURL,
			Limits:            values.YandexLimits,
			RequestsPerMinute: 100,
			Timeout:           60 * time.Second,
		}},
		Ozon: OzonConfig{MarketplaceConfig: MarketplaceConfig{
			BaseURL:           DefaultOzonURL,
			Limits:            values.OzonLimits,
			RequestsPerMinute: 80,
			Timeout:           60 * time.Second,
		}},
		Postgres: PostgresConfig{
			Host:       "localhost",
			Port:       "5432",
			User:       "postgres",
			Password:   "postgres",
			DBName:     "postgres",
			MaxRetries: 10,
			RetryDelay: 5 * time.Second,
		},
		Metrics: MetricsConfig{Addr: ":9090"},
	}
}

// LoadConfig читает YAML поверх значений по умолчанию и применяет переменные окружения.
// Пустое имя файла -- только значения по умолчанию и окружение.
func LoadConfig(filename string) (*AppConfig, error) {
	config := Default()
	if filename != "" {
		file, err := os.Open(filename)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(config); err != nil {
			return nil, errs.Configf("config.load", "decode %s: %v", filename, err)
		}
	}
	config.applyEnv()
	config.Yandex.Limits = config.Yandex.Limits.WithDefaults(values.YandexLimits)
	config.Ozon.Limits = config.Ozon.Limits.WithDefaults(values.OzonLimits)
	return config, nil
}

func (c *AppConfig) YandexEnabled() bool { return c.Yandex.Token != "" }

func (c *AppConfig) OzonEnabled() bool { return c.Ozon.ClientID != "" || c.Ozon.APIKey != "" }

// Validate проверяет, что для включенных маркетплейсов хватает данных.
func (c *AppConfig) Validate() error {
	const op = "config.validate"
	if c.Supplier.URL == "" {
		return errs.Configf(op, "supplier.url (SUPPLIER_URL) is required")
	}
	if _, err := htmlindex.Get(c.Supplier.Encoding); err != nil {
		return errs.Configf(op, "supplier.encoding %q is not supported", c.Supplier.Encoding)
	}
	if utf8.RuneCountInString(c.Supplier.Delimiter) != 1 {
		return errs.Configf(op, "supplier.delimiter must be a single character, got %q", c.Supplier.Delimiter)
	}
	if c.Supplier.StockReserve < 0 || c.Supplier.StockOverflow < 0 {
		return errs.Configf(op, "supplier stock_reserve and stock_overflow must be >= 0")
	}
	if !c.YandexEnabled() && !c.OzonEnabled() {
		return errs.Configf(op, "no marketplace configured: set yandex.token (MARKET_TOKEN) or ozon.client_id (CLIENT_ID)")
	}
	if c.YandexEnabled() {
		if len(c.Yandex.Campaigns) == 0 {
			return errs.Configf(op, "yandex.campaigns is empty (FBS_ID / DBS_ID)")
		}
		for i, camp := range c.Yandex.Campaigns {
			if camp.CampaignID == "" {
				return errs.Configf(op, "yandex.campaigns[%d].campaign_id is required", i)
			}
			if camp.WarehouseID == "" {
				return errs.Configf(op, "yandex.campaigns[%d].warehouse_id is required", i)
			}
		}
		if err := validateMarketplace("yandex", c.Yandex.MarketplaceConfig); err != nil {
			return err
		}
	}
	if c.OzonEnabled() {
		if c.Ozon.ClientID == "" {
			return errs.Configf(op, "ozon.client_id (CLIENT_ID) is required")
		}
		if c.Ozon.APIKey == "" {
			return errs.Configf(op, "ozon.api_key (SELLER_TOKEN) is required")
		}
		if err := validateMarketplace("ozon", c.Ozon.MarketplaceConfig); err != nil {
			return err
		}
	}
	if c.Postgres.Enabled && (c.Postgres.Host == "" || c.Postgres.DBName == "") {
		return errs.Configf(op, "postgres.host and postgres.dbname are required when the journal is enabled")
	}
	return nil
}

func validateMarketplace(name string, mc MarketplaceConfig) error {
	const op = "config.validate"
	if mc.BaseURL == "" {
		return errs.Configf(op, "%s.base_url is required", name)
	}
	if mc.Limits.StockBatch <= 0 || mc.Limits.PriceBatch <= 0 {
		return errs.Configf(op, "%s.limits must be positive", name)
	}
	if mc.MaxStock < 0 {
		return errs.Configf(op, "%s.max_stock must be >= 0", name)
	}
	if mc.RequestsPerMinute < 0 {
		return errs.Configf(op, "%s.requests_per_minute must be >= 0", name)
	}
	return nil
}
