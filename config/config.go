package config

import (
	"os"
	"strings"
)

// applyEnv накладывает переменные окружения поверх файла.
// Имена переменных совпадают с теми, что использовались в скриптах синхронизации.
func (c *AppConfig) applyEnv() {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Supplier.URL = getEnv("SUPPLIER_URL", c.Supplier.URL)

	c.Yandex.Token = getEnv("MARKET_TOKEN", c.Yandex.Token)
	c.Yandex.Campaigns = upsertCampaign(c.Yandex.Campaigns, "fbs", os.Getenv("FBS_ID"), os.Getenv("WAREHOUSE_FBS_ID"))
	c.Yandex.Campaigns = upsertCampaign(c.Yandex.Campaigns, "dbs", os.Getenv("DBS_ID"), os.Getenv("WAREHOUSE_DBS_ID"))

	c.Ozon.ClientID = getEnv("CLIENT_ID", c.Ozon.ClientID)
	c.Ozon.APIKey = getEnv("SELLER_TOKEN", c.Ozon.APIKey)
	c.Ozon.WarehouseID = getEnv("OZON_WAREHOUSE_ID", c.Ozon.WarehouseID)

	c.Postgres.Host = getEnv("POSTGRES_HOST", c.Postgres.Host)
	c.Postgres.Port = getEnv("POSTGRES_PORT", c.Postgres.Port)
	c.Postgres.User = getEnv("POSTGRES_USER", c.Postgres.User)
	c.Postgres.Password = getEnv("POSTGRES_PASSWORD", c.Postgres.Password)
	c.Postgres.DBName = getEnv("POSTGRES_NAME", c.Postgres.DBName)
	if v := os.Getenv("POSTGRES_ENABLED"); v != "" {
		c.Postgres.Enabled = strings.EqualFold(v, "true") || v == "1"
	}

	c.Metrics.Addr = getEnv("METRICS_ADDR", c.Metrics.Addr)
}

// upsertCampaign обновляет кампанию с таким именем или добавляет новую.
// Пустой campaignID ничего не меняет.
func upsertCampaign(campaigns []CampaignConfig, name, campaignID, warehouseID string) []CampaignConfig {
	if campaignID == "" {
		return campaigns
	}
	for i := range campaigns {
		if campaigns[i].Name == name {
			campaigns[i].CampaignID = campaignID
			if warehouseID != "" {
				campaigns[i].WarehouseID = warehouseID
			}
			return campaigns
		}
	}
	return append(campaigns, CampaignConfig{Name: name, CampaignID: campaignID, WarehouseID: warehouseID})
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
