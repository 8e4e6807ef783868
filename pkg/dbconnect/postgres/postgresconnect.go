package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"gomarket_sync/config"
	"gomarket_sync/pkg/logger"
	"sync"
	"time"

	_ "github.com/lib/pq"
)

const (
	defaultMaxRetries = 10
	defaultRetryDelay = 5 * time.Second
	dbMaxOpenConns    = 5
)

type PostgresDatabase struct {
	config.DatabaseConfig
	maxRetries int
	retryDelay time.Duration
	log        logger.Logger
	db         *sql.DB
	mu         sync.Mutex // Для защиты доступа к db
}

func NewPgConnector(dbConfig config.DatabaseConfig, log logger.Logger) *PostgresDatabase {
	return &PostgresDatabase{
		DatabaseConfig: dbConfig,
		maxRetries:     defaultMaxRetries,
		retryDelay:     defaultRetryDelay,
		log:            log,
	}
}

// SetRetries задает число попыток подключения и паузу между ними.
// Неположительные значения оставляют значения по умолчанию.
func (pg *PostgresDatabase) SetRetries(maxRetries int, delay time.Duration) *PostgresDatabase {
	if maxRetries > 0 {
		pg.maxRetries = maxRetries
	}
	if delay > 0 {
		pg.retryDelay = delay
	}
	return pg
}

// Connect открывает пул и проверяет его пингом, повторяя попытки с фиксированной паузой.
// Повторное подключение возвращает уже открытый пул.
func (pg *PostgresDatabase) Connect(ctx context.Context) (*sql.DB, error) {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if pg.db != nil {
		return pg.db, nil
	}

	var err error
	conStr := pg.GetConnectionString()

	for i := 0; i < pg.maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("postgres connect cancelled: %w", ctx.Err())
			case <-time.After(pg.retryDelay):
			}
		}

		var db *sql.DB
		db, err = sql.Open("postgres", conStr)
		if err != nil {
			pg.log.Warn("Failed to open Postgres (attempt %d/%d): %v", i+1, pg.maxRetries, err)
			continue
		}
		db.SetMaxOpenConns(dbMaxOpenConns)

		if err = db.PingContext(ctx); err != nil {
			pg.log.Warn("Failed to ping Postgres db (attempt %d/%d): %v", i+1, pg.maxRetries, err)
			db.Close()
			continue
		}

		pg.log.Info("Successfully connected to Postgres")
		pg.db = db
		return pg.db, nil
	}
	return nil, fmt.Errorf("postgres is unavailable after %d attempts: %w", pg.maxRetries, err)
}

func (pg *PostgresDatabase) Close() error {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if pg.db == nil {
		return nil
	}
	err := pg.db.Close()
	pg.db = nil
	return err
}
