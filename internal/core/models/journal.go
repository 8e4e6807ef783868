package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusRunning = "running"
	RunStatusOK      = "ok"
	RunStatusFailed  = "failed"

	BatchKindStocks = "stocks"
	BatchKindPrices = "prices"
)

// BatchRecord -- отметка журнала об одном принятом пакете.
type BatchRecord struct {
	RunID       uuid.UUID
	Target      string
	Kind        string
	Chunk       int
	Size        int
	SubmittedAt time.Time
}
