package metrics

import "sync/atomic"

// SyncMetrics -- счетчики одного прогона по всем целям.
type SyncMetrics struct {
	Records      atomic.Int64
	Offers       atomic.Int64
	StockUpdates atomic.Int64
	PriceUpdates atomic.Int64
	Batches      atomic.Int64
}
