package collector

import (
	"context"
	"time"

	"FibTrader/internal/model"
)

// Fetcher returns the most recent bars for a trading pair, oldest first.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.PriceBar, error)
	Name() string
}

// HistoryFetcher can page through bars starting at a point in time.
type HistoryFetcher interface {
	Fetcher
	FetchBarsSince(ctx context.Context, symbol, interval string, since time.Time, limit int) ([]model.PriceBar, error)
}
