package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"FibTrader/internal/model"
)

// ErrNoData is returned when the market data provider answers with an empty window.
var ErrNoData = errors.New("no market data returned")

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price decimal.Decimal
	Bars  []model.PriceBar
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, _, _ string, limit int) ([]model.PriceBar, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		if len(m.Bars) > limit {
			return m.Bars[len(m.Bars)-limit:], nil
		}
		return m.Bars, nil
	}
	return generateMockBars(m.Price, limit), nil
}

func generateMockBars(basePrice decimal.Decimal, count int) []model.PriceBar {
	if basePrice.IsZero() {
		basePrice = decimal.NewFromInt(100)
	}
	start := time.Now().Truncate(time.Minute).Add(-time.Duration(count) * time.Minute)
	bars := make([]model.PriceBar, count)
	for i := 0; i < count; i++ {
		p := basePrice.Mul(decimal.NewFromFloat(1 + float64(i-count/2)*0.001))
		bars[i] = model.PriceBar{
			OpenTime: start.Add(time.Duration(i) * time.Minute),
			Open:     p.Mul(decimal.NewFromFloat(0.999)),
			High:     p.Mul(decimal.NewFromFloat(1.005)),
			Low:      p.Mul(decimal.NewFromFloat(0.995)),
			Close:    p,
			Volume:   decimal.NewFromInt(1000),
		}
	}
	return bars
}

// Collector fetches the sliding window of bars the engine evaluates.
type Collector struct {
	Fetcher  Fetcher
	Symbol   string
	Interval string
	Lookback int
	now      func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol, interval string, lookback int) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol, Interval: interval, Lookback: lookback, now: time.Now}
}

// Collect fetches the most recent Lookback bars.
func (c *Collector) Collect(ctx context.Context) (model.PriceWindow, error) {
	bars, err := c.Fetcher.FetchBars(ctx, c.Symbol, c.Interval, c.Lookback)
	if err != nil {
		return model.PriceWindow{}, fmt.Errorf("fetch %s bars from %s: %w", c.Symbol, c.Fetcher.Name(), err)
	}
	if len(bars) == 0 {
		return model.PriceWindow{}, ErrNoData
	}
	if len(bars) > c.Lookback && c.Lookback > 0 {
		bars = bars[len(bars)-c.Lookback:]
	}
	return model.PriceWindow{
		Symbol:    c.Symbol,
		Interval:  c.Interval,
		Bars:      bars,
		FetchedAt: c.now(),
	}, nil
}
