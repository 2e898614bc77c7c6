package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar represents a single OHLCV candlestick bar.
type PriceBar struct {
	OpenTime time.Time
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
	Volume   decimal.Decimal
}

// PriceWindow holds the most recent bars for one trading pair, oldest first.
type PriceWindow struct {
	Symbol    string
	Interval  string
	Bars      []PriceBar
	FetchedAt time.Time
}

// Last returns the most recent bar. ok is false for an empty window.
func (w PriceWindow) Last() (bar PriceBar, ok bool) {
	if len(w.Bars) == 0 {
		return PriceBar{}, false
	}
	return w.Bars[len(w.Bars)-1], true
}
