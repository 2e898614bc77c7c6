package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoopStatus is a point-in-time view of the trading loop.
type LoopStatus struct {
	State        string
	Symbol       string
	Position     Position
	LastSignal   Signal
	LastPrice    decimal.Decimal
	LastError    string
	Cycles       int
	LastCycleAt  time.Time
	LastTradeAt  time.Time
	LastAnalysis Analysis
}
