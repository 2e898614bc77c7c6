package model

import "github.com/shopspring/decimal"

// Signal is the trading decision produced by one evaluation cycle.
type Signal int

const (
	Hold Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Position is the direction the trading loop currently holds.
type Position int

const (
	Flat Position = iota
	Long
	Short
)

func (p Position) String() string {
	switch p {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return "FLAT"
	}
}

// RetracementRatios are the standard Fibonacci ratios between the anchors.
var RetracementRatios = []string{"0.236", "0.382", "0.5", "0.618", "0.786"}

// FibLevel is one retracement price.
type FibLevel struct {
	Ratio decimal.Decimal
	Price decimal.Decimal
}

// FibonacciLevels holds the retracement ladder from High (ratio 0) down to Low (ratio 1).
type FibonacciLevels struct {
	High   decimal.Decimal
	Low    decimal.Decimal
	Levels []FibLevel
}

// Analysis is the full breakdown behind a Signal.
type Analysis struct {
	Ready        bool // false when the window is shorter than the slow period
	Bars         int
	FastMA       decimal.Decimal
	SlowMA       decimal.Decimal
	CurrentPrice decimal.Decimal
	RangePos     decimal.Decimal // where CurrentPrice sits in the window, 0 at low and 1 at high
	BuyLevel     decimal.Decimal
	SellLevel    decimal.Decimal
	Fib          FibonacciLevels
	Signal       Signal
}
