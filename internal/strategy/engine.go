package strategy

import (
	"strings"

	"github.com/shopspring/decimal"

	"FibTrader/internal/calculator"
	"FibTrader/internal/model"
)

// Engine evaluates price windows with a fixed, validated parameter set.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	params    Params
	buyRatio  decimal.Decimal
	sellRatio decimal.Decimal
	tolerance decimal.Decimal
	byLevel   bool
}

// NewEngine validates params and returns an Engine bound to them.
func NewEngine(params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		params:    params,
		buyRatio:  decimal.NewFromFloat(params.BuyRetracement),
		sellRatio: decimal.NewFromFloat(params.SellRetracement),
		tolerance: decimal.NewFromFloat(params.Tolerance),
		byLevel:   strings.EqualFold(params.ToleranceBasis, ToleranceLevel),
	}, nil
}

// Params returns the engine's parameter set.
func (e *Engine) Params() Params { return e.params }

// Evaluate computes a signal from bars (oldest first). A window shorter than the
// slow period yields Hold.
func Evaluate(bars []model.PriceBar, params Params) (model.Signal, error) {
	e, err := NewEngine(params)
	if err != nil {
		return model.Hold, err
	}
	return e.Evaluate(bars), nil
}

// Evaluate returns the trading decision for bars. Insufficient data is Hold.
func (e *Engine) Evaluate(bars []model.PriceBar) model.Signal {
	if len(bars) < e.params.SlowPeriod {
		return model.Hold
	}
	a, err := e.Analyze(bars)
	if err != nil {
		return model.Hold
	}
	return a.Signal
}

// Analyze returns the indicator breakdown behind the signal. Only an empty
// window is an error; a short window reports Ready=false and Hold.
func (e *Engine) Analyze(bars []model.PriceBar) (model.Analysis, error) {
	if len(bars) == 0 {
		return model.Analysis{Signal: model.Hold}, ErrInsufficientData
	}

	a := model.Analysis{
		Bars:         len(bars),
		CurrentPrice: bars[len(bars)-1].Close,
		Signal:       model.Hold,
	}

	high, low, err := calculator.Range(bars)
	if err != nil {
		return a, err
	}
	a.Fib = calculator.FibonacciLevels(high, low)
	if a.RangePos, err = calculator.Position(a.CurrentPrice, high, low); err != nil {
		return a, err
	}
	a.BuyLevel = calculator.RetracementLevel(high, low, e.buyRatio)
	a.SellLevel = calculator.RetracementLevel(high, low, e.sellRatio)

	if len(bars) < e.params.SlowPeriod {
		return a, nil
	}

	closes := calculator.Closes(bars)
	if a.FastMA, err = calculator.SMA(closes, e.params.FastPeriod); err != nil {
		return a, err
	}
	if a.SlowMA, err = calculator.SMA(closes, e.params.SlowPeriod); err != nil {
		return a, err
	}
	a.Ready = true

	span := high.Sub(low)
	switch {
	case a.FastMA.GreaterThan(a.SlowMA) && e.near(a.CurrentPrice, a.BuyLevel, span):
		a.Signal = model.Buy
	case a.FastMA.LessThan(a.SlowMA) && e.near(a.CurrentPrice, a.SellLevel, span):
		a.Signal = model.Sell
	}
	return a, nil
}

func (e *Engine) near(price, level, span decimal.Decimal) bool {
	if e.byLevel {
		// a zero level would make every relative distance undefined
		if level.IsZero() {
			return false
		}
		return calculator.Near(price, level, e.tolerance.Mul(level.Abs()))
	}
	return calculator.Near(price, level, e.tolerance.Mul(span))
}
