package calculator

import (
	"github.com/shopspring/decimal"

	"FibTrader/internal/model"
)

var retracementRatios = func() []decimal.Decimal {
	out := make([]decimal.Decimal, len(model.RetracementRatios))
	for i, r := range model.RetracementRatios {
		out[i] = decimal.RequireFromString(r)
	}
	return out
}()

// RetracementLevel interpolates between high and low: high - ratio*(high-low).
func RetracementLevel(high, low, ratio decimal.Decimal) decimal.Decimal {
	return high.Sub(ratio.Mul(high.Sub(low)))
}

// FibonacciLevels builds the full ladder, anchors included, ordered by ratio.
func FibonacciLevels(high, low decimal.Decimal) model.FibonacciLevels {
	levels := make([]model.FibLevel, 0, len(retracementRatios)+2)
	levels = append(levels, model.FibLevel{Ratio: decimal.Zero, Price: high})
	for _, r := range retracementRatios {
		levels = append(levels, model.FibLevel{Ratio: r, Price: RetracementLevel(high, low, r)})
	}
	levels = append(levels, model.FibLevel{Ratio: decimal.NewFromInt(1), Price: low})
	return model.FibonacciLevels{High: high, Low: low, Levels: levels}
}

// Near reports whether price lies within tolerance (absolute distance) of level.
func Near(price, level, tolerance decimal.Decimal) bool {
	return price.Sub(level).Abs().LessThanOrEqual(tolerance)
}
