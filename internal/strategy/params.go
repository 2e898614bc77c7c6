package strategy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfiguration is returned when the engine parameters are inconsistent.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInsufficientData is returned by Analyze when asked to evaluate an empty window.
	ErrInsufficientData = errors.New("insufficient data")
)

// Tolerance bases for deciding whether a price is "near" a Fibonacci level.
const (
	// ToleranceRange measures distance as a fraction of the window's high-low range.
	ToleranceRange = "range"
	// ToleranceLevel measures distance as a fraction of the level price.
	ToleranceLevel = "level"
)

// Params configures the moving-average crossover and Fibonacci proximity rules.
type Params struct {
	FastPeriod      int     `yaml:"fast_period"`
	SlowPeriod      int     `yaml:"slow_period"`
	BuyRetracement  float64 `yaml:"buy_retracement"`
	SellRetracement float64 `yaml:"sell_retracement"`
	Tolerance       float64 `yaml:"tolerance"`
	ToleranceBasis  string  `yaml:"tolerance_basis"`
}

// DefaultParams returns the stock 5/10 crossover with 0.618 buy and 0.382 sell levels.
func DefaultParams() Params {
	return Params{
		FastPeriod:      5,
		SlowPeriod:      10,
		BuyRetracement:  0.618,
		SellRetracement: 0.382,
		Tolerance:       0.005,
		ToleranceBasis:  ToleranceRange,
	}
}

// Validate checks the parameter set. Errors wrap ErrInvalidConfiguration.
func (p Params) Validate() error {
	switch {
	case p.FastPeriod <= 0:
		return fmt.Errorf("%w: fast period must be positive, got %d", ErrInvalidConfiguration, p.FastPeriod)
	case p.SlowPeriod <= 0:
		return fmt.Errorf("%w: slow period must be positive, got %d", ErrInvalidConfiguration, p.SlowPeriod)
	case p.FastPeriod >= p.SlowPeriod:
		return fmt.Errorf("%w: fast period %d must be below slow period %d", ErrInvalidConfiguration, p.FastPeriod, p.SlowPeriod)
	case p.BuyRetracement <= 0 || p.BuyRetracement >= 1:
		return fmt.Errorf("%w: buy retracement %.3f outside (0,1)", ErrInvalidConfiguration, p.BuyRetracement)
	case p.SellRetracement <= 0 || p.SellRetracement >= 1:
		return fmt.Errorf("%w: sell retracement %.3f outside (0,1)", ErrInvalidConfiguration, p.SellRetracement)
	case p.Tolerance < 0:
		return fmt.Errorf("%w: tolerance must not be negative", ErrInvalidConfiguration)
	}
	switch strings.ToLower(p.ToleranceBasis) {
	case "", ToleranceRange, ToleranceLevel:
	default:
		return fmt.Errorf("%w: unknown tolerance basis %q", ErrInvalidConfiguration, p.ToleranceBasis)
	}
	return nil
}
