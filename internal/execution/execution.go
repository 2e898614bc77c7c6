// Package execution turns trading signals into orders at a venue.
package execution

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"FibTrader/internal/metrics"
	"FibTrader/internal/model"
)

// Side enumerates order directions.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// SideFor maps an actionable signal to an order side. ok is false for Hold.
func SideFor(sig model.Signal) (side Side, ok bool) {
	switch sig {
	case model.Buy:
		return Buy, true
	case model.Sell:
		return Sell, true
	default:
		return "", false
	}
}

// Order is a market order request.
type Order struct {
	Symbol   string
	Side     Side
	Quantity decimal.Decimal
	Signal   model.Signal
}

// Validate rejects orders the venue would refuse anyway.
func (o Order) Validate() error {
	if o.Symbol == "" {
		return fmt.Errorf("order symbol is required")
	}
	if o.Side != Buy && o.Side != Sell {
		return fmt.Errorf("unknown order side %q", o.Side)
	}
	if !o.Quantity.IsPositive() {
		return fmt.Errorf("order quantity must be positive, got %s", o.Quantity)
	}
	return nil
}

// Executor submits orders. Implementations own any credentials they need.
type Executor interface {
	Submit(ctx context.Context, order Order) error
	Name() string
}

// PaperExecutor logs orders instead of sending them to an exchange.
type PaperExecutor struct{ log zerolog.Logger }

// NewPaperExecutor wraps a zerolog logger.
func NewPaperExecutor(log zerolog.Logger) *PaperExecutor { return &PaperExecutor{log: log} }

func (p *PaperExecutor) Name() string { return "paper" }

// Submit validates and logs the order.
func (p *PaperExecutor) Submit(_ context.Context, order Order) error {
	if err := order.Validate(); err != nil {
		return err
	}
	metrics.OrdersTotal.WithLabelValues(order.Symbol, string(order.Side)).Inc()
	p.log.Info().
		Str("symbol", order.Symbol).
		Str("side", string(order.Side)).
		Str("qty", order.Quantity.String()).
		Msg("paper order filled")
	return nil
}
