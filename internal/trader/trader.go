package trader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"FibTrader/internal/collector"
	"FibTrader/internal/config"
	"FibTrader/internal/execution"
	"FibTrader/internal/metrics"
	"FibTrader/internal/model"
	"FibTrader/internal/notifier"
	"FibTrader/internal/recorder"
	"FibTrader/internal/strategy"
)

// ErrRetriesExhausted is returned when every fetch attempt of a cycle failed.
var ErrRetriesExhausted = errors.New("market data retries exhausted")

const (
	defaultMaxRetries = 3
	// notifyTimeout caps how long an alert may hold up a cycle.
	notifyTimeout = 10 * time.Second
)

// Trader runs fetch, evaluate and execute cycles and tracks the open position.
// RunCycle calls must not overlap; Status may be called from any goroutine.
type Trader struct {
	cfg       config.Config
	collector *collector.Collector
	engine    *strategy.Engine
	executor  execution.Executor
	recorder  recorder.Recorder
	notifier  notifier.Notifier
	log       zerolog.Logger
	quantity  decimal.Decimal

	now           func() time.Time
	sleep         func(ctx context.Context, d time.Duration) error
	notifyTimeout time.Duration

	mu           sync.Mutex
	state        State
	position     model.Position
	lastTradeAt  time.Time
	lastSignal   model.Signal
	lastPrice    decimal.Decimal
	lastErr      string
	cycles       int
	lastCycleAt  time.Time
	lastAnalysis model.Analysis
	hasTraded    bool
}

// New wires a Trader. A nil notifier or recorder is replaced by a no-op.
func New(cfg config.Config, col *collector.Collector, eng *strategy.Engine, exec execution.Executor,
	rec recorder.Recorder, n notifier.Notifier, log zerolog.Logger) (*Trader, error) {
	if col == nil || eng == nil || exec == nil {
		return nil, errors.New("trader needs a collector, an engine and an executor")
	}
	qty, err := decimal.NewFromString(cfg.Trading.OrderQuantity)
	if err != nil {
		return nil, fmt.Errorf("parse order quantity %q: %w", cfg.Trading.OrderQuantity, err)
	}
	if !qty.IsPositive() {
		return nil, fmt.Errorf("order quantity must be positive, got %s", qty)
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if n == nil {
		n = notifier.Nop{}
	}
	t := &Trader{
		cfg:       cfg,
		collector: col,
		engine:    eng,
		executor:  exec,
		recorder:  rec,
		notifier:  n,
		log:       log,
		quantity:  qty,
		now:       time.Now,
		sleep:     sleepCtx,

		notifyTimeout: notifyTimeout,
	}
	t.lastTradeAt = t.now()
	t.setState(Idle)
	return t, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RunCycle performs one poll: fetch the window (retrying on failure), analyse it,
// act on the signal and apply the position reset timeout.
func (t *Trader) RunCycle(ctx context.Context) error {
	metrics.CyclesTotal.Inc()
	t.mu.Lock()
	t.cycles++
	t.lastCycleAt = t.now()
	t.mu.Unlock()

	t.setState(Polling)
	defer t.rest()

	window, err := t.fetch(ctx)
	if err != nil {
		t.fail(err)
		t.checkReset()
		return err
	}

	analysis, err := t.engine.Analyze(window.Bars)
	if err != nil {
		t.fail(err)
		return fmt.Errorf("analyze %s: %w", window.Symbol, err)
	}
	metrics.SignalsTotal.WithLabelValues(window.Symbol, analysis.Signal.String()).Inc()

	t.mu.Lock()
	t.lastSignal = analysis.Signal
	t.lastPrice = analysis.CurrentPrice
	t.lastAnalysis = analysis
	t.lastErr = ""
	position := t.position
	t.mu.Unlock()

	t.log.Info().
		Str("symbol", window.Symbol).
		Str("signal", analysis.Signal.String()).
		Str("price", analysis.CurrentPrice.String()).
		Str("fast_ma", analysis.FastMA.String()).
		Str("slow_ma", analysis.SlowMA.String()).
		Bool("ready", analysis.Ready).
		Msg("evaluated window")

	if err := t.recorder.RecordEvaluation(&recorder.EvaluationRecord{
		At:       t.now(),
		Symbol:   window.Symbol,
		Interval: window.Interval,
		Analysis: analysis,
		Position: position,
	}); err != nil {
		t.log.Error().Err(err).Msg("record evaluation")
	}

	tradeErr := t.act(ctx, window.Symbol, analysis)
	t.checkReset()
	return tradeErr
}

func (t *Trader) fetch(ctx context.Context) (model.PriceWindow, error) {
	retries := t.cfg.Loop.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			t.setState(Retrying)
			if err := t.sleep(ctx, t.cfg.RetryDelay()); err != nil {
				return model.PriceWindow{}, err
			}
			t.setState(Polling)
		}
		window, err := t.collector.Collect(ctx)
		if err == nil {
			return window, nil
		}
		lastErr = err
		metrics.FetchFailuresTotal.WithLabelValues(t.collector.Symbol).Inc()
		t.log.Warn().Err(err).Int("attempt", attempt+1).Int("max_attempts", retries+1).Msg("fetch failed")
		if ctx.Err() != nil {
			return model.PriceWindow{}, ctx.Err()
		}
	}
	return model.PriceWindow{}, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, retries+1, lastErr)
}

// act turns a signal into a position change. A failed order leaves the position untouched.
func (t *Trader) act(ctx context.Context, symbol string, a model.Analysis) error {
	side, ok := execution.SideFor(a.Signal)
	if !ok {
		return nil
	}
	target := model.Long
	if side == execution.Sell {
		target = model.Short
	}

	t.mu.Lock()
	from := t.position
	t.mu.Unlock()
	if from == target {
		t.log.Debug().Str("position", from.String()).Msg("no trade action")
		return nil
	}

	order := execution.Order{Symbol: symbol, Side: side, Quantity: t.quantity, Signal: a.Signal}
	err := t.executor.Submit(ctx, order)

	rec := &recorder.TradeRecord{
		At:       t.now(),
		Symbol:   symbol,
		Side:     string(side),
		Quantity: t.quantity.String(),
		Price:    a.CurrentPrice.String(),
		Executor: t.executor.Name(),
		From:     from,
		To:       target,
	}
	if err != nil {
		rec.Err = err.Error()
		rec.To = from
	}
	if rerr := t.recorder.RecordTrade(rec); rerr != nil {
		t.log.Error().Err(rerr).Msg("record trade")
	}
	t.notify(ctx, notifier.FormatTrade(symbol, a.Signal, a.CurrentPrice.String(), from, rec.To, err))

	if err != nil {
		t.fail(err)
		return fmt.Errorf("submit %s order: %w", side, err)
	}

	t.mu.Lock()
	t.position = target
	t.lastTradeAt = t.now()
	t.hasTraded = true
	t.mu.Unlock()
	t.log.Info().Str("from", from.String()).Str("to", target.String()).Str("executor", t.executor.Name()).Msg("position changed")
	return nil
}

func (t *Trader) checkReset() {
	timeout := t.cfg.ResetTimeout()
	if timeout <= 0 {
		return
	}
	now := t.now()
	t.mu.Lock()
	if t.position == model.Flat || now.Sub(t.lastTradeAt) <= timeout {
		t.mu.Unlock()
		return
	}
	cleared := t.position
	openFor := now.Sub(t.lastTradeAt)
	t.position = model.Flat
	t.lastTradeAt = now
	t.mu.Unlock()

	metrics.PositionResetsTotal.Inc()
	t.log.Info().Str("position", cleared.String()).Dur("open_for", openFor).Msg("reset timeout reached, clearing position")
	if err := t.recorder.RecordReset(&recorder.ResetRecord{
		At:       now,
		Symbol:   t.collector.Symbol,
		Position: cleared,
		OpenFor:  openFor,
	}); err != nil {
		t.log.Error().Err(err).Msg("record reset")
	}
}

func (t *Trader) fail(err error) {
	t.mu.Lock()
	t.lastErr = err.Error()
	t.mu.Unlock()
}

func (t *Trader) notify(ctx context.Context, text string) {
	ctx, cancel := context.WithTimeout(ctx, t.notifyTimeout)
	defer cancel()
	if err := t.notifier.Notify(ctx, text); err != nil {
		t.log.Error().Err(err).Msg("send notification")
	}
}

// rest moves the loop to its resting state for the current position.
func (t *Trader) rest() {
	t.mu.Lock()
	pos := t.position
	t.mu.Unlock()
	if pos == model.Flat {
		t.setState(Idle)
		return
	}
	t.setState(PositionOpen)
}

func (t *Trader) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
	metrics.LoopState.Set(float64(s))
}

// Status returns a snapshot of the loop.
func (t *Trader) Status() model.LoopStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := model.LoopStatus{
		State:        t.state.String(),
		Symbol:       t.collector.Symbol,
		Position:     t.position,
		LastSignal:   t.lastSignal,
		LastPrice:    t.lastPrice,
		LastError:    t.lastErr,
		Cycles:       t.cycles,
		LastCycleAt:  t.lastCycleAt,
		LastAnalysis: t.lastAnalysis,
	}
	if t.hasTraded {
		st.LastTradeAt = t.lastTradeAt
	}
	return st
}

// State returns the current loop state.
func (t *Trader) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Position returns the current position.
func (t *Trader) Position() model.Position {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

// HandleCommand answers a chat command.
func (t *Trader) HandleCommand(command string) string {
	switch command {
	case "/status":
		return notifier.FormatStatus(t.Status())
	case "/levels":
		st := t.Status()
		if st.Cycles == 0 || st.LastAnalysis.Bars == 0 {
			return "No analysis yet."
		}
		return notifier.FormatAnalysis(st.Symbol, st.LastAnalysis)
	default:
		return "Available commands:\n• /status\n• /levels"
	}
}
