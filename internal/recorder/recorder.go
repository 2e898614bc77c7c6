package recorder

import (
	"time"

	"FibTrader/internal/model"
)

// EvaluationRecord captures one engine run and the inputs behind it.
type EvaluationRecord struct {
	At       time.Time
	Symbol   string
	Interval string
	Analysis model.Analysis
	Position model.Position
}

// TradeRecord captures an order handed to the executor.
type TradeRecord struct {
	At       time.Time
	Symbol   string
	Side     string
	Quantity string
	Price    string
	Executor string
	From     model.Position
	To       model.Position
	Err      string // empty when the executor accepted the order
}

// ResetRecord captures a position cleared by the reset timeout.
type ResetRecord struct {
	At       time.Time
	Symbol   string
	Position model.Position
	OpenFor  time.Duration
}

// Recorder is a write-only audit trail of what the bot decided and did.
// Nothing is ever read back to restore state.
type Recorder interface {
	RecordEvaluation(rec *EvaluationRecord) error
	RecordTrade(rec *TradeRecord) error
	RecordReset(rec *ResetRecord) error
	Close() error
}
