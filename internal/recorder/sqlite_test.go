package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"FibTrader/internal/model"
)

func TestSQLiteRecorderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "journal.db")
	rec, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("NewSQLiteRecorder returned error: %v", err)
	}
	defer rec.Close()

	now := time.Now()
	eval := &EvaluationRecord{
		At:       now,
		Symbol:   "BTC/USDT",
		Interval: "1m",
		Position: model.Flat,
		Analysis: model.Analysis{
			Ready:        true,
			Bars:         20,
			CurrentPrice: decimal.RequireFromString("38.2"),
			RangePos:     decimal.RequireFromString("0.382"),
			FastMA:       decimal.RequireFromString("34.1"),
			SlowMA:       decimal.RequireFromString("25.64"),
			BuyLevel:     decimal.RequireFromString("38.2"),
			SellLevel:    decimal.RequireFromString("61.8"),
			Signal:       model.Buy,
		},
	}
	if err := rec.RecordEvaluation(eval); err != nil {
		t.Fatalf("RecordEvaluation returned error: %v", err)
	}
	if err := rec.RecordTrade(&TradeRecord{
		At: now, Symbol: "BTC/USDT", Side: "BUY", Quantity: "0.001", Price: "38.2",
		Executor: "paper", From: model.Flat, To: model.Long,
	}); err != nil {
		t.Fatalf("RecordTrade returned error: %v", err)
	}
	if err := rec.RecordReset(&ResetRecord{At: now, Symbol: "BTC/USDT", Position: model.Long, OpenFor: time.Hour}); err != nil {
		t.Fatalf("RecordReset returned error: %v", err)
	}

	var signal, price, rangePos string
	if err := rec.db.QueryRow(`SELECT signal, current_price, range_pos FROM evaluations`).Scan(&signal, &price, &rangePos); err != nil {
		t.Fatalf("query evaluations: %v", err)
	}
	if signal != "BUY" || price != "38.2" || rangePos != "0.382" {
		t.Fatalf("unexpected evaluation row: %s %s %s", signal, price, rangePos)
	}

	var to string
	if err := rec.db.QueryRow(`SELECT position_to FROM trades`).Scan(&to); err != nil {
		t.Fatalf("query trades: %v", err)
	}
	if to != "LONG" {
		t.Fatalf("unexpected position_to: %s", to)
	}

	var openSecs int64
	if err := rec.db.QueryRow(`SELECT open_secs FROM position_resets`).Scan(&openSecs); err != nil {
		t.Fatalf("query resets: %v", err)
	}
	if openSecs != 3600 {
		t.Fatalf("unexpected open_secs: %d", openSecs)
	}
}

func TestSQLiteRecorderReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	for i := 0; i < 2; i++ {
		rec, err := NewSQLiteRecorder(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := rec.RecordTrade(&TradeRecord{At: time.Now(), Symbol: "ETHUSDT", Side: "SELL"}); err != nil {
			t.Fatalf("RecordTrade returned error: %v", err)
		}
		if err := rec.Close(); err != nil {
			t.Fatalf("Close returned error: %v", err)
		}
	}

	rec, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer rec.Close()
	var n int
	if err := rec.db.QueryRow(`SELECT COUNT(*) FROM trades`).Scan(&n); err != nil {
		t.Fatalf("count trades: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 trades after reopen, got %d", n)
	}
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	if err := rec.RecordEvaluation(&EvaluationRecord{}); err != nil {
		t.Fatal(err)
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}
}
