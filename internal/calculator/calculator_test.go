package calculator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"FibTrader/internal/model"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestSMA(t *testing.T) {
	values := []decimal.Decimal{d(90), d(95), d(100), d(105), d(110)}

	ma, err := SMA(values, 2)
	if err != nil {
		t.Fatalf("SMA returned error: %v", err)
	}
	if !ma.Equal(d(107.5)) {
		t.Errorf("expected 107.5, got %s", ma)
	}

	ma, err = SMA(values, 5)
	if err != nil {
		t.Fatalf("SMA returned error: %v", err)
	}
	if !ma.Equal(d(100)) {
		t.Errorf("expected 100, got %s", ma)
	}
}

func TestSMA_Errors(t *testing.T) {
	if _, err := SMA([]decimal.Decimal{d(1)}, 0); err == nil {
		t.Error("expected error for zero period")
	}
	if _, err := SMA([]decimal.Decimal{d(1)}, 2); err == nil {
		t.Error("expected error for too few values")
	}
}

func TestRange(t *testing.T) {
	now := time.Now()
	bars := []model.PriceBar{
		{OpenTime: now, High: d(105), Low: d(95), Close: d(100)},
		{OpenTime: now.Add(time.Minute), High: d(120), Low: d(99), Close: d(110)},
		{OpenTime: now.Add(2 * time.Minute), High: d(111), Low: d(90), Close: d(92)},
	}
	high, low, err := Range(bars)
	if err != nil {
		t.Fatalf("Range returned error: %v", err)
	}
	if !high.Equal(d(120)) || !low.Equal(d(90)) {
		t.Errorf("expected 120/90, got %s/%s", high, low)
	}

	if _, _, err := Range(nil); err == nil {
		t.Error("expected error for empty window")
	}
}

func TestPosition(t *testing.T) {
	pos, err := Position(d(75), d(100), d(50))
	if err != nil {
		t.Fatalf("Position returned error: %v", err)
	}
	if !pos.Equal(d(0.5)) {
		t.Errorf("expected 0.5, got %s", pos)
	}
	pos, _ = Position(d(130), d(100), d(50))
	if !pos.Equal(d(1)) {
		t.Errorf("expected clamp to 1, got %s", pos)
	}
	if _, err := Position(d(1), d(50), d(100)); err == nil {
		t.Error("expected error when high < low")
	}
}

func TestFibonacciLevels_Anchors(t *testing.T) {
	fib := FibonacciLevels(d(110), d(90))
	first := fib.Levels[0]
	last := fib.Levels[len(fib.Levels)-1]
	if !first.Ratio.IsZero() || !first.Price.Equal(d(110)) {
		t.Errorf("level(0) should equal high, got %s", first.Price)
	}
	if !last.Ratio.Equal(d(1)) || !last.Price.Equal(d(90)) {
		t.Errorf("level(1) should equal low, got %s", last.Price)
	}
}

func TestFibonacciLevels_MonotonicallyDecreasing(t *testing.T) {
	tests := []struct {
		high, low float64
	}{
		{110, 90},
		{100, 0},
		{0.0042, 0.0031},
		{68000, 61000},
	}
	for _, tt := range tests {
		fib := FibonacciLevels(d(tt.high), d(tt.low))
		for i := 1; i < len(fib.Levels); i++ {
			prev, cur := fib.Levels[i-1], fib.Levels[i]
			if !cur.Ratio.GreaterThan(prev.Ratio) {
				t.Fatalf("ratios not increasing at %d", i)
			}
			if !cur.Price.LessThan(prev.Price) {
				t.Errorf("high=%v low=%v: level %s (%s) not below %s (%s)",
					tt.high, tt.low, cur.Ratio, cur.Price, prev.Ratio, prev.Price)
			}
		}
	}
}

func TestRetracementLevel(t *testing.T) {
	if got := RetracementLevel(d(110), d(90), d(0.618)); !got.Equal(d(97.64)) {
		t.Errorf("expected 97.64, got %s", got)
	}
	if got := RetracementLevel(d(100), d(0), d(0.382)); !got.Equal(d(61.8)) {
		t.Errorf("expected 61.8, got %s", got)
	}
}

func TestNear(t *testing.T) {
	if !Near(d(38.2), d(38.2), decimal.Zero) {
		t.Error("exact match should be near with zero tolerance")
	}
	if !Near(d(38.6), d(38.2), d(0.5)) {
		t.Error("expected 38.6 near 38.2 within 0.5")
	}
	if Near(d(39), d(38.2), d(0.5)) {
		t.Error("expected 39 outside tolerance")
	}
}
