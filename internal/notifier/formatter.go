package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"FibTrader/internal/model"
)

// FormatTrade renders an executed (or failed) position change.
func FormatTrade(symbol string, sig model.Signal, price string, from, to model.Position, err error) string {
	var b strings.Builder
	icon := "🟢"
	if sig == model.Sell {
		icon = "🔴"
	}
	if err != nil {
		icon = "❌"
	}
	b.WriteString(fmt.Sprintf("%s <b>%s %s</b> @ %s\n", icon, sig, symbol, price))
	b.WriteString(fmt.Sprintf("Position: %s → %s\n", from, to))
	if err != nil {
		// messages go out with parse_mode HTML
		b.WriteString(fmt.Sprintf("Order failed: %s\n", html.EscapeString(err.Error())))
	}
	return b.String()
}

// FormatAnalysis renders the indicators behind the latest signal.
func FormatAnalysis(symbol string, a model.Analysis) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📐 <b>%s</b> | %d bars\n\n", symbol, a.Bars))
	b.WriteString(fmt.Sprintf("Price: %s (%s%% of range)\n", a.CurrentPrice.StringFixed(4), a.RangePos.Mul(decimal.NewFromInt(100)).StringFixed(1)))
	if a.Ready {
		b.WriteString(fmt.Sprintf("Fast MA: %s | Slow MA: %s\n", a.FastMA.StringFixed(4), a.SlowMA.StringFixed(4)))
	} else {
		b.WriteString("Moving averages: warming up\n")
	}
	b.WriteString("\n<b>Fibonacci levels:</b>\n")
	for _, lvl := range a.Fib.Levels {
		ratio, _ := lvl.Ratio.Float64()
		b.WriteString(fmt.Sprintf("  %5.1f%%: %s\n", ratio*100, lvl.Price.StringFixed(4)))
	}
	b.WriteString(fmt.Sprintf("\nSignal: <b>%s</b>\n", a.Signal))
	return b.String()
}

// FormatStatus renders the trading loop snapshot.
func FormatStatus(st model.LoopStatus) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🤖 <b>%s</b>\n\n", st.Symbol))
	b.WriteString(fmt.Sprintf("State: %s\n", st.State))
	b.WriteString(fmt.Sprintf("Position: %s\n", st.Position))
	b.WriteString(fmt.Sprintf("Last signal: %s\n", st.LastSignal))
	if !st.LastPrice.IsZero() {
		b.WriteString(fmt.Sprintf("Last price: %s\n", st.LastPrice.String()))
	}
	b.WriteString(fmt.Sprintf("Cycles: %d\n", st.Cycles))
	if !st.LastCycleAt.IsZero() {
		b.WriteString(fmt.Sprintf("Last cycle: %s\n", st.LastCycleAt.Format("2006-01-02 15:04:05")))
	}
	if !st.LastTradeAt.IsZero() {
		b.WriteString(fmt.Sprintf("Last trade: %s\n", st.LastTradeAt.Format("2006-01-02 15:04:05")))
	}
	if st.LastError != "" {
		b.WriteString(fmt.Sprintf("Last error: %s\n", html.EscapeString(st.LastError)))
	}
	return b.String()
}
