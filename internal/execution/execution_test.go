package execution

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"FibTrader/internal/model"
)

func TestSideFor(t *testing.T) {
	if side, ok := SideFor(model.Buy); !ok || side != Buy {
		t.Fatalf("expected BUY side, got %q %v", side, ok)
	}
	if side, ok := SideFor(model.Sell); !ok || side != Sell {
		t.Fatalf("expected SELL side, got %q %v", side, ok)
	}
	if _, ok := SideFor(model.Hold); ok {
		t.Fatal("HOLD must not map to an order side")
	}
}

func TestOrderValidate(t *testing.T) {
	qty := decimal.RequireFromString("0.001")
	bad := []Order{
		{Side: Buy, Quantity: qty},
		{Symbol: "BTCUSDT", Side: "HOLD", Quantity: qty},
		{Symbol: "BTCUSDT", Side: Sell, Quantity: decimal.Zero},
	}
	for _, o := range bad {
		if err := o.Validate(); err == nil {
			t.Errorf("expected validation error for %+v", o)
		}
	}
}

func TestPaperSubmitLogsOrder(t *testing.T) {
	var buf bytes.Buffer
	exec := NewPaperExecutor(zerolog.New(&buf))

	err := exec.Submit(context.Background(), Order{Symbol: "BTC/USDT", Side: Buy, Quantity: decimal.RequireFromString("0.001")})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "BTC/USDT") || !strings.Contains(out, "paper order filled") {
		t.Fatalf("log does not contain order: %s", out)
	}
}

func TestBinanceSubmitSignsRequest(t *testing.T) {
	const secret = "s3cr3t"
	var gotPath, gotKey string
	var form url.Values
	var rawBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-MBX-APIKEY")
		body, _ := io.ReadAll(r.Body)
		rawBody = string(body)
		form, _ = url.ParseQuery(rawBody)
		_, _ = w.Write([]byte(`{"orderId":42}`))
	}))
	defer server.Close()

	exec := NewBinanceExecutor(server.URL, "api-key", secret, true, time.Second, zerolog.Nop())
	exec.now = func() time.Time { return time.UnixMilli(1700000000000) }

	order := Order{Symbol: "BTC/USDT", Side: Sell, Quantity: decimal.RequireFromString("0.5")}
	if err := exec.Submit(context.Background(), order); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	if gotPath != "/api/v3/order/test" {
		t.Fatalf("expected test endpoint, got %s", gotPath)
	}
	if gotKey != "api-key" {
		t.Fatalf("missing api key header, got %q", gotKey)
	}
	if form.Get("symbol") != "BTCUSDT" || form.Get("side") != "SELL" || form.Get("type") != "MARKET" {
		t.Fatalf("unexpected order fields: %v", form)
	}
	if form.Get("quantity") != "0.5" || form.Get("timestamp") != "1700000000000" {
		t.Fatalf("unexpected quantity/timestamp: %v", form)
	}

	idx := strings.LastIndex(rawBody, "&signature=")
	if idx < 0 {
		t.Fatalf("signature missing from body %s", rawBody)
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(rawBody[:idx]))
	if want := hex.EncodeToString(mac.Sum(nil)); form.Get("signature") != want {
		t.Fatalf("bad signature: got %s want %s", form.Get("signature"), want)
	}
}

func TestBinanceSubmitRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-2010,"msg":"Account has insufficient balance for requested action."}`))
	}))
	defer server.Close()

	exec := NewBinanceExecutor(server.URL, "k", "s", false, time.Second, zerolog.Nop())
	err := exec.Submit(context.Background(), Order{Symbol: "BTCUSDT", Side: Buy, Quantity: decimal.NewFromInt(1)})
	if err == nil || !strings.Contains(err.Error(), "insufficient balance") {
		t.Fatalf("expected rejection error, got %v", err)
	}
}
