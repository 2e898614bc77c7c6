package collector

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpproxy"

	"FibTrader/internal/model"
)

// maxKlineLimit is the largest page the spot klines endpoint serves.
const maxKlineLimit = 1000

// BinanceFetcher implements Fetcher using the Binance spot REST klines endpoint.
type BinanceFetcher struct {
	BaseURL string
	Timeout time.Duration
	Client  *fasthttp.Client
}

// NewBinanceFetcher creates a fetcher with optional HTTP proxy support.
func NewBinanceFetcher(baseURL, proxyURL string, timeout time.Duration) *BinanceFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &fasthttp.Client{
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil && u.Host != "" {
			addr := u.Host
			if u.User != nil {
				addr = u.User.String() + "@" + u.Host
			}
			client.Dial = fasthttpproxy.FasthttpHTTPDialerTimeout(addr, timeout)
		}
	}
	return &BinanceFetcher{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Timeout: timeout,
		Client:  client,
	}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// NormalizeSymbol converts pair notations such as "btc/usdt" into "BTCUSDT".
func NormalizeSymbol(symbol string) string {
	r := strings.NewReplacer("/", "", "-", "", "_", "", " ", "")
	return strings.ToUpper(r.Replace(symbol))
}

func (f *BinanceFetcher) FetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.PriceBar, error) {
	return f.fetchKlines(ctx, symbol, interval, limit, time.Time{})
}

func (f *BinanceFetcher) FetchBarsSince(ctx context.Context, symbol, interval string, since time.Time, limit int) ([]model.PriceBar, error) {
	return f.fetchKlines(ctx, symbol, interval, limit, since)
}

func (f *BinanceFetcher) fetchKlines(ctx context.Context, symbol, interval string, limit int, since time.Time) ([]model.PriceBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(f.BaseURL + "/api/v3/klines")
	req.Header.SetMethod(fasthttp.MethodGet)
	args := req.URI().QueryArgs()
	args.Set("symbol", NormalizeSymbol(symbol))
	args.Set("interval", interval)
	args.Set("limit", strconv.Itoa(min(max(limit, 1), maxKlineLimit)))
	if !since.IsZero() {
		args.Set("startTime", strconv.FormatInt(since.UnixMilli(), 10))
	}

	deadline := time.Now().Add(f.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := f.Client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("fetch klines: %w", err)
	}

	body := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		if msg := gjson.GetBytes(body, "msg"); msg.Exists() {
			return nil, fmt.Errorf("fetch klines: status %d, code %d: %s",
				resp.StatusCode(), gjson.GetBytes(body, "code").Int(), msg.String())
		}
		return nil, fmt.Errorf("fetch klines: status %d, body: %s", resp.StatusCode(), string(body))
	}
	return parseKlines(body)
}

// parseKlines decodes [openTime, open, high, low, close, volume, ...] rows.
func parseKlines(body []byte) ([]model.PriceBar, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode klines: invalid json")
	}
	result := gjson.ParseBytes(body)
	if !result.IsArray() {
		return nil, fmt.Errorf("decode klines: unexpected response %s", truncate(result.Raw, 200))
	}

	rows := result.Array()
	bars := make([]model.PriceBar, 0, len(rows))
	for i, row := range rows {
		cols := row.Array()
		if len(cols) < 6 {
			return nil, fmt.Errorf("decode klines: row %d has %d columns", i, len(cols))
		}
		var bar model.PriceBar
		bar.OpenTime = time.UnixMilli(cols[0].Int()).UTC()
		fields := []*decimal.Decimal{&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume}
		for j, dst := range fields {
			v, err := decimal.NewFromString(cols[j+1].String())
			if err != nil {
				return nil, fmt.Errorf("decode klines: row %d column %d: %w", i, j+1, err)
			}
			*dst = v
		}
		bars = append(bars, bar)
	}

	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].OpenTime.Before(bars[j].OpenTime) })
	return bars, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
