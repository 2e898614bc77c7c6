package execution

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"

	"FibTrader/internal/collector"
	"FibTrader/internal/metrics"
)

// BinanceExecutor places signed MARKET orders on the Binance spot REST API.
type BinanceExecutor struct {
	BaseURL    string
	TestOrders bool
	RecvWindow time.Duration
	apiKey     string
	secret     []byte
	client     *fasthttp.Client
	timeout    time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// NewBinanceExecutor creates an executor holding the account credentials.
func NewBinanceExecutor(baseURL, apiKey, secretKey string, testOrders bool, timeout time.Duration, log zerolog.Logger) *BinanceExecutor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BinanceExecutor{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		TestOrders: testOrders,
		RecvWindow: 5 * time.Second,
		apiKey:     apiKey,
		secret:     []byte(secretKey),
		client:     &fasthttp.Client{ReadTimeout: timeout, WriteTimeout: timeout},
		timeout:    timeout,
		now:        time.Now,
		log:        log,
	}
}

func (b *BinanceExecutor) Name() string { return "binance" }

// Submit sends the order and returns the exchange's rejection, if any.
func (b *BinanceExecutor) Submit(ctx context.Context, order Order) error {
	if err := order.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Set("symbol", collector.NormalizeSymbol(order.Symbol))
	args.Set("side", string(order.Side))
	args.Set("type", "MARKET")
	args.Set("quantity", order.Quantity.String())
	args.Set("newOrderRespType", "ACK")
	args.Set("recvWindow", strconv.FormatInt(b.RecvWindow.Milliseconds(), 10))
	args.Set("timestamp", strconv.FormatInt(b.now().UnixMilli(), 10))
	payload := string(args.QueryString())
	payload += "&signature=" + b.sign(payload)

	path := "/api/v3/order"
	if b.TestOrders {
		path += "/test"
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(b.BaseURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.Set("X-MBX-APIKEY", b.apiKey)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.SetBodyString(payload)

	deadline := time.Now().Add(b.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := b.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("submit order: %w", err)
	}

	body := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("submit order: status %d, code %d: %s",
			resp.StatusCode(), gjson.GetBytes(body, "code").Int(), gjson.GetBytes(body, "msg").String())
	}

	metrics.OrdersTotal.WithLabelValues(order.Symbol, string(order.Side)).Inc()
	b.log.Info().
		Str("symbol", order.Symbol).
		Str("side", string(order.Side)).
		Str("qty", order.Quantity.String()).
		Int64("order_id", gjson.GetBytes(body, "orderId").Int()).
		Bool("test", b.TestOrders).
		Msg("order accepted")
	return nil
}

// sign returns the hex HMAC-SHA256 of payload keyed by the API secret.
func (b *BinanceExecutor) sign(payload string) string {
	mac := hmac.New(sha256.New, b.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
