package metrics

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	CyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "fibtrader_cycles_total", Help: "Evaluation cycles started"},
	)
	FetchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fibtrader_fetch_failures_total", Help: "Failed market data fetches"},
		[]string{"symbol"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fibtrader_signals_total", Help: "Signals produced by the engine"},
		[]string{"symbol", "signal"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fibtrader_orders_total", Help: "Orders submitted"},
		[]string{"symbol", "side"},
	)
	PositionResetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "fibtrader_position_resets_total", Help: "Positions cleared by the reset timeout"},
	)
	LoopState = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "fibtrader_loop_state", Help: "Trading loop state (0 idle, 1 polling, 2 retrying, 3 position open)"},
	)
)

func init() {
	prometheus.MustRegister(CyclesTotal, FetchFailuresTotal, SignalsTotal, OrdersTotal, PositionResetsTotal, LoopState)
}

// Serve binds addr and exposes /metrics in the background. Bind errors are
// returned; later serve errors are logged.
func Serve(addr string, log zerolog.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ln.Addr().String(), Handler: mux}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", srv.Addr).Msg("metrics server stopped")
		}
	}()
	return srv, nil
}
