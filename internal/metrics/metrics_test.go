package metrics

import (
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func TestServeRegistersMetrics(t *testing.T) {
	srv, err := Serve("127.0.0.1:0", zerolog.Nop())
	if err != nil {
		t.Fatalf("Serve returned error: %v", err)
	}
	defer srv.Close()

	SignalsTotal.WithLabelValues("BTCUSDT", "BUY").Inc()
	CyclesTotal.Inc()

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	want := map[string]bool{"fibtrader_signals_total": false, "fibtrader_cycles_total": false}
	for _, mf := range mfs {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("%s metric not found", name)
		}
	}

	resp, err := http.Get("http://" + srv.Addr + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "fibtrader_cycles_total") {
		t.Errorf("expected cycles counter in /metrics output")
	}
}

func TestServeReturnsBindError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	defer ln.Close()

	srv, err := Serve(ln.Addr().String(), zerolog.Nop())
	if err == nil {
		srv.Close()
		t.Fatalf("expected an error when %s is already in use", ln.Addr())
	}
	if srv != nil {
		t.Errorf("expected no server on bind failure")
	}
}
