// Command fetchbars downloads historical klines from Binance into a CSV file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"FibTrader/internal/collector"
	"FibTrader/internal/config"
	"FibTrader/internal/logging"
)

func main() {
	var (
		cfgPath  = flag.String("config", "configs/config.yaml", "config file")
		symbol   = flag.String("symbol", "", "trading pair, defaults to market.symbol")
		interval = flag.String("interval", "", "kline interval, defaults to market.interval")
		since    = flag.String("since", "2024-01-01", "first bar date (YYYY-MM-DD)")
		outDir   = flag.String("out", "data", "output directory")
		pageSize = flag.Int("page", 1000, "bars per request")
		pause    = flag.Duration("pause", 200*time.Millisecond, "pause between requests")
	)
	flag.Parse()

	log := logging.New("info", os.Stdout)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if *symbol == "" {
		*symbol = cfg.Market.Symbol
	}
	if *interval == "" {
		*interval = cfg.Market.Interval
	}
	start, err := time.Parse("2006-01-02", *since)
	if err != nil {
		log.Fatal().Err(err).Msg("parse -since")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := collector.NewBinanceFetcher(cfg.Exchange.BaseURL, cfg.Proxy, cfg.RequestTimeout())
	bars, err := collector.DownloadHistory(ctx, fetcher, *symbol, *interval, start, *pageSize, *pause)
	if err != nil {
		log.Fatal().Err(err).Msg("download history")
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("create output directory")
	}
	path := filepath.Join(*outDir, fmt.Sprintf("%s_%s.csv", collector.NormalizeSymbol(*symbol), *interval))
	f, err := os.Create(path)
	if err != nil {
		log.Fatal().Err(err).Msg("create csv")
	}
	if err := collector.WriteCSV(f, bars); err != nil {
		f.Close()
		log.Fatal().Err(err).Msg("write csv")
	}
	if err := f.Close(); err != nil {
		log.Fatal().Err(err).Msg("close csv")
	}
	log.Info().Int("bars", len(bars)).Str("path", path).Msg("history saved")
}
