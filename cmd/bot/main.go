package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"FibTrader/internal/collector"
	"FibTrader/internal/config"
	"FibTrader/internal/execution"
	"FibTrader/internal/logging"
	"FibTrader/internal/metrics"
	"FibTrader/internal/notifier"
	"FibTrader/internal/recorder"
	"FibTrader/internal/strategy"
	"FibTrader/internal/trader"
)

func main() {
	boot := logging.New("info", os.Stdout)

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		boot.Fatal().Err(err).Msg("config validation")
	}

	log, closer, err := logging.NewWithFile(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		boot.Fatal().Err(err).Msg("open log file")
	}
	defer closer.Close()
	log.Info().Str("symbol", cfg.Market.Symbol).Str("interval", cfg.Market.Interval).Msg("FibTrader starting")

	if cfg.MetricsAddr != "" {
		srv, err := metrics.Serve(cfg.MetricsAddr, log)
		if err != nil {
			log.Fatal().Err(err).Msg("start metrics server")
		}
		defer srv.Close()
		log.Info().Str("addr", srv.Addr).Msg("metrics server started")
	}

	eng, err := strategy.NewEngine(cfg.Strategy)
	if err != nil {
		log.Fatal().Err(err).Msg("init signal engine")
	}

	fetcher := collector.NewBinanceFetcher(cfg.Exchange.BaseURL, cfg.Proxy, cfg.RequestTimeout())
	col := collector.NewCollector(fetcher, cfg.Market.Symbol, cfg.Market.Interval, cfg.Market.Limit)
	log.Info().Str("source", fetcher.Name()).Msg("market data source ready")

	var exec execution.Executor
	if cfg.Exchange.Live {
		exec = execution.NewBinanceExecutor(cfg.Exchange.BaseURL, cfg.Exchange.APIKey, cfg.Exchange.SecretKey,
			cfg.Exchange.TestOrders, cfg.RequestTimeout(), log)
	} else {
		exec = execution.NewPaperExecutor(log)
	}
	log.Info().Str("executor", exec.Name()).Msg("order execution ready")

	rec := openRecorder(cfg, log)
	defer rec.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var n notifier.Notifier = notifier.Nop{}
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		n = tn
	}

	tr, err := trader.New(*cfg, col, eng, exec, rec, n, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init trader")
	}

	sched := trader.NewScheduler(ctx, tr, log)
	if err := sched.Register(cfg.Loop.PollSchedule); err != nil {
		log.Fatal().Err(err).Msg("register poll task")
	}

	if tn != nil {
		go tn.StartPolling(ctx, tr.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	// The first cycle runs before cron starts so the two can never overlap.
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, running first cycle now")
		sched.RunNow()
	}

	sched.Start()
	log.Info().Str("schedule", cfg.Loop.PollSchedule).Msg("FibTrader is running. Press Ctrl+C to stop.")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping...")
	sched.Stop()
	log.Info().Msg("FibTrader stopped")
}

func openRecorder(cfg *config.Config, log zerolog.Logger) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}
