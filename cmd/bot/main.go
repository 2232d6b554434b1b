package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/alejandrodnm/pumpbot/config"
	"github.com/alejandrodnm/pumpbot/internal/adapters/moni"
	"github.com/alejandrodnm/pumpbot/internal/adapters/notify"
	"github.com/alejandrodnm/pumpbot/internal/adapters/pumpfun"
	"github.com/alejandrodnm/pumpbot/internal/adapters/rugcheck"
	"github.com/alejandrodnm/pumpbot/internal/adapters/serum"
	"github.com/alejandrodnm/pumpbot/internal/adapters/storage"
	"github.com/alejandrodnm/pumpbot/internal/bot"
	"github.com/alejandrodnm/pumpbot/internal/engine"
	"github.com/alejandrodnm/pumpbot/internal/ledger"
	"github.com/alejandrodnm/pumpbot/internal/metrics"
	"github.com/alejandrodnm/pumpbot/internal/ports"
	"github.com/alejandrodnm/pumpbot/internal/screener"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one discovery cycle and exit")
	dryRun := flag.Bool("dry-run", false, "evaluate candidates without placing orders")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		if errors.Is(err, config.ErrMissingMarket) {
			slog.Error("set MARKET_ADDRESS in the environment or trading.market_address in the config file")
		}
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("pumpbot starting",
		"config", *configPath,
		"market", cfg.Trading.MarketAddress,
		"interval", cfg.ScanInterval(),
		"dry_run", *dryRun,
		"once", *once,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	venue, err := serum.NewClient(cfg.API.VenueRPC, cfg.Trading.MarketAddress, cfg.Trading.WalletSecret)
	if err != nil {
		slog.Error("failed to build venue client", "err", err)
		os.Exit(1)
	}

	feedClient := pumpfun.NewClient(cfg.API.DiscoveryURL)
	var stream *pumpfun.Stream
	if cfg.API.DiscoveryWS != "" {
		stream = pumpfun.NewStream(ctx, cfg.API.DiscoveryWS)
	}
	feed := pumpfun.NewFeed(feedClient, stream)

	var journal ports.TradeJournal
	if !*dryRun {
		store, err := storage.NewSQLiteJournal(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open trade journal", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
		journal = store
	}

	multiplier := decimal.NewFromFloat(cfg.Trading.ProfitMultiplier)
	targets := []ports.Notifier{notify.NewConsole(multiplier)}
	if cfg.Notify.EmailUser != "" {
		targets = append(targets, notify.NewEmail(
			cfg.Notify.SMTPHost, cfg.Notify.SMTPPort,
			cfg.Notify.EmailUser, cfg.Notify.EmailPass, cfg.Notify.EmailRecipient,
		))
	}
	notifier := notify.NewMulti(targets...)

	book := ledger.New()

	engCfg := engine.Config{
		SlippagePct:      decimal.NewFromFloat(cfg.Trading.SlippagePct),
		ProfitMultiplier: multiplier,
	}
	exec := engine.New(venue, book, journal, notifier, engCfg)

	screen := screener.New(
		screener.Config{
			MinAgeHours:  cfg.Screening.MinAgeHours,
			MaxAgeHours:  cfg.Screening.MaxAgeHours,
			MinMarketCap: decimal.NewFromFloat(cfg.Screening.MinMarketCap),
			MaxMarketCap: decimal.NewFromFloat(cfg.Screening.MaxMarketCap),
		},
		rugcheck.NewClient(cfg.API.RugcheckURL, cfg.API.RugcheckKey),
		moni.NewClient(cfg.API.MoniURL, cfg.API.MoniKey),
		book,
	)

	botCfg := bot.Config{
		ScanInterval: cfg.ScanInterval(),
		BuyBudget:    decimal.NewFromFloat(cfg.Trading.BuyBudget),
		Monitor: engine.MonitorConfig{
			PollInterval: cfg.PollInterval(),
			ErrorBackoff: cfg.ErrorBackoff(),
		},
		DryRun: *dryRun,
		Once:   *once,
	}

	b := bot.New(botCfg, feed, screen, exec, book, venue, notifier, journal)

	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr)
	}

	if err := b.Run(ctx); err != nil {
		slog.Error("bot exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("pumpbot stopped cleanly")
}

// serveMetrics expone /metrics. Best-effort: un fallo aquí no para el bot.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("metrics endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Warn("metrics endpoint stopped", "err", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     28, // días
			Compress:   true,
		})
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
}
