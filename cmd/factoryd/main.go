package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/launchforge/tokenfactory/api"
	"github.com/launchforge/tokenfactory/config"
	"github.com/launchforge/tokenfactory/factory"
	"github.com/launchforge/tokenfactory/monitoring"
	"github.com/launchforge/tokenfactory/oracle"
	"github.com/launchforge/tokenfactory/store"
	"github.com/launchforge/tokenfactory/stream"
	"github.com/launchforge/tokenfactory/token"
)

// heightInterval is the cadence at which the daemon's height counter
// advances, matching the block cadence the launch window was sized for.
const heightInterval = 3 * time.Second

func main() {
	var (
		configPath = pflag.String("config", "", "path to YAML config file")
		listenAddr = pflag.String("listen", "", "listen address (overrides config)")
		dbPath     = pflag.String("db", "", "database path (overrides config)")
	)
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	logger := newLogger(cfg)

	color.Cyan("Token Factory")
	color.White("  listen:   %s", cfg.ListenAddr)
	color.White("  database: %s", cfg.DatabasePath)
	color.White("  base fee: %d", cfg.BaseFee)

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		logger.WithError(err).Fatal("Failed to create data directory")
	}
	records, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open record store")
	}
	defer records.Close()

	var balanceOracle oracle.BalanceOracle
	if cfg.EthereumRPC != "" {
		ethOracle, err := oracle.NewEthOracle(cfg.EthereumRPC, logger)
		if err != nil {
			// The discount lookup degrades to "no discount"; the factory
			// must keep working without the oracle.
			logger.WithError(err).Warn("Ethereum oracle unavailable, discounts disabled")
		} else {
			defer ethOracle.Close()
			balanceOracle = ethOracle
		}
	}

	registry := prometheus.NewRegistry()
	metrics := monitoring.New(registry)

	start := time.Now()
	heights := token.HeightFunc(func() uint64 {
		return uint64(time.Since(start) / heightInterval)
	})

	// Outbound funds movement is the deployment boundary; the daemon logs
	// it. A real payment rail plugs in here.
	funds := factory.SenderFunc(func(to string, amount uint64) error {
		logger.WithFields(logrus.Fields{
			"to":     to,
			"amount": amount,
		}).Info("Outbound funds transfer")
		return nil
	})

	f, err := factory.New(factory.Config{
		Owner:              cfg.FactoryOwner,
		BaseFee:            cfg.BaseFee,
		DiscountToken:      cfg.DiscountToken,
		DiscountThreshold:  cfg.DiscountThreshold,
		DiscountPercentage: cfg.DiscountPercentage,
	}, balanceOracle, funds, heights, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create factory")
	}
	f.SetRecordStore(records)
	f.SetMetrics(metrics)

	hub := stream.NewHub(logger)
	hub.SetMetrics(metrics)
	defer hub.Close()
	f.SetEventSink(func(e factory.Event) { hub.Broadcast(e) })
	f.SetTokenEventSink(func(e token.Event) { hub.Broadcast(e) })

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.NewServer(f, records, hub, registry, logger).Router(),
	}

	go func() {
		logger.WithField("addr", cfg.ListenAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.LogJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else if cfg.EnableColoredLogs {
		logger.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	}
	return logger
}
