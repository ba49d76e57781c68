package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stockdash/stockdash/internal/api"
	"github.com/stockdash/stockdash/internal/api/job"
	"github.com/stockdash/stockdash/internal/collector/yahoo"
	"github.com/stockdash/stockdash/internal/config"
	"github.com/stockdash/stockdash/internal/ledger/store"
	"github.com/stockdash/stockdash/internal/logger"
	"github.com/stockdash/stockdash/internal/metrics"
	"github.com/stockdash/stockdash/internal/storage/archive"
)

const maxBacktestJobs = 100

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stockdash server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	log.Info("starting stockdash server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("ledger", cfg.Ledger.Driver),
	)

	trades, closeStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening trade store: %w", err)
	}
	defer closeStore()

	archiver, err := openArchive(cfg)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}

	var registry *metrics.Registry
	if cfg.Metrics.Enabled {
		registry = metrics.NewRegistry()
	}

	client := yahoo.New()
	server, err := api.NewServer(api.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		MetricsPath:     cfg.Metrics.Path,
		DefaultPeriod:   cfg.Collector.DefaultPeriod,
		DefaultInterval: cfg.Collector.DefaultInterval,
		SMAWindow:       cfg.Indicators.SMAWindow,
		EMAWindow:       cfg.Indicators.EMAWindow,
		RSIPeriod:       cfg.Indicators.RSIPeriod,
		FastWindow:      cfg.Backtest.FastWindow,
		SlowWindow:      cfg.Backtest.SlowWindow,
	}, api.Dependencies{
		History: client,
		Quotes:  client,
		Trades:  trades,
		Jobs:    job.NewStore(maxBacktestJobs),
		Archive: archiver,
		Metrics: registry,
	}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down stockdash server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}

func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Ledger.Driver {
	case "postgres":
		pg, err := store.NewPostgres(cfg.Ledger.DSN)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { pg.Close() }, nil
	default:
		return store.NewMemory(), func() {}, nil
	}
}

func openArchive(cfg *config.Config) (archive.Storage, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}
	switch cfg.Archive.Type {
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.Archive.S3.Bucket,
			Endpoint:  cfg.Archive.S3.Endpoint,
			Region:    cfg.Archive.S3.Region,
			AccessKey: cfg.Archive.S3.AccessKey,
			SecretKey: cfg.Archive.S3.SecretKey,
			Prefix:    cfg.Archive.S3.Prefix,
		})
	default:
		return archive.NewLocalFS(cfg.Archive.Path)
	}
}
