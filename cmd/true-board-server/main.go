// Package main provides the TRUE Board server binary.
// The server keeps the model openness leaderboard: it merges evaluations from
// the shared remote store, seeds trending models, and serves the HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/trueframework/true-board/internal/bus"
	"github.com/trueframework/true-board/internal/config"
	"github.com/trueframework/true-board/internal/evaluation"
	"github.com/trueframework/true-board/internal/metrics"
	"github.com/trueframework/true-board/internal/pkg/logger"
	"github.com/trueframework/true-board/internal/pkg/security"
	"github.com/trueframework/true-board/internal/remote"
	"github.com/trueframework/true-board/internal/seed"
	"github.com/trueframework/true-board/internal/server"
	"github.com/trueframework/true-board/internal/store"
	"github.com/trueframework/true-board/internal/sync"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "true-board-server",
		Short: "TRUE Board - open model scoring leaderboard server",
		Long: `TRUE Board scores language models on Transparent, Reproducible,
Understandable and Executable criteria and keeps a shared leaderboard.

The server exposes an HTTP API on :8080 (configurable), reconciles the local
collection with the shared remote store, and can seed evaluations for
trending models from the HuggingFace Hub.

Examples:
  true-board-server                         # Start with defaults
  true-board-server --http-port 9090        # Custom HTTP port
  true-board-server --seed-on-start         # Seed trending models at startup
  true-board-server -c config.yaml          # Load a config file`,
		RunE:         runServer,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringP("config", "c", "", "config file path")
	rootCmd.Flags().BoolP("verbose", "v", false, "verbose logging")
	rootCmd.Flags().Int("http-port", 8080, "HTTP server port")
	rootCmd.Flags().String("host", "0.0.0.0", "server host")
	rootCmd.Flags().String("metrics-redis", "", "Redis URL for metric history (overrides config)")
	rootCmd.Flags().Bool("seed-on-start", false, "run one seeding pass at startup")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("true-board-server %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	httpPort, _ := cmd.Flags().GetInt("http-port")
	host, _ := cmd.Flags().GetString("host")
	metricsRedis, _ := cmd.Flags().GetString("metrics-redis")
	seedOnStart, _ := cmd.Flags().GetBool("seed-on-start")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("http-port") {
		cfg.Port = httpPort
	}
	if cmd.Flags().Changed("host") {
		cfg.Host = host
	}
	if metricsRedis != "" {
		cfg.Metrics.RedisURL = metricsRedis
	}
	if seedOnStart {
		cfg.Seed.RunOnStart = true
	}

	logLevel := cfg.Log.Level
	if verbose {
		logLevel = "debug"
	}
	log := logger.New(logLevel, cfg.Log.Format)

	log.Info("Starting TRUE Board server",
		"version", version,
		"http_port", cfg.Port,
	)

	// Metrics first: the bus index and store record into it
	var metricsSvc *metrics.Metrics
	if cfg.Metrics.Enabled && cfg.Metrics.RedisURL != "" {
		metricsSvc = metrics.NewWithRedis(cfg.Metrics.RedisURL)
		log.Info("Initialized metrics", "persistence", "redis")
	} else {
		metricsSvc = metrics.New()
		log.Info("Initialized metrics", "persistence", "memory")
	}
	defer func() { _ = metricsSvc.Close() }()

	// Event bus, instrumented with metrics
	innerBus, err := bus.NewBus(cfg.Bus)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}
	eventBus := bus.NewInstrumentedBus(innerBus, metricsSvc)
	defer func() { _ = eventBus.Close() }()
	log.Info("Initialized event bus", "type", cfg.Bus.Type)

	// Remote store, optional
	var remoteStore *remote.Store
	if cfg.Remote.Enabled {
		remoteStore, err = remote.New(remote.Config{
			APIKey:         cfg.Remote.APIKey,
			AuthDomain:     cfg.Remote.AuthDomain,
			DatabaseURL:    cfg.Remote.DatabaseURL,
			ProjectID:      cfg.Remote.ProjectID,
			AppID:          cfg.Remote.AppID,
			ConnectTimeout: cfg.Remote.ConnectTimeout,
			LoadTimeout:    cfg.Remote.LoadTimeout,
			MaxEvaluations: cfg.Remote.MaxEvaluations,
			Origin:         evaluation.NewSessionID(),
		}, log)
		if err != nil {
			return fmt.Errorf("failed to connect to remote store: %w", err)
		}
		defer func() { _ = remoteStore.Close() }()
		log.Info("Connected to remote store", "project", cfg.Remote.ProjectID)
		log.Debug("Remote store settings", "settings", security.MaskSensitiveMap(map[string]string{
			"api_key":      cfg.Remote.APIKey,
			"auth_domain":  cfg.Remote.AuthDomain,
			"database_url": cfg.Remote.DatabaseURL,
			"project_id":   cfg.Remote.ProjectID,
		}))
	} else {
		log.Info("Remote store disabled, running local-only")
	}

	// Evaluation store on top of local persistence
	storage := store.NewStorage(cfg.Storage.Path)
	var remoteIface store.RemoteStore
	if remoteStore != nil {
		remoteIface = remoteStore
	}
	svc, err := store.NewService(storage, remoteIface, eventBus, metricsSvc, log)
	if err != nil {
		return fmt.Errorf("failed to create evaluation store: %w", err)
	}
	log.Info("Loaded evaluation store",
		"evaluations", svc.Count(),
		"path", cfg.Storage.Path,
	)

	// Seed runner against the HuggingFace Hub
	hub := seed.NewHubClient(cfg.Seed.HubURL, int(cfg.Seed.RequestsPerSecond))
	runner := seed.NewRunner(hub, svc, cfg.Seed.TopModels, log)

	httpSrv, err := server.New(server.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		Version:         version,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}, server.Deps{
		Store:   svc,
		Runner:  runner,
		Metrics: metricsSvc,
		Log:     log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Seed.RunOnStart {
		log.Info("Running startup seeding pass")
		report, err := runner.Run(ctx)
		metricsSvc.RecordSeedPass(report.Created, report.Updated, report.FetchFailed)
		if err != nil {
			log.WithError(err).Warn("Startup seeding pass failed")
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if remoteStore != nil {
		scheduler := sync.NewScheduler(svc, remoteStore, sync.Config{
			Interval:     cfg.Sync.Interval,
			SaveDebounce: cfg.Sync.SaveDebounce,
		}, metricsSvc, log)
		g.Go(func() error {
			if err := scheduler.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("sync scheduler: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpSrv.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}
