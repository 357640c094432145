package main

import (
	"context"
	"fmt"
	"net/http"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/awsmap/awsmap/awsauth"
	"github.com/awsmap/awsmap/collector"
	"github.com/awsmap/awsmap/config"
	"github.com/awsmap/awsmap/orchestrator"
	awsprovider "github.com/awsmap/awsmap/providers/aws"
	"github.com/awsmap/awsmap/store"
	"github.com/awsmap/awsmap/tagfilter"
	"github.com/awsmap/awsmap/telemetry"
)

var (
	daemonInterval    time.Duration
	daemonMetricsAddr string
	daemonOTLP        string
	daemonInsecure    bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Scan continuously and expose metrics",
	Long: `Runs scans on a fixed interval, persists each result to the snapshot
store, and serves Prometheus metrics on /metrics.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.Flags().DurationVar(&daemonInterval, "interval", 30*time.Minute, "Time between scans")
	daemonCmd.Flags().StringVar(&daemonMetricsAddr, "metrics-addr", ":9090", "Metrics listen address")
	daemonCmd.Flags().StringVar(&daemonOTLP, "otlp-endpoint", "", "OTLP gRPC endpoint for traces and metrics (optional)")
	daemonCmd.Flags().BoolVar(&daemonInsecure, "otlp-insecure", false, "Use plaintext gRPC for the OTLP endpoint")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagProfile == "" {
		flagProfile = cfg.Profile
	}

	logger := telemetry.NewLogger("daemon")
	ctx := context.Background()

	shutdown, err := telemetry.InitOTEL(ctx, telemetry.Config{
		ServiceName:    "awsmap",
		ServiceVersion: version,
		OTLPEndpoint:   daemonOTLP,
		Insecure:       daemonInsecure,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	session, err := awsauth.NewSession(ctx, flagProfile)
	if err != nil {
		return err
	}
	identity, err := session.ValidateCredentials(ctx)
	if err != nil {
		return err
	}
	alias := session.AccountAlias(ctx)

	registry := collector.NewRegistry()
	awsprovider.Register(session.Config, identity.AccountID, registry)

	metrics, err := telemetry.NewScanMetrics(nil)
	if err != nil {
		return fmt.Errorf("init scan metrics: %w", err)
	}

	spec, err := tagfilter.Parse(cfg.Tags)
	if err != nil {
		return err
	}

	request := orchestrator.Request{
		AccountID:      identity.AccountID,
		AccountAlias:   alias,
		EnabledRegions: session.EnabledRegions(ctx),
		Regions:        cfg.Regions,
		Services:       cfg.Services,
		IncludeGlobal:  cfg.IncludeGlobal,
		TagFilter:      spec,
		Workers:        cfg.Workers,
	}

	snapshots, err := store.Open(snapshotPath(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = snapshots.Close() }()

	orch := orchestrator.New(registry).WithMetrics(metrics)

	logger.Info().
		Str("account_id", identity.AccountID).
		Dur("interval", daemonInterval).
		Str("metrics_addr", daemonMetricsAddr).
		Msg("daemon starting")

	var group run.Group

	// Scan loop: an immediate scan, then one per tick.
	loopCtx, loopCancel := context.WithCancel(ctx)
	group.Add(func() error {
		ticker := time.NewTicker(daemonInterval)
		defer ticker.Stop()

		scanOnce(loopCtx, logger, orch, request, snapshots, cfg)
		for {
			select {
			case <-ticker.C:
				scanOnce(loopCtx, logger, orch, request, snapshots, cfg)
			case <-loopCtx.Done():
				return loopCtx.Err()
			}
		}
	}, func(error) {
		loopCancel()
	})

	// Metrics server on the registry the OTEL exporter feeds.
	server := &http.Server{
		Addr:              daemonMetricsAddr,
		Handler:           metricsMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	group.Add(func() error {
		return server.ListenAndServe()
	}, func(error) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	})

	group.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))

	err = group.Run()
	if _, signaled := err.(run.SignalError); signaled || err == context.Canceled {
		logger.Info().Msg("daemon stopped")
		return nil
	}
	return err
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(telemetry.PrometheusRegistry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func scanOnce(ctx context.Context, logger *telemetry.Logger, orch *orchestrator.Orchestrator, request orchestrator.Request, snapshots *store.Store, cfg *config.Config) {
	result, err := orch.Run(ctx, request)
	if err != nil {
		logger.Warn().Err(err).Msg("scan finished with planning errors")
	}
	if result == nil {
		return
	}

	logger.Info().
		Int("resources", result.Metadata.ResourceCount).
		Int("failed_units", len(result.Errors)).
		Dur("duration", result.Metadata.Duration).
		Msg("scan complete")

	if err := snapshots.Save(result); err != nil {
		logger.Error().Err(err).Msg("failed to store snapshot")
	}
}
