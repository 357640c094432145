package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/awsmap/awsmap/awsauth"
	"github.com/awsmap/awsmap/collector"
	"github.com/awsmap/awsmap/config"
	"github.com/awsmap/awsmap/inventory"
	"github.com/awsmap/awsmap/orchestrator"
	awsprovider "github.com/awsmap/awsmap/providers/aws"
	"github.com/awsmap/awsmap/report"
	"github.com/awsmap/awsmap/store"
	"github.com/awsmap/awsmap/tagfilter"
	"github.com/awsmap/awsmap/telemetry"
)

var (
	scanRegions       []string
	scanServices      []string
	scanFormat        string
	scanOutput        string
	scanWorkers       int
	scanTags          []string
	scanTimings       bool
	scanIncludeGlobal bool
	scanSnapshot      bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the account and write an inventory report",
	Example: `  awsmap scan                                # all services, all enabled regions
  awsmap scan -r us-east-1 -r eu-west-1      # restrict regions
  awsmap scan -s ec2,s3,rds                  # restrict services
  awsmap scan -t Owner=John -t Env=Prod      # tag filter (OR within key, AND across keys)
  awsmap scan -f json -o inventory.json      # JSON output
  awsmap scan -r eu-west-1 --include-global  # force global services into a regional scan`,
}

func init() {
	scanCmd.RunE = runScan
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringSliceVarP(&scanRegions, "region", "r", nil, "Region(s) to scan (default: all enabled)")
	scanCmd.Flags().StringSliceVarP(&scanServices, "service", "s", nil, "Service(s) to scan (default: all available)")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "html", "Output format: json, csv, html")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "Output file path (auto-generated if not set)")
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", 0, "Maximum parallel workers (default: 40)")
	scanCmd.Flags().StringSliceVarP(&scanTags, "tag", "t", nil, "Filter by tag, Key=Value (repeatable)")
	scanCmd.Flags().BoolVar(&scanTimings, "timings", false, "Include per-service timing in metadata")
	scanCmd.Flags().BoolVar(&scanIncludeGlobal, "include-global", false, "Include global services even when the region filter excludes their control plane")
	scanCmd.Flags().BoolVar(&scanSnapshot, "snapshot", false, "Persist the result to the snapshot store for later diffing")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyScanDefaults(cfg)

	logger := telemetry.NewConsoleLogger("awsmap", flagQuiet)

	// Interrupt stops dispatching new units; in-flight units finish and a
	// partial result is still written.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	session, err := awsauth.NewSession(ctx, flagProfile)
	if err != nil {
		return err
	}

	logger.Info().Msg("validating AWS credentials")
	identity, err := session.ValidateCredentials(ctx)
	if err != nil {
		return err
	}
	alias := session.AccountAlias(ctx)

	logger.Info().
		Str("account_id", identity.AccountID).
		Str("arn", identity.ARN).
		Str("alias", alias).
		Msg("credentials validated")

	spec, err := tagfilter.Parse(scanTags)
	if err != nil {
		return err
	}

	registry := collector.NewRegistry()
	awsprovider.Register(session.Config, identity.AccountID, registry)

	metrics, err := telemetry.NewScanMetrics(nil)
	if err != nil {
		return fmt.Errorf("init scan metrics: %w", err)
	}

	result, err := orchestrator.New(registry).WithMetrics(metrics).Run(ctx, orchestrator.Request{
		AccountID:      identity.AccountID,
		AccountAlias:   alias,
		EnabledRegions: session.EnabledRegions(ctx),
		Regions:        scanRegions,
		Services:       scanServices,
		IncludeGlobal:  scanIncludeGlobal,
		TagFilter:      spec,
		Workers:        scanWorkers,
		Timings:        scanTimings,
	})
	if err != nil {
		// Planning errors: report, but still emit the partial result.
		logger.Warn().Err(err).Msg("scan finished with planning errors")
	}

	printSummary(logger, result)
	if scanTimings {
		printTimings(result)
	}

	if scanSnapshot {
		if err := saveSnapshot(cfg, result); err != nil {
			logger.Warn().Err(err).Msg("failed to store snapshot")
		}
	}

	return writeReport(logger, result)
}

// applyScanDefaults fills unset flags from the config file, then hard
// defaults.
func applyScanDefaults(cfg *config.Config) {
	if len(scanRegions) == 0 {
		scanRegions = cfg.Regions
	}
	if len(scanServices) == 0 {
		scanServices = cfg.Services
	}
	if len(scanTags) == 0 {
		scanTags = cfg.Tags
	}
	if scanWorkers == 0 {
		scanWorkers = cfg.Workers
	}
	if scanWorkers == 0 {
		scanWorkers = 40
	}
	if cfg.Format != "" && !scanFlagChanged("format") {
		scanFormat = cfg.Format
	}
	if flagProfile == "" {
		flagProfile = cfg.Profile
	}
	if cfg.IncludeGlobal {
		scanIncludeGlobal = true
	}
}

func scanFlagChanged(name string) bool {
	return scanCmd.Flags().Changed(name)
}

func printSummary(logger *telemetry.Logger, result *inventory.ScanResult) {
	logger.Info().
		Int("resources", result.Metadata.ResourceCount).
		Int("services", result.Metadata.ServicesScanned).
		Int("regions", result.Metadata.RegionsScanned).
		Dur("duration", result.Metadata.Duration).
		Msg("collection complete")

	for _, unitErr := range result.Errors {
		logger.Warn().
			Str("service", unitErr.Service).
			Str("region", unitErr.Region).
			Str("error", unitErr.Message).
			Msg("unit failed, results are partial")
	}
}

func printTimings(result *inventory.ScanResult) {
	if flagQuiet || len(result.Metadata.ServiceTimings) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "\n%-24s %10s\n", "SERVICE", "TOTAL TIME")
	fmt.Fprintln(os.Stderr, strings.Repeat("-", 36))
	for _, service := range sortedTimingKeys(result.Metadata.ServiceTimings) {
		fmt.Fprintf(os.Stderr, "%-24s %10s\n", service, result.Metadata.ServiceTimings[service].Round(time.Millisecond))
	}
}

func sortedTimingKeys(timings map[string]time.Duration) []string {
	keys := make([]string, 0, len(timings))
	for key := range timings {
		keys = append(keys, key)
	}
	// Longest first.
	sort.Slice(keys, func(i, j int) bool { return timings[keys[i]] > timings[keys[j]] })
	return keys
}

func saveSnapshot(cfg *config.Config, result *inventory.ScanResult) error {
	s, err := store.Open(snapshotPath(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return s.Save(result)
}

func snapshotPath(cfg *config.Config) string {
	if cfg.SnapshotPath != "" {
		return cfg.SnapshotPath
	}
	return "awsmap.db"
}

func writeReport(logger *telemetry.Logger, result *inventory.ScanResult) error {
	content, err := report.Render(result, scanFormat)
	if err != nil {
		return err
	}

	path := scanOutput
	if path == "" {
		path = report.DefaultFilename(result.Metadata.AccountID, scanFormat, result.Metadata.Timestamp)
	}

	if err := os.WriteFile(path, content, 0644); err != nil { // #nosec G306 -- report file
		return fmt.Errorf("write report: %w", err)
	}

	logger.Info().Str("path", path).Msg("report written")
	return nil
}
