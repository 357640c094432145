package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/awsmap/awsmap/config"
)

var (
	version = "0.1.0"

	flagProfile string
	flagConfig  string
	flagQuiet   bool

	rootCmd = &cobra.Command{
		Use:   "awsmap",
		Short: "Map and inventory AWS resources",
		Long: `awsmap scans an AWS account across services and regions and
produces a unified, filterable resource inventory.

Collectors run concurrently on a bounded worker pool; a failing
service/region pair never aborts the rest of the scan.`,
		Version: version,
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate("awsmap {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&flagProfile, "profile", "p", "", "AWS profile name to use")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to awsmap config file")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// loadConfig reads the optional config file; no file means all defaults.
func loadConfig() (*config.Config, error) {
	if flagConfig == "" {
		return &config.Config{}, nil
	}
	return config.Load(flagConfig)
}
