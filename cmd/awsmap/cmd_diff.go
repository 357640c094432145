package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awsmap/awsmap/inventory"
	"github.com/awsmap/awsmap/store"
)

var diffJSON bool

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare the two most recent snapshots",
	Long: `Compares the two most recent scans stored with 'awsmap scan --snapshot'
and reports resources that appeared, disappeared, or changed details or tags.`,
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "Emit the change set as JSON")
}

func runDiff(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := store.Open(snapshotPath(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	older, newer, err := s.LastTwo()
	if err != nil {
		return err
	}
	if older == nil || newer == nil {
		return fmt.Errorf("need at least two snapshots, run 'awsmap scan --snapshot' twice")
	}

	changes := store.Diff(older, newer)
	out := cmd.OutOrStdout()

	if diffJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(changes)
	}

	fmt.Fprintf(out, "Comparing %s -> %s\n\n",
		older.Metadata.Timestamp.Format("2006-01-02 15:04:05"),
		newer.Metadata.Timestamp.Format("2006-01-02 15:04:05"))

	if changes.Empty() {
		fmt.Fprintln(out, "No changes.")
		return nil
	}

	printChangeGroup(cmd, "+", changes.Added)
	printChangeGroup(cmd, "-", changes.Removed)
	printChangeGroup(cmd, "~", changes.Changed)

	fmt.Fprintf(out, "\n%d added, %d removed, %d changed\n",
		len(changes.Added), len(changes.Removed), len(changes.Changed))
	return nil
}

func printChangeGroup(cmd *cobra.Command, marker string, records []inventory.Record) {
	out := cmd.OutOrStdout()
	for _, record := range records {
		fmt.Fprintf(out, "%s %s/%s %s (%s) in %s\n",
			marker, record.Service, record.Type, record.ID, record.Name, record.Region)
	}
}
