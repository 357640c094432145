package main

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"

	"github.com/awsmap/awsmap/catalog"
	"github.com/awsmap/awsmap/collector"
	awsprovider "github.com/awsmap/awsmap/providers/aws"
)

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List the services awsmap can scan",
	RunE:  runServices,
}

func init() {
	rootCmd.AddCommand(servicesCmd)
}

func runServices(cmd *cobra.Command, args []string) error {
	// Registration is pure wiring, so an empty credential config is enough
	// to enumerate collectors.
	registry := collector.NewRegistry()
	awsprovider.Register(aws.Config{}, "", registry)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-16s %s\n", "SERVICE", "SCOPE")
	fmt.Fprintln(out, strings.Repeat("-", 40))
	for _, service := range registry.Services() {
		fmt.Fprintf(out, "%-16s %s\n", service, serviceScope(service))
	}
	return nil
}

func serviceScope(service string) string {
	switch {
	case catalog.IsGlobal(service):
		return fmt.Sprintf("global (%s)", catalog.ControlPlaneRegion(service))
	case catalog.SelfRegional(service):
		return "account-wide, per-resource region"
	default:
		return "regional"
	}
}
