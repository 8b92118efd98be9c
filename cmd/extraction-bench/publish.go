// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/extraction-bench/internal/harness"
	"github.com/pdiddy/extraction-bench/internal/publish"
)

var publishCmd = &cobra.Command{
	Use:   "publish [run.yaml]",
	Short: "Push a run record to the shared results endpoint",
	Long: `Publish posts a run record as JSON to the configured results endpoint.
The bearer token comes from publish.token in the config or from the
results-token secret file.`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg := benchConfig()
	cfg.Publish.Token = secretDefault("results-token", cfg.Publish.Token)

	run, err := harness.ReadRun(args[0])
	if err != nil {
		return err
	}

	publisher, err := publish.New(cfg.Publish)
	if err != nil {
		return err
	}

	if err := publisher.Publish(context.Background(), run); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "published run %s to %s\n", run.ID, cfg.Publish.Endpoint)
	return nil
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
