// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/extraction-bench/internal/checks"
	"github.com/pdiddy/extraction-bench/internal/store"
	"github.com/pdiddy/extraction-bench/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the indexed run history",
	Long: `Store maintains a SQLite index over the run records in results/runs/.
Ingest scans for new or changed records, list and find query the index,
compare measures a run against a baseline, and export writes flattened
summaries for other tools.`,
}

var storeIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index new and changed run records",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		summary, err := s.Ingest(context.Background(), os.Stdout)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "indexed %d, updated %d, skipped %d, failed %d\n",
			summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)
		if summary.Failed > 0 {
			return fmt.Errorf("%d run record(s) failed to ingest", summary.Failed)
		}
		return nil
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed runs in recording order",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := s.List(context.Background(), limit)
		if err != nil {
			return err
		}
		printRuns(runs)
		return nil
	},
}

var storeFindCmd = &cobra.Command{
	Use:   "find [query]",
	Short: "Full-text search over run labels and notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := s.Find(context.Background(), args[0], limit)
		if err != nil {
			return err
		}
		printRuns(runs)
		return nil
	},
}

var storeCompareCmd = &cobra.Command{
	Use:   "compare [run-id]",
	Short: "Measure a run against the baseline",
	Long: `Compare computes the speedup of a run relative to a baseline run. The
baseline defaults to the earliest run labeled "baseline"; override it with
--baseline.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := benchConfig()

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()

		baselineID, _ := cmd.Flags().GetString("baseline")
		if baselineID == "" {
			baseline, err := s.Baseline(ctx)
			if err != nil {
				return err
			}
			baselineID = baseline.ID
		}

		target := checks.NewTarget(cfg.Target)
		cmp, err := s.Compare(ctx, baselineID, args[0], target)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "baseline %s: %.2f s/transcript\n", cmp.Baseline.ID, cmp.Baseline.AverageSeconds)
		fmt.Fprintf(os.Stdout, "run      %s: %.2f s/transcript\n", cmp.Run.ID, cmp.Run.AverageSeconds)
		fmt.Fprintf(os.Stdout, "speedup: %.2fx (delta %.2f s)\n", cmp.Speedup, cmp.DeltaSeconds)
		fmt.Fprintf(os.Stdout, "budget:  %.2f s/transcript for %.0fx\n", cmp.PerItemBudget, target.MinSpeedup)
		if cmp.TargetMet {
			fmt.Fprintln(os.Stdout, "target:  met")
			return nil
		}
		fmt.Fprintln(os.Stdout, "target:  not met")
		return fmt.Errorf("run %s misses the %.0fx target", cmp.Run.ID, target.MinSpeedup)
	},
}

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write flattened run summaries to results/index/",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		if err := s.ExportYAML(ctx); err != nil {
			return err
		}
		if err := s.ExportJSON(ctx); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "exports written")
		return nil
	},
}

var storeShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Print one indexed run with its phase timings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		run, err := s.Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(run)
		if err != nil {
			return fmt.Errorf("marshaling run: %w", err)
		}
		fmt.Fprint(os.Stdout, string(data))
		return nil
	},
}

func openStore() (*store.Store, error) {
	cfg := benchConfig()
	return store.NewStore(cfg.Store)
}

func printRuns(runs []types.Run) {
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%s  %-12s  %3d transcripts  %7.1f s total  %6.2f s avg  %s\n",
			r.StartedAt.Format("2006-01-02 15:04"), r.Label,
			r.TranscriptCount, r.TotalSeconds, r.AverageSeconds, r.ID)
	}
	fmt.Fprintf(os.Stdout, "%d run(s)\n", len(runs))
}

func init() {
	storeListCmd.Flags().Int("limit", 0, "maximum runs to list (default: store.max_results)")
	storeFindCmd.Flags().Int("limit", 0, "maximum runs to return (default: store.max_results)")
	storeCompareCmd.Flags().String("baseline", "", "baseline run id (default: earliest run labeled baseline)")

	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeFindCmd)
	storeCmd.AddCommand(storeCompareCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeShowCmd)

	rootCmd.AddCommand(storeCmd)
}
