// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/merge-engine/internal/dedup"
	"github.com/pdiddy/merge-engine/internal/merge"
	"github.com/pdiddy/merge-engine/internal/store"
)

// openService opens the store named by the configuration and wraps it in a
// merge.Service. The caller closes the store.
func openService() (*store.Store, *merge.Service, error) {
	st, err := store.Open(appCfg.Store)
	if err != nil {
		return nil, nil, err
	}
	return st, merge.NewService(st, logger, appCfg.Import), nil
}

// runOptions collects the per-run merge options from cmd.
func runOptions(cmd *cobra.Command) merge.Options {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	return merge.Options{
		Detection: detectionOptions(cmd),
		DryRun:    dryRun,
	}
}

// addRunFlags registers the flags shared by merge and import commands.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("collection", "c", "", "collection ID (required)")
	cmd.Flags().Bool("dry-run", false, "report what would change without writing")
	cmd.Flags().String("report", "", "write a YAML report of the run to this path")
	cmd.MarkFlagRequired("collection")
}

func writeReport(cmd *cobra.Command, r merge.Report) error {
	path, _ := cmd.Flags().GetString("report")
	if path == "" {
		return nil
	}
	if err := merge.WriteReport(path, r); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
	return nil
}

func printMergeResult(w io.Writer, res merge.MergeResult) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	if res.DryRun {
		fmt.Fprintln(w, color.YellowString("DRY RUN MODE - nothing was deleted"))
	}
	fmt.Fprintf(w, "%s %s\n", cyan("Collection:"), res.CollectionID)
	fmt.Fprintf(w, "  %s\n", res.Config)
	fmt.Fprintf(w, "  examined: %d\n", res.Total)
	fmt.Fprintf(w, "  kept:     %s\n", green(res.MergedCount))
	fmt.Fprintf(w, "  removed:  %s\n", yellow(res.RemovedDuplicates))
	printPairs(w, res.Pairs)
}

func printImportResult(w io.Writer, res merge.ImportResult) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	if res.DryRun {
		fmt.Fprintln(w, color.YellowString("DRY RUN MODE - nothing was imported"))
	}
	fmt.Fprintf(w, "%s %s\n", cyan("Collection:"), res.CollectionID)
	fmt.Fprintf(w, "  %s\n", res.Config)
	fmt.Fprintf(w, "  received:         %d\n", res.Received)
	fmt.Fprintf(w, "  imported:         %s\n", green(res.Imported))
	fmt.Fprintf(w, "  already present:  %s\n", yellow(res.SkippedDuplicates))
	fmt.Fprintf(w, "  repeated in file: %s\n", yellow(res.SkippedWithinBatch))
	printPairs(w, res.Pairs)
}

func printPairs(w io.Writer, pairs []dedup.Pair) {
	if len(pairs) == 0 {
		return
	}
	gray := color.New(color.FgHiBlack).SprintFunc()
	fmt.Fprintln(w, "  duplicates:")
	for _, p := range pairs {
		fmt.Fprintf(w, "    %s %s %s\n", p.Duplicate.ID, gray("→"), p.Original.ID)
		if p.Duplicate.DisplayName != "" {
			fmt.Fprintf(w, "      %s\n", gray(p.Duplicate.DisplayName))
		}
	}
}

func now() time.Time { return time.Now().UTC() }
