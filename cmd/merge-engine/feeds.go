// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/merge-engine/internal/feed"
)

var feedsCmd = &cobra.Command{
	Use:   "feeds",
	Short: "Pull URL-sourced collections",
}

var feedsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch source feeds and import new records",
	Long: `Refresh downloads the vCard or iCalendar feed of every collection that
has a source URL (or only --collection) and imports the records not already
present. Local records are never removed by a refresh.

A bearer token for a feed host is read from <secrets_dir>/feed-token-<host>.`,
	RunE: runFeedsRefresh,
}

func init() {
	feedsRefreshCmd.Flags().StringP("collection", "c", "", "refresh only this collection")
	feedsRefreshCmd.Flags().Bool("dry-run", false, "report what would be imported without writing")

	feedsCmd.AddCommand(feedsRefreshCmd)
	rootCmd.AddCommand(feedsCmd)
}

func runFeedsRefresh(cmd *cobra.Command, args []string) error {
	collectionID, _ := cmd.Flags().GetString("collection")
	opts := runOptions(cmd)

	st, svc, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	fetcher := feed.NewFetcher(appCfg.Feed, loadedSecrets)
	ctx := context.Background()

	if collectionID != "" {
		res, err := svc.RefreshFromFeed(ctx, collectionID, fetcher, opts)
		if err != nil {
			return err
		}
		printImportResult(os.Stdout, res)
		return nil
	}

	outcomes, err := svc.RefreshAll(ctx, fetcher, opts)
	if err != nil {
		return err
	}
	if len(outcomes) == 0 {
		fmt.Println("No collections have a source URL.")
		return nil
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Printf("%s %s: %v\n", color.RedString("failed:"), o.Collection.ID, o.Err)
			continue
		}
		printImportResult(os.Stdout, o.Result)
	}
	if failed > 0 {
		return fmt.Errorf("%d feed(s) failed to refresh", failed)
	}
	return nil
}
