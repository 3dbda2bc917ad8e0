// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/merge-engine/pkg/types"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Create and list address books and task lists",
	Long: `Collections group records of one kind: contacts (an address book) or
tasks (a task list). A collection may carry a source URL pointing at a
vCard or iCalendar feed; "merge-engine feeds refresh" pulls from it.`,
}

var collectionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a collection",
	RunE:  runCollectionsCreate,
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	RunE:  runCollectionsList,
}

func init() {
	collectionsCreateCmd.Flags().String("kind", "contacts", "collection kind: contacts or tasks")
	collectionsCreateCmd.Flags().String("name", "", "display name (required)")
	collectionsCreateCmd.Flags().String("id", "", "collection ID (default: generated UUID)")
	collectionsCreateCmd.Flags().String("source-url", "", "vCard/iCalendar feed URL (http, https or webcal)")
	collectionsCreateCmd.MarkFlagRequired("name")

	collectionsListCmd.Flags().String("kind", "", "only list collections of this kind")
	collectionsListCmd.Flags().Bool("json", false, "output as JSON")

	collectionsCmd.AddCommand(collectionsCreateCmd, collectionsListCmd)
	rootCmd.AddCommand(collectionsCmd)
}

func runCollectionsCreate(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	name, _ := cmd.Flags().GetString("name")
	id, _ := cmd.Flags().GetString("id")
	sourceURL, _ := cmd.Flags().GetString("source-url")

	st, _, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := st.CreateCollection(context.Background(), types.Collection{
		ID:        id,
		Kind:      types.CollectionKind(strings.ToLower(kind)),
		Name:      name,
		SourceURL: sourceURL,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created %s collection %s (%s)\n", c.Kind, c.ID, c.Name)
	return nil
}

func runCollectionsList(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	st, _, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	collections, err := st.ListCollections(context.Background(), types.CollectionKind(kind))
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(collections)
	}

	if len(collections) == 0 {
		fmt.Println("No collections.")
		return nil
	}
	fmt.Printf("%-36s  %-8s  %-24s  %s\n", "ID", "Kind", "Name", "Source")
	fmt.Println(strings.Repeat("-", 100))
	for _, c := range collections {
		fmt.Printf("%-36s  %-8s  %-24s  %s\n", c.ID, c.Kind, truncate(c.Name, 24), c.SourceURL)
	}
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
