// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/merge-engine/internal/ical"
	"github.com/pdiddy/merge-engine/internal/merge"
	"github.com/pdiddy/merge-engine/pkg/types"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Import, merge, list, and export tasks",
}

var tasksImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import tasks from an iCalendar, YAML, or JSON file",
	Long: `Import reads VTODO components from a .ics file, or tasks from a
YAML/JSON export, and adds them to a task list. Without --use-* overrides,
tasks match on UID, or on normalized title when either lacks a UID.`,
	Args: cobra.ExactArgs(1),
	RunE: runTasksImport,
}

var tasksMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Remove duplicate tasks from a task list",
	RunE:  runTasksMerge,
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tasks of a task list",
	RunE:  runTasksList,
}

var tasksExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a task list as YAML, JSON, or iCalendar",
	RunE:  runTasksExport,
}

func init() {
	addRunFlags(tasksImportCmd)
	addRunFlags(tasksMergeCmd)

	tasksListCmd.Flags().StringP("collection", "c", "", "collection ID (required)")
	tasksListCmd.Flags().Bool("json", false, "output as JSON")
	tasksListCmd.MarkFlagRequired("collection")

	tasksExportCmd.Flags().StringP("collection", "c", "", "collection ID (required)")
	tasksExportCmd.Flags().String("format", "yaml", "export format: yaml, json, or ics")
	tasksExportCmd.Flags().StringP("output", "o", "", "output file for ics (default stdout)")
	tasksExportCmd.MarkFlagRequired("collection")

	tasksCmd.AddCommand(tasksImportCmd, tasksMergeCmd, tasksListCmd, tasksExportCmd)
	rootCmd.AddCommand(tasksCmd)
}

func runTasksImport(cmd *cobra.Command, args []string) error {
	collectionID, _ := cmd.Flags().GetString("collection")

	tasks, err := readTasks(args[0])
	if err != nil {
		return err
	}

	st, svc, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := svc.ImportTasks(context.Background(), collectionID, tasks, runOptions(cmd))
	if err != nil {
		return err
	}
	printImportResult(os.Stdout, res)
	return writeReport(cmd, merge.NewImportReport("tasks import", res, now()))
}

func runTasksMerge(cmd *cobra.Command, args []string) error {
	collectionID, _ := cmd.Flags().GetString("collection")

	st, svc, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := svc.MergeTasks(context.Background(), collectionID, runOptions(cmd))
	if err != nil {
		return err
	}
	printMergeResult(os.Stdout, res)
	return writeReport(cmd, merge.NewMergeReport("tasks merge", res, now()))
}

func runTasksList(cmd *cobra.Command, args []string) error {
	collectionID, _ := cmd.Flags().GetString("collection")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	st, _, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	tasks, err := st.ListTasks(context.Background(), collectionID)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return nil
	}
	fmt.Printf("%-36s  %-40s  %-12s  %-4s  %s\n", "ID", "Title", "Status", "Prio", "Due")
	fmt.Println(strings.Repeat("-", 115))
	for _, t := range tasks {
		due := ""
		if t.Due != nil {
			due = t.Due.Format("2006-01-02 15:04")
		}
		fmt.Printf("%-36s  %-40s  %-12s  %-4d  %s\n", t.ID, truncate(t.Title, 40), t.Status, t.Priority, due)
	}
	return nil
}

func runTasksExport(cmd *cobra.Command, args []string) error {
	collectionID, _ := cmd.Flags().GetString("collection")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	st, _, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()
	ctx := context.Background()

	switch strings.ToLower(format) {
	case "yaml", "yml":
		path, err := st.ExportYAML(ctx, collectionID)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported to %s\n", path)
	case "json":
		path, err := st.ExportJSON(ctx, collectionID)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported to %s\n", path)
	case "ics", "ical":
		tasks, err := st.ListTasks(ctx, collectionID)
		if err != nil {
			return err
		}
		return writeOutput(output, func(w io.Writer) error { return ical.Encode(w, tasks) })
	default:
		return fmt.Errorf("unknown export format %q: use yaml, json, or ics", format)
	}
	return nil
}

// readTasks decodes a tasks file, choosing the decoder by extension.
func readTasks(path string) ([]types.Task, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ics", ".ical":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		tasks, err := ical.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return tasks, nil
	default:
		export, err := readExport(path)
		if err != nil {
			return nil, err
		}
		return export.Tasks, nil
	}
}
