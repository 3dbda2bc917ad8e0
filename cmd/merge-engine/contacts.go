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
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/merge-engine/internal/merge"
	"github.com/pdiddy/merge-engine/internal/store"
	"github.com/pdiddy/merge-engine/internal/vcard"
	"github.com/pdiddy/merge-engine/pkg/types"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Import, merge, list, and export contacts",
}

var contactsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import contacts from a vCard, YAML, or JSON file",
	Long: `Import reads contacts from a .vcf file or from a YAML/JSON export and
adds them to a collection. Contacts that duplicate an earlier contact in the
file, or a contact already in the collection, are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runContactsImport,
}

var contactsMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Remove duplicate contacts from a collection",
	Long: `Merge finds duplicate contacts within a collection and deletes all but
the first-seen contact of each duplicate group.`,
	RunE: runContactsMerge,
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the contacts of a collection",
	RunE:  runContactsList,
}

var contactsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a collection as YAML, JSON, or vCard",
	Long: `Export writes a collection. YAML and JSON go to <data-dir>/export/<id>.yaml
or .json; vCard goes to --output, or stdout when --output is empty.`,
	RunE: runContactsExport,
}

func init() {
	addRunFlags(contactsImportCmd)
	addRunFlags(contactsMergeCmd)

	contactsListCmd.Flags().StringP("collection", "c", "", "collection ID (required)")
	contactsListCmd.Flags().Bool("json", false, "output as JSON")
	contactsListCmd.MarkFlagRequired("collection")

	contactsExportCmd.Flags().StringP("collection", "c", "", "collection ID (required)")
	contactsExportCmd.Flags().String("format", "yaml", "export format: yaml, json, or vcf")
	contactsExportCmd.Flags().StringP("output", "o", "", "output file for vcf (default stdout)")
	contactsExportCmd.MarkFlagRequired("collection")

	contactsCmd.AddCommand(contactsImportCmd, contactsMergeCmd, contactsListCmd, contactsExportCmd)
	rootCmd.AddCommand(contactsCmd)
}

func runContactsImport(cmd *cobra.Command, args []string) error {
	collectionID, _ := cmd.Flags().GetString("collection")

	contacts, err := readContacts(args[0])
	if err != nil {
		return err
	}

	st, svc, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := svc.ImportContacts(context.Background(), collectionID, contacts, runOptions(cmd))
	if err != nil {
		return err
	}
	printImportResult(os.Stdout, res)
	return writeReport(cmd, merge.NewImportReport("contacts import", res, now()))
}

func runContactsMerge(cmd *cobra.Command, args []string) error {
	collectionID, _ := cmd.Flags().GetString("collection")

	st, svc, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := svc.MergeContacts(context.Background(), collectionID, runOptions(cmd))
	if err != nil {
		return err
	}
	printMergeResult(os.Stdout, res)
	return writeReport(cmd, merge.NewMergeReport("contacts merge", res, now()))
}

func runContactsList(cmd *cobra.Command, args []string) error {
	collectionID, _ := cmd.Flags().GetString("collection")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	st, _, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	contacts, err := st.ListContacts(context.Background(), collectionID)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(contacts)
	}

	if len(contacts) == 0 {
		fmt.Println("No contacts.")
		return nil
	}
	fmt.Printf("%-36s  %-28s  %-30s  %s\n", "ID", "Name", "Email", "Phone")
	fmt.Println(strings.Repeat("-", 120))
	for _, c := range contacts {
		var email, phone string
		if len(c.Emails) > 0 {
			email = c.Emails[0].Address
		}
		if len(c.Phones) > 0 {
			phone = c.Phones[0].Number
		}
		fmt.Printf("%-36s  %-28s  %-30s  %s\n", c.ID, truncate(c.FormattedName, 28), truncate(email, 30), phone)
	}
	return nil
}

func runContactsExport(cmd *cobra.Command, args []string) error {
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
	case "vcf", "vcard":
		contacts, err := st.ListContacts(ctx, collectionID)
		if err != nil {
			return err
		}
		return writeOutput(output, func(w io.Writer) error { return vcard.Encode(w, contacts) })
	default:
		return fmt.Errorf("unknown export format %q: use yaml, json, or vcf", format)
	}
	return nil
}

// readContacts decodes a contacts file, choosing the decoder by extension.
func readContacts(path string) ([]types.Contact, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vcf", ".vcard":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		contacts, err := vcard.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return contacts, nil
	default:
		export, err := readExport(path)
		if err != nil {
			return nil, err
		}
		return export.Contacts, nil
	}
}

// readExport loads a YAML or JSON file in the store's export layout.
func readExport(path string) (*store.Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var export store.Export
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &export)
	case ".json":
		err = json.Unmarshal(data, &export)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &export, nil
}

// writeOutput runs write against path, or stdout when path is empty. The
// file is written to a temporary name and renamed on success.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Exported to %s\n", path)
	return nil
}
