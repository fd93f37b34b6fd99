// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/concepts/internal/index"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the index to YAML or JSON",
	Long: `Export writes the indexed concepts (or a filtered subset) to
<index dir>/export.yaml or export.json.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	query, _ := cmd.Flags().GetString("query")
	category, _ := cmd.Flags().GetString("category")

	store, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	q := index.Query{Text: query, Category: category}

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context(), q)
	case "json":
		path, err = store.ExportJSON(cmd.Context(), q)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Println("Exported to", path)
	return nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("query", "", "full-text search filter for partial export")
	exportCmd.Flags().String("category", "", "category filter for partial export")

	rootCmd.AddCommand(exportCmd)
}
