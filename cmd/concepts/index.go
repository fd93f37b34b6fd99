// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or update the full-text index",
	Long: `Index loads the concept collection and ingests it into a SQLite database
with FTS5 indexing. Unchanged files are skipped on subsequent runs and
concepts whose file was removed are dropped from the index.`,
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	coll, err := loadContent(cmd.Context(), cfg, os.Stderr)
	if err != nil {
		return err
	}

	store, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), coll.Concepts, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d concept(s) failed indexing", summary.Failed)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
