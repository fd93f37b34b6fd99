// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check concept frontmatter against the configured schema",
	Long: `Validate loads every markdown file under the content directory and checks
its frontmatter. In strict mode category, title, description, and at least one
keyword are required; permissive mode accepts partial entries and fills
fallbacks. Every rejected file is listed.`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	coll, err := loadContent(cmd.Context(), cfg, os.Stderr)
	if err != nil {
		return err
	}

	groups := coll.ByCategory()
	for _, name := range coll.Categories() {
		fmt.Fprintf(os.Stdout, "%-30s %d\n", name, len(groups[name]))
	}
	fmt.Fprintf(os.Stdout, "\n%d concepts in %d categories (schema %s)\n",
		coll.Len(), len(coll.Categories()), coll.Mode)
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
