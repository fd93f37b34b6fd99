// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/concepts/internal/catalog"
	"github.com/pdiddy/concepts/internal/filter"
	"github.com/pdiddy/concepts/pkg/types"
)

var browseCmd = &cobra.Command{
	Use:   "browse [page-url]",
	Short: "Render the catalog view for a page URL",
	Long: `Browse loads the collection and runs the page's search/filter state against
a page URL, exactly as a visitor opening that URL would see it. The state is
seeded from ?q= and ?cat=; --query and --category then change it the way the
search box and category tabs do, and the URL the state wrote back is printed
with the view.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	raw := cfg.Site.URL + normalizedBase(cfg.Site.BasePath)
	if len(args) == 1 {
		raw = args[0]
	}
	page, err := filter.NewLocation(raw)
	if err != nil {
		return err
	}

	coll, err := loadContent(cmd.Context(), cfg, os.Stderr)
	if err != nil {
		return err
	}

	state := filter.New(page, filter.Debounce(cfg.Filter.Debounce), filter.WithLogger(log))
	defer state.Close()
	state.Init()

	cat := catalog.New(coll)
	unbind := cat.Bind(state)
	defer unbind()

	if cmd.Flags().Changed("query") {
		term, _ := cmd.Flags().GetString("query")
		state.SetSearchTerm(term)
	}
	if cmd.Flags().Changed("category") {
		category, _ := cmd.Flags().GetString("category")
		if category == "" {
			category = types.AllCategories
		}
		state.SetActiveCategory(category)
	}
	state.Flush()

	view := cat.View(state)
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			catalog.View
			URL string `json:"url"`
		}{view, page.String()})
	}
	printView(os.Stdout, view, page.String())
	return nil
}

// normalizedBase returns base as "/prefix/", or "/" when empty.
func normalizedBase(base string) string {
	base = strings.Trim(base, "/")
	if base == "" {
		return "/"
	}
	return "/" + base + "/"
}

func printView(w io.Writer, v catalog.View, url string) {
	fmt.Fprintf(w, "URL: %s\n", url)
	if v.Query != "" {
		fmt.Fprintf(w, "Search: %q\n", v.Query)
	}
	fmt.Fprintln(w)

	for _, tab := range v.Tabs {
		marker := " "
		if tab.Active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s (%d)  ", marker, tab.Name, tab.Count)
	}
	fmt.Fprintln(w)

	for _, s := range v.Sections {
		fmt.Fprintf(w, "\n## %s\n", s.Category)
		for _, c := range s.Concepts {
			fmt.Fprintf(w, "  - %s", c.Title)
			if c.Description != "" {
				fmt.Fprintf(w, ": %s", c.Description)
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(w, "\n%d results\n", v.ResultCount)
}

func init() {
	browseCmd.Flags().String("query", "", "type this search term after the page loads")
	browseCmd.Flags().String("category", "", "select this category tab after the page loads")
	browseCmd.Flags().Bool("json", false, "output the view as JSON")

	rootCmd.AddCommand(browseCmd)
}
