// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/concepts/internal/filter"
	"github.com/pdiddy/concepts/internal/index"
	"github.com/pdiddy/concepts/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query the full-text index",
	Long: `Search runs a full-text query against the index built by "concepts index".
Each word matches as a prefix. Results are ranked by relevance and can be
restricted to one category. The result count is the total number of matches
in the selected category, which may exceed the listed results.`,
	RunE: runSearch,
}

type searchOutput struct {
	Query       string         `json:"query"`
	Category    string         `json:"category"`
	ResultCount int            `json:"result_count"`
	Counts      map[string]int `json:"counts"`
	Results     []index.Result `json:"results"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	category, _ := cmd.Flags().GetString("category")
	if category == "" {
		category = types.AllCategories
	}
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	q := index.Query{
		Text:       strings.Join(args, " "),
		Category:   category,
		MaxResults: limit,
	}
	results, err := store.Search(cmd.Context(), q)
	if err != nil {
		return err
	}
	counts, err := store.Counts(cmd.Context(), q.Text)
	if err != nil {
		return err
	}

	state := filter.New(filter.NoopSync{})
	defer state.Close()
	state.SetActiveCategory(category)
	for name, n := range counts {
		state.ReportCategoryCount(name, n)
	}

	out := searchOutput{
		Query:       q.Text,
		Category:    state.ActiveCategory(),
		ResultCount: state.ResultCount(),
		Counts:      counts,
		Results:     results,
	}
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return formatSearchOutput(os.Stdout, out)
}

func formatSearchOutput(w io.Writer, out searchOutput) error {
	if len(out.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-24s  %-16s  %s\n", "Rank", "Slug", "Category", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for i, r := range out.Results {
		fmt.Fprintf(w, "%-4d  %-24s  %-16s  %s\n",
			i+1, truncate(r.Slug, 24), truncate(r.Category, 16), r.Title)
		if r.Snippet != "" {
			fmt.Fprintf(w, "      %s\n", r.Snippet)
		}
	}

	fmt.Fprintf(w, "\n%d results in %s", out.ResultCount, out.Category)
	if len(out.Results) < out.ResultCount {
		fmt.Fprintf(w, " (showing %d)", len(out.Results))
	}
	fmt.Fprintln(w)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	searchCmd.Flags().String("category", types.AllCategories, "restrict results to one category")
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = use index.max_results)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
