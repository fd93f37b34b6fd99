package index

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/concepts/internal/logger"
	"github.com/pdiddy/concepts/pkg/types"
)

// --- test helpers ---

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.IndexConfig{Dir: t.TempDir(), MaxResults: 20}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func concept(slug, category, title, description string, keywords ...string) types.Concept {
	return types.Concept{
		Slug:        slug,
		Category:    category,
		Title:       title,
		Description: description,
		Keywords:    keywords,
		Body:        "Notes on " + title + ".",
		Path:        slug + ".md",
		ModTime:     epoch,
	}
}

func sampleConcepts() []types.Concept {
	return []types.Concept{
		concept("bfs", "Algorithms", "Breadth-First Search", "Level-order graph traversal", "graph", "queue"),
		concept("dfs", "Algorithms", "Depth-First Search", "Recursive graph traversal", "graph", "stack"),
		concept("heap", "Algorithms", "Heap", "Priority queue structure", "tree"),
		concept("eigen", "Math", "Eigenvalues", "Scalars of a linear map", "linear algebra"),
		concept("spectral", "Math", "Spectral Graph Theory", "Eigenvalues of graph matrices", "graph"),
		concept("entropy", "Physics", "Entropy", "Measure of disorder", "thermodynamics"),
	}
}

func ingest(t *testing.T, store *Store, concepts []types.Concept) IngestSummary {
	t.Helper()
	summary, err := store.Ingest(context.Background(), concepts, io.Discard)
	require.NoError(t, err)
	return summary
}

func slugs(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Slug
	}
	return out
}

// --- store ---

func TestNewStoreCreatesDBFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "index")
	store, err := NewStore(types.IndexConfig{Dir: dir}, nil)
	require.NoError(t, err)
	defer store.Close()

	assert.FileExists(t, filepath.Join(dir, dbFile))
	assert.Equal(t, 20, store.maxResults)
}

func TestNewStoreReopensExisting(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(types.IndexConfig{Dir: dir}, nil)
	require.NoError(t, err)
	ingest(t, store, sampleConcepts())
	require.NoError(t, store.Close())

	store, err = NewStore(types.IndexConfig{Dir: dir}, nil)
	require.NoError(t, err)
	defer store.Close()

	n, err := store.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestIngest(t *testing.T) {
	store := testStore(t)
	summary := ingest(t, store, sampleConcepts())

	assert.Equal(t, IngestSummary{Indexed: 6}, summary)
	assert.Equal(t, 6, summary.Total())
	assert.True(t, summary.Changed())
}

func TestIngestSkipsUnchanged(t *testing.T) {
	store := testStore(t)
	ingest(t, store, sampleConcepts())

	summary := ingest(t, store, sampleConcepts())
	assert.Equal(t, IngestSummary{Skipped: 6}, summary)
	assert.False(t, summary.Changed())
}

func TestIngestUpdatesChanged(t *testing.T) {
	store := testStore(t)
	ingest(t, store, sampleConcepts())

	concepts := sampleConcepts()
	concepts[5].Title = "Thermodynamic Entropy"
	concepts[5].Description = "Boltzmann counting of microstates"
	concepts[5].ModTime = epoch.Add(time.Minute)

	summary := ingest(t, store, concepts)
	assert.Equal(t, IngestSummary{Updated: 1, Skipped: 5}, summary)

	results, err := store.Search(context.Background(), Query{Text: "boltzmann"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Thermodynamic Entropy", results[0].Title)

	results, err = store.Search(context.Background(), Query{Text: "disorder"})
	require.NoError(t, err)
	assert.Empty(t, results, "old text must leave the full-text index")
}

func TestIngestRemovesMissing(t *testing.T) {
	store := testStore(t)
	ingest(t, store, sampleConcepts())

	var out bytes.Buffer
	summary, err := store.Ingest(context.Background(), sampleConcepts()[:4], &out)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Removed)
	assert.Contains(t, out.String(), "removed  spectral.md")
	assert.Contains(t, out.String(), "removed  entropy.md")

	n, err := store.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	counts, err := store.Counts(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Algorithms": 3, "Math": 1}, counts)
}

func TestIngestSlugMovedToNewPath(t *testing.T) {
	store := testStore(t)
	ingest(t, store, sampleConcepts())

	concepts := sampleConcepts()
	concepts[0].Path = "graphs/bfs.md"
	summary := ingest(t, store, concepts)
	assert.Equal(t, 1, summary.Indexed)
	assert.Equal(t, 1, summary.Removed)

	n, err := store.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestIngestSummaryOutput(t *testing.T) {
	store := testStore(t)
	var out bytes.Buffer
	_, err := store.Ingest(context.Background(), sampleConcepts()[:1], &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "indexed  bfs")
	assert.Contains(t, out.String(), "indexed: 1, updated: 0, skipped: 0, removed: 0, failed: 0")
}

func TestIngestCancelled(t *testing.T) {
	store := testStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Ingest(ctx, sampleConcepts(), io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
}

// --- search ---

func TestMatchExpression(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"graph", `"graph"*`},
		{"graph theory", `"graph"* "theory"*`},
		{`eigen" OR x`, `"eigen"* "OR"* "x"*`},
		{"C++ (templates)", `"C"* "templates"*`},
		{"Schrödinger", `"Schrödinger"*`},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchExpression(tt.text))
		})
	}
}

func TestSearchFullText(t *testing.T) {
	store := testStore(t)
	ingest(t, store, sampleConcepts())

	results, err := store.Search(context.Background(), Query{Text: "graph"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bfs", "dfs", "spectral"}, slugs(results))
	for _, r := range results {
		assert.Contains(t, r.Snippet, "[")
		assert.NotZero(t, r.Rank)
	}
}

func TestSearchPrefix(t *testing.T) {
	store := testStore(t)
	ingest(t, store, sampleConcepts())

	results, err := store.Search(context.Background(), Query{Text: "eigenval"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"eigen", "spectral"}, slugs(results))
}

func TestSearchCategory(t *testing.T) {
	store := testStore(t)
	ingest(t, store, sampleConcepts())

	results, err := store.Search(context.Background(), Query{Text: "graph", Category: "Math"})
	require.NoError(t, err)
	assert.Equal(t, []string{"spectral"}, slugs(results))

	results, err = store.Search(context.Background(), Query{Text: "graph", Category: types.AllCategories})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchWithoutTextListsInOrder(t *testing.T) {
	store := testStore(t)
	ingest(t, store, sampleConcepts())

	results, err := store.Search(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"bfs", "dfs", "heap", "eigen", "spectral", "entropy"}, slugs(results))
	assert.Equal(t, []string{"linear algebra"}, results[3].Keywords)
}

func TestSearchRespectsMaxResults(t *testing.T) {
	store := testStore(t)
	ingest(t, store, sampleConcepts())

	results, err := store.Search(context.Background(), Query{MaxResults: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchNoResults(t *testing.T) {
	store := testStore(t)
	ingest(t, store, sampleConcepts())

	results, err := store.Search(context.Background(), Query{Text: "quaternion"})
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestCounts(t *testing.T) {
	store := testStore(t)
	ingest(t, store, sampleConcepts())

	counts, err := store.Counts(context.Background(), "graph")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Algorithms": 2, "Math": 1, "Physics": 0}, counts)

	counts, err = store.Counts(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Algorithms": 3, "Math": 2, "Physics": 1}, counts)
}

// --- export ---

func TestExportYAML(t *testing.T) {
	store := testStore(t)
	ingest(t, store, sampleConcepts())

	path, err := store.ExportYAML(context.Background(), Query{Category: "Math"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.dir, "export.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []ExportEntry
	require.NoError(t, yaml.Unmarshal(data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "eigen", entries[0].Slug)
	assert.Equal(t, "spectral.md", entries[1].Path)
}

func TestExportJSON(t *testing.T) {
	store := testStore(t)
	ingest(t, store, sampleConcepts())

	path, err := store.ExportJSON(context.Background(), Query{Text: "graph"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []ExportEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Len(t, entries, 3)
}

func TestSearchCorruptKeywordsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store, err := NewStore(types.IndexConfig{Dir: t.TempDir()}, &logger.Logger{SugaredLogger: zap.New(core).Sugar()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ingest(t, store, sampleConcepts())
	_, err = store.db.Exec(`UPDATE concepts SET keywords = ? WHERE slug = ?`, "{not json", "bfs")
	require.NoError(t, err)

	results, err := store.Search(context.Background(), Query{Category: "Algorithms"})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	var bfs *Result
	for i := range results {
		if results[i].Slug == "bfs" {
			bfs = &results[i]
		}
	}
	require.NotNil(t, bfs)
	assert.Empty(t, bfs.Keywords)

	warnings := logs.FilterMessage("corrupt keywords column").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "bfs", warnings[0].ContextMap()["slug"])
}
