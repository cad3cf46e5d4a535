package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtthwcarey/catalogger/internal/catalog"
	"github.com/mtthwcarey/catalogger/internal/config"
	"github.com/mtthwcarey/catalogger/internal/history"
	"github.com/mtthwcarey/catalogger/internal/pipeline"
)

const duneVolume = `{
  "kind": "books#volumes",
  "totalItems": 1,
  "items": [{
    "volumeInfo": {
      "title": "Dune",
      "authors": ["Frank Herbert"],
      "publisher": "Ace",
      "publishedDate": "1990",
      "industryIdentifiers": [{"type": "ISBN_13", "identifier": "9780441172719"}],
      "pageCount": 535
    }
  }]
}`

type testEnv struct {
	dir        string
	configPath string
	cfg        config.Config
}

// newTestEnv writes a config whose files live in a temp dir and whose LLM and
// Google Books endpoints point at one fake server.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, key := range []string{
		"CATALOGING_PROVIDER", "OPENAI_BASE_URL", "OPENAI_MODEL", "GOOGLE_BOOKS_API_KEY",
		"CATALOGGER_CATALOG_FILE", "CATALOGGER_NOTES_FILE", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("OPENAI_API_KEY", "test-key")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			var req struct {
				Messages []struct {
					Content string `json:"content"`
				} `json:"messages"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			reply := "I could not find a book in that."
			if n := len(req.Messages); n > 0 && strings.Contains(req.Messages[n-1].Content, "Dune") {
				reply = "- Title: Dune\n- Author: Frank Herbert\n- Format: paperback\n- Year: 1990"
			}
			body, _ := json.Marshal(map[string]any{
				"choices": []map[string]any{{"message": map[string]string{"content": reply}}},
			})
			_, _ = w.Write(body)
		case strings.HasSuffix(r.URL.Path, "/volumes"):
			_, _ = w.Write([]byte(duneVolume))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	env := &testEnv{dir: dir, configPath: filepath.Join(dir, "catalogger.yaml")}
	content := fmt.Sprintf(`catalog_file: %s
notes_file: %s
log_file: %s
history_db: %s
reports_dir: %s
llm:
  provider: openai
  openai_base_url: %s
books:
  endpoint: %s/
  max_attempts: 1
`,
		filepath.Join(dir, "data", "book_catalog.csv"),
		filepath.Join(dir, "data", "entry_notes.txt"),
		filepath.Join(dir, "logs", "catalogger.log"),
		filepath.Join(dir, "data", "history.db"),
		filepath.Join(dir, "logs", "runs"),
		server.URL,
		server.URL,
	)
	require.NoError(t, os.WriteFile(env.configPath, []byte(content), 0644))

	cfg, err := config.Load(env.configPath)
	require.NoError(t, err)
	env.cfg = cfg
	return env
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBatchCommand(t *testing.T) {
	env := newTestEnv(t)
	input := filepath.Join(env.dir, "input.txt")
	require.NoError(t, os.WriteFile(input, []byte("Dune by Frank Herbert, paperback\n\nsomething unreadable\n"), 0644))

	out, err := env.run(t, "batch", input, "--items")
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "malformed_details")
	assert.Contains(t, out, "Notes written to")

	headers, rows, err := catalog.Read(env.cfg.CatalogFile)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Contains(t, headers, "Publisher")
	assert.Equal(t, "001", rows[0][catalog.ColumnIndexNumber])
	assert.Equal(t, "Dune", rows[0]["Title"])
	assert.Equal(t, "paperback", rows[0]["Format"])
	assert.Equal(t, catalog.NoProblems, rows[0][catalog.ColumnErrorNotes])

	notesData, err := os.ReadFile(env.cfg.NotesFile)
	require.NoError(t, err)
	assert.Contains(t, string(notesData), "Book 2:\nMalformed details format\nOriginal Entry: something unreadable\n")

	reports, err := os.ReadDir(env.cfg.ReportsDir)
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	store, err := history.Open(env.cfg.HistoryDB)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Total)
	assert.Equal(t, 1, runs[0].Saved)
}

func TestBatchCommandEmptyFile(t *testing.T) {
	env := newTestEnv(t)
	input := filepath.Join(env.dir, "empty.txt")
	require.NoError(t, os.WriteFile(input, []byte("\n  \n"), 0644))

	_, err := env.run(t, "batch", input)
	assert.ErrorIs(t, err, pipeline.ErrNoDescriptions)

	_, statErr := os.Stat(env.cfg.NotesFile)
	assert.True(t, os.IsNotExist(statErr), "notes file must not be reset for an empty batch")
}

func TestAddCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "add", "Dune", "by", "Frank", "Herbert")
	require.NoError(t, err)
	assert.Contains(t, out, "Book details saved to")
	assert.Contains(t, out, "9780441172719")

	_, rows, err := catalog.Read(env.cfg.CatalogFile)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	_, hasIndex := rows[0][catalog.ColumnIndexNumber]
	assert.False(t, hasIndex, "single entries carry no index number")

	_, err = env.run(t, "add", "nothing useful")
	assert.ErrorContains(t, err, "Malformed details format")
}

func TestExportCommand(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, catalog.NewWriter(env.cfg.CatalogFile).Append(catalog.Record{"Title": "Dune", "Author": "Frank Herbert"}))

	out, err := env.run(t, "export", filepath.Join(env.dir, "catalog.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 rows")

	out, err = env.run(t, "export", "--format", "parquet", filepath.Join(env.dir, "catalog.out"))
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 rows")

	_, err = env.run(t, "export", filepath.Join(env.dir, "catalog.json"))
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestHistoryCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No batch runs recorded yet.")

	store, err := history.Open(env.cfg.HistoryDB)
	require.NoError(t, err)
	started := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, store.Record(context.Background(), pipeline.Summary{
		RunID:      "run-42",
		Source:     "input.txt",
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
		Results: []pipeline.Result{
			{Index: 1, Description: "dune", Outcome: pipeline.OutcomeOK, Saved: true},
		},
	}))
	require.NoError(t, store.Close())

	out, err = env.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "run-42")
	assert.Contains(t, out, "input.txt")

	out, err = env.run(t, "history", "--run", "run-42")
	require.NoError(t, err)
	assert.Contains(t, out, "dune")

	_, err = env.run(t, "history", "--run", "missing")
	assert.ErrorContains(t, err, "not found")
}

func TestApplyFlags(t *testing.T) {
	t.Setenv("OLLAMA_MODEL", "")

	var flags rootFlags
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&flags.provider, "provider", "", "")
	cmd.Flags().StringVar(&flags.model, "model", "", "")
	cmd.Flags().StringVar(&flags.catalog, "catalog", "", "")
	cmd.Flags().StringVar(&flags.notes, "notes", "", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--provider", "ollama", "--catalog", "books.csv"}))

	cfg := config.Default()
	cfg.LLM.Model = "gpt-4o-mini"
	applyFlags(cmd, &cfg, flags)

	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, config.DefaultModel("ollama"), cfg.LLM.Model)
	assert.Equal(t, "books.csv", cfg.CatalogFile)
	assert.Equal(t, config.Default().NotesFile, cfg.NotesFile)
}

func TestRenderTable(t *testing.T) {
	assert.Empty(t, renderTable(nil, nil, nil, false))

	out := renderTable([]string{"Outcome", "Count"}, [][]string{{"ok", "3"}, {"short"}}, []columnAlignment{alignLeft, alignRight}, false)
	assert.Contains(t, strings.ToLower(out), "outcome")
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "short")
}
