package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mtthwcarey/catalogger/internal/catalog"
	"github.com/mtthwcarey/catalogger/internal/pipeline"
)

func testSummary() pipeline.Summary {
	started := time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC)
	return pipeline.Summary{
		RunID:      "run-1",
		Source:     "data/input.txt",
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
		Results: []pipeline.Result{
			{
				Index:       1,
				Description: "dune",
				Outcome:     pipeline.OutcomeOK,
				Notes:       catalog.NoProblems,
				Saved:       true,
				Record:      catalog.Record{"Title": "Dune", "Author": "Frank Herbert", "ISBN": "9780441172719"},
			},
			{
				Index:       2,
				Description: "garbled",
				Outcome:     pipeline.OutcomeExtractionFailed,
				Notes:       pipeline.NoteExtractionFailed,
			},
		},
	}
}

func TestBuild(t *testing.T) {
	r := Build(RunConfig{Provider: "openai", Model: "gpt-4o-mini"}, testSummary())

	if r.Run.Total != 2 || r.Run.Saved != 1 || r.Run.Noted != 1 {
		t.Errorf("unexpected totals: %+v", r.Run)
	}
	if r.Run.Outcomes["ok"] != 1 || r.Run.Outcomes["extraction_failed"] != 1 {
		t.Errorf("unexpected outcome counts: %v", r.Run.Outcomes)
	}
	if r.Results[0].ISBN != "9780441172719" {
		t.Errorf("Expected ISBN to be carried over, got %q", r.Results[0].ISBN)
	}
	if r.Results[1].Title != "" {
		t.Errorf("Expected no title for failed item, got %q", r.Results[1].Title)
	}
	if r.Run.StartedAt != "2024-05-04 10:00:00" {
		t.Errorf("unexpected start time %q", r.Run.StartedAt)
	}
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")
	w := NewWriter(dir, RunConfig{Provider: "ollama"})

	path, err := w.Save(testSummary())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasSuffix(path, "2024-05-04_10-00-00-run-1.yaml") {
		t.Errorf("unexpected report path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	var got RunReport
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if got.Config.Provider != "ollama" {
		t.Errorf("Expected provider ollama, got %s", got.Config.Provider)
	}
	if len(got.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(got.Results))
	}
	if got.Results[1].Notes != pipeline.NoteExtractionFailed {
		t.Errorf("unexpected notes %q", got.Results[1].Notes)
	}
}
