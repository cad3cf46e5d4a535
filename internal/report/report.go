// Package report saves a YAML summary of every batch run.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mtthwcarey/catalogger/internal/pipeline"
)

const timestampLayout = "2006-01-02_15-04-05"

// RunConfig describes the settings a run used.
type RunConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	CatalogFile string `yaml:"catalogfile"`
	NotesFile   string `yaml:"notesfile"`
}

// RunInfo is the header of a report.
type RunInfo struct {
	RunID      string         `yaml:"runid"`
	Source     string         `yaml:"source"`
	StartedAt  string         `yaml:"startedat"`
	FinishedAt string         `yaml:"finishedat"`
	Total      int            `yaml:"total"`
	Saved      int            `yaml:"saved"`
	Noted      int            `yaml:"noted"`
	Outcomes   map[string]int `yaml:"outcomes"`
}

// ItemResult is one entry of a report.
type ItemResult struct {
	Index       int    `yaml:"index"`
	Description string `yaml:"description"`
	Outcome     string `yaml:"outcome"`
	Notes       string `yaml:"notes"`
	Saved       bool   `yaml:"saved"`
	Title       string `yaml:"title,omitempty"`
	Author      string `yaml:"author,omitempty"`
	ISBN        string `yaml:"isbn,omitempty"`
}

// RunReport is the complete document written per run.
type RunReport struct {
	Config  RunConfig    `yaml:"config"`
	Run     RunInfo      `yaml:"run"`
	Results []ItemResult `yaml:"results"`
}

// Writer saves run reports under a directory.
type Writer struct {
	dir    string
	config RunConfig
}

// NewWriter returns a report writer for dir.
func NewWriter(dir string, cfg RunConfig) *Writer {
	return &Writer{dir: dir, config: cfg}
}

// Record implements pipeline.Recorder.
func (w *Writer) Record(ctx context.Context, summary pipeline.Summary) error {
	_, err := w.Save(summary)
	return err
}

// Save writes the report for summary and returns its path.
func (w *Writer) Save(summary pipeline.Summary) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	data, err := yaml.Marshal(Build(w.config, summary))
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	filename := filepath.Join(w.dir, fmt.Sprintf("%s-%s.yaml", summary.StartedAt.Format(timestampLayout), summary.RunID))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}
	return filename, nil
}

// Build converts a summary into a report document.
func Build(cfg RunConfig, summary pipeline.Summary) *RunReport {
	outcomes := make(map[string]int)
	for outcome, n := range summary.Counts() {
		outcomes[string(outcome)] = n
	}

	report := &RunReport{
		Config: cfg,
		Run: RunInfo{
			RunID:      summary.RunID,
			Source:     summary.Source,
			StartedAt:  summary.StartedAt.Format(pipeline.EntryTimeLayout),
			FinishedAt: summary.FinishedAt.Format(pipeline.EntryTimeLayout),
			Total:      len(summary.Results),
			Saved:      summary.Saved(),
			Noted:      summary.Noted(),
			Outcomes:   outcomes,
		},
		Results: make([]ItemResult, 0, len(summary.Results)),
	}

	for _, r := range summary.Results {
		item := ItemResult{
			Index:       r.Index,
			Description: r.Description,
			Outcome:     string(r.Outcome),
			Notes:       r.Notes,
			Saved:       r.Saved,
		}
		if r.Record != nil {
			item.Title = r.Record["Title"]
			item.Author = r.Record["Author"]
			item.ISBN = r.Record["ISBN"]
		}
		report.Results = append(report.Results, item)
	}

	sort.SliceStable(report.Results, func(i, j int) bool {
		return report.Results[i].Index < report.Results[j].Index
	})
	return report
}
