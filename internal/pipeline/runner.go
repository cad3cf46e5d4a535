package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNoDescriptions is returned when a batch file has no usable lines.
var ErrNoDescriptions = errors.New("no valid descriptions found")

// NotesWriter records problematic entries for manual review.
type NotesWriter interface {
	Reset() error
	Append(index int, note, description string) error
}

// Recorder receives the summary of every finished batch run.
type Recorder interface {
	Record(ctx context.Context, summary Summary) error
}

// Summary describes one batch run.
type Summary struct {
	RunID      string
	Source     string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []Result
}

// Counts tallies results by outcome.
func (s Summary) Counts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, r := range s.Results {
		counts[r.Outcome]++
	}
	return counts
}

// Saved returns the number of results written to the catalog.
func (s Summary) Saved() int {
	n := 0
	for _, r := range s.Results {
		if r.Saved {
			n++
		}
	}
	return n
}

// Noted returns the number of results written to the notes file.
func (s Summary) Noted() int {
	n := 0
	for _, r := range s.Results {
		if r.NeedsNote() {
			n++
		}
	}
	return n
}

// Runner processes a file of descriptions.
type Runner struct {
	pipeline  *Pipeline
	notes     NotesWriter
	recorders []Recorder
}

// NewRunner returns a batch runner. Recorders are notified after each run;
// their failures are logged and do not fail the run.
func NewRunner(p *Pipeline, notes NotesWriter, recorders ...Recorder) *Runner {
	return &Runner{
		pipeline:  p,
		notes:     notes,
		recorders: recorders,
	}
}

// Run processes every description in path in file order. A failing item
// never stops the run; only cancellation of ctx does.
func (r *Runner) Run(ctx context.Context, path string) (Summary, error) {
	summary := Summary{
		RunID:     uuid.NewString(),
		Source:    path,
		StartedAt: time.Now(),
	}

	descriptions, err := LoadDescriptions(path)
	if err != nil {
		slog.Error("Unable to load descriptions", "path", path, "err", err)
		return summary, err
	}
	slog.Info("Loaded descriptions", "path", path, "count", len(descriptions))

	if len(descriptions) == 0 {
		slog.Warn("No valid descriptions found in file", "path", path)
		return summary, ErrNoDescriptions
	}

	if err := r.notes.Reset(); err != nil {
		slog.Error("Unable to set up the notes file", "err", err)
	}

	var runErr error
	for i, description := range descriptions {
		if err := ctx.Err(); err != nil {
			slog.Warn("Batch processing interrupted", "processed", i, "total", len(descriptions))
			runErr = err
			break
		}

		index := i + 1
		slog.Info("Processing description", "progress", fmt.Sprintf("%d/%d", index, len(descriptions)))

		result := r.pipeline.ProcessOne(ctx, index, description)
		if result.NeedsNote() {
			if err := r.notes.Append(index, result.Notes, result.Description); err != nil {
				slog.Error("Failed to write to notes file", "book", index, "err", err)
			}
		}
		summary.Results = append(summary.Results, result)
	}

	summary.FinishedAt = time.Now()
	if runErr == nil {
		slog.Info("Batch processing completed",
			"run_id", summary.RunID,
			"total", len(summary.Results),
			"saved", summary.Saved(),
			"noted", summary.Noted())
	}

	for _, rec := range r.recorders {
		if err := rec.Record(context.WithoutCancel(ctx), summary); err != nil {
			slog.Error("Unable to record batch run", "run_id", summary.RunID, "err", err)
		}
	}

	return summary, runErr
}

// LoadDescriptions returns the trimmed, non-blank lines of path.
func LoadDescriptions(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open descriptions file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)

	var descriptions []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		descriptions = append(descriptions, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading descriptions file: %w", err)
	}

	return descriptions, nil
}
