package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mtthwcarey/catalogger/internal/books"
	"github.com/mtthwcarey/catalogger/internal/catalog"
	"github.com/mtthwcarey/catalogger/internal/config"
	"github.com/mtthwcarey/catalogger/internal/extractor"
	"github.com/mtthwcarey/catalogger/internal/history"
	"github.com/mtthwcarey/catalogger/internal/notes"
	"github.com/mtthwcarey/catalogger/internal/pipeline"
	"github.com/mtthwcarey/catalogger/internal/report"
)

// app carries the loaded configuration and the resources opened for one
// command invocation.
type app struct {
	cfg     config.Config
	logFile *os.File
	history *history.Store
}

func (a *app) close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			slog.Error("Unable to close history database", "err", err)
		}
		a.history = nil
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}

func (a *app) newPipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	ex, err := extractor.NewFromConfig(a.cfg.LLM)
	if err != nil {
		return nil, err
	}
	lookup, err := books.NewClient(ctx, a.cfg.Books)
	if err != nil {
		return nil, err
	}
	slog.Debug("Pipeline configured",
		"provider", a.cfg.LLM.Provider,
		"model", a.cfg.LLM.Model,
		"catalog", a.cfg.CatalogFile)
	return pipeline.New(ex, lookup, catalog.NewWriter(a.cfg.CatalogFile)), nil
}

func (a *app) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	p, err := a.newPipeline(ctx)
	if err != nil {
		return nil, err
	}
	return a.runnerFor(p), nil
}

// runnerFor wraps p in a batch runner that reports to the run report
// directory and, when available, the history database.
func (a *app) runnerFor(p *pipeline.Pipeline) *pipeline.Runner {
	var recorders []pipeline.Recorder
	if a.cfg.ReportsDir != "" {
		recorders = append(recorders, report.NewWriter(a.cfg.ReportsDir, report.RunConfig{
			Provider:    a.cfg.LLM.Provider,
			Model:       a.cfg.LLM.Model,
			CatalogFile: a.cfg.CatalogFile,
			NotesFile:   a.cfg.NotesFile,
		}))
	}
	if store, err := a.openHistory(); err != nil {
		slog.Warn("Run history disabled", "err", err)
	} else if store != nil {
		recorders = append(recorders, store)
	}

	return pipeline.NewRunner(p, notes.New(a.cfg.NotesFile), recorders...)
}

// openHistory returns nil without error when no history database is configured.
func (a *app) openHistory() (*history.Store, error) {
	if a.history != nil {
		return a.history, nil
	}
	if a.cfg.HistoryDB == "" {
		return nil, nil
	}
	store, err := history.Open(a.cfg.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	a.history = store
	return store, nil
}
