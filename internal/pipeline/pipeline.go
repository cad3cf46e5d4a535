// Package pipeline runs descriptions through extraction, parsing, metadata
// lookup and the catalog, one item at a time.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mtthwcarey/catalogger/internal/books"
	"github.com/mtthwcarey/catalogger/internal/catalog"
	"github.com/mtthwcarey/catalogger/internal/details"
	"github.com/mtthwcarey/catalogger/internal/extractor"
)

// Outcome classifies how one description was handled.
type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeEmpty            Outcome = "empty_description"
	OutcomeExtractionFailed Outcome = "extraction_failed"
	OutcomeMalformed        Outcome = "malformed_details"
	OutcomeMissingFields    Outcome = "missing_fields"
	OutcomeMetadataNotFound Outcome = "metadata_not_found"
	OutcomeFailed           Outcome = "failed"
)

// Notes text recorded for each outcome.
const (
	NoteEmpty            = "Empty description"
	NoteExtractionFailed = "Could not extract book details"
	NoteMalformed        = "Malformed details format"
	NoteMissingFields    = "Missing title or author in parsed details"
	NoteMetadataNotFound = "Metadata not found"
)

// EntryTimeLayout formats the Entry Time column.
const EntryTimeLayout = "2006-01-02 15:04:05"

// Result is the final, immutable outcome for one description.
type Result struct {
	Index       int
	Description string
	Outcome     Outcome
	Notes       string
	Saved       bool
	Record      catalog.Record
}

// NeedsNote reports whether the result belongs in the notes file.
func (r Result) NeedsNote() bool {
	return r.Outcome != OutcomeOK
}

// Appender stores a catalog record.
type Appender interface {
	Append(record catalog.Record) error
}

// Pipeline processes single descriptions.
type Pipeline struct {
	extractor extractor.Extractor
	lookup    books.Lookup
	catalog   Appender
	now       func() time.Time
}

// New returns a pipeline wired to the given stages.
func New(ex extractor.Extractor, lookup books.Lookup, cat Appender) *Pipeline {
	return &Pipeline{
		extractor: ex,
		lookup:    lookup,
		catalog:   cat,
		now:       time.Now,
	}
}

// ProcessOne runs description through every stage. index is the 1-based
// position in a batch; zero means the record carries no Index Number.
func (p *Pipeline) ProcessOne(ctx context.Context, index int, description string) (result Result) {
	description = strings.TrimSpace(description)
	result = Result{Index: index, Description: description}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Unexpected failure processing book", "index", index, "description", Preview(description), "panic", r)
			result.Outcome = OutcomeFailed
			result.Notes = fmt.Sprintf("Unexpected error: %v", r)
			result.Saved = false
		}
	}()

	slog.Info("Processing book", "index", index, "description", Preview(description))

	if description == "" {
		return result.classify(OutcomeEmpty, NoteEmpty)
	}

	text, ok := p.extractor.Extract(ctx, description)
	if !ok {
		return result.classify(OutcomeExtractionFailed, NoteExtractionFailed)
	}
	if !details.HasRequiredMarkers(text) {
		return result.classify(OutcomeMalformed, NoteMalformed)
	}

	parsed := details.Parse(text)
	if !parsed.Complete() {
		return result.classify(OutcomeMissingFields, NoteMissingFields)
	}

	record := make(catalog.Record, len(parsed)+12)
	for k, v := range parsed {
		record[k] = v
	}

	outcome, note := OutcomeOK, catalog.NoProblems
	if md, found := p.lookup.Lookup(ctx, parsed.Title(), parsed.Author()); found {
		for k, v := range md.Fields() {
			record[k] = v
		}
	} else {
		outcome, note = OutcomeMetadataNotFound, NoteMetadataNotFound
	}

	if index > 0 {
		record[catalog.ColumnIndexNumber] = catalog.PadIndex(strconv.Itoa(index))
	}
	record[catalog.ColumnEntryTime] = p.now().Format(EntryTimeLayout)
	record[catalog.ColumnErrorNotes] = note

	if err := p.catalog.Append(record); err != nil {
		slog.Error("Error saving to catalog", "index", index, "description", Preview(description), "err", err)
		return result.classify(OutcomeFailed, fmt.Sprintf("Error saving to CSV: %v", err))
	}

	result.Record = record
	result.Saved = true
	slog.Info("Book saved", "index", index, "outcome", outcome)
	return result.classify(outcome, note)
}

func (r Result) classify(outcome Outcome, note string) Result {
	r.Outcome = outcome
	r.Notes = note
	if outcome != OutcomeOK {
		slog.Warn("Book needs review", "index", r.Index, "reason", note, "description", Preview(r.Description))
	}
	return r
}

// Preview returns at most the first 50 runes of s.
func Preview(s string) string {
	const limit = 50
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
