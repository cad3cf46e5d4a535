package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/mtthwcarey/catalogger/internal/models"
	"github.com/mtthwcarey/catalogger/internal/pipeline"
	"github.com/mtthwcarey/catalogger/internal/storage"
)

// BatchRunner processes an uploaded batch file.
type BatchRunner interface {
	Run(ctx context.Context, path string) (pipeline.Summary, error)
}

type Handler struct {
	runStore   *storage.RunStore
	runner     BatchRunner
	uploadsDir string

	// batchMu allows one batch at a time.
	batchMu sync.Mutex
}

func New(runner BatchRunner, uploadsDir string) *Handler {
	return &Handler{
		runStore:   storage.New(),
		runner:     runner,
		uploadsDir: uploadsDir,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, data, http.StatusOK)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Run helpers
func (h *Handler) getRunOrError(w http.ResponseWriter, runID string) (*models.RunSession, bool) {
	run, exists := h.runStore.Get(runID)
	if !exists {
		h.writeError(w, "Run not found", http.StatusNotFound)
		return nil, false
	}
	return run, true
}

// File operation helpers
func (h *Handler) ensureUploadsDir() error {
	return os.MkdirAll(h.uploadsDir, 0755)
}

func newRunSession(filename string, summary pipeline.Summary, runErr error) *models.RunSession {
	run := &models.RunSession{
		ID:         summary.RunID,
		Filename:   filename,
		Status:     models.RunCompleted,
		Total:      len(summary.Results),
		Saved:      summary.Saved(),
		Noted:      summary.Noted(),
		Outcomes:   make(map[string]int),
		Items:      make([]models.RunItem, 0, len(summary.Results)),
		CreatedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
	}
	if runErr != nil {
		run.Status = models.RunFailed
		run.Error = runErr.Error()
	}
	for outcome, n := range summary.Counts() {
		run.Outcomes[string(outcome)] = n
	}
	for _, r := range summary.Results {
		run.Items = append(run.Items, models.RunItem{
			Index:       r.Index,
			Description: r.Description,
			Outcome:     string(r.Outcome),
			Notes:       r.Notes,
			Saved:       r.Saved,
		})
	}
	return run
}
