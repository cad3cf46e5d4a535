package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mtthwcarey/catalogger/internal/models"
	"github.com/mtthwcarey/catalogger/internal/pipeline"
)

const maxUploadSize = 10 * 1024 * 1024

// HandleUpload runs the batch processor on an uploaded .txt file.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("files")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".txt") {
		h.writeError(w, "Please select a .txt batch file", http.StatusBadRequest)
		return
	}

	if err := h.ensureUploadsDir(); err != nil {
		h.writeError(w, "Failed to create uploads directory: "+err.Error(), http.StatusInternalServerError)
		return
	}

	fileData, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if len(fileData) >= maxUploadSize {
		h.writeError(w, "File too large (max 10MB)", http.StatusBadRequest)
		return
	}

	path, err := h.saveUpload(fileData)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			slog.Warn("Unable to remove uploaded batch file", "path", path, "err", err)
		}
	}()

	h.batchMu.Lock()
	summary, runErr := h.runner.Run(r.Context(), path)
	h.batchMu.Unlock()

	run := newRunSession(header.Filename, summary, runErr)
	h.runStore.Set(run.ID, run)

	if runErr != nil {
		code := http.StatusInternalServerError
		message := "Batch processing failed: " + runErr.Error()
		if errors.Is(runErr, pipeline.ErrNoDescriptions) {
			code = http.StatusUnprocessableEntity
			message = "No valid descriptions found in " + header.Filename
		}
		slog.Error("Batch upload failed", "filename", header.Filename, "err", runErr)
		h.writeJSONStatus(w, uploadResponse(run, message), code)
		return
	}

	slog.Info("Batch upload processed", "run_id", run.ID, "filename", header.Filename, "total", run.Total)
	h.writeJSON(w, uploadResponse(run, fmt.Sprintf(
		"Batch processing completed: %d of %d descriptions saved, %d noted for review.",
		run.Saved, run.Total, run.Noted)))
}

func (h *Handler) saveUpload(fileData []byte) (string, error) {
	path := filepath.Join(h.uploadsDir, uuid.NewString()+".txt")
	if err := os.WriteFile(path, fileData, 0644); err != nil {
		return "", fmt.Errorf("failed to save batch file: %w", err)
	}
	slog.Info("Batch file saved", "path", path, "bytes", len(fileData))
	return path, nil
}

func uploadResponse(run *models.RunSession, message string) map[string]any {
	return map[string]any{
		"run_id":  run.ID,
		"status":  run.Status,
		"message": message,
		"total":   run.Total,
		"saved":   run.Saved,
		"noted":   run.Noted,
	}
}
