package handlers

import (
	"net/http"
	"strings"
)

func (h *Handler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.runStore.List())
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleRunDetail(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/api/runs/")

	run, ok := h.getRunOrError(w, runID)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, run)
	case "DELETE":
		h.runStore.Delete(runID)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
