package handler

import (
	"context"
	"log/slog"
	"net/http"

	"zwrot/internal/model"
)

type SubmissionLister interface {
	Enabled() bool
	List(ctx context.Context) ([]model.Submission, error)
}

func ListSubmissionsHandler(s SubmissionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s == nil || !s.Enabled() {
			writeError(w, http.StatusNotFound, "Rejestr wysyłek nie jest skonfigurowany")
			return
		}
		subs, err := s.List(r.Context())
		if err != nil {
			slog.Error("failed to list submissions", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": statusOK, "submissions": subs})
	}
}
