package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"zwrot/internal/metrics"
	"zwrot/internal/service"
)

type Launcher interface {
	Launch() (string, error)
	Running() bool
}

type launchResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

func LaunchHandler(l Launcher, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID, err := l.Launch()
		switch {
		case err == nil:
			m.Launch("started")
			writeJSON(w, http.StatusOK, launchResponse{Status: "started", Message: "LuxMed uruchomiony", RunID: runID})
		case errors.Is(err, service.ErrAlreadyRunning):
			m.Launch("already_running")
			writeJSON(w, http.StatusOK, launchResponse{Status: "already_running", Message: "LuxMed już działa", RunID: runID})
		case errors.Is(err, service.ErrExecutableMissing):
			m.Launch("error")
			writeError(w, http.StatusNotFound, "Nie znaleziono programu do wypełniania formularza")
		default:
			m.Launch("error")
			slog.Error("launch failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

type statusResponse struct {
	LuxmedRunning bool   `json:"luxmed_running"`
	Server        string `json:"server"`
}

func StatusHandler(l Launcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, statusResponse{LuxmedRunning: l.Running(), Server: statusOK})
	}
}
