package handler

import (
	"log/slog"
	"net/http"

	"zwrot/internal/model"
	"zwrot/internal/service"
)

func TriggerRefreshHandler(runner service.WorkflowRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := runner.Trigger(r.Context()); err != nil {
			slog.Error("workflow trigger failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "triggered", "message": "Workflow uruchomiony"})
	}
}

func WorkflowStatusHandler(runner service.WorkflowRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := runner.LastRun(r.Context())
		if err != nil {
			slog.Error("workflow status failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if run == nil {
			run = &model.WorkflowRun{Status: "unknown"}
		}
		writeJSON(w, http.StatusOK, run)
	}
}
