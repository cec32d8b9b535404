package worker

import (
	"context"
	"log/slog"
	"time"

	"zwrot/internal/metrics"
	"zwrot/internal/model"
	"zwrot/internal/service"
)

// WorkflowWatcher polls the refresh workflow and logs status transitions.
type WorkflowWatcher struct {
	runner   service.WorkflowRunner
	metrics  *metrics.Metrics
	interval time.Duration
	log      *slog.Logger

	last model.WorkflowRun
}

func NewWorkflowWatcher(runner service.WorkflowRunner, m *metrics.Metrics, interval time.Duration) *WorkflowWatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &WorkflowWatcher{
		runner:   runner,
		metrics:  m,
		interval: interval,
		log:      slog.Default(),
	}
}

func (w *WorkflowWatcher) Start(ctx context.Context) {
	w.log.Info("starting workflow watcher", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("workflow watcher stopped")
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *WorkflowWatcher) poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()

	run, err := w.runner.LastRun(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Warn("workflow status check failed", "error", err)
		}
		return
	}
	current := model.WorkflowRun{Status: "unknown"}
	if run != nil {
		current = *run
	}
	w.metrics.WorkflowStatus(current.Status)

	if current != w.last {
		w.log.Info("workflow status changed",
			"status", current.Status,
			"conclusion", current.Conclusion,
			"previous", w.last.Status,
		)
		w.last = current
	}
}
