package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"zwrot/internal/metrics"
	"zwrot/internal/model"
)

type scriptedRunner struct {
	mu    sync.Mutex
	runs  []*model.WorkflowRun
	err   error
	calls int
}

func (s *scriptedRunner) Trigger(context.Context) error { return nil }

func (s *scriptedRunner) LastRun(context.Context) (*model.WorkflowRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.runs) == 0 {
		return nil, nil
	}
	run := s.runs[0]
	if len(s.runs) > 1 {
		s.runs = s.runs[1:]
	}
	return run, nil
}

func TestWatcherTracksTransitions(t *testing.T) {
	runner := &scriptedRunner{runs: []*model.WorkflowRun{
		{Status: "queued"},
		{Status: "in_progress"},
		{Status: "completed", Conclusion: "success"},
	}}
	w := NewWorkflowWatcher(runner, metrics.New(prometheus.NewRegistry(), metrics.Config{}), time.Second)

	ctx := context.Background()
	w.poll(ctx)
	if w.last.Status != "queued" {
		t.Fatalf("last = %+v", w.last)
	}
	w.poll(ctx)
	w.poll(ctx)
	if w.last != (model.WorkflowRun{Status: "completed", Conclusion: "success"}) {
		t.Fatalf("last = %+v", w.last)
	}
}

func TestWatcherKeepsStateOnError(t *testing.T) {
	runner := &scriptedRunner{runs: []*model.WorkflowRun{{Status: "in_progress"}}}
	w := NewWorkflowWatcher(runner, nil, time.Second)
	w.poll(context.Background())

	runner.err = errors.New("gh CLI not found")
	w.poll(context.Background())
	if w.last.Status != "in_progress" {
		t.Fatalf("last = %+v", w.last)
	}
}

func TestWatcherStopsOnCancel(t *testing.T) {
	runner := &scriptedRunner{}
	w := NewWorkflowWatcher(runner, nil, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
	runner.mu.Lock()
	defer runner.mu.Unlock()
	if runner.calls == 0 {
		t.Fatal("watcher never polled")
	}
	if w.last.Status != "unknown" {
		t.Fatalf("last = %+v", w.last)
	}
}
