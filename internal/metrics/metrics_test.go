package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestWorkflowStatusIsOneHot(t *testing.T) {
	m := New(prometheus.NewRegistry(), Config{})

	m.WorkflowStatus("in_progress")
	if v := testutil.ToFloat64(m.workflowStatus.WithLabelValues("in_progress")); v != 1 {
		t.Fatalf("in_progress = %v", v)
	}
	m.WorkflowStatus("completed")
	if v := testutil.ToFloat64(m.workflowStatus.WithLabelValues("in_progress")); v != 0 {
		t.Fatalf("in_progress after completion = %v", v)
	}
	m.WorkflowStatus("waiting")
	if v := testutil.ToFloat64(m.workflowStatus.WithLabelValues("unknown")); v != 1 {
		t.Fatalf("unknown = %v", v)
	}
}

func TestCountersAndNilReceiver(t *testing.T) {
	m := New(prometheus.NewRegistry(), Config{ServiceName: "test"})
	m.Launch("started")
	m.Launch("started")
	m.ObserveRequest("/status", 200, time.Millisecond)
	m.ExtractRecords(3)

	if v := testutil.ToFloat64(m.launches.WithLabelValues("started")); v != 2 {
		t.Fatalf("launches = %v", v)
	}
	if v := testutil.ToFloat64(m.httpRequests.WithLabelValues("/status", "200")); v != 1 {
		t.Fatalf("requests = %v", v)
	}
	if v := testutil.ToFloat64(m.extractRecords); v != 3 {
		t.Fatalf("records = %v", v)
	}

	var none *Metrics
	none.Launch("started")
	none.ExtractRecords(3)
	none.WorkflowStatus("queued")
}
