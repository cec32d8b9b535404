package model

// WorkflowRun is the last run of the remote refresh workflow as reported by GitHub.
type WorkflowRun struct {
	Status     string `json:"status"`               // queued, in_progress, completed
	Conclusion string `json:"conclusion,omitempty"` // success, failure, cancelled, ...
}
