package inpaint

import "time"

type JobStatus string

const (
	JobStatusSubmitting JobStatus = "submitting"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further automatic transition occurs
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is one unit of asynchronous object-removal work. The identifier is
// assigned by the editing service; a failed job is never resurrected — a
// retry is a fresh Submit.
type Job struct {
	ID          string    `json:"id"`
	AssetID     string    `json:"asset_id"`
	Status      JobStatus `json:"status"`
	ResultRef   string    `json:"result_ref,omitempty"`
	Error       string    `json:"error,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// StatusUpdate is one notification from the orchestrator to its caller
type StatusUpdate struct {
	Status    JobStatus
	ResultRef string // set when Status == completed
	Reason    string // set when Status == failed
}
