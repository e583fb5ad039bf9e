package inpaint

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"
)

// Defaults for the polling guards. Tests override the orchestrator fields
// directly to speed up polling-based tests.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultJobTimeout   = 120 * time.Second
	DefaultErrorBudget  = 5
)

// Failure reasons surfaced to the reviewer. The timeout message is
// distinct from a service failure so the user can tell "try again" from
// "wait longer".
const (
	ReasonTimedOut     = "timed out"
	ReasonNetworkError = "network error"
)

// SubmissionError is a terminal failure to create the job. There is no
// automatic retry at this layer; re-invoking Submit is a distinct user
// action starting an entirely new job.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Orchestrator submits inpaint jobs and autonomously polls them to a
// terminal state
type Orchestrator struct {
	client *Client

	PollInterval time.Duration
	JobTimeout   time.Duration
	ErrorBudget  int

	now func() time.Time // injectable for virtual-clock tests
}

// NewOrchestrator creates an orchestrator with the default guards
func NewOrchestrator(client *Client) *Orchestrator {
	return &Orchestrator{
		client:       client,
		PollInterval: DefaultPollInterval,
		JobTimeout:   DefaultJobTimeout,
		ErrorBudget:  DefaultErrorBudget,
		now:          time.Now,
	}
}

// JobHandle tracks one submitted job. Updates delivers status changes and
// is closed after the terminal update; Abort stops polling immediately.
type JobHandle struct {
	JobID       string
	AssetID     string
	SubmittedAt time.Time

	updates   chan StatusUpdate
	abort     chan struct{}
	abortOnce sync.Once
}

// Updates returns the status notification stream. Exactly one terminal
// update is delivered before the channel closes (none after Abort).
func (h *JobHandle) Updates() <-chan StatusUpdate {
	return h.updates
}

// Abort stops polling without a terminal update. Safe to call multiple
// times and after the job already finished.
func (h *JobHandle) Abort() {
	h.abortOnce.Do(func() { close(h.abort) })
}

// Submit encodes the mask, creates a job on the editing service, and
// starts the polling loop. The returned handle owns the poller; the caller
// must Abort it (or cancel ctx) if it stops listening before a terminal
// update.
func (o *Orchestrator) Submit(ctx context.Context, mask *image.Gray, sourceRef, assetID string) (*JobHandle, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, mask); err != nil {
		return nil, &SubmissionError{Err: fmt.Errorf("encode mask: %w", err)}
	}

	jobID, err := o.client.SubmitJob(ctx, SubmitRequest{
		AssetID:   assetID,
		SourceRef: sourceRef,
		MaskPNG:   buf.Bytes(),
	})
	if err != nil {
		return nil, &SubmissionError{Err: err}
	}

	h := &JobHandle{
		JobID:       jobID,
		AssetID:     assetID,
		SubmittedAt: o.now(),
		updates:     make(chan StatusUpdate, 8),
		abort:       make(chan struct{}),
	}

	go o.poll(ctx, h)
	return h, nil
}

// poll drives the job to a terminal state. Two independent guards run
// alongside the service's own verdict: a wall-clock ceiling on total
// elapsed time, and a budget of consecutive transport errors that any
// successful response resets.
func (o *Orchestrator) poll(ctx context.Context, h *JobHandle) {
	defer close(h.updates)

	h.updates <- StatusUpdate{Status: JobStatusProcessing}

	ticker := time.NewTicker(o.PollInterval)
	defer ticker.Stop()

	consecutiveErrs := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.abort:
			return
		case <-ticker.C:
		}

		if o.now().Sub(h.SubmittedAt) >= o.JobTimeout {
			h.updates <- StatusUpdate{Status: JobStatusFailed, Reason: ReasonTimedOut}
			return
		}

		state, err := o.client.GetJob(ctx, h.JobID)
		if err != nil {
			consecutiveErrs++
			if consecutiveErrs >= o.ErrorBudget {
				h.updates <- StatusUpdate{Status: JobStatusFailed, Reason: ReasonNetworkError}
				return
			}
			continue
		}
		consecutiveErrs = 0

		switch state.Status {
		case JobStatusCompleted:
			h.updates <- StatusUpdate{Status: JobStatusCompleted, ResultRef: state.OutputRef}
			return
		case JobStatusFailed:
			// Service-reported reason passes through verbatim
			h.updates <- StatusUpdate{Status: JobStatusFailed, Reason: state.ErrorMessage}
			return
		}
	}
}
