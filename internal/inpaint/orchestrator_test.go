package inpaint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeService is a scriptable editing-service endpoint. Each poll consumes
// the next scripted response; the last one repeats.
type fakeService struct {
	mu        sync.Mutex
	submits   int
	polls     int
	responses []pollResponse
}

type pollResponse struct {
	fail  bool // respond 500 (transport-equivalent error)
	state JobState
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/inpaint", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.submits++
		f.mu.Unlock()

		var req SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"job_id": "job-%s"}`, req.AssetID)
	})
	mux.HandleFunc("GET /v1/inpaint/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		idx := f.polls
		if idx >= len(f.responses) {
			idx = len(f.responses) - 1
		}
		resp := f.responses[idx]
		f.polls++
		f.mu.Unlock()

		if resp.fail {
			http.Error(w, "bad gateway", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(resp.state)
	})
	return mux
}

func (f *fakeService) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func newTestOrchestrator(t *testing.T, svc *fakeService) *Orchestrator {
	t.Helper()
	srv := httptest.NewServer(svc.handler())
	t.Cleanup(srv.Close)

	o := NewOrchestrator(NewClient(srv.URL))
	o.PollInterval = 2 * time.Millisecond
	o.JobTimeout = time.Minute
	return o
}

func testMask() *image.Gray {
	m := image.NewGray(image.Rect(0, 0, 8, 8))
	m.Pix[0] = 0xFF
	return m
}

// drain collects updates until the channel closes or the deadline passes
func drain(t *testing.T, h *JobHandle) []StatusUpdate {
	t.Helper()
	var updates []StatusUpdate
	timeout := time.After(5 * time.Second)
	for {
		select {
		case u, ok := <-h.Updates():
			if !ok {
				return updates
			}
			updates = append(updates, u)
		case <-timeout:
			t.Fatalf("Updates channel never closed; got %v", updates)
		}
	}
}

func terminal(t *testing.T, updates []StatusUpdate) StatusUpdate {
	t.Helper()
	if len(updates) == 0 {
		t.Fatal("No updates received")
	}
	last := updates[len(updates)-1]
	if !last.Status.Terminal() {
		t.Fatalf("Last update is not terminal: %+v", last)
	}
	return last
}

func TestSubmitAndComplete(t *testing.T) {
	svc := &fakeService{responses: []pollResponse{
		{state: JobState{Status: JobStatusProcessing}},
		{state: JobState{Status: JobStatusProcessing}},
		{state: JobState{Status: JobStatusCompleted, OutputRef: "media/a1/edited.jpg"}},
	}}
	o := newTestOrchestrator(t, svc)

	h, err := o.Submit(context.Background(), testMask(), "media/a1/src.jpg", "a1")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if h.JobID != "job-a1" {
		t.Errorf("JobID = %q", h.JobID)
	}

	last := terminal(t, drain(t, h))
	if last.Status != JobStatusCompleted {
		t.Fatalf("Expected completed, got %+v", last)
	}
	if last.ResultRef != "media/a1/edited.jpg" {
		t.Errorf("ResultRef = %q", last.ResultRef)
	}
}

func TestServiceFailureReasonPassedVerbatim(t *testing.T) {
	svc := &fakeService{responses: []pollResponse{
		{state: JobState{Status: JobStatusFailed, ErrorMessage: "mask region too large"}},
	}}
	o := newTestOrchestrator(t, svc)

	h, err := o.Submit(context.Background(), testMask(), "src", "a2")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	last := terminal(t, drain(t, h))
	if last.Status != JobStatusFailed || last.Reason != "mask region too large" {
		t.Errorf("Expected verbatim service failure, got %+v", last)
	}
}

func TestSubmitErrorIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	o := NewOrchestrator(NewClient(srv.URL))
	_, err := o.Submit(context.Background(), testMask(), "src", "a3")
	if err == nil {
		t.Fatal("Expected submission error")
	}
	var subErr *SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("Expected *SubmissionError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("Error should carry the service message: %v", err)
	}
}

func TestErrorBudgetExhaustion(t *testing.T) {
	svc := &fakeService{responses: []pollResponse{
		{fail: true}, {fail: true}, {fail: true}, {fail: true}, {fail: true},
	}}
	o := newTestOrchestrator(t, svc)

	h, err := o.Submit(context.Background(), testMask(), "src", "a4")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	last := terminal(t, drain(t, h))
	if last.Status != JobStatusFailed || last.Reason != ReasonNetworkError {
		t.Errorf("Expected failed(%q), got %+v", ReasonNetworkError, last)
	}
	if got := svc.pollCount(); got != 5 {
		t.Errorf("Exactly 5 consecutive errors should stop polling, got %d polls", got)
	}
}

func TestSuccessResetsErrorCounter(t *testing.T) {
	// 4 errors, a successful "still processing", 4 more errors, then done.
	// The counter reset means the budget is never exhausted.
	svc := &fakeService{responses: []pollResponse{
		{fail: true}, {fail: true}, {fail: true}, {fail: true},
		{state: JobState{Status: JobStatusProcessing}},
		{fail: true}, {fail: true}, {fail: true}, {fail: true},
		{state: JobState{Status: JobStatusCompleted, OutputRef: "out.jpg"}},
	}}
	o := newTestOrchestrator(t, svc)

	h, err := o.Submit(context.Background(), testMask(), "src", "a5")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	last := terminal(t, drain(t, h))
	if last.Status != JobStatusCompleted {
		t.Errorf("Expected completion despite interleaved errors, got %+v", last)
	}
}

func TestWallClockTimeout(t *testing.T) {
	svc := &fakeService{responses: []pollResponse{
		{state: JobState{Status: JobStatusProcessing}},
	}}
	o := newTestOrchestrator(t, svc)

	// Virtual clock: every observation advances past the ceiling, so the
	// first tick already sees the elapsed time beyond 120s
	base := time.Now()
	var mu sync.Mutex
	elapsed := time.Duration(0)
	o.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		elapsed += 121 * time.Second
		return base.Add(elapsed)
	}
	o.JobTimeout = DefaultJobTimeout

	h, err := o.Submit(context.Background(), testMask(), "src", "a6")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	last := terminal(t, drain(t, h))
	if last.Status != JobStatusFailed || last.Reason != ReasonTimedOut {
		t.Errorf("Expected failed(%q), got %+v", ReasonTimedOut, last)
	}
	if got := svc.pollCount(); got != 0 {
		t.Errorf("Timeout fired before any poll, expected 0 polls, got %d", got)
	}
}

func TestAbortStopsPolling(t *testing.T) {
	svc := &fakeService{responses: []pollResponse{
		{state: JobState{Status: JobStatusProcessing}},
	}}
	o := newTestOrchestrator(t, svc)
	o.PollInterval = time.Millisecond

	h, err := o.Submit(context.Background(), testMask(), "src", "a7")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	h.Abort()
	h.Abort() // idempotent

	updates := drain(t, h)
	for _, u := range updates {
		if u.Status.Terminal() {
			t.Errorf("No terminal update expected after abort, got %+v", u)
		}
	}

	// Polling must actually stop
	settled := svc.pollCount()
	time.Sleep(20 * time.Millisecond)
	if after := svc.pollCount(); after > settled+1 {
		t.Errorf("Poller still active after abort: %d -> %d", settled, after)
	}
}

func TestContextCancelStopsPolling(t *testing.T) {
	svc := &fakeService{responses: []pollResponse{
		{state: JobState{Status: JobStatusProcessing}},
	}}
	o := newTestOrchestrator(t, svc)

	ctx, cancel := context.WithCancel(context.Background())
	h, err := o.Submit(ctx, testMask(), "src", "a8")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	cancel()
	updates := drain(t, h)
	for _, u := range updates {
		if u.Status.Terminal() {
			t.Errorf("No terminal update expected after cancel, got %+v", u)
		}
	}
}

func TestFreshSubmitIsNewJob(t *testing.T) {
	svc := &fakeService{responses: []pollResponse{
		{state: JobState{Status: JobStatusFailed, ErrorMessage: "transient"}},
		{state: JobState{Status: JobStatusCompleted, OutputRef: "out.jpg"}},
	}}
	o := newTestOrchestrator(t, svc)

	h1, err := o.Submit(context.Background(), testMask(), "src", "b1")
	if err != nil {
		t.Fatal(err)
	}
	terminal(t, drain(t, h1))

	h2, err := o.Submit(context.Background(), testMask(), "src", "b2")
	if err != nil {
		t.Fatal(err)
	}
	last := terminal(t, drain(t, h2))
	if last.Status != JobStatusCompleted {
		t.Errorf("Second submit should run as a fresh job, got %+v", last)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.submits != 2 {
		t.Errorf("Expected 2 independent submissions, got %d", svc.submits)
	}
}
