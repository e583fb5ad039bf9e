// Package inpaint talks to the external object-removal editing service:
// a thin HTTP client plus an orchestrator that submits a mask and polls
// the job to a terminal state.
package inpaint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is the HTTP client for the editing job service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the editing service at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SubmitRequest carries one mask submission
type SubmitRequest struct {
	AssetID   string `json:"asset_id"`
	SourceRef string `json:"source_ref"`
	MaskPNG   []byte `json:"mask_png"` // base64-encoded by encoding/json
}

// JobState is the service's report for one job
type JobState struct {
	Status       JobStatus `json:"status"`
	OutputRef    string    `json:"output_ref,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// SubmitJob posts the mask and source reference, returning the
// service-assigned job identifier
func (c *Client) SubmitJob(ctx context.Context, req SubmitRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/inpaint", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("submit job: %s: %s", resp.Status, msg)
	}

	var result struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("submit job: decode response: %w", err)
	}
	if result.JobID == "" {
		return "", fmt.Errorf("submit job: service returned no job id")
	}

	return result.JobID, nil
}

// GetJob fetches the current state of a job. Any transport or non-OK
// response is an error; callers distinguish errors from valid
// "still processing" states.
func (c *Client) GetJob(ctx context.Context, jobID string) (*JobState, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/inpaint/%s", c.baseURL, url.PathEscape(jobID)), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poll job %s: server returned %s", jobID, resp.Status)
	}

	var state JobState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("poll job %s: decode error: %w", jobID, err)
	}

	return &state, nil
}
