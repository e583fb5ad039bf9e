package storage

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusReadyForQC Status = "ready_for_qc"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusProcessing Status = "processing"
)

// PendingEquivalent reports whether the status means "awaiting QC decision".
// "pending" and "ready_for_qc" are treated as one set everywhere: filtering,
// navigation, and the editor-availability guard.
func (s Status) PendingEquivalent() bool {
	return s == StatusPending || s == StatusReadyForQC
}

// Valid reports whether s is a known review status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReadyForQC, StatusApproved, StatusRejected, StatusProcessing:
		return true
	}
	return false
}

// MediaAsset is one reviewable image attached to a listing
type MediaAsset struct {
	ID             string    `json:"id"`
	ListingID      string    `json:"listing_id"`
	Address        string    `json:"address"` // Display label for the parent listing
	SourceRef      string    `json:"source_ref"`
	ProcessedRef   string    `json:"processed_ref,omitempty"` // Edited image, empty until an edit job succeeds
	Width          int       `json:"width"`                   // Source pixel dimensions, recorded at ingest
	Height         int       `json:"height"`
	Status         Status    `json:"status"`
	RejectionNotes string    `json:"rejection_notes,omitempty"`
	Category       string    `json:"category,omitempty"`
	Rush           bool      `json:"rush"`
	AssignedTo     string    `json:"assigned_to,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DisplayRef returns the image reference a reviewer should be shown:
// the edited result when one exists, otherwise the source
func (a *MediaAsset) DisplayRef() string {
	if a.ProcessedRef != "" {
		return a.ProcessedRef
	}
	return a.SourceRef
}

// ReviewQueueItem is one asset as it appears in the QC backlog
type ReviewQueueItem struct {
	AssetID    string    `json:"asset_id"`
	ListingID  string    `json:"listing_id"`
	Address    string    `json:"address"`
	Status     Status    `json:"status"`
	Rush       bool      `json:"rush"`
	AssignedTo string    `json:"assigned_to,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
