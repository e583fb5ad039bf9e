package main

import (
	"time"

	"github.com/atotto/clipboard"

	"github.com/RamonASM/aerialshots-portal-sub005/internal/inpaint"
	"github.com/RamonASM/aerialshots-portal-sub005/internal/review"
	"github.com/RamonASM/aerialshots-portal-sub005/internal/storage"
)

// assetStore is everything the TUI needs from the asset database
type assetStore interface {
	review.Store
	ListBacklog(window time.Duration) ([]storage.ReviewQueueItem, error)
	ListAssetsForListing(listingID string) ([]storage.MediaAsset, error)
}

type tuiView int

const (
	tuiViewQueue   tuiView = iota
	tuiViewSession         // reviewing one listing's assets
	tuiViewReject          // rejection-note modal over the session
	tuiViewEditor          // mask editor over the current asset
	tuiViewHelp            // shortcut overlay
)

// Queue refresh cadence: frequent while work is outstanding, relaxed when
// the backlog is empty
const (
	tickIntervalActive = 5 * time.Second
	tickIntervalIdle   = 15 * time.Second
)

type tuiTickMsg time.Time

// tuiBacklogMsg delivers a backlog snapshot for the queue view
type tuiBacklogMsg struct {
	items []storage.ReviewQueueItem
	err   error
}

// tuiAssetsMsg delivers one listing's assets when a session opens
type tuiAssetsMsg struct {
	listingID string
	assets    []storage.MediaAsset
	err       error
}

// tuiActionResultMsg reports a completed approve/reject store call
type tuiActionResultMsg struct {
	action  string // "approve" or "reject"
	assetID string
	notes   string
	err     error
}

// tuiSubmitResultMsg reports the outcome of a mask submission
type tuiSubmitResultMsg struct {
	handle *inpaint.JobHandle
	err    error
}

// tuiJobUpdateMsg delivers one orchestrator status update; ok is false
// once the update stream has closed
type tuiJobUpdateMsg struct {
	update inpaint.StatusUpdate
	ok     bool
}

type tuiClipboardResultMsg struct {
	err error
}

// ClipboardWriter is an interface for clipboard operations (allows mocking in tests)
type ClipboardWriter interface {
	WriteText(text string) error
}

// realClipboard implements ClipboardWriter using the system clipboard
type realClipboard struct{}

func (r *realClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}
