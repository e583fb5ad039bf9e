// Package review drives a single reviewer through one listing's assets:
// approve/reject/edit transitions, pending-aware navigation, zoom and
// compare controls, and the keyboard command dispatcher.
package review

import (
	"errors"
	"fmt"

	"github.com/RamonASM/aerialshots-portal-sub005/internal/storage"
)

// State is the session's position in its state machine. Approving and
// Rejecting are transient: entered while the store call is in flight and
// always returned from before another action is allowed.
type State int

const (
	StateBrowsing State = iota
	StateApproving
	StateRejecting
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateBrowsing:
		return "browsing"
	case StateApproving:
		return "approving"
	case StateRejecting:
		return "rejecting"
	case StateEditing:
		return "editing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Store is the narrow asset-store contract the session needs. Each update
// is atomic per asset.
type Store interface {
	ApproveAsset(id string) error
	RejectAsset(id, notes string) error
	SetProcessedImage(id, ref string) error
}

const (
	MinZoom  = 0.5
	MaxZoom  = 3.0
	ZoomStep = 0.25
)

var (
	ErrNoAssets = errors.New("no assets to review")
	ErrBusy     = errors.New("another action is in flight")
)

// Session is per-reviewer, per-listing ephemeral state. Not safe for
// concurrent use: all methods are called from the owning UI event loop.
type Session struct {
	store  Store
	assets []storage.MediaAsset
	idx    int

	state   State
	zoom    float64
	compare bool
	closed  bool

	// TextInputFocused suppresses keyboard dispatch while a text field
	// (the rejection-note prompt) captures typing
	TextInputFocused bool

	// HelpOpen marks the shortcut overlay as the active modal
	HelpOpen bool
}

// NewSession opens a review session over a listing's assets. The asset
// slice is copied; the session owns its view of the statuses.
func NewSession(store Store, assets []storage.MediaAsset) (*Session, error) {
	if len(assets) == 0 {
		return nil, ErrNoAssets
	}
	s := &Session{
		store:  store,
		assets: append([]storage.MediaAsset(nil), assets...),
		zoom:   1.0,
	}
	// Start on the first asset awaiting a decision, if any
	if !s.assets[0].Status.PendingEquivalent() {
		if next, ok := s.nextPendingFrom(0); ok {
			s.idx = next
		}
	}
	return s, nil
}

// State returns the current machine state
func (s *Session) State() State { return s.state }

// Current returns the asset under review
func (s *Session) Current() *storage.MediaAsset { return &s.assets[s.idx] }

// Index returns the current position in the full asset list
func (s *Session) Index() int { return s.idx }

// Len returns the number of assets in the session
func (s *Session) Len() int { return len(s.assets) }

// Assets returns the session's view of the asset list
func (s *Session) Assets() []storage.MediaAsset { return s.assets }

// Zoom returns the current zoom level
func (s *Session) Zoom() float64 { return s.zoom }

// CompareMode reports whether source/edited comparison is on
func (s *Session) CompareMode() bool { return s.compare }

// Closed reports whether the session has ended
func (s *Session) Closed() bool { return s.closed }

// PendingCount returns how many assets still await a decision
func (s *Session) PendingCount() int {
	n := 0
	for i := range s.assets {
		if s.assets[i].Status.PendingEquivalent() {
			n++
		}
	}
	return n
}

// PendingIndex returns the current asset's ordinal among pending-equivalent
// assets (1-based), or 0 when the current asset is already decided
func (s *Session) PendingIndex() int {
	if !s.Current().Status.PendingEquivalent() {
		return 0
	}
	n := 0
	for i := 0; i <= s.idx; i++ {
		if s.assets[i].Status.PendingEquivalent() {
			n++
		}
	}
	return n
}

// StartApprove transitions to the transient approving state and returns the
// asset id the caller must pass to the store. Guarded against re-entry:
// duplicate key presses while a call is in flight are rejected.
func (s *Session) StartApprove() (string, error) {
	if err := s.startAction(); err != nil {
		return "", err
	}
	s.state = StateApproving
	return s.Current().ID, nil
}

// ResolveApprove completes an approve call. On success the asset is marked
// and navigation jumps to the next pending-equivalent asset; on failure the
// session returns to browsing with the asset unchanged so the reviewer can
// retry.
func (s *Session) ResolveApprove(callErr error) {
	if s.state != StateApproving {
		return
	}
	s.state = StateBrowsing
	if callErr != nil {
		return
	}
	s.assets[s.idx].Status = storage.StatusApproved
	s.assets[s.idx].RejectionNotes = ""
	s.advancePastCurrent()
}

// StartReject transitions to the transient rejecting state. The note is
// captured by the caller's prompt before this call; an empty note is
// permitted and must not skip the store call.
func (s *Session) StartReject() (string, error) {
	if err := s.startAction(); err != nil {
		return "", err
	}
	s.state = StateRejecting
	return s.Current().ID, nil
}

// ResolveReject completes a reject call, recording the notes on success
func (s *Session) ResolveReject(notes string, callErr error) {
	if s.state != StateRejecting {
		return
	}
	s.state = StateBrowsing
	if callErr != nil {
		return
	}
	s.assets[s.idx].Status = storage.StatusRejected
	s.assets[s.idx].RejectionNotes = notes
	s.advancePastCurrent()
}

// Approve runs the full approve round-trip synchronously. UI callers that
// need the store call off the event loop use StartApprove/ResolveApprove
// instead.
func (s *Session) Approve() error {
	id, err := s.StartApprove()
	if err != nil {
		return err
	}
	callErr := s.store.ApproveAsset(id)
	s.ResolveApprove(callErr)
	return callErr
}

// Reject runs the full reject round-trip synchronously
func (s *Session) Reject(notes string) error {
	id, err := s.StartReject()
	if err != nil {
		return err
	}
	callErr := s.store.RejectAsset(id, notes)
	s.ResolveReject(notes, callErr)
	return callErr
}

// CanEdit reports whether the object-removal editor may open: only for a
// pending-equivalent asset, only while browsing, and never over another
// modal
func (s *Session) CanEdit() bool {
	return s.state == StateBrowsing && !s.HelpOpen && !s.closed &&
		s.Current().Status.PendingEquivalent()
}

// OpenEditor enters the editing state
func (s *Session) OpenEditor() error {
	if s.state != StateBrowsing {
		return ErrBusy
	}
	if !s.CanEdit() {
		return fmt.Errorf("cannot edit asset in status %q", s.Current().Status)
	}
	s.state = StateEditing
	return nil
}

// AcceptEditResult records the edited image reference produced by a
// completed inpaint job and closes the editor. The status stays
// pending-equivalent: a human still has to approve or reject the result.
// On store failure the session stays in editing so the reviewer can retry
// or cancel.
func (s *Session) AcceptEditResult(resultRef string) error {
	if s.state != StateEditing {
		return fmt.Errorf("no editor open")
	}
	if err := s.store.SetProcessedImage(s.Current().ID, resultRef); err != nil {
		return err
	}
	s.assets[s.idx].ProcessedRef = resultRef
	s.state = StateBrowsing
	return nil
}

// CancelEditor closes the editor without a result
func (s *Session) CancelEditor() {
	if s.state == StateEditing {
		s.state = StateBrowsing
	}
}

// Next moves to the following asset, clamped at the end
func (s *Session) Next() {
	if s.state == StateBrowsing && s.idx < len(s.assets)-1 {
		s.idx++
	}
}

// Prev moves to the previous asset, clamped at the start
func (s *Session) Prev() {
	if s.state == StateBrowsing && s.idx > 0 {
		s.idx--
	}
}

// ZoomIn increases zoom up to MaxZoom
func (s *Session) ZoomIn() {
	s.zoom += ZoomStep
	if s.zoom > MaxZoom {
		s.zoom = MaxZoom
	}
}

// ZoomOut decreases zoom down to MinZoom
func (s *Session) ZoomOut() {
	s.zoom -= ZoomStep
	if s.zoom < MinZoom {
		s.zoom = MinZoom
	}
}

// ResetZoom restores 1:1
func (s *Session) ResetZoom() { s.zoom = 1.0 }

// ToggleCompare flips source/edited comparison mode
func (s *Session) ToggleCompare() { s.compare = !s.compare }

// Close ends the session. The owning UI tears down any editor poller.
func (s *Session) Close() { s.closed = true }

func (s *Session) startAction() error {
	if s.closed {
		return errors.New("session closed")
	}
	if s.state != StateBrowsing {
		return ErrBusy
	}
	return nil
}

// advancePastCurrent jumps to the next pending-equivalent asset after the
// current position, skipping already-decided work. With nothing pending
// ahead, the index stays put.
func (s *Session) advancePastCurrent() {
	if next, ok := s.nextPendingFrom(s.idx + 1); ok {
		s.idx = next
	}
}

func (s *Session) nextPendingFrom(start int) (int, bool) {
	for i := start; i < len(s.assets); i++ {
		if s.assets[i].Status.PendingEquivalent() {
			return i, true
		}
	}
	return 0, false
}
