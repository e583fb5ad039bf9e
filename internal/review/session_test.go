package review

import (
	"errors"
	"testing"

	"github.com/RamonASM/aerialshots-portal-sub005/internal/storage"
)

// fakeStore records calls and returns scripted errors
type fakeStore struct {
	approved  []string
	rejected  []string
	notes     []string
	processed map[string]string

	approveErr error
	rejectErr  error
	setRefErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{processed: map[string]string{}}
}

func (f *fakeStore) ApproveAsset(id string) error {
	if f.approveErr != nil {
		return f.approveErr
	}
	f.approved = append(f.approved, id)
	return nil
}

func (f *fakeStore) RejectAsset(id, notes string) error {
	if f.rejectErr != nil {
		return f.rejectErr
	}
	f.rejected = append(f.rejected, id)
	f.notes = append(f.notes, notes)
	return nil
}

func (f *fakeStore) SetProcessedImage(id, ref string) error {
	if f.setRefErr != nil {
		return f.setRefErr
	}
	f.processed[id] = ref
	return nil
}

func makeAsset(id string, status storage.Status) storage.MediaAsset {
	return storage.MediaAsset{
		ID:        id,
		ListingID: "lst-1",
		Address:   "48 Beacon St",
		SourceRef: "media/" + id + ".jpg",
		Status:    status,
	}
}

func newTestSession(t *testing.T, store Store, statuses ...storage.Status) *Session {
	t.Helper()
	assets := make([]storage.MediaAsset, len(statuses))
	for i, st := range statuses {
		assets[i] = makeAsset(string(rune('A'+i)), st)
	}
	s, err := NewSession(store, assets)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}

func TestNewSessionEmpty(t *testing.T) {
	if _, err := NewSession(newFakeStore(), nil); !errors.Is(err, ErrNoAssets) {
		t.Errorf("Expected ErrNoAssets, got %v", err)
	}
}

func TestNewSessionStartsOnFirstPending(t *testing.T) {
	s := newTestSession(t, newFakeStore(),
		storage.StatusApproved, storage.StatusRejected, storage.StatusReadyForQC)
	if s.Index() != 2 {
		t.Errorf("Session should open on the first pending asset, got index %d", s.Index())
	}
}

func TestApproveAdvancesToNextPending(t *testing.T) {
	// P1(pending), P2(approved), P3(pending): approving P1 must land on
	// P3 and drop the pending count from 2 to 1
	store := newFakeStore()
	s := newTestSession(t, store,
		storage.StatusPending, storage.StatusApproved, storage.StatusPending)

	if s.PendingCount() != 2 {
		t.Fatalf("PendingCount = %d, want 2", s.PendingCount())
	}

	if err := s.Approve(); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if s.Index() != 2 {
		t.Errorf("Expected navigation to index 2 (P3), got %d", s.Index())
	}
	if s.PendingCount() != 1 {
		t.Errorf("PendingCount = %d, want 1", s.PendingCount())
	}
	if s.State() != StateBrowsing {
		t.Errorf("State = %v, want browsing", s.State())
	}
	if len(store.approved) != 1 || store.approved[0] != "A" {
		t.Errorf("Store calls = %v", store.approved)
	}
}

func TestApproveFailureKeepsPosition(t *testing.T) {
	store := newFakeStore()
	store.approveErr = errors.New("store unavailable")
	s := newTestSession(t, store, storage.StatusPending, storage.StatusPending)

	if err := s.Approve(); err == nil {
		t.Fatal("Expected approve error")
	}

	if s.Index() != 0 {
		t.Errorf("Failed approve must not advance, got index %d", s.Index())
	}
	if got := s.Current().Status; got != storage.StatusPending {
		t.Errorf("Displayed status must be unchanged, got %q", got)
	}
	if s.State() != StateBrowsing {
		t.Errorf("Session must return to browsing for retry, got %v", s.State())
	}

	// Retry succeeds
	store.approveErr = nil
	if err := s.Approve(); err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if s.Index() != 1 {
		t.Errorf("Retry should advance, got index %d", s.Index())
	}
}

func TestRejectWithEmptyNote(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(t, store, storage.StatusPending)

	if err := s.Reject(""); err != nil {
		t.Fatalf("Reject with empty note failed: %v", err)
	}
	if len(store.rejected) != 1 {
		t.Fatal("Reject call must not be skipped for an empty note")
	}
	if store.notes[0] != "" {
		t.Errorf("Note = %q, want empty", store.notes[0])
	}
	if s.Current().Status != storage.StatusRejected {
		t.Errorf("Status = %q", s.Current().Status)
	}
}

func TestNoConcurrentActions(t *testing.T) {
	s := newTestSession(t, newFakeStore(), storage.StatusPending, storage.StatusPending)

	if _, err := s.StartApprove(); err != nil {
		t.Fatalf("StartApprove failed: %v", err)
	}
	if _, err := s.StartApprove(); !errors.Is(err, ErrBusy) {
		t.Errorf("Second StartApprove should be ErrBusy, got %v", err)
	}
	if _, err := s.StartReject(); !errors.Is(err, ErrBusy) {
		t.Errorf("StartReject during approve should be ErrBusy, got %v", err)
	}
	if err := s.OpenEditor(); !errors.Is(err, ErrBusy) {
		t.Errorf("OpenEditor during approve should be ErrBusy, got %v", err)
	}

	s.ResolveApprove(nil)
	if s.State() != StateBrowsing {
		t.Errorf("State = %v after resolve", s.State())
	}
}

func TestStaleResolveIsIgnored(t *testing.T) {
	s := newTestSession(t, newFakeStore(), storage.StatusPending)

	s.ResolveApprove(nil) // no approve in flight
	if s.Current().Status != storage.StatusPending {
		t.Error("Resolve without Start must not mutate the asset")
	}
	s.ResolveReject("x", nil)
	if s.Current().Status != storage.StatusPending {
		t.Error("Resolve without Start must not mutate the asset")
	}
}

func TestEditorLifecycle(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(t, store, storage.StatusReadyForQC)

	if !s.CanEdit() {
		t.Fatal("Pending-equivalent asset should be editable")
	}
	if err := s.OpenEditor(); err != nil {
		t.Fatalf("OpenEditor failed: %v", err)
	}
	if s.State() != StateEditing {
		t.Fatalf("State = %v, want editing", s.State())
	}

	if err := s.AcceptEditResult("media/A-edited.jpg"); err != nil {
		t.Fatalf("AcceptEditResult failed: %v", err)
	}
	if s.State() != StateBrowsing {
		t.Errorf("State = %v after accept", s.State())
	}
	if got := s.Current().ProcessedRef; got != "media/A-edited.jpg" {
		t.Errorf("ProcessedRef = %q", got)
	}
	// A human still has to decide: status stays pending-equivalent
	if !s.Current().Status.PendingEquivalent() {
		t.Errorf("Status must stay pending-equivalent after edit, got %q", s.Current().Status)
	}
	if store.processed["A"] != "media/A-edited.jpg" {
		t.Error("Store should have recorded the processed ref")
	}
}

func TestEditorGuards(t *testing.T) {
	s := newTestSession(t, newFakeStore(), storage.StatusApproved)
	if s.CanEdit() {
		t.Error("Approved asset must not be editable")
	}
	if err := s.OpenEditor(); err == nil {
		t.Error("OpenEditor should fail for approved asset")
	}

	s2 := newTestSession(t, newFakeStore(), storage.StatusPending)
	s2.HelpOpen = true
	if s2.CanEdit() {
		t.Error("Editor must not open over another modal")
	}
}

func TestAcceptEditResultStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.setRefErr = errors.New("store down")
	s := newTestSession(t, store, storage.StatusPending)

	if err := s.OpenEditor(); err != nil {
		t.Fatal(err)
	}
	if err := s.AcceptEditResult("ref"); err == nil {
		t.Fatal("Expected store error")
	}
	if s.State() != StateEditing {
		t.Errorf("Session should stay editing on store failure, got %v", s.State())
	}
	if s.Current().ProcessedRef != "" {
		t.Error("Failed accept must not record the ref locally")
	}

	s.CancelEditor()
	if s.State() != StateBrowsing {
		t.Errorf("CancelEditor should return to browsing, got %v", s.State())
	}
}

func TestNavigationClamps(t *testing.T) {
	s := newTestSession(t, newFakeStore(), storage.StatusPending, storage.StatusPending)

	s.Prev()
	if s.Index() != 0 {
		t.Error("Prev at start should clamp")
	}
	s.Next()
	s.Next()
	if s.Index() != 1 {
		t.Error("Next at end should clamp")
	}
}

func TestApproveLastPendingStays(t *testing.T) {
	s := newTestSession(t, newFakeStore(), storage.StatusApproved, storage.StatusPending)
	if s.Index() != 1 {
		t.Fatalf("Index = %d", s.Index())
	}
	if err := s.Approve(); err != nil {
		t.Fatal(err)
	}
	if s.Index() != 1 {
		t.Errorf("With nothing pending ahead the index stays, got %d", s.Index())
	}
}

func TestZoomAndCompare(t *testing.T) {
	s := newTestSession(t, newFakeStore(), storage.StatusPending)

	for i := 0; i < 20; i++ {
		s.ZoomIn()
	}
	if s.Zoom() != MaxZoom {
		t.Errorf("Zoom = %v, want clamped at %v", s.Zoom(), MaxZoom)
	}
	for i := 0; i < 20; i++ {
		s.ZoomOut()
	}
	if s.Zoom() != MinZoom {
		t.Errorf("Zoom = %v, want clamped at %v", s.Zoom(), MinZoom)
	}
	s.ResetZoom()
	if s.Zoom() != 1.0 {
		t.Errorf("Zoom = %v after reset", s.Zoom())
	}

	s.ToggleCompare()
	if !s.CompareMode() {
		t.Error("Compare should be on")
	}
	s.ToggleCompare()
	if s.CompareMode() {
		t.Error("Compare should be off")
	}
}

func TestPendingIndex(t *testing.T) {
	s := newTestSession(t, newFakeStore(),
		storage.StatusApproved, storage.StatusPending, storage.StatusReadyForQC)
	// Session opens on index 1, the first pending
	if got := s.PendingIndex(); got != 1 {
		t.Errorf("PendingIndex = %d, want 1", got)
	}
	s.Next()
	if got := s.PendingIndex(); got != 2 {
		t.Errorf("PendingIndex = %d, want 2", got)
	}
	s.Prev()
	s.Prev()
	if got := s.PendingIndex(); got != 0 {
		t.Errorf("PendingIndex on decided asset = %d, want 0", got)
	}
}
