package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an asset id matches no row
var ErrNotFound = errors.New("asset not found")

const timeFormat = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeFormat, s)
	return t
}

// CreateAsset inserts a new asset. A zero ID is assigned a UUID and a zero
// status defaults to pending; CreatedAt/UpdatedAt are set to now.
func (db *DB) CreateAsset(a *MediaAsset) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	if !a.Status.Valid() {
		return fmt.Errorf("invalid status %q", a.Status)
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := db.Exec(`
		INSERT INTO media_assets
		  (id, listing_id, address, source_ref, processed_ref, width, height,
		   status, rejection_notes, category, rush, assigned_to, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ListingID, a.Address, a.SourceRef, a.ProcessedRef, a.Width, a.Height,
		string(a.Status), a.RejectionNotes, a.Category, boolToInt(a.Rush), a.AssignedTo,
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

const assetColumns = `id, listing_id, address, source_ref,
	COALESCE(processed_ref, ''), width, height, status,
	COALESCE(rejection_notes, ''), COALESCE(category, ''), rush,
	COALESCE(assigned_to, ''), created_at, updated_at`

func scanAsset(row interface{ Scan(...any) error }) (*MediaAsset, error) {
	var a MediaAsset
	var status, createdAt, updatedAt string
	var rush int
	err := row.Scan(&a.ID, &a.ListingID, &a.Address, &a.SourceRef,
		&a.ProcessedRef, &a.Width, &a.Height, &status, &a.RejectionNotes,
		&a.Category, &rush, &a.AssignedTo,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = Status(status)
	a.Rush = rush != 0
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)
	return &a, nil
}

// GetAsset retrieves a single asset by id
func (db *DB) GetAsset(id string) (*MediaAsset, error) {
	row := db.QueryRow(`SELECT `+assetColumns+` FROM media_assets WHERE id = ?`, id)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}

// ListAssetsForListing returns a listing's assets in ingest order
func (db *DB) ListAssetsForListing(listingID string) ([]MediaAsset, error) {
	rows, err := db.Query(`SELECT `+assetColumns+`
		FROM media_assets WHERE listing_id = ?
		ORDER BY created_at, id`, listingID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []MediaAsset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

// ApproveAsset marks an asset approved and clears any rejection notes.
// Single-statement update: status, notes, and timestamp change atomically.
func (db *DB) ApproveAsset(id string) error {
	return db.updateAsset(id, `
		UPDATE media_assets
		SET status = 'approved', rejection_notes = NULL, updated_at = ?
		WHERE id = ?`)
}

// RejectAsset marks an asset rejected with the given notes (empty allowed)
func (db *DB) RejectAsset(id, notes string) error {
	res, err := db.Exec(`
		UPDATE media_assets
		SET status = 'rejected', rejection_notes = ?, updated_at = ?
		WHERE id = ?`,
		notes, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("reject asset: %w", err)
	}
	return checkAffected(res)
}

// SetProcessedImage records the edited image reference from a completed
// inpaint job. Status is deliberately left unchanged: an edited asset still
// needs a human approve/reject decision.
func (db *DB) SetProcessedImage(id, ref string) error {
	res, err := db.Exec(`
		UPDATE media_assets
		SET processed_ref = ?, updated_at = ?
		WHERE id = ?`,
		ref, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("set processed image: %w", err)
	}
	return checkAffected(res)
}

// ListBacklog returns queue items for every pending-equivalent asset plus
// assets touched within the window, newest listings first by creation
func (db *DB) ListBacklog(window time.Duration) ([]ReviewQueueItem, error) {
	cutoff := formatTime(time.Now().Add(-window))
	rows, err := db.Query(`
		SELECT id, listing_id, address, status, rush, COALESCE(assigned_to, ''), created_at
		FROM media_assets
		WHERE status IN ('pending', 'ready_for_qc', 'processing') OR updated_at >= ?
		ORDER BY created_at, id`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list backlog: %w", err)
	}
	defer rows.Close()

	var items []ReviewQueueItem
	for rows.Next() {
		var it ReviewQueueItem
		var status, createdAt string
		var rush int
		if err := rows.Scan(&it.AssetID, &it.ListingID, &it.Address,
			&status, &rush, &it.AssignedTo, &createdAt); err != nil {
			return nil, fmt.Errorf("scan backlog item: %w", err)
		}
		it.Status = Status(status)
		it.Rush = rush != 0
		it.CreatedAt = parseTime(createdAt)
		items = append(items, it)
	}
	return items, rows.Err()
}

func (db *DB) updateAsset(id, query string) error {
	res, err := db.Exec(query, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
