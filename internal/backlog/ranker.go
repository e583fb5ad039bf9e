// Package backlog groups and ranks the QC review backlog by listing.
package backlog

import (
	"sort"
	"time"

	"github.com/RamonASM/aerialshots-portal-sub005/internal/storage"
)

type Filter string

const (
	FilterAll        Filter = "all"
	FilterPending    Filter = "pending" // unions pending + ready_for_qc
	FilterApproved   Filter = "approved"
	FilterRejected   Filter = "rejected"
	FilterProcessing Filter = "processing"
)

// Valid reports whether f is a known filter
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterPending, FilterApproved, FilterRejected, FilterProcessing:
		return true
	}
	return false
}

// Matches reports whether an item status passes the filter.
// "pending" matches both pending-equivalent statuses; the two strings are
// synonyms for "awaiting review", not distinct states.
func (f Filter) Matches(s storage.Status) bool {
	switch f {
	case FilterAll, "":
		return true
	case FilterPending:
		return s.PendingEquivalent()
	default:
		return s == storage.Status(f)
	}
}

type SortOrder string

const (
	SortPriority SortOrder = "priority"
	SortOldest   SortOrder = "oldest"
	SortNewest   SortOrder = "newest"
	SortRush     SortOrder = "rush"
)

// Valid reports whether o is a known sort order
func (o SortOrder) Valid() bool {
	switch o {
	case SortPriority, SortOldest, SortNewest, SortRush:
		return true
	}
	return false
}

// Group is a listing's backlog items with precomputed summary fields
type Group struct {
	ListingID string
	Address   string
	Items     []storage.ReviewQueueItem

	PendingCount  int
	ApprovedCount int
	RejectedCount int
	TotalCount    int

	IsRush          bool
	OldestCreatedAt time.Time
	PriorityScore   float64
}

// Rank partitions the filtered items by listing and orders the groups.
// Pure: group membership is recomputed on every call, and now is passed in
// so age contributions are deterministic.
func Rank(items []storage.ReviewQueueItem, filter Filter, order SortOrder, now time.Time) []Group {
	byListing := make(map[string]*Group)
	var groups []*Group

	for _, it := range items {
		if !filter.Matches(it.Status) {
			continue
		}
		g, ok := byListing[it.ListingID]
		if !ok {
			g = &Group{ListingID: it.ListingID, Address: it.Address}
			byListing[it.ListingID] = g
			groups = append(groups, g)
		}
		g.Items = append(g.Items, it)
		g.TotalCount++
		switch {
		case it.Status.PendingEquivalent():
			g.PendingCount++
		case it.Status == storage.StatusApproved:
			g.ApprovedCount++
		case it.Status == storage.StatusRejected:
			g.RejectedCount++
		}
		if it.Rush {
			g.IsRush = true
		}
		if g.OldestCreatedAt.IsZero() || it.CreatedAt.Before(g.OldestCreatedAt) {
			g.OldestCreatedAt = it.CreatedAt
		}
	}

	for _, g := range groups {
		g.PriorityScore = score(g, now)
	}

	sortGroups(groups, order)

	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = *g
	}
	return out
}

// score computes group priority. The rush term dominates any realistic
// age/pending contribution, so rush groups always outrank non-rush ones;
// within a tier, older groups win, then larger pending counts.
func score(g *Group, now time.Time) float64 {
	s := 0.0
	if g.IsRush {
		s += 1000
	}
	ageHours := now.Sub(g.OldestCreatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return s + ageHours*10 + float64(g.PendingCount)
}

func sortGroups(groups []*Group, order SortOrder) {
	switch order {
	case SortOldest:
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].OldestCreatedAt.Before(groups[j].OldestCreatedAt)
		})
	case SortNewest:
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[j].OldestCreatedAt.Before(groups[i].OldestCreatedAt)
		})
	case SortRush:
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].IsRush && !groups[j].IsRush
		})
	default: // SortPriority
		sort.SliceStable(groups, func(i, j int) bool {
			a, b := groups[i], groups[j]
			if a.PriorityScore != b.PriorityScore {
				return a.PriorityScore > b.PriorityScore
			}
			if a.PendingCount != b.PendingCount {
				return a.PendingCount > b.PendingCount
			}
			return a.OldestCreatedAt.Before(b.OldestCreatedAt)
		})
	}
}
