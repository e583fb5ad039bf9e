package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/RamonASM/aerialshots-portal-sub005/internal/review"
	"github.com/RamonASM/aerialshots-portal-sub005/internal/storage"
)

func (m tuiModel) View() string {
	var body string
	switch m.view {
	case tuiViewQueue:
		body = m.viewQueue()
	case tuiViewSession:
		body = m.viewSession()
	case tuiViewReject:
		body = m.viewSession() + "\n" + m.viewRejectModal()
	case tuiViewEditor:
		body = m.viewEditor()
	case tuiViewHelp:
		body = m.viewHelp()
	}

	var footer []string
	if m.err != nil {
		footer = append(footer, tuiErrStyle.Render("error: "+m.err.Error()))
	}
	if m.flash != "" {
		footer = append(footer, tuiStatusStyle.Render(m.flash))
	}
	if len(footer) > 0 {
		body += "\n" + strings.Join(footer, "\n")
	}
	return body
}

func (m tuiModel) viewQueue() string {
	var b strings.Builder

	title := "QC Backlog"
	if m.loading {
		title += " (refreshing…)"
	}
	b.WriteString(tuiTitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(tuiStatusStyle.Render(
		fmt.Sprintf("filter: %s   sort: %s", m.filter, m.sortOrder)))
	b.WriteString("\n\n")

	if len(m.groups) == 0 {
		b.WriteString(tuiStatusStyle.Render("Queue is empty."))
		b.WriteString("\n")
	}

	now := time.Now()
	for i, g := range m.groups {
		cursor := "  "
		line := fmt.Sprintf("%-16s  %-32s  %2d pending / %2d total  %5s  score %.0f",
			truncate(g.ListingID, 16),
			truncate(g.Address, 32),
			g.PendingCount,
			g.TotalCount,
			formatAge(now.Sub(g.OldestCreatedAt)),
			g.PriorityScore,
		)
		if g.IsRush {
			line += "  " + tuiRushStyle.Render("RUSH")
		}
		if i == m.queueIdx {
			cursor = "> "
			line = tuiSelectedStyle.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(tuiHelpStyle.Render(
		"j/k move · enter open · f filter · s sort · r refresh · ? help · q quit"))
	return b.String()
}

func (m tuiModel) viewSession() string {
	if m.session == nil {
		return tuiStatusStyle.Render("no session")
	}
	asset := m.session.Current()

	var b strings.Builder
	b.WriteString(tuiTitleStyle.Render("Review · " + asset.ListingID))
	if asset.Address != "" {
		b.WriteString(tuiStatusStyle.Render("  " + asset.Address))
	}
	b.WriteString("\n")

	pos := fmt.Sprintf("asset %d/%d", m.session.Index()+1, m.session.Len())
	if pi := m.session.PendingIndex(); pi > 0 {
		pos += fmt.Sprintf(" · pending %d/%d", pi, m.session.PendingCount())
	} else {
		pos += fmt.Sprintf(" · %d pending left", m.session.PendingCount())
	}
	b.WriteString(tuiStatusStyle.Render(pos))
	b.WriteString("\n\n")

	b.WriteString("  status: " + styleStatus(asset.Status))
	if asset.Rush {
		b.WriteString("  " + tuiRushStyle.Render("RUSH"))
	}
	b.WriteString("\n")
	b.WriteString("  image:  " + truncate(m.session.Current().DisplayRef(), 70) + "\n")
	if m.session.CompareMode() && asset.ProcessedRef != "" {
		b.WriteString("  source: " + truncate(asset.SourceRef, 70) + "\n")
	}
	if asset.Category != "" {
		b.WriteString("  category: " + asset.Category + "\n")
	}
	if asset.RejectionNotes != "" {
		b.WriteString("  notes:  " + tuiRejectedStyle.Render(asset.RejectionNotes) + "\n")
	}

	b.WriteString(fmt.Sprintf("\n  zoom %.2gx", m.session.Zoom()))
	if m.session.CompareMode() {
		b.WriteString("  · compare on")
	}
	switch m.session.State() {
	case review.StateApproving:
		b.WriteString("  · approving…")
	case review.StateRejecting:
		b.WriteString("  · rejecting…")
	}
	b.WriteString("\n\n")
	b.WriteString(tuiHelpStyle.Render(
		"a approve · x reject · e edit · j/k next/prev · c compare · +/- zoom · y copy ref · ? help · q back"))
	return b.String()
}

func (m tuiModel) viewRejectModal() string {
	content := "Rejection notes (enter to confirm, esc to cancel):\n\n" +
		"> " + m.rejectText + "█"
	return tuiModalStyle.Render(content)
}

func (m tuiModel) viewEditor() string {
	if m.editor == nil {
		return tuiStatusStyle.Render("no editor")
	}
	w, h := m.editor.DisplaySize()
	srcW, srcH := m.editor.SourceSize()

	var b strings.Builder
	b.WriteString(tuiTitleStyle.Render("Object Removal"))
	b.WriteString(tuiStatusStyle.Render(
		fmt.Sprintf("  %dx%d → %dx%d", w, h, srcW, srcH)))
	b.WriteString("\n\n")

	var grid strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			switch {
			case x == m.cursorX && y == m.cursorY:
				grid.WriteString(tuiSelectedStyle.Render("+"))
			case m.editor.MaskAt(x, y):
				grid.WriteString("█")
			default:
				grid.WriteString("·")
			}
		}
		grid.WriteString("\n")
	}
	b.WriteString(tuiModalStyle.Render(strings.TrimRight(grid.String(), "\n")))
	b.WriteString("\n")

	mode := "paint"
	if m.erase {
		mode = "erase"
	}
	status := fmt.Sprintf("brush %d · %s", m.brush, mode)
	if m.editor.CanUndo() {
		status += " · u undo"
	}
	if m.editor.CanRedo() {
		status += " · U redo"
	}
	switch {
	case m.submitting:
		status += " · submitting…"
	case m.jobStatus != "":
		status += " · job: " + m.jobStatus
	}
	b.WriteString(tuiStatusStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(tuiHelpStyle.Render(
		"arrows move · space paint · x erase · [/] brush · C clear · enter submit · esc cancel"))
	return b.String()
}

func (m tuiModel) viewHelp() string {
	rows := []string{
		tuiTitleStyle.Render("Keyboard shortcuts"),
		"",
		"Backlog",
		"  j/k       move selection",
		"  enter     open listing for review",
		"  f         cycle status filter",
		"  s         cycle sort order",
		"  r         refresh now",
		"",
		"Review",
		"  a         approve current asset",
		"  x         reject (prompts for notes, empty allowed)",
		"  e         open the object-removal editor",
		"  j/k n/p   next/previous asset",
		"  c         compare source vs edited",
		"  +/- 0     zoom in/out/reset",
		"  y         copy the displayed image ref",
		"",
		"Editor",
		"  arrows    move the brush cursor",
		"  space     paint (x toggles erase)",
		"  [/]       brush size, u/U undo/redo, C clear",
		"  enter     submit the mask for processing",
		"",
		tuiHelpStyle.Render("esc or ? to close"),
	}
	return strings.Join(rows, "\n")
}

func styleStatus(s storage.Status) string {
	switch {
	case s.PendingEquivalent():
		return tuiPendingStyle.Render(string(s))
	case s == storage.StatusApproved:
		return tuiApprovedStyle.Render(string(s))
	case s == storage.StatusRejected:
		return tuiRejectedStyle.Render(string(s))
	}
	return tuiStatusStyle.Render(string(s))
}
