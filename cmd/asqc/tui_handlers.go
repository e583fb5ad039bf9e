package main

import (
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/RamonASM/aerialshots-portal-sub005/internal/backlog"
	"github.com/RamonASM/aerialshots-portal-sub005/internal/maskedit"
	"github.com/RamonASM/aerialshots-portal-sub005/internal/review"
)

// Editor grid bounds in terminal cells. The mask raster is created at this
// granularity and rescaled to source resolution on export.
const (
	editorMaxCols = 72
	editorMaxRows = 24
)

// handleKeyMsg dispatches key events to view-specific handlers
func (m tuiModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.abortJob()
		return m, tea.Quit
	}

	switch m.view {
	case tuiViewQueue:
		return m.handleQueueKey(msg)
	case tuiViewSession:
		return m.handleSessionKey(msg)
	case tuiViewReject:
		return m.handleRejectKey(msg)
	case tuiViewEditor:
		return m.handleEditorKey(msg)
	case tuiViewHelp:
		return m.handleHelpKey(msg)
	}
	return m, nil
}

// handleQueueKey handles key input in the ranked backlog view
func (m tuiModel) handleQueueKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.queueIdx > 0 {
			m.queueIdx--
		}
		return m, nil
	case "down", "j":
		if m.queueIdx < len(m.groups)-1 {
			m.queueIdx++
		}
		return m, nil
	case "enter":
		if m.queueIdx < len(m.groups) {
			return m, m.openListing(m.groups[m.queueIdx].ListingID)
		}
		return m, nil
	case "f":
		m.filter = nextFilter(m.filter)
		m.loading = true
		return m, m.fetchBacklog
	case "s":
		m.sortOrder = nextSortOrder(m.sortOrder)
		m.loading = true
		return m, m.fetchBacklog
	case "r":
		m.loading = true
		return m, m.fetchBacklog
	case "?":
		m.helpFromView = tuiViewQueue
		m.view = tuiViewHelp
		return m, nil
	}
	return m, nil
}

// handleSessionKey routes keys through the session's dispatcher. The
// session owns the guards: duplicate presses during an in-flight action,
// editor availability, and the text-input rule all live there.
func (m tuiModel) handleSessionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// TUI-level extra: copy the displayed image ref
	if key == "y" && m.session.State() == review.StateBrowsing {
		return m, m.copyCurrentRef()
	}

	switch m.session.HandleKey(key) {
	case review.CmdApprove:
		assetID, err := m.session.StartApprove()
		if err != nil {
			m.flash = err.Error()
			return m, nil
		}
		return m, m.approveAsset(assetID)

	case review.CmdReject:
		// Note prompt first; the reject call is issued when the note is
		// confirmed (empty notes allowed)
		m.rejectText = ""
		m.session.TextInputFocused = true
		m.view = tuiViewReject
		return m, nil

	case review.CmdOpenEditor:
		return m.openMaskEditor()

	case review.CmdNext:
		m.session.Next()
	case review.CmdPrev:
		m.session.Prev()
	case review.CmdToggleCompare:
		m.session.ToggleCompare()
	case review.CmdZoomIn:
		m.session.ZoomIn()
	case review.CmdZoomOut:
		m.session.ZoomOut()
	case review.CmdResetZoom:
		m.session.ResetZoom()

	case review.CmdToggleHelp:
		m.session.HelpOpen = true
		m.helpFromView = tuiViewSession
		m.view = tuiViewHelp

	case review.CmdClose:
		m.abortJob()
		m.session.Close()
		m.session = nil
		m.view = tuiViewQueue
		m.loading = true
		return m, m.fetchBacklog
	}
	return m, nil
}

func (m tuiModel) openMaskEditor() (tea.Model, tea.Cmd) {
	if err := m.session.OpenEditor(); err != nil {
		m.flash = err.Error()
		return m, nil
	}

	asset := m.session.Current()
	srcW, srcH := asset.Width, asset.Height
	if srcW <= 0 || srcH <= 0 {
		// Ingested before dimensions were recorded
		srcW, srcH = 4000, 3000
	}

	cols, rows := editorMaxCols, editorMaxRows
	if m.width > 4 && m.width-4 < cols {
		cols = m.width - 4
	}
	if m.height > 8 && m.height-8 < rows {
		rows = m.height - 8
	}

	editor, err := maskedit.NewEditor(srcW, srcH, cols, rows)
	if err != nil {
		m.session.CancelEditor()
		m.flash = err.Error()
		return m, nil
	}

	m.editor = editor
	w, h := editor.DisplaySize()
	m.cursorX, m.cursorY = w/2, h/2
	m.erase = false
	m.view = tuiViewEditor
	m.flash = ""
	return m, nil
}

// handleRejectKey handles the rejection-note modal. Keys are captured for
// typing; session shortcuts stay inert via TextInputFocused.
func (m tuiModel) handleRejectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.rejectText = ""
		m.session.TextInputFocused = false
		m.view = tuiViewSession
		return m, nil
	case "enter":
		// Empty note is permitted; the call is issued regardless
		assetID, err := m.session.StartReject()
		m.session.TextInputFocused = false
		m.view = tuiViewSession
		if err != nil {
			m.flash = err.Error()
			return m, nil
		}
		notes := m.rejectText
		m.rejectText = ""
		return m, m.rejectAsset(assetID, notes)
	case "backspace":
		if len(m.rejectText) > 0 {
			runes := []rune(m.rejectText)
			m.rejectText = string(runes[:len(runes)-1])
		}
		return m, nil
	default:
		if len(msg.Runes) > 0 {
			for _, r := range msg.Runes {
				if unicode.IsPrint(r) {
					m.rejectText += string(r)
				}
			}
		}
		return m, nil
	}
}

// handleEditorKey handles the mask editor view
func (m tuiModel) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w, h := m.editor.DisplaySize()

	switch msg.String() {
	case "esc":
		m.abortJob()
		m.teardownEditor()
		m.session.CancelEditor()
		m.view = tuiViewSession
		return m, nil

	case "up", "k":
		if m.cursorY > 0 {
			m.cursorY--
		}
	case "down", "j":
		if m.cursorY < h-1 {
			m.cursorY++
		}
	case "left", "h":
		if m.cursorX > 0 {
			m.cursorX--
		}
	case "right", "l":
		if m.cursorX < w-1 {
			m.cursorX++
		}

	case " ", "space":
		m.editor.Paint(maskedit.Point{X: m.cursorX, Y: m.cursorY}, m.brush, m.erase)
	case "x":
		m.erase = !m.erase
	case "u":
		m.editor.Undo()
	case "U", "ctrl+r":
		m.editor.Redo()
	case "C":
		m.editor.Clear()
	case "]":
		if m.brush < 9 {
			m.brush++
		}
	case "[":
		if m.brush > 1 {
			m.brush--
		}

	case "enter":
		// Empty mask never reaches the network; the action is simply
		// unavailable
		if !m.editor.HasNonEmptyMask() {
			m.flash = "paint a removal region first"
			return m, nil
		}
		if m.submitting || m.jobHandle != nil {
			return m, nil
		}
		m.submitting = true
		m.flash = ""
		return m, m.submitMask()
	}
	return m, nil
}

var filterCycle = []backlog.Filter{
	backlog.FilterPending,
	backlog.FilterAll,
	backlog.FilterApproved,
	backlog.FilterRejected,
	backlog.FilterProcessing,
}

var sortCycle = []backlog.SortOrder{
	backlog.SortPriority,
	backlog.SortRush,
	backlog.SortOldest,
	backlog.SortNewest,
}

func nextFilter(f backlog.Filter) backlog.Filter {
	for i, v := range filterCycle {
		if v == f {
			return filterCycle[(i+1)%len(filterCycle)]
		}
	}
	return filterCycle[0]
}

func nextSortOrder(o backlog.SortOrder) backlog.SortOrder {
	for i, v := range sortCycle {
		if v == o {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return sortCycle[0]
}

// handleHelpKey dismisses the shortcut overlay
func (m tuiModel) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		if m.session != nil {
			m.session.HelpOpen = false
		}
		m.view = m.helpFromView
	}
	return m, nil
}
