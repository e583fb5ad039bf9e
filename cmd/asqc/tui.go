package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/RamonASM/aerialshots-portal-sub005/internal/backlog"
	"github.com/RamonASM/aerialshots-portal-sub005/internal/config"
	"github.com/RamonASM/aerialshots-portal-sub005/internal/inpaint"
	"github.com/RamonASM/aerialshots-portal-sub005/internal/maskedit"
	"github.com/RamonASM/aerialshots-portal-sub005/internal/review"
	"github.com/RamonASM/aerialshots-portal-sub005/internal/storage"
)

// TUI styles using AdaptiveColor for light/dark terminal support
var (
	tuiTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "125", Dark: "205"})

	tuiStatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "242", Dark: "246"})

	tuiSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "127", Dark: "212"})

	tuiPendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "136", Dark: "226"})
	tuiApprovedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "46"})
	tuiRejectedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "196"})
	tuiRushStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "166", Dark: "208"})

	tuiHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "242", Dark: "246"})

	tuiErrStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "196"})

	tuiModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2)
)

type tuiModel struct {
	cfg  *config.Config
	db   assetStore
	orch *inpaint.Orchestrator
	clip ClipboardWriter

	view   tuiView
	width  int
	height int
	err    error
	flash  string

	// Queue view state
	filter      backlog.Filter
	sortOrder   backlog.SortOrder
	groups      []backlog.Group
	queueIdx    int
	loading     bool
	openOnStart string // listing id from the command line, opened on Init

	// Session view state
	session      *review.Session
	helpFromView tuiView

	// Reject modal state
	rejectText string

	// Mask editor state
	editor     *maskedit.Editor
	cursorX    int
	cursorY    int
	brush      int
	erase      bool
	submitting bool
	jobHandle  *inpaint.JobHandle
	jobStatus  string
}

func newTuiModel(cfg *config.Config, db *storage.DB, listingID string) (tuiModel, error) {
	orch := inpaint.NewOrchestrator(inpaint.NewClient(cfg.EditServiceURL))
	orch.PollInterval = cfg.PollInterval()
	orch.JobTimeout = cfg.JobTimeout()
	orch.ErrorBudget = cfg.PollErrorBudget

	return tuiModel{
		cfg:         cfg,
		db:          db,
		orch:        orch,
		clip:        &realClipboard{},
		view:        tuiViewQueue,
		filter:      backlog.FilterPending,
		sortOrder:   backlog.SortPriority,
		loading:     true,
		openOnStart: listingID,
		brush:       cfg.BrushDiameter,
	}, nil
}

func (m tuiModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetchBacklog, m.tickCmd()}
	if m.openOnStart != "" {
		cmds = append(cmds, m.openListing(m.openOnStart))
	}
	return tea.Batch(cmds...)
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tuiTickMsg:
		if m.view == tuiViewQueue && !m.loading {
			m.loading = true
			return m, tea.Batch(m.fetchBacklog, m.tickCmd())
		}
		return m, m.tickCmd()

	case tuiBacklogMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.groups = backlog.Rank(msg.items, m.filter, m.sortOrder, time.Now())
		if m.queueIdx >= len(m.groups) {
			m.queueIdx = len(m.groups) - 1
		}
		if m.queueIdx < 0 {
			m.queueIdx = 0
		}
		return m, nil

	case tuiAssetsMsg:
		if msg.err != nil {
			m.flash = "open listing: " + msg.err.Error()
			return m, nil
		}
		if len(msg.assets) == 0 {
			m.flash = "listing " + msg.listingID + " has no assets"
			return m, nil
		}
		session, err := review.NewSession(m.db, msg.assets)
		if err != nil {
			m.flash = err.Error()
			return m, nil
		}
		m.session = session
		m.view = tuiViewSession
		m.flash = ""
		return m, nil

	case tuiActionResultMsg:
		return m.handleActionResult(msg)

	case tuiSubmitResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.flash = msg.err.Error()
			return m, nil
		}
		if m.editor == nil {
			// The editor closed while the submit call was in flight.
			// The job has no owner, so stop its poller instead of
			// adopting it.
			msg.handle.Abort()
			return m, nil
		}
		m.jobHandle = msg.handle
		m.jobStatus = "submitting"
		return m, awaitJob(msg.handle)

	case tuiJobUpdateMsg:
		return m.handleJobUpdate(msg)

	case tuiClipboardResultMsg:
		if msg.err != nil {
			m.flash = "copy failed: " + msg.err.Error()
		} else {
			m.flash = "copied image ref"
		}
		return m, nil
	}

	return m, nil
}

func (m tuiModel) handleActionResult(msg tuiActionResultMsg) (tea.Model, tea.Cmd) {
	if m.session == nil {
		return m, nil
	}
	switch msg.action {
	case "approve":
		m.session.ResolveApprove(msg.err)
	case "reject":
		m.session.ResolveReject(msg.notes, msg.err)
	}
	if msg.err != nil {
		// Asset unchanged, reviewer retries by repeating the action
		m.flash = msg.action + " failed: " + msg.err.Error()
	} else {
		m.flash = ""
	}
	return m, nil
}

func (m tuiModel) handleJobUpdate(msg tuiJobUpdateMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		// Stream closed (terminal update already handled, or aborted)
		m.jobHandle = nil
		m.jobStatus = ""
		return m, nil
	}

	switch msg.update.Status {
	case inpaint.JobStatusCompleted:
		m.jobHandle = nil
		m.jobStatus = ""
		if m.session == nil {
			return m, nil
		}
		if err := m.session.AcceptEditResult(msg.update.ResultRef); err != nil {
			m.flash = "record edit result: " + err.Error()
			return m, nil
		}
		m.teardownEditor()
		m.view = tuiViewSession
		m.flash = "edit applied, re-review required"
		return m, nil

	case inpaint.JobStatusFailed:
		m.jobHandle = nil
		m.jobStatus = ""
		if msg.update.Reason == inpaint.ReasonTimedOut {
			m.flash = "edit is taking longer than expected, try again"
		} else {
			m.flash = "edit failed: " + msg.update.Reason
		}
		return m, nil

	default:
		m.jobStatus = string(msg.update.Status)
		if m.jobHandle != nil {
			return m, awaitJob(m.jobHandle)
		}
		return m, nil
	}
}

// teardownEditor drops the mask editor state. Any in-flight job must be
// aborted by the caller first; the editor itself holds no timers.
func (m *tuiModel) teardownEditor() {
	m.editor = nil
	m.submitting = false
	m.erase = false
}

// abortJob tears down the polling goroutine deterministically
func (m *tuiModel) abortJob() {
	if m.jobHandle != nil {
		m.jobHandle.Abort()
		m.jobHandle = nil
		m.jobStatus = ""
	}
}

func (m tuiModel) fetchBacklog() tea.Msg {
	items, err := m.db.ListBacklog(m.cfg.BacklogWindow())
	return tuiBacklogMsg{items: items, err: err}
}

func (m tuiModel) openListing(listingID string) tea.Cmd {
	return func() tea.Msg {
		assets, err := m.db.ListAssetsForListing(listingID)
		return tuiAssetsMsg{listingID: listingID, assets: assets, err: err}
	}
}

func (m tuiModel) approveAsset(assetID string) tea.Cmd {
	return func() tea.Msg {
		err := m.db.ApproveAsset(assetID)
		return tuiActionResultMsg{action: "approve", assetID: assetID, err: err}
	}
}

func (m tuiModel) rejectAsset(assetID, notes string) tea.Cmd {
	return func() tea.Msg {
		err := m.db.RejectAsset(assetID, notes)
		return tuiActionResultMsg{action: "reject", assetID: assetID, notes: notes, err: err}
	}
}

// submitMask exports the mask once, on the event loop, then runs the
// submission off it
func (m tuiModel) submitMask() tea.Cmd {
	mask := m.editor.ExportMaskAtSourceResolution()
	asset := m.session.Current()
	sourceRef := asset.SourceRef
	assetID := asset.ID
	return func() tea.Msg {
		handle, err := m.orch.Submit(context.Background(), mask, sourceRef, assetID)
		return tuiSubmitResultMsg{handle: handle, err: err}
	}
}

// awaitJob delivers the next orchestrator update as a message
func awaitJob(h *inpaint.JobHandle) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-h.Updates()
		return tuiJobUpdateMsg{update: update, ok: ok}
	}
}

func (m tuiModel) copyCurrentRef() tea.Cmd {
	ref := m.session.Current().DisplayRef()
	return func() tea.Msg {
		return tuiClipboardResultMsg{err: m.clip.WriteText(ref)}
	}
}

func (m tuiModel) tickCmd() tea.Cmd {
	interval := tickIntervalIdle
	for _, g := range m.groups {
		if g.PendingCount > 0 {
			interval = tickIntervalActive
			break
		}
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tuiTickMsg(t)
	})
}
