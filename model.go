package main

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/airock47/proctrack/internal/api"
	"github.com/airock47/proctrack/internal/config"
	"github.com/airock47/proctrack/internal/grid"
)

const appName = "ProcTrack"

// ---------------------------------------------------------------------------
// Edit targets
// ---------------------------------------------------------------------------

type editTarget int

const (
	editNone editTarget = iota
	editArrival
	editDispatch
	editRemarks
	editSearch
)

func (e editTarget) field() grid.Field {
	switch e {
	case editArrival:
		return grid.FieldArrivalDate
	case editDispatch:
		return grid.FieldDispatchDate
	case editRemarks:
		return grid.FieldRemarks
	}
	return ""
}

func (e editTarget) prompt() string {
	switch e {
	case editArrival:
		return "Arrival date (YYYY-MM-DD, empty clears)"
	case editDispatch:
		return "Dispatch date (YYYY-MM-DD, empty clears)"
	case editRemarks:
		return "Remarks"
	case editSearch:
		return "Search"
	}
	return ""
}

// ---------------------------------------------------------------------------
// Bubble Tea messages
// ---------------------------------------------------------------------------

// User-intent events. Key handlers emit these instead of mutating grid state
// inline, so every state transition flows through one named message.
type (
	refreshRequestedMsg struct{}
	saveRequestedMsg    struct{}
	exportRequestedMsg  struct{}
	rowEditedMsg        struct {
		rowID int64
		field grid.Field
		value string
	}
	filterChangedMsg struct {
		filters grid.FilterState
	}
)

// Network / worker completion events.
type (
	fetchDoneMsg struct {
		rows []grid.Row
		err  error
	}
	saveDoneMsg struct {
		report grid.SaveReport
	}
	stockDetailMsg struct {
		product string
		detail  api.StockDetail
		err     error
	}
	exportDoneMsg struct {
		path string
		err  error
	}
)

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

type model struct {
	cfg    config.Config
	log    *zap.Logger
	client *api.Client

	store   *grid.Store
	tracker *grid.Tracker
	recon   *grid.Reconciler

	filters grid.FilterState

	cursor   int
	topIndex int
	width    int
	height   int

	ready     bool
	loading   bool
	saving    bool
	status    string
	statusErr bool

	editing editTarget
	editRow int64
	input   textinput.Model

	showStock    bool
	stockProduct string
	stockDetail  api.StockDetail

	keys keyMap
}

func newModel(cfg config.Config, client *api.Client, log *zap.Logger) model {
	if log == nil {
		log = zap.NewNop()
	}
	store := grid.NewStore()
	tracker := grid.NewTracker(store)

	input := textinput.New()
	input.CharLimit = grid.MaxRemarksLen
	input.Prompt = ""

	return model{
		cfg:     cfg,
		log:     log,
		client:  client,
		store:   store,
		tracker: tracker,
		recon:   grid.NewReconciler(store, tracker, client, log.Named("reconciler")),
		filters: grid.DefaultFilterState(),
		input:   input,
		keys:    newKeyMap(),
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg { return refreshRequestedMsg{} }
}

// visibleRows is the filtered view of the canonical rows, recomputed from the
// store on demand. The pipeline only ever sees canonical values.
func (m model) visibleRows() []grid.Row {
	return grid.VisibleRows(m.store.GetAll(), m.filters)
}

// effectiveValue is what the grid displays for an editable cell: the pending
// unsaved value when one exists, else canonical.
func (m model) effectiveValue(r grid.Row, f grid.Field) string {
	if v, ok := m.tracker.PendingValue(r.ID, f); ok {
		return v
	}
	return r.FieldValue(f)
}

func (m *model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *model) setError(s string) {
	m.status = s
	m.statusErr = true
}

// cursorRow returns the row under the cursor in the current filtered view.
func (m model) cursorRow() (grid.Row, bool) {
	rows := m.visibleRows()
	if len(rows) == 0 || m.cursor < 0 || m.cursor >= len(rows) {
		return grid.Row{}, false
	}
	return rows[m.cursor], true
}

func (m *model) clampCursor() {
	total := len(m.visibleRows())
	if m.cursor >= total {
		m.cursor = total - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorInWindow()
}

func (m *model) visibleLines() int {
	if m.height == 0 {
		return 15
	}
	// header, filter bar, table header, scroll indicator, status, footer,
	// and surrounding blank lines.
	available := m.height - 9
	if available < 3 {
		available = 3
	}
	return available
}

func (m *model) ensureCursorInWindow() {
	visible := m.visibleLines()
	if visible <= 0 {
		return
	}
	if m.cursor < m.topIndex {
		m.topIndex = m.cursor
	} else if m.cursor >= m.topIndex+visible {
		m.topIndex = m.cursor - visible + 1
	}
	maxTop := len(m.visibleRows()) - visible
	if maxTop < 0 {
		maxTop = 0
	}
	if m.topIndex > maxTop {
		m.topIndex = maxTop
	}
	if m.topIndex < 0 {
		m.topIndex = 0
	}
}
