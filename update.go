package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/airock47/proctrack/internal/grid"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshRequestedMsg:
		return m.handleRefreshRequested()
	case fetchDoneMsg:
		return m.handleFetchDone(msg)
	case saveRequestedMsg:
		return m.handleSaveRequested()
	case saveDoneMsg:
		return m.handleSaveDone(msg)
	case rowEditedMsg:
		return m.handleRowEdited(msg)
	case filterChangedMsg:
		return m.handleFilterChanged(msg)
	case exportRequestedMsg:
		return m.handleExportRequested()
	case exportDoneMsg:
		return m.handleExportDone(msg)
	case stockDetailMsg:
		return m.handleStockDetail(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorInWindow()
		return m, nil
	case tea.KeyMsg:
		switch {
		case m.showStock:
			return m.updateStockOverlay(msg)
		case m.editing != editNone:
			return m.updateEditing(msg)
		default:
			return m.updateMain(msg)
		}
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// Event handlers
// ---------------------------------------------------------------------------

func (m model) handleRefreshRequested() (tea.Model, tea.Cmd) {
	if m.saving {
		m.setStatus("Busy saving; try again in a moment.")
		return m, nil
	}
	m.loading = true
	m.setStatus("Loading…")
	return m, fetchCmd(m.client)
}

func (m model) handleFetchDone(msg fetchDoneMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		// Fatal to rendering: show it, leave any prior table state untouched.
		m.log.Error("fetch failed", zap.Error(msg.err))
		m.setError(fmt.Sprintf("Load failed: %v", msg.err))
		return m, nil
	}
	// Replace swaps canonical rows only; pending edits stay in the tracker
	// and re-diff against the refreshed values at save time.
	m.store.Replace(msg.rows)
	m.ready = true
	m.clampCursor()
	dirty := len(m.tracker.DirtyIDs())
	if dirty > 0 {
		m.setStatus(fmt.Sprintf("Loaded %d rows. %d unsaved row(s) kept.", m.store.Len(), dirty))
	} else {
		m.setStatus(fmt.Sprintf("Loaded %d rows.", m.store.Len()))
	}
	return m, nil
}

func (m model) handleSaveRequested() (tea.Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	if m.loading {
		// The in-flight fetch will Replace the store when it lands; a save
		// started now would read and mutate the same store concurrently.
		// The rows stay dirty, so nothing is lost by waiting.
		m.setStatus("Refresh in progress; save again once it finishes.")
		return m, nil
	}
	m.saving = true
	m.setStatus("Saving…")
	return m, saveCmd(m.recon)
}

func (m model) handleSaveDone(msg saveDoneMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	report := msg.report
	switch {
	case report.NoPending:
		m.setStatus("Nothing to save.")
	case len(report.Failed) == 0:
		m.setStatus(fmt.Sprintf("Saved %d row(s).", len(report.Succeeded)))
	default:
		// One aggregate summary, not a notification per failure.
		m.setError(fmt.Sprintf("Saved %d row(s); %d field(s) across %d row(s) failed and stay unsaved.",
			len(report.Succeeded), len(report.Failed), report.FailedRowCount()))
	}
	return m, nil
}

func (m model) handleRowEdited(msg rowEditedMsg) (tea.Model, tea.Cmd) {
	if err := m.tracker.RecordEdit(msg.rowID, msg.field, msg.value); err != nil {
		var notFound *grid.RowNotFoundError
		if errors.As(err, &notFound) {
			m.log.Error("edit references unknown row", zap.Int64("row_id", msg.rowID), zap.Error(err))
		}
		m.setError(fmt.Sprintf("Edit failed: %v", err))
		return m, nil
	}
	m.setStatus(fmt.Sprintf("Row marked unsaved (%d pending).", len(m.tracker.DirtyIDs())))
	return m, nil
}

func (m model) handleFilterChanged(msg filterChangedMsg) (tea.Model, tea.Cmd) {
	m.filters = msg.filters
	m.cursor = 0
	m.topIndex = 0
	m.setStatus(filterSummary(m.filters))
	return m, nil
}

func (m model) handleExportRequested() (tea.Model, tea.Cmd) {
	rows := m.visibleRows()
	if len(rows) == 0 {
		m.setStatus("Nothing to export under the current filters.")
		return m, nil
	}
	m.setStatus("Exporting…")
	return m, exportCmd(m.cfg.Export.Dir, rows)
}

func (m model) handleExportDone(msg exportDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Error("export failed", zap.Error(msg.err))
		m.setError(fmt.Sprintf("Export failed: %v", msg.err))
		return m, nil
	}
	m.setStatus("Exported to " + msg.path)
	return m, nil
}

func (m model) handleStockDetail(msg stockDetailMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setError(fmt.Sprintf("Stock detail failed: %v", msg.err))
		return m, nil
	}
	m.showStock = true
	m.stockProduct = msg.product
	m.stockDetail = msg.detail
	return m, nil
}

// ---------------------------------------------------------------------------
// Key input
// ---------------------------------------------------------------------------

func (m model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.ensureCursorInWindow()
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visibleRows())-1 {
			m.cursor++
			m.ensureCursorInWindow()
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.saving {
			m.setStatus("Busy saving; try again in a moment.")
			return m, nil
		}
		return m, emit(refreshRequestedMsg{})

	case key.Matches(msg, m.keys.Save):
		if m.saving {
			return m, nil
		}
		return m, emit(saveRequestedMsg{})

	case key.Matches(msg, m.keys.Export):
		return m, emit(exportRequestedMsg{})

	case key.Matches(msg, m.keys.Arrival):
		return m.beginEdit(editArrival)
	case key.Matches(msg, m.keys.Dispatch):
		return m.beginEdit(editDispatch)
	case key.Matches(msg, m.keys.Remarks):
		return m.beginEdit(editRemarks)

	case key.Matches(msg, m.keys.Status):
		return m.cycleGoodsStatus()

	case key.Matches(msg, m.keys.Search):
		m.editing = editSearch
		m.input.SetValue(m.filters.Search)
		m.input.CursorEnd()
		m.input.Focus()
		return m, nil

	case key.Matches(msg, m.keys.Type):
		fs := m.filters
		fs.SourceType = cycleValue(grid.SourceTypeCycle, fs.SourceType)
		return m, emit(filterChangedMsg{filters: fs})

	case key.Matches(msg, m.keys.Category):
		fs := m.filters
		fs.Category = cycleValue(grid.CategoryCycle, fs.Category)
		return m, emit(filterChangedMsg{filters: fs})

	case key.Matches(msg, m.keys.Life):
		fs := m.filters
		fs.Lifecycle = cycleValue(grid.LifecycleCycle, fs.Lifecycle)
		return m, emit(filterChangedMsg{filters: fs})

	case key.Matches(msg, m.keys.Stock):
		row, ok := m.cursorRow()
		if !ok {
			return m, nil
		}
		m.setStatus("Fetching stock detail…")
		return m, stockDetailCmd(m.client, row)
	}
	return m, nil
}

// beginEdit opens the inline editor for the cursor row, seeded with the
// pending value when one exists so a second edit continues where the first
// left off.
func (m model) beginEdit(target editTarget) (tea.Model, tea.Cmd) {
	if m.saving {
		m.setStatus("Busy saving; try again in a moment.")
		return m, nil
	}
	row, ok := m.cursorRow()
	if !ok {
		m.setStatus("No row selected.")
		return m, nil
	}
	m.editing = target
	m.editRow = row.ID
	m.input.SetValue(m.effectiveValue(row, target.field()))
	m.input.CursorEnd()
	m.input.Focus()
	return m, nil
}

// cycleGoodsStatus steps the cursor row's goods status through the fixed
// option list, recording each step as a pending edit.
func (m model) cycleGoodsStatus() (tea.Model, tea.Cmd) {
	if m.saving {
		m.setStatus("Busy saving; try again in a moment.")
		return m, nil
	}
	row, ok := m.cursorRow()
	if !ok {
		m.setStatus("No row selected.")
		return m, nil
	}
	next := cycleValue(grid.StatusOptions, m.effectiveValue(row, grid.FieldGoodsStatus))
	return m, emit(rowEditedMsg{rowID: row.ID, field: grid.FieldGoodsStatus, value: next})
}

func (m model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.editing = editNone
		m.input.Blur()
		m.setStatus("Edit cancelled.")
		return m, nil

	case key.Matches(msg, m.keys.Accept):
		value := m.input.Value()
		target := m.editing
		rowID := m.editRow
		m.editing = editNone
		m.input.Blur()

		if target == editSearch {
			fs := m.filters
			fs.Search = strings.TrimSpace(value)
			return m, emit(filterChangedMsg{filters: fs})
		}
		if f := target.field(); f == grid.FieldArrivalDate || f == grid.FieldDispatchDate {
			if norm := grid.NormalizeDate(value); norm != "" && !validISODate(norm) {
				m.setError(fmt.Sprintf("Not a date: %q", value))
				return m, nil
			}
		}
		return m, emit(rowEditedMsg{rowID: rowID, field: target.field(), value: value})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateStockOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	m.showStock = false
	m.setStatus("")
	return m, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// emit wraps a user-intent event in a command so it travels through the same
// message stream as network completions.
func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func cycleValue(cycle []string, current string) string {
	for i, v := range cycle {
		if v == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	if len(cycle) == 0 {
		return current
	}
	return cycle[0]
}

func validISODate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func filterSummary(fs grid.FilterState) string {
	parts := []string{
		"type=" + fs.SourceType,
		"category=" + fs.Category,
		"lifecycle=" + fs.Lifecycle,
	}
	if strings.TrimSpace(fs.Search) != "" {
		parts = append(parts, fmt.Sprintf("search=%q", fs.Search))
	}
	return "Filters: " + strings.Join(parts, "  ")
}
