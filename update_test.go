package main

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/airock47/proctrack/internal/api"
	"github.com/airock47/proctrack/internal/config"
	"github.com/airock47/proctrack/internal/grid"
)

func testRows() []grid.Row {
	return []grid.Row{
		{
			ID: 1, PONumber: "OO2024001", ProductCode: "1001", ProductName: "Widget A",
			ExcelStatus: "進行中", GoodsStatus: "生產中", Quantity: 10, WarehouseQty: 2,
			Warehouse: "中壢",
		},
		{
			ID: 2, PONumber: "PO2024002", ProductCode: "2101", ProductName: "Gasket B",
			ExcelStatus: "進行中", GoodsStatus: "海運運送中", Quantity: 5,
			Warehouse: "台中", ArrivalDate: "2026-08-01",
		},
		{
			ID: 3, PONumber: "PO2024003", ProductCode: "9999", ProductName: "Legacy C",
			ExcelStatus: "結案", GoodsStatus: "結案", Quantity: 4,
			Warehouse: "高雄",
		},
	}
}

// newTestModel builds a model with canonical rows already loaded. The client
// points at an unroutable address; tests below never run network commands.
func newTestModel(t *testing.T) model {
	t.Helper()
	client := api.New("http://127.0.0.1:1", time.Second, zap.NewNop())
	m := newModel(config.Config{}, client, zap.NewNop())
	next, _ := m.Update(fetchDoneMsg{rows: testRows()})
	return next.(model)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func typeInput(t *testing.T, m model, s string) model {
	t.Helper()
	for _, r := range s {
		next, _ := m.Update(keyMsg(string(r)))
		m = next.(model)
	}
	return m
}

// press feeds one key and, when the handler emits an intent message, feeds
// that message straight back through Update.
func press(t *testing.T, m model, k string) model {
	t.Helper()
	next, cmd := m.Update(keyMsg(k))
	m = next.(model)
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case rowEditedMsg, filterChangedMsg, refreshRequestedMsg, saveRequestedMsg, exportRequestedMsg:
		next, _ = m.Update(msg)
		return next.(model)
	default:
		return m
	}
}

func TestFetchDonePopulatesStore(t *testing.T) {
	m := newTestModel(t)
	if m.store.Len() != 3 {
		t.Fatalf("store.Len() = %d, want 3", m.store.Len())
	}
	if !m.ready {
		t.Fatal("expected ready after successful fetch")
	}
	if !strings.Contains(m.status, "Loaded 3 rows") {
		t.Fatalf("unexpected status: %q", m.status)
	}
	// Default lifecycle filter hides the closed row.
	if got := len(m.visibleRows()); got != 2 {
		t.Fatalf("visible rows = %d, want 2", got)
	}
}

func TestFetchErrorKeepsExistingRows(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(fetchDoneMsg{err: &api.FetchError{Status: 500, Message: "boom"}})
	got := next.(model)
	if got.store.Len() != 3 {
		t.Fatalf("store.Len() = %d, want 3 after failed refresh", got.store.Len())
	}
	if !got.statusErr {
		t.Fatalf("expected error status, got %q", got.status)
	}
}

func TestEditArrivalDateMarksRowDirty(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(keyMsg("a"))
	m = next.(model)
	if m.editing != editArrival {
		t.Fatalf("editing = %v, want editArrival", m.editing)
	}
	m.input.SetValue("")
	m = typeInput(t, m, "2026-09-01")
	m = press(t, m, "enter")

	if m.editing != editNone {
		t.Fatal("expected edit mode to close on enter")
	}
	if !m.tracker.IsDirty(1) {
		t.Fatal("row 1 should be dirty after edit")
	}
	row, _ := m.store.GetByID(1)
	if got := m.effectiveValue(row, grid.FieldArrivalDate); got != "2026-09-01" {
		t.Fatalf("effective arrival = %q, want 2026-09-01", got)
	}
	if row.ArrivalDate != "" {
		t.Fatalf("canonical arrival should be untouched, got %q", row.ArrivalDate)
	}
}

func TestEditInvalidDateRejected(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(keyMsg("a"))
	m = next.(model)
	m.input.SetValue("")
	m = typeInput(t, m, "2026-13-40")
	m = press(t, m, "enter")

	if !m.statusErr {
		t.Fatalf("expected rejection, status = %q", m.status)
	}
	if m.tracker.IsDirty(1) {
		t.Fatal("row 1 should not be dirty after a rejected date")
	}
}

func TestEditEscapeCancels(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(keyMsg("e"))
	m = next.(model)
	m = typeInput(t, m, "abandoned")
	next, _ = m.Update(keyMsg("esc"))
	m = next.(model)

	if m.editing != editNone {
		t.Fatal("expected edit mode to close on esc")
	}
	if m.tracker.IsDirty(1) {
		t.Fatal("cancelled edit must not mark the row dirty")
	}
}

func TestStatusKeyCyclesGoodsStatus(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(keyMsg("g"))
	if cmd == nil {
		t.Fatal("expected an edit command")
	}
	msg, ok := cmd().(rowEditedMsg)
	if !ok {
		t.Fatalf("expected rowEditedMsg, got %T", cmd())
	}
	if msg.rowID != 1 || msg.field != grid.FieldGoodsStatus {
		t.Fatalf("unexpected edit target: %+v", msg)
	}
	// Row 1 sits on the first option; one press moves to the second.
	if msg.value != grid.StatusOptions[1] {
		t.Fatalf("cycled status = %q, want %q", msg.value, grid.StatusOptions[1])
	}
}

func TestSearchNarrowsView(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(keyMsg("/"))
	m = next.(model)
	if m.editing != editSearch {
		t.Fatalf("editing = %v, want editSearch", m.editing)
	}
	m.input.SetValue("")
	m = typeInput(t, m, "widget")
	m = press(t, m, "enter")

	if m.filters.Search != "widget" {
		t.Fatalf("search = %q, want widget", m.filters.Search)
	}
	rows := m.visibleRows()
	if len(rows) != 1 || rows[0].ID != 1 {
		t.Fatalf("visible rows = %+v, want only row 1", rows)
	}
}

func TestFilterKeysCycle(t *testing.T) {
	m := newTestModel(t)
	m.cursor = 1

	m = press(t, m, "t")
	if m.filters.SourceType != grid.SourceTypeOO {
		t.Fatalf("source type = %q, want OO", m.filters.SourceType)
	}
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want 0 after filter change", m.cursor)
	}

	m = press(t, m, "c")
	if m.filters.Category != "10" {
		t.Fatalf("category = %q, want 10", m.filters.Category)
	}

	m = press(t, m, "s")
	if m.filters.Lifecycle != grid.LifecycleClosed {
		t.Fatalf("lifecycle = %q, want closed", m.filters.Lifecycle)
	}
}

func TestSaveDoneStatusSummaries(t *testing.T) {
	m := newTestModel(t)
	m.saving = true

	next, _ := m.Update(saveDoneMsg{report: grid.SaveReport{NoPending: true}})
	got := next.(model)
	if got.saving {
		t.Fatal("saving flag should clear")
	}
	if got.status != "Nothing to save." {
		t.Fatalf("unexpected status: %q", got.status)
	}

	next, _ = m.Update(saveDoneMsg{report: grid.SaveReport{Succeeded: []int64{1, 2}}})
	got = next.(model)
	if got.status != "Saved 2 row(s)." || got.statusErr {
		t.Fatalf("unexpected status: %q err=%v", got.status, got.statusErr)
	}

	next, _ = m.Update(saveDoneMsg{report: grid.SaveReport{
		Succeeded: []int64{1},
		Failed: []grid.FieldFailure{
			{RowID: 2, Field: grid.FieldRemarks, Message: "too long"},
		},
	}})
	got = next.(model)
	if !got.statusErr {
		t.Fatal("partial failure should render as an error status")
	}
	if !strings.Contains(got.status, "Saved 1 row(s)") || !strings.Contains(got.status, "1 field(s)") {
		t.Fatalf("unexpected status: %q", got.status)
	}
}

func TestSavingGuardBlocksMutation(t *testing.T) {
	m := newTestModel(t)
	m.saving = true

	for _, k := range []string{"a", "d", "e", "g"} {
		next, cmd := m.Update(keyMsg(k))
		got := next.(model)
		if got.editing != editNone {
			t.Fatalf("key %q opened an editor while saving", k)
		}
		if cmd != nil {
			t.Fatalf("key %q produced a command while saving", k)
		}
	}

	next, cmd := m.Update(keyMsg("r"))
	got := next.(model)
	if cmd != nil {
		t.Fatal("refresh should be blocked while saving")
	}
	if !strings.Contains(got.status, "Busy saving") {
		t.Fatalf("unexpected status: %q", got.status)
	}
}

func TestSaveBlockedWhileRefreshInFlight(t *testing.T) {
	m := newTestModel(t)
	if err := m.tracker.RecordEdit(1, grid.FieldRemarks, "pending"); err != nil {
		t.Fatalf("RecordEdit: %v", err)
	}

	// Start a refresh but do not run its command; the fetch is in flight.
	next, cmd := m.Update(refreshRequestedMsg{})
	m = next.(model)
	if cmd == nil || !m.loading {
		t.Fatal("expected refresh to start")
	}

	next, cmd = m.Update(saveRequestedMsg{})
	m = next.(model)
	if cmd != nil {
		t.Fatal("save must not start while a refresh is in flight")
	}
	if m.saving {
		t.Fatal("saving flag must stay clear")
	}
	if !strings.Contains(m.status, "Refresh in progress") {
		t.Fatalf("unexpected status: %q", m.status)
	}
	if !m.tracker.IsDirty(1) {
		t.Fatal("refused save must leave the row dirty")
	}

	// Once the fetch lands, saving is allowed again.
	next, _ = m.Update(fetchDoneMsg{rows: testRows()})
	m = next.(model)
	next, cmd = m.Update(saveRequestedMsg{})
	m = next.(model)
	if cmd == nil || !m.saving {
		t.Fatal("save should start after the refresh completes")
	}
}

func TestRefreshPreservesDirtyEdits(t *testing.T) {
	m := newTestModel(t)
	if err := m.tracker.RecordEdit(1, grid.FieldRemarks, "keep me"); err != nil {
		t.Fatalf("RecordEdit: %v", err)
	}

	refreshed := testRows()
	refreshed[0].Remarks = "server side"
	next, _ := m.Update(fetchDoneMsg{rows: refreshed})
	m = next.(model)

	if !m.tracker.IsDirty(1) {
		t.Fatal("pending edit must survive a refresh")
	}
	row, _ := m.store.GetByID(1)
	if row.Remarks != "server side" {
		t.Fatalf("canonical remarks = %q, want server side", row.Remarks)
	}
	if got := m.effectiveValue(row, grid.FieldRemarks); got != "keep me" {
		t.Fatalf("effective remarks = %q, want keep me", got)
	}
	if !strings.Contains(m.status, "1 unsaved row(s) kept") {
		t.Fatalf("unexpected status: %q", m.status)
	}
}

func TestCursorNavigationClamps(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(keyMsg("j"))
	m = next.(model)
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
	next, _ = m.Update(keyMsg("j"))
	m = next.(model)
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1 at bottom of 2 visible rows", m.cursor)
	}
	next, _ = m.Update(keyMsg("k"))
	m = next.(model)
	next, _ = m.Update(keyMsg("k"))
	m = next.(model)
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want 0 at top", m.cursor)
	}
}

func TestStockDetailOpensOverlay(t *testing.T) {
	m := newTestModel(t)

	detail := api.StockDetail{
		Warehouses: []api.WarehouseQty{{Name: "中壢", Qty: 7}, {Name: "台中", Qty: 3}},
		Total:      10,
	}
	next, _ := m.Update(stockDetailMsg{product: "Widget A", detail: detail})
	m = next.(model)
	if !m.showStock {
		t.Fatal("expected stock overlay to open")
	}

	next, _ = m.Update(keyMsg(" "))
	m = next.(model)
	if m.showStock {
		t.Fatal("any key should close the overlay")
	}
}

func TestExportWithNoVisibleRows(t *testing.T) {
	m := newTestModel(t)
	m.filters.Search = "no such product"

	next, cmd := m.Update(exportRequestedMsg{})
	m = next.(model)
	if cmd != nil {
		t.Fatal("empty view should not start an export")
	}
	if !strings.Contains(m.status, "Nothing to export") {
		t.Fatalf("unexpected status: %q", m.status)
	}
}
