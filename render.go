package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/airock47/proctrack/internal/grid"
)

// ---------------------------------------------------------------------------
// Styles, Catppuccin Mocha themed
// ---------------------------------------------------------------------------

var (
	headerBarStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorMantle).
			Padding(0, 2)

	headerAppStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Bold(true)

	chipActiveStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Background(colorSurface0).
			Bold(true).
			Padding(0, 1)

	chipIdleStyle = lipgloss.NewStyle().
			Foreground(colorOverlay1).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			Background(colorSurface0).
			Padding(0, 2)

	statusErrStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Background(colorSurface0).
			Bold(true).
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Background(colorMantle).
			Padding(0, 2)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(colorSubtext0).
				Bold(true)

	cursorStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	dirtyStyle  = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	scrollStyle = lipgloss.NewStyle().Foreground(colorOverlay1)

	editPromptStyle = lipgloss.NewStyle().Foreground(colorLavender).Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
)

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m model) View() string {
	rows := m.visibleRows()

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderFilterBar())
	b.WriteString("\n\n")
	b.WriteString(m.renderTable(rows))
	b.WriteString("\n")
	b.WriteString(m.renderInputLine())
	body := b.String()

	statusLine := m.renderStatus()
	footer := m.renderFooter(m.keys.ShortHelp())

	if m.showStock {
		return m.composeStockModal(body, statusLine, footer)
	}
	return m.placeWithFooter(body, statusLine, footer)
}

func (m model) renderHeader() string {
	name := headerAppStyle.Render(appName)
	counts := fmt.Sprintf("%d/%d rows", len(m.visibleRows()), m.store.Len())
	if dirty := len(m.tracker.DirtyIDs()); dirty > 0 {
		counts += dirtyStyle.Background(colorMantle).Render(fmt.Sprintf("  ● %d unsaved", dirty))
	}
	if m.loading {
		counts += "  loading…"
	}
	if m.saving {
		counts += "  saving…"
	}
	content := name + "  " + counts
	if m.width <= 0 {
		return headerBarStyle.Render(content)
	}
	return headerBarStyle.Width(m.width).Render(content)
}

// renderFilterBar shows one chip per filter dimension, highlighted when the
// dimension narrows the view.
func (m model) renderFilterBar() string {
	chip := func(label, value, idle string) string {
		text := label + ":" + value
		if value == idle {
			return chipIdleStyle.Render(text)
		}
		return chipActiveStyle.Render(text)
	}
	parts := []string{
		chip("type", m.filters.SourceType, grid.FilterAll),
		chip("category", m.filters.Category, grid.FilterAll),
		chip("lifecycle", m.filters.Lifecycle, grid.LifecycleActive),
	}
	if s := strings.TrimSpace(m.filters.Search); s != "" {
		parts = append(parts, chipActiveStyle.Render("search:"+s))
	} else {
		parts = append(parts, chipIdleStyle.Render("search:-"))
	}
	return " " + strings.Join(parts, " ")
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

type column struct {
	title string
	width int
}

func (m model) tableColumns() []column {
	width := m.width
	if width <= 0 {
		width = 120
	}
	// Fixed columns first; product name and remarks split the remainder.
	cols := []column{
		{"", 2},            // dirty marker
		{"PO", 12},
		{"Code", 10},
		{"Name", 0},
		{"Status", 12},
		{"Qty", 6},
		{"Out", 6},
		{"Arrival", 11},
		{"Dispatch", 11},
		{"WH", 6},
		{"Remarks", 0},
	}
	fixed := 0
	for _, c := range cols {
		if c.width > 0 {
			fixed += c.width + 2
		}
	}
	flex := (width - fixed - 6) / 2
	if flex < 8 {
		flex = 8
	}
	for i := range cols {
		if cols[i].width == 0 {
			cols[i].width = flex
		}
	}
	return cols
}

func (m model) renderTable(rows []grid.Row) string {
	cols := m.tableColumns()

	headerCells := make([]string, len(cols))
	for i, c := range cols {
		headerCells[i] = padRight(c.title, c.width)
	}
	lines := []string{"  " + tableHeaderStyle.Render(strings.Join(headerCells, "  "))}

	if !m.ready && m.loading {
		lines = append(lines, "", "  Loading…")
		return strings.Join(lines, "\n")
	}
	if len(rows) == 0 {
		lines = append(lines, "", "  No rows match the current filters.")
		return strings.Join(lines, "\n")
	}

	visible := m.visibleLines()
	end := m.topIndex + visible
	if end > len(rows) {
		end = len(rows)
	}
	for i := m.topIndex; i < end; i++ {
		lines = append(lines, m.renderRow(rows[i], cols, i == m.cursor))
	}

	start := m.topIndex + 1
	lines = append(lines, scrollStyle.Render(
		fmt.Sprintf("  showing %d-%d of %d", start, end, len(rows))))

	return strings.Join(lines, "\n")
}

func (m model) renderRow(r grid.Row, cols []column, selected bool) string {
	marker := "  "
	if m.tracker.IsDirty(r.ID) {
		marker = dirtyStyle.Render("● ")
	}
	status := m.effectiveValue(r, grid.FieldGoodsStatus)
	statusCell := lipgloss.NewStyle().
		Foreground(goodsStatusColor(status)).
		Render(padRight(truncate(status, cols[4].width), cols[4].width))

	cells := []string{
		marker,
		padRight(truncate(r.PONumber, cols[1].width), cols[1].width),
		padRight(truncate(r.ProductCode, cols[2].width), cols[2].width),
		padRight(truncate(r.ProductName, cols[3].width), cols[3].width),
		statusCell,
		padRight(fmt.Sprintf("%d", r.Quantity), cols[5].width),
		padRight(fmt.Sprintf("%d", r.Outstanding()), cols[6].width),
		padRight(truncate(m.effectiveValue(r, grid.FieldArrivalDate), cols[7].width), cols[7].width),
		padRight(truncate(m.effectiveValue(r, grid.FieldDispatchDate), cols[8].width), cols[8].width),
		padRight(truncate(r.Warehouse, cols[9].width), cols[9].width),
		padRight(truncate(m.effectiveValue(r, grid.FieldRemarks), cols[10].width), cols[10].width),
	}
	line := strings.Join(cells, "  ")
	if selected {
		return cursorStyle.Render("> ") + line
	}
	return "  " + line
}

// ---------------------------------------------------------------------------
// Input, status and chrome
// ---------------------------------------------------------------------------

func (m model) renderInputLine() string {
	if m.editing == editNone {
		return ""
	}
	return " " + editPromptStyle.Render(m.editing.prompt()+":") + " " + m.input.View()
}

func (m model) renderStatus() string {
	flat := strings.ReplaceAll(m.status, "\n", " ")
	style := statusBarStyle
	if m.statusErr {
		style = statusErrStyle
	}
	if m.width == 0 {
		return style.Render(flat)
	}
	return style.Width(m.width).Render(flat)
}

func (m model) renderFooter(bindings []key.Binding) string {
	bg := colorMantle
	keyStyle := helpKeyStyle.Background(bg)
	descStyle := helpDescStyle.Background(bg)
	space := lipgloss.NewStyle().Background(bg).Render(" ")
	sep := lipgloss.NewStyle().Background(bg).Render("  ")

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		if help.Key == "" && help.Desc == "" {
			continue
		}
		parts = append(parts, keyStyle.Render(help.Key)+space+descStyle.Render(help.Desc))
	}
	content := strings.Join(parts, sep)

	if m.width == 0 {
		return footerStyle.Render(content)
	}
	return footerStyle.Width(m.width).Render(content)
}

func (m model) placeWithFooter(body, statusLine, footer string) string {
	if m.height == 0 {
		return body + "\n\n" + statusLine + "\n" + footer
	}
	contentHeight := m.height - 2
	if contentHeight < 1 {
		contentHeight = 1
	}
	if lipgloss.Height(body) >= contentHeight {
		return body + "\n" + statusLine + "\n" + footer
	}
	main := lipgloss.Place(m.width, contentHeight, lipgloss.Left, lipgloss.Top, body)
	// Full-width lines prevent ghosting from previous frames.
	lines := splitLines(main)
	for i, line := range lines {
		lines[i] = padRight(line, m.width)
	}
	main = strings.Join(lines, "\n")
	return main + "\n" + statusLine + "\n" + footer
}

// ---------------------------------------------------------------------------
// Stock detail modal
// ---------------------------------------------------------------------------

func (m model) composeStockModal(base, statusLine, footer string) string {
	baseView := m.placeWithFooter(base, statusLine, footer)
	modal := modalStyle.Render(m.stockView())
	if m.height == 0 || m.width == 0 {
		return baseView + "\n\n" + modal
	}
	targetHeight := m.height - 2
	if targetHeight < 1 {
		targetHeight = 1
	}
	return overlayCenter(baseView, modal, m.width, targetHeight)
}

func (m model) stockView() string {
	title := headerAppStyle.Render("Stock: " + m.stockProduct)
	labelStyle := lipgloss.NewStyle().Foreground(colorSubtext0)
	valueStyle := lipgloss.NewStyle().Foreground(colorPeach)

	lines := []string{title, ""}
	for _, wh := range m.stockDetail.Warehouses {
		lines = append(lines,
			labelStyle.Render(padRight(wh.Name, 10))+" "+valueStyle.Render(fmt.Sprintf("%8d", wh.Qty)))
	}
	lines = append(lines, "",
		labelStyle.Render(padRight("Total", 10))+" "+valueStyle.Render(fmt.Sprintf("%8d", m.stockDetail.Total)))
	lines = append(lines, "", helpDescStyle.Render("any key closes"))
	return strings.Join(lines, "\n")
}
