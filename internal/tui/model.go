// Package tui provides the Bubble Tea results interface.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trafficlens/internal/model"
	"trafficlens/internal/stats"
	"trafficlens/internal/store"
)

const (
	tabOverview = iota
	tabHours
	tabHistory
)

const histogramHeight = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea results UI.
type Model struct {
	store  *store.Store
	filter model.HistoryFilter

	summary *model.Summary
	label   string
	source  string

	runs   []model.RunAggregate
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	hourTable table.Model
	runTable  table.Model

	width  int
	height int

	junctionFilter string
	filterMode     bool
	filterInput    textinput.Model
}

// NewModel constructs a results UI model. A nil summary starts on the
// History tab.
func NewModel(st *store.Store, summary *model.Summary, label, source string, filter model.HistoryFilter) *Model {
	m := &Model{
		store:   st,
		filter:  filter,
		summary: summary,
		label:   label,
		source:  source,
		tabs:    []string{"Overview", "Hours", "History"},
	}
	if summary == nil {
		m.activeTab = tabHistory
	}
	m.overview = viewport.New(0, 0)
	m.initFilterInput()
	m.hourTable = table.New(table.WithHeight(1))
	m.hourTable.SetStyles(resultTableStyles())
	m.runTable = table.New(table.WithHeight(1))
	m.runTable.SetStyles(resultTableStyles())
	m.refreshHistory()
	m.rebuildTables()
	m.renderOverview()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilterInput(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startFilter()
		case "enter":
			if m.activeTab == tabHistory {
				m.loadSelectedRun()
				return m, tea.ClearScreen
			}
			return m, nil
		case "g", "home":
			switch m.activeTab {
			case tabHours:
				m.hourTable.GotoTop()
			case tabHistory:
				m.runTable.GotoTop()
			default:
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			switch m.activeTab {
			case tabHours:
				m.hourTable.GotoBottom()
			case tabHistory:
				m.runTable.GotoBottom()
			default:
				m.overview.GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			switch m.activeTab {
			case tabHours:
				m.hourTable, cmd = m.hourTable.Update(msg)
			case tabHistory:
				m.runTable, cmd = m.runTable.Update(msg)
			default:
				m.overview, cmd = m.overview.Update(msg)
			}
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.filterMode {
		return fitLines(m.renderFilterModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initFilterInput() {
	input := textinput.New()
	input.Prompt = "Junction: "
	input.Placeholder = "substring, empty for all"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	m.filterInput = input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.hourTable.SetWidth(m.width)
	m.hourTable.SetHeight(maxInt(1, bodyHeight-1))
	m.runTable.SetWidth(m.width)
	m.runTable.SetHeight(maxInt(1, bodyHeight-1))
	promptWidth := lipgloss.Width(m.filterInput.Prompt)
	m.filterInput.Width = maxInt(10, modalInnerWidth(m.width)-promptWidth)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	m.hourTable.Blur()
	m.runTable.Blur()
	switch m.activeTab {
	case tabHours:
		m.hourTable.Focus()
	case tabHistory:
		m.runTable.Focus()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	dataset := "none"
	if m.label != "" {
		dataset = m.label
	} else if m.source != "" {
		dataset = m.source
	}
	junction := m.junctionFilter
	if junction == "" {
		junction = "all"
	}
	summary := fmt.Sprintf("Dataset: %s  Junction: %s", dataset, junction)
	summary = truncateLine(summary, m.width)
	return tabs + "\n" + padLines(headerStyle.Render(summary), m.width)
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Scroll: up/down  Junction: /  Quit: q"
	if m.activeTab == tabHistory {
		help = "Nav: left/right  Scroll: up/down  Load run: enter  Junction: /  Quit: q"
	}
	if m.errMsg != "" {
		return headerStyle.Render(help) + "\n" + errorStyle.Render(m.errMsg)
	}
	return headerStyle.Render(help)
}

func (m *Model) renderBody() string {
	switch m.activeTab {
	case tabHours:
		if m.summary == nil || m.summary.TotalVehicles == 0 {
			return "No records found."
		}
		return tableMutedStyle.Render(m.hourTable.View())
	case tabHistory:
		if len(m.runs) == 0 {
			return "No runs stored yet."
		}
		return tableMutedStyle.Render(m.runTable.View())
	default:
		return m.overview.View()
	}
}

func (m *Model) renderFilterModal() string {
	title := cardValueStyle.Render("Filter Junctions")
	body := []string{
		title,
		m.filterInput.View(),
		headerStyle.Render("Case-insensitive substring. Empty shows all."),
		headerStyle.Render("Enter to apply / Esc to cancel"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterInput.SetValue(m.junctionFilter)
	return m, m.filterInput.Focus()
}

func (m *Model) updateFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.filterMode = false
		return m, nil
	case tea.KeyEnter:
		m.junctionFilter = strings.TrimSpace(m.filterInput.Value())
		m.filterMode = false
		m.rebuildTables()
		m.renderOverview()
		return m, tea.ClearScreen
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m *Model) refreshHistory() {
	runs, err := m.store.ListRuns(context.Background(), m.filter)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.runs = runs
}

func (m *Model) loadSelectedRun() {
	if len(m.runs) == 0 {
		return
	}
	idx := m.runTable.Cursor()
	if idx < 0 || idx >= len(m.runs) {
		return
	}
	run := m.runs[idx]
	counts, err := m.store.GetHourCounts(context.Background(), run.RunID)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	summary := stats.SummaryFromRun(run, counts)
	m.summary = &summary
	m.label = run.Label
	m.source = run.SourcePath
	m.errMsg = ""
	m.activeTab = tabOverview
	m.rebuildTables()
	m.renderOverview()
}

// filteredJunctions returns the junction names matching the active filter.
func (m *Model) filteredJunctions() []string {
	if m.summary == nil {
		return nil
	}
	junctions := stats.SortedJunctions(m.summary.JunctionHourly)
	if m.junctionFilter == "" {
		return junctions
	}
	needle := strings.ToLower(m.junctionFilter)
	out := make([]string, 0, len(junctions))
	for _, name := range junctions {
		if strings.Contains(strings.ToLower(name), needle) {
			out = append(out, name)
		}
	}
	return out
}

func (m *Model) renderOverview() {
	if m.summary == nil {
		m.overview.SetContent("No analysis loaded. Switch to History and press Enter on a run.")
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	cards := m.renderSummaryCards(width)
	hist := m.renderHistogram(width)
	m.overview.SetContent(strings.TrimRight(cards+"\n\n"+hist, "\n"))
}

func (m *Model) renderSummaryCards(width int) string {
	s := m.summary
	busiest := "n/a"
	if s.BusiestHour != nil {
		busiest = stats.FormatHour(*s.BusiestHour)
	}
	cards := []string{
		metricCard("Vehicles", fmt.Sprintf("%d", s.TotalVehicles)),
		metricCard("Trucks", fmt.Sprintf("%d", s.TotalTrucks)),
		metricCard("Electric", fmt.Sprintf("%d", s.TotalElectric)),
		metricCard("Two-Wheeled", fmt.Sprintf("%d", s.TotalTwoWheeled)),
		metricCard("No Turn", fmt.Sprintf("%d", s.NoTurn)),
		metricCard("Over Limit", fmt.Sprintf("%d", s.OverLimit)),
		metricCard("Busiest", busiest),
		metricCard("Rain Hours", fmt.Sprintf("%d", len(s.RainHours))),
		metricCard("Skipped", fmt.Sprintf("%d", s.Skipped)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	perRow := maxInt(1, width/14)
	var rows []string
	for start := 0; start < len(cards); start += perRow {
		end := minInt(start+perRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func (m *Model) renderHistogram(width int) string {
	series := make([]stats.HistogramSeries, 0, len(m.summary.JunctionHourly))
	for _, name := range m.filteredJunctions() {
		series = append(series, stats.HistogramSeries{Name: name, Buckets: m.summary.JunctionHourly[name]})
	}
	if len(series) == 0 {
		series = stats.HistogramFromSummary(*m.summary)
	}
	var buf bytes.Buffer
	if err := stats.RenderHistogram(&buf, "Traffic Volume by Hour", series, width, histogramHeight, true); err != nil {
		return fmt.Sprintf("Failed to render histogram: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) rebuildTables() {
	m.rebuildHourTable()
	m.rebuildRunTable()
	m.updateLayout()
}

func (m *Model) rebuildHourTable() {
	var junctions []string
	if m.summary != nil {
		junctions = m.filteredJunctions()
	}
	columns := []table.Column{{Title: "Hour", Width: 5}}
	for _, name := range junctions {
		columns = append(columns, table.Column{Title: name, Width: junctionColWidth(name)})
	}
	columns = append(columns,
		table.Column{Title: "Total", Width: 6},
		table.Column{Title: "Rain", Width: 4},
	)

	var rows []table.Row
	if m.summary != nil {
		rainSet := make(map[int]struct{}, len(m.summary.RainHours))
		for _, h := range m.summary.RainHours {
			rainSet[h] = struct{}{}
		}
		for hour := 0; hour < 24; hour++ {
			row := table.Row{stats.FormatHour(hour)}
			total := 0
			for _, name := range junctions {
				buckets := m.summary.JunctionHourly[name]
				row = append(row, fmt.Sprintf("%d", buckets[hour]))
				total += buckets[hour]
			}
			if m.junctionFilter == "" {
				total = m.summary.HourlyCounts[hour]
			}
			row = append(row, fmt.Sprintf("%d", total))
			marker := ""
			if _, ok := rainSet[hour]; ok {
				marker = "*"
			}
			row = append(row, marker)
			rows = append(rows, row)
		}
	}
	m.hourTable.SetColumns(columns)
	m.hourTable.SetRows(rows)
}

func (m *Model) rebuildRunTable() {
	columns := []table.Column{
		{Title: "ID", Width: 4},
		{Title: "Analyzed", Width: 16},
		{Title: "Dataset", Width: 14},
		{Title: "Vehicles", Width: 8},
		{Title: "Busiest", Width: 7},
		{Title: "Rain", Width: 4},
		{Title: "Skipped", Width: 7},
	}
	rows := make([]table.Row, 0, len(m.runs))
	for _, run := range m.runs {
		busiest := "n/a"
		if run.BusiestHour != nil {
			busiest = stats.FormatHour(*run.BusiestHour)
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", run.RunID),
			run.AnalyzedAt.Format("2006-01-02 15:04"),
			run.Label,
			fmt.Sprintf("%d", run.TotalVehicles),
			busiest,
			fmt.Sprintf("%d", len(run.RainHours)),
			fmt.Sprintf("%d", run.Skipped),
		})
	}
	m.runTable.SetColumns(columns)
	m.runTable.SetRows(rows)
	if len(rows) > 0 {
		m.runTable.SetCursor(len(rows) - 1)
	}
}

func junctionColWidth(name string) int {
	width := len([]rune(name))
	if width < 8 {
		return 8
	}
	if width > 24 {
		return 24
	}
	return width
}

func resultTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
