// Package picker implements the interactive history browser behind
// "histmcp browse": a Bubble Tea model that filters the loaded history as
// the user types and returns the chosen record.
package picker

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"

	"github.com/runger/histmcp/internal/history"
)

const (
	// debounceInterval is the delay after the last keystroke before a fetch.
	debounceInterval = 100 * time.Millisecond

	// copiedDuration is how long the "Copied!" indicator stays visible.
	copiedDuration = 1500 * time.Millisecond

	// defaultFetchLimit bounds how many matches one fetch returns.
	defaultFetchLimit = 1000
)

// Layout selects where the newest record is drawn.
type Layout int

const (
	// LayoutTopDown draws the query under the tab bar and the newest
	// record first.
	LayoutTopDown Layout = iota
	// LayoutBottomUp draws the newest record just above the query line,
	// like a shell's reverse search.
	LayoutBottomUp
)

// pickerState represents the current state of the picker's state machine.
type pickerState int

const (
	stateIdle      pickerState = iota // Initial state before first fetch
	stateLoading                      // Fetch in progress
	stateLoaded                       // Items loaded successfully (len > 0)
	stateEmpty                        // Fetch succeeded but returned 0 items
	stateError                        // Fetch failed
	stateCancelled                    // User cancelled (Esc)
)

// fetchDoneMsg is sent when an async Provider.Fetch completes.
type fetchDoneMsg struct {
	requestID uint64
	items     []history.Record
	atEnd     bool
	err       error
}

// debounceMsg fires after the debounce timer expires.
type debounceMsg struct {
	id uint64 // Must match current debounceID to be accepted
}

// initMsg is sent by Init() so the first fetch is started from Update,
// where state mutations are kept.
type initMsg struct{}

// clipboardMsg reports the outcome of a copy request.
type clipboardMsg struct {
	err error
}

// copiedClearMsg hides the "Copied!" indicator.
type copiedClearMsg struct{}

// Model is the Bubble Tea model for the history picker.
type Model struct {
	state     pickerState
	tabs      []Tab
	activeTab int
	items     []history.Record
	selection int // Index into items; -1 when empty
	atEnd     bool
	err       error

	textInput textinput.Model
	layout    Layout
	maxWidth  int // Cap on row width in cells; 0 uses the terminal width
	limit     int

	requestID uint64 // Monotonic counter for stale detection
	provider  Provider

	width  int
	height int

	result history.Record
	chosen bool
	copied bool

	// cancelFetch cancels the in-flight Provider.Fetch context.
	cancelFetch context.CancelFunc

	// debounceID tracks the latest debounce timer; only a matching
	// debounceMsg triggers a fetch.
	debounceID uint64
}

// NewModel creates a picker over provider. With no tabs the picker shows a
// single "All" view.
func NewModel(tabs []Tab, provider Provider) Model {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Focus()

	return Model{
		state:     stateIdle,
		tabs:      tabs,
		selection: -1,
		textInput: ti,
		limit:     defaultFetchLimit,
		provider:  provider,
	}
}

// WithQuery sets the initial filter.
func (m Model) WithQuery(q string) Model {
	m.textInput.SetValue(q)
	return m
}

// WithLayout sets the list orientation.
func (m Model) WithLayout(l Layout) Model {
	m.layout = l
	return m
}

// WithMaxWidth caps rendered rows at w cells. Zero means terminal width.
func (m Model) WithMaxWidth(w int) Model {
	if w >= 0 {
		m.maxWidth = w
	}
	return m
}

// Result returns the record chosen with Enter. ok is false when the user
// cancelled or nothing was selectable.
func (m Model) Result() (rec history.Record, ok bool) {
	return m.result, m.chosen
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg { return initMsg{} })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case fetchDoneMsg:
		return m.handleFetchDone(msg)

	case debounceMsg:
		if msg.id != m.debounceID {
			return m, nil
		}
		cmd := m.startFetch()
		return m, cmd

	case initMsg:
		cmd := m.startFetch()
		return m, cmd

	case clipboardMsg:
		if msg.err != nil {
			return m, nil
		}
		m.copied = true
		return m, tea.Tick(copiedDuration, func(time.Time) tea.Msg { return copiedClearMsg{} })

	case copiedClearMsg:
		m.copied = false
		return m, nil
	}

	return m.updateInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.state = stateCancelled
		m.cancelInflight()
		return m, tea.Quit

	case tea.KeyCtrlC:
		if !m.hasSelection() {
			return m, nil
		}
		return m, copyToClipboard(m.items[m.selection].Command)

	case tea.KeyEnter:
		if m.state == stateLoaded && m.hasSelection() {
			m.result = m.items[m.selection]
			m.chosen = true
		}
		m.cancelInflight()
		return m, tea.Quit

	case tea.KeyUp:
		if m.layout == LayoutBottomUp {
			m.moveOlder()
		} else {
			m.moveNewer()
		}
		return m, nil

	case tea.KeyDown:
		if m.layout == LayoutBottomUp {
			m.moveNewer()
		} else {
			m.moveOlder()
		}
		return m, nil

	case tea.KeyTab:
		if len(m.tabs) < 2 {
			return m, nil
		}
		m.activeTab = (m.activeTab + 1) % len(m.tabs)
		cmd := m.startFetch()
		return m, cmd
	}

	return m.updateInput(msg)
}

// updateInput forwards msg to the query field and schedules a fetch when
// the query text changed.
func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.textInput.Value()
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	if m.textInput.Value() == before {
		return m, cmd
	}
	debounce := m.startDebounce()
	return m, tea.Batch(cmd, debounce)
}

// moveOlder moves the selection toward older records (higher index).
func (m *Model) moveOlder() {
	if m.state == stateLoading {
		return
	}
	if m.selection < len(m.items)-1 {
		m.selection++
	}
}

// moveNewer moves the selection toward newer records (lower index).
func (m *Model) moveNewer() {
	if m.state == stateLoading {
		return
	}
	if m.selection > 0 {
		m.selection--
	}
}

func (m Model) handleFetchDone(msg fetchDoneMsg) (tea.Model, tea.Cmd) {
	// Discard stale responses.
	if msg.requestID != m.requestID {
		return m, nil
	}
	m.cancelFetch = nil

	if msg.err != nil {
		m.state = stateError
		m.err = msg.err
		m.items = nil
		m.selection = -1
		return m, nil
	}

	m.err = nil
	m.items = msg.items
	m.atEnd = msg.atEnd

	if len(m.items) == 0 {
		m.state = stateEmpty
		m.selection = -1
	} else {
		m.state = stateLoaded
		m.clampSelection()
	}
	return m, nil
}

// startDebounce bumps the debounce counter and returns a tick that fires
// after debounceInterval.
func (m *Model) startDebounce() tea.Cmd {
	m.debounceID++
	id := m.debounceID
	return tea.Tick(debounceInterval, func(time.Time) tea.Msg {
		return debounceMsg{id: id}
	})
}

// startFetch cancels any in-flight fetch, bumps requestID and returns a
// command that queries the provider.
func (m *Model) startFetch() tea.Cmd {
	m.cancelInflight()
	m.requestID++
	m.state = stateLoading

	reqID := m.requestID
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelFetch = cancel

	req := Request{
		RequestID: reqID,
		Query:     m.textInput.Value(),
		TabID:     m.currentTab().ID,
		Limit:     m.limit,
	}

	p := m.provider
	return func() tea.Msg {
		resp, err := p.Fetch(ctx, req)
		if err != nil {
			return fetchDoneMsg{requestID: reqID, err: err}
		}
		return fetchDoneMsg{
			requestID: reqID,
			items:     resp.Items,
			atEnd:     resp.AtEnd,
		}
	}
}

func (m *Model) cancelInflight() {
	if m.cancelFetch != nil {
		m.cancelFetch()
		m.cancelFetch = nil
	}
}

func (m *Model) clampSelection() {
	if len(m.items) == 0 {
		m.selection = -1
		return
	}
	if m.selection < 0 {
		m.selection = 0
	}
	if m.selection >= len(m.items) {
		m.selection = len(m.items) - 1
	}
}

func (m Model) hasSelection() bool {
	return m.selection >= 0 && m.selection < len(m.items)
}

func (m Model) currentTab() Tab {
	if m.activeTab >= 0 && m.activeTab < len(m.tabs) {
		return m.tabs[m.activeTab]
	}
	return Tab{ID: TabAll, Label: "All"}
}

// listHeight returns the number of list rows: terminal height minus the tab
// bar, the query line and one spare row, plus the separator in bottom-up
// layout.
func (m Model) listHeight() int {
	chrome := 3
	if m.layout == LayoutBottomUp {
		chrome++
	}
	h := m.height - chrome
	if h < 1 {
		h = 20 // Before the first WindowSizeMsg
	}
	return h
}

// rowWidth is the usable width of one row in cells, 0 when unknown.
func (m Model) rowWidth() int {
	w := m.width
	if m.maxWidth > 0 && (w <= 0 || m.maxWidth < w) {
		w = m.maxWidth
	}
	return w
}

func copyToClipboard(s string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{err: clipboard.WriteAll(s)}
	}
}

// --- View rendering ---

var (
	activeTabStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	inactiveTabStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	matchStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	matchSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	truncStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	idStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	queryStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	copiedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewTabBar())
	b.WriteRune('\n')

	b.WriteString(m.viewContent())
	b.WriteRune('\n')

	if m.layout == LayoutBottomUp {
		b.WriteString(dimStyle.Render(strings.Repeat("─", max(m.rowWidth(), 10))))
		b.WriteRune('\n')
	}

	b.WriteString(m.viewQuery())
	return b.String()
}

func (m Model) viewTabBar() string {
	tabs := m.tabs
	if len(tabs) == 0 {
		tabs = []Tab{m.currentTab()}
	}
	parts := make([]string, 0, len(tabs)+1)
	for i, tab := range tabs {
		label := " " + tab.Label + " "
		if i == m.activeTab {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, inactiveTabStyle.Render(label))
		}
	}
	if m.state == stateLoaded {
		count := strconv.Itoa(len(m.items))
		if !m.atEnd {
			count += "+"
		}
		parts = append(parts, dimStyle.Render(count))
	}
	return strings.Join(parts, " ")
}

// viewContent renders the list or a status message. In bottom-up layout
// the status sits on the last row, next to the query.
func (m Model) viewContent() string {
	var status string
	switch m.state {
	case stateIdle, stateLoading:
		status = dimStyle.Render("Loading...")
	case stateEmpty:
		status = dimStyle.Render("No matches")
	case stateError:
		msg := "Error"
		if m.err != nil {
			msg = fmt.Sprintf("Error: %s", m.err)
		}
		status = errorStyle.Render(msg)
	case stateCancelled:
		status = dimStyle.Render("Cancelled")
	case stateLoaded:
		return m.viewList()
	}

	if m.layout == LayoutBottomUp {
		return strings.Repeat("\n", m.listHeight()-1) + status
	}
	return status
}

// viewList renders the window of rows that contains the selection.
func (m Model) viewList() string {
	h := m.listHeight()
	start := 0
	if m.selection >= h {
		start = m.selection - h + 1
	}
	end := min(len(m.items), start+h)

	rows := make([]string, 0, h)
	for i := start; i < end; i++ {
		rows = append(rows, m.renderRow(i))
	}

	if m.layout == LayoutBottomUp {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
		pad := make([]string, h-len(rows), h)
		rows = append(pad, rows...)
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderRow(i int) string {
	rec := m.items[i]
	marker, base, match := "  ", normalStyle, matchStyle
	if i == m.selection {
		marker, base, match = "> ", selectedStyle, matchSelectedStyle
	}

	prefix := "[" + strconv.Itoa(rec.ID) + "] "
	width := m.rowWidth()
	if width > 0 {
		width -= runewidth.StringWidth(marker) + runewidth.StringWidth(prefix)
		if width < 1 {
			width = 1
		}
	}
	return base.Render(marker) + idStyle.Render(prefix) +
		renderItem(DisplayCommand(rec.Command), width, m.textInput.Value(), base, match)
}

// renderItem fits s into width cells (0 means unlimited), highlighting
// query matches. A cut middle is drawn as a styled " … ".
func renderItem(s string, width int, query string, base, match lipgloss.Style) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return highlightQuery(s, query, base, match)
	}
	head, tail, cut := splitMiddle(s, width-2)
	if !cut {
		return highlightQuery(prefixWithin(s, width), query, base, match)
	}
	return highlightQuery(head, query, base, match) +
		truncStyle.Render(" "+Ellipsis+" ") +
		highlightQuery(tail, query, base, match)
}

// highlightQuery renders s with every occurrence of query in the match
// style, keeping the original case. Matching uses the same Unicode case
// folding as history search, so "STRASSE" highlights "straße".
func highlightQuery(s, query string, base, match lipgloss.Style) string {
	if query == "" || s == "" {
		return base.Render(s)
	}
	folder := cases.Fold()
	needle := folder.String(query)
	if needle == "" {
		return base.Render(s)
	}

	// Fold rune by rune, remembering the source span of every folded byte.
	var folded strings.Builder
	var starts, ends []int
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		f := folder.String(s[i : i+size])
		folded.WriteString(f)
		for k := 0; k < len(f); k++ {
			starts = append(starts, i)
			ends = append(ends, i+size)
		}
		i += size
	}
	text := folded.String()

	var b strings.Builder
	matched := false
	last, pos := 0, 0
	for pos < len(text) {
		j := strings.Index(text[pos:], needle)
		if j < 0 {
			break
		}
		start, end := starts[pos+j], ends[pos+j+len(needle)-1]
		if start > last {
			b.WriteString(base.Render(s[last:start]))
		}
		b.WriteString(match.Render(s[start:end]))
		matched = true
		last = end
		pos += j + len(needle)
		for pos < len(text) && starts[pos] < last {
			pos++
		}
	}
	if !matched {
		return base.Render(s)
	}
	if last < len(s) {
		b.WriteString(base.Render(s[last:]))
	}
	return b.String()
}

func (m Model) viewQuery() string {
	line := queryStyle.Render("> ") + m.textInput.View()
	if m.copied {
		line += "  " + copiedStyle.Render("Copied!")
	}
	return line
}
