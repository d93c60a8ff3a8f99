package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"argsmat/internal/driver"
)

// fileState is what the list shows for one file.
type fileState uint8

const (
	stateQueued fileState = iota
	stateLoading
	stateRewriting
	stateWriting
	stateChanged // rewritten, not yet on disk (or --stdout / check)
	stateWritten
	stateUnchanged
	stateError
)

var stateNames = [...]string{
	stateQueued:    "queued",
	stateLoading:   "loading",
	stateRewriting: "rewriting",
	stateWriting:   "writing",
	stateChanged:   "changed",
	stateWritten:   "written",
	stateUnchanged: "unchanged",
	stateError:     "error",
}

func (s fileState) String() string { return stateNames[s] }

func (s fileState) final() bool {
	return s == stateWritten || s == stateUnchanged || s == stateError
}

// share of the work done in each state; changed may still be waiting for
// its write
var stateProgress = [...]float64{
	stateRewriting: 0.3,
	stateWriting:   0.9,
	stateChanged:   0.9,
	stateWritten:   1,
	stateUnchanged: 1,
	stateError:     1,
}

var stateStyles = map[fileState]lipgloss.Style{
	stateChanged:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	stateWritten:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	stateError:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	stateLoading:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	stateRewriting: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	stateWriting:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
}

var defaultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))

// maxRows caps the file list; a directory run can touch thousands of files.
const maxRows = 12

type fileItem struct {
	path  string
	state fileState
}

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	items   []fileItem
	index   map[string]int
	recent  []int // indices of finished files, newest last
	width   int
	done    bool
}

type (
	eventMsg driver.Event
	doneMsg  struct{}
)

// NewProgressModel returns a Bubble Tea model showing a rewrite run. files
// may be nil: files first seen in events are appended. The model quits when
// events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		index:   make(map[string]int, len(files)),
		width:   80,
	}
	for _, f := range files {
		m.item(f)
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(driver.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// next waits for one driver event.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) item(path string) int {
	if i, ok := m.index[path]; ok {
		return i
	}
	m.items = append(m.items, fileItem{path: path})
	m.index[path] = len(m.items) - 1
	return len(m.items) - 1
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	if ev.File == "" {
		return nil
	}
	i := m.item(ev.File)
	state, ok := stateOf(ev)
	if !ok {
		return nil
	}
	wasFinal := m.items[i].state.final()
	m.items[i].state = state
	if state.final() && !wasFinal {
		m.recent = append(m.recent, i)
	}

	total := 0.0
	for _, it := range m.items {
		total += itemProgress(it)
	}
	return m.bar.SetPercent(total / float64(len(m.items)))
}

func itemProgress(it fileItem) float64 {
	if int(it.state) < len(stateProgress) {
		return stateProgress[it.state]
	}
	return 0
}

func stateOf(ev driver.Event) (fileState, bool) {
	switch ev.Status {
	case driver.StatusQueued:
		return stateQueued, true
	case driver.StatusUnchanged:
		return stateUnchanged, true
	case driver.StatusError:
		return stateError, true
	case driver.StatusDone:
		if ev.Stage == driver.StageWrite {
			return stateWritten, true
		}
		return stateChanged, true
	case driver.StatusWorking:
		switch ev.Stage {
		case driver.StageLoad:
			return stateLoading, true
		case driver.StageTransform:
			return stateRewriting, true
		case driver.StageWrite:
			return stateWriting, true
		}
	}
	return 0, false
}

// visible returns the rows to draw: files in flight first, then the most
// recently finished ones. Queued files are counted, not listed, once the
// list is longer than maxRows.
func (m *progressModel) visible() []fileItem {
	if len(m.items) <= maxRows {
		return m.items
	}
	rows := make([]fileItem, 0, maxRows)
	for _, it := range m.items {
		if len(rows) == maxRows {
			return rows
		}
		if it.state != stateQueued && !it.state.final() {
			rows = append(rows, it)
		}
	}
	for i := len(m.recent) - 1; i >= 0 && len(rows) < maxRows; i-- {
		rows = append(rows, m.items[m.recent[i]])
	}
	return rows
}

func (m *progressModel) summary() string {
	var counts [len(stateNames)]int
	for _, it := range m.items {
		counts[it.state]++
	}
	finished := counts[stateWritten] + counts[stateUnchanged] + counts[stateError]
	parts := []string{fmt.Sprintf("%d/%d files", finished, len(m.items))}
	if n := counts[stateChanged] + counts[stateWritten]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d changed", n))
	}
	if n := counts[stateError]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}
	return strings.Join(parts, ", ")
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	header := m.title + "  " + m.summary()
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")).Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-16, 20)
	for _, it := range m.visible() {
		style, ok := stateStyles[it.state]
		if !ok {
			style = defaultStyle
		}
		fmt.Fprintf(&b, "  %s %s\n", style.Render(fmt.Sprintf("%12s", it.state)), truncate(it.path, nameWidth))
	}
	if hidden := len(m.items) - len(m.visible()); hidden > 0 {
		fmt.Fprintf(&b, "  %12s … %d more\n", "", hidden)
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

// truncate shortens value to width cells, keeping the tail (the file name)
// visible.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	runes := []rune(value)
	w, cut := 0, len(runes)
	for cut > 0 {
		rw := runewidth.RuneWidth(runes[cut-1])
		if w+rw > width-3 {
			break
		}
		w += rw
		cut--
	}
	return "..." + string(runes[cut:])
}
