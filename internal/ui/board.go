// Package ui provides the read-only terminal task board.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/taskmgr-go/internal/dates"
	"github.com/nibzard/taskmgr-go/internal/task"
)

// Filter selects which tasks the board shows.
type Filter int

const (
	FilterAll Filter = iota
	FilterOpen
	FilterCompleted
	FilterOverdue
)

func (f Filter) String() string {
	switch f {
	case FilterOpen:
		return "open"
	case FilterCompleted:
		return "completed"
	case FilterOverdue:
		return "overdue"
	default:
		return "all"
	}
}

// ParseFilter maps a filter name to a Filter.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "open":
		return FilterOpen, nil
	case "completed", "done":
		return FilterCompleted, nil
	case "overdue":
		return FilterOverdue, nil
	default:
		return FilterAll, fmt.Errorf("unknown filter %q (expected all, open, completed, overdue)", s)
	}
}

// BoardOptions configures the board.
type BoardOptions struct {
	// User limits the board to one owner when set.
	User    string
	Filter  Filter
	Refresh time.Duration
	Now     func() time.Time
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	summaryStyle = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// RunBoard shows the task board until the user quits or ctx is cancelled.
func RunBoard(ctx context.Context, store *task.Store, opts BoardOptions) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("board requires a TTY")
	}
	program := tea.NewProgram(newBoardModel(store, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type boardModel struct {
	store    *task.Store
	opts     BoardOptions
	table    table.Model
	tasks    []task.Task
	loadErr  error
	loaded   bool
	showHelp bool
}

type tickMsg time.Time

var columns = []table.Column{
	{Title: "#", Width: 4},
	{Title: "Owner", Width: 12},
	{Title: "Title", Width: 28},
	{Title: "Assigned", Width: 10},
	{Title: "Due", Width: 10},
	{Title: "Status", Width: 9},
}

func newBoardModel(store *task.Store, opts BoardOptions) *boardModel {
	if opts.Refresh <= 0 {
		opts.Refresh = 2 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	return &boardModel{store: store, opts: opts, table: t}
}

func (m *boardModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.opts.Refresh)
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
			return m, nil
		case "h", "?":
			m.showHelp = !m.showHelp
			return m, nil
		case "0":
			m.setFilter(FilterAll)
			return m, nil
		case "1":
			m.setFilter(FilterOpen)
			return m, nil
		case "2":
			m.setFilter(FilterCompleted)
			return m, nil
		case "3":
			m.setFilter(FilterOverdue)
			return m, nil
		}
	case tea.WindowSizeMsg:
		if h := msg.Height - 8; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.opts.Refresh)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *boardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Task Board") + "\n\n")

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.opts.Refresh)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("Error loading tasks:") + "\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b, m.opts.Refresh)
		return b.String()
	}
	if !m.loaded {
		b.WriteString("Loading...\n\n")
		writeFooter(&b, m.opts.Refresh)
		return b.String()
	}

	c := countTasks(m.tasks, m.opts.User, m.today())
	b.WriteString(summaryStyle.Render(fmt.Sprintf("Total: %d  Open: %d  Completed: %d  Overdue: %d",
		c.Total, c.Open, c.Completed, c.Overdue)) + "\n")
	scope := "Filter: " + m.opts.Filter.String()
	if m.opts.User != "" {
		scope += "  User: " + m.opts.User
	}
	b.WriteString(scope + "\n\n")

	if len(m.table.Rows()) == 0 {
		b.WriteString("  No tasks to show.\n\n")
	} else {
		b.WriteString(m.table.View() + "\n\n")
	}
	writeFooter(&b, m.opts.Refresh)
	return b.String()
}

func (m *boardModel) today() time.Time {
	return dates.DateOf(m.opts.Now())
}

func (m *boardModel) setFilter(f Filter) {
	m.opts.Filter = f
	m.table.SetRows(buildRows(m.tasks, f, m.opts.User, m.today()))
	m.table.GotoTop()
}

func (m *boardModel) refresh() {
	tasks, err := m.store.LoadAll()
	if err != nil {
		m.loadErr = err
		return
	}
	m.loadErr = nil
	m.loaded = true
	m.tasks = tasks
	m.table.SetRows(buildRows(tasks, m.opts.Filter, m.opts.User, m.today()))
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// counts summarises the tasks visible to the board's user scope.
type counts struct {
	Total, Open, Completed, Overdue int
}

func countTasks(tasks []task.Task, user string, today time.Time) counts {
	var c counts
	for _, t := range tasks {
		if user != "" && !t.OwnedBy(user) {
			continue
		}
		c.Total++
		if t.Completed {
			c.Completed++
			continue
		}
		c.Open++
		if t.IsOverdue(today) {
			c.Overdue++
		}
	}
	return c
}

// buildRows returns one row per matching task. Rows keep the task's
// 1-based position in the store so numbers match the interactive session.
func buildRows(tasks []task.Task, f Filter, user string, today time.Time) []table.Row {
	var rows []table.Row
	for i, t := range tasks {
		if user != "" && !t.OwnedBy(user) {
			continue
		}
		if !matches(t, f, today) {
			continue
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			t.Owner,
			t.Title,
			t.AssignedDate,
			t.DueDate,
			statusLabel(t, today),
		})
	}
	return rows
}

func matches(t task.Task, f Filter, today time.Time) bool {
	switch f {
	case FilterOpen:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	case FilterOverdue:
		return t.IsOverdue(today)
	default:
		return true
	}
}

func statusLabel(t task.Task, today time.Time) string {
	switch {
	case t.Completed:
		return "done"
	case t.IsOverdue(today):
		return overdueStyle.Render("overdue")
	default:
		return "open"
	}
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Refresh data\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  up/down      Move selection\n")
	b.WriteString("  0            Show all tasks\n")
	b.WriteString("  1            Show open tasks\n")
	b.WriteString("  2            Show completed tasks\n")
	b.WriteString("  3            Show overdue tasks\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	b.WriteString(fmt.Sprintf("Press h for help | q to quit | Refreshing every %s\n", interval))
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
