package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrNothingToPick is returned when a picker is opened without entries
var ErrNothingToPick = errors.New("nothing to select from")

// entry is a list row that knows its position in the caller's slice
type entry interface {
	list.Item
	index() int
	heading() string
	details() []string
}

type delegate struct {
	lines int
}

func (d delegate) Height() int                             { return d.lines }
func (d delegate) Spacing() int                            { return 0 }
func (d delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	e, ok := item.(entry)
	if !ok {
		return
	}

	heading := truncate(e.heading(), 60)
	var b strings.Builder
	if index == m.Index() {
		b.WriteString(SelectedStyle.Render(fmt.Sprintf("  ➤ %d. %s", index+1, heading)))
	} else {
		b.WriteString(NormalStyle.Render(fmt.Sprintf("    %d. %s", index+1, heading)))
	}
	for _, line := range e.details() {
		b.WriteString("\n" + DimStyle.Render("      "+line))
	}
	fmt.Fprint(w, b.String())
}

// pickerModel is the Bubble Tea model shared by every selection list
type pickerModel struct {
	list     list.Model
	help     string
	chosen   entry
	quitting bool
}

func newPicker(items []list.Item, title string, lines int, filtering bool, help string) pickerModel {
	height := 4 + len(items)*lines
	if height > 24 {
		height = 24
	}

	l := list.New(items, delegate{lines: lines}, 80, height)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(filtering)
	l.SetShowHelp(false)
	l.Styles.Title = TitleStyle

	return pickerModel{list: l, help: help}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if e, ok := m.list.SelectedItem().(entry); ok {
				m.chosen = e
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.chosen != nil {
		return SuccessStyle.Render(fmt.Sprintf("\n  ✓ Selected: %s\n", m.chosen.heading()))
	}
	if m.quitting {
		return DimStyle.Render("\n  Cancelled.\n")
	}
	return "\n" + m.list.View() + "\n" + HelpStyle.Render("  "+m.help)
}

// selection is the chosen position, or -1 when the picker was cancelled
func (m pickerModel) selection() int {
	if m.chosen == nil {
		return -1
	}
	return m.chosen.index()
}

func runPicker(model pickerModel) (int, error) {
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return -1, err
	}
	return final.(pickerModel).selection(), nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
