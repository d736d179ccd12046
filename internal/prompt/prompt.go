/*
Package prompt asks the user which kind of version bump to perform.
*/
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oarkflow/verbump/internal/semver"
)

// ErrAborted is returned when the user declines to release
var ErrAborted = errors.New("release aborted")

type choice struct {
	label string
	kind  semver.Kind
	abort bool
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "abort")),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// Model is the bump-kind chooser. Minor is preselected.
type Model struct {
	current semver.Version
	choices []choice
	cursor  int
	done    bool
	aborted bool
}

// New creates a chooser previewing bumps of current
func New(current semver.Version) Model {
	var choices []choice
	for _, k := range semver.Kinds {
		next, err := current.Bump(k)
		if err != nil {
			continue
		}
		choices = append(choices, choice{
			label: fmt.Sprintf("%-6s %s → %s", k, current, next),
			kind:  k,
		})
	}
	choices = append(choices, choice{label: "abort", abort: true})
	return Model{current: current, choices: choices}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Quit):
		m.aborted = true
		return m, tea.Quit
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.Select):
		m.done = true
		m.aborted = m.choices[m.cursor].abort
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	if m.done || m.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Release %s as:", m.current)))
	b.WriteString("\n\n")
	for i, c := range m.choices {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + c.label))
		} else {
			b.WriteString(normalStyle.Render("  " + c.label))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(fmt.Sprintf("%s • %s • %s",
		keys.Up.Help().Key+"/"+keys.Down.Help().Key+" move",
		keys.Select.Help().Key+" select",
		keys.Quit.Help().Key+" abort")))
	b.WriteString("\n")
	return b.String()
}

// Result returns the chosen kind, or ErrAborted
func (m Model) Result() (semver.Kind, error) {
	if m.aborted || !m.done {
		return 0, ErrAborted
	}
	return m.choices[m.cursor].kind, nil
}

// Choose runs the chooser on the given terminal streams
func Choose(current semver.Version, in io.Reader, out io.Writer) (semver.Kind, error) {
	p := tea.NewProgram(New(current), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return 0, fmt.Errorf("failed to run prompt: %w", err)
	}
	return final.(Model).Result()
}
