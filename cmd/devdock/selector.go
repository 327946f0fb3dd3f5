package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/ruminaider/devdock/internal/selection"
)

const selectorPrompt = "What services would you like to disable?"

// selector is a single-column menu where Enter toggles a service and the
// trailing "Done" item confirms. Any key it does not know cancels.
type selector struct {
	title     string
	state     selection.State
	cursor    int
	done      bool
	cancelled bool
}

func newSelector(project string, initial selection.State) selector {
	return selector{
		title: bannerTitle(project),
		state: initial,
	}
}

// bannerTitle turns "shop" into "Shop-in-a-Box".
func bannerTitle(project string) string {
	r := []rune(project)
	if len(r) > 0 {
		r[0] = unicode.ToUpper(r[0])
	}
	return string(r) + "-in-a-Box"
}

func (s selector) Init() tea.Cmd { return nil }

func (s selector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	// The "Done" item sits at index len(s.state).
	last := len(s.state)

	switch k := key.String(); k {
	case "up", "k", "shift+tab":
		s.cursor--
		if s.cursor < 0 {
			s.cursor = last
		}
	case "down", "j", "tab":
		s.cursor++
		if s.cursor > last {
			s.cursor = 0
		}
	case "home", "g":
		s.cursor = 0
	case "end", "G":
		s.cursor = last
	case "enter", " ":
		if s.cursor == last {
			s.done = true
			return s, tea.Quit
		}
		s.state = s.state.Toggle(s.cursor)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n, _ := strconv.Atoi(k)
		if n <= len(s.state) {
			s.cursor = n - 1
		}
	default:
		s.cancelled = true
		return s, tea.Quit
	}
	return s, nil
}

func (s selector) View() string {
	if s.done || s.cancelled {
		return ""
	}
	var b strings.Builder

	rule := strings.Repeat("*", bannerWidth)
	b.WriteString(bannerStyle.Render(rule) + "\n")
	b.WriteString(bannerStyle.Render(lipgloss.PlaceHorizontal(bannerWidth, lipgloss.Center, s.title)) + "\n")
	b.WriteString(bannerStyle.Render(rule) + "\n\n")
	b.WriteString(selectorPrompt + "\n")

	for i, e := range s.state {
		line := fmt.Sprintf("%d. %s", i+1, e.Description)
		if e.Disabled {
			line += " (disabled)"
		}
		b.WriteString(s.item(i, line, e.Disabled))
	}
	b.WriteString(s.item(len(s.state), "Done", false))
	return b.String()
}

func (s selector) item(i int, line string, disabled bool) string {
	switch {
	case i == s.cursor:
		return "  " + cursorStyle.Render("> "+line) + "\n"
	case i == len(s.state):
		return "    " + doneStyle.Render(line) + "\n"
	case disabled:
		return "    " + disabledStyle.Render(line) + "\n"
	default:
		return "    " + line + "\n"
	}
}

// Result returns the final state and whether the operator chose "Done".
func (s selector) Result() (selection.State, bool) {
	if !s.done {
		return nil, false
	}
	return s.state, true
}

// runSelector shows the menu on the alternate screen and returns the final
// state, or huh.ErrUserAborted if the operator cancelled.
func runSelector(project string, initial selection.State) (selection.State, error) {
	model, err := tea.NewProgram(newSelector(project, initial), tea.WithAltScreen()).Run()
	if err != nil {
		if errors.Is(err, tea.ErrInterrupted) {
			return nil, huh.ErrUserAborted
		}
		return nil, err
	}
	final, ok := model.(selector).Result()
	if !ok {
		return nil, huh.ErrUserAborted
	}
	return final, nil
}
