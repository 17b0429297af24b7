package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	reasonStyle   = lipgloss.NewStyle().Faint(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

func textinputBlink() tea.Cmd {
	return textinput.Blink
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleStyle.Render("import: "+m.d.Name))
	fmt.Fprintf(&b, "%s\n\n", reasonStyle.Render(m.d.Reason))

	switch m.phase {
	case phaseBase:
		b.WriteString("choose a base branch:\n")
	case phaseSpec:
		fmt.Fprintf(&b, "base: %s\nchoose a spec:\n", selectedStyle.Render(m.choice.Base))
	case phaseNewSpec:
		fmt.Fprintf(&b, "base: %s\nnew spec id: %s\n", selectedStyle.Render(m.choice.Base), m.input.View())
		b.WriteString(helpStyle.Render("\nenter confirm · esc abort\n"))
		return b.String()
	}

	for i, option := range m.options {
		cursor := "  "
		label := option
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
			label = selectedStyle.Render(option)
		}
		fmt.Fprintf(&b, "%s%s\n", cursor, label)
	}

	b.WriteString(helpStyle.Render("\n↑/↓ move · enter select · s skip branch · q quit\n"))
	return b.String()
}
