package picker

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.phase == phaseNewSpec {
		switch keyMsg.Type {
		case tea.KeyEnter:
			if value := m.input.Value(); value != "" {
				m.choice.SpecID = value
				m.phase = phaseDone
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.aborted = true
		m.quitting = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Skip):
		m.choice.Skipped = true
		m.phase = phaseDone
		m.quitting = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}

	case key.Matches(keyMsg, m.keys.Select):
		selected := m.options[m.cursor]
		switch m.phase {
		case phaseBase:
			m.choice.Base = selected
			m.enterSpecPhase()
		case phaseSpec:
			if selected == newSpecOption {
				m.phase = phaseNewSpec
				m.input.Focus()
				return m, textinputBlink()
			}
			m.choice.SpecID = selected
			m.phase = phaseDone
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}
