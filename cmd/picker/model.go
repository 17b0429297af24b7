// Package picker is the interactive side of import disambiguation: the
// inference engine decides what is ambiguous, this picker asks the user
// to place each ambiguous branch.
package picker

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/mattsolo1/grove-stack/pkg/importer"
)

// newSpecOption is the synthetic list entry that switches to free-form
// spec entry.
const newSpecOption = "<new spec…>"

type phase int

const (
	phaseBase phase = iota
	phaseSpec
	phaseNewSpec
	phaseDone
)

// Choice is the user's resolution for one ambiguous branch.
type Choice struct {
	Base    string
	SpecID  string
	Skipped bool
}

type model struct {
	d       importer.Disambiguation
	phase   phase
	cursor  int
	options []string
	keys    pickerKeyMap
	input   textinput.Model

	choice   Choice
	quitting bool
	aborted  bool
}

func newModel(d importer.Disambiguation) *model {
	m := &model{
		d:    d,
		keys: defaultKeyMap,
	}
	m.input = textinput.New()
	m.input.Placeholder = "spec id"
	m.input.CharLimit = 64

	if len(d.BaseOptions) == 1 {
		// Base already determined by inference; only the spec is open.
		m.choice.Base = d.BaseOptions[0]
		m.enterSpecPhase()
	} else {
		m.phase = phaseBase
		m.options = d.BaseOptions
	}
	return m
}

func (m *model) enterSpecPhase() {
	m.phase = phaseSpec
	m.cursor = 0
	m.options = append([]string{}, m.d.SpecOptions...)
	m.options = append(m.options, newSpecOption)
}
