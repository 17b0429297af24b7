package picker

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-stack/pkg/importer"
)

// ErrAborted means the user quit the picker; import stops entirely.
var ErrAborted = errors.New("import aborted")

// Run presents one disambiguation and blocks until the user picks a
// base and spec, skips the branch, or aborts.
func Run(d importer.Disambiguation) (Choice, error) {
	m := newModel(d)
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return Choice{}, fmt.Errorf("running import picker: %w", err)
	}
	result := final.(*model)
	if result.aborted {
		return Choice{}, ErrAborted
	}
	return result.choice, nil
}
