package cmd

import (
	"errors"

	"github.com/mattsolo1/grove-stack/pkg/gitx"
	"github.com/mattsolo1/grove-stack/pkg/stack"
	"github.com/mattsolo1/grove-stack/pkg/store"
	"github.com/mattsolo1/grove-stack/pkg/workspace"
)

// Exit codes, one per failure class, so scripting callers can branch on
// what went wrong rather than parsing messages.
const (
	ExitOK              = 0
	ExitValidation      = 1 // malformed input, unknown branch, bad status value
	ExitStructural      = 2 // cycle, duplicate name, cross-repo base
	ExitConsistency     = 3 // corrupt document, unknown schema version
	ExitEnvironment     = 4 // adapter failure, unusable repository context
	ExitNotInitialized  = 5
	ExitHasDependents   = 6
	ExitTransition      = 7 // invalid lifecycle transition or missing PR ref
	ExitNothingToImport = 8
)

// errNotInitialized wraps store.ErrNotFound for commands that require
// an existing mapping file.
var errNotInitialized = errors.New("no branches tracked here yet; run 'gstack create' or 'gstack import' first")

// errNothingToImport reports an import run that found no candidates.
var errNothingToImport = errors.New("nothing to import: every local branch is already tracked")

// ExitCode classifies an error into its exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		validationErr *store.ValidationError
		schemaErr     *store.SchemaError
		corruptErr    *store.CorruptError
		cycleErr      *stack.CycleError
		dependentsErr *stack.DependentsError
		contextErr    *workspace.ContextError
		execErr       *gitx.ExecError
	)

	switch {
	case errors.Is(err, errNotInitialized), errors.Is(err, store.ErrNotFound):
		return ExitNotInitialized
	case errors.Is(err, errNothingToImport):
		return ExitNothingToImport
	case errors.Is(err, stack.ErrInvalidTransition), errors.Is(err, stack.ErrMissingPullRequestRef):
		return ExitTransition
	case errors.As(err, &dependentsErr):
		return ExitHasDependents
	case errors.As(err, &cycleErr):
		return ExitStructural
	case errors.As(err, &schemaErr), errors.As(err, &corruptErr):
		return ExitConsistency
	case errors.As(err, &contextErr), errors.As(err, &execErr):
		return ExitEnvironment
	case errors.As(err, &validationErr):
		return ExitValidation
	}
	return ExitValidation
}
