package stack

import (
	"errors"
	"fmt"
	"time"

	"github.com/mattsolo1/grove-stack/pkg/store"
)

// ErrInvalidTransition rejects a lifecycle move the state machine does
// not permit, including any attempt to leave a terminal state.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrMissingPullRequestRef rejects entering submitted without recording
// a pull request reference in the same update.
var ErrMissingPullRequestRef = errors.New("missing pull request reference")

// transitions is the full state machine: active → submitted → {merged,
// abandoned}, plus the direct active → abandoned shortcut. merged and
// abandoned are terminal.
var transitions = map[store.Status][]store.Status{
	store.StatusActive:    {store.StatusSubmitted, store.StatusAbandoned},
	store.StatusSubmitted: {store.StatusMerged, store.StatusAbandoned},
}

// CanTransition reports whether from → to is a legal move.
func CanTransition(from, to store.Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition applies a validated status change to the entry. prRef, if
// non-empty, is recorded alongside; it is mandatory when entering
// submitted. The entry is only modified when the transition is legal.
func Transition(entry *store.BranchEntry, to store.Status, prRef string, now time.Time) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if entry.Status.Terminal() {
		return fmt.Errorf("%w: %q is %s, a terminal state", ErrInvalidTransition, entry.Name, entry.Status)
	}
	if !CanTransition(entry.Status, to) {
		return fmt.Errorf("%w: %s → %s is not permitted for %q", ErrInvalidTransition, entry.Status, to, entry.Name)
	}
	if to == store.StatusSubmitted && prRef == "" && entry.PullRequestRef == "" {
		return fmt.Errorf("%w: submitting %q requires --pr", ErrMissingPullRequestRef, entry.Name)
	}

	entry.Status = to
	if prRef != "" {
		entry.PullRequestRef = prRef
	}
	entry.UpdatedAt = now
	return nil
}
