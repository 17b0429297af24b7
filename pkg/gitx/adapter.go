// Package gitx is the narrow query surface grove-stack needs from the
// version-control tool. Everything else about git stays out of scope.
package gitx

import (
	"context"
	"fmt"
)

// Branch is one local branch together with its upstream-tracking ref,
// e.g. {Name: "feat-auth", Upstream: "origin/feat-auth"}. Upstream is
// empty when no tracking ref is configured.
type Branch struct {
	Name     string
	Upstream string
}

// Adapter abstracts the version-control queries and the two mutations
// grove-stack performs. Implementations must honor ctx cancellation so
// callers can time-bound individual calls.
type Adapter interface {
	ListBranches(ctx context.Context) ([]Branch, error)
	BranchExists(ctx context.Context, name string) (bool, error)
	IsMergedInto(ctx context.Context, branch, base string) (bool, error)
	UpstreamOf(ctx context.Context, branch string) (string, error)
	CurrentBranch(ctx context.Context) (string, error)
	HasUncommittedChanges(ctx context.Context) (bool, error)
	CreateBranch(ctx context.Context, name, base string) error
	Checkout(ctx context.Context, name string) error
}

// ExecError wraps a failed invocation of the underlying tool. Callers
// use errors.As to classify it as an environment failure rather than a
// validation or structural one.
type ExecError struct {
	Op     string
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git %s: %v: %s", e.Op, e.Err, e.Stderr)
	}
	return fmt.Sprintf("git %s: %v", e.Op, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }
