package gitx

import (
	"context"
	"fmt"
	"sort"
)

// Fake is an in-memory Adapter for tests. Branches maps branch name to
// upstream ref; MergedInto holds "branch->base" pairs that report merged.
type Fake struct {
	Branches   map[string]string
	MergedInto map[string]bool
	Head       string
	Dirty      bool

	// FailCalls makes the named methods return an error, for exercising
	// degraded-to-warning paths.
	FailCalls map[string]bool

	CreatedBranches []string
	CheckedOut      []string
}

// NewFake returns an empty Fake ready for use.
func NewFake() *Fake {
	return &Fake{
		Branches:   make(map[string]string),
		MergedInto: make(map[string]bool),
		FailCalls:  make(map[string]bool),
	}
}

func (f *Fake) fail(method string) error {
	if f.FailCalls[method] {
		return &ExecError{Op: method, Err: fmt.Errorf("injected failure")}
	}
	return nil
}

func (f *Fake) ListBranches(ctx context.Context) ([]Branch, error) {
	if err := f.fail("ListBranches"); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.Branches))
	for name := range f.Branches {
		names = append(names, name)
	}
	sort.Strings(names)
	branches := make([]Branch, 0, len(names))
	for _, name := range names {
		branches = append(branches, Branch{Name: name, Upstream: f.Branches[name]})
	}
	return branches, nil
}

func (f *Fake) BranchExists(ctx context.Context, name string) (bool, error) {
	if err := f.fail("BranchExists"); err != nil {
		return false, err
	}
	_, ok := f.Branches[name]
	return ok, nil
}

func (f *Fake) IsMergedInto(ctx context.Context, branch, base string) (bool, error) {
	if err := f.fail("IsMergedInto"); err != nil {
		return false, err
	}
	return f.MergedInto[branch+"->"+base], nil
}

func (f *Fake) UpstreamOf(ctx context.Context, branch string) (string, error) {
	if err := f.fail("UpstreamOf"); err != nil {
		return "", err
	}
	return f.Branches[branch], nil
}

func (f *Fake) CurrentBranch(ctx context.Context) (string, error) {
	if err := f.fail("CurrentBranch"); err != nil {
		return "", err
	}
	return f.Head, nil
}

func (f *Fake) HasUncommittedChanges(ctx context.Context) (bool, error) {
	if err := f.fail("HasUncommittedChanges"); err != nil {
		return false, err
	}
	return f.Dirty, nil
}

func (f *Fake) CreateBranch(ctx context.Context, name, base string) error {
	if err := f.fail("CreateBranch"); err != nil {
		return err
	}
	if _, exists := f.Branches[name]; exists {
		return &ExecError{Op: "branch", Err: fmt.Errorf("branch %s already exists", name)}
	}
	f.Branches[name] = ""
	f.CreatedBranches = append(f.CreatedBranches, name)
	return nil
}

func (f *Fake) Checkout(ctx context.Context, name string) error {
	if err := f.fail("Checkout"); err != nil {
		return err
	}
	f.Head = name
	f.CheckedOut = append(f.CheckedOut, name)
	return nil
}
