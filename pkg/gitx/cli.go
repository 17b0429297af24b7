package gitx

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// CLI runs git commands in a fixed repository directory.
type CLI struct {
	dir string
}

// NewCLI returns an adapter executing git inside dir.
func NewCLI(dir string) *CLI {
	return &CLI{dir: dir}
}

func (c *CLI) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, &ExecError{
			Op:     strings.Join(args, " "),
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return out, nil
}

// ListBranches returns all local branches with their upstream-tracking
// refs, using a single for-each-ref invocation.
func (c *CLI) ListBranches(ctx context.Context) ([]Branch, error) {
	out, err := c.run(ctx, "for-each-ref", "refs/heads",
		"--format=%(refname:short)\t%(upstream:short)")
	if err != nil {
		return nil, err
	}

	var branches []Branch
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\n")
		if line == "" {
			continue
		}
		name, upstream, _ := strings.Cut(line, "\t")
		branches = append(branches, Branch{
			Name:     name,
			Upstream: strings.TrimSpace(upstream),
		})
	}
	return branches, scanner.Err()
}

// BranchExists reports whether a local branch with the given name exists.
func (c *CLI) BranchExists(ctx context.Context, name string) (bool, error) {
	_, err := c.run(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+name)
	if err == nil {
		return true, nil
	}
	var execErr *ExecError
	if errors.As(err, &execErr) {
		var exitErr *exec.ExitError
		if errors.As(execErr.Err, &exitErr) {
			return false, nil
		}
	}
	return false, err
}

// IsMergedInto reports whether branch is an ancestor of base, i.e. all
// of its commits are already reachable from base.
func (c *CLI) IsMergedInto(ctx context.Context, branch, base string) (bool, error) {
	_, err := c.run(ctx, "merge-base", "--is-ancestor", branch, base)
	if err == nil {
		return true, nil
	}
	var execErr *ExecError
	if errors.As(err, &execErr) {
		var exitErr *exec.ExitError
		if errors.As(execErr.Err, &exitErr) && exitErr.ExitCode() == 1 {
			return false, nil
		}
	}
	return false, err
}

// UpstreamOf returns the upstream-tracking ref of branch, or "" when
// none is configured.
func (c *CLI) UpstreamOf(ctx context.Context, branch string) (string, error) {
	out, err := c.run(ctx, "rev-parse", "--abbrev-ref", branch+"@{upstream}")
	if err != nil {
		var execErr *ExecError
		if errors.As(err, &execErr) {
			var exitErr *exec.ExitError
			if errors.As(execErr.Err, &exitErr) {
				// No upstream configured is not an error for us.
				return "", nil
			}
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// CurrentBranch returns the checked-out branch name.
func (c *CLI) CurrentBranch(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// HasUncommittedChanges reports whether tracked files carry staged or
// unstaged modifications. Untracked files do not count; checkouts carry
// them along.
func (c *CLI) HasUncommittedChanges(ctx context.Context) (bool, error) {
	out, err := c.run(ctx, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return false, err
	}
	return len(bytes.TrimSpace(out)) > 0, nil
}

// CreateBranch creates a new branch pointing at base without switching
// to it.
func (c *CLI) CreateBranch(ctx context.Context, name, base string) error {
	_, err := c.run(ctx, "branch", name, base)
	return err
}

// Checkout switches the working tree to the given branch.
func (c *CLI) Checkout(ctx context.Context, name string) error {
	_, err := c.run(ctx, "checkout", name)
	return err
}
