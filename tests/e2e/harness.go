package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Scenario is one end-to-end flow: Setup prepares a repository, Steps
// drive the binary against it.
type Scenario struct {
	Name  string
	Setup func(repo *TestRepo) error
	Steps []Step
}

// Step is one gstack invocation plus its expectations. Git commands in
// Pre run first, for state the binary cannot set up itself. ExitCode is
// asserted always; Contains is matched against combined output when set.
type Step struct {
	Pre      [][]string
	Args     []string
	ExitCode int
	Contains string
}

func (s *Scenario) run(binary string) error {
	dir, err := os.MkdirTemp("", "gstack-e2e-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	repo := &TestRepo{Dir: filepath.Join(dir, "repo")}
	if err := repo.Init(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	if s.Setup != nil {
		if err := s.Setup(repo); err != nil {
			return fmt.Errorf("setup: %w", err)
		}
	}

	for i, step := range s.Steps {
		for _, git := range step.Pre {
			if err := repo.Git(git...); err != nil {
				return fmt.Errorf("step %d pre: %w", i+1, err)
			}
		}
		out, code, err := runBinary(binary, repo.Dir, step.Args)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, strings.Join(step.Args, " "), err)
		}
		if code != step.ExitCode {
			return fmt.Errorf("step %d (%s): exit code %d, want %d\noutput:\n%s",
				i+1, strings.Join(step.Args, " "), code, step.ExitCode, out)
		}
		if step.Contains != "" && !strings.Contains(out, step.Contains) {
			return fmt.Errorf("step %d (%s): output missing %q\noutput:\n%s",
				i+1, strings.Join(step.Args, " "), step.Contains, out)
		}
	}
	return nil
}

func runBinary(binary, dir string, args []string) (string, int, error) {
	cmd := exec.Command(binary, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), exitErr.ExitCode(), nil
		}
		return string(out), -1, err
	}
	return string(out), 0, nil
}

// findBinary resolves the gstack binary under test.
func findBinary() (string, error) {
	if bin := os.Getenv("GSTACK_BIN"); bin != "" {
		abs, err := filepath.Abs(bin)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(abs); err != nil {
			return "", fmt.Errorf("GSTACK_BIN %s: %w", bin, err)
		}
		return abs, nil
	}
	bin, err := exec.LookPath("gstack")
	if err != nil {
		return "", fmt.Errorf("gstack not on PATH; set GSTACK_BIN to the built binary")
	}
	return bin, nil
}

// TestRepo is a throwaway git repository the scenarios drive the binary
// against.
type TestRepo struct {
	Dir string
}

func (r *TestRepo) Init() error {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return err
	}
	steps := [][]string{
		{"init", "--initial-branch=main"},
		{"config", "user.email", "e2e@example.invalid"},
		{"config", "user.name", "e2e"},
		{"commit", "--allow-empty", "-m", "initial"},
	}
	for _, args := range steps {
		if err := r.Git(args...); err != nil {
			return err
		}
	}
	return nil
}

func (r *TestRepo) Git(args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, out)
	}
	return nil
}

// Branch creates a local branch off base and returns to main.
func (r *TestRepo) Branch(name, base string) error {
	if err := r.Git("branch", name, base); err != nil {
		return err
	}
	return nil
}

// TrackedBranch creates a branch and points its upstream at another
// local branch, the layout import inference reads.
func (r *TestRepo) TrackedBranch(name, base string) error {
	if err := r.Branch(name, base); err != nil {
		return err
	}
	return r.Git("branch", "--set-upstream-to="+base, name)
}
