// Package workspace determines how the current repository relates to a
// multi-repository specification root.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// Marker paths inside a repository. A root repo carries a real specs
// directory; a child carries a symlink into some root's specs dir.
const (
	SpecsDirName   = ".grove/specs"
	SpecRootMarker = ".grove/spec-root"
)

// Mode classifies a repository.
type Mode string

const (
	ModeStandalone Mode = "standalone"
	ModeRoot       Mode = "multi-repo-root"
	ModeChild      Mode = "multi-repo-child"
)

// Context is the runtime-computed location of a repository. It is never
// persisted; every command recomputes it.
type Context struct {
	Mode         Mode
	RepoRoot     string
	SpecRoot     string // shared specification directory; empty for standalone
	ParentSpecID string // set only for children
}

// ContextError reports an unusable marker layout.
type ContextError struct {
	Path   string
	Reason string
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("cannot resolve repository context at %s: %s", e.Path, e.Reason)
}

// Detect resolves the context for the given working directory. It walks
// up to the enclosing repository root, then inspects the marker layout.
// The whole resolution is pure filesystem work so every command can
// afford it.
func Detect(dir string) (*Context, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, &ContextError{Path: dir, Reason: err.Error()}
	}

	repoRoot := findRepoRoot(abs)
	if repoRoot == "" {
		return nil, &ContextError{Path: abs, Reason: "not inside a git repository"}
	}

	// Child marker wins: a linked child may also carry its own specs
	// dir for local notes, but the link defines its place.
	marker := filepath.Join(repoRoot, SpecRootMarker)
	if info, err := os.Lstat(marker); err == nil {
		if info.Mode()&os.ModeSymlink == 0 {
			return nil, &ContextError{Path: marker, Reason: "spec-root marker exists but is not a symbolic link"}
		}
		return resolveChild(repoRoot, marker)
	}

	specsDir := filepath.Join(repoRoot, SpecsDirName)
	if info, err := os.Stat(specsDir); err == nil && info.IsDir() {
		return &Context{
			Mode:     ModeRoot,
			RepoRoot: repoRoot,
			SpecRoot: specsDir,
		}, nil
	}

	return &Context{Mode: ModeStandalone, RepoRoot: repoRoot}, nil
}

// resolveChild follows the marker link and validates that it lands in a
// root repository's specs directory.
func resolveChild(repoRoot, marker string) (*Context, error) {
	target, err := os.Readlink(marker)
	if err != nil {
		return nil, &ContextError{Path: marker, Reason: fmt.Sprintf("unreadable marker link: %v", err)}
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(marker), target)
	}
	target = filepath.Clean(target)

	info, err := os.Stat(target)
	if err != nil {
		return nil, &ContextError{Path: marker, Reason: fmt.Sprintf("marker target %s is unreadable: %v", target, err)}
	}
	if !info.IsDir() {
		return nil, &ContextError{Path: marker, Reason: fmt.Sprintf("marker target %s is not a directory", target)}
	}

	// Expected layout: <rootRepo>/.grove/specs/<parentSpecId>.
	parentSpecID := filepath.Base(target)
	specsDir := filepath.Dir(target)
	groveDir := filepath.Dir(specsDir)
	if filepath.Base(specsDir) != "specs" || filepath.Base(groveDir) != ".grove" {
		return nil, &ContextError{
			Path:   marker,
			Reason: fmt.Sprintf("marker target %s is not inside a specification root (<repo>/%s/<specId>)", target, SpecsDirName),
		}
	}

	return &Context{
		Mode:         ModeChild,
		RepoRoot:     repoRoot,
		SpecRoot:     specsDir,
		ParentSpecID: parentSpecID,
	}, nil
}

// findRepoRoot walks up from dir looking for a .git entry.
func findRepoRoot(dir string) string {
	current := dir
	for {
		if _, err := os.Lstat(filepath.Join(current, ".git")); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}
