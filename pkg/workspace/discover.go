package workspace

import (
	"os"
	"path/filepath"
	"sort"
)

// DiscoverChildren finds the repositories linked under a multi-repo
// root by scanning the root repo's siblings for marker links that
// resolve into the root's specs directory. Broken links in unrelated
// repositories are ignored.
func DiscoverChildren(root *Context) ([]string, error) {
	if root.Mode != ModeRoot {
		return nil, &ContextError{Path: root.RepoRoot, Reason: "child discovery requires a multi-repo root"}
	}

	parent := filepath.Dir(root.RepoRoot)
	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil, &ContextError{Path: parent, Reason: err.Error()}
	}

	var children []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(parent, entry.Name())
		if candidate == root.RepoRoot {
			continue
		}
		ctx, err := Detect(candidate)
		if err != nil || ctx.Mode != ModeChild {
			continue
		}
		if ctx.SpecRoot == root.SpecRoot {
			children = append(children, ctx.RepoRoot)
		}
	}

	sort.Strings(children)
	return children, nil
}

// Link creates the marker symlink making repoRoot a child of the given
// spec under the specification root. Used by setup tooling and tests.
func Link(repoRoot, specRoot, specID string) error {
	groveDir := filepath.Join(repoRoot, ".grove")
	if err := os.MkdirAll(groveDir, 0o755); err != nil {
		return err
	}
	target := filepath.Join(specRoot, specID)
	return os.Symlink(target, filepath.Join(repoRoot, SpecRootMarker))
}
