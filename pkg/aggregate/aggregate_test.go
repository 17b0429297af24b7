package aggregate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-stack/pkg/store"
	"github.com/mattsolo1/grove-stack/pkg/workspace"
)

func seedRepo(t *testing.T, parent, name string, entries ...store.BranchEntry) string {
	t.Helper()
	repo := filepath.Join(parent, name)
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))
	if len(entries) > 0 {
		doc := store.NewMappingFile()
		doc.Branches = entries
		require.NoError(t, store.Save(repo, doc))
	}
	return repo
}

func branchEntry(name, base, spec string, status store.Status) store.BranchEntry {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e := store.BranchEntry{
		Name:       name,
		BaseBranch: base,
		SpecID:     spec,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if status == store.StatusSubmitted {
		e.PullRequestRef = "org/repo#1"
	}
	return e
}

func rootContext(t *testing.T, repo string) *workspace.Context {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(repo, workspace.SpecsDirName, "spec-1"), 0o755))
	ctx, err := workspace.Detect(repo)
	require.NoError(t, err)
	require.Equal(t, workspace.ModeRoot, ctx.Mode)
	return ctx
}

func TestCollectComposesHealthyRepos(t *testing.T) {
	parent := t.TempDir()
	root := seedRepo(t, parent, "platform",
		branchEntry("feat-a", "main", "spec-1", store.StatusActive),
		branchEntry("feat-b", "feat-a", "spec-1", store.StatusSubmitted),
	)
	seedRepo(t, parent, "svc-a",
		branchEntry("svc-feat", "main", "spec-1", store.StatusActive),
	)

	view, err := Collect(context.Background(), rootContext(t, root),
		[]string{filepath.Join(parent, "svc-a")}, 4)
	require.NoError(t, err)

	assert.Equal(t, 2, view.Root.BranchCount)
	assert.Equal(t, 1, view.Root.StatusCounts[store.StatusActive])
	assert.Equal(t, 1, view.Root.StatusCounts[store.StatusSubmitted])
	require.Len(t, view.Root.Chains, 1)
	assert.Equal(t, []string{"feat-a", "feat-b"}, view.Root.Chains[0].Branches)

	require.Len(t, view.Children, 1)
	assert.Equal(t, "svc-a", view.Children[0].Repo)
	assert.Equal(t, 1, view.Children[0].BranchCount)
	assert.Empty(t, view.Failures)
}

func TestCollectToleratesFailingRepos(t *testing.T) {
	parent := t.TempDir()
	root := seedRepo(t, parent, "platform",
		branchEntry("feat-a", "main", "spec-1", store.StatusActive),
	)

	// svc-empty has no store; svc-corrupt has an unreadable one.
	seedRepo(t, parent, "svc-empty")
	corrupt := seedRepo(t, parent, "svc-corrupt")
	require.NoError(t, os.MkdirAll(filepath.Join(corrupt, store.GroveDir), 0o755))
	require.NoError(t, os.WriteFile(store.Path(corrupt), []byte("{broken"), 0o644))

	view, err := Collect(context.Background(), rootContext(t, root), []string{
		filepath.Join(parent, "svc-corrupt"),
		filepath.Join(parent, "svc-empty"),
	}, 2)
	require.NoError(t, err, "partial failures must not fail the collection")

	assert.Equal(t, 1, view.Root.BranchCount)
	require.Len(t, view.Children, 2)
	assert.Equal(t, "svc-corrupt", view.Children[0].Repo)
	assert.NotEmpty(t, view.Children[0].Error)
	assert.Equal(t, "svc-empty", view.Children[1].Repo)
	assert.Equal(t, "no branches tracked (store not initialized)", view.Children[1].Error)
	assert.Len(t, view.Failures, 2)
}

func TestCollectFlagsCyclicChildWithoutFailing(t *testing.T) {
	parent := t.TempDir()
	root := seedRepo(t, parent, "platform",
		branchEntry("feat-a", "main", "spec-1", store.StatusActive),
	)

	// A hand-edited child store with a two-branch loop. Save would
	// reject it, so write the raw document directly.
	cyclic := seedRepo(t, parent, "svc-cyclic")
	require.NoError(t, os.MkdirAll(filepath.Join(cyclic, store.GroveDir), 0o755))
	raw := `{
	  "schemaVersion": "1.1.0",
	  "branches": [
	    {"name": "x", "baseBranch": "y", "specId": "s", "status": "active",
	     "createdAt": "2025-06-01T12:00:00Z", "updatedAt": "2025-06-01T12:00:00Z"},
	    {"name": "y", "baseBranch": "x", "specId": "s", "status": "active",
	     "createdAt": "2025-06-01T12:00:00Z", "updatedAt": "2025-06-01T12:00:00Z"}
	  ],
	  "specIndex": {}
	}`
	require.NoError(t, os.WriteFile(store.Path(cyclic), []byte(raw), 0o644))

	view, err := Collect(context.Background(), rootContext(t, root),
		[]string{cyclic}, 1)
	require.NoError(t, err)
	require.Len(t, view.Children, 1)
	assert.Contains(t, view.Children[0].Error, "dependency cycle")
}

func TestCollectCancelledContext(t *testing.T) {
	parent := t.TempDir()
	root := seedRepo(t, parent, "platform")
	rootCtx := rootContext(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Collect(ctx, rootCtx, nil, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
