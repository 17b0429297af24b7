package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-stack/pkg/gitx"
	"github.com/mattsolo1/grove-stack/pkg/store"
)

var importTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func trackedDoc(entries ...store.BranchEntry) *store.MappingFile {
	d := store.NewMappingFile()
	d.Branches = entries
	d.RebuildSpecIndex()
	return d
}

func tracked(name, base, spec string) store.BranchEntry {
	return store.BranchEntry{
		Name:       name,
		BaseBranch: base,
		SpecID:     spec,
		Status:     store.StatusActive,
		CreatedAt:  importTime,
		UpdatedAt:  importTime,
	}
}

func TestCandidatesExcludesTrunkAndTracked(t *testing.T) {
	doc := trackedDoc(tracked("feat-a", "main", "spec-1"))
	branches := []gitx.Branch{
		{Name: "main"},
		{Name: "feat-a", Upstream: "origin/main"},
		{Name: "feat-b", Upstream: "origin/feat-a"},
	}

	candidates := Candidates(branches, doc, "main")
	require.Len(t, candidates, 1)
	assert.Equal(t, "feat-b", candidates[0].Name)
}

func TestInferInheritsSpecFromTrackedBase(t *testing.T) {
	doc := trackedDoc(tracked("feat-a", "main", "spec-1"))
	candidates := []Candidate{{Name: "feat-b", Upstream: "origin/feat-a"}}

	result := Infer(candidates, doc, "main", importTime)
	require.Len(t, result.Entries, 1)
	assert.Empty(t, result.Ambiguous)

	entry := result.Entries[0]
	assert.Equal(t, "feat-b", entry.Name)
	assert.Equal(t, "feat-a", entry.BaseBranch)
	assert.Equal(t, "spec-1", entry.SpecID)
	assert.Equal(t, store.StatusActive, entry.Status)
}

func TestInferResolvesIntraBatchChain(t *testing.T) {
	// b -> a -> tracked; a resolves first, then b inherits through it,
	// whatever order the candidates arrive in.
	doc := trackedDoc(tracked("feat-a", "main", "spec-1"))
	candidates := []Candidate{
		{Name: "feat-c", Upstream: "origin/feat-b"},
		{Name: "feat-b", Upstream: "origin/feat-a"},
	}

	result := Infer(candidates, doc, "main", importTime)
	require.Len(t, result.Entries, 2)
	assert.Empty(t, result.Ambiguous)
	assert.Equal(t, "feat-b", result.Entries[0].Name)
	assert.Equal(t, "spec-1", result.Entries[0].SpecID)
	assert.Equal(t, "feat-c", result.Entries[1].Name)
	assert.Equal(t, "feat-b", result.Entries[1].BaseBranch)
	assert.Equal(t, "spec-1", result.Entries[1].SpecID)
}

func TestInferNoUpstreamIsAmbiguous(t *testing.T) {
	doc := trackedDoc(tracked("feat-a", "main", "spec-1"))
	candidates := []Candidate{{Name: "orphan"}}

	result := Infer(candidates, doc, "main", importTime)
	assert.Empty(t, result.Entries)
	require.Len(t, result.Ambiguous, 1)

	d := result.Ambiguous[0]
	assert.Equal(t, "orphan", d.Name)
	assert.Contains(t, d.BaseOptions, "main")
	assert.Contains(t, d.BaseOptions, "feat-a")
	assert.NotContains(t, d.BaseOptions, "orphan")
	assert.Equal(t, []string{"spec-1"}, d.SpecOptions)
}

func TestInferTrunkUpstreamKnowsBaseNotSpec(t *testing.T) {
	doc := trackedDoc(tracked("feat-a", "main", "spec-1"))
	candidates := []Candidate{{Name: "feat-x", Upstream: "origin/main"}}

	result := Infer(candidates, doc, "main", importTime)
	assert.Empty(t, result.Entries)
	require.Len(t, result.Ambiguous, 1)
	assert.Equal(t, []string{"main"}, result.Ambiguous[0].BaseOptions)
}

func TestInferSelfTrackingUpstreamIsAmbiguous(t *testing.T) {
	// git push -u leaves the branch tracking its own remote counterpart;
	// that must not read as the branch being stacked on itself.
	doc := trackedDoc(tracked("feat-a", "main", "spec-1"))
	candidates := []Candidate{{Name: "feat-b", Upstream: "origin/feat-b"}}

	result := Infer(candidates, doc, "main", importTime)
	assert.Empty(t, result.Entries)
	require.Len(t, result.Ambiguous, 1)

	d := result.Ambiguous[0]
	assert.Equal(t, "feat-b", d.Name)
	assert.NotContains(t, d.BaseOptions, "feat-b")
	assert.Contains(t, d.BaseOptions, "main")
	assert.Contains(t, d.BaseOptions, "feat-a")
}

func TestInferChainOnAmbiguousInheritsAmbiguity(t *testing.T) {
	doc := store.NewMappingFile()
	candidates := []Candidate{
		{Name: "feat-a", Upstream: "origin/main"},
		{Name: "feat-b", Upstream: "origin/feat-a"},
	}

	result := Infer(candidates, doc, "main", importTime)
	assert.Empty(t, result.Entries)
	require.Len(t, result.Ambiguous, 2)
	assert.Equal(t, "feat-a", result.Ambiguous[0].Name)
	assert.Equal(t, "feat-b", result.Ambiguous[1].Name)
	assert.Equal(t, []string{"feat-a"}, result.Ambiguous[1].BaseOptions)
}

func TestInferIsIdempotent(t *testing.T) {
	// After a first import the branches are tracked, so a second pass
	// has no candidates at all.
	doc := trackedDoc(
		tracked("feat-a", "main", "spec-1"),
		tracked("feat-b", "feat-a", "spec-1"),
	)
	branches := []gitx.Branch{
		{Name: "main"},
		{Name: "feat-a", Upstream: "origin/main"},
		{Name: "feat-b", Upstream: "origin/feat-a"},
	}

	candidates := Candidates(branches, doc, "main")
	assert.Empty(t, candidates)

	result := Infer(candidates, doc, "main", importTime)
	assert.Empty(t, result.Entries)
	assert.Empty(t, result.Ambiguous)
}

func TestResolve(t *testing.T) {
	d := Disambiguation{Name: "orphan"}
	entry := Resolve(d, "main", "spec-9", importTime)
	assert.Equal(t, "orphan", entry.Name)
	assert.Equal(t, "main", entry.BaseBranch)
	assert.Equal(t, "spec-9", entry.SpecID)
	assert.Equal(t, importTime, entry.CreatedAt)
}

func TestLocalName(t *testing.T) {
	assert.Equal(t, "feat-a", localName("origin/feat-a"))
	assert.Equal(t, "feat-a", localName("feat-a"))
	assert.Equal(t, "nested/feat", localName("origin/nested/feat"))
}
