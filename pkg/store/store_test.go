package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(name, base, spec string) BranchEntry {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return BranchEntry{
		Name:       name,
		BaseBranch: base,
		SpecID:     spec,
		Status:     StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	doc := NewMappingFile()
	doc.Branches = []BranchEntry{
		entry("feat-a", "main", "spec-1"),
		entry("feat-b", "feat-a", "spec-1"),
	}

	require.NoError(t, Save(dir, doc))

	loaded, err := Load(dir)
	require.NoError(t, err)

	// Equal up to SpecIndex recomputation, which Save performs.
	assert.Equal(t, doc.SchemaVersion, loaded.SchemaVersion)
	assert.Equal(t, doc.Branches, loaded.Branches)
	assert.Equal(t, map[string][]string{"spec-1": {"feat-a", "feat-b"}}, loaded.SpecIndex)
}

func TestSaveRejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()

	doc := NewMappingFile()
	doc.Branches = []BranchEntry{
		entry("feat-a", "main", "spec-1"),
		entry("feat-a", "main", "spec-2"),
	}

	err := Save(dir, doc)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "name", validationErr.Field)

	// Nothing must be written on a rejected save.
	_, err = os.Stat(Path(dir))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	doc := NewMappingFile()
	doc.Branches = []BranchEntry{entry("feat-a", "main", "spec-1")}
	require.NoError(t, Save(dir, doc))

	entries, err := os.ReadDir(filepath.Join(dir, GroveDir))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "branches.json", entries[0].Name())
}

func TestLoadPriorMinorVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, GroveDir), 0o755))

	// A 1.0 document predates parentSpecId and pullRequestRef.
	raw := `{
	  "schemaVersion": "1.0.0",
	  "branches": [
	    {
	      "name": "feat-a",
	      "baseBranch": "main",
	      "specId": "spec-1",
	      "status": "active",
	      "createdAt": "2025-06-01T12:00:00Z",
	      "updatedAt": "2025-06-01T12:00:00Z"
	    }
	  ],
	  "specIndex": {"spec-1": ["feat-a"]}
	}`
	require.NoError(t, os.WriteFile(Path(dir), []byte(raw), 0o644))

	doc, err := Load(dir)
	require.NoError(t, err)

	// Absent optional fields stay absent, not default-substituted.
	assert.Equal(t, "1.0.0", doc.SchemaVersion)
	assert.Empty(t, doc.Branches[0].ParentSpecID)
	assert.Empty(t, doc.Branches[0].PullRequestRef)

	// The file itself is never rewritten by a load.
	after, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, raw, string(after))
}

func TestLoadUnknownMajorFailsClosed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, GroveDir), 0o755))
	raw := `{"schemaVersion": "2.0.0", "branches": [], "specIndex": {}}`
	require.NoError(t, os.WriteFile(Path(dir), []byte(raw), 0o644))

	_, err := Load(dir)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "2.0.0", schemaErr.Version)
}

func TestLoadNewerMinorFailsClosed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, GroveDir), 0o755))
	raw := `{"schemaVersion": "1.9.0", "branches": [], "specIndex": {}}`
	require.NoError(t, os.WriteFile(Path(dir), []byte(raw), 0o644))

	_, err := Load(dir)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestLoadCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, GroveDir), 0o755))
	require.NoError(t, os.WriteFile(Path(dir), []byte("{not json"), 0o644))

	_, err := Load(dir)
	var corruptErr *CorruptError
	require.ErrorAs(t, err, &corruptErr)
	assert.Contains(t, corruptErr.Error(), "restore")
}

func TestMutateCreatesLazily(t *testing.T) {
	dir := t.TempDir()

	err := Mutate(dir, func(doc *MappingFile) error {
		doc.Branches = append(doc.Branches, entry("feat-a", "main", "spec-1"))
		return nil
	})
	require.NoError(t, err)

	doc, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, doc.SchemaVersion)
	assert.Len(t, doc.Branches, 1)
}

func TestMutateExistingRequiresStore(t *testing.T) {
	called := false
	err := MutateExisting(t.TempDir(), func(doc *MappingFile) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ErrNotFound)
	assert.False(t, called)
}

func TestMutateErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	doc := NewMappingFile()
	doc.Branches = []BranchEntry{entry("feat-a", "main", "spec-1")}
	require.NoError(t, Save(dir, doc))
	before, err := os.ReadFile(Path(dir))
	require.NoError(t, err)

	err = Mutate(dir, func(doc *MappingFile) error {
		doc.Branches = nil // would be persisted if fn succeeded
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	after, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BranchEntry)
		field   string
		wantErr bool
	}{
		{name: "valid", mutate: func(e *BranchEntry) {}},
		{name: "empty name", mutate: func(e *BranchEntry) { e.Name = "" }, field: "name", wantErr: true},
		{name: "bad characters", mutate: func(e *BranchEntry) { e.Name = "feat a" }, field: "name", wantErr: true},
		{name: "no base", mutate: func(e *BranchEntry) { e.BaseBranch = "" }, field: "baseBranch", wantErr: true},
		{name: "cross-repo base", mutate: func(e *BranchEntry) { e.BaseBranch = "other-repo:main" }, field: "baseBranch", wantErr: true},
		{name: "no spec", mutate: func(e *BranchEntry) { e.SpecID = "" }, field: "specId", wantErr: true},
		{name: "bad status", mutate: func(e *BranchEntry) { e.Status = "parked" }, field: "status", wantErr: true},
		{name: "submitted without pr", mutate: func(e *BranchEntry) { e.Status = StatusSubmitted }, field: "pullRequestRef", wantErr: true},
		{name: "updated before created", mutate: func(e *BranchEntry) { e.UpdatedAt = e.CreatedAt.Add(-time.Hour) }, field: "updatedAt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entry("feat-a", "main", "spec-1")
			tt.mutate(&e)
			err := ValidateEntry(&e)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestSpecIndexIsRebuiltOnSave(t *testing.T) {
	dir := t.TempDir()
	doc := NewMappingFile()
	doc.Branches = []BranchEntry{entry("feat-a", "main", "spec-1")}
	doc.SpecIndex = map[string][]string{"stale-spec": {"gone"}} // hand-edited junk

	require.NoError(t, Save(dir, doc))

	data, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	var onDisk MappingFile
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, map[string][]string{"spec-1": {"feat-a"}}, onDisk.SpecIndex)
}
