package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	// SchemaVersion is the version written by this build. Readers also
	// accept the immediately-prior minor version (see migrate).
	SchemaVersion = "1.1.0"

	// GroveDir holds all grove-stack state inside a repository.
	GroveDir = ".grove"

	// MappingFileName is the persisted document, one per repository.
	MappingFileName = ".grove/branches.json"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)

// Path returns the mapping file location for a repository root.
func Path(repoPath string) string {
	return filepath.Join(repoPath, MappingFileName)
}

// Load parses the mapping file for a repository. Documents at the prior
// minor schema version are upgraded in memory without rewriting the
// file; unknown major versions fail closed with a SchemaError.
func Load(repoPath string) (*MappingFile, error) {
	path := Path(repoPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc MappingFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}

	if err := migrate(&doc, path); err != nil {
		return nil, err
	}
	return &doc, nil
}

// migrate upgrades an older-but-known document to the in-memory shape
// of the current schema. The on-disk file is left untouched; the
// document keeps its original SchemaVersion so a pure load/save round
// trip is faithful.
func migrate(doc *MappingFile, path string) error {
	major, minor, err := parseVersion(doc.SchemaVersion)
	if err != nil {
		return &SchemaError{Path: path, Version: doc.SchemaVersion}
	}

	curMajor, curMinor, _ := parseVersion(SchemaVersion)
	if major != curMajor {
		return &SchemaError{Path: path, Version: doc.SchemaVersion}
	}
	if minor < curMinor-1 || minor > curMinor {
		return &SchemaError{Path: path, Version: doc.SchemaVersion}
	}

	// 1.0 -> 1.1 added the optional parentSpecId and pullRequestRef
	// fields. Absent fields decode to their zero values, which is
	// exactly the superset representation: nothing to substitute.
	if doc.SpecIndex == nil {
		doc.SpecIndex = map[string][]string{}
	}
	return nil
}

func parseVersion(v string) (major, minor int, err error) {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) != 3 {
		return 0, 0, fmt.Errorf("malformed version %q", v)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return major, minor, nil
}

// Validate checks the document invariants that must hold before any
// write: unique names, well-formed entries, and per-entry constraints.
func Validate(doc *MappingFile) error {
	seen := make(map[string]bool, len(doc.Branches))
	for i := range doc.Branches {
		entry := &doc.Branches[i]
		if err := ValidateEntry(entry); err != nil {
			return err
		}
		if seen[entry.Name] {
			return &ValidationError{
				Field:      "name",
				Message:    fmt.Sprintf("duplicate branch entry %q", entry.Name),
				Suggestion: "remove one of the duplicates with 'gstack delete'",
			}
		}
		seen[entry.Name] = true
	}
	return nil
}

// ValidateEntry checks a single entry's fields.
func ValidateEntry(entry *BranchEntry) error {
	if entry.Name == "" || !namePattern.MatchString(entry.Name) {
		return &ValidationError{
			Field:      "name",
			Message:    fmt.Sprintf("branch name %q is empty or contains unsupported characters", entry.Name),
			Suggestion: "use letters, digits, dots, slashes, underscores and dashes",
		}
	}
	if entry.BaseBranch == "" {
		return &ValidationError{
			Field:      "baseBranch",
			Message:    fmt.Sprintf("branch %q has no base branch", entry.Name),
			Suggestion: "set one with 'gstack update " + entry.Name + " --base <branch>'",
		}
	}
	if strings.Contains(entry.BaseBranch, ":") {
		// A colon would be a remote or cross-repository reference.
		return &ValidationError{
			Field:      "baseBranch",
			Message:    fmt.Sprintf("base %q of %q is not a branch in this repository", entry.BaseBranch, entry.Name),
			Suggestion: "bases must live in the same repository as the branch",
		}
	}
	if entry.SpecID == "" {
		return &ValidationError{
			Field:      "specId",
			Message:    fmt.Sprintf("branch %q has no spec id", entry.Name),
			Suggestion: "every tracked branch implements exactly one spec",
		}
	}
	if !entry.Status.Valid() {
		return &ValidationError{
			Field:      "status",
			Message:    fmt.Sprintf("unknown status %q on branch %q", entry.Status, entry.Name),
			Suggestion: "valid statuses are active, submitted, merged, abandoned",
		}
	}
	if entry.Status == StatusSubmitted && entry.PullRequestRef == "" {
		return &ValidationError{
			Field:      "pullRequestRef",
			Message:    fmt.Sprintf("branch %q is submitted without a pull request reference", entry.Name),
			Suggestion: "record one with 'gstack update " + entry.Name + " --pr <ref>'",
		}
	}
	if entry.UpdatedAt.Before(entry.CreatedAt) {
		return &ValidationError{
			Field:   "updatedAt",
			Message: fmt.Sprintf("branch %q was updated before it was created", entry.Name),
		}
	}
	return nil
}

// Save validates the document, recomputes SpecIndex, and writes it with
// a write-temp-then-rename sequence so no reader ever observes a
// partially written file.
func Save(repoPath string, doc *MappingFile) error {
	if doc.SchemaVersion == "" {
		doc.SchemaVersion = SchemaVersion
	}
	if err := Validate(doc); err != nil {
		return err
	}
	doc.RebuildSpecIndex()

	groveDir := filepath.Join(repoPath, GroveDir)
	if err := os.MkdirAll(groveDir, 0o755); err != nil {
		return fmt.Errorf("creating %s directory: %w", groveDir, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding branch mapping: %w", err)
	}
	data = append(data, '\n')

	path := Path(repoPath)
	tmp, err := os.CreateTemp(groveDir, "branches-*.json.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Mutate runs load -> fn -> validate -> save as one logical unit. A
// missing mapping file starts from an empty document, which is how the
// file is created lazily on first create or import. When fn returns an
// error nothing is written.
func Mutate(repoPath string, fn func(doc *MappingFile) error) error {
	doc, err := Load(repoPath)
	if err != nil {
		if err != ErrNotFound {
			return err
		}
		doc = NewMappingFile()
	}
	return apply(repoPath, doc, fn)
}

// MutateExisting is Mutate for commands that require an initialized
// store: a missing mapping file returns ErrNotFound and fn never runs.
func MutateExisting(repoPath string, fn func(doc *MappingFile) error) error {
	doc, err := Load(repoPath)
	if err != nil {
		return err
	}
	return apply(repoPath, doc, fn)
}

func apply(repoPath string, doc *MappingFile, fn func(doc *MappingFile) error) error {
	if err := fn(doc); err != nil {
		return err
	}
	// Any mutation produces a current-version document.
	doc.SchemaVersion = SchemaVersion
	return Save(repoPath, doc)
}
