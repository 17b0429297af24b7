// Package store owns the persisted branch-mapping document, one per
// repository: validation, schema migration, and atomic mutation.
package store

import (
	"sort"
	"time"
)

// Status is the lifecycle state of a tracked branch.
type Status string

const (
	StatusActive    Status = "active"
	StatusSubmitted Status = "submitted"
	StatusMerged    Status = "merged"
	StatusAbandoned Status = "abandoned"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSubmitted, StatusMerged, StatusAbandoned:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted out of s.
func (s Status) Terminal() bool {
	return s == StatusMerged || s == StatusAbandoned
}

// BranchEntry is one tracked branch. BaseBranch always names a branch in
// the same repository; cross-repository bases are invalid by construction.
type BranchEntry struct {
	Name           string    `json:"name"`
	BaseBranch     string    `json:"baseBranch"`
	SpecID         string    `json:"specId"`
	ParentSpecID   string    `json:"parentSpecId,omitempty"`
	Status         Status    `json:"status"`
	PullRequestRef string    `json:"pullRequestRef,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// MappingFile is the persisted document for one repository. SpecIndex is
// derived from Branches on every save and never hand-edited.
type MappingFile struct {
	SchemaVersion string              `json:"schemaVersion"`
	Branches      []BranchEntry       `json:"branches"`
	SpecIndex     map[string][]string `json:"specIndex"`
}

// NewMappingFile returns an empty document at the current schema version.
func NewMappingFile() *MappingFile {
	return &MappingFile{
		SchemaVersion: SchemaVersion,
		SpecIndex:     map[string][]string{},
	}
}

// Find returns a pointer to the entry with the given name, or nil.
func (m *MappingFile) Find(name string) *BranchEntry {
	for i := range m.Branches {
		if m.Branches[i].Name == name {
			return &m.Branches[i]
		}
	}
	return nil
}

// Remove deletes the entry with the given name and reports whether it
// was present.
func (m *MappingFile) Remove(name string) bool {
	for i := range m.Branches {
		if m.Branches[i].Name == name {
			m.Branches = append(m.Branches[:i], m.Branches[i+1:]...)
			return true
		}
	}
	return false
}

// RebuildSpecIndex recomputes the specId -> branch names mapping from
// Branches. Names are sorted for stable output.
func (m *MappingFile) RebuildSpecIndex() {
	index := make(map[string][]string)
	for _, entry := range m.Branches {
		index[entry.SpecID] = append(index[entry.SpecID], entry.Name)
	}
	for spec := range index {
		sort.Strings(index[spec])
	}
	m.SpecIndex = index
}

// StatusCounts tallies entries per lifecycle state.
func (m *MappingFile) StatusCounts() map[Status]int {
	counts := make(map[Status]int)
	for _, entry := range m.Branches {
		counts[entry.Status]++
	}
	return counts
}
