// Package importer discovers version-control branches that are not yet
// tracked and infers their place in the stack. The inference here is
// pure; any interactive disambiguation happens in the caller.
package importer

import (
	"sort"
	"strings"
	"time"

	"github.com/mattsolo1/grove-stack/pkg/gitx"
	"github.com/mattsolo1/grove-stack/pkg/store"
)

// Candidate is an untracked branch considered for import.
type Candidate struct {
	Name     string
	Upstream string // upstream-tracking ref, may be empty
}

// Disambiguation asks the caller to choose where an ambiguous candidate
// belongs before an entry is emitted.
type Disambiguation struct {
	Name        string
	Reason      string
	BaseOptions []string
	SpecOptions []string
}

// Result separates what inference could decide from what it could not.
type Result struct {
	Entries   []store.BranchEntry
	Ambiguous []Disambiguation
	Skipped   []string // already tracked or the trunk itself
}

// Candidates filters the adapter's branch list down to branches the
// store does not know about, excluding the trunk.
func Candidates(branches []gitx.Branch, doc *store.MappingFile, trunk string) []Candidate {
	var candidates []Candidate
	for _, branch := range branches {
		if branch.Name == trunk || doc.Find(branch.Name) != nil {
			continue
		}
		candidates = append(candidates, Candidate{Name: branch.Name, Upstream: branch.Upstream})
	}
	return candidates
}

// Infer maps each candidate to a base and spec. A candidate whose
// upstream resolves to a tracked entry inherits that entry's spec; one
// whose upstream resolves to another candidate is chained behind it and
// resolved in a second pass. Candidates with no upstream, or whose base
// gives no spec signal, come back as Disambiguations rather than
// guesses. Running Infer again over already-tracked branches yields an
// empty result because Candidates excludes them.
func Infer(candidates []Candidate, doc *store.MappingFile, trunk string, now time.Time) Result {
	var result Result

	byName := make(map[string]*Candidate, len(candidates))
	for i := range candidates {
		byName[candidates[i].Name] = &candidates[i]
	}

	// specOf carries spec assignments resolved so far, keyed by branch
	// name, seeded from tracked entries.
	specOf := make(map[string]string)
	for _, entry := range doc.Branches {
		specOf[entry.Name] = entry.SpecID
	}

	type pending struct {
		name string
		base string
	}
	var unresolved []pending

	for _, cand := range candidates {
		if cand.Upstream == "" {
			result.Ambiguous = append(result.Ambiguous, Disambiguation{
				Name:        cand.Name,
				Reason:      "no upstream-tracking ref to infer a base from",
				BaseOptions: baseOptions(doc, candidates, trunk, cand.Name),
				SpecOptions: specOptions(doc),
			})
			continue
		}

		base := localName(cand.Upstream)
		if base == cand.Name {
			// The upstream tracks the branch's own remote counterpart
			// (git push -u); that says nothing about stacking.
			result.Ambiguous = append(result.Ambiguous, Disambiguation{
				Name:        cand.Name,
				Reason:      "upstream " + cand.Upstream + " tracks the branch itself, not a base",
				BaseOptions: baseOptions(doc, candidates, trunk, cand.Name),
				SpecOptions: specOptions(doc),
			})
			continue
		}
		switch {
		case doc.Find(base) != nil:
			// Stacked on a tracked entry: inherit its spec.
			result.Entries = append(result.Entries, newEntry(cand.Name, base, specOf[base], now))
			specOf[cand.Name] = specOf[base]
		case byName[base] != nil:
			// Stacked on another candidate in this batch; resolve once
			// that candidate's spec is known.
			unresolved = append(unresolved, pending{name: cand.Name, base: base})
		default:
			// Upstream points at the trunk or some unknown ref: the
			// base is clear but the spec is not.
			result.Ambiguous = append(result.Ambiguous, Disambiguation{
				Name:        cand.Name,
				Reason:      "base " + base + " carries no spec to inherit",
				BaseOptions: []string{base},
				SpecOptions: specOptions(doc),
			})
		}
	}

	// Chase intra-batch chains until nothing new resolves. Bounded by
	// the number of pending items per round.
	for changed := true; changed && len(unresolved) > 0; {
		changed = false
		var still []pending
		for _, p := range unresolved {
			if spec, ok := specOf[p.base]; ok {
				result.Entries = append(result.Entries, newEntry(p.name, p.base, spec, now))
				specOf[p.name] = spec
				changed = true
			} else {
				still = append(still, p)
			}
		}
		unresolved = still
	}

	// Whatever is left chains onto an ambiguous candidate; it inherits
	// the ambiguity.
	for _, p := range unresolved {
		result.Ambiguous = append(result.Ambiguous, Disambiguation{
			Name:        p.name,
			Reason:      "stacked on " + p.base + ", whose spec is itself undecided",
			BaseOptions: []string{p.base},
			SpecOptions: specOptions(doc),
		})
	}

	sort.Slice(result.Entries, func(i, j int) bool {
		return result.Entries[i].Name < result.Entries[j].Name
	})
	sort.Slice(result.Ambiguous, func(i, j int) bool {
		return result.Ambiguous[i].Name < result.Ambiguous[j].Name
	})
	return result
}

// Resolve turns a disambiguation plus the caller's choice into an entry.
func Resolve(d Disambiguation, base, specID string, now time.Time) store.BranchEntry {
	return newEntry(d.Name, base, specID, now)
}

func newEntry(name, base, specID string, now time.Time) store.BranchEntry {
	return store.BranchEntry{
		Name:       name,
		BaseBranch: base,
		SpecID:     specID,
		Status:     store.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// localName strips a remote prefix from an upstream ref, so that
// "origin/feat-x" matches the local branch "feat-x".
func localName(upstream string) string {
	if i := strings.IndexByte(upstream, '/'); i >= 0 {
		return upstream[i+1:]
	}
	return upstream
}

func baseOptions(doc *store.MappingFile, candidates []Candidate, trunk, self string) []string {
	options := []string{trunk}
	for _, entry := range doc.Branches {
		if !entry.Status.Terminal() {
			options = append(options, entry.Name)
		}
	}
	for _, cand := range candidates {
		if cand.Name != self {
			options = append(options, cand.Name)
		}
	}
	sort.Strings(options[1:])
	return options
}

func specOptions(doc *store.MappingFile) []string {
	specs := make([]string, 0, len(doc.SpecIndex))
	seen := make(map[string]bool)
	for _, entry := range doc.Branches {
		if !seen[entry.SpecID] {
			seen[entry.SpecID] = true
			specs = append(specs, entry.SpecID)
		}
	}
	sort.Strings(specs)
	return specs
}
