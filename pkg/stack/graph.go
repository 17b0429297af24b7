// Package stack builds the in-memory dependency graph over tracked
// branches and enforces the lifecycle rules on individual entries.
package stack

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattsolo1/grove-stack/pkg/store"
)

// CycleError reports a dependency cycle as the exact ordered path that
// closes it, e.g. A → C → B → A.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Path, " → "))
}

// DependentsError blocks deleting a branch that other branches build on.
type DependentsError struct {
	Name       string
	Dependents []string
}

func (e *DependentsError) Error() string {
	return fmt.Sprintf("branch %q is the base of %s; delete them first or pass --force",
		e.Name, strings.Join(e.Dependents, ", "))
}

// node is one arena slot. Edges are indices into the arena rather than
// pointers so traversal stays safe on arbitrary (even cyclic) input.
type node struct {
	name     string
	entry    *store.BranchEntry // nil for virtual external bases
	base     int                // child -> base edge; -1 for external bases
	children []int              // reverse edges
}

// Graph is a directed graph with one node per tracked branch plus one
// virtual node per external base (a branch known to version control but
// carrying no entry, e.g. the trunk).
type Graph struct {
	nodes []node
	index map[string]int
}

// Build constructs the graph from the document's entries.
func Build(doc *store.MappingFile) *Graph {
	g := &Graph{index: make(map[string]int)}

	for i := range doc.Branches {
		entry := &doc.Branches[i]
		g.nodes = append(g.nodes, node{name: entry.Name, entry: entry, base: -1})
		g.index[entry.Name] = len(g.nodes) - 1
	}

	for i := range doc.Branches {
		entry := &doc.Branches[i]
		base, ok := g.index[entry.BaseBranch]
		if !ok {
			// External base: exists only in version control.
			g.nodes = append(g.nodes, node{name: entry.BaseBranch, base: -1})
			base = len(g.nodes) - 1
			g.index[entry.BaseBranch] = base
		}
		g.nodes[i].base = base
		g.nodes[base].children = append(g.nodes[base].children, i)
	}

	for i := range g.nodes {
		children := g.nodes[i].children
		sort.Slice(children, func(a, b int) bool {
			return g.nodes[children[a]].name < g.nodes[children[b]].name
		})
	}
	return g
}

// Entry returns the tracked entry for name, or nil for external bases
// and unknown names.
func (g *Graph) Entry(name string) *store.BranchEntry {
	idx, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.nodes[idx].entry
}

// External reports whether name is a virtual base with no entry.
func (g *Graph) External(name string) bool {
	idx, ok := g.index[name]
	return ok && g.nodes[idx].entry == nil
}

// Dependents returns the tracked branches whose base is name, sorted.
func (g *Graph) Dependents(name string) []string {
	idx, ok := g.index[name]
	if !ok {
		return nil
	}
	var deps []string
	for _, child := range g.nodes[idx].children {
		if g.nodes[child].entry != nil {
			deps = append(deps, g.nodes[child].name)
		}
	}
	return deps
}

const (
	colorWhite = iota // unvisited
	colorGray         // in progress
	colorBlack        // done
)

// DetectCycle runs a three-color depth-first traversal over the base
// edges and returns the first cycle found as an ordered path with the
// starting node repeated at the end, or nil when the graph is acyclic.
func (g *Graph) DetectCycle() []string {
	colors := make([]int, len(g.nodes))

	for start := range g.nodes {
		if colors[start] != colorWhite {
			continue
		}
		if path := g.walk(start, colors, nil); path != nil {
			return path
		}
	}
	return nil
}

func (g *Graph) walk(idx int, colors []int, trail []int) []string {
	colors[idx] = colorGray
	trail = append(trail, idx)

	base := g.nodes[idx].base
	if base >= 0 {
		switch colors[base] {
		case colorGray:
			// Found the back edge; cut the trail at the repeated node.
			var path []string
			for i, t := range trail {
				if t == base {
					for _, n := range trail[i:] {
						path = append(path, g.nodes[n].name)
					}
					break
				}
			}
			return append(path, g.nodes[base].name)
		case colorWhite:
			if path := g.walk(base, colors, trail); path != nil {
				return path
			}
		}
	}

	colors[idx] = colorBlack
	return nil
}

// CheckRebase rejects changing name's base to newBase if that edge
// would close a cycle. The check simulates the change on a copy of the
// edges; the caller's document is never touched.
func (g *Graph) CheckRebase(name, newBase string) error {
	if name == newBase {
		return &CycleError{Path: []string{name, name}}
	}

	// Walk up from newBase along base edges; reaching name means the
	// new edge would close a loop.
	path := []string{name, newBase}
	current := newBase
	for {
		idx, ok := g.index[current]
		if !ok {
			return nil
		}
		base := g.nodes[idx].base
		if base < 0 {
			return nil
		}
		next := g.nodes[base].name
		path = append(path, next)
		if next == name {
			return &CycleError{Path: path}
		}
		current = next
		if len(path) > len(g.nodes)+1 {
			// Pre-existing cycle below newBase; surface it as-is.
			return &CycleError{Path: path}
		}
	}
}

// Chain is one ordered root-to-leaf run of stacked branches belonging
// to a single spec. Base is the branch the chain ultimately builds on.
type Chain struct {
	SpecID   string   `json:"specId"`
	Base     string   `json:"base"`
	Branches []string `json:"branches"`
}

// Chains computes the ordered display chains: for every tracked branch
// whose base is not a same-spec tracked branch, walk same-spec children
// down to each leaf. Results are sorted by spec then first branch.
func (g *Graph) Chains() []Chain {
	var chains []Chain

	for i := range g.nodes {
		n := &g.nodes[i]
		if n.entry == nil || !g.isChainRoot(i) {
			continue
		}
		for _, leafPath := range g.leafPaths(i, n.entry.SpecID) {
			chains = append(chains, Chain{
				SpecID:   n.entry.SpecID,
				Base:     g.nodes[n.base].name,
				Branches: leafPath,
			})
		}
	}

	sort.Slice(chains, func(a, b int) bool {
		if chains[a].SpecID != chains[b].SpecID {
			return chains[a].SpecID < chains[b].SpecID
		}
		return chains[a].Branches[0] < chains[b].Branches[0]
	})
	return chains
}

// isChainRoot reports whether node i starts a chain: its base is
// external or tracked under a different spec.
func (g *Graph) isChainRoot(i int) bool {
	base := g.nodes[i].base
	if base < 0 {
		return true
	}
	baseEntry := g.nodes[base].entry
	return baseEntry == nil || baseEntry.SpecID != g.nodes[i].entry.SpecID
}

// leafPaths returns every root-to-leaf name sequence under idx, walking
// only children that share specID. The visited guard keeps traversal
// bounded even on (invalid) cyclic input.
func (g *Graph) leafPaths(idx int, specID string) [][]string {
	var paths [][]string
	visited := make(map[int]bool)

	var walk func(i int, path []string)
	walk = func(i int, path []string) {
		if visited[i] {
			return
		}
		visited[i] = true
		path = append(path, g.nodes[i].name)

		var sameSpec []int
		for _, child := range g.nodes[i].children {
			if e := g.nodes[child].entry; e != nil && e.SpecID == specID {
				sameSpec = append(sameSpec, child)
			}
		}
		if len(sameSpec) == 0 {
			leaf := make([]string, len(path))
			copy(leaf, path)
			paths = append(paths, leaf)
			return
		}
		for _, child := range sameSpec {
			walk(child, path)
		}
	}
	walk(idx, nil)
	return paths
}
