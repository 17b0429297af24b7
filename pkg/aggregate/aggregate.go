// Package aggregate composes per-repository branch-stack summaries into
// one cross-repository view. It is strictly read-only.
package aggregate

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/mattsolo1/grove-stack/pkg/stack"
	"github.com/mattsolo1/grove-stack/pkg/store"
	"github.com/mattsolo1/grove-stack/pkg/workspace"
)

// Summary is one repository's contribution to the aggregated view.
// Error is set when that repository could not be summarized; the other
// fields are then empty.
type Summary struct {
	Repo         string               `json:"repo"`
	Path         string               `json:"path"`
	BranchCount  int                  `json:"branchCount"`
	StatusCounts map[store.Status]int `json:"statusCounts,omitempty"`
	Chains       []stack.Chain        `json:"chains,omitempty"`
	Error        string               `json:"error,omitempty"`
}

// View is the cross-repository status. It is recomputed per invocation
// and never written to disk.
type View struct {
	Root     Summary   `json:"root"`
	Children []Summary `json:"children,omitempty"`
	Failures []string  `json:"failures,omitempty"`
}

// Collect fans out per-repository reads with bounded parallelism and
// composes the view. A failing repository is captured on its own
// summary and in Failures; the call itself only fails when ctx is
// cancelled.
func Collect(ctx context.Context, root *workspace.Context, children []string, parallelism int) (*View, error) {
	if parallelism < 1 {
		parallelism = 1
	}

	repos := append([]string{root.RepoRoot}, children...)
	summaries := make([]Summary, len(repos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, repoPath := range repos {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			summaries[i] = summarize(repoPath)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &View{Root: summaries[0]}
	view.Children = summaries[1:]
	sort.Slice(view.Children, func(a, b int) bool {
		return view.Children[a].Repo < view.Children[b].Repo
	})
	for _, s := range summaries {
		if s.Error != "" {
			view.Failures = append(view.Failures, fmt.Sprintf("%s: %s", s.Repo, s.Error))
		}
	}
	sort.Strings(view.Failures)
	return view, nil
}

// summarize computes one repository's summary. Every failure is folded
// into the summary instead of propagating.
func summarize(repoPath string) Summary {
	summary := Summary{
		Repo: filepath.Base(repoPath),
		Path: repoPath,
	}

	if _, err := workspace.Detect(repoPath); err != nil {
		summary.Error = err.Error()
		return summary
	}

	doc, err := store.Load(repoPath)
	if err != nil {
		if err == store.ErrNotFound {
			summary.Error = "no branches tracked (store not initialized)"
		} else {
			summary.Error = err.Error()
		}
		return summary
	}

	graph := stack.Build(doc)
	if cycle := graph.DetectCycle(); cycle != nil {
		summary.Error = (&stack.CycleError{Path: cycle}).Error()
		return summary
	}

	summary.BranchCount = len(doc.Branches)
	summary.StatusCounts = doc.StatusCounts()
	summary.Chains = graph.Chains()
	return summary
}
