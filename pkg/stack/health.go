package stack

import (
	"context"
	"fmt"
	"time"

	"github.com/mattsolo1/grove-stack/pkg/gitx"
	"github.com/mattsolo1/grove-stack/pkg/store"
)

// Finding is one health observation about a tracked branch.
type Finding struct {
	Branch  string `json:"branch"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Finding kinds.
const (
	FindingMissingBase    = "missing-base"    // base no longer exists in version control
	FindingStaleBase      = "stale-base"      // base merged into its own base; needs rebase
	FindingMergedUpstream = "merged-upstream" // branch merged but still marked active/submitted
	FindingDanglingEntry  = "dangling-entry"  // base entry was force-deleted from the store
)

// Health is the result of cross-checking the graph against version
// control. Warnings carry adapter failures that degraded a check; they
// never fail the overall call.
type Health struct {
	Findings []Finding `json:"findings,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
}

// CheckHealth cross-checks every tracked entry against the adapter.
// Each adapter call is individually bounded by timeout; a failed or
// timed-out call downgrades that check to a warning.
func (g *Graph) CheckHealth(ctx context.Context, adapter gitx.Adapter, timeout time.Duration) Health {
	var health Health

	bounded := func(fn func(context.Context) error) error {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return fn(callCtx)
	}

	for i := range g.nodes {
		entry := g.nodes[i].entry
		if entry == nil {
			continue
		}

		// A base entry force-deleted from the store needs no adapter
		// call to flag.
		if g.External(entry.BaseBranch) {
			var baseExists bool
			err := bounded(func(c context.Context) error {
				var err error
				baseExists, err = adapter.BranchExists(c, entry.BaseBranch)
				return err
			})
			if err != nil {
				health.Warnings = append(health.Warnings,
					fmt.Sprintf("could not verify base %q of %q: %v", entry.BaseBranch, entry.Name, err))
			} else if !baseExists {
				health.Findings = append(health.Findings, Finding{
					Branch:  entry.Name,
					Kind:    FindingMissingBase,
					Message: fmt.Sprintf("base %q no longer exists; rebase onto a live branch and run 'gstack update %s --base <branch>'", entry.BaseBranch, entry.Name),
				})
				continue
			}
		}

		// Stale base: the branch we build on was merged into its own
		// base, so our diff now overlaps it.
		if baseEntry := g.Entry(entry.BaseBranch); baseEntry != nil && !baseEntry.Status.Terminal() {
			var merged bool
			err := bounded(func(c context.Context) error {
				var err error
				merged, err = adapter.IsMergedInto(c, baseEntry.Name, baseEntry.BaseBranch)
				return err
			})
			if err != nil {
				health.Warnings = append(health.Warnings,
					fmt.Sprintf("could not check whether %q is merged: %v", baseEntry.Name, err))
			} else if merged {
				health.Findings = append(health.Findings, Finding{
					Branch:  entry.Name,
					Kind:    FindingStaleBase,
					Message: fmt.Sprintf("base %q has been merged into %q; rebase %q onto %q", baseEntry.Name, baseEntry.BaseBranch, entry.Name, baseEntry.BaseBranch),
				})
			}
		}

		// Merged upstream but the entry still claims otherwise.
		if !entry.Status.Terminal() {
			var merged bool
			err := bounded(func(c context.Context) error {
				var err error
				merged, err = adapter.IsMergedInto(c, entry.Name, entry.BaseBranch)
				return err
			})
			if err != nil {
				health.Warnings = append(health.Warnings,
					fmt.Sprintf("could not check merge state of %q: %v", entry.Name, err))
			} else if merged {
				health.Findings = append(health.Findings, Finding{
					Branch:  entry.Name,
					Kind:    FindingMergedUpstream,
					Message: fmt.Sprintf("%q appears merged into %q but is still %s; run 'gstack update %s --status merged'", entry.Name, entry.BaseBranch, entry.Status, entry.Name),
				})
			}
		}
	}

	return health
}

// FlagDanglingBases finds entries stacked on a branch the store no
// longer tracks even though it still exists in version control, the
// state a forced delete leaves behind. The trunk is the one expected
// untracked base; bases missing from version control entirely are
// CheckHealth's missing-base finding instead.
func FlagDanglingBases(doc *store.MappingFile, trunk string, liveBranches map[string]bool) []Finding {
	var findings []Finding
	for _, entry := range doc.Branches {
		if entry.BaseBranch == trunk || doc.Find(entry.BaseBranch) != nil {
			continue
		}
		if !liveBranches[entry.BaseBranch] {
			continue
		}
		findings = append(findings, Finding{
			Branch:  entry.Name,
			Kind:    FindingDanglingEntry,
			Message: fmt.Sprintf("base %q of %q is no longer tracked; repoint it with 'gstack update %s --base <branch>' or re-import %q", entry.BaseBranch, entry.Name, entry.Name, entry.BaseBranch),
		})
	}
	return findings
}
