package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-stack/pkg/aggregate"
	"github.com/mattsolo1/grove-stack/pkg/stack"
	"github.com/mattsolo1/grove-stack/pkg/store"
	"github.com/mattsolo1/grove-stack/pkg/workspace"
)

// NewListCmd prints the stacked-branch chains.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stacked-branch chains",
		Long: `List root-to-leaf chains of stacked branches for the current spec.
With --all, list every spec; in a multi-repo root, --all also includes
every linked child repository.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			asJSON, _ := cmd.Flags().GetBool("json")

			e, err := loadEnv()
			if err != nil {
				return err
			}
			if asJSON {
				e.cfg.JSON = true
			}

			// A multi-repo root with --all aggregates children too.
			if all && e.ctx.Mode == workspace.ModeRoot {
				children, err := workspace.DiscoverChildren(e.ctx)
				if err != nil {
					return err
				}
				view, err := aggregate.Collect(cmd.Context(), e.ctx, children, e.cfg.AggregateParallelism)
				if err != nil {
					return err
				}
				if e.cfg.JSON {
					return printJSON(os.Stdout, view)
				}
				renderView(os.Stdout, view)
				return nil
			}

			doc, err := store.Load(e.ctx.RepoRoot)
			if err != nil {
				if err == store.ErrNotFound {
					return errNotInitialized
				}
				return err
			}

			graph := stack.Build(doc)
			if cycle := graph.DetectCycle(); cycle != nil {
				return &stack.CycleError{Path: cycle}
			}

			chains := graph.Chains()
			if !all {
				chains = filterChains(chains, currentSpec(cmd, e, doc))
			}
			if len(chains) == 0 {
				fmt.Println("no stacked branches tracked")
				return nil
			}

			if e.cfg.JSON {
				return printJSON(os.Stdout, chains)
			}
			renderChains(os.Stdout, doc, chains)
			return nil
		},
	}

	cmd.Flags().Bool("all", false, "List all specs (and all repos from a multi-repo root)")
	cmd.Flags().Bool("json", false, "Emit JSON instead of styled text")
	return cmd
}

// currentSpec picks the spec to scope output to: the linked parent spec
// for a child repository, otherwise the spec of the checked-out branch.
// An empty return means no scoping.
func currentSpec(cmd *cobra.Command, e *env, doc *store.MappingFile) string {
	if e.ctx.Mode == workspace.ModeChild {
		return e.ctx.ParentSpecID
	}
	head, err := e.adapter.CurrentBranch(cmd.Context())
	if err != nil {
		log.Debugf("could not resolve current branch: %v", err)
		return ""
	}
	if entry := doc.Find(head); entry != nil {
		return entry.SpecID
	}
	return ""
}

func filterChains(chains []stack.Chain, specID string) []stack.Chain {
	if specID == "" {
		return chains
	}
	var filtered []stack.Chain
	for _, chain := range chains {
		if chain.SpecID == specID {
			filtered = append(filtered, chain)
		}
	}
	return filtered
}
