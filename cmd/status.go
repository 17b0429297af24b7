package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-stack/pkg/aggregate"
	"github.com/mattsolo1/grove-stack/pkg/stack"
	"github.com/mattsolo1/grove-stack/pkg/store"
	"github.com/mattsolo1/grove-stack/pkg/workspace"
)

// NewStatusCmd reports the health of the tracked stacks.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report stack health",
		Long: `Cross-check tracked branches against version control: bases that
disappeared or were merged away, branches merged but still marked
active, and lifecycle mismatches. Adapter failures degrade individual
checks to warnings. With --all, aggregate status across every linked
child repository instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			watch, _ := cmd.Flags().GetBool("watch")
			asJSON, _ := cmd.Flags().GetBool("json")

			e, err := loadEnv()
			if err != nil {
				return err
			}
			if asJSON {
				e.cfg.JSON = true
			}

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

			if err := runStatusOnce(cmd, e); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchStatus(cmd, e)
		},
	}

	cmd.Flags().Bool("all", false, "Aggregate status across all linked repositories")
	cmd.Flags().Bool("watch", false, "Re-render whenever the branch mapping changes")
	cmd.Flags().Bool("json", false, "Emit JSON instead of styled text")
	return cmd
}

func runStatusOnce(cmd *cobra.Command, e *env) error {
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

	health := graph.CheckHealth(cmd.Context(), e.adapter, e.cfg.AdapterTimeout)

	if branches, err := e.adapter.ListBranches(cmd.Context()); err != nil {
		health.Warnings = append(health.Warnings,
			fmt.Sprintf("could not list branches for the dangling-base check: %v", err))
	} else {
		live := make(map[string]bool, len(branches))
		for _, branch := range branches {
			live[branch.Name] = true
		}
		health.Findings = append(health.Findings, stack.FlagDanglingBases(doc, e.cfg.Trunk, live)...)
	}

	if e.cfg.JSON {
		return printJSON(os.Stdout, health)
	}
	renderChains(os.Stdout, doc, graph.Chains())
	renderHealth(os.Stdout, health)
	return nil
}

// watchStatus re-runs the status report whenever the mapping file is
// rewritten. Saves are temp-then-rename, so watch the .grove directory
// rather than the file inode.
func watchStatus(cmd *cobra.Command, e *env) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	groveDir := filepath.Join(e.ctx.RepoRoot, store.GroveDir)
	if err := watcher.Add(groveDir); err != nil {
		return err
	}
	mappingPath := store.Path(e.ctx.RepoRoot)

	fmt.Println("watching for changes (ctrl-c to stop)")
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != mappingPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fmt.Println()
			if err := runStatusOnce(cmd, e); err != nil {
				log.Warnf("status refresh failed: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnf("watch error: %v", err)
		}
	}
}
