package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-stack/pkg/stack"
	"github.com/mattsolo1/grove-stack/pkg/store"
	"github.com/mattsolo1/grove-stack/pkg/workspace"
)

// NewCreateCmd tracks a new stacked branch and creates it in version
// control.
func NewCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name> [base] [spec]",
		Short: "Create and track a new stacked branch",
		Long: `Create a branch stacked on a base, record it in the branch mapping,
and check it out. The base defaults to the configured trunk; the spec
defaults to the base entry's spec when the base is tracked.`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			name := args[0]
			base := e.cfg.Trunk
			if len(args) > 1 {
				base = args[1]
			}
			specID := ""
			if len(args) > 2 {
				specID = args[2]
			}

			// Branch creation switches the working tree; refuse to do
			// that over uncommitted changes.
			dirty, err := e.adapter.HasUncommittedChanges(cmd.Context())
			if err != nil {
				return err
			}
			if dirty {
				return &store.ValidationError{
					Field:      "working tree",
					Message:    "uncommitted changes present",
					Suggestion: "commit or stash them before creating a branch",
				}
			}

			if err := store.Mutate(e.ctx.RepoRoot, func(doc *store.MappingFile) error {
				if doc.Find(name) != nil {
					return &store.ValidationError{
						Field:      "name",
						Message:    fmt.Sprintf("branch %q is already tracked", name),
						Suggestion: "pick another name or use 'gstack update'",
					}
				}

				baseEntry := doc.Find(base)
				if baseEntry == nil {
					exists, err := e.adapter.BranchExists(cmd.Context(), base)
					if err != nil {
						return err
					}
					if !exists {
						return &store.ValidationError{
							Field:      "baseBranch",
							Message:    fmt.Sprintf("base %q does not exist", base),
							Suggestion: "pick a tracked branch or an existing git branch",
						}
					}
				}

				if specID == "" {
					switch {
					case baseEntry != nil:
						specID = baseEntry.SpecID
					case e.ctx.Mode == workspace.ModeChild:
						specID = e.ctx.ParentSpecID
					default:
						return &store.ValidationError{
							Field:      "specId",
							Message:    "no spec id given and none can be inherited from the base",
							Suggestion: "pass it explicitly: gstack create " + name + " " + base + " <spec>",
						}
					}
				}

				if err := stack.Build(doc).CheckRebase(name, base); err != nil {
					return err
				}

				now := time.Now().UTC()
				entry := store.BranchEntry{
					Name:       name,
					BaseBranch: base,
					SpecID:     specID,
					Status:     store.StatusActive,
					CreatedAt:  now,
					UpdatedAt:  now,
				}
				if e.ctx.Mode == workspace.ModeChild {
					entry.ParentSpecID = e.ctx.ParentSpecID
				}
				if err := store.ValidateEntry(&entry); err != nil {
					return err
				}
				doc.Branches = append(doc.Branches, entry)
				return nil
			}); err != nil {
				return err
			}

			if err := e.adapter.CreateBranch(cmd.Context(), name, base); err != nil {
				// Take the entry back out so a failed create leaves no
				// record of a branch that never existed.
				if rbErr := store.Mutate(e.ctx.RepoRoot, func(doc *store.MappingFile) error {
					doc.Remove(name)
					return nil
				}); rbErr != nil {
					log.Warnf("could not roll back entry for %s: %v; remove it with 'gstack delete %s'", name, rbErr, name)
				}
				return err
			}
			if err := e.adapter.Checkout(cmd.Context(), name); err != nil {
				return err
			}

			fmt.Printf("created %s on %s (spec %s)\n", name, base, specID)
			return nil
		},
	}
	return cmd
}
