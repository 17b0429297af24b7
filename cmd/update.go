package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-stack/pkg/stack"
	"github.com/mattsolo1/grove-stack/pkg/store"
)

// NewUpdateCmd mutates a tracked branch under state-machine control.
func NewUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Update a tracked branch's status, PR reference, or base",
		Long: `Apply a validated change to one entry. Status changes go through the
lifecycle state machine (submitting requires --pr); base changes are
rejected if they would introduce a dependency cycle.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			newStatus, _ := cmd.Flags().GetString("status")
			prRef, _ := cmd.Flags().GetString("pr")
			newBase, _ := cmd.Flags().GetString("base")

			if newStatus == "" && prRef == "" && newBase == "" {
				return &store.ValidationError{
					Field:      "flags",
					Message:    "nothing to update",
					Suggestion: "pass at least one of --status, --pr, --base",
				}
			}

			e, err := loadEnv()
			if err != nil {
				return err
			}

			err = store.MutateExisting(e.ctx.RepoRoot, func(doc *store.MappingFile) error {
				entry := doc.Find(name)
				if entry == nil {
					return &store.ValidationError{
						Field:      "name",
						Message:    fmt.Sprintf("branch %q is not tracked", name),
						Suggestion: "see tracked branches with 'gstack list --all'",
					}
				}
				now := time.Now().UTC()

				if newBase != "" && newBase != entry.BaseBranch {
					if doc.Find(newBase) == nil {
						exists, err := e.adapter.BranchExists(cmd.Context(), newBase)
						if err != nil {
							return err
						}
						if !exists {
							return &store.ValidationError{
								Field:      "baseBranch",
								Message:    fmt.Sprintf("base %q does not exist", newBase),
								Suggestion: "pick a tracked branch or an existing git branch",
							}
						}
					}
					if err := stack.Build(doc).CheckRebase(name, newBase); err != nil {
						return err
					}
					entry.BaseBranch = newBase
					entry.UpdatedAt = now
				}

				if newStatus != "" {
					if err := stack.Transition(entry, store.Status(newStatus), prRef, now); err != nil {
						return err
					}
				} else if prRef != "" {
					entry.PullRequestRef = prRef
					entry.UpdatedAt = now
				}

				return nil
			})
			if err != nil {
				if err == store.ErrNotFound {
					return errNotInitialized
				}
				return err
			}

			fmt.Printf("updated %s\n", name)
			return nil
		},
	}

	cmd.Flags().String("status", "", "New lifecycle status (active, submitted, merged, abandoned)")
	cmd.Flags().String("pr", "", "Pull request reference to record")
	cmd.Flags().String("base", "", "New base branch")
	return cmd
}
