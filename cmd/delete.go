package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-stack/pkg/stack"
	"github.com/mattsolo1/grove-stack/pkg/store"
)

// NewDeleteCmd removes a branch from tracking.
func NewDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Stop tracking a branch",
		Long: `Remove the entry for a branch. The git branch itself is untouched.
Deleting a branch that others are stacked on is refused unless --force
is given; a forced delete leaves the dependents' bases dangling, which
'gstack status' will flag.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			force, _ := cmd.Flags().GetBool("force")

			e, err := loadEnv()
			if err != nil {
				return err
			}

			err = store.MutateExisting(e.ctx.RepoRoot, func(doc *store.MappingFile) error {
				if doc.Find(name) == nil {
					return &store.ValidationError{
						Field:      "name",
						Message:    fmt.Sprintf("branch %q is not tracked", name),
						Suggestion: "see tracked branches with 'gstack list --all'",
					}
				}

				if dependents := stack.Build(doc).Dependents(name); len(dependents) > 0 && !force {
					return &stack.DependentsError{Name: name, Dependents: dependents}
				}

				doc.Remove(name)
				return nil
			})
			if err != nil {
				if err == store.ErrNotFound {
					return errNotInitialized
				}
				return err
			}

			fmt.Printf("deleted %s\n", name)
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Delete even if other branches are stacked on this one")
	return cmd
}
