package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the gstack command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gstack",
		Short:         "Stacked branch tracking across grove repositories",
		Long:          `gstack tracks chains of dependent branches, each declaring an explicit base, and aggregates their status across a multi-repository workspace.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(NewCreateCmd())
	root.AddCommand(NewListCmd())
	root.AddCommand(NewStatusCmd())
	root.AddCommand(NewUpdateCmd())
	root.AddCommand(NewImportCmd())
	root.AddCommand(NewDeleteCmd())

	return root
}
