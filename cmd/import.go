package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-stack/cmd/picker"
	"github.com/mattsolo1/grove-stack/pkg/gitx"
	"github.com/mattsolo1/grove-stack/pkg/importer"
	"github.com/mattsolo1/grove-stack/pkg/stack"
	"github.com/mattsolo1/grove-stack/pkg/store"
	"github.com/mattsolo1/grove-stack/pkg/workspace"
)

// NewImportCmd brings existing version-control branches under tracking.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [pattern]",
		Short: "Import untracked branches into the stack",
		Long: `Discover local branches the mapping file does not know about and infer
their base and spec from upstream-tracking refs. Where inference is
ambiguous you are asked to place the branch; with --yes only the
unambiguous candidates are imported. Importing is idempotent: already
tracked branches are never touched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := ""
			if len(args) > 0 {
				pattern = args[0]
			}
			assumeYes, _ := cmd.Flags().GetBool("yes")

			e, err := loadEnv()
			if err != nil {
				return err
			}

			branches, err := e.adapter.ListBranches(cmd.Context())
			if err != nil {
				return err
			}
			branches, err = filterBranches(branches, pattern)
			if err != nil {
				return err
			}

			doc, err := store.Load(e.ctx.RepoRoot)
			if err != nil {
				if err != store.ErrNotFound {
					return err
				}
				doc = store.NewMappingFile()
			}

			candidates := importer.Candidates(branches, doc, e.cfg.Trunk)
			if len(candidates) == 0 {
				return errNothingToImport
			}

			now := time.Now().UTC()
			result := importer.Infer(candidates, doc, e.cfg.Trunk, now)

			accepted := result.Entries
			for _, d := range result.Ambiguous {
				if assumeYes {
					log.Warnf("skipping %s: %s", d.Name, d.Reason)
					continue
				}
				choice, err := picker.Run(d)
				if err != nil {
					if errors.Is(err, picker.ErrAborted) {
						fmt.Println("import aborted; nothing written")
						return nil
					}
					return err
				}
				if choice.Skipped {
					continue
				}
				accepted = append(accepted, importer.Resolve(d, choice.Base, choice.SpecID, now))
			}

			if len(accepted) == 0 {
				return errNothingToImport
			}

			if err := store.Mutate(e.ctx.RepoRoot, func(doc *store.MappingFile) error {
				for i := range accepted {
					entry := accepted[i]
					if doc.Find(entry.Name) != nil {
						continue
					}
					if e.ctx.Mode == workspace.ModeChild {
						entry.ParentSpecID = e.ctx.ParentSpecID
					}
					if err := store.ValidateEntry(&entry); err != nil {
						return err
					}
					doc.Branches = append(doc.Branches, entry)
				}
				if cycle := stack.Build(doc).DetectCycle(); cycle != nil {
					return &stack.CycleError{Path: cycle}
				}
				return nil
			}); err != nil {
				return err
			}

			fmt.Printf("imported %d branch(es)\n", len(accepted))
			for _, entry := range accepted {
				fmt.Printf("  %s (base %s, spec %s)\n", entry.Name, entry.BaseBranch, entry.SpecID)
			}
			return nil
		},
	}

	cmd.Flags().Bool("yes", false, "Import only unambiguous candidates, without prompting")
	return cmd
}

func filterBranches(branches []gitx.Branch, pattern string) ([]gitx.Branch, error) {
	if pattern == "" {
		return branches, nil
	}
	var filtered []gitx.Branch
	for _, branch := range branches {
		matched, err := filepath.Match(pattern, branch.Name)
		if err != nil {
			return nil, &store.ValidationError{
				Field:      "pattern",
				Message:    fmt.Sprintf("bad branch pattern %q: %v", pattern, err),
				Suggestion: "use shell glob syntax, e.g. 'feat/*'",
			}
		}
		if matched {
			filtered = append(filtered, branch)
		}
	}
	return filtered, nil
}
