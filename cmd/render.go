package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/grove-stack/pkg/aggregate"
	"github.com/mattsolo1/grove-stack/pkg/stack"
	"github.com/mattsolo1/grove-stack/pkg/store"
)

var (
	specStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	branchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	baseStyle    = lipgloss.NewStyle().Faint(true)
	arrowStyle   = lipgloss.NewStyle().Faint(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	findingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	repoStyle    = lipgloss.NewStyle().Bold(true)

	statusStyles = map[store.Status]lipgloss.Style{
		store.StatusActive:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		store.StatusSubmitted: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		store.StatusMerged:    lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Faint(true),
		store.StatusAbandoned: lipgloss.NewStyle().Faint(true),
	}
)

func renderStatus(s store.Status) string {
	if style, ok := statusStyles[s]; ok {
		return style.Render(string(s))
	}
	return string(s)
}

// renderChains prints chains grouped by spec, one root-to-leaf run per
// line, annotated with each branch's status.
func renderChains(w io.Writer, doc *store.MappingFile, chains []stack.Chain) {
	currentSpec := ""
	for _, chain := range chains {
		if chain.SpecID != currentSpec {
			currentSpec = chain.SpecID
			fmt.Fprintln(w, specStyle.Render(currentSpec))
		}
		parts := make([]string, 0, len(chain.Branches)+1)
		parts = append(parts, baseStyle.Render(chain.Base))
		for _, name := range chain.Branches {
			label := branchStyle.Render(name)
			if entry := doc.Find(name); entry != nil {
				label = fmt.Sprintf("%s [%s]", label, renderStatus(entry.Status))
			}
			parts = append(parts, label)
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(parts, arrowStyle.Render(" ← ")))
	}
}

func renderHealth(w io.Writer, health stack.Health) {
	for _, finding := range health.Findings {
		fmt.Fprintf(w, "%s %s: %s\n", findingStyle.Render("✗"), finding.Branch, finding.Message)
	}
	for _, warning := range health.Warnings {
		fmt.Fprintf(w, "%s %s\n", warnStyle.Render("!"), warning)
	}
	if len(health.Findings) == 0 && len(health.Warnings) == 0 {
		fmt.Fprintln(w, "all tracked branches healthy")
	}
}

func renderSummary(w io.Writer, s aggregate.Summary) {
	if s.Error != "" {
		fmt.Fprintf(w, "%s  %s\n", repoStyle.Render(s.Repo), warnStyle.Render(s.Error))
		return
	}
	counts := make([]string, 0, 4)
	for _, status := range []store.Status{store.StatusActive, store.StatusSubmitted, store.StatusMerged, store.StatusAbandoned} {
		if n := s.StatusCounts[status]; n > 0 {
			counts = append(counts, fmt.Sprintf("%d %s", n, renderStatus(status)))
		}
	}
	fmt.Fprintf(w, "%s  %d branches", repoStyle.Render(s.Repo), s.BranchCount)
	if len(counts) > 0 {
		fmt.Fprintf(w, " (%s)", strings.Join(counts, ", "))
	}
	fmt.Fprintln(w)
	for _, chain := range s.Chains {
		fmt.Fprintf(w, "  %s: %s %s %s\n",
			specStyle.Render(chain.SpecID),
			baseStyle.Render(chain.Base),
			arrowStyle.Render("←"),
			strings.Join(chain.Branches, arrowStyle.Render(" ← ")))
	}
}

func renderView(w io.Writer, view *aggregate.View) {
	renderSummary(w, view.Root)
	for _, child := range view.Children {
		renderSummary(w, child)
	}
	if len(view.Failures) > 0 {
		fmt.Fprintf(w, "%s %d of %d repositories could not be summarized\n",
			warnStyle.Render("!"), len(view.Failures), len(view.Children)+1)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
