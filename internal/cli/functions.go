package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/A-Archives-and-Forks/xan/pkg/evaluator"
)

func (a *app) functionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "functions [query]",
		Short: "List the functions usable in expressions",
		Long: `List the functions usable in expressions, grouped by category. When a
query is given, only the functions whose name fuzzily matches it are listed.

Examples:
  xan functions
  xan functions date
  xan --no-ext functions`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printFunctions(a.stdout, a.newEvaluator(), optionalArg(args, 0))
		},
	}
}

func (a *app) printFunctions(w io.Writer, ev *evaluator.Evaluator, query string) error {
	renderer := lipgloss.NewRenderer(w)
	title := renderer.NewStyle().Bold(true).Underline(true)
	usage := renderer.NewStyle().Foreground(lipgloss.Color("6"))
	muted := renderer.NewStyle().Faint(true)

	current := ""
	found := 0
	for _, fd := range ev.Functions() {
		if query != "" && !fuzzy.MatchFold(query, fd.Name) {
			continue
		}
		if fd.Category != current {
			current = fd.Category
			fmt.Fprintf(w, "\n%s\n\n", title.Render(current))
		}
		fmt.Fprintf(w, "  %s\n", usage.Render(fd.Help))
		if fd.Description != "" {
			fmt.Fprintf(w, "      %s\n", muted.Render(fd.Description))
		}
		found++
	}

	if found == 0 {
		return fmt.Errorf("no function matches %q", query)
	}
	return nil
}
