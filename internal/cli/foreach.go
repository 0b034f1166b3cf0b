package cli

import (
	"github.com/spf13/cobra"

	"github.com/A-Archives-and-Forks/xan/internal/foreach"
)

func (a *app) foreachCommand() *cobra.Command {
	var (
		unify     bool
		newColumn string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "foreach <column> <command> [input]",
		Short: "Execute a shell command once per row",
		Long: `Execute a shell command once per row, "{}" in the command being replaced
by the value of the given column. The command runs through $SHELL -c.

Deleting all files whose names are listed in a column:
  xan foreach filename 'rm {}' assets.csv

Executing a command that outputs CSV once per row without repeating headers:
  xan foreach query -u 'search --year 2020 {}' queries.csv > results.csv

Same as above with an additional column holding the current value:
  xan foreach query -u -c from_query 'search {}' queries.csv > results.csv`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			comma, err := a.comma()
			if err != nil {
				return err
			}

			in, err := a.input(optionalArg(args, 2))
			if err != nil {
				return err
			}
			defer in.Close()

			out, err := a.output(output)
			if err != nil {
				return err
			}

			err = foreach.Run(cmd.Context(), in, out, foreach.Options{
				Column:    args[0],
				Command:   args[1],
				Unify:     unify,
				NewColumn: newColumn,
				NoHeaders: a.noHeaders,
				Delimiter: comma,
				Stderr:    a.stderr,
				Logger:    a.logger,
			})
			if err != nil {
				out.Close()
				return err
			}
			return out.Close()
		},
	}
	cmd.Flags().BoolVarP(&unify, "unify", "u", false, "parse the output of every command as CSV and merge them, keeping the first header only")
	cmd.Flags().StringVarP(&newColumn, "new-column", "c", "", "when unifying, add a column with this name holding the current value")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write output to this file instead of stdout")
	return cmd
}
