package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/A-Archives-and-Forks/xan/internal/runner"
)

// evalFlags are shared by the commands evaluating an expression per row.
type evalFlags struct {
	threads         int
	parallel        bool
	errors          string
	errorColumn     string
	pluralSeparator string
	output          string
	functions       bool
	cheatsheet      bool
}

func (f *evalFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVarP(&f.threads, "threads", "t", 0, "number of worker threads evaluating rows")
	flags.BoolVarP(&f.parallel, "parallel", "p", false, "use one worker thread per CPU")
	flags.StringVarP(&f.errors, "errors", "e", "", "what to do with evaluation errors: panic, report, ignore or log")
	flags.StringVarP(&f.errorColumn, "error-column", "E", "", "name of the column holding reported errors")
	flags.StringVar(&f.pluralSeparator, "plural-separator", "", "separator used to serialize lists")
	flags.StringVarP(&f.output, "output", "o", "", "write output to this file instead of stdout")
	flags.BoolVar(&f.functions, "functions", false, "print the list of available functions and exit")
	flags.BoolVar(&f.cheatsheet, "cheatsheet", false, "print the expression language cheatsheet and exit")
}

// printedHelp handles --functions and --cheatsheet.
func (a *app) printedHelp(f *evalFlags) (bool, error) {
	switch {
	case f.functions:
		return true, a.printFunctions(a.stdout, a.newEvaluator(), "")
	case f.cheatsheet:
		_, err := fmt.Fprint(a.stdout, cheatsheet)
		return true, err
	}
	return false, nil
}

func (a *app) runnerOptions(cmd *cobra.Command, f *evalFlags, mode runner.Mode, expr string) (runner.Options, error) {
	comma, err := a.comma()
	if err != nil {
		return runner.Options{}, err
	}

	threads := a.cfg.Threads
	if a.cfg.Parallel {
		threads = -1
	}
	if cmd.Flags().Changed("threads") {
		threads = f.threads
	}
	if f.parallel {
		threads = -1
	}

	return runner.Options{
		Mode:            mode,
		Expression:      expr,
		NoHeaders:       a.noHeaders,
		Delimiter:       comma,
		Threads:         threads,
		ErrorPolicy:     firstNonEmpty(f.errors, a.cfg.ErrorPolicy),
		ErrorColumn:     firstNonEmpty(f.errorColumn, a.cfg.ErrorColumn),
		PluralSeparator: firstNonEmpty(f.pluralSeparator, a.cfg.PluralSeparator),
		Evaluator:       a.newEvaluator(),
		Logger:          a.logger,
	}, nil
}

func (a *app) run(cmd *cobra.Command, f *evalFlags, opts runner.Options, inputPath string) error {
	rn, err := runner.New(opts)
	if err != nil {
		return err
	}

	in, err := a.input(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := a.output(f.output)
	if err != nil {
		return err
	}

	if err := rn.Run(cmd.Context(), in, out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (a *app) transformCommand() *cobra.Command {
	var (
		f      evalFlags
		rename string
	)
	cmd := &cobra.Command{
		Use:   "transform <column> <expression> [input]",
		Short: "Transform a column by evaluating an expression on every row",
		Long: `Replace the value of a column with the result of an expression
evaluated on every row. The current value of the column is available as "_"
and functions named without arguments are applied to it.

Examples:
  xan transform surname upper people.csv
  xan transform surname 'trim | upper' -r upper_surname people.csv
  xan transform price 'mul(_, 1.2)' -p sales.csv`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if done, err := a.printedHelp(&f); done {
				return err
			}
			if len(args) < 2 {
				return fmt.Errorf("expected <column> and <expression> arguments")
			}

			opts, err := a.runnerOptions(cmd, &f, runner.Transform, args[1])
			if err != nil {
				return err
			}
			opts.Column = args[0]
			opts.Rename = rename
			return a.run(cmd, &f, opts, optionalArg(args, 2))
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&rename, "rename", "r", "", "new name for the transformed column")
	return cmd
}

func (a *app) mapCommand() *cobra.Command {
	var f evalFlags
	cmd := &cobra.Command{
		Use:   "map <expression> <new-column> [input]",
		Short: "Append a column computed from an expression",
		Long: `Evaluate an expression on every row and append its result as a new
column.

Examples:
  xan map 'add(a, b)' c numbers.csv
  xan map 'split(tags, ",") | len' tag_count posts.csv`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if done, err := a.printedHelp(&f); done {
				return err
			}
			if len(args) < 2 {
				return fmt.Errorf("expected <expression> and <new-column> arguments")
			}

			opts, err := a.runnerOptions(cmd, &f, runner.Map, args[0])
			if err != nil {
				return err
			}
			opts.Column = args[1]
			return a.run(cmd, &f, opts, optionalArg(args, 2))
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) filterCommand() *cobra.Command {
	var (
		f      evalFlags
		invert bool
	)
	cmd := &cobra.Command{
		Use:   "filter <expression> [input]",
		Short: "Keep the rows for which an expression is truthy",
		Long: `Evaluate an expression on every row and only keep the rows for which
the result is truthy.

Examples:
  xan filter 'gt(age, 18)' people.csv
  xan filter -v 'isnull(email)' people.csv`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if done, err := a.printedHelp(&f); done {
				return err
			}
			if len(args) < 1 {
				return fmt.Errorf("expected an <expression> argument")
			}

			opts, err := a.runnerOptions(cmd, &f, runner.Filter, args[0])
			if err != nil {
				return err
			}
			opts.Invert = invert
			return a.run(cmd, &f, opts, optionalArg(args, 1))
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVarP(&invert, "invert", "v", false, "keep the rows for which the expression is falsey")
	return cmd
}
