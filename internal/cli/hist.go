package cli

import (
	"github.com/spf13/cobra"

	"github.com/A-Archives-and-Forks/xan/internal/hist"
)

func (a *app) histCommand() *cobra.Command {
	var opts hist.Options
	cmd := &cobra.Command{
		Use:   "hist [input]",
		Short: "Print a horizontal histogram of a frequency table",
		Long: `Print a horizontal histogram for the given CSV file, each row being a bar
of the graph. The file holds a label column, a value column and optionally a
field column splitting the rows into several histograms.

Examples:
  xan hist frequencies.csv
  xan hist -f category -l name -v total --rainbow totals.csv
  xan hist --domain-max sum --unit kg weights.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comma, err := a.comma()
			if err != nil {
				return err
			}
			opts.Delimiter = comma
			opts.NoHeaders = a.noHeaders

			flags := cmd.Flags()
			if !flags.Changed("cols") {
				opts.Cols = a.cfg.Hist.Cols
			}
			opts.Simple = opts.Simple || a.cfg.Hist.Simple
			opts.Rainbow = opts.Rainbow || a.cfg.Hist.Rainbow
			opts.ForceColors = opts.ForceColors || a.cfg.Hist.ForceColors

			in, err := a.input(optionalArg(args, 0))
			if err != nil {
				return err
			}
			defer in.Close()

			return hist.Run(in, a.stdout, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Name, "name", "unknown", "name of the histogram when no field column is present")
	flags.StringVarP(&opts.Field, "field", "f", "field", "name of the field column")
	flags.StringVarP(&opts.Label, "label", "l", "value", "name of the label column")
	flags.StringVarP(&opts.Value, "value", "v", "count", "name of the value column")
	flags.BoolVarP(&opts.Simple, "simple", "S", false, "draw bars with simple characters, better suited to raw text")
	flags.IntVar(&opts.Cols, "cols", 0, "width of the graph in terminal columns (default: terminal width or 80)")
	flags.BoolVarP(&opts.Rainbow, "rainbow", "R", false, "alternate colors for the bars")
	flags.StringVarP(&opts.DomainMax, "domain-max", "m", "max", `scale bars to "max", to "sum" or to an absolute value`)
	flags.BoolVarP(&opts.ForceColors, "force-colors", "C", false, "force colors even when output is not a terminal")
	flags.BoolVarP(&opts.HidePercent, "hide-percent", "P", false, "do not show percentages")
	flags.StringVarP(&opts.Unit, "unit", "u", "", "value unit")
	return cmd
}
