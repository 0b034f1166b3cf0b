// Package cli implements the xan command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/A-Archives-and-Forks/xan/internal/config"
	"github.com/A-Archives-and-Forks/xan/pkg/evaluator"
	"github.com/A-Archives-and-Forks/xan/pkg/ext"
)

type app struct {
	cfgFile   string
	verbose   bool
	noExt     bool
	delimiter string
	noHeaders bool

	cfg    *config.Config
	logger *slog.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewRootCommand returns the xan command tree bound to the process streams.
func NewRootCommand() *cobra.Command {
	return newApp(os.Stdin, os.Stdout, os.Stderr).rootCommand()
}

// Execute runs the command line and returns the process exit code. Errors
// are printed as "<command path>: <error>".
func Execute(ctx context.Context) int {
	return execute(ctx, NewRootCommand(), os.Args[1:], os.Stderr)
}

func execute(ctx context.Context, root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	cmd, err := root.ExecuteContextC(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", cmd.CommandPath(), err)
		return 1
	}
	return 0
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		cfg:    config.Default(),
		logger: slog.Default(),
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "xan",
		Short: "CSV toolkit driven by the moonblade expression language",
		Long: `xan processes CSV files with small expressions evaluated on every row.

Examples:
  xan transform price 'mul(_, 1.2)' sales.csv
  xan map 'concat(name, " ", surname)' full_name people.csv
  xan filter 'gt(age, 18)' people.csv
  xan functions date`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $XAN_CONFIG or <user config dir>/xan/config.toml)")
	flags.BoolVarP(&a.verbose, "verbose", "V", false, "log debug information on stderr")
	flags.BoolVar(&a.noExt, "no-ext", false, "do not register the extension functions")
	flags.StringVarP(&a.delimiter, "delimiter", "d", "", "field delimiter for reading and writing CSV data")
	flags.BoolVarP(&a.noHeaders, "no-headers", "n", false, "the first row is data, not a header")

	root.AddCommand(
		a.transformCommand(),
		a.mapCommand(),
		a.filterCommand(),
		a.functionsCommand(),
		a.cheatsheetCommand(),
		a.foreachCommand(),
		a.histCommand(),
		a.replCommand(),
		a.versionCommand(),
	)
	return root
}

// setup loads the configuration and installs the logger before any
// command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadDefault(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	a.logger.Debug("configuration loaded", "command", cmd.Name(), "extensions", a.extensions())
	return nil
}

func (a *app) extensions() bool {
	return !a.noExt && a.cfg.ExtensionsEnabled()
}

func (a *app) newEvaluator() *evaluator.Evaluator {
	opts := []evaluator.EvalOption{evaluator.WithLogger(a.logger)}
	if a.extensions() {
		opts = append(opts, ext.WithAll())
	}
	return evaluator.New(opts...)
}

// comma returns the delimiter flag, falling back to the configured one.
func (a *app) comma() (rune, error) {
	if a.delimiter != "" {
		return config.ParseDelimiter(a.delimiter)
	}
	return a.cfg.Comma()
}

// input opens path, or returns stdin when path is empty or "-".
func (a *app) input(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(a.stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// output creates path, or returns stdout when path is empty.
func (a *app) output(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{a.stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
