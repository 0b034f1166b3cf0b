package cli

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/A-Archives-and-Forks/xan/pkg/evaluator"
)

const (
	replPrompt  = "xan> "
	historyFile = ".xan_history"
)

const replHelp = `Type an expression to evaluate it against the current row.

  :header a,b,c   set the header
  :row 1,2,3      set the row
  :show           print the current header and row
  :functions [q]  list functions
  :help           show this message
  :quit           exit
`

func (a *app) replCommand() *cobra.Command {
	var header, row string
	cmd := &cobra.Command{
		Use:   "repl [input]",
		Short: "Evaluate expressions interactively",
		Long: `Start an interactive session evaluating expressions against a single row.
The header and row are read from the first two lines of the input file when
one is given, or set with --header and --row.

Examples:
  xan repl people.csv
  xan repl --header name,age --row john,42`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &replSession{app: a, evaluator: a.newEvaluator()}

			if len(args) == 1 {
				if err := s.load(args[0]); err != nil {
					return err
				}
			}
			if header != "" {
				if err := s.command(":header " + header); err != nil {
					return err
				}
			}
			if row != "" {
				if err := s.command(":row " + row); err != nil {
					return err
				}
			}
			return s.loop(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&header, "header", "", "comma separated header")
	cmd.Flags().StringVar(&row, "row", "", "comma separated row")
	return cmd
}

type replSession struct {
	app       *app
	evaluator *evaluator.Evaluator
	header    []string
	row       []string
}

func (s *replSession) load(path string) error {
	comma, err := s.app.comma()
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = comma
	reader.FieldsPerRecord = -1

	if s.header, err = reader.Read(); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	s.row, err = reader.Read()
	if err != nil && err != io.EOF {
		return fmt.Errorf("reading row: %w", err)
	}
	return nil
}

func (s *replSession) loop(ctx context.Context) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	fmt.Fprintf(s.app.stdout, "xan repl, type :help for help\n")
	for {
		line, err := ln.Prompt(replPrompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.app.stdout)
			break
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if line == ":quit" || line == ":exit" {
			break
		}
		if err := s.command(line); err != nil {
			fmt.Fprintln(s.app.stdout, err)
		}
		if ctx.Err() != nil {
			break
		}
	}

	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}
	return nil
}

// command handles one line of input: a ":" command or an expression.
func (s *replSession) command(line string) error {
	if !strings.HasPrefix(line, ":") {
		return s.eval(line)
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch name {
	case ":header":
		s.header = splitRecord(rest)
	case ":row":
		s.row = splitRecord(rest)
	case ":show":
		fmt.Fprintf(s.app.stdout, "header: %s\nrow:    %s\n", strings.Join(s.header, ","), strings.Join(s.row, ","))
	case ":functions":
		return s.app.printFunctions(s.app.stdout, s.evaluator, rest)
	case ":help":
		fmt.Fprint(s.app.stdout, replHelp)
	default:
		return fmt.Errorf("unknown command %s, type :help for help", name)
	}
	return nil
}

func (s *replSession) eval(expr string) error {
	program, err := s.evaluator.PrepareString(expr, s.header)
	if err != nil {
		return err
	}
	value, err := program.Run(context.Background(), s.row)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.app.stdout, "%s (%s)\n", value.Serialize([]byte(s.app.cfg.PluralSeparator)), value.TypeOf())
	return nil
}

func splitRecord(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
