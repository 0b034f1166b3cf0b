// Package foreach runs a shell command once per CSV row, with "{}" in the
// command replaced by the value of a column.
package foreach

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// Placeholder is replaced by the current value in the command template.
const Placeholder = "{}"

// ErrNoShell is returned when no shell is configured and $SHELL is unset.
var ErrNoShell = errors.New("no shell found")

// Options configures Run.
type Options struct {
	Column  string
	Command string

	// Unify parses the output of every command as CSV and writes a single
	// table, keeping only the first header.
	Unify bool
	// NewColumn, when unifying, appends a column holding the current value.
	NewColumn string

	NoHeaders bool
	Delimiter rune

	// Shell defaults to $SHELL.
	Shell  string
	Stderr io.Writer
	Logger *slog.Logger
}

// Run executes the command for every row of r. Command output goes to w.
// A command exiting with a non-zero status is logged and does not stop the
// run.
func Run(ctx context.Context, r io.Reader, w io.Writer, opts Options) error {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Shell == "" {
		opts.Shell = os.Getenv("SHELL")
	}
	if opts.Shell == "" {
		return ErrNoShell
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.FieldsPerRecord = -1

	first, err := reader.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}

	header := first
	if opts.NoHeaders {
		header = make([]string, len(first))
	}
	column, ok := types.ResolveColumn(header, opts.Column)
	if !ok {
		return fmt.Errorf("cannot find column %q", opts.Column)
	}

	ex := &executor{opts: opts, column: column, out: w}
	if opts.Unify {
		ex.writer = csv.NewWriter(w)
		ex.writer.Comma = opts.Delimiter
	}

	if opts.NoHeaders {
		if err := ex.row(ctx, first); err != nil {
			return err
		}
	}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := ex.row(ctx, record); err != nil {
			return err
		}
	}

	if ex.writer != nil {
		ex.writer.Flush()
		return ex.writer.Error()
	}
	return nil
}

type executor struct {
	opts          Options
	column        int
	out           io.Writer
	writer        *csv.Writer
	headerWritten bool
}

func (ex *executor) row(ctx context.Context, record []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var value string
	if ex.column < len(record) {
		value = record[ex.column]
	}

	command := strings.ReplaceAll(ex.opts.Command, Placeholder, value)
	cmd := exec.CommandContext(ctx, ex.opts.Shell, "-c", command)
	cmd.Stderr = ex.opts.Stderr

	if !ex.opts.Unify {
		cmd.Stdout = ex.out
		return ex.wait(cmd.Run(), value)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %q: %w", command, err)
	}

	unifyErr := ex.unify(stdout, value)
	if unifyErr != nil {
		// drain so the command does not block on a full pipe
		_, _ = io.Copy(io.Discard, stdout)
	}
	waitErr := ex.wait(cmd.Wait(), value)
	if unifyErr != nil {
		return unifyErr
	}
	return waitErr
}

func (ex *executor) unify(stdout io.Reader, value string) error {
	reader := csv.NewReader(stdout)
	reader.Comma = ex.opts.Delimiter
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading command output: %w", err)
	}

	if !ex.headerWritten {
		if ex.opts.NewColumn != "" {
			header = append(header, ex.opts.NewColumn)
		}
		if err := ex.writer.Write(header); err != nil {
			return err
		}
		ex.headerWritten = true
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading command output: %w", err)
		}
		if ex.opts.NewColumn != "" {
			record = append(record, value)
		}
		if err := ex.writer.Write(record); err != nil {
			return err
		}
	}
}

// wait logs commands that ran but failed. Errors that prevented the
// command from running at all are returned.
func (ex *executor) wait(err error, value string) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		ex.opts.Logger.Warn("command failed", "value", value, "exit_code", exitErr.ExitCode())
		return nil
	}
	return err
}
