// Package runner evaluates a prepared expression over every row of a CSV
// stream, sequentially or with a pool of workers, and writes the rows back
// in their input order.
package runner

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"

	"github.com/A-Archives-and-Forks/xan/internal/config"
	"github.com/A-Archives-and-Forks/xan/pkg/evaluator"
	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// Mode selects what is done with the value of the expression.
type Mode uint8

const (
	// Transform replaces the value of a target column.
	Transform Mode = iota
	// Map appends the value as a new column.
	Map
	// Filter keeps the rows for which the value is truthy.
	Filter
)

func (m Mode) String() string {
	switch m {
	case Transform:
		return "transform"
	case Map:
		return "map"
	case Filter:
		return "filter"
	default:
		return "unknown"
	}
}

// Options configures a Runner.
type Options struct {
	Mode       Mode
	Expression string

	// Column is the target column of Transform, or the name of the column
	// appended by Map.
	Column string
	// Rename renames the target column of Transform.
	Rename string
	// Invert keeps the falsey rows in Filter mode.
	Invert bool

	NoHeaders bool
	Delimiter rune

	// Threads is the number of workers. Zero or one evaluates rows on the
	// calling goroutine, a negative value uses one worker per CPU.
	Threads int

	ErrorPolicy     string
	ErrorColumn     string
	PluralSeparator string

	Evaluator *evaluator.Evaluator
	Logger    *slog.Logger
}

// Runner evaluates one expression over a CSV stream.
type Runner struct {
	opts      Options
	logger    *slog.Logger
	separator []byte
}

// New validates opts and returns a Runner.
func New(opts Options) (*Runner, error) {
	if opts.Expression == "" {
		return nil, errors.New("empty expression")
	}
	if opts.Mode == Transform && opts.Column == "" {
		return nil, errors.New("transform requires a target column")
	}
	if opts.Mode == Map && opts.Column == "" {
		return nil, errors.New("map requires a new column name")
	}

	if opts.ErrorPolicy == "" {
		opts.ErrorPolicy = config.PolicyPanic
	}
	if !slices.Contains(config.Policies, opts.ErrorPolicy) {
		return nil, fmt.Errorf("unknown error policy %q", opts.ErrorPolicy)
	}
	if opts.ErrorColumn == "" {
		opts.ErrorColumn = "xan_error"
	}
	if opts.PluralSeparator == "" {
		opts.PluralSeparator = "|"
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.Threads < 0 {
		opts.Threads = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Evaluator == nil {
		opts.Evaluator = evaluator.New(evaluator.WithLogger(opts.Logger))
	}

	return &Runner{
		opts:      opts,
		logger:    opts.Logger,
		separator: []byte(opts.PluralSeparator),
	}, nil
}

// Run reads CSV from r and writes the processed rows to w. A nil error
// means every row was written. With the panic policy the first failing
// row stops the run: the rows preceding it are written, the others are
// not.
func (rn *Runner) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := csv.NewReader(r)
	reader.Comma = rn.opts.Delimiter
	reader.FieldsPerRecord = -1

	writer := csv.NewWriter(w)
	writer.Comma = rn.opts.Delimiter

	header, first, err := rn.readHeader(reader)
	if err != nil {
		return err
	}
	if header == nil {
		return nil
	}

	program, target, err := rn.prepare(header)
	if err != nil {
		return err
	}

	if !rn.opts.NoHeaders {
		if err := writer.Write(rn.outputHeader(header, target)); err != nil {
			return err
		}
	}

	p := &pipeline{runner: rn, program: program, target: target, reader: reader, writer: writer, first: first}

	rn.logger.Debug("running expression",
		"mode", rn.opts.Mode.String(),
		"expr", rn.opts.Expression,
		"threads", rn.opts.Threads,
		"policy", rn.opts.ErrorPolicy)

	if rn.opts.Threads > 1 {
		err = p.runParallel(ctx, rn.opts.Threads)
	} else {
		err = p.runSequential(ctx)
	}

	writer.Flush()
	if err != nil {
		return err
	}
	return writer.Error()
}

// readHeader returns the header row. Without headers, the first record is
// read ahead to learn the row width and handed back for processing.
func (rn *Runner) readHeader(reader *csv.Reader) ([]string, []string, error) {
	record, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}
	if !rn.opts.NoHeaders {
		return record, nil, nil
	}
	return make([]string, len(record)), record, nil
}

func (rn *Runner) prepare(header []string) (*evaluator.Program, int, error) {
	var (
		opts   []evaluator.PrepareOption
		target = -1
	)

	if rn.opts.Mode == Transform {
		offset, ok := types.ResolveColumn(header, rn.opts.Column)
		if !ok {
			return nil, 0, fmt.Errorf("cannot find column %q", rn.opts.Column)
		}
		target = offset
		opts = append(opts, evaluator.WithImplicitColumn(types.ByPos(offset)))
	}

	program, err := rn.opts.Evaluator.PrepareString(rn.opts.Expression, header, opts...)
	if err != nil {
		return nil, 0, err
	}
	return program, target, nil
}

func (rn *Runner) outputHeader(header []string, target int) []string {
	out := slices.Clone(header)
	switch rn.opts.Mode {
	case Transform:
		if rn.opts.Rename != "" {
			out[target] = rn.opts.Rename
		}
	case Map:
		out = append(out, rn.opts.Column)
	}
	if rn.opts.ErrorPolicy == config.PolicyReport {
		out = append(out, rn.opts.ErrorColumn)
	}
	return out
}

// apply turns the outcome of one evaluation into an output record. keep is
// false for rows dropped by a filter. A non-nil error is fatal to the run.
func (rn *Runner) apply(index int, record []string, target int, value types.Value, evalErr error) (out []string, keep bool, err error) {
	var reported string

	if evalErr != nil {
		if errors.Is(evalErr, context.Canceled) || errors.Is(evalErr, context.DeadlineExceeded) {
			return nil, false, evalErr
		}
		switch rn.opts.ErrorPolicy {
		case config.PolicyPanic:
			return nil, false, &RowError{Row: index, Err: evalErr}
		case config.PolicyReport:
			reported = evalErr.Error()
		case config.PolicyLog:
			rn.logger.Warn("evaluation error", "row", index, "error", evalErr)
		}
		value = types.None
	}

	switch rn.opts.Mode {
	case Transform:
		out = slices.Clone(record)
		for len(out) <= target {
			out = append(out, "")
		}
		out[target] = string(value.Serialize(rn.separator))
	case Map:
		out = append(slices.Clone(record), string(value.Serialize(rn.separator)))
	case Filter:
		// reported rows are kept so the error reaches the output
		if reported == "" && value.IsTruthy() == rn.opts.Invert {
			return nil, false, nil
		}
		out = slices.Clone(record)
	}

	if rn.opts.ErrorPolicy == config.PolicyReport {
		out = append(out, reported)
	}
	return out, true, nil
}

// RowError reports the row on which the panic policy stopped a run. Row is
// the zero-based index of the data row.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row+1, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
