package runner_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-Archives-and-Forks/xan/internal/runner"
	"github.com/A-Archives-and-Forks/xan/pkg/evaluator"
	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

const castError = `error when calling function "add": cannot safely cast from type "string" to type "number"`

func run(t *testing.T, input string, opts runner.Options) ([][]string, error) {
	t.Helper()
	rn, err := runner.New(opts)
	require.NoError(t, err)

	var out bytes.Buffer
	runErr := rn.Run(context.Background(), strings.NewReader(input), &out)

	records, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	return records, runErr
}

func assertRecords(t *testing.T, want, got [][]string) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestTransform(t *testing.T) {
	got, err := run(t, "a,b\n1,2\n2,3\n", runner.Options{
		Mode:       runner.Transform,
		Expression: "add(a, b)",
		Column:     "b",
	})
	require.NoError(t, err)
	assertRecords(t, [][]string{{"a", "b"}, {"1", "3"}, {"2", "5"}}, got)
}

func TestTransformRename(t *testing.T) {
	got, err := run(t, "a,b\n1,2\n2,3\n", runner.Options{
		Mode:       runner.Transform,
		Expression: "add(a, b)",
		Column:     "b",
		Rename:     "c",
	})
	require.NoError(t, err)
	assertRecords(t, [][]string{{"a", "c"}, {"1", "3"}, {"2", "5"}}, got)
}

func TestTransformImplicit(t *testing.T) {
	got, err := run(t, "name,surname\njohn,davis\nmary,sue\n", runner.Options{
		Mode:       runner.Transform,
		Expression: "upper",
		Column:     "surname",
		Rename:     "upper_surname",
	})
	require.NoError(t, err)
	assertRecords(t, [][]string{
		{"name", "upper_surname"},
		{"john", "DAVIS"},
		{"mary", "SUE"},
	}, got)
}

func TestTransformUnknownColumn(t *testing.T) {
	_, err := run(t, "a,b\n1,2\n", runner.Options{
		Mode:       runner.Transform,
		Expression: "a",
		Column:     "c",
	})
	assert.EqualError(t, err, `cannot find column "c"`)
}

func TestPrepareErrorStopsBeforeRows(t *testing.T) {
	got, err := run(t, "a,b\n1,2\n", runner.Options{
		Mode:       runner.Map,
		Expression: "uper(a)",
		Column:     "c",
	})
	var perr *types.PrepareError
	require.ErrorAs(t, err, &perr)
	assert.Empty(t, got)
}

func TestErrorPolicies(t *testing.T) {
	const input = "a,b\n1,test\n2,3\n"

	tests := []struct {
		policy string
		want   [][]string
	}{
		{
			policy: "report",
			want:   [][]string{{"a", "b", "error"}, {"1", "", castError}, {"2", "5", ""}},
		},
		{
			policy: "ignore",
			want:   [][]string{{"a", "b"}, {"1", ""}, {"2", "5"}},
		},
		{
			policy: "log",
			want:   [][]string{{"a", "b"}, {"1", ""}, {"2", "5"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			var logs bytes.Buffer
			got, err := run(t, input, runner.Options{
				Mode:        runner.Transform,
				Expression:  "add(a, b)",
				Column:      "b",
				ErrorPolicy: tt.policy,
				ErrorColumn: "error",
				Logger:      slog.New(slog.NewTextHandler(&logs, nil)),
			})
			require.NoError(t, err)
			assertRecords(t, tt.want, got)

			if tt.policy == "log" {
				assert.Contains(t, logs.String(), "evaluation error")
				assert.Contains(t, logs.String(), "row=0")
			} else {
				assert.Empty(t, logs.String())
			}
		})
	}
}

func TestPanicPolicy(t *testing.T) {
	got, err := run(t, "a,b\n1,2\n1,test\n2,3\n", runner.Options{
		Mode:       runner.Transform,
		Expression: "add(a, b)",
		Column:     "b",
	})
	require.Error(t, err)
	assert.EqualError(t, err, "row 2: "+castError)

	var rowErr *runner.RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 1, rowErr.Row)

	var evalErr *types.EvaluationError
	assert.ErrorAs(t, err, &evalErr)

	assertRecords(t, [][]string{{"a", "b"}, {"1", "3"}}, got)
}

func TestReportDefaultColumn(t *testing.T) {
	got, err := run(t, "a\nx\n", runner.Options{
		Mode:        runner.Map,
		Expression:  "inc(a)",
		Column:      "b",
		ErrorPolicy: "report",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "xan_error"}, got[0])
}

func TestMap(t *testing.T) {
	got, err := run(t, "a,b\n1,2\n2,3\n", runner.Options{
		Mode:            runner.Map,
		Expression:      "concat(a, b) | split(_, '') | compact",
		Column:          "digits",
		PluralSeparator: ";",
	})
	require.NoError(t, err)
	assertRecords(t, [][]string{
		{"a", "b", "digits"},
		{"1", "2", "1;2"},
		{"2", "3", "2;3"},
	}, got)
}

func TestFilter(t *testing.T) {
	const input = "n\n1\n5\n3\n8\n"

	got, err := run(t, input, runner.Options{Mode: runner.Filter, Expression: "gt(n, 2)"})
	require.NoError(t, err)
	assertRecords(t, [][]string{{"n"}, {"5"}, {"3"}, {"8"}}, got)

	got, err = run(t, input, runner.Options{Mode: runner.Filter, Expression: "gt(n, 2)", Invert: true})
	require.NoError(t, err)
	assertRecords(t, [][]string{{"n"}, {"1"}}, got)
}

func TestNoHeaders(t *testing.T) {
	got, err := run(t, "1,2\n3,4\n", runner.Options{
		Mode:       runner.Transform,
		Expression: "add(_, col(0))",
		Column:     "1",
		NoHeaders:  true,
	})
	require.NoError(t, err)
	assertRecords(t, [][]string{{"1", "3"}, {"3", "7"}}, got)
}

func TestDelimiter(t *testing.T) {
	rn, err := runner.New(runner.Options{
		Mode:       runner.Map,
		Expression: "mul(a, 2)",
		Column:     "double",
		Delimiter:  '\t',
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, rn.Run(context.Background(), strings.NewReader("a\n21\n"), &out))
	assert.Equal(t, "a\tdouble\n21\t42\n", out.String())
}

func TestEmptyInput(t *testing.T) {
	got, err := run(t, "", runner.Options{Mode: runner.Filter, Expression: "a"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		opts runner.Options
		want string
	}{
		{"empty expression", runner.Options{Mode: runner.Filter}, "empty expression"},
		{"transform target", runner.Options{Mode: runner.Transform, Expression: "a"}, "transform requires a target column"},
		{"map column", runner.Options{Mode: runner.Map, Expression: "a"}, "map requires a new column name"},
		{"policy", runner.Options{Mode: runner.Filter, Expression: "a", ErrorPolicy: "explode"}, `unknown error policy "explode"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.New(tt.opts)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func numbers(n int, bad map[int]bool) string {
	var b strings.Builder
	b.WriteString("n\n")
	for i := range n {
		if bad[i] {
			b.WriteString("oops\n")
			continue
		}
		fmt.Fprintf(&b, "%d\n", i)
	}
	return b.String()
}

func TestParallelMatchesSequential(t *testing.T) {
	input := numbers(2000, map[int]bool{17: true, 1500: true})

	for _, mode := range []runner.Mode{runner.Transform, runner.Map, runner.Filter} {
		t.Run(mode.String(), func(t *testing.T) {
			opts := runner.Options{
				Mode:        mode,
				Expression:  "mod(n, 3)",
				Column:      "n",
				ErrorPolicy: "report",
			}

			sequential, err := run(t, input, opts)
			require.NoError(t, err)

			opts.Threads = 8
			parallel, err := run(t, input, opts)
			require.NoError(t, err)

			assertRecords(t, sequential, parallel)
		})
	}
}

func TestParallelPanicFlushesPrecedingRows(t *testing.T) {
	input := numbers(1000, map[int]bool{600: true, 800: true})

	got, err := run(t, input, runner.Options{
		Mode:       runner.Transform,
		Expression: "inc(n)",
		Column:     "n",
		Threads:    4,
	})

	var rowErr *runner.RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 600, rowErr.Row)

	require.Len(t, got, 601)
	assert.Equal(t, []string{"600"}, got[600])
}

func TestRunCancelled(t *testing.T) {
	rn, err := runner.New(runner.Options{Mode: runner.Filter, Expression: "n", Threads: 2})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = rn.Run(ctx, strings.NewReader(numbers(100, nil)), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

// stalledInput serves data, then blocks reads until the test ends.
func stalledInput(t *testing.T, data string) io.Reader {
	t.Helper()
	pr, pw := io.Pipe()
	go func() { _, _ = pw.Write([]byte(data)) }()
	t.Cleanup(func() { _ = pw.Close() })
	return pr
}

func runWithin(t *testing.T, ctx context.Context, rn *runner.Runner, r io.Reader, w io.Writer) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- rn.Run(ctx, r, w) }()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return while input was stalled")
		return nil
	}
}

func TestPanicReturnsWhileInputStalls(t *testing.T) {
	for _, threads := range []int{1, 4} {
		t.Run(fmt.Sprintf("threads=%d", threads), func(t *testing.T) {
			rn, err := runner.New(runner.Options{
				Mode:       runner.Transform,
				Expression: "add(a, b)",
				Column:     "b",
				Threads:    threads,
			})
			require.NoError(t, err)

			var out bytes.Buffer
			err = runWithin(t, context.Background(), rn, stalledInput(t, "a,b\n1,test\n2,3\n"), &out)
			assert.EqualError(t, err, "row 1: "+castError)
			assert.Equal(t, "a,b\n", out.String())
		})
	}
}

func TestParallelCancelWhileInputStalls(t *testing.T) {
	rn, err := runner.New(runner.Options{Mode: runner.Filter, Expression: "n", Threads: 4})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	err = runWithin(t, ctx, rn, stalledInput(t, "n\n1\n2\n"), io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParallelBoundsRowsInFlight(t *testing.T) {
	const workers = 2

	var evaluated atomic.Int64
	release := make(chan struct{})
	hold := func(ctx context.Context, args ...types.Value) (types.Value, error) {
		if s, _ := args[0].AsString(); s == "0" {
			select {
			case <-release:
			case <-ctx.Done():
				return types.None, ctx.Err()
			}
		} else {
			evaluated.Add(1)
		}
		return args[0], nil
	}

	rn, err := runner.New(runner.Options{
		Mode:       runner.Map,
		Expression: "hold(n)",
		Column:     "m",
		Threads:    workers,
		Evaluator:  evaluator.New(evaluator.WithCustomFunction("hold", 1, 1, hold)),
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	var out bytes.Buffer
	go func() { done <- rn.Run(context.Background(), strings.NewReader(numbers(5000, nil)), &out) }()

	// Row 0 holds the first slot, so at most workers*4-1 later rows can be
	// read and evaluated before it is written.
	time.Sleep(200 * time.Millisecond)
	assert.LessOrEqual(t, evaluated.Load(), int64(workers*4-1))
	close(release)

	require.NoError(t, <-done)
	assert.Equal(t, int64(4999), evaluated.Load())
}
