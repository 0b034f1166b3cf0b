package ext_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/A-Archives-and-Forks/xan/pkg/evaluator"
	"github.com/A-Archives-and-Forks/xan/pkg/ext"
	"github.com/A-Archives-and-Forks/xan/pkg/ext/extstring"
	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

func eval(t *testing.T, expr string, opts ...evaluator.EvalOption) types.Value {
	t.Helper()
	ev := evaluator.New(opts...)
	program, err := ev.PrepareString(expr, nil)
	if err != nil {
		t.Fatalf("Prepare(%q) error: %v", expr, err)
	}
	result, err := program.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run(%q) error: %v", expr, err)
	}
	return result
}

type evalCase struct {
	expr string
	want string
}

func runCases(t *testing.T, tests []evalCase, opts ...evaluator.EvalOption) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := eval(t, tt.expr, opts...)
			if got.String() != tt.want {
				t.Errorf("got %q (%s), want %q", got.String(), got.TypeOf(), tt.want)
			}
		})
	}
}

// ── WithAll ────────────────────────────────────────────────────────────────

func TestWithAll_NoCollisions(t *testing.T) {
	ev := evaluator.New(ext.WithAll())
	if err := ev.Err(); err != nil {
		t.Fatalf("registering all extensions: %v", err)
	}
	for _, fd := range ext.All() {
		if fd.Help == "" {
			t.Errorf("%s has no help line", fd.Name)
		}
		if _, ok := ev.Lookup(fd.Name); !ok {
			t.Errorf("%s is not registered", fd.Name)
		}
	}
}

func TestWithAll_StringFunctions(t *testing.T) {
	runCases(t, []evalCase{
		{`index_of('héllo', 'l')`, "2"},
		{`index_of('abcabc', 'bc', 2)`, "4"},
		{`index_of('abc', 'z')`, "-1"},
		{`last_index_of('abcabc', 'bc')`, "4"},
		{`capitalize('hELLO wORLD')`, "Hello world"},
		{`title_case('hello world')`, "Hello World"},
		{`camel_case('hello_world')`, "helloWorld"},
		{`snake_case('helloWorld')`, "hello_world"},
		{`kebab_case('Hello World')`, "hello-world"},
		{`repeat('ab', 3)`, "ababab"},
		{`words('  a  b ')`, "a|b"},
		{`pad_start('7', 3, '0')`, "007"},
		{`pad_end('ab', 4)`, "ab  "},
		{`pad_start('long', 2)`, "long"},
	}, ext.WithAll())
}

func TestWithAll_NumericFunctions(t *testing.T) {
	runCases(t, []evalCase{
		{`sign(-5)`, "-1"},
		{`sign(0)`, "0"},
		{`sign(2.5)`, "1"},
		{`clamp(150, 0, 100)`, "100"},
		{`clamp(-5, 0, 100)`, "0"},
		{`clamp(50, 0, 100)`, "50"},
		{`exp(0)`, "1"},
		{`pi()`, "3.141592653589793"},
		{`mean(split('1|2|3', '|'))`, "2"},
		{`median(split('3|1|2|4', '|'))`, "2.5"},
		{`median(5)`, "5"},
		{`variance(2, 4, 4, 4, 5, 5, 7, 9)`, "4"},
		{`stddev(2, 4, 4, 4, 5, 5, 7, 9)`, "2"},
		{`percentile(split('1|2|3|4|5', '|'), 50)`, "3"},
		{`percentile(split('1|2', '|'), 50)`, "1.5"},
		{`mode(1, 2, 2, 3)`, "2"},
	}, ext.WithAll())
}

func TestWithAll_ArrayFunctions(t *testing.T) {
	runCases(t, []evalCase{
		{`take(split('1|2|3|4|5', '|'), 3)`, "1|2|3"},
		{`take(split('1|2', '|'), 5)`, "1|2"},
		{`skip(split('1|2|3|4|5', '|'), 2)`, "3|4|5"},
		{`len(chunk(split('1|2|3|4|5', '|'), 2))`, "3"},
		{`last(chunk(split('1|2|3|4|5', '|'), 2))`, "5"},
		{`len(window(split('1|2|3|4', '|'), 2))`, "3"},
		{`len(window(split('1|2|3|4', '|'), 2, 2))`, "2"},
		{`reverse(split('1|2|3', '|'))`, "3|2|1"},
		{`sort(split('b|10|a|9', '|'))`, "9|10|a|b"},
		{`uniq(split('a|b|a', '|'))`, "a|b"},
		{`union(split('1|2|3', '|'), split('2|3|4', '|'))`, "1|2|3|4"},
		{`intersection(split('1|2|3', '|'), split('2|3|4', '|'))`, "2|3"},
		{`difference(split('1|2|3', '|'), split('2|3|4', '|'))`, "1"},
		{`sym_diff(split('1|2|3', '|'), split('2|3|4', '|'))`, "1|4"},
		{`range(1, 5)`, "1|2|3|4|5"},
		{`range(0, 1, 0.5)`, "0|0.5|1"},
		{`range(5, 1, -2)`, "5|3|1"},
		{`zip_longest(split('a|b', '|'), split('1', '|'), '-')`, "a|1|b|-"},
	}, ext.WithAll())
}

func TestWithAll_DateTimeFunctions(t *testing.T) {
	runCases(t, []evalCase{
		{`date_add('2024-02-28', 1, 'day')`, "2024-02-29"},
		{`date_add('2024-02-28 10:00:00', -2, 'hour')`, "2024-02-28 08:00:00"},
		{`date_add('2024-01-01T00:00:00Z', 1, 'year')`, "2025-01-01T00:00:00Z"},
		{`date_add(0, 1, 'day')`, "86400000"},
		{`date_diff('2024-01-15', '2024-03-14', 'month')`, "1"},
		{`date_diff('2024-01-01', '2024-01-31', 'day')`, "30"},
		{`date_diff('2020-06-01', '2024-05-31', 'year')`, "3"},
		{`date_part('2024-03-10 12:30:00', 'hour')`, "12"},
		{`date_part('2024-03-10', 'weekday')`, "0"},
		{`date_start_of('2024-03-10 12:30:00', 'month')`, "2024-03-01 00:00:00"},
		{`date_end_of('2024-02-10', 'month')`, "2024-02-29"},
	}, ext.WithDateTime())
}

func TestWithAll_CryptoFunctions(t *testing.T) {
	runCases(t, []evalCase{
		{`hash('abc', 'md5')`, "900150983cd24fb0d6963f7d28e17f72"},
		{`hash('abc')`, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{`len(hash('abc', 'blake2b'))`, "64"},
		{`len(hash('abc', 'blake2b-512'))`, "128"},
		{`len(hmac('abc', 'key'))`, "64"},
		{`eq(len(hmac('abc', 'key', 'blake2b')), 64)`, "true"},
	}, ext.WithCrypto())

	got := eval(t, `uuid()`, ext.WithCrypto())
	id, err := uuid.Parse(got.String())
	if err != nil {
		t.Fatalf("uuid() = %q: %v", got.String(), err)
	}
	if id.Version() != 4 {
		t.Errorf("uuid version = %d, want 4", id.Version())
	}
}

// ── Errors ─────────────────────────────────────────────────────────────────

func TestExtensionErrors(t *testing.T) {
	tests := []string{
		`hash('abc', 'crc32')`,
		`date_add('yesterday', 1, 'day')`,
		`date_add('2024-01-01', 1, 'fortnight')`,
		`chunk(split('1|2', '|'), 0)`,
		`range(1, 2, 0)`,
		`percentile(split('1|2', '|'), 120)`,
		`clamp(1, 10, 0)`,
		`take('abc', 1)`,
	}

	ev := evaluator.New(ext.WithAll())
	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			program, err := ev.PrepareString(expr, nil)
			if err != nil {
				t.Fatalf("Prepare(%q) error: %v", expr, err)
			}
			if _, err := program.Run(context.Background(), nil); err == nil {
				t.Errorf("Run(%q) succeeded, want error", expr)
			}
		})
	}
}

func TestExtensionErrorMessages(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{`repeat('ab', 'x')`, `error when calling function "repeat": cannot safely cast from type "string" to type "unsigned_number"`},
		{`atan2('y', 1)`, `error when calling function "atan2": cannot safely cast from type "string" to type "float"`},
		{`range(1, 2, 0)`, `error when calling function "range": step must not be zero`},
		{`date_add('yesterday', 1, 'day')`, `error when calling function "date_add": cannot parse "yesterday" as a date`},
	}

	ev := evaluator.New(ext.WithAll())
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			program, err := ev.PrepareString(tt.expr, nil)
			if err != nil {
				t.Fatalf("Prepare(%q) error: %v", tt.expr, err)
			}
			_, err = program.Run(context.Background(), nil)
			if err == nil {
				t.Fatalf("Run(%q) succeeded, want error", tt.expr)
			}
			if err.Error() != tt.want {
				t.Errorf("got %q, want %q", err.Error(), tt.want)
			}
		})
	}

	program, err := ev.PrepareString(`repeat('ab', 'x')`, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = program.Run(context.Background(), nil)
	var castErr *types.CastError
	if !errors.As(err, &castErr) {
		t.Errorf("want a *types.CastError in the chain, got %v", err)
	}
}

// ── By category ────────────────────────────────────────────────────────────

func TestByCategory(t *testing.T) {
	ev := evaluator.New(ext.WithString())
	if _, ok := ev.Lookup("title_case"); !ok {
		t.Error("WithString should register title_case")
	}
	if _, ok := ev.Lookup("median"); ok {
		t.Error("WithString should not register median")
	}

	ev = evaluator.New(ext.WithNumeric(), ext.WithArray())
	if err := ev.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSingleFunction_AsImplicitStage(t *testing.T) {
	ev := evaluator.New(evaluator.WithFunctions(extstring.TitleCase()))
	program, err := ev.PrepareString("trim | title_case", []string{"name"}, evaluator.WithImplicitColumn(types.ByName("name")))
	if err != nil {
		t.Fatalf("Prepare error: %v", err)
	}
	got, err := program.Run(context.Background(), []string{"  jane doe "})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got.String() != "Jane Doe" {
		t.Errorf("got %q, want %q", got.String(), "Jane Doe")
	}
}
