// Package ext provides optional extension functions for xan expressions that
// go beyond the builtin function set.
//
// The extension functions live in sub-packages grouped by category:
//   - extstring   – index_of, capitalize, title_case, camel_case, pad_start, …
//   - extnumeric  – sign, clamp, trig functions, mean, median, percentile, …
//   - extarray    – take, skip, chunk, window, sort, set operations, range, …
//   - extdatetime – date_add, date_diff, date_part, date_start_of, …
//   - extcrypto   – uuid, hash, hmac
//
// # Integration – all extensions at once
//
//	import "github.com/A-Archives-and-Forks/xan/pkg/ext"
//
//	ev := evaluator.New(ext.WithAll())
//
// # Integration – by category
//
//	ev := evaluator.New(
//	    ext.WithString(),
//	    ext.WithArray(),
//	)
//
// # Integration – single function from a sub-package
//
//	import "github.com/A-Archives-and-Forks/xan/pkg/ext/extstring"
//
//	ev := evaluator.New(evaluator.WithFunctions(extstring.TitleCase()))
package ext

import (
	"github.com/A-Archives-and-Forks/xan/pkg/evaluator"
	"github.com/A-Archives-and-Forks/xan/pkg/ext/extarray"
	"github.com/A-Archives-and-Forks/xan/pkg/ext/extcrypto"
	"github.com/A-Archives-and-Forks/xan/pkg/ext/extdatetime"
	"github.com/A-Archives-and-Forks/xan/pkg/ext/extnumeric"
	"github.com/A-Archives-and-Forks/xan/pkg/ext/extstring"
	"github.com/A-Archives-and-Forks/xan/pkg/functions"
)

// All returns every extension function definition.
func All() []functions.CustomFunctionDef {
	var all []functions.CustomFunctionDef
	all = append(all, extstring.All()...)
	all = append(all, extnumeric.All()...)
	all = append(all, extarray.All()...)
	all = append(all, extdatetime.All()...)
	all = append(all, extcrypto.All()...)
	return all
}

// WithAll returns an EvalOption that registers all extension functions.
func WithAll() evaluator.EvalOption {
	return evaluator.WithFunctions(All()...)
}

// WithString returns an EvalOption for the extended string functions.
func WithString() evaluator.EvalOption {
	return evaluator.WithFunctions(extstring.All()...)
}

// WithNumeric returns an EvalOption for the extended numeric functions.
func WithNumeric() evaluator.EvalOption {
	return evaluator.WithFunctions(extnumeric.All()...)
}

// WithArray returns an EvalOption for the extended list functions.
func WithArray() evaluator.EvalOption {
	return evaluator.WithFunctions(extarray.All()...)
}

// WithDateTime returns an EvalOption for the date/time functions.
func WithDateTime() evaluator.EvalOption {
	return evaluator.WithFunctions(extdatetime.All()...)
}

// WithCrypto returns an EvalOption for the identifier and hashing functions.
func WithCrypto() evaluator.EvalOption {
	return evaluator.WithFunctions(extcrypto.All()...)
}
