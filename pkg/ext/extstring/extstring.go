// Package extstring provides extended string functions for xan expressions.
// Register them with evaluator.WithFunctions or the top-level
// ext.WithString helper.
package extstring

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/A-Archives-and-Forks/xan/pkg/ext/extutil"
	"github.com/A-Archives-and-Forks/xan/pkg/functions"
	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// All returns all extended string function definitions.
func All() []functions.CustomFunctionDef {
	return []functions.CustomFunctionDef{
		IndexOf(),
		LastIndexOf(),
		Capitalize(),
		TitleCase(),
		CamelCase(),
		SnakeCase(),
		KebabCase(),
		Repeat(),
		Words(),
		PadStart(),
		PadEnd(),
	}
}

// IndexOf returns the definition for index_of(string, substring, start?).
// The result is a character offset, or -1 when substring is not found.
func IndexOf() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "index_of",
		MinArgs:     2,
		MaxArgs:     3,
		Help:        "index_of(string, substring, start?) -> integer",
		Description: "Return the character offset of the first occurrence of substring, or -1.",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			str, err := extutil.String(args, 0)
			if err != nil {
				return types.None, err
			}
			search, err := extutil.String(args, 1)
			if err != nil {
				return types.None, err
			}

			runes := []rune(str)
			start := 0
			if extutil.Optional(args, 2) {
				if start, err = extutil.Uint(args, 2); err != nil {
					return types.None, err
				}
			}
			if start > len(runes) {
				return types.NewInteger(-1), nil
			}

			idx := strings.Index(string(runes[start:]), search)
			if idx < 0 {
				return types.NewInteger(-1), nil
			}
			return types.NewInteger(int64(start + utf8.RuneCountInString(string(runes[start:])[:idx]))), nil
		},
	}
}

// LastIndexOf returns the definition for last_index_of(string, substring).
func LastIndexOf() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "last_index_of",
		MinArgs:     2,
		MaxArgs:     2,
		Help:        "last_index_of(string, substring) -> integer",
		Description: "Return the character offset of the last occurrence of substring, or -1.",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			str, err := extutil.String(args, 0)
			if err != nil {
				return types.None, err
			}
			search, err := extutil.String(args, 1)
			if err != nil {
				return types.None, err
			}
			idx := strings.LastIndex(str, search)
			if idx < 0 {
				return types.NewInteger(-1), nil
			}
			return types.NewInteger(int64(utf8.RuneCountInString(str[:idx]))), nil
		},
	}
}

// Capitalize returns the definition for capitalize(string).
// Uppercases the first character, lowercases the rest.
func Capitalize() functions.CustomFunctionDef {
	return unary("capitalize", "Uppercase the first character and lowercase the rest.", func(str string) string {
		if str == "" {
			return str
		}
		lower := cases.Lower(language.Und).String(str)
		first, size := utf8.DecodeRuneInString(lower)
		return cases.Upper(language.Und).String(string(first)) + lower[size:]
	})
}

// TitleCase returns the definition for title_case(string).
func TitleCase() functions.CustomFunctionDef {
	return unary("title_case", "Uppercase the first character of every word.", func(str string) string {
		// a Caser keeps state between calls and cannot be shared across goroutines
		return cases.Title(language.Und).String(str)
	})
}

var splitWordsRe = regexp.MustCompile(`[_\-\s]+|([a-z0-9])([A-Z])`)

// splitIntoWords splits on camelCase boundaries, underscores, dashes and spaces.
func splitIntoWords(str string) []string {
	expanded := splitWordsRe.ReplaceAllString(str, "$1 $2")
	return strings.Fields(expanded)
}

// CamelCase returns the definition for camel_case(string).
func CamelCase() functions.CustomFunctionDef {
	return unary("camel_case", "Convert to camelCase.", func(str string) string {
		words := splitIntoWords(str)
		if len(words) == 0 {
			return ""
		}
		title := cases.Title(language.Und)
		var b strings.Builder
		b.WriteString(strings.ToLower(words[0]))
		for _, w := range words[1:] {
			b.WriteString(title.String(w))
		}
		return b.String()
	})
}

// SnakeCase returns the definition for snake_case(string).
func SnakeCase() functions.CustomFunctionDef {
	return unary("snake_case", "Convert to snake_case.", func(str string) string {
		return joinLower(splitIntoWords(str), "_")
	})
}

// KebabCase returns the definition for kebab_case(string).
func KebabCase() functions.CustomFunctionDef {
	return unary("kebab_case", "Convert to kebab-case.", func(str string) string {
		return joinLower(splitIntoWords(str), "-")
	})
}

func joinLower(words []string, sep string) string {
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, sep)
}

// Repeat returns the definition for repeat(string, n).
func Repeat() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "repeat",
		MinArgs:     2,
		MaxArgs:     2,
		Help:        "repeat(string, n) -> string",
		Description: "Repeat string n times.",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			str, err := extutil.String(args, 0)
			if err != nil {
				return types.None, err
			}
			n, err := extutil.Uint(args, 1)
			if err != nil {
				return types.None, err
			}
			return types.NewString(strings.Repeat(str, n)), nil
		},
	}
}

// Words returns the definition for words(string).
// Splits on whitespace, dropping empty parts.
func Words() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "words",
		MinArgs:     1,
		MaxArgs:     1,
		Help:        "words(string) -> list",
		Description: "Split string on whitespace.",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			str, err := extutil.String(args, 0)
			if err != nil {
				return types.None, err
			}
			return extutil.StringList(strings.Fields(str)), nil
		},
	}
}

// PadStart returns the definition for pad_start(string, width, char?).
func PadStart() functions.CustomFunctionDef {
	return pad("pad_start", "Left pad string to width characters.", true)
}

// PadEnd returns the definition for pad_end(string, width, char?).
func PadEnd() functions.CustomFunctionDef {
	return pad("pad_end", "Right pad string to width characters.", false)
}

func pad(name, description string, left bool) functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        name,
		MinArgs:     2,
		MaxArgs:     3,
		Help:        name + "(string, width, char?) -> string",
		Description: description,
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			str, err := extutil.String(args, 0)
			if err != nil {
				return types.None, err
			}
			width, err := extutil.Uint(args, 1)
			if err != nil {
				return types.None, err
			}
			fill := " "
			if extutil.Optional(args, 2) {
				if fill, err = extutil.String(args, 2); err != nil {
					return types.None, err
				}
				if fill == "" {
					fill = " "
				}
			}

			missing := width - utf8.RuneCountInString(str)
			if missing <= 0 {
				return args[0], nil
			}
			padding := []rune(strings.Repeat(fill, missing))[:missing]
			if left {
				return types.NewString(string(padding) + str), nil
			}
			return types.NewString(str + string(padding)), nil
		},
	}
}

func unary(name, description string, fn func(string) string) functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        name,
		MinArgs:     1,
		MaxArgs:     1,
		Help:        name + "(string) -> string",
		Description: description,
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			str, err := extutil.String(args, 0)
			if err != nil {
				return types.None, err
			}
			return types.NewString(fn(str)), nil
		},
	}
}
