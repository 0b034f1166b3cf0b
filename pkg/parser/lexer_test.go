package parser_test

import (
	"errors"
	"testing"

	"github.com/A-Archives-and-Forks/xan/pkg/parser"
	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

type lexerTestCase struct {
	name      string
	input     string
	expected  []parser.Token
	expectErr types.ErrorCode
}

func runLexerTests(t *testing.T, tests []lexerTestCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lexer := parser.NewLexer(tt.input)

			var got []parser.Token
			for {
				tok := lexer.Next()
				if tok.Type == parser.TokenEOF {
					break
				}
				if tok.Type == parser.TokenError {
					if tt.expectErr == "" {
						t.Fatalf("unexpected lexer error: %v", lexer.Error())
					}
					var perr *types.Error
					if !errors.As(lexer.Error(), &perr) {
						t.Fatalf("expected *types.Error, got %T", lexer.Error())
					}
					if perr.Code != tt.expectErr {
						t.Errorf("expected error code %s, got %s", tt.expectErr, perr.Code)
					}
					return
				}
				got = append(got, tok)
			}

			if tt.expectErr != "" {
				t.Fatalf("expected error %s, got tokens %v", tt.expectErr, got)
			}

			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d tokens, got %d: %v", len(tt.expected), len(got), got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d: expected %+v, got %+v", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestLexerWhitespace(t *testing.T) {
	runLexerTests(t, []lexerTestCase{
		{
			name:     "leading whitespace",
			input:    "   abc",
			expected: []parser.Token{{Type: parser.TokenName, Value: "abc", Position: 3}},
		},
		{
			name:     "mixed whitespace",
			input:    " \t\n\r\vabc  ",
			expected: []parser.Token{{Type: parser.TokenName, Value: "abc", Position: 5}},
		},
	})
}

func TestLexerLiterals(t *testing.T) {
	runLexerTests(t, []lexerTestCase{
		{
			name:     "double quoted string",
			input:    `"hello"`,
			expected: []parser.Token{{Type: parser.TokenString, Value: "hello", Position: 1}},
		},
		{
			name:     "single quoted string keeps escapes",
			input:    `'it\'s'`,
			expected: []parser.Token{{Type: parser.TokenString, Value: `it\'s`, Position: 1}},
		},
		{
			name:     "integer",
			input:    "42",
			expected: []parser.Token{{Type: parser.TokenNumber, Value: "42", Position: 0}},
		},
		{
			name:     "negative float",
			input:    "-3.5e2",
			expected: []parser.Token{{Type: parser.TokenNumber, Value: "-3.5e2", Position: 0}},
		},
		{
			name:     "boolean",
			input:    "true",
			expected: []parser.Token{{Type: parser.TokenBoolean, Value: "true", Position: 0}},
		},
		{
			name:     "escaped name",
			input:    "`first name`",
			expected: []parser.Token{{Type: parser.TokenNameEsc, Value: "first name", Position: 1}},
		},
		{
			name:     "regex with flags",
			input:    "/ab+/i",
			expected: []parser.Token{{Type: parser.TokenRegex, Value: "(?i)ab+", Position: 1}},
		},
	})
}

func TestLexerCall(t *testing.T) {
	runLexerTests(t, []lexerTestCase{
		{
			name:  "call with pipe",
			input: "add(a, 1) | inc",
			expected: []parser.Token{
				{Type: parser.TokenName, Value: "add", Position: 0},
				{Type: parser.TokenParenOpen, Value: "(", Position: 3},
				{Type: parser.TokenName, Value: "a", Position: 4},
				{Type: parser.TokenComma, Value: ",", Position: 5},
				{Type: parser.TokenNumber, Value: "1", Position: 7},
				{Type: parser.TokenParenClose, Value: ")", Position: 8},
				{Type: parser.TokenPipe, Value: "|", Position: 10},
				{Type: parser.TokenName, Value: "inc", Position: 12},
			},
		},
	})
}

func TestLexerErrors(t *testing.T) {
	runLexerTests(t, []lexerTestCase{
		{name: "unterminated string", input: `"abc`, expectErr: types.ErrStringNotClosed},
		{name: "unterminated regex", input: `/abc`, expectErr: types.ErrRegexNotClosed},
		{name: "empty regex", input: `//`, expectErr: types.ErrEmptyRegex},
		{name: "dangling decimal point", input: `1.`, expectErr: types.ErrSyntaxError},
		{name: "number glued to name", input: `12ab`, expectErr: types.ErrSyntaxError},
		{name: "lone minus", input: `- 1`, expectErr: types.ErrSyntaxError},
		{name: "unknown character", input: `a + b`, expectErr: types.ErrSyntaxError},
	})
}
