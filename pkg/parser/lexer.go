package parser

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

const eof = -1

// Lexer converts an expression into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
	err     error  // First error encountered
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all
// subsequent calls. Since the language has no division operator, a forward
// slash always opens a regex literal.
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	if tt := lookupSymbol(ch); tt > 0 {
		return l.newToken(tt)
	}

	switch {
	case ch == '/':
		l.ignore()
		return l.scanRegex(ch)
	case ch == '"' || ch == '\'':
		l.ignore()
		return l.scanString(ch)
	case ch == '`':
		l.ignore()
		return l.scanEscapedName(ch)
	case isDigit(ch):
		l.backup()
		return l.scanNumber()
	case ch == '-':
		if isDigit(l.peek()) {
			return l.scanNumber()
		}
		return l.error(types.ErrSyntaxError, "Unexpected character '-'")
	case isNameStart(ch):
		l.backup()
		return l.scanName()
	default:
		return l.error(types.ErrSyntaxError, fmt.Sprintf("Unexpected character %q", ch))
	}
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() error {
	return l.err
}

// scanRegex reads a regular expression from the current position.
// The opening delimiter has already been consumed.
// Format: /pattern/flags where flags can be i, m, s
func (l *Lexer) scanRegex(delim rune) Token {
Loop:
	for {
		switch l.nextRune() {
		case delim:
			break Loop
		case '\\':
			// Consume escaped character
			if r := l.nextRune(); r != eof && r != '\n' {
				break
			}
			fallthrough
		case eof, '\n':
			return l.error(types.ErrRegexNotClosed, "Unterminated regex")
		}
	}

	l.backup()
	t := l.newToken(TokenRegex)
	l.acceptRune(delim)
	l.ignore()

	if t.Value == "" {
		l.err = types.NewError(types.ErrEmptyRegex, "Empty regex", t.Position)
		return Token{Type: TokenError, Position: t.Position}
	}

	// Convert trailing flags to Go inline flags, e.g. /ab+/i becomes (?i)ab+
	if l.acceptAll(isRegexFlag) {
		flags := l.newToken(TokenType(0))
		t.Value = fmt.Sprintf("(?%s)%s", flags.Value, t.Value)
	}

	return t
}

// scanString reads a string literal from the current position.
// The opening quote has already been consumed.
// Supports both single and double quotes with escape sequences.
func (l *Lexer) scanString(quote rune) Token {
Loop:
	for {
		switch l.nextRune() {
		case quote:
			break Loop
		case '\\':
			// Consume escaped character
			if r := l.nextRune(); r != eof {
				break
			}
			fallthrough
		case eof:
			return l.error(types.ErrStringNotClosed, "Unterminated string literal")
		}
	}

	l.backup()
	t := l.newToken(TokenString)
	l.acceptRune(quote)
	l.ignore()
	return t
}

// scanNumber reads a number literal from the current position. A leading
// minus sign, if any, has already been consumed.
// Format: -?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?
func (l *Lexer) scanNumber() Token {
	l.acceptAll(isDigit)

	// Decimal part
	if l.acceptRune('.') {
		if !l.acceptAll(isDigit) {
			return l.error(types.ErrSyntaxError, "Expected digits after decimal point")
		}
	}

	// Exponent part
	if l.acceptRunes2('e', 'E') {
		l.acceptRunes2('+', '-')
		if !l.acceptAll(isDigit) {
			return l.error(types.ErrSyntaxError, "Expected digits in exponent")
		}
	}

	if isNameRune(l.peek()) {
		return l.error(types.ErrSyntaxError, "Invalid number literal")
	}

	return l.newToken(TokenNumber)
}

// scanEscapedName reads an escaped name from the current position.
// The opening backtick has already been consumed.
// Format: `column name with spaces or special chars`
func (l *Lexer) scanEscapedName(quote rune) Token {
Loop:
	for {
		switch l.nextRune() {
		case quote:
			break Loop
		case eof, '\n':
			return l.error(types.ErrUnsupportedEscape, "Unterminated name")
		}
	}

	l.backup()
	t := l.newToken(TokenNameEsc)
	l.acceptRune(quote)
	l.ignore()
	return t
}

// scanName reads a name or a keyword from the current position.
// Names contain letters, digits and underscores and do not start with a digit.
func (l *Lexer) scanName() Token {
	l.acceptAll(isNameRune)

	t := l.newToken(TokenName)
	if tt := lookupKeyword(t.Value); tt > 0 {
		t.Type = tt
	}

	return t
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type:     TokenEOF,
		Position: l.current,
	}
}

func (l *Lexer) error(code types.ErrorCode, message string) Token {
	t := l.newToken(TokenError)
	l.err = &types.Error{
		Code:     code,
		Message:  message,
		Position: t.Position,
		Token:    t.Value,
	}
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.err != nil || l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) peek() rune {
	r := l.nextRune()
	l.backup()
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) acceptRunes2(r1, r2 rune) bool {
	return l.accept(func(c rune) bool {
		return c == r1 || c == r2
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(isWhitespace)
	l.ignore()
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v':
		return true
	default:
		return false
	}
}

func isRegexFlag(r rune) bool {
	switch r {
	case 'i', 'm', 's':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
