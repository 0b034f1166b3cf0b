package parser

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenString  // "hello" or 'hello'
	TokenNumber  // 123, -4, 3.14, 1e-10
	TokenBoolean // true, false
	TokenName    // column_name, fn
	TokenNameEsc // `column name with spaces`
	TokenRegex   // /pattern/flags

	// Grouping symbols
	TokenParenOpen  // (
	TokenParenClose // )

	// Basic symbols
	TokenComma // ,
	TokenPipe  // |
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(eof)"
	case TokenError:
		return "(error)"
	case TokenString:
		return "(string)"
	case TokenNumber:
		return "(number)"
	case TokenBoolean:
		return "(boolean)"
	case TokenName, TokenNameEsc:
		return "(name)"
	case TokenRegex:
		return "(regex)"
	case TokenParenOpen:
		return "("
	case TokenParenClose:
		return ")"
	case TokenComma:
		return ","
	case TokenPipe:
		return "|"
	default:
		return "(unknown)"
	}
}

// Token represents a lexical token in an expression.
type Token struct {
	Type     TokenType // Type of the token
	Value    string    // Literal value of the token
	Position int       // Starting position in the input string
}

// lookupSymbol returns the token type for a single-character symbol.
// Returns 0 if the rune is not a symbol.
func lookupSymbol(r rune) TokenType {
	switch r {
	case '(':
		return TokenParenOpen
	case ')':
		return TokenParenClose
	case ',':
		return TokenComma
	case '|':
		return TokenPipe
	default:
		return 0
	}
}

// lookupKeyword returns the token type for a keyword.
// Returns 0 if the string is not a recognized keyword.
func lookupKeyword(s string) TokenType {
	switch s {
	case "true", "false":
		return TokenBoolean
	default:
		return 0
	}
}
