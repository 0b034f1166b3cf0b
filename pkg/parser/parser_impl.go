package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// Parser implements a recursive descent parser for expressions.
type Parser struct {
	lexer   *Lexer
	arena   *types.NodeArena
	current Token
	prev    Token
	depth   int
	opts    CompileOptions
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...CompileOption) *Parser {
	options := CompileOptions{
		MaxDepth: 100,
	}
	for _, opt := range opts {
		opt(&options)
	}

	p := &Parser{
		lexer: NewLexer(input),
		arena: types.NewNodeArena(),
		opts:  options,
	}

	// Read the first token
	p.advance()

	return p
}

// Parse parses the entire expression and returns it.
func (p *Parser) Parse() (*types.Expression, error) {
	if p.current.Type == TokenError {
		return nil, p.lexer.Error()
	}

	if p.current.Type == TokenEOF {
		return nil, p.error(types.ErrSyntaxError, "Empty expression")
	}

	node, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}

	if p.current.Type != TokenEOF {
		return nil, p.unexpected()
	}

	return types.NewExpressionWithArena(node, p.lexer.input, p.arena), nil
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.prev = p.current
	p.current = p.lexer.Next()
}

// expect checks if the current token matches the expected type and advances.
func (p *Parser) expect(tt TokenType) error {
	if p.current.Type == TokenError {
		return p.lexer.Error()
	}
	if p.current.Type != tt {
		if p.current.Type == TokenEOF {
			return p.error(types.ErrUnexpectedEnd, fmt.Sprintf("Expected %s but reached end of expression", tt.String()))
		}
		return p.error(types.ErrExpectedToken, fmt.Sprintf("Expected %s but got %s", tt.String(), p.current.Type.String()))
	}
	p.advance()
	return nil
}

// error creates a parser error at the current token.
func (p *Parser) error(code types.ErrorCode, message string) error {
	return &types.Error{
		Code:     code,
		Message:  message,
		Position: p.current.Position,
		Token:    p.current.Value,
	}
}

func (p *Parser) unexpected() error {
	switch p.current.Type {
	case TokenError:
		return p.lexer.Error()
	case TokenEOF:
		return p.error(types.ErrUnexpectedEnd, "Unexpected end of expression")
	default:
		return p.error(types.ErrSyntaxError, fmt.Sprintf("Unexpected token: %s", p.current.Value))
	}
}

func (p *Parser) enter() error {
	p.depth++
	if p.opts.MaxDepth > 0 && p.depth > p.opts.MaxDepth {
		return p.error(types.ErrTooDeep, fmt.Sprintf("Expression nested deeper than %d levels", p.opts.MaxDepth))
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// parsePipeline parses terms separated by "|". A single term is returned
// as is, without a pipeline node.
func (p *Parser) parsePipeline() (*types.ASTNode, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	pos := p.current.Position
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	if p.current.Type != TokenPipe {
		return first, nil
	}

	node := p.arena.Alloc(types.NodePipeline, pos)
	node.Arguments = []*types.ASTNode{first}

	for p.current.Type == TokenPipe {
		p.advance()
		stage, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		node.Arguments = append(node.Arguments, stage)
	}

	return node, nil
}

// parseTerm parses a single operand.
func (p *Parser) parseTerm() (*types.ASTNode, error) {
	token := p.current

	switch token.Type {
	case TokenString:
		return p.parseString()
	case TokenNumber:
		return p.parseNumber()
	case TokenBoolean:
		return p.parseBoolean()
	case TokenRegex:
		return p.parseRegex()
	case TokenName, TokenNameEsc:
		return p.parseName()
	case TokenParenOpen:
		return p.parseGrouping()
	default:
		return nil, p.unexpected()
	}
}

// unescapeString resolves backslash escapes of a string literal.
func unescapeString(s string) (string, error) {
	if !strings.Contains(s, "\\") {
		return s, nil // Fast path: no escapes
	}

	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			result.WriteByte(s[i])
			continue
		}

		i++ // Skip backslash
		if i >= len(s) {
			return "", fmt.Errorf("invalid escape sequence at end of string")
		}

		switch s[i] {
		case 'n':
			result.WriteByte('\n')
		case 't':
			result.WriteByte('\t')
		case 'r':
			result.WriteByte('\r')
		case '0':
			result.WriteByte(0)
		case '\\':
			result.WriteByte('\\')
		case '"':
			result.WriteByte('"')
		case '\'':
			result.WriteByte('\'')
		case '/':
			result.WriteByte('/')
		case 'u':
			if i+4 >= len(s) {
				return "", fmt.Errorf("invalid \\u escape: not enough characters")
			}
			hex := s[i+1 : i+5]
			codePoint, err := strconv.ParseUint(hex, 16, 16)
			if err != nil {
				return "", fmt.Errorf("invalid \\u escape: %s", hex)
			}
			i += 4

			r := rune(codePoint)

			// A high surrogate must be followed by \uXXXX holding the low one.
			if utf16.IsSurrogate(r) && i+6 < len(s) && s[i+1] == '\\' && s[i+2] == 'u' {
				low, err := strconv.ParseUint(s[i+3:i+7], 16, 16)
				if err == nil {
					if decoded := utf16.DecodeRune(r, rune(low)); decoded != '�' {
						result.WriteRune(decoded)
						i += 6
						continue
					}
				}
			}
			result.WriteRune(r)
		default:
			return "", fmt.Errorf("invalid escape sequence: \\%c", s[i])
		}
	}

	return result.String(), nil
}

func (p *Parser) parseString() (*types.ASTNode, error) {
	node := p.arena.Alloc(types.NodeString, p.current.Position)

	unescaped, err := unescapeString(p.current.Value)
	if err != nil {
		return nil, p.error(types.ErrUnsupportedEscape, fmt.Sprintf("Invalid string literal: %v", err))
	}

	node.StrValue = unescaped
	p.advance()
	return node, nil
}

// parseNumber produces an integer node when the literal has neither
// fractional part nor exponent, and a float node otherwise.
func (p *Parser) parseNumber() (*types.ASTNode, error) {
	text := p.current.Value

	if !strings.ContainsAny(text, ".eE") {
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, p.error(types.ErrNumberOutOfRange, fmt.Sprintf("Integer out of range: %s", text))
		}
		node := p.arena.Alloc(types.NodeInteger, p.current.Position)
		node.IntValue = i
		p.advance()
		return node, nil
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.error(types.ErrNumberOutOfRange, fmt.Sprintf("Invalid number: %s", text))
	}
	node := p.arena.Alloc(types.NodeFloat, p.current.Position)
	node.NumValue = f
	p.advance()
	return node, nil
}

func (p *Parser) parseBoolean() (*types.ASTNode, error) {
	node := p.arena.Alloc(types.NodeBoolean, p.current.Position)
	node.BoolValue = p.current.Value == "true"
	p.advance()
	return node, nil
}

// parseRegex compiles the pattern right away so that invalid regexes are
// reported as syntax errors, before any row is read.
func (p *Parser) parseRegex() (*types.ASTNode, error) {
	re, err := regexp.Compile(p.current.Value)
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRegex, fmt.Sprintf("Invalid regex: %v", err), p.current.Position).
			WithToken(p.current.Value).
			WithCause(err)
	}

	node := p.arena.Alloc(types.NodeRegex, p.current.Position)
	node.Regex = re
	p.advance()
	return node, nil
}

// parseName parses an identifier, the implicit value "_" or a call.
func (p *Parser) parseName() (*types.ASTNode, error) {
	nameToken := p.current
	p.advance()

	if nameToken.Type == TokenName && p.current.Type == TokenParenOpen {
		return p.parseCall(nameToken)
	}

	if nameToken.Type == TokenName && nameToken.Value == "_" {
		return p.arena.Alloc(types.NodeImplicit, nameToken.Position), nil
	}

	node := p.arena.Alloc(types.NodeIdentifier, nameToken.Position)
	node.Name = nameToken.Value
	return node, nil
}

func (p *Parser) parseCall(nameToken Token) (*types.ASTNode, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	p.advance() // Skip '('

	node := p.arena.Alloc(types.NodeCall, nameToken.Position)
	node.Name = nameToken.Value
	node.Arguments = []*types.ASTNode{}

	if p.current.Type != TokenParenClose {
		for {
			arg, err := p.parsePipeline()
			if err != nil {
				return nil, err
			}
			node.Arguments = append(node.Arguments, arg)

			if p.current.Type == TokenParenClose {
				break
			}

			if err := p.expect(TokenComma); err != nil {
				return nil, err
			}
		}
	}

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}

	return node, nil
}

func (p *Parser) parseGrouping() (*types.ASTNode, error) {
	p.advance() // Skip '('

	node, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}

	return node, nil
}
