package types

import (
	"regexp"
	"strings"
	"unicode"
)

// NodeType identifies the type of an AST node.
type NodeType string

// AST node types.
const (
	// Literals
	NodeString  NodeType = "string"
	NodeInteger NodeType = "integer"
	NodeFloat   NodeType = "float"
	NodeBoolean NodeType = "boolean"
	NodeRegex   NodeType = "regex" // /pattern/flags

	// References
	NodeIdentifier NodeType = "identifier" // column name, or bare function name
	NodeImplicit   NodeType = "implicit"   // _

	// Calls
	NodeCall     NodeType = "call"     // name(arg, ...)
	NodePipeline NodeType = "pipeline" // a | b | c
)

// ASTNode represents a node in the Abstract Syntax Tree.
//
// The parser only records shape: identifiers are not yet known to be columns
// or functions, and call names are not checked against any registry. Both
// happen when the tree is prepared against a header.
type ASTNode struct {
	Type     NodeType
	Position int

	// Name is the identifier or the called function name.
	Name string

	StrValue  string         // NodeString
	IntValue  int64          // NodeInteger
	NumValue  float64        // NodeFloat
	BoolValue bool           // NodeBoolean
	Regex     *regexp.Regexp // NodeRegex, compiled by the parser

	// Arguments holds call arguments, or pipeline stages in order.
	Arguments []*ASTNode
}

// NewASTNode creates a new AST node of the specified type.
// Prefer NodeArena.Alloc when parsing to reduce per-node heap allocations.
func NewASTNode(nodeType NodeType, position int) *ASTNode {
	return &ASTNode{
		Type:     nodeType,
		Position: position,
	}
}

// IsLiteral reports whether the node is a literal.
func (n *ASTNode) IsLiteral() bool {
	switch n.Type {
	case NodeString, NodeInteger, NodeFloat, NodeBoolean, NodeRegex:
		return true
	default:
		return false
	}
}

// LiteralValue returns the Value of a literal node, or false for any other node.
func (n *ASTNode) LiteralValue() (Value, bool) {
	switch n.Type {
	case NodeString:
		return NewString(n.StrValue), true
	case NodeInteger:
		return NewInteger(n.IntValue), true
	case NodeFloat:
		return NewFloat(n.NumValue), true
	case NodeBoolean:
		return NewBoolean(n.BoolValue), true
	case NodeRegex:
		return NewRegex(n.Regex), true
	default:
		return None, false
	}
}

func (n *ASTNode) literalUint() (int, bool) {
	switch n.Type {
	case NodeInteger:
		if n.IntValue < 0 {
			return 0, false
		}
		return int(n.IntValue), true
	case NodeFloat:
		i, ok := DowngradeFloat(n.NumValue)
		if !ok || i < 0 {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// String returns a compact textual rendering of the node, close to the
// source syntax. Useful in tests and debug logs.
func (n *ASTNode) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *ASTNode) write(sb *strings.Builder) {
	switch n.Type {
	case NodeCall:
		sb.WriteString(n.Name)
		sb.WriteByte('(')
		for i, arg := range n.Arguments {
			if i > 0 {
				sb.WriteString(", ")
			}
			arg.write(sb)
		}
		sb.WriteByte(')')
	case NodePipeline:
		for i, stage := range n.Arguments {
			if i > 0 {
				sb.WriteString(" | ")
			}
			stage.write(sb)
		}
	case NodeIdentifier:
		if isPlainName(n.Name) {
			sb.WriteString(n.Name)
		} else {
			sb.WriteByte('`')
			sb.WriteString(n.Name)
			sb.WriteByte('`')
		}
	case NodeImplicit:
		sb.WriteByte('_')
	case NodeString:
		sb.WriteString(quote(n.StrValue))
	case NodeRegex:
		sb.WriteByte('/')
		sb.WriteString(n.Regex.String())
		sb.WriteByte('/')
	default:
		v, _ := n.LiteralValue()
		s, _ := v.AsString()
		sb.WriteString(s)
	}
}

func isPlainName(s string) bool {
	if s == "" || s == "true" || s == "false" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`).Replace(s) + `"`
}

// arenaChunkSize is the number of ASTNode values pre-allocated per arena chunk.
const arenaChunkSize = 32

// NodeArena is a bump-pointer allocator for ASTNode values.
//
// The arena MUST stay alive as long as any pointer returned by Alloc is
// reachable; nodes point into its chunks, so this holds as long as the
// Expression is alive.
//
// NodeArena is NOT thread-safe. Each Parser owns its own arena.
type NodeArena struct {
	chunks [][]ASTNode
	pos    int
}

// NewNodeArena allocates an arena pre-warmed with one initial chunk.
func NewNodeArena() *NodeArena {
	return &NodeArena{
		chunks: [][]ASTNode{make([]ASTNode, arenaChunkSize)},
	}
}

// Alloc returns a pointer to a zero-valued ASTNode inside the arena,
// with Type and Position set.
func (a *NodeArena) Alloc(nodeType NodeType, position int) *ASTNode {
	if a.pos >= arenaChunkSize {
		a.chunks = append(a.chunks, make([]ASTNode, arenaChunkSize))
		a.pos = 0
	}
	n := &a.chunks[len(a.chunks)-1][a.pos]
	a.pos++
	n.Type = nodeType
	n.Position = position
	return n
}
