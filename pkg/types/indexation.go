package types

import (
	"fmt"
	"strconv"
)

// SelectorKind tells how a ColumnIndexation designates a column.
type SelectorKind uint8

const (
	SelectByName SelectorKind = iota
	SelectByNameAndNth
	SelectByPos
)

// ColumnIndexation designates a column of a header row: by name (first
// match), by name and zero-based occurrence among duplicates, or by position.
type ColumnIndexation struct {
	Kind SelectorKind
	Name string
	Nth  int
	Pos  int
}

// ByName selects the first header cell equal to name.
func ByName(name string) ColumnIndexation {
	return ColumnIndexation{Kind: SelectByName, Name: name}
}

// ByNameAndNth selects the nth (zero-based) header cell equal to name.
func ByNameAndNth(name string, nth int) ColumnIndexation {
	return ColumnIndexation{Kind: SelectByNameAndNth, Name: name, Nth: nth}
}

// ByPos selects the column at an absolute offset.
func ByPos(pos int) ColumnIndexation {
	return ColumnIndexation{Kind: SelectByPos, Pos: pos}
}

// ColumnIndexationFromArguments recognizes the column selector shorthand of
// call arguments: a single string literal (name), a single numeric literal
// (position) or a string literal followed by a numeric literal (name and
// occurrence). Any other shape is not a selector.
func ColumnIndexationFromArguments(args []*ASTNode) (ColumnIndexation, bool) {
	switch len(args) {
	case 1:
		first := args[0]
		switch first.Type {
		case NodeString:
			return ByName(first.StrValue), true
		case NodeInteger, NodeFloat:
			pos, ok := first.literalUint()
			if !ok {
				return ColumnIndexation{}, false
			}
			return ByPos(pos), true
		}
	case 2:
		if args[0].Type != NodeString {
			return ColumnIndexation{}, false
		}
		nth, ok := args[1].literalUint()
		if !ok {
			return ColumnIndexation{}, false
		}
		return ByNameAndNth(args[0].StrValue, nth), true
	}
	return ColumnIndexation{}, false
}

// FindColumnIndex resolves the selector against header. It returns false
// when no column matches.
func (c ColumnIndexation) FindColumnIndex(header []string) (int, bool) {
	switch c.Kind {
	case SelectByPos:
		if c.Pos < 0 || c.Pos >= len(header) {
			return 0, false
		}
		return c.Pos, true
	case SelectByName:
		for i, cell := range header {
			if cell == c.Name {
				return i, true
			}
		}
	case SelectByNameAndNth:
		remaining := c.Nth
		for i, cell := range header {
			if cell != c.Name {
				continue
			}
			if remaining == 0 {
				return i, true
			}
			remaining--
		}
	}
	return 0, false
}

// ResolveColumn finds a column named on the command line: a header cell
// first, then a zero-based position.
func ResolveColumn(header []string, s string) (int, bool) {
	if offset, ok := ByName(s).FindColumnIndex(header); ok {
		return offset, true
	}
	pos, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return ByPos(pos).FindColumnIndex(header)
}

// String describes the selector for error messages.
func (c ColumnIndexation) String() string {
	switch c.Kind {
	case SelectByPos:
		return fmt.Sprintf("at position %d", c.Pos)
	case SelectByNameAndNth:
		return fmt.Sprintf("%q (occurrence %d)", c.Name, c.Nth)
	default:
		return fmt.Sprintf("%q", c.Name)
	}
}
