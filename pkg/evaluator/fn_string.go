package evaluator

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// --- String Functions ---

func fnLen(_ context.Context, args *BoundArguments) (types.Value, error) {
	v, err := args.Pop1()
	if err != nil {
		return types.None, err
	}

	if v.Kind() == types.KindList {
		items, _ := v.AsList()
		return types.NewInteger(int64(len(items))), nil
	}

	s, err := v.AsString()
	if err != nil {
		return types.None, err
	}
	return types.NewInteger(int64(utf8.RuneCountInString(s))), nil
}

func unaryString(args *BoundArguments, op func(string) string) (types.Value, error) {
	s, err := args.Get1Str()
	if err != nil {
		return types.None, err
	}
	return types.NewString(op(s)), nil
}

func fnUpper(_ context.Context, args *BoundArguments) (types.Value, error) {
	return unaryString(args, strings.ToUpper)
}

func fnLower(_ context.Context, args *BoundArguments) (types.Value, error) {
	return unaryString(args, strings.ToLower)
}

// trimWith implements the trim family. Without a character set, unicode
// whitespace is stripped.
func trimWith(args *BoundArguments, withSet func(s, cutset string) string, withFunc func(s string, f func(rune) bool) string) (types.Value, error) {
	if err := args.ValidateMinMaxArity(1, 2); err != nil {
		return types.None, err
	}

	slots := args.GetN(2)
	s, err := slots[0].AsString()
	if err != nil {
		return types.None, err
	}

	if slots[1] == nil {
		return types.NewString(withFunc(s, unicode.IsSpace)), nil
	}

	cutset, err := slots[1].AsString()
	if err != nil {
		return types.None, err
	}
	return types.NewString(withSet(s, cutset)), nil
}

func fnTrim(_ context.Context, args *BoundArguments) (types.Value, error) {
	return trimWith(args, strings.Trim, strings.TrimFunc)
}

func fnLTrim(_ context.Context, args *BoundArguments) (types.Value, error) {
	return trimWith(args, strings.TrimLeft, strings.TrimLeftFunc)
}

func fnRTrim(_ context.Context, args *BoundArguments) (types.Value, error) {
	return trimWith(args, strings.TrimRight, strings.TrimRightFunc)
}

func stringList(parts []string) types.Value {
	items := make([]types.Value, len(parts))
	for i, part := range parts {
		items[i] = types.NewString(part)
	}
	return types.NewList(items)
}

func fnSplit(_ context.Context, args *BoundArguments) (types.Value, error) {
	if err := args.ValidateMinMaxArity(2, 3); err != nil {
		return types.None, err
	}

	slots := args.GetN(3)
	s, err := slots[0].AsString()
	if err != nil {
		return types.None, err
	}

	limit := -1
	if slots[2] != nil {
		max, err := slots[2].AsUint()
		if err != nil {
			return types.None, err
		}
		// max splits produce max+1 parts
		limit = max + 1
	}

	if slots[1].Kind() == types.KindRegex {
		re, _ := slots[1].AsRegex()
		return stringList(re.Split(s, limit)), nil
	}

	sep, err := slots[1].AsString()
	if err != nil {
		return types.None, err
	}
	return stringList(strings.SplitN(s, sep, limit)), nil
}

func fnJoin(_ context.Context, args *BoundArguments) (types.Value, error) {
	listValue, sepValue, err := args.Get2()
	if err != nil {
		return types.None, err
	}

	items, err := listValue.AsList()
	if err != nil {
		return types.None, err
	}
	sep, err := sepValue.AsString()
	if err != nil {
		return types.None, err
	}

	buf := acquireBuf()
	defer releaseBuf(buf)

	for i, item := range items {
		s, err := item.AsString()
		if err != nil {
			return types.None, err
		}
		if i > 0 {
			buf.WriteString(sep)
		}
		buf.WriteString(s)
	}
	return types.NewString(buf.String()), nil
}

func fnConcat(_ context.Context, args *BoundArguments) (types.Value, error) {
	if err := args.ValidateMinArity(1); err != nil {
		return types.None, err
	}

	first, _ := args.Get(0)
	if first.Kind() == types.KindList {
		var items []types.Value
		for _, v := range args.All() {
			if v.Kind() == types.KindList {
				sub, _ := v.AsList()
				items = append(items, sub...)
				continue
			}
			items = append(items, v)
		}
		return types.NewList(items), nil
	}

	buf := acquireBuf()
	defer releaseBuf(buf)

	for _, v := range args.All() {
		s, err := v.AsString()
		if err != nil {
			return types.None, err
		}
		buf.WriteString(s)
	}
	return types.NewString(buf.String()), nil
}

func fnContains(_ context.Context, args *BoundArguments) (types.Value, error) {
	haystack, pattern, err := args.Get2()
	if err != nil {
		return types.None, err
	}

	if haystack.Kind() == types.KindList {
		items, _ := haystack.AsList()
		needle, err := pattern.AsString()
		if err != nil {
			return types.None, err
		}
		for _, item := range items {
			s, err := item.AsString()
			if err == nil && s == needle {
				return types.NewBoolean(true), nil
			}
		}
		return types.NewBoolean(false), nil
	}

	s, err := haystack.AsString()
	if err != nil {
		return types.None, err
	}

	if pattern.Kind() == types.KindRegex {
		re, _ := pattern.AsRegex()
		return types.NewBoolean(re.MatchString(s)), nil
	}

	substr, err := pattern.AsString()
	if err != nil {
		return types.None, err
	}
	return types.NewBoolean(strings.Contains(s, substr)), nil
}

func fnStartsWith(_ context.Context, args *BoundArguments) (types.Value, error) {
	s, prefix, err := args.Get2Str()
	if err != nil {
		return types.None, err
	}
	return types.NewBoolean(strings.HasPrefix(s, prefix)), nil
}

func fnEndsWith(_ context.Context, args *BoundArguments) (types.Value, error) {
	s, suffix, err := args.Get2Str()
	if err != nil {
		return types.None, err
	}
	return types.NewBoolean(strings.HasSuffix(s, suffix)), nil
}

func fnReplace(_ context.Context, args *BoundArguments) (types.Value, error) {
	subject, pattern, replacement, err := args.Get3()
	if err != nil {
		return types.None, err
	}

	s, err := subject.AsString()
	if err != nil {
		return types.None, err
	}
	with, err := replacement.AsString()
	if err != nil {
		return types.None, err
	}

	if pattern.Kind() == types.KindRegex {
		re, _ := pattern.AsRegex()
		return types.NewString(re.ReplaceAllString(s, with)), nil
	}

	old, err := pattern.AsString()
	if err != nil {
		return types.None, err
	}
	return types.NewString(strings.ReplaceAll(s, old, with)), nil
}

func fnCount(_ context.Context, args *BoundArguments) (types.Value, error) {
	subject, pattern, err := args.Get2()
	if err != nil {
		return types.None, err
	}

	s, err := subject.AsString()
	if err != nil {
		return types.None, err
	}

	if pattern.Kind() == types.KindRegex {
		re, _ := pattern.AsRegex()
		return types.NewInteger(int64(len(re.FindAllStringIndex(s, -1)))), nil
	}

	substr, err := pattern.AsString()
	if err != nil {
		return types.None, err
	}
	if substr == "" {
		return types.NewInteger(0), nil
	}
	return types.NewInteger(int64(strings.Count(s, substr))), nil
}

func fnEscapeRegex(_ context.Context, args *BoundArguments) (types.Value, error) {
	return unaryString(args, regexp.QuoteMeta)
}

// fnFmt substitutes each "{}" of the template with the next argument.
// Placeholders left without argument are removed.
func fnFmt(_ context.Context, args *BoundArguments) (types.Value, error) {
	if err := args.ValidateMinArity(1); err != nil {
		return types.None, err
	}

	values := args.Values()
	template, err := values[0].AsString()
	if err != nil {
		return types.None, err
	}

	buf := acquireBuf()
	defer releaseBuf(buf)

	next := 1
	for {
		i := strings.Index(template, "{}")
		if i < 0 {
			buf.WriteString(template)
			break
		}
		buf.WriteString(template[:i])
		template = template[i+2:]

		if next < len(values) {
			s, err := values[next].AsString()
			if err != nil {
				return types.None, err
			}
			buf.WriteString(s)
			next++
		}
	}

	return types.NewString(buf.String()), nil
}
