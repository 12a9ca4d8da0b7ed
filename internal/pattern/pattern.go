// Package pattern projects a jsvalue.Value down to the narrow set of shapes
// an asset reference can actually be resolved against: one literal string, a
// finite set of literal strings, or "not statically analysable". It never
// stores anything — a Pattern is derived on demand and discarded.
package pattern

import "github.com/jsbundle/refscan/internal/jsvalue"

type Kind uint8

const (
	Dynamic Kind = iota
	Literal
	Alternatives
)

type Pattern struct {
	Kind Kind

	// Valid when Kind == Literal.
	Value string

	// Valid when Kind == Alternatives. Always non-empty and de-duplicated.
	Values []string
}

// Extract returns the Pattern a Value reduces to, or (Pattern{}, false) if
// the value isn't a finite set of string literals.
func Extract(v jsvalue.Value) (Pattern, bool) {
	if lit, ok := extractLiteral(v); ok {
		return Pattern{Kind: Literal, Value: lit}, true
	}
	if alt, ok := v.(*jsvalue.Alternatives); ok {
		seen := make(map[string]bool, len(alt.Values))
		var out []string
		for _, branch := range alt.Values {
			lit, ok := extractLiteral(branch)
			if !ok {
				return Pattern{}, false
			}
			if !seen[lit] {
				seen[lit] = true
				out = append(out, lit)
			}
		}
		if len(out) == 0 {
			return Pattern{}, false
		}
		if len(out) == 1 {
			return Pattern{Kind: Literal, Value: out[0]}, true
		}
		return Pattern{Kind: Alternatives, Values: jsvalue.SortedStrings(out)}, true
	}
	return Pattern{}, false
}

// extractLiteral handles the non-Alternatives cases: a bare string Constant,
// or a Concat/Add tree whose every leaf is a string Constant.
func extractLiteral(v jsvalue.Value) (string, bool) {
	switch val := v.(type) {
	case *jsvalue.Constant:
		if val.Kind == jsvalue.ConstString {
			return val.Str, true
		}
		return "", false
	case *jsvalue.Concat:
		sb := ""
		for _, part := range val.Parts {
			s, ok := extractLiteral(part)
			if !ok {
				return "", false
			}
			sb += s
		}
		return sb, true
	case *jsvalue.Add:
		left, ok := extractLiteral(val.Left)
		if !ok {
			return "", false
		}
		right, ok := extractLiteral(val.Right)
		if !ok {
			return "", false
		}
		return left + right, true
	default:
		return "", false
	}
}
