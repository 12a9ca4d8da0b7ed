package pattern_test

import (
	"testing"

	"github.com/jsbundle/refscan/internal/jsvalue"
	"github.com/jsbundle/refscan/internal/pattern"
	"github.com/jsbundle/refscan/internal/test"
)

func TestLiteralString(t *testing.T) {
	p, ok := pattern.Extract(jsvalue.Str("./a.js"))
	if !ok {
		t.Fatal("expected a pattern")
	}
	test.AssertEqual(t, p.Kind, pattern.Literal)
	test.AssertEqual(t, p.Value, "./a.js")
}

func TestConcatOfLiterals(t *testing.T) {
	v := &jsvalue.Concat{Parts: []jsvalue.Value{jsvalue.Str("./dir/"), jsvalue.Str("file.js")}}
	p, ok := pattern.Extract(v)
	if !ok {
		t.Fatal("expected a pattern")
	}
	test.AssertEqual(t, p.Kind, pattern.Literal)
	test.AssertEqual(t, p.Value, "./dir/file.js")
}

func TestAddOfLiterals(t *testing.T) {
	v := &jsvalue.Add{Left: jsvalue.Str("./dir/"), Right: jsvalue.Str("file.js")}
	p, ok := pattern.Extract(v)
	if !ok {
		t.Fatal("expected a pattern")
	}
	test.AssertEqual(t, p.Value, "./dir/file.js")
}

func TestAlternativesOfLiterals(t *testing.T) {
	v := &jsvalue.Alternatives{Values: []jsvalue.Value{jsvalue.Str("a"), jsvalue.Str("b")}}
	p, ok := pattern.Extract(v)
	if !ok {
		t.Fatal("expected a pattern")
	}
	test.AssertEqual(t, p.Kind, pattern.Alternatives)
	test.AssertEqual(t, len(p.Values), 2)
}

func TestAlternativesWithOneDynamicBranchIsNotAPattern(t *testing.T) {
	v := &jsvalue.Alternatives{Values: []jsvalue.Value{jsvalue.Str("a"), &jsvalue.Unknown{}}}
	_, ok := pattern.Extract(v)
	if ok {
		t.Fatal("expected no pattern when a branch is dynamic")
	}
}

func TestUnknownIsNotAPattern(t *testing.T) {
	_, ok := pattern.Extract(&jsvalue.Unknown{})
	if ok {
		t.Fatal("expected no pattern for Unknown")
	}
}

func TestNumberConstantIsNotAPattern(t *testing.T) {
	_, ok := pattern.Extract(jsvalue.Num(3))
	if ok {
		t.Fatal("expected no pattern for a non-string constant")
	}
}
