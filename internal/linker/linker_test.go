package linker_test

import (
	"testing"

	"github.com/jsbundle/refscan/internal/config"
	"github.com/jsbundle/refscan/internal/jsast"
	"github.com/jsbundle/refscan/internal/jsvalue"
	"github.com/jsbundle/refscan/internal/linker"
	"github.com/jsbundle/refscan/internal/test"
	"github.com/jsbundle/refscan/internal/wellknown"
)

func newLinker(bindings linker.Bindings) *linker.Linker {
	return linker.New(bindings, linker.NewLinkCache(), wellknown.SourceDir{Dirname: "/proj"}, config.Options{})
}

func TestLinkSubstitutesVariable(t *testing.T) {
	ref := jsast.Ref{SourceIndex: 0, InnerIndex: 1}
	l := newLinker(linker.Bindings{ref: &jsvalue.Module{Name: "fs"}})

	result := l.Link(&jsvalue.Variable{Ref: ref, Name: "fs"})
	obj, ok := result.(*jsvalue.WellKnownObject)
	if !ok || obj.Kind != jsvalue.WellKnownObjectFsModule {
		t.Fatalf("expected WellKnownObject(FsModule), got %v", result)
	}
}

func TestLinkChainsModuleThroughMemberAccessToFunction(t *testing.T) {
	ref := jsast.Ref{SourceIndex: 0, InnerIndex: 1}
	l := newLinker(linker.Bindings{ref: &jsvalue.Module{Name: "fs"}})

	call := &jsvalue.MemberAccess{
		Object:   &jsvalue.Variable{Ref: ref, Name: "fs"},
		Property: jsvalue.Str("readFileSync"),
	}
	result := l.Link(call)
	fn, ok := result.(*jsvalue.WellKnownFunction)
	if !ok || fn.Kind != jsvalue.WellKnownFunctionFsReadMethod || fn.FsMethodName != "readFileSync" {
		t.Fatalf("expected WellKnownFunction(FsReadMethod(readFileSync)), got %v", result)
	}
}

func TestLinkDetectsSelfReferentialVariableCycle(t *testing.T) {
	ref := jsast.Ref{SourceIndex: 0, InnerIndex: 1}
	bindings := linker.Bindings{}
	bindings[ref] = &jsvalue.Variable{Ref: ref, Name: "a"}
	l := newLinker(bindings)

	result := l.Link(&jsvalue.Variable{Ref: ref, Name: "a"})
	if _, ok := result.(*jsvalue.Unknown); !ok {
		t.Fatalf("expected Unknown for a self-referential binding, got %v", result)
	}
}

func TestLinkIsIdempotent(t *testing.T) {
	ref := jsast.Ref{SourceIndex: 0, InnerIndex: 1}
	l := newLinker(linker.Bindings{ref: &jsvalue.Module{Name: "path"}})

	v := &jsvalue.MemberAccess{Object: &jsvalue.Variable{Ref: ref, Name: "p"}, Property: jsvalue.Str("join")}
	once := l.Link(v)
	twice := l.Link(once)
	if !jsvalue.Equal(once, twice) {
		t.Fatalf("expected link(link(v)) == link(v), got %v vs %v", once, twice)
	}
}

func TestLinkNormalizesSingletonAlternatives(t *testing.T) {
	l := newLinker(linker.Bindings{})
	v := &jsvalue.Alternatives{Values: []jsvalue.Value{jsvalue.Str("a")}}
	result := l.Link(v)
	if _, ok := result.(*jsvalue.Alternatives); ok {
		t.Fatal("expected a singleton Alternatives to unwrap")
	}
	test.AssertEqual(t, result.(*jsvalue.Constant).Str, "a")
}

func TestLinkDistributesOverAlternativesAndJoins(t *testing.T) {
	l := newLinker(linker.Bindings{})
	v := &jsvalue.Alternatives{Values: []jsvalue.Value{jsvalue.Str("./d"), jsvalue.Str("./e")}}
	result := l.Link(v)
	alt, ok := result.(*jsvalue.Alternatives)
	if !ok {
		t.Fatalf("expected Alternatives, got %v", result)
	}
	test.AssertEqual(t, len(alt.Values), 2)
}

func TestLinkAddOfStringConstantsBecomesConcat(t *testing.T) {
	l := newLinker(linker.Bindings{})
	v := &jsvalue.Add{Left: jsvalue.Str("./"), Right: jsvalue.Str("d")}
	result := l.Link(v)
	concat, ok := result.(*jsvalue.Concat)
	if !ok {
		t.Fatalf("expected Concat, got %v", result)
	}
	test.AssertEqual(t, len(concat.Parts), 2)
}

func TestLinkCacheIsSharedAcrossLinkers(t *testing.T) {
	ref := jsast.Ref{SourceIndex: 0, InnerIndex: 1}
	cache := linker.NewLinkCache()
	bindings := linker.Bindings{ref: &jsvalue.Module{Name: "fs"}}

	a := linker.New(bindings, cache, wellknown.SourceDir{}, config.Options{})
	b := linker.New(bindings, cache, wellknown.SourceDir{}, config.Options{})

	va := a.Link(&jsvalue.Variable{Ref: ref, Name: "fs"})
	vb := b.Link(&jsvalue.Variable{Ref: ref, Name: "fs"})
	if !jsvalue.Equal(va, vb) {
		t.Fatal("expected both linkers to resolve the shared binding identically")
	}
}
