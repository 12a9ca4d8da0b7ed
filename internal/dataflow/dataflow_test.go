package dataflow_test

import (
	"testing"

	"github.com/jsbundle/refscan/internal/dataflow"
	"github.com/jsbundle/refscan/internal/jsast"
	"github.com/jsbundle/refscan/internal/jsvalue"
	"github.com/jsbundle/refscan/internal/test"
)

func strExpr(s string) jsast.Expr {
	return jsast.Expr{Data: &jsast.EString{Value: toUTF16(s)}}
}

func toUTF16(s string) []uint16 {
	out := make([]uint16, 0, len(s))
	for _, r := range s {
		out = append(out, uint16(r))
	}
	return out
}

func ident(sourceIndex, innerIndex uint32, name string) jsast.Expr {
	return jsast.Expr{Data: &jsast.EIdentifier{Ref: jsast.Ref{SourceIndex: sourceIndex, InnerIndex: innerIndex}, Name: name}}
}

func TestRequireCallEmitsEffectWithFreeVarCallee(t *testing.T) {
	stmts := []jsast.Stmt{
		{Data: &jsast.SExpr{Value: jsast.Expr{Data: &jsast.ECall{
			Target: ident(0, 0, "require"),
			Args:   []jsast.Expr{strExpr("./c")},
		}}}},
	}
	result := dataflow.Build(stmts, []string{"require"})
	test.AssertEqual(t, len(result.Effects), 1)

	fv, ok := result.Effects[0].Func.(*jsvalue.FreeVar)
	if !ok || fv.Kind != jsvalue.FreeVarRequire {
		t.Fatalf("expected FreeVar(Require) callee, got %v", result.Effects[0].Func)
	}
	test.AssertEqual(t, len(result.Effects[0].Args), 1)
}

func TestBinaryAddProducesAddValue(t *testing.T) {
	decl := jsast.Decl{
		BindingRef: jsast.Ref{SourceIndex: 0, InnerIndex: 1},
		Name:       "p",
		Value: &jsast.Expr{Data: &jsast.EBinary{
			Op:    jsast.BinOpAdd,
			Left:  strExpr("./"),
			Right: strExpr("d"),
		}},
	}
	stmts := []jsast.Stmt{{Data: &jsast.SLocal{Decls: []jsast.Decl{decl}}}}
	result := dataflow.Build(stmts, nil)

	v := result.Bindings[decl.BindingRef]
	if _, ok := v.(*jsvalue.Add); !ok {
		t.Fatalf("expected *jsvalue.Add, got %v", v)
	}
}

func TestTernaryProducesAlternativesAtReadTime(t *testing.T) {
	decl := jsast.Decl{
		BindingRef: jsast.Ref{SourceIndex: 0, InnerIndex: 1},
		Name:       "p",
		Value: &jsast.Expr{Data: &jsast.EIf{
			Test: ident(0, 2, "cond"),
			Yes:  strExpr("d"),
			No:   strExpr("e"),
		}},
	}
	stmts := []jsast.Stmt{{Data: &jsast.SLocal{Decls: []jsast.Decl{decl}}}}
	result := dataflow.Build(stmts, nil)

	alt, ok := result.Bindings[decl.BindingRef].(*jsvalue.Alternatives)
	if !ok {
		t.Fatalf("expected *jsvalue.Alternatives, got %v", result.Bindings[decl.BindingRef])
	}
	test.AssertEqual(t, len(alt.Values), 2)
}

func TestFunctionParameterStaysUnboundVariable(t *testing.T) {
	paramRef := jsast.Ref{SourceIndex: 0, InnerIndex: 5}
	// The dataflow walk never sees a function's parameter list in this
	// trimmed AST; a parameter that's never otherwise declared resolves to
	// Unknown only once referenced from an expression the walk does see.
	stmts := []jsast.Stmt{
		{Data: &jsast.SExpr{Value: jsast.Expr{Data: &jsast.ECall{
			Target: ident(0, 0, "require"),
			Args:   []jsast.Expr{{Data: &jsast.EIdentifier{Ref: paramRef, Name: "variable"}}},
		}}}},
	}
	result := dataflow.Build(stmts, []string{"require"})
	arg := result.Effects[0].Args[0]
	if _, ok := arg.(*jsvalue.Variable); !ok {
		t.Fatalf("expected an unresolved Variable reference for the untracked parameter, got %v", arg)
	}
	// Left unbound in the binding map: the linker resolves an absent
	// binding to Unknown (internal/linker).
	if _, ok := result.Bindings[paramRef]; ok {
		t.Fatal("expected no binding recorded for a parameter the walk never declares")
	}
}

func TestMemberCallCollapsesIntoCallWithThis(t *testing.T) {
	fsRef := jsast.Ref{SourceIndex: 0, InnerIndex: 1}
	stmts := []jsast.Stmt{
		{Data: &jsast.SLocal{Decls: []jsast.Decl{{
			BindingRef: fsRef,
			Name:       "fs",
			Value:      &jsast.Expr{Data: &jsast.EIdentifier{Ref: jsast.Ref{SourceIndex: 0, InnerIndex: 0}, Name: "require"}},
		}}}},
		{Data: &jsast.SExpr{Value: jsast.Expr{Data: &jsast.ECall{
			Target: jsast.Expr{Data: &jsast.EDot{Target: ident(0, 1, "fs"), Name: "readFile"}},
			Args:   []jsast.Expr{strExpr("./f.txt")},
		}}}},
	}
	result := dataflow.Build(stmts, []string{"require"})

	effect := result.Effects[0]
	member, ok := effect.Func.(*jsvalue.MemberAccess)
	if !ok {
		t.Fatalf("expected MemberAccess callee, got %v", effect.Func)
	}
	if _, ok := member.Property.(*jsvalue.Constant); !ok {
		t.Fatal("expected a static property name")
	}
	if _, ok := effect.This.(*jsvalue.Variable); !ok {
		t.Fatalf("expected `this` bound to the object, got %v", effect.This)
	}
}
