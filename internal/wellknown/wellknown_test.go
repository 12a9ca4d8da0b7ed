package wellknown_test

import (
	"testing"

	"github.com/jsbundle/refscan/internal/jsvalue"
	"github.com/jsbundle/refscan/internal/test"
	"github.com/jsbundle/refscan/internal/wellknown"
)

func TestFreeVarRequireBecomesWellKnownFunction(t *testing.T) {
	v, changed := wellknown.Replace(&jsvalue.FreeVar{Kind: jsvalue.FreeVarRequire}, wellknown.SourceDir{})
	if !changed {
		t.Fatal("expected a rewrite")
	}
	fn, ok := v.(*jsvalue.WellKnownFunction)
	if !ok || fn.Kind != jsvalue.WellKnownFunctionRequire {
		t.Fatalf("expected WellKnownFunction(Require), got %v", v)
	}
}

func TestDirnameBecomesSourceDirectoryConstant(t *testing.T) {
	v, changed := wellknown.Replace(&jsvalue.FreeVar{Kind: jsvalue.FreeVarDirname}, wellknown.SourceDir{Dirname: "/proj/src"})
	if !changed {
		t.Fatal("expected a rewrite")
	}
	test.AssertEqual(t, v.(*jsvalue.Constant).Str, "/proj/src")
}

func TestFsModuleReadFileSyncBecomesFsReadMethod(t *testing.T) {
	obj := &jsvalue.WellKnownObject{Kind: jsvalue.WellKnownObjectFsModule}
	member := &jsvalue.MemberAccess{Object: obj, Property: jsvalue.Str("readFileSync")}
	v, changed := wellknown.Replace(member, wellknown.SourceDir{})
	if !changed {
		t.Fatal("expected a rewrite")
	}
	fn := v.(*jsvalue.WellKnownFunction)
	test.AssertEqual(t, fn.Kind, jsvalue.WellKnownFunctionFsReadMethod)
	test.AssertEqual(t, fn.FsMethodName, "readFileSync")
}

func TestFsModuleWriteFileDoesNotRewrite(t *testing.T) {
	obj := &jsvalue.WellKnownObject{Kind: jsvalue.WellKnownObjectFsModule}
	member := &jsvalue.MemberAccess{Object: obj, Property: jsvalue.Str("writeFile")}
	_, changed := wellknown.Replace(member, wellknown.SourceDir{})
	if changed {
		t.Fatal("fs.writeFile must not be treated as an asset reference source")
	}
}

func TestPathJoinOfLiteralsReducesToConstant(t *testing.T) {
	call := &jsvalue.Call{
		Callee: &jsvalue.WellKnownFunction{Kind: jsvalue.WellKnownFunctionPathJoin},
		Args:   []jsvalue.Value{jsvalue.Str("a"), jsvalue.Str("b.js")},
	}
	v, changed := wellknown.Replace(call, wellknown.SourceDir{})
	if !changed {
		t.Fatal("expected a rewrite")
	}
	test.AssertEqual(t, v.(*jsvalue.Constant).Str, "a/b.js")
}

func TestPathJoinWithDynamicArgDoesNotReduce(t *testing.T) {
	call := &jsvalue.Call{
		Callee: &jsvalue.WellKnownFunction{Kind: jsvalue.WellKnownFunctionPathJoin},
		Args:   []jsvalue.Value{jsvalue.Str("a"), &jsvalue.Unknown{}},
	}
	_, changed := wellknown.Replace(call, wellknown.SourceDir{})
	if changed {
		t.Fatal("path.join with a dynamic argument must not reduce")
	}
}

func TestRequireCallIsLeftForTheEffectInterpreter(t *testing.T) {
	call := &jsvalue.Call{
		Callee: &jsvalue.WellKnownFunction{Kind: jsvalue.WellKnownFunctionRequire},
		Args:   []jsvalue.Value{jsvalue.Str("./x")},
	}
	_, changed := wellknown.Replace(call, wellknown.SourceDir{})
	if changed {
		t.Fatal("require(...) calls must surface as effects, not reduce in place")
	}
}

func TestAlternativesDistributesOverBranches(t *testing.T) {
	alt := &jsvalue.Alternatives{Values: []jsvalue.Value{
		&jsvalue.Module{Name: "path"},
		&jsvalue.Module{Name: "fs"},
	}}
	v, changed := wellknown.Replace(alt, wellknown.SourceDir{})
	if !changed {
		t.Fatal("expected a rewrite")
	}
	out := v.(*jsvalue.Alternatives)
	test.AssertEqual(t, len(out.Values), 2)
	if _, ok := out.Values[0].(*jsvalue.WellKnownObject); !ok {
		t.Fatalf("expected branch 0 to be rewritten, got %v", out.Values[0])
	}
}
