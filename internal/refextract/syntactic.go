// Component G: the syntactic visitor. Walks the same statement list
// component D does, but emits references purely from AST shape — static
// import/export-from, and the webpack-runtime recognition pattern — never
// consulting the linker. Runs independently of D (SPEC §4.D: "must not
// depend on G's output" — the inverse holds too, by construction).
package refextract

import (
	"context"

	"github.com/jsbundle/refscan/internal/collab"
	"github.com/jsbundle/refscan/internal/jsast"
)

// webpackRuntime remembers, for the remainder of the module, which
// binding holds the result of `require("runtime-specifier")` assigned to
// __webpack_require__, and the resolved handle the bundler's resolver
// returned for it — SPEC §4.G.
type webpackRuntime struct {
	ref    jsast.Ref
	handle string
}

func syntacticVisit(ctx context.Context, stmts []jsast.Stmt, source collab.Source, resolver collab.Resolver, paths collab.PathProvider) []AssetReference {
	v := &syntacticVisitor{
		source:   source.PrettyPath,
		dir:      paths.SourceDir(source),
		resolver: resolver,
		ctx:      ctx,
	}
	for _, stmt := range stmts {
		v.stmt(stmt)
	}
	return v.refs
}

type syntacticVisitor struct {
	source   string
	dir      string
	resolver collab.Resolver
	ctx      context.Context
	refs     []AssetReference
	runtime  *webpackRuntime
}

func (v *syntacticVisitor) stmt(s jsast.Stmt) {
	switch stmt := s.Data.(type) {
	case *jsast.SImport:
		v.refs = append(v.refs, esm(v.source, stmt.Specifier))

	case *jsast.SExportFrom:
		v.refs = append(v.refs, esm(v.source, stmt.Specifier))

	case *jsast.SExportStar:
		v.refs = append(v.refs, esm(v.source, stmt.Specifier))

	case *jsast.SLocal:
		for _, decl := range stmt.Decls {
			v.declarator(decl)
		}

	case *jsast.SExpr:
		v.maybeWebpackCall(stmt.Value)
	}
}

// declarator recognizes `var __webpack_require__ = require("./rt.js")`.
func (v *syntacticVisitor) declarator(decl jsast.Decl) {
	if decl.Name != "__webpack_require__" || decl.Value == nil {
		return
	}
	call, ok := decl.Value.Data.(*jsast.ECall)
	if !ok || len(call.Args) != 1 {
		return
	}
	ident, ok := call.Target.Data.(*jsast.EIdentifier)
	if !ok || ident.Name != "require" {
		return
	}
	str, ok := call.Args[0].Data.(*jsast.EString)
	if !ok {
		return
	}
	specifier := str.UTF8()
	v.refs = append(v.refs, webpackRuntimeCandidate(v.source, specifier))

	// Resolver failure is treated as "not a bundler runtime" only for the
	// *handle* — the reference itself is recorded regardless (SPEC §7
	// class 3). The request string is a serviceable handle fallback so
	// later __webpack_require__.C/.X calls in this module still group
	// under something, even if the resolver never resolves it.
	handle := specifier
	if v.resolver != nil {
		if result, err := v.resolver.Resolve(v.ctx, v.dir, specifier); err == nil && result.Status == collab.ResolveSingle {
			handle = result.Asset
		}
	}
	v.runtime = &webpackRuntime{ref: decl.BindingRef, handle: handle}
}

// maybeWebpackCall recognizes `__webpack_require__.C(...)` and
// `__webpack_require__.X(_, [ids...], _)`.
func (v *syntacticVisitor) maybeWebpackCall(e jsast.Expr) {
	call, ok := e.Data.(*jsast.ECall)
	if !ok || v.runtime == nil {
		return
	}
	dot, ok := call.Target.Data.(*jsast.EDot)
	if !ok {
		return
	}
	ident, ok := dot.Target.Data.(*jsast.EIdentifier)
	if !ok || ident.Ref != v.runtime.ref {
		return
	}

	switch dot.Name {
	case "C":
		v.refs = append(v.refs, webpackEntry(v.source, v.runtime.handle))

	case "X":
		if len(call.Args) < 2 {
			return
		}
		arr, ok := call.Args[1].Data.(*jsast.EArray)
		if !ok {
			return
		}
		for _, item := range arr.Items {
			if str, ok := item.Data.(*jsast.EString); ok {
				v.refs = append(v.refs, webpackChunk(v.runtime.handle, str.UTF8()))
			}
		}
	}
}
