// Package dataflow implements component D: a single pass over a module's
// statements that builds the binding map (§3) and the effect list the
// linker and effect interpreter consume. It walks the same statement list
// the syntactic visitor (internal/refextract) walks, in a pass of its own:
// the two do not share one traversal. It produces none of that visitor's
// output and depends on none of it.
package dataflow

import (
	"github.com/jsbundle/refscan/internal/jsast"
	"github.com/jsbundle/refscan/internal/jsvalue"
	"github.com/jsbundle/refscan/internal/logger"
)

// Effect is one call site the linker and effect interpreter (component F)
// will later resolve. This is the Go rendition of the `Call` effect named
// in SPEC §3; `MemberCall` is folded into this shape (This set, Func a
// MemberAccess) rather than kept as a separate effect kind, per §4.D ("a
// member expression in call position collapses into Call").
type Effect struct {
	Func Value
	This Value
	Args []Value
	Span logger.Range
}

// Value is an alias kept local to this package's exported surface so
// callers don't need to import jsvalue just to read an Effect's fields.
type Value = jsvalue.Value

// Bindings maps a binding's stable identifier to the value its declaration
// evaluated to. Assigned once per binding at build time (this package's
// job); read-only after that (the linker's job).
type Bindings map[jsast.Ref]jsvalue.Value

// KnownGlobals maps a free identifier's name to the FreeVar kind it
// represents. Names not present here, but reported by the parser as
// globals, resolve to FreeVarGlobal.
var KnownGlobals = map[string]jsvalue.FreeVarKind{
	"require":     jsvalue.FreeVarRequire,
	"__dirname":   jsvalue.FreeVarDirname,
	"__filename":  jsvalue.FreeVarFilename,
}

// Result is component D's full output.
type Result struct {
	Bindings Bindings
	Effects  []Effect
}

// Build walks stmts once, producing the binding map and effect list.
// globals is the parser-reported set of identifier names that are never
// locally declared anywhere in this module (collab.ParseResult.Globals).
func Build(stmts []jsast.Stmt, globals []string) Result {
	b := &builder{
		bindings:    make(Bindings),
		globalNames: toSet(globals),
	}
	for _, stmt := range stmts {
		b.stmt(stmt)
	}
	return Result{Bindings: b.bindings, Effects: b.effects}
}

func toSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

type builder struct {
	bindings    Bindings
	effects     []Effect
	globalNames map[string]bool
}

func (b *builder) stmt(s jsast.Stmt) {
	switch stmt := s.Data.(type) {
	case *jsast.SImport:
		b.importDecl(stmt)
	case *jsast.SExportFrom:
		// Re-exported names are bound to the source module the same way
		// import items are; the syntactic visitor (component G) emits the
		// reference.
		for _, item := range stmt.Items {
			b.bindings[item.Ref] = &jsvalue.Module{Name: stmt.Specifier}
		}
	case *jsast.SExportStar:
		// No bindings to record; component G handles the reference.
	case *jsast.SLocal:
		for _, decl := range stmt.Decls {
			if decl.Value == nil {
				b.bindings[decl.BindingRef] = &jsvalue.Unknown{Reason: "uninitialized binding"}
				continue
			}
			v := b.expr(*decl.Value)
			if existing, ok := b.bindings[decl.BindingRef]; ok {
				b.bindings[decl.BindingRef] = jsvalue.Join(existing, v)
			} else {
				b.bindings[decl.BindingRef] = v
			}
		}
	case *jsast.SExpr:
		b.expr(stmt.Value)
	}
}

func (b *builder) importDecl(stmt *jsast.SImport) {
	if stmt.NamespaceRef != nil {
		b.bindings[*stmt.NamespaceRef] = &jsvalue.Module{Name: stmt.Specifier}
	}
	if stmt.DefaultRef != nil {
		b.bindings[*stmt.DefaultRef] = &jsvalue.Module{Name: stmt.Specifier}
	}
	for _, item := range stmt.Items {
		b.bindings[item.Ref] = &jsvalue.Module{Name: stmt.Specifier}
	}
}

// expr evaluates an expression to a Value, recording any Call effects
// found along the way (including calls nested inside another call's
// arguments, per §4.D: "Nested calls inside arguments also emit their own
// effects.").
func (b *builder) expr(e jsast.Expr) jsvalue.Value {
	switch ex := e.Data.(type) {
	case *jsast.EString:
		return jsvalue.Str(ex.UTF8())
	case *jsast.ENumber:
		return jsvalue.Num(ex.Value)
	case *jsast.EBoolean:
		return jsvalue.Bool(ex.Value)
	case *jsast.ENull:
		return jsvalue.Null()
	case *jsast.EUndefined:
		return jsvalue.Undefined()
	case *jsast.ERegExp:
		return &jsvalue.Unknown{Reason: "regexp literal"}

	case *jsast.EIdentifier:
		return b.identifier(ex.Ref, ex.Name)

	case *jsast.EImportIdentifier:
		return &jsvalue.Variable{Ref: ex.Ref, Name: ex.Name}

	case *jsast.EDot:
		obj := b.expr(ex.Target)
		return &jsvalue.MemberAccess{Object: obj, Property: jsvalue.Str(ex.Name)}

	case *jsast.EIndex:
		obj := b.expr(ex.Target)
		idx := b.expr(ex.Index)
		return &jsvalue.MemberAccess{Object: obj, Property: idx}

	case *jsast.ECall:
		return b.call(ex, e.Loc)

	case *jsast.EImportCall:
		arg := b.expr(ex.Arg)
		b.effects = append(b.effects, Effect{
			Func: &jsvalue.WellKnownFunction{Kind: jsvalue.WellKnownFunctionImport},
			This: &jsvalue.Unknown{},
			Args: []jsvalue.Value{arg},
			Span: logger.Range{Loc: e.Loc},
		})
		return &jsvalue.Unknown{Reason: "import() result"}

	case *jsast.EBinary:
		left := b.expr(ex.Left)
		right := b.expr(ex.Right)
		if ex.Op == jsast.BinOpAdd {
			return &jsvalue.Add{Left: left, Right: right}
		}
		return &jsvalue.Unknown{Reason: "unsupported binary operator"}

	case *jsast.EIf:
		// The conditional's value is itself an Alternatives node, built at
		// read time without ever evaluating Test — SPEC_FULL.md §4.D.1.
		yes := b.expr(ex.Yes)
		no := b.expr(ex.No)
		return jsvalue.Join(yes, no)

	case *jsast.EArray:
		for _, item := range ex.Items {
			b.expr(item)
		}
		return &jsvalue.Unknown{Reason: "array literal"}

	case *jsast.EObject:
		for _, prop := range ex.Properties {
			b.expr(prop.Value)
		}
		return &jsvalue.Unknown{Reason: "object literal"}

	default:
		return &jsvalue.Unknown{Reason: "unsupported expression form"}
	}
}

func (b *builder) identifier(ref jsast.Ref, name string) jsvalue.Value {
	if kind, ok := KnownGlobals[name]; ok && !b.isLocallyBound(ref) {
		return &jsvalue.FreeVar{Kind: kind}
	}
	if b.globalNames[name] && !b.isLocallyBound(ref) {
		return &jsvalue.FreeVar{Kind: jsvalue.FreeVarGlobal, Name: name}
	}
	return &jsvalue.Variable{Ref: ref, Name: name}
}

// isLocallyBound reports whether ref already has a recorded binding — used
// to distinguish an identifier that merely shares a free variable's name
// (e.g. a parameter named "require") from the free variable itself. Both
// cases carry distinct Refs from the parser, so a binding recorded under
// this exact ref means it was declared locally.
func (b *builder) isLocallyBound(ref jsast.Ref) bool {
	_, ok := b.bindings[ref]
	return ok
}

func (b *builder) call(ex *jsast.ECall, loc logger.Loc) jsvalue.Value {
	args := make([]jsvalue.Value, len(ex.Args))
	for i, a := range ex.Args {
		args[i] = b.expr(a)
	}

	var fn jsvalue.Value
	var this jsvalue.Value

	if dot, ok := ex.Target.Data.(*jsast.EDot); ok {
		obj := b.expr(dot.Target)
		this = obj
		fn = &jsvalue.MemberAccess{Object: obj, Property: jsvalue.Str(dot.Name)}
	} else if idx, ok := ex.Target.Data.(*jsast.EIndex); ok {
		obj := b.expr(idx.Target)
		this = obj
		fn = &jsvalue.MemberAccess{Object: obj, Property: b.expr(idx.Index)}
	} else {
		fn = b.expr(ex.Target)
		this = &jsvalue.Unknown{}
	}

	b.effects = append(b.effects, Effect{Func: fn, This: this, Args: args, Span: logger.Range{Loc: loc}})

	if v, ok := requireModuleValue(fn, args); ok {
		return v
	}
	return &jsvalue.Call{Callee: fn, This: this, Args: args}
}

// requireModuleValue implements SPEC_FULL.md §4.D.1's require-as-value rule:
// require("literal") evaluates to Module("literal") so a later member
// access (e.g. fs.readFile) can resolve through the same Module ->
// WellKnownObject chain an import binding would, on top of the Call effect
// already recorded above.
func requireModuleValue(fn jsvalue.Value, args []jsvalue.Value) (jsvalue.Value, bool) {
	free, ok := fn.(*jsvalue.FreeVar)
	if !ok || free.Kind != jsvalue.FreeVarRequire || len(args) != 1 {
		return nil, false
	}
	str, ok := args[0].(*jsvalue.Constant)
	if !ok || str.Kind != jsvalue.ConstString {
		return nil, false
	}
	return &jsvalue.Module{Name: str.Str}, true
}
