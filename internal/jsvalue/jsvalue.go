// Package jsvalue implements the abstract value lattice the dataflow walk
// and the well-known-function linker operate over. A Value approximates
// what an expression could evaluate to at bundle time: a literal, a
// well-known global, an unresolved combination of other values, or simply
// Unknown when no useful approximation exists.
//
// This is the Go telling of turbopack's JsValue enum
// (original_source/crates/turbopack/src/ecmascript/references.rs), recast
// as a closed interface in the style esbuild's js_ast.E uses for its own
// expression variants.
package jsvalue

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jsbundle/refscan/internal/helpers"
	"github.com/jsbundle/refscan/internal/jsast"
)

// Value is never called directly; its purpose is to encode a closed variant
// type the way jsast.E and esbuild's js_ast.E do.
type Value interface {
	isValue()
	// Hash returns a structural hash seeded by seed, combined the way
	// esbuild's AST hashing combines child hashes (helpers.HashCombine).
	Hash(seed uint32) uint32
	String() string
}

// --- Constant -------------------------------------------------------------

// Constant is a value that reduced all the way to a literal: a string,
// number, boolean, null, or undefined.
type Constant struct {
	Kind ConstantKind

	// Valid when Kind == ConstString.
	Str string

	// Valid when Kind == ConstNumber.
	Num float64

	// Valid when Kind == ConstBool.
	Bool bool
}

type ConstantKind uint8

const (
	ConstString ConstantKind = iota
	ConstNumber
	ConstBool
	ConstNull
	ConstUndefined
)

func (*Constant) isValue() {}

func (c *Constant) Hash(seed uint32) uint32 {
	seed = helpers.HashCombine(seed, uint32(0xC0A5))
	seed = helpers.HashCombine(seed, uint32(c.Kind))
	switch c.Kind {
	case ConstString:
		seed = helpers.HashCombineString(seed, c.Str)
	case ConstNumber:
		seed = helpers.HashCombineString(seed, strconv.FormatFloat(c.Num, 'g', -1, 64))
	case ConstBool:
		if c.Bool {
			seed = helpers.HashCombine(seed, 1)
		} else {
			seed = helpers.HashCombine(seed, 0)
		}
	}
	return seed
}

func (c *Constant) String() string {
	switch c.Kind {
	case ConstString:
		return strconv.Quote(c.Str)
	case ConstNumber:
		return strconv.FormatFloat(c.Num, 'g', -1, 64)
	case ConstBool:
		return strconv.FormatBool(c.Bool)
	case ConstNull:
		return "null"
	default:
		return "undefined"
	}
}

func Str(s string) *Constant  { return &Constant{Kind: ConstString, Str: s} }
func Num(n float64) *Constant { return &Constant{Kind: ConstNumber, Num: n} }
func Bool(b bool) *Constant   { return &Constant{Kind: ConstBool, Bool: b} }
func Null() *Constant         { return &Constant{Kind: ConstNull} }
func Undefined() *Constant    { return &Constant{Kind: ConstUndefined} }

// --- FreeVar ---------------------------------------------------------------

// FreeVar is an identifier that resolved to an ambient binding rather than a
// local declaration: "require", "import", "__dirname", "__filename",
// or an unrecognized global.
type FreeVar struct {
	Kind FreeVarKind

	// Valid when Kind == FreeVarGlobal: the identifier's name.
	Name string
}

type FreeVarKind uint8

const (
	FreeVarRequire FreeVarKind = iota
	FreeVarImport
	FreeVarDirname
	FreeVarFilename
	FreeVarGlobal
)

func (*FreeVar) isValue() {}

func (f *FreeVar) Hash(seed uint32) uint32 {
	seed = helpers.HashCombine(seed, uint32(0xF6EE))
	seed = helpers.HashCombine(seed, uint32(f.Kind))
	if f.Kind == FreeVarGlobal {
		seed = helpers.HashCombineString(seed, f.Name)
	}
	return seed
}

func (f *FreeVar) String() string {
	switch f.Kind {
	case FreeVarRequire:
		return "FreeVar(require)"
	case FreeVarImport:
		return "FreeVar(import)"
	case FreeVarDirname:
		return "FreeVar(__dirname)"
	case FreeVarFilename:
		return "FreeVar(__filename)"
	default:
		return "FreeVar(" + f.Name + ")"
	}
}

// --- Module ------------------------------------------------------------

// Module is the value bound to an ES import's namespace/specifier before
// any member is accessed off it: the module specifier string itself.
type Module struct {
	Name string
}

func (*Module) isValue() {}

func (m *Module) Hash(seed uint32) uint32 {
	seed = helpers.HashCombine(seed, uint32(0x3A0D))
	return helpers.HashCombineString(seed, m.Name)
}

func (m *Module) String() string { return "Module(" + strconv.Quote(m.Name) + ")" }

// --- WellKnownFunction ---------------------------------------------------

type WellKnownFunctionKind uint8

const (
	WellKnownFunctionRequire WellKnownFunctionKind = iota
	WellKnownFunctionRequireResolve
	WellKnownFunctionImport
	WellKnownFunctionFsReadMethod
	WellKnownFunctionPathJoin
	WellKnownFunctionPathResolve
	WellKnownFunctionPathDirname
)

func (k WellKnownFunctionKind) String() string {
	switch k {
	case WellKnownFunctionRequire:
		return "require"
	case WellKnownFunctionRequireResolve:
		return "require.resolve"
	case WellKnownFunctionImport:
		return "import"
	case WellKnownFunctionFsReadMethod:
		return "fs.<read>"
	case WellKnownFunctionPathJoin:
		return "path.join"
	case WellKnownFunctionPathResolve:
		return "path.resolve"
	case WellKnownFunctionPathDirname:
		return "path.dirname"
	default:
		panic("internal error")
	}
}

// WellKnownFunction is a callee that the linker recognizes as having
// special, built-in semantics: require(...), import(...), require.resolve,
// or one of the fs/path module functions the spec cares about.
type WellKnownFunction struct {
	Kind WellKnownFunctionKind

	// Valid only when Kind == WellKnownFunctionFsReadMethod: which of the
	// fixed fs read-method names this is (see internal/wellknown).
	FsMethodName string
}

func (*WellKnownFunction) isValue() {}

func (w *WellKnownFunction) Hash(seed uint32) uint32 {
	seed = helpers.HashCombine(seed, uint32(0x5EEF))
	seed = helpers.HashCombine(seed, uint32(w.Kind))
	if w.Kind == WellKnownFunctionFsReadMethod {
		seed = helpers.HashCombineString(seed, w.FsMethodName)
	}
	return seed
}

func (w *WellKnownFunction) String() string {
	if w.Kind == WellKnownFunctionFsReadMethod {
		return "WellKnownFunction(fs." + w.FsMethodName + ")"
	}
	return "WellKnownFunction(" + w.Kind.String() + ")"
}

// --- WellKnownObject -----------------------------------------------------

type WellKnownObjectKind uint8

const (
	WellKnownObjectPathModule WellKnownObjectKind = iota
	WellKnownObjectFsModule
	WellKnownObjectProcessModule
)

func (k WellKnownObjectKind) String() string {
	switch k {
	case WellKnownObjectPathModule:
		return "path"
	case WellKnownObjectFsModule:
		return "fs"
	case WellKnownObjectProcessModule:
		return "process"
	default:
		panic("internal error")
	}
}

// WellKnownObject is a module namespace object whose member accesses the
// linker can resolve without looking at any import graph, e.g. the result
// of require("path").
type WellKnownObject struct {
	Kind WellKnownObjectKind
}

func (*WellKnownObject) isValue() {}

func (w *WellKnownObject) Hash(seed uint32) uint32 {
	seed = helpers.HashCombine(seed, uint32(0x0B7EC))
	return helpers.HashCombine(seed, uint32(w.Kind))
}

func (w *WellKnownObject) String() string { return "WellKnownObject(" + w.Kind.String() + ")" }

// --- Variable --------------------------------------------------------------

// Variable is an as-yet-unlinked reference to a local binding. The linker
// replaces it with whatever Value the binding's declaration resolved to.
type Variable struct {
	Ref  jsast.Ref
	Name string
}

func (*Variable) isValue() {}

func (v *Variable) Hash(seed uint32) uint32 {
	seed = helpers.HashCombine(seed, uint32(0x9A81))
	seed = helpers.HashCombine(seed, v.Ref.SourceIndex)
	return helpers.HashCombine(seed, v.Ref.InnerIndex)
}

func (v *Variable) String() string { return "Variable(" + v.Name + ")" }

// --- MemberAccess ----------------------------------------------------------

// MemberAccess is a (possibly still-unlinked) property access off some
// object value, e.g. `require("fs").readFileSync`.
type MemberAccess struct {
	Object Value
	// Property is either a Constant string (a static "a.b") or any other
	// Value (a computed "a[b]").
	Property Value
}

func (*MemberAccess) isValue() {}

func (m *MemberAccess) Hash(seed uint32) uint32 {
	seed = helpers.HashCombine(seed, uint32(0x7C11))
	seed = m.Object.Hash(seed)
	return m.Property.Hash(seed)
}

func (m *MemberAccess) String() string { return m.Object.String() + "." + m.Property.String() }

// --- Call --------------------------------------------------------------

// Call is a (possibly still-unlinked) function call. This is the object a
// method call was invoked on (e.g. the `fs` in `fs.readFile(...)`), or
// Unknown for a plain function call.
type Call struct {
	Callee Value
	This   Value
	Args   []Value
}

func (*Call) isValue() {}

func (c *Call) Hash(seed uint32) uint32 {
	seed = helpers.HashCombine(seed, uint32(0x2EE0))
	seed = c.Callee.Hash(seed)
	if c.This != nil {
		seed = c.This.Hash(seed)
	}
	seed = helpers.HashCombine(seed, uint32(len(c.Args)))
	for _, a := range c.Args {
		seed = a.Hash(seed)
	}
	return seed
}

func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}

// --- Concat ------------------------------------------------------------

// Concat is a string concatenation's parts, joined in source order. The
// linker builds one from an Add whose operands are all string-like. Unlike
// Add, a Concat never has an ambiguous runtime type: its operands are
// always coerced to strings.
type Concat struct {
	Parts []Value
}

func (*Concat) isValue() {}

func (c *Concat) Hash(seed uint32) uint32 {
	seed = helpers.HashCombine(seed, uint32(0x4D15))
	seed = helpers.HashCombine(seed, uint32(len(c.Parts)))
	for _, p := range c.Parts {
		seed = p.Hash(seed)
	}
	return seed
}

func (c *Concat) String() string {
	parts := make([]string, len(c.Parts))
	for i, p := range c.Parts {
		parts[i] = p.String()
	}
	return "Concat(" + strings.Join(parts, " + ") + ")"
}

// --- Add ---------------------------------------------------------------

// Add is a binary "+" whose operand types aren't known yet, so it's not yet
// safe to assume string concatenation (unlike Concat, whose operands are
// always strings). The linker narrows an Add to a Concat once both sides are
// known to be string-like, including when both are string literals; it never
// folds an Add into a single Constant.
type Add struct {
	Left  Value
	Right Value
}

func (*Add) isValue() {}

func (a *Add) Hash(seed uint32) uint32 {
	seed = helpers.HashCombine(seed, uint32(0x8F42))
	seed = a.Left.Hash(seed)
	return a.Right.Hash(seed)
}

func (a *Add) String() string { return "(" + a.Left.String() + " + " + a.Right.String() + ")" }

// --- Alternatives --------------------------------------------------------

// Alternatives is a finite set of values any of which an expression could
// produce, e.g. both arms of a ternary, or the result of linking a variable
// that was assigned from more than one control-flow path.
type Alternatives struct {
	Values []Value
}

func (*Alternatives) isValue() {}

func (a *Alternatives) Hash(seed uint32) uint32 {
	seed = helpers.HashCombine(seed, uint32(0x1BBA))
	seed = helpers.HashCombine(seed, uint32(len(a.Values)))
	for _, v := range a.Values {
		seed = v.Hash(seed)
	}
	return seed
}

func (a *Alternatives) String() string {
	parts := make([]string, len(a.Values))
	for i, v := range a.Values {
		parts[i] = v.String()
	}
	return "Alternatives(" + strings.Join(parts, " | ") + ")"
}

// --- Unknown -------------------------------------------------------------

// Unknown is the top of the lattice: "could be anything". Reason is kept
// only for diagnostics/debugging and plays no part in equality or hashing.
type Unknown struct {
	Reason string
}

func (*Unknown) isValue() {}

func (u *Unknown) Hash(seed uint32) uint32 {
	return helpers.HashCombine(seed, uint32(0xFFFF))
}

func (u *Unknown) String() string {
	if u.Reason == "" {
		return "Unknown"
	}
	return "Unknown(" + u.Reason + ")"
}

// --- Join ----------------------------------------------------------------

// Join merges two values that a binding could hold along different
// control-flow paths into a single value, flattening nested Alternatives and
// collapsing duplicate branches (compared structurally, not by identity).
func Join(a, b Value) Value {
	var out []Value
	out = appendAlternative(out, a)
	out = appendAlternative(out, b)
	if len(out) == 1 {
		return out[0]
	}
	return &Alternatives{Values: out}
}

func appendAlternative(into []Value, v Value) []Value {
	if alt, ok := v.(*Alternatives); ok {
		for _, child := range alt.Values {
			into = appendAlternative(into, child)
		}
		return into
	}
	for _, existing := range into {
		if Equal(existing, v) {
			return into
		}
	}
	return append(into, v)
}

// Equal reports whether two values are structurally identical. Join uses it
// to deduplicate branches; the linker's cache does not call it (it is keyed
// by a hash of the value's encoding alone).
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case *Constant:
		bv, ok := b.(*Constant)
		return ok && av.Kind == bv.Kind && av.Str == bv.Str && av.Num == bv.Num && av.Bool == bv.Bool
	case *FreeVar:
		bv, ok := b.(*FreeVar)
		return ok && av.Kind == bv.Kind && av.Name == bv.Name
	case *Module:
		bv, ok := b.(*Module)
		return ok && av.Name == bv.Name
	case *WellKnownFunction:
		bv, ok := b.(*WellKnownFunction)
		return ok && av.Kind == bv.Kind && av.FsMethodName == bv.FsMethodName
	case *WellKnownObject:
		bv, ok := b.(*WellKnownObject)
		return ok && av.Kind == bv.Kind
	case *Variable:
		bv, ok := b.(*Variable)
		return ok && av.Ref == bv.Ref
	case *MemberAccess:
		bv, ok := b.(*MemberAccess)
		return ok && Equal(av.Object, bv.Object) && Equal(av.Property, bv.Property)
	case *Call:
		bv, ok := b.(*Call)
		if !ok || !Equal(av.Callee, bv.Callee) || len(av.Args) != len(bv.Args) {
			return false
		}
		if (av.This == nil) != (bv.This == nil) {
			return false
		}
		if av.This != nil && !Equal(av.This, bv.This) {
			return false
		}
		for i := range av.Args {
			if !Equal(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case *Concat:
		bv, ok := b.(*Concat)
		return ok && equalSlices(av.Parts, bv.Parts)
	case *Add:
		bv, ok := b.(*Add)
		return ok && Equal(av.Left, bv.Left) && Equal(av.Right, bv.Right)
	case *Alternatives:
		bv, ok := b.(*Alternatives)
		return ok && equalSetwise(av.Values, bv.Values)
	case *Unknown:
		_, ok := b.(*Unknown)
		return ok
	default:
		return false
	}
}

func equalSlices(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// equalSetwise compares two Alternatives value lists ignoring order, since
// Join never guarantees a stable branch order across inputs.
func equalSetwise(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, av := range a {
		found := false
		for j, bv := range b {
			if !used[j] && Equal(av, bv) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// SortedStrings is a small helper the pattern extractor uses to present a
// deterministic Alternatives-of-literal-strings result.
func SortedStrings(ss []string) []string {
	out := append([]string(nil), ss...)
	sort.Strings(out)
	return out
}
