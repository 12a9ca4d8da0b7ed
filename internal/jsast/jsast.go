// Package jsast defines the shape of the parsed syntax tree this module
// consumes. Parsing itself is an external collaborator's job (see
// internal/collab.Parser) — this package only names the node kinds the
// dataflow walk and the syntactic visitor need to recognize, trimmed down
// from esbuild's much larger internal/js_ast package to the forms that can
// carry a require()/import()/fs call or an import/export declaration.
package jsast

import (
	"github.com/jsbundle/refscan/internal/helpers"
	"github.com/jsbundle/refscan/internal/logger"
)

// Ref is the stable identifier a binding is keyed by. It never changes as a
// tree is mutated, unlike an index into some mutable slice of declarations.
type Ref struct {
	SourceIndex uint32
	InnerIndex  uint32
}

var InvalidRef = Ref{SourceIndex: 0xFFFFFFFF, InnerIndex: 0xFFFFFFFF}

func (r Ref) IsValid() bool {
	return r != InvalidRef
}

type Expr struct {
	Data E
	Loc  logger.Loc
}

// E is never called. Its only purpose is to encode a closed variant type in
// Go's type system, the same trick esbuild's js_ast.E plays.
type E interface{ isExpr() }

func (*EString) isExpr()            {}
func (*ENumber) isExpr()            {}
func (*EBoolean) isExpr()           {}
func (*ENull) isExpr()              {}
func (*EUndefined) isExpr()         {}
func (*ERegExp) isExpr()            {}
func (*EIdentifier) isExpr()        {}
func (*EImportIdentifier) isExpr()  {}
func (*EDot) isExpr()               {}
func (*EIndex) isExpr()             {}
func (*ECall) isExpr()              {}
func (*EImportCall) isExpr()        {}
func (*EBinary) isExpr()            {}
func (*EIf) isExpr()                {}
func (*EArray) isExpr()             {}
func (*EObject) isExpr()            {}
func (*EMissing) isExpr()           {}

type EString struct {
	Value []uint16
}

func (e *EString) UTF8() string { return helpers.UTF16ToString(e.Value) }

type ENumber struct{ Value float64 }

type EBoolean struct{ Value bool }

type ENull struct{}

type EUndefined struct{}

type ERegExp struct{ Value string }

// EIdentifier is a plain local reference, e.g. a variable bound by a
// declarator or a function parameter. Name is carried directly on the node
// (rather than looked up in a separate symbol table, the way esbuild's
// js_ast.EIdentifier does it) because this package has no symbol table —
// it's the dataflow walk's job to decide, from Name and the parser's
// reported Globals, whether a Ref names a free variable.
type EIdentifier struct {
	Ref  Ref
	Name string
}

// EImportIdentifier is a reference to a binding that an import declaration
// introduced — distinguished from EIdentifier so the dataflow walk can seed
// its starting value from the import's specifier/clause without a lookup.
type EImportIdentifier struct {
	Ref  Ref
	Name string
}

// EDot is a static property access, "a.b".
type EDot struct {
	Target Expr
	Name   string
}

// EIndex is a computed property access, "a[b]".
type EIndex struct {
	Target Expr
	Index  Expr
}

// ECall covers ordinary calls (including member calls, where Target is an
// EDot/EIndex) as well as "new" is NOT modeled here — the spec's well-known
// functions are never constructed with "new".
type ECall struct {
	Target Expr
	Args   []Expr
}

// EImportCall is the dynamic import(...) expression. It is kept distinct
// from ECall because, unlike a call to a free variable, its callee is a
// keyword and can never be shadowed.
type EImportCall struct {
	Arg Expr
}

type OpCode uint8

const (
	BinOpAdd OpCode = iota
	BinOpUnknown
)

type EBinary struct {
	Left  Expr
	Right Expr
	Op    OpCode
}

// EIf is the ternary conditional, "test ? yes : no".
type EIf struct {
	Test Expr
	Yes  Expr
	No   Expr
}

type EArray struct {
	Items []Expr
}

type EObject struct {
	Properties []Property
}

type Property struct {
	Key   Expr
	Value Expr
}

// EMissing stands in for any expression form this package doesn't model
// (arrow functions, classes, JSX, ...). The dataflow walk resolves it to
// jsvalue.Unknown rather than failing.
type EMissing struct{}

type Stmt struct {
	Data S
	Loc  logger.Loc
}

type S interface{ isStmt() }

func (*SImport) isStmt()     {}
func (*SExportFrom) isStmt() {}
func (*SExportStar) isStmt() {}
func (*SLocal) isStmt()      {}
func (*SExpr) isStmt()       {}

// SImport covers every import declaration form: default, named, namespace,
// and side-effect-only ("import './x'"). Specifier is the literal module
// request string — import declarations never have a dynamic specifier, so
// unlike a require()/import() call site this is always known.
type SImport struct {
	Specifier    string
	NamespaceRef *Ref
	DefaultRef   *Ref
	Items        []ClauseItem
}

// SExportFrom covers "export { a, b } from './x'" and "export { a as b } from './x'".
type SExportFrom struct {
	Specifier string
	Items     []ClauseItem
}

// SExportStar covers "export * from './x'" and "export * as ns from './x'".
type SExportStar struct {
	Specifier string
	Alias     *string
}

type ClauseItem struct {
	Alias string
	Ref   Ref
	Name  string
}

type SLocal struct {
	Decls []Decl
}

type Decl struct {
	BindingRef Ref
	Name       string
	Value      *Expr
}

type SExpr struct {
	Value Expr
}
