// Package collab names the external collaborators the reference-extraction
// core depends on but does not implement: parsing, resolving, and locating
// a source file's directory. Centralizing them here mirrors how esbuild
// centralizes its one cross-cutting interface, logger.Log, instead of
// letting every internal package redeclare its own diagnostic-sink shape.
package collab

import (
	"context"

	"github.com/jsbundle/refscan/internal/jsast"
	"github.com/jsbundle/refscan/internal/logger"
)

// Source is the unit of work the core operates on: one already-located
// input file. It's the same logger.Source every diagnostic is already
// anchored to, carrying its contents along so a caller never needs to
// juggle two different "which file is this" identities.
type Source = logger.Source

// ParseResult is what a successful parse hands back: the syntax tree plus
// enough bookkeeping for the dataflow builder to seed free variables.
type ParseResult struct {
	Stmts []jsast.Stmt

	// Globals lists identifier names the parser determined are never
	// locally declared anywhere in this module — candidates for FreeVar
	// recognition in component D.
	Globals []string
}

// ParseStatus distinguishes "no source" from "source that failed to
// parse" from success; both non-Ok cases fold to the same "no references"
// outcome (§7 class 1) but are kept distinct for the caller's diagnostics.
type ParseStatus uint8

const (
	ParseOk ParseStatus = iota
	ParseUnparseable
	ParseNotFound
)

// Parser is the collaborator that turns raw source text into a tree this
// module's dataflow walk can traverse. Parsing itself — lexing, scope
// resolution — is out of scope for this core; see SPEC §1.
type Parser interface {
	Parse(ctx context.Context, source Source) (ParseResult, ParseStatus, error)
}

// ResolveStatus mirrors the source material's Single/Many/Unresolvable
// three-way result.
type ResolveStatus uint8

const (
	ResolveSingle ResolveStatus = iota
	ResolveMany
	ResolveUnresolvable
)

type ResolveResult struct {
	Status ResolveStatus

	// Valid when Status == ResolveSingle: an opaque handle the embedder
	// uses to identify the resolved asset (a normalized path, a bundler
	// module id — this core never interprets it).
	Asset string
}

// Resolver is consulted by the syntactic visitor (component G), to test
// whether a bare specifier names a recognized bundler-runtime module, by
// Extract's package.json probe (§4.G.1), and by consumers of the references
// this core emits. The effect interpreter (component F) never calls it —
// it emits unresolved references and lets the surrounding bundler resolve
// them.
type Resolver interface {
	Resolve(ctx context.Context, dir string, request string) (ResolveResult, error)
}

// PathProvider yields the directory a source lives in, used to substitute
// __dirname/__filename during well-known replacement (component C) and to
// probe for a sibling package.json (§4.G.1).
type PathProvider interface {
	SourceDir(source Source) string
	SourceFilename(source Source) string
}
