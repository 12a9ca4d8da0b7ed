// Extract is the top-level orchestration named in SPEC §4.G.1 and §5:
// check for a sibling package.json, parse, then run the dataflow builder
// (D) and syntactic visitor (G) over the result, fan the dataflow effects
// out through the linker (E, using A/B/C) and effect interpreter (F), and
// concatenate G's references ahead of F's.
package refextract

import (
	"context"
	"errors"

	"github.com/jsbundle/refscan/internal/collab"
	"github.com/jsbundle/refscan/internal/config"
	"github.com/jsbundle/refscan/internal/dataflow"
	"github.com/jsbundle/refscan/internal/helpers"
	"github.com/jsbundle/refscan/internal/linker"
	"github.com/jsbundle/refscan/internal/logger"
	"github.com/jsbundle/refscan/internal/wellknown"
)

// ErrInvariantViolation is returned only for SPEC §7 class-4 failures: an
// internal invariant this module itself is supposed to guarantee broke
// (a nested Alternatives surviving normalization, an impossible cache
// state). Every other failure mode — unparseable input, a non-analysable
// dynamic specifier, a resolver miss during runtime detection — returns
// (references, nil) with any diagnostics already forwarded to log.
var ErrInvariantViolation = errors.New("refextract: internal invariant violation")

// Extract runs the full reference-extraction pipeline for one source
// module.
func Extract(ctx context.Context, source collab.Source, parser collab.Parser, resolver collab.Resolver, paths collab.PathProvider, log logger.Log, opts config.Options) ([]AssetReference, error) {
	var refs []AssetReference

	if ref, ok := findPackageJSON(ctx, source, resolver, paths); ok {
		refs = append(refs, ref)
	}

	parseResult, status, err := parser.Parse(ctx, source)
	if err != nil {
		// A suspension-point failure bubbles up unchanged (SPEC §7).
		return refs, err
	}
	if status != collab.ParseOk {
		// Class 1: absent/unparseable input yields an empty reference set
		// and no diagnostics — the surrounding bundler already reported
		// the parse failure.
		return nil, nil
	}

	gRefs := syntacticVisit(ctx, parseResult.Stmts, source, resolver, paths)
	dResult := dataflow.Build(parseResult.Stmts, parseResult.Globals)

	dir := wellknown.SourceDir{
		Dirname:  paths.SourceDir(source),
		Filename: paths.SourceFilename(source),
	}
	cache := linker.NewLinkCache()

	fRefs, err := interpretEffectsConcurrently(dResult.Effects, linker.Bindings(dResult.Bindings), cache, dir, opts, source, log)
	if err != nil {
		return refs, err
	}

	refs = append(refs, gRefs...)
	refs = append(refs, fRefs...)
	return refs, nil
}

// findPackageJSON performs the unconditional, pre-parse package.json
// check from SPEC_FULL.md §4.G.1. A resolver miss here simply means no
// reference is emitted — this is exploratory, not an error.
func findPackageJSON(ctx context.Context, source collab.Source, resolver collab.Resolver, paths collab.PathProvider) (AssetReference, bool) {
	if resolver == nil || paths == nil {
		return AssetReference{}, false
	}
	dir := paths.SourceDir(source)
	result, err := resolver.Resolve(ctx, dir, "./package.json")
	if err != nil || result.Status != collab.ResolveSingle {
		return AssetReference{}, false
	}
	return packageJSON(result.Asset), true
}

// interpretEffectsConcurrently fans independent effects out over
// goroutines, guarded by the shared LinkCache's mutex, using the teacher's
// own ThreadSafeWaitGroup — SPEC §5's "linker work over independent
// effects may be fanned out". Results are collected into a slice indexed
// by effect position so the final order matches effect order regardless
// of completion order (SPEC §5: "references emitted by F appear in effect
// order").
func interpretEffectsConcurrently(effects []dataflow.Effect, bindings linker.Bindings, cache *linker.LinkCache, dir wellknown.SourceDir, opts config.Options, source collab.Source, log logger.Log) ([]AssetReference, error) {
	if len(effects) == 0 {
		return nil, nil
	}

	results := make([][]AssetReference, len(effects))
	errs := make([]error, len(effects))
	wg := helpers.MakeThreadSafeWaitGroup()
	wg.Add(int32(len(effects)))

	for i := range effects {
		i := i
		go func() {
			defer wg.Done()
			l := linker.New(bindings, cache, dir, opts)
			results[i], errs[i] = interpretEffect(l, effects[i], source, log)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var out []AssetReference
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
