// Package linker resolves a Value drawn from an effect against the binding
// map built by component D, substituting every Variable reference and
// driving the well-known replacer (internal/wellknown) to a fixpoint. It
// memoizes results in a LinkCache so that repeated subvalues — a module
// specifier imported once but read off a dozen call sites — are linked
// once.
//
// Grounded on the `link`/`LinkCache`/`replace_well_known` trio in
// original_source/crates/turbopack/src/ecmascript/references.rs, with the
// recursive-async trampoline the original uses replaced by ordinary
// recursion (SPEC §9: the value tree is finite by construction once cycles
// are broken).
package linker

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/jsbundle/refscan/internal/config"
	"github.com/jsbundle/refscan/internal/jsast"
	"github.com/jsbundle/refscan/internal/jsvalue"
	"github.com/jsbundle/refscan/internal/wellknown"
)

// Bindings is the read-only view of component D's output that Link
// consults to substitute a Variable reference.
type Bindings map[jsast.Ref]jsvalue.Value

// LinkCache memoizes the result of linking a value by the xxhash digest of
// its canonical byte encoding (cache_key.go), guarded by a mutex the same
// way esbuild's internal/cache/cache_ast.go guards its entry map: lock,
// check, unlock, compute the miss outside the lock, lock again, store,
// unlock. The recursive link call that fills a miss is never made while
// holding the lock.
type LinkCache struct {
	mu      sync.Mutex
	entries map[uint64]jsvalue.Value
}

func NewLinkCache() *LinkCache {
	return &LinkCache{entries: make(map[uint64]jsvalue.Value)}
}

func (c *LinkCache) lookup(key uint64) (jsvalue.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *LinkCache) store(key uint64, v jsvalue.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

// Linker holds everything a Link call needs that doesn't change per value:
// the binding map, the cache, the source directory for __dirname
// substitution, and the step-bound option.
type Linker struct {
	Bindings Bindings
	Cache    *LinkCache
	Dir      wellknown.SourceDir
	Options  config.Options

	// stack is the in-progress resolution stack, used to detect a Variable
	// that (directly or indirectly) refers to itself. It is not safe for
	// concurrent use — callers fanning out independent effects (SPEC §5)
	// must give each goroutine its own Linker sharing only the Cache.
	stack map[jsast.Ref]bool
}

// New returns a Linker ready to link values drawn from a single module's
// effects. Cache may be shared across Linkers fanned out over that
// module's independent effects; Bindings must not be mutated afterward.
func New(bindings Bindings, cache *LinkCache, dir wellknown.SourceDir, opts config.Options) *Linker {
	return &Linker{
		Bindings: bindings,
		Cache:    cache,
		Dir:      dir,
		Options:  opts,
		stack:    make(map[jsast.Ref]bool),
	}
}

// Link resolves v to a value with every Variable substituted and every
// well-known rewrite applied to a fixpoint, per SPEC §4.E.
func (l *Linker) Link(v jsvalue.Value) jsvalue.Value {
	switch val := v.(type) {
	case *jsvalue.Constant, *jsvalue.FreeVar, *jsvalue.WellKnownFunction, *jsvalue.WellKnownObject, *jsvalue.Module:
		return l.fixpoint(v)

	case *jsvalue.Variable:
		return l.linkVariable(val)

	case *jsvalue.MemberAccess:
		linked := &jsvalue.MemberAccess{Object: l.Link(val.Object), Property: l.Link(val.Property)}
		return l.fixpoint(linked)

	case *jsvalue.Call:
		var this jsvalue.Value
		if val.This != nil {
			this = l.Link(val.This)
		}
		args := make([]jsvalue.Value, len(val.Args))
		for i, a := range val.Args {
			args[i] = l.Link(a)
		}
		linked := &jsvalue.Call{Callee: l.Link(val.Callee), This: this, Args: args}
		return l.fixpoint(linked)

	case *jsvalue.Concat:
		parts := make([]jsvalue.Value, len(val.Parts))
		for i, p := range val.Parts {
			parts[i] = l.Link(p)
		}
		return l.combineConcat(parts)

	case *jsvalue.Add:
		left, right := l.Link(val.Left), l.Link(val.Right)
		return l.combineAdd(left, right)

	case *jsvalue.Alternatives:
		return l.joinBranches(val, l.Link)

	default:
		return v
	}
}

// combineAdd folds two already-linked operands of a `+` into a Concat (when
// both sides are string-like) or leaves an Add otherwise. An Alternatives
// operand distributes first: "./" + {d|e} must linearize to
// Alternatives{Concat("./","d"), Concat("./","e")}, not stay an opaque
// Add(Str, Alternatives) that pattern.Extract can never see through.
func (l *Linker) combineAdd(left, right jsvalue.Value) jsvalue.Value {
	if alt, ok := left.(*jsvalue.Alternatives); ok {
		return l.joinBranches(alt, func(branch jsvalue.Value) jsvalue.Value {
			return l.combineAdd(branch, right)
		})
	}
	if alt, ok := right.(*jsvalue.Alternatives); ok {
		return l.joinBranches(alt, func(branch jsvalue.Value) jsvalue.Value {
			return l.combineAdd(left, branch)
		})
	}
	if isStringLike(left) && isStringLike(right) {
		return l.fixpoint(&jsvalue.Concat{Parts: []jsvalue.Value{left, right}})
	}
	return l.fixpoint(&jsvalue.Add{Left: left, Right: right})
}

// combineConcat distributes any Alternatives part of an already-linked
// Concat the same way combineAdd does for a binary Add, so a Concat built
// up from more than two parts still linearizes fully instead of stopping
// at the first alternative it meets.
func (l *Linker) combineConcat(parts []jsvalue.Value) jsvalue.Value {
	for i, p := range parts {
		if alt, ok := p.(*jsvalue.Alternatives); ok {
			return l.joinBranches(alt, func(branch jsvalue.Value) jsvalue.Value {
				next := make([]jsvalue.Value, len(parts))
				copy(next, parts)
				next[i] = branch
				return l.combineConcat(next)
			})
		}
	}
	return l.fixpoint(&jsvalue.Concat{Parts: parts})
}

// joinBranches maps f over every branch of alt and joins the results with
// jsvalue.Join, the same reduce-with-join shape the Alternatives case of
// Link itself uses.
func (l *Linker) joinBranches(alt *jsvalue.Alternatives, f func(jsvalue.Value) jsvalue.Value) jsvalue.Value {
	var joined jsvalue.Value
	for i, branch := range alt.Values {
		r := f(branch)
		if i == 0 {
			joined = r
		} else {
			joined = jsvalue.Join(joined, r)
		}
	}
	if joined == nil {
		return &jsvalue.Unknown{Reason: "empty alternatives"}
	}
	return joined
}

func isStringLike(v jsvalue.Value) bool {
	switch val := v.(type) {
	case *jsvalue.Constant:
		return val.Kind == jsvalue.ConstString
	case *jsvalue.Concat:
		return true
	default:
		return false
	}
}

func (l *Linker) linkVariable(v *jsvalue.Variable) jsvalue.Value {
	if l.stack[v.Ref] {
		return &jsvalue.Unknown{Reason: "cyclic reference to " + v.Name}
	}
	bound, ok := l.Bindings[v.Ref]
	if !ok {
		return &jsvalue.Unknown{Reason: "unbound variable " + v.Name}
	}
	l.stack[v.Ref] = true
	defer delete(l.stack, v.Ref)
	return l.Link(bound)
}

// fixpoint applies the well-known replacer to v repeatedly until it stops
// changing or the configured step bound is reached, consulting and
// populating the cache around the (potentially expensive) work — never
// while holding the cache's lock.
func (l *Linker) fixpoint(v jsvalue.Value) jsvalue.Value {
	key := cacheKey(v)
	if cached, ok := l.Cache.lookup(key); ok {
		return cached
	}

	bound := l.Options.LinkStepBoundOrDefault()
	current := v
	changedAtLeastOnce := false
	for step := 0; step < bound; step++ {
		next, changed := wellknown.Replace(current, l.Dir)
		if !changed {
			current = normalizeAlternatives(current)
			l.Cache.store(key, current)
			return current
		}
		changedAtLeastOnce = true
		current = next
	}
	if changedAtLeastOnce {
		result := &jsvalue.Unknown{Reason: "replacer did not converge within the step bound"}
		l.Cache.store(key, result)
		return result
	}
	current = normalizeAlternatives(current)
	l.Cache.store(key, current)
	return current
}

// normalizeAlternatives enforces the Alternatives normal form (SPEC §8
// invariant 4): no emitted value is Alternatives({x}) or Alternatives({}).
func normalizeAlternatives(v jsvalue.Value) jsvalue.Value {
	alt, ok := v.(*jsvalue.Alternatives)
	if !ok {
		return v
	}
	switch len(alt.Values) {
	case 0:
		return &jsvalue.Unknown{Reason: "empty alternatives"}
	case 1:
		return alt.Values[0]
	default:
		return alt
	}
}

// cacheKey hashes the canonical byte encoding of v with xxhash, the single
// 64-bit digest the LinkCache is keyed by (SPEC_FULL.md §1.2).
func cacheKey(v jsvalue.Value) uint64 {
	h := xxhash.New()
	encode(h, v)
	return h.Sum64()
}
