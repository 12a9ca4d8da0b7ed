// Package config collects the small set of tunables an embedder can adjust
// without a code change, the same role esbuild's internal/config.Options
// plays for the bundler this core was split out of — except this Options
// struct is one field, not two hundred, because almost everything that
// used to be a bundler flag (target, platform, define maps, loaders, ...)
// belongs to the surrounding bundler, not to the reference-extraction core.
package config

// Options is constructed by the embedder and threaded explicitly through
// Extract; there is no on-disk config file and no environment variable
// read (SPEC §6).
type Options struct {
	// LinkStepBound caps how many times the well-known replacer is applied
	// to a single value during linking before the linker gives up and
	// returns Unknown (SPEC §4.E step 4). Guards against a value that
	// oscillates between two replacer rules, or a deeply nested
	// path.join(path.join(path.join(...))) chain.
	//
	// Zero means DefaultLinkStepBound.
	LinkStepBound int
}

// DefaultLinkStepBound is small enough that a pathological value fails fast
// rather than burning CPU, and large enough that realistic replacer chains
// (Module -> WellKnownObject -> WellKnownFunction -> Constant) always
// finish well under it.
const DefaultLinkStepBound = 8

// LinkStepBoundOrDefault is the accessor other packages use instead of
// reading the zero-meaning field directly.
func (o Options) LinkStepBoundOrDefault() int {
	if o.LinkStepBound <= 0 {
		return DefaultLinkStepBound
	}
	return o.LinkStepBound
}
