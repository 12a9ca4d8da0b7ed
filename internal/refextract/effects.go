// Component F: the effect interpreter. Consumes the linked value of each
// dataflow effect's callee and emits (or diagnoses) asset references,
// following the dispatch table in SPEC §4.F.
package refextract

import (
	"fmt"
	"strings"

	"github.com/jsbundle/refscan/internal/collab"
	"github.com/jsbundle/refscan/internal/dataflow"
	"github.com/jsbundle/refscan/internal/jsvalue"
	"github.com/jsbundle/refscan/internal/linker"
	"github.com/jsbundle/refscan/internal/logger"
	"github.com/jsbundle/refscan/internal/pattern"
)

func interpretEffect(l *linker.Linker, effect dataflow.Effect, source collab.Source, log logger.Log) ([]AssetReference, error) {
	linkedFunc := l.Link(effect.Func)
	if err := checkAlternativesNormalForm(linkedFunc); err != nil {
		return nil, err
	}
	return interpretLinkedCall(l, linkedFunc, effect, source, log), nil
}

// checkAlternativesNormalForm checks a linked callee against the
// Alternatives normal form: a top-level Alternatives must have at least two
// branches and no branch may itself be an Alternatives. It does not look
// deeper into the value and does not check for self-containment. The
// linker and jsvalue.Join produce this form by construction, so tripping
// it here means one of those guarantees broke, which SPEC §7 classifies
// as class 4: fatal, abort extraction for this module.
func checkAlternativesNormalForm(v jsvalue.Value) error {
	alt, ok := v.(*jsvalue.Alternatives)
	if !ok {
		return nil
	}
	if len(alt.Values) <= 1 {
		return fmt.Errorf("%w: singleton or empty Alternatives escaped normalization", ErrInvariantViolation)
	}
	for _, branch := range alt.Values {
		if _, nested := branch.(*jsvalue.Alternatives); nested {
			return fmt.Errorf("%w: nested Alternatives", ErrInvariantViolation)
		}
	}
	return nil
}

// interpretLinkedCall distributes over Alternatives callees — "the one
// effect fans out" per SPEC §4.F — and otherwise dispatches on the
// well-known function kind.
func interpretLinkedCall(l *linker.Linker, fn jsvalue.Value, effect dataflow.Effect, source collab.Source, log logger.Log) []AssetReference {
	if alt, ok := fn.(*jsvalue.Alternatives); ok {
		var out []AssetReference
		for _, branch := range alt.Values {
			out = append(out, interpretLinkedCall(l, branch, effect, source, log)...)
		}
		return out
	}

	wf, ok := fn.(*jsvalue.WellKnownFunction)
	if !ok {
		return nil
	}

	linkedArgs := make([]jsvalue.Value, len(effect.Args))
	for i, a := range effect.Args {
		linkedArgs[i] = l.Link(a)
	}

	switch wf.Kind {
	case jsvalue.WellKnownFunctionImport, jsvalue.WellKnownFunctionRequire:
		if len(linkedArgs) == 1 {
			if refs, ok := literalsToEsm(linkedArgs[0], source.PrettyPath); ok {
				return refs
			}
		}
		diagnose(log, effect, source, displayName(wf), linkedArgs, diagnosticID(wf.Kind))
		return nil

	case jsvalue.WellKnownFunctionRequireResolve:
		// Always diagnostic, by design (SPEC §9 decision): the bundler
		// would otherwise resolve the guarded require() a second time.
		diagnose(log, effect, source, displayName(wf), linkedArgs, logger.MsgID_FailedToAnalyse_Require)
		return nil

	case jsvalue.WellKnownFunctionFsReadMethod:
		if len(linkedArgs) >= 1 {
			if refs, ok := literalsToEsm(linkedArgs[0], source.PrettyPath); ok {
				return refs
			}
		}
		diagnose(log, effect, source, displayName(wf), linkedArgs, logger.MsgID_FailedToAnalyse_FsMethod)
		return nil

	default:
		// Every path.join/resolve/dirname call lands here, whatever its
		// arguments: fn is the linked callee, not the call. Such calls
		// aren't references at all, so they're silently ignored rather
		// than diagnosed; only require/import/fs calls name an asset.
		return nil
	}
}

func literalsToEsm(v jsvalue.Value, sourceName string) ([]AssetReference, bool) {
	p, ok := pattern.Extract(v)
	if !ok {
		return nil, false
	}
	if p.Kind == pattern.Literal {
		return []AssetReference{esm(sourceName, p.Value)}, true
	}
	refs := make([]AssetReference, len(p.Values))
	for i, lit := range p.Values {
		refs[i] = esm(sourceName, lit)
	}
	return refs, true
}

func displayName(wf *jsvalue.WellKnownFunction) string {
	if wf.Kind == jsvalue.WellKnownFunctionFsReadMethod {
		return "fs." + wf.FsMethodName
	}
	return wf.Kind.String()
}

func diagnosticID(kind jsvalue.WellKnownFunctionKind) logger.MsgID {
	if kind == jsvalue.WellKnownFunctionImport {
		return logger.MsgID_FailedToAnalyse_DynamicImport
	}
	return logger.MsgID_FailedToAnalyse_Require
}

// diagnose emits a warning carrying the effect's own span, so the reported
// location points at the call that couldn't be resolved rather than the
// top of the file — and so SortableMsgs.Less has a real Location to order
// concurrently-produced diagnostics by.
func diagnose(log logger.Log, effect dataflow.Effect, source collab.Source, name string, args []jsvalue.Value, id logger.MsgID) {
	if log.AddMsg == nil {
		return
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	text := name + "(" + strings.Join(parts, ", ") + ") is not statically analysable"
	log.AddRangeWarningWithID(&source, effect.Span, text, id)
}
