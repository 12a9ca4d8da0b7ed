// Package wellknown implements the pure rewrite rules that recognize
// bundler-relevant globals — require, import, the fs and path module
// namespaces, and __dirname — inside the value lattice. Each rule is applied
// once by Replace; the linker (internal/linker) is responsible for driving
// the rules to a fixpoint and for caching.
//
// Grounded on the rewrite table turbopack's replace_well_known builds in
// original_source/crates/turbopack/src/ecmascript/references.rs.
package wellknown

import (
	"path"
	"strings"

	"github.com/jsbundle/refscan/internal/jsvalue"
)

// fsReadMethods fixes the set of fs methods whose first argument is treated
// as an asset reference (see SPEC_FULL.md §4.C.1). Methods that write,
// delete, or watch are deliberately excluded.
var fsReadMethods = map[string]bool{
	"readFile":         true,
	"readFileSync":     true,
	"readdir":          true,
	"readdirSync":      true,
	"createReadStream": true,
	"existsSync":       true,
	"statSync":         true,
	"lstatSync":        true,
	"realpathSync":     true,
}

// IsFsReadMethod reports whether name is one of the fixed fs read-method
// names.
func IsFsReadMethod(name string) bool { return fsReadMethods[name] }

// SourceDir is the directory __dirname and __filename resolve against, one
// per source file, supplied by the embedder through the collaborator
// interfaces rather than hard-coded here.
type SourceDir struct {
	Dirname  string
	Filename string
}

// Replace applies every rewrite rule this package knows once, at the
// current node only — except that an Alternatives has the rules applied
// once to each of its branches. It never recurses into any other children
// and never retries.
// It returns the (possibly unchanged) value and whether anything changed.
// Driving this to a fixpoint over a whole tree is internal/linker's job.
func Replace(v jsvalue.Value, dir SourceDir) (jsvalue.Value, bool) {
	switch val := v.(type) {
	case *jsvalue.FreeVar:
		return replaceFreeVar(val, dir)

	case *jsvalue.Module:
		switch val.Name {
		case "path":
			return &jsvalue.WellKnownObject{Kind: jsvalue.WellKnownObjectPathModule}, true
		case "fs", "fs/promises":
			return &jsvalue.WellKnownObject{Kind: jsvalue.WellKnownObjectFsModule}, true
		case "process":
			return &jsvalue.WellKnownObject{Kind: jsvalue.WellKnownObjectProcessModule}, true
		}
		return v, false

	case *jsvalue.MemberAccess:
		return replaceMemberAccess(val)

	case *jsvalue.Call:
		return replaceCall(val)

	case *jsvalue.Alternatives:
		changed := false
		out := make([]jsvalue.Value, len(val.Values))
		for i, branch := range val.Values {
			r, didChange := Replace(branch, dir)
			out[i] = r
			changed = changed || didChange
		}
		if !changed {
			return v, false
		}
		return &jsvalue.Alternatives{Values: out}, true
	}

	return v, false
}

func replaceFreeVar(val *jsvalue.FreeVar, dir SourceDir) (jsvalue.Value, bool) {
	switch val.Kind {
	case jsvalue.FreeVarRequire:
		return &jsvalue.WellKnownFunction{Kind: jsvalue.WellKnownFunctionRequire}, true
	case jsvalue.FreeVarImport:
		return &jsvalue.WellKnownFunction{Kind: jsvalue.WellKnownFunctionImport}, true
	case jsvalue.FreeVarDirname:
		return jsvalue.Str(dir.Dirname), true
	case jsvalue.FreeVarFilename:
		return jsvalue.Str(dir.Filename), true
	}
	return val, false
}

func replaceMemberAccess(val *jsvalue.MemberAccess) (jsvalue.Value, bool) {
	name, isStaticName := staticPropertyName(val.Property)
	if !isStaticName {
		return val, false
	}

	obj, ok := val.Object.(*jsvalue.WellKnownObject)
	if !ok {
		if fn, ok := val.Object.(*jsvalue.WellKnownFunction); ok && fn.Kind == jsvalue.WellKnownFunctionRequire && name == "resolve" {
			return &jsvalue.WellKnownFunction{Kind: jsvalue.WellKnownFunctionRequireResolve}, true
		}
		return val, false
	}

	switch obj.Kind {
	case jsvalue.WellKnownObjectFsModule:
		if IsFsReadMethod(name) {
			return &jsvalue.WellKnownFunction{Kind: jsvalue.WellKnownFunctionFsReadMethod, FsMethodName: name}, true
		}
	case jsvalue.WellKnownObjectPathModule:
		switch name {
		case "join":
			return &jsvalue.WellKnownFunction{Kind: jsvalue.WellKnownFunctionPathJoin}, true
		case "resolve":
			return &jsvalue.WellKnownFunction{Kind: jsvalue.WellKnownFunctionPathResolve}, true
		case "dirname":
			return &jsvalue.WellKnownFunction{Kind: jsvalue.WellKnownFunctionPathDirname}, true
		}
	}
	return val, false
}

func staticPropertyName(prop jsvalue.Value) (string, bool) {
	if c, ok := prop.(*jsvalue.Constant); ok && c.Kind == jsvalue.ConstString {
		return c.Str, true
	}
	return "", false
}

func replaceCall(val *jsvalue.Call) (jsvalue.Value, bool) {
	fn, ok := val.Callee.(*jsvalue.WellKnownFunction)
	if !ok {
		return val, false
	}

	switch fn.Kind {
	case jsvalue.WellKnownFunctionPathJoin, jsvalue.WellKnownFunctionPathResolve:
		literals, ok := allStringLiterals(val.Args)
		if !ok {
			return val, false
		}
		var joined string
		if fn.Kind == jsvalue.WellKnownFunctionPathJoin {
			joined = path.Join(literals...)
		} else {
			joined = path.Clean(strings.Join(literals, "/"))
		}
		return jsvalue.Str(joined), true

	case jsvalue.WellKnownFunctionPathDirname:
		literals, ok := allStringLiterals(val.Args)
		if !ok || len(literals) != 1 {
			return val, false
		}
		return jsvalue.Str(path.Dir(literals[0])), true
	}

	// Require/RequireResolve/Import/FsReadMethod calls are left alone here —
	// they are surfaced as effects (component F), not reduced in place.
	return val, false
}

func allStringLiterals(args []jsvalue.Value) ([]string, bool) {
	out := make([]string, len(args))
	for i, a := range args {
		c, ok := a.(*jsvalue.Constant)
		if !ok || c.Kind != jsvalue.ConstString {
			return nil, false
		}
		out[i] = c.Str
	}
	return out, true
}
