package logger

// Diagnostics from this module are tagged with a stable id so that the
// embedding bundler can classify or suppress them (esbuild's own
// internal/logger/msg_ids.go does the same for its much larger message set).
// Unlike esbuild's ids, which are dense integers, these are printed directly
// as the wire-stable strings the spec names, so MsgID is a string enum
// instead of a uint8 — a new id here is a deliberate spec-level addition,
// not a renumbering hazard.
type MsgID string

const (
	MsgID_None MsgID = ""

	// A dynamic import() whose argument didn't reduce to a literal or a
	// finite set of literals.
	MsgID_FailedToAnalyse_DynamicImport MsgID = "failed-to-analyse/ecmascript/dynamic-import"

	// A require(...) whose argument didn't reduce to a literal or a finite
	// set of literals; also every require.resolve(...) call, which is
	// diagnosed whatever its argument.
	MsgID_FailedToAnalyse_Require MsgID = "failed-to-analyse/ecmascript/require"

	// An fs.readFile-family call whose path argument didn't reduce to a
	// literal or a finite set of literals.
	MsgID_FailedToAnalyse_FsMethod MsgID = "failed-to-analyse/ecmascript/fs-method"
)
