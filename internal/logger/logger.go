package logger

// This mirrors the message model of esbuild's internal/logger package:
// messages are streamed through a small struct of closures rather than a
// concrete sink, so that a deferred/buffering implementation and a
// straight-through implementation can share every call site. The terminal
// rendering, summary tables, and CLI argument sniffing that the original
// carries are dropped here — this module never writes to a terminal.

import (
	"sort"
	"strings"
	"sync"
)

type Log struct {
	AddMsg    func(Msg)
	HasErrors func() bool
	Done      func() []Msg
}

type LogLevel int8

const (
	LevelNone LogLevel = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelSilent
)

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
	Note
)

func (kind MsgKind) String() string {
	switch kind {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		panic("internal error")
	}
}

type Msg struct {
	Kind MsgKind
	Data MsgData
	ID   MsgID
}

type MsgData struct {
	Text     string
	Location *MsgLocation
}

type MsgLocation struct {
	File     string
	Line     int // 1-based
	Column   int // 0-based, in bytes
	Length   int // in bytes
	LineText string
}

// Loc is a 0-based byte offset from the start of the source file.
type Loc struct {
	Start int32
}

type Range struct {
	Loc Loc
	Len int32
}

func (r Range) End() int32 {
	return r.Loc.Start + r.Len
}

type SortableMsgs []Msg

func (a SortableMsgs) Len() int      { return len(a) }
func (a SortableMsgs) Swap(i, j int) { a[i], a[j] = a[j], a[i] }

func (a SortableMsgs) Less(i, j int) bool {
	ai, aj := a[i], a[j]
	aiLoc, ajLoc := ai.Data.Location, aj.Data.Location
	if aiLoc == nil || ajLoc == nil {
		return aiLoc == nil && ajLoc != nil
	}
	if aiLoc.File != ajLoc.File {
		return aiLoc.File < ajLoc.File
	}
	if aiLoc.Line != ajLoc.Line {
		return aiLoc.Line < ajLoc.Line
	}
	if aiLoc.Column != ajLoc.Column {
		return aiLoc.Column < ajLoc.Column
	}
	return ai.Data.Text < aj.Data.Text
}

// Path is used as the unique key for a Source. Namespace distinguishes a
// real file path from an opaque synthetic module id.
type Path struct {
	Text      string
	Namespace string
}

type Source struct {
	Index uint32

	// Unique key for this source; never shown to the user.
	KeyPath Path

	// Shown to the user in diagnostics.
	PrettyPath string

	Contents string
}

func (s *Source) TextForRange(r Range) string {
	return s.Contents[r.Loc.Start : r.Loc.Start+r.Len]
}

func computeLineAndColumn(contents string, offset int) (lineCount int, columnCount int, lineStart int, lineEnd int) {
	var prevCodePoint rune
	if offset > len(contents) {
		offset = len(contents)
	}

	for i, codePoint := range contents[:offset] {
		switch codePoint {
		case '\n':
			lineStart = i + 1
			if prevCodePoint != '\r' {
				lineCount++
			}
		case '\r':
			lineStart = i + 1
			lineCount++
		case ' ', ' ':
			lineStart = i + 3
			lineCount++
		}
		prevCodePoint = codePoint
	}

	lineEnd = len(contents)
loop:
	for i, codePoint := range contents[offset:] {
		switch codePoint {
		case '\r', '\n', ' ', ' ':
			lineEnd = offset + i
			break loop
		}
	}

	columnCount = offset - lineStart
	return
}

func LocationOrNil(source *Source, r Range) *MsgLocation {
	if source == nil {
		return nil
	}
	lineCount, columnCount, lineStart, lineEnd := computeLineAndColumn(source.Contents, int(r.Loc.Start))
	return &MsgLocation{
		File:     source.PrettyPath,
		Line:     lineCount + 1,
		Column:   columnCount,
		Length:   int(r.Len),
		LineText: source.Contents[lineStart:lineEnd],
	}
}

func RangeData(source *Source, r Range, text string) MsgData {
	return MsgData{
		Text:     text,
		Location: LocationOrNil(source, r),
	}
}

func (log Log) AddError(source *Source, loc Loc, text string) {
	log.AddMsg(Msg{Kind: Error, Data: RangeData(source, Range{Loc: loc}, text)})
}

func (log Log) AddRangeWarningWithID(source *Source, r Range, text string, id MsgID) {
	log.AddMsg(Msg{Kind: Warning, Data: RangeData(source, r, text), ID: id})
}

// String renders a message as plain text, with no color and no terminal
// width awareness, suitable for logs and test failure output.
func (msg Msg) String() string {
	loc := msg.Data.Location
	if loc == nil {
		return msg.Kind.String() + ": " + msg.Data.Text
	}
	sb := strings.Builder{}
	sb.WriteString(loc.File)
	sb.WriteByte(':')
	sb.WriteString(itoa(loc.Line))
	sb.WriteByte(':')
	sb.WriteString(itoa(loc.Column))
	sb.WriteString(": ")
	sb.WriteString(msg.Kind.String())
	sb.WriteString(": ")
	sb.WriteString(msg.Data.Text)
	return sb.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// NewDeferLog buffers every message instead of printing it, sorting the
// buffered messages on Done. This is the only Log implementation this
// module needs, since it has no terminal to stream to — the embedder
// decides what to do with the final slice.
func NewDeferLog() Log {
	var msgs SortableMsgs
	var mutex sync.Mutex
	var hasErrors bool

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			if msg.Kind == Error {
				hasErrors = true
			}
			msgs = append(msgs, msg)
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return hasErrors
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			sort.Stable(msgs)
			return msgs
		},
	}
}
