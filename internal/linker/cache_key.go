package linker

import (
	"encoding/binary"
	"hash"
	"strconv"

	"github.com/jsbundle/refscan/internal/jsvalue"
)

// encode writes a canonical byte encoding of v to h: a type tag followed by
// the tag-specific fields, recursing into children in a fixed order. It
// exists only to feed the LinkCache's xxhash key — internal/jsvalue.Equal
// is the source of truth for whether two values are "the same", this only
// needs to agree with Equal often enough to make the cache a performance
// win, not a correctness requirement.
func encode(h hash.Hash, v jsvalue.Value) {
	switch val := v.(type) {
	case *jsvalue.Constant:
		tag(h, 1)
		writeU8(h, uint8(val.Kind))
		writeString(h, val.Str)
		writeString(h, strconv.FormatFloat(val.Num, 'g', -1, 64))
		writeBool(h, val.Bool)

	case *jsvalue.FreeVar:
		tag(h, 2)
		writeU8(h, uint8(val.Kind))
		writeString(h, val.Name)

	case *jsvalue.Module:
		tag(h, 3)
		writeString(h, val.Name)

	case *jsvalue.WellKnownFunction:
		tag(h, 4)
		writeU8(h, uint8(val.Kind))
		writeString(h, val.FsMethodName)

	case *jsvalue.WellKnownObject:
		tag(h, 5)
		writeU8(h, uint8(val.Kind))

	case *jsvalue.Variable:
		tag(h, 6)
		writeU32(h, val.Ref.SourceIndex)
		writeU32(h, val.Ref.InnerIndex)

	case *jsvalue.MemberAccess:
		tag(h, 7)
		encode(h, val.Object)
		encode(h, val.Property)

	case *jsvalue.Call:
		tag(h, 8)
		encode(h, val.Callee)
		if val.This != nil {
			writeU8(h, 1)
			encode(h, val.This)
		} else {
			writeU8(h, 0)
		}
		writeU32(h, uint32(len(val.Args)))
		for _, a := range val.Args {
			encode(h, a)
		}

	case *jsvalue.Concat:
		tag(h, 9)
		writeU32(h, uint32(len(val.Parts)))
		for _, p := range val.Parts {
			encode(h, p)
		}

	case *jsvalue.Add:
		tag(h, 10)
		encode(h, val.Left)
		encode(h, val.Right)

	case *jsvalue.Alternatives:
		tag(h, 11)
		writeU32(h, uint32(len(val.Values)))
		for _, a := range val.Values {
			encode(h, a)
		}

	case *jsvalue.Unknown:
		tag(h, 12)

	default:
		tag(h, 0)
	}
}

func tag(h hash.Hash, t uint8)        { writeU8(h, t) }
func writeU8(h hash.Hash, b uint8)    { h.Write([]byte{b}) }
func writeBool(h hash.Hash, b bool) {
	if b {
		writeU8(h, 1)
	} else {
		writeU8(h, 0)
	}
}

func writeU32(h hash.Hash, n uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], n)
	h.Write(buf[:])
}

func writeString(h hash.Hash, s string) {
	writeU32(h, uint32(len(s)))
	h.Write([]byte(s))
}
