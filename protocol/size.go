package protocol

// nullValueSize is the wire size of $-1\r\n and *-1\r\n.
const nullValueSize = 5

// BinarySize returns the exact number of bytes the message occupies on
// the wire, without serializing it. For a message produced by Parse it
// equals the number of bytes the parser consumed, which lets a stream
// reader advance its cursor precisely.
//
// The result assumes the construction invariants hold; BinarySize
// returns 0 for an unrecognized kind.
func (m Message) BinarySize() int {
	switch m.Kind {
	case KindSimpleString, KindInteger, KindError:
		return 1 + len(m.Data) + 2

	case KindBulkString:
		if m.Data == nil {
			return nullValueSize
		}
		return 1 + lenDigits(len(m.Data)) + 2 + len(m.Data) + 2

	case KindArray:
		if m.Array == nil {
			return nullValueSize
		}
		size := 1 + len(m.Data) + 2
		for _, el := range m.Array {
			size += el.BinarySize()
		}
		return size

	default:
		return 0
	}
}

// lenDigits returns the number of ASCII decimal digits the serializer
// writes for a non-negative length n, with lenDigits(0) == 1. Sizing
// and writing share this single definition: the cursor advance in the
// stream codec is only correct because the two agree exactly.
func lenDigits(n int) int {
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}
	return d
}
