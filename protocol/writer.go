package protocol

import (
	"bytes"
	"fmt"
	"strconv"
)

var (
	crlfBytes      = []byte(CRLF)
	nullBulkBytes  = []byte("$-1\r\n")
	nullArrayBytes = []byte("*-1\r\n")
)

// Write appends the wire encoding of the message to dst and returns
// the number of bytes written. It produces byte-for-byte the grammar
// Parse accepts, so Parse followed by Write reproduces the input.
//
// Write validates the construction invariants instead of assuming
// them: a scalar without a payload, or an array whose cached count no
// longer matches its elements, reports ErrInvariantViolation. dst may
// contain a partial message after such an error and should be
// discarded by the caller.
func (m Message) Write(dst *bytes.Buffer) (int, error) {
	switch m.Kind {
	case KindSimpleString, KindInteger, KindError:
		if m.Data == nil {
			return 0, fmt.Errorf("%w: %q message without payload", ErrInvariantViolation, byte(m.Kind))
		}
		dst.WriteByte(byte(m.Kind))
		dst.Write(m.Data)
		dst.Write(crlfBytes)
		return 1 + len(m.Data) + 2, nil

	case KindBulkString:
		if m.Data == nil {
			dst.Write(nullBulkBytes)
			return nullValueSize, nil
		}
		dst.WriteByte(byte(m.Kind))
		lenLen := writeLength(dst, len(m.Data))
		dst.Write(crlfBytes)
		dst.Write(m.Data)
		dst.Write(crlfBytes)
		return 1 + lenLen + 2 + len(m.Data) + 2, nil

	case KindArray:
		if m.Array == nil {
			dst.Write(nullArrayBytes)
			return nullValueSize, nil
		}
		if m.Data == nil || string(m.Data) != strconv.Itoa(len(m.Array)) {
			return 0, fmt.Errorf("%w: array count %q does not match %d elements",
				ErrInvariantViolation, m.Data, len(m.Array))
		}
		dst.WriteByte(byte(m.Kind))
		dst.Write(m.Data)
		dst.Write(crlfBytes)
		written := 1 + len(m.Data) + 2
		for i := range m.Array {
			n, err := m.Array[i].Write(dst)
			if err != nil {
				return written + n, err
			}
			written += n
		}
		return written, nil

	default:
		return 0, fmt.Errorf("%w: marker %q", ErrUnknownKind, byte(m.Kind))
	}
}

// writeLength appends the decimal encoding of a non-negative length
// and returns the digit count, which matches lenDigits by definition.
func writeLength(dst *bytes.Buffer, n int) int {
	var scratch [20]byte
	digits := strconv.AppendInt(scratch[:0], int64(n), 10)
	dst.Write(digits)
	return len(digits)
}
