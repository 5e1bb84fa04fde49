package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the wire type of a RESP message. The value of each
// kind is its one-byte wire marker.
type Kind byte

const (
	// RESP message kinds
	KindSimpleString Kind = '+'
	KindError        Kind = '-'
	KindInteger      Kind = ':'
	KindBulkString   Kind = '$'
	KindArray        Kind = '*'
)

// CRLF is the RESP line terminator
const CRLF = "\r\n"

// Message represents one RESP unit: a scalar or an array of units.
//
// Data holds the payload bytes. For scalar kinds it is the literal text
// between the marker and the terminator. For a bulk string it is the
// string itself, or nil for the null bulk string. For a non-null array
// it caches the ASCII decimal element count; for a null array it is nil.
//
// Array holds the elements of a non-null array and is nil otherwise.
// Elements are owned exclusively by their parent, so a message forms a
// tree with no shared references.
//
// A nil slice encodes the protocol's null value; a zero-length non-nil
// slice is an ordinary empty string or empty array. Messages should be
// built through the constructors, which keep the cached array count in
// sync with the elements. Code that mutates Array directly must rebuild
// the message with NewArray before sizing or serializing it.
type Message struct {
	Kind  Kind
	Data  []byte
	Array []Message
}

// NewPlain builds a scalar message, or a bulk string when kind is
// KindBulkString. Passing nil data with KindBulkString produces the
// null bulk string; scalar kinds require a payload and serialization
// reports ErrInvariantViolation when it is missing.
func NewPlain(kind Kind, data []byte) Message {
	return Message{Kind: kind, Data: data}
}

// NewArray builds an array message, deriving the cached element count
// from elems. A nil elems produces the null array. This is the only
// sanctioned way to build an array: it makes a count/length mismatch
// impossible by construction.
func NewArray(elems []Message) Message {
	if elems == nil {
		return Message{Kind: KindArray}
	}
	return Message{
		Kind:  KindArray,
		Data:  strconv.AppendInt(nil, int64(len(elems)), 10),
		Array: elems,
	}
}

// NewSimpleString builds a simple string message.
func NewSimpleString(s string) Message {
	return NewPlain(KindSimpleString, []byte(s))
}

// NewError builds an error message.
func NewError(msg string) Message {
	return NewPlain(KindError, []byte(msg))
}

// NewInteger builds an integer message.
func NewInteger(n int64) Message {
	return NewPlain(KindInteger, strconv.AppendInt(nil, n, 10))
}

// NewBulkString builds a bulk string message. A nil value produces the
// null bulk string.
func NewBulkString(data []byte) Message {
	return NewPlain(KindBulkString, data)
}

// NewNullBulkString builds the null bulk string ($-1).
func NewNullBulkString() Message {
	return Message{Kind: KindBulkString}
}

// NewNullArray builds the null array (*-1).
func NewNullArray() Message {
	return Message{Kind: KindArray}
}

// NewCommand builds a client request: an array of bulk strings whose
// first element is the command name.
func NewCommand(name string, args ...string) Message {
	elems := make([]Message, 0, 1+len(args))
	elems = append(elems, NewBulkString([]byte(name)))
	for _, arg := range args {
		elems = append(elems, NewBulkString([]byte(arg)))
	}
	return NewArray(elems)
}

// IsNull reports whether the message is the null bulk string or the
// null array. Scalar kinds are never null.
func (m Message) IsNull() bool {
	switch m.Kind {
	case KindBulkString:
		return m.Data == nil
	case KindArray:
		return m.Array == nil
	default:
		return false
	}
}

// IsError reports whether the message is an error value.
func (m Message) IsError() bool {
	return m.Kind == KindError
}

// Len returns the number of elements of a non-null array, and 0 for
// every other message.
func (m Message) Len() int {
	return len(m.Array)
}

// Get returns the i-th element of an array message, or false when the
// message is not an array or the index is out of range.
func (m Message) Get(i int) (Message, bool) {
	if m.Kind != KindArray || i < 0 || i >= len(m.Array) {
		return Message{}, false
	}
	return m.Array[i], true
}

// Int parses the payload as a signed decimal integer. It is meaningful
// for integer messages and for bulk strings carrying numeric text.
func (m Message) Int() (int64, error) {
	if m.Data == nil {
		return 0, fmt.Errorf("%w: no payload to parse as integer", ErrInvariantViolation)
	}
	return strconv.ParseInt(string(m.Data), 10, 64)
}

// CommandName returns the payload of the first element of a request
// array, i.e. the command name. It reports ErrInvariantViolation when
// the message is not a non-null array with at least one element whose
// first entry carries a payload.
func (m Message) CommandName() ([]byte, error) {
	if m.Kind != KindArray || m.Array == nil {
		return nil, fmt.Errorf("%w: command must be a non-null array", ErrInvariantViolation)
	}
	if len(m.Array) == 0 {
		return nil, fmt.Errorf("%w: command array is empty", ErrInvariantViolation)
	}
	first := m.Array[0]
	if first.Data == nil {
		return nil, fmt.Errorf("%w: command name has no payload", ErrInvariantViolation)
	}
	return first.Data, nil
}

// String returns a human-readable rendering of the message, intended
// for logs and debugging rather than wire output.
func (m Message) String() string {
	switch m.Kind {
	case KindSimpleString, KindInteger:
		return string(m.Data)
	case KindError:
		return "(error) " + string(m.Data)
	case KindBulkString:
		if m.Data == nil {
			return "(nil)"
		}
		return string(m.Data)
	case KindArray:
		if m.Array == nil {
			return "(nil)"
		}
		parts := make([]string, len(m.Array))
		for i, el := range m.Array {
			parts[i] = el.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("unknown kind %c", byte(m.Kind))
	}
}
