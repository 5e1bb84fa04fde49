package protocol

import (
	"bytes"
	"fmt"
)

const (
	// DefaultMaxDepth bounds array nesting accepted by Parse.
	DefaultMaxDepth = 64

	// maxBulkLen is the maximum accepted bulk string length (1GB)
	maxBulkLen = 1024 * 1024 * 1024

	// maxArrayLen is the maximum accepted array element count
	maxArrayLen = 1024 * 1024
)

// Parse reads exactly one RESP message from the front of src.
//
// It returns ErrMoreData when src does not yet contain a complete
// message; callers should treat that as "retry once more bytes arrive",
// not as a protocol violation. Any other error is fatal for the stream.
//
// The number of bytes the returned message occupied in src is available
// through BinarySize, so no separate consumed count is returned.
func Parse(src []byte) (Message, error) {
	return ParseDepth(src, DefaultMaxDepth)
}

// ParseDepth is Parse with an explicit maximum array nesting depth.
// Input nested deeper than maxDepth fails with ErrTooDeep.
func ParseDepth(src []byte, maxDepth int) (Message, error) {
	if maxDepth < 1 {
		return Message{}, ErrTooDeep
	}
	if len(src) == 0 {
		return Message{}, ErrMoreData
	}

	nl := bytes.IndexByte(src, '\n')
	if nl < 0 {
		return Message{}, ErrMoreData
	}

	// line holds the marker, the first-line content and the trailing CR.
	line := src[:nl]
	if len(line) < 1 {
		return Message{}, fmt.Errorf("%w: empty line", ErrUnknownKind)
	}

	kind := Kind(line[0])
	switch kind {
	case KindSimpleString, KindInteger, KindError:
		payload, err := trimLine(line)
		if err != nil {
			return Message{}, err
		}
		return Message{Kind: kind, Data: cloneBytes(payload)}, nil

	case KindBulkString:
		lengthText, err := trimLine(line)
		if err != nil {
			return Message{}, err
		}
		length, err := parseLength(lengthText)
		if err != nil {
			return Message{}, err
		}
		if length == -1 {
			return Message{Kind: kind}, nil
		}
		if length > maxBulkLen {
			return Message{}, fmt.Errorf("%w: bulk length %d exceeds limit", ErrMalformedLength, length)
		}

		// The declared length delimits the payload, so it may contain
		// CR and LF bytes freely.
		body := src[nl+1:]
		if len(body) < length+2 {
			return Message{}, ErrMoreData
		}
		if body[length] != '\r' || body[length+1] != '\n' {
			return Message{}, fmt.Errorf("%w: bulk string not closed by CRLF", ErrBadTerminator)
		}
		return Message{Kind: kind, Data: cloneBytes(body[:length])}, nil

	case KindArray:
		countText, err := trimLine(line)
		if err != nil {
			return Message{}, err
		}
		count, err := parseLength(countText)
		if err != nil {
			return Message{}, err
		}
		if count == -1 {
			return Message{Kind: kind}, nil
		}
		if count > maxArrayLen {
			return Message{}, fmt.Errorf("%w: array count %d exceeds limit", ErrMalformedLength, count)
		}

		elems := make([]Message, 0, count)
		offset := nl + 1
		for i := 0; i < count; i++ {
			elem, err := ParseDepth(src[offset:], maxDepth-1)
			if err != nil {
				return Message{}, err
			}
			offset += elem.BinarySize()
			elems = append(elems, elem)
		}
		return Message{Kind: kind, Data: cloneBytes(countText), Array: elems}, nil

	default:
		return Message{}, fmt.Errorf("%w: marker %q (0x%02x)", ErrUnknownKind, byte(kind), byte(kind))
	}
}

// trimLine strips the marker and the trailing CR from a first line that
// already excludes the LF.
func trimLine(line []byte) ([]byte, error) {
	if len(line) < 2 || line[len(line)-1] != '\r' {
		return nil, fmt.Errorf("%w: line not closed by CRLF", ErrBadTerminator)
	}
	return line[1 : len(line)-1], nil
}

// parseLength parses a signed decimal length or count field. The only
// accepted negative value is -1, the null encoding.
func parseLength(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, fmt.Errorf("%w: empty length field", ErrMalformedLength)
	}

	neg := false
	i := 0
	if b[0] == '-' {
		neg = true
		i = 1
	}
	if i >= len(b) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedLength, b)
	}
	// A leading zero (other than the exact field "0") would make the
	// reported binary size disagree with the bytes consumed.
	if b[i] == '0' && len(b)-i > 1 {
		return 0, fmt.Errorf("%w: leading zero in %q", ErrMalformedLength, b)
	}

	n := 0
	for ; i < len(b); i++ {
		if b[i] < '0' || b[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrMalformedLength, b)
		}
		if n > (1<<62)/10 {
			return 0, fmt.Errorf("%w: %q overflows", ErrMalformedLength, b)
		}
		n = n*10 + int(b[i]-'0')
	}

	if neg {
		if n != 1 {
			return 0, fmt.Errorf("%w: negative length %q", ErrMalformedLength, b)
		}
		return -1, nil
	}
	return n, nil
}

// cloneBytes copies a slice of the input buffer into an owned buffer.
// The result is non-nil even for empty payloads, since nil encodes the
// protocol's null value.
func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
