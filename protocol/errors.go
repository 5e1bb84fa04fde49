package protocol

import "errors"

// Error values returned by parsing and serialization.
//
// ErrMoreData is the only recoverable error: it means the input does
// not yet contain a complete message and the caller should retry after
// buffering more bytes. Every other error is fatal for the byte stream
// it was produced from, since RESP offers no way to re-synchronize
// after corruption.
var (
	// ErrMoreData indicates the buffer does not yet hold a complete message.
	ErrMoreData = errors.New("incomplete RESP message")

	// ErrMalformedLength indicates a length or count field that is not a
	// valid decimal integer, or a negative value other than the null
	// encoding (-1).
	ErrMalformedLength = errors.New("malformed RESP length")

	// ErrBadTerminator indicates a line or bulk payload that is not
	// terminated by CRLF.
	ErrBadTerminator = errors.New("missing CRLF terminator")

	// ErrUnknownKind indicates a type marker outside the five recognized
	// RESP kinds. Corrupted or adversarial input surfaces here instead of
	// crashing the process.
	ErrUnknownKind = errors.New("unknown RESP message kind")

	// ErrTooDeep indicates array nesting beyond the configured maximum
	// depth. The guard bounds recursion against hostile input.
	ErrTooDeep = errors.New("RESP message nested too deeply")

	// ErrInvariantViolation indicates a message whose fields are
	// inconsistent for its kind, such as a scalar without a payload or an
	// array whose cached count no longer matches its elements.
	ErrInvariantViolation = errors.New("RESP message invariant violation")
)
