// Package protocol implements the Redis Serialization Protocol (RESP)
// framing layer: parsing raw bytes into messages and serializing
// messages back into the exact wire bytes.
//
// Unlike stream-oriented parsers, Parse operates on a plain byte slice
// and distinguishes "not enough bytes yet" (ErrMoreData) from malformed
// input, which makes it suitable for incremental decoding against an
// accumulating connection buffer:
//
//	msg, err := protocol.Parse(buf)
//	if errors.Is(err, protocol.ErrMoreData) {
//		// read more bytes and retry
//	}
//
// After a successful parse, BinarySize reports the exact number of
// bytes the message occupies on the wire, so a caller can advance its
// read cursor without re-walking the input.
//
// The package supports the five RESP data types:
//   - Simple Strings
//   - Errors
//   - Integers
//   - Bulk Strings (including the null bulk string)
//   - Arrays (including the null array)
package protocol
