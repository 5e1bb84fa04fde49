// Package respcodec provides the stream codec that frames Redis
// Serialization Protocol (RESP) connections: it turns an accumulating
// input buffer into parsed messages and appends outgoing messages to an
// output buffer.
//
// The codec holds no state beyond its configuration. Each connection
// owns its own input and output buffers and its decode/encode calls are
// synchronous, so one codec instance can be shared across connections
// or created per connection, whichever the transport prefers.
//
// Basic usage:
//
//	codec, err := respcodec.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	var in bytes.Buffer
//	for {
//		in.Write(chunkFromTransport())
//		for {
//			msg, err := codec.Decode(&in)
//			if err != nil {
//				// fatal protocol error, drop the connection
//			}
//			if msg == nil {
//				break // need more bytes
//			}
//			// handle msg, encode a reply
//		}
//	}
//
// Message parsing and serialization themselves live in the protocol
// subpackage; keyspace slot math for the surrounding proxy lives in the
// routing subpackage; a minimal framed TCP server is provided by the
// server subpackage.
package respcodec
