package respcodec

import (
	"bytes"
	"errors"

	"github.com/raniellyferreira/redis-resp-codec/protocol"
)

// Codec frames a RESP byte stream. Decode consumes complete messages
// from an accumulating input buffer; Encode appends messages to an
// output buffer. The codec itself is stateless apart from its
// configuration, so it is safe to reuse across connections as long as
// each connection keeps its own buffers.
type Codec struct {
	maxDepth int
	logger   Logger
	metrics  MetricsCollector
}

// New creates a Codec with the given options.
func New(opts ...Option) (*Codec, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return &Codec{
		maxDepth: cfg.maxDepth,
		logger:   cfg.logger,
		metrics:  cfg.metrics,
	}, nil
}

// Decode attempts to parse one message from the front of in.
//
// When in does not yet hold a complete message, Decode returns
// (nil, nil) and leaves the buffer untouched; the caller should retry
// after writing more bytes into it. On success the buffer is advanced
// past the message's exact wire size. Any returned error is fatal for
// the stream, since RESP cannot be re-synchronized after corruption;
// the buffer is left untouched so the caller can inspect it before
// dropping the connection.
func (c *Codec) Decode(in *bytes.Buffer) (*protocol.Message, error) {
	msg, err := protocol.ParseDepth(in.Bytes(), c.maxDepth)
	if err != nil {
		if errors.Is(err, protocol.ErrMoreData) {
			return nil, nil
		}
		if c.metrics != nil {
			c.metrics.RecordProtocolError("decode")
		}
		return nil, err
	}

	size := msg.BinarySize()
	in.Next(size)

	c.logger.Debug("decoded message", Field{Key: "bytes", Value: size})
	if c.metrics != nil {
		c.metrics.RecordDecode(size)
	}
	return &msg, nil
}

// Encode appends the wire encoding of msg to out. The output buffer
// grows as needed and previously encoded messages are never
// overwritten. On an invariant violation out may hold a partial
// message and should be discarded.
func (c *Codec) Encode(msg protocol.Message, out *bytes.Buffer) error {
	n, err := msg.Write(out)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordProtocolError("encode")
		}
		return err
	}

	c.logger.Debug("encoded message", Field{Key: "bytes", Value: n})
	if c.metrics != nil {
		c.metrics.RecordEncode(n)
	}
	return nil
}
