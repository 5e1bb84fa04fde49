package server

import (
	"bytes"
	"context"
	"io"
	"net"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	respcodec "github.com/raniellyferreira/redis-resp-codec"
	"github.com/raniellyferreira/redis-resp-codec/protocol"
)

// ErrMessageTooLarge is returned when a connection accumulates more
// bytes than the configured limit without forming a complete message.
var ErrMessageTooLarge = errors.New("message too large")

// client is one framed connection. The read loop accumulates transport
// bytes and decodes them into the request queue; the serve loop applies
// the handler and writes encoded replies back, preserving order.
type client struct {
	server *Server
	conn   net.Conn

	in       bytes.Buffer
	out      bytes.Buffer
	requests chan *protocol.Message
}

func newClient(s *Server, conn net.Conn) *client {
	return &client{
		server:   s,
		conn:     conn,
		requests: make(chan *protocol.Message, s.queueDepth),
	}
}

// run drives the connection until EOF, a fatal protocol error, or
// server shutdown.
func (c *client) run(ctx context.Context) {
	defer c.conn.Close()

	group, child := errgroup.WithContext(ctx)

	// The read loop blocks in conn.Read with no deadline, so closing
	// the conn is the only way a failure in the other loop (or server
	// shutdown) can unblock it.
	stop := context.AfterFunc(child, c.close)
	defer stop()

	group.Go(func() error { return c.readLoop(child) })
	group.Go(func() error { return c.serveLoop(child) })

	err := group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		c.server.logger.Info("connection closed",
			respcodec.Field{Key: "remote", Value: c.conn.RemoteAddr().String()},
			respcodec.Field{Key: "err", Value: err})
	}
}

// close unblocks the loops by closing the underlying connection.
func (c *client) close() {
	c.conn.Close()
}

// readLoop accumulates bytes from the transport and decodes every
// complete message into the request queue. A fatal protocol error
// terminates the connection: the stream cannot be re-synchronized.
func (c *client) readLoop(ctx context.Context) error {
	chunk := make([]byte, 4096)

	for {
		n, readErr := c.conn.Read(chunk)
		if n > 0 {
			c.in.Write(chunk[:n])

			for {
				msg, err := c.server.codec.Decode(&c.in)
				if err != nil {
					c.server.addError()
					return errors.Wrap(err, "decode")
				}
				if msg == nil {
					break // need more bytes
				}
				c.server.addMessage()

				select {
				case c.requests <- msg:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			if c.in.Len() > c.server.maxBuffered {
				c.server.addError()
				return ErrMessageTooLarge
			}
		}

		if readErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(readErr, io.EOF) || errors.Is(readErr, net.ErrClosed) {
				// Clean half-close. Returning nil keeps the group
				// context alive so the serve loop can still answer
				// every request already queued.
				close(c.requests)
				return nil
			}
			return errors.Wrap(readErr, "read")
		}
	}
}

// serveLoop applies the handler to each decoded request and writes the
// encoded reply, one at a time so replies keep request order.
func (c *client) serveLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok := <-c.requests:
			if !ok {
				return nil
			}
			reply := c.server.handler.Handle(ctx, req)

			c.out.Reset()
			if err := c.server.codec.Encode(reply, &c.out); err != nil {
				c.server.addError()
				return errors.Wrap(err, "encode")
			}
			if _, err := c.conn.Write(c.out.Bytes()); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.Wrap(err, "write")
			}
		}
	}
}

func (s *Server) addMessage() {
	atomic.AddInt64(&s.messageCount, 1)
}

func (s *Server) addError() {
	atomic.AddInt64(&s.errorCount, 1)
}
