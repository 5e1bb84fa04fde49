package server

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	respcodec "github.com/raniellyferreira/redis-resp-codec"
	"github.com/raniellyferreira/redis-resp-codec/protocol"
)

// Handler processes one decoded request and returns the reply to send.
// The request is typically a command array; its first element can be
// read through Message.CommandName.
type Handler interface {
	Handle(ctx context.Context, req *protocol.Message) protocol.Message
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, req *protocol.Message) protocol.Message

// Handle calls f(ctx, req).
func (f HandlerFunc) Handle(ctx context.Context, req *protocol.Message) protocol.Message {
	return f(ctx, req)
}

// Server accepts TCP connections and frames them with the RESP codec.
type Server struct {
	addr    string
	handler Handler
	codec   *respcodec.Codec
	logger  respcodec.Logger

	maxBuffered int
	queueDepth  int

	// Connection management
	listener net.Listener
	clients  sync.Map // map[net.Conn]*client

	// Control
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	connCount    int64
	messageCount int64
	errorCount   int64
}

// Option configures a Server.
type Option func(*Server) error

// WithCodecOptions forwards options to the codec framing each
// connection, such as respcodec.WithMaxDepth.
func WithCodecOptions(opts ...respcodec.Option) Option {
	return func(s *Server) error {
		codec, err := respcodec.New(opts...)
		if err != nil {
			return err
		}
		s.codec = codec
		return nil
	}
}

// WithLogger sets the logger used for connection lifecycle events.
func WithLogger(logger respcodec.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			return respcodec.ErrInvalidConfig
		}
		s.logger = logger
		return nil
	}
}

// WithMaxBuffered caps how many bytes a connection may accumulate
// without forming a complete message before it is dropped.
func WithMaxBuffered(n int) Option {
	return func(s *Server) error {
		if n < 1 {
			return respcodec.ErrInvalidConfig
		}
		s.maxBuffered = n
		return nil
	}
}

const (
	// defaultMaxBuffered caps the per-connection input buffer (64MB)
	defaultMaxBuffered = 64 * 1024 * 1024

	// defaultRequestQueue is the per-connection decoded request queue depth
	defaultRequestQueue = 16
)

// New creates a Server listening on addr once started.
func New(addr string, handler Handler, opts ...Option) (*Server, error) {
	if handler == nil {
		return nil, errors.Wrap(respcodec.ErrInvalidConfig, "nil handler")
	}

	codec, err := respcodec.New()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		addr:        addr,
		handler:     handler,
		codec:       codec,
		logger:      respcodec.NewStdLogger(),
		maxBuffered: defaultMaxBuffered,
		queueDepth:  defaultRequestQueue,
		ctx:         ctx,
		cancel:      cancel,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			cancel()
			return nil, err
		}
	}
	return s, nil
}

// Start begins accepting connections.
func (s *Server) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.addr)
	}

	s.wg.Add(1)
	go s.acceptConnections()

	return nil
}

// Stop stops the server and closes all client connections.
func (s *Server) Stop() error {
	s.cancel()

	if s.listener != nil {
		s.listener.Close()
	}

	s.clients.Range(func(key, value interface{}) bool {
		if c, ok := value.(*client); ok {
			c.close()
		}
		return true
	})

	s.wg.Wait()
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stats returns server statistics.
func (s *Server) Stats() map[string]interface{} {
	clientCount := 0
	s.clients.Range(func(key, value interface{}) bool {
		clientCount++
		return true
	})

	return map[string]interface{}{
		"connected_clients": clientCount,
		"total_connections": atomic.LoadInt64(&s.connCount),
		"total_messages":    atomic.LoadInt64(&s.messageCount),
		"total_errors":      atomic.LoadInt64(&s.errorCount),
	}
}

// acceptConnections accepts new client connections
func (s *Server) acceptConnections() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil {
				return // Server is shutting down
			}
			s.logger.Error("accept failed", respcodec.Field{Key: "err", Value: err})
			continue
		}

		s.handleNewClient(conn)
	}
}

// handleNewClient starts the read and serve loops for a connection
func (s *Server) handleNewClient(conn net.Conn) {
	atomic.AddInt64(&s.connCount, 1)

	c := newClient(s, conn)
	s.clients.Store(conn, c)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.clients.Delete(conn)
		c.run(s.ctx)
	}()
}
