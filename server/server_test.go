package server_test

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/raniellyferreira/redis-resp-codec/protocol"
	"github.com/raniellyferreira/redis-resp-codec/server"
)

// testHandler is a minimal command dispatcher backing the transport
// tests: PING, ECHO, and a trivial keyspace.
type testHandler struct {
	mu   sync.Mutex
	keys map[string][]byte
}

func newTestHandler() *testHandler {
	return &testHandler{keys: make(map[string][]byte)}
}

func (h *testHandler) Handle(ctx context.Context, req *protocol.Message) protocol.Message {
	name, err := req.CommandName()
	if err != nil {
		return protocol.NewError("ERR protocol: " + err.Error())
	}

	switch strings.ToUpper(string(name)) {
	case "PING":
		return protocol.NewSimpleString("PONG")
	case "ECHO":
		arg, ok := req.Get(1)
		if !ok {
			return protocol.NewError("ERR wrong number of arguments for 'echo' command")
		}
		return protocol.NewBulkString(arg.Data)
	case "SET":
		key, ok1 := req.Get(1)
		value, ok2 := req.Get(2)
		if !ok1 || !ok2 {
			return protocol.NewError("ERR wrong number of arguments for 'set' command")
		}
		h.mu.Lock()
		h.keys[string(key.Data)] = value.Data
		h.mu.Unlock()
		return protocol.NewSimpleString("OK")
	case "GET":
		key, ok := req.Get(1)
		if !ok {
			return protocol.NewError("ERR wrong number of arguments for 'get' command")
		}
		h.mu.Lock()
		value, exists := h.keys[string(key.Data)]
		h.mu.Unlock()
		if !exists {
			return protocol.NewNullBulkString()
		}
		return protocol.NewBulkString(value)
	case "DEL":
		deleted := int64(0)
		for i := 1; i < req.Len(); i++ {
			key, _ := req.Get(i)
			h.mu.Lock()
			if _, exists := h.keys[string(key.Data)]; exists {
				delete(h.keys, string(key.Data))
				deleted++
			}
			h.mu.Unlock()
		}
		return protocol.NewInteger(deleted)
	default:
		return protocol.NewError(fmt.Sprintf("ERR unknown command '%s'", name))
	}
}

func startTestServer(t *testing.T, opts ...server.Option) *server.Server {
	t.Helper()
	return startServerWithHandler(t, newTestHandler(), opts...)
}

func startServerWithHandler(t *testing.T, h server.Handler, opts ...server.Option) *server.Server {
	t.Helper()

	srv, err := server.New("127.0.0.1:0", h, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(func() {
		if err := srv.Stop(); err != nil {
			t.Errorf("Stop() error: %v", err)
		}
	})
	return srv
}

func dialTestServer(t *testing.T, srv *server.Server) net.Conn {
	t.Helper()

	conn, err := net.Dial("tcp", srv.Addr())
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestServerRoundTrip(t *testing.T) {
	srv := startTestServer(t)
	conn := dialTestServer(t, srv)
	reader := bufio.NewReader(conn)

	if _, err := conn.Write([]byte("*1\r\n$4\r\nPING\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	assertReply(t, reader, "+PONG\r\n")

	if _, err := conn.Write([]byte("*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	assertReply(t, reader, "+OK\r\n")

	if _, err := conn.Write([]byte("*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	assertReply(t, reader, "$3\r\nbar\r\n")

	if _, err := conn.Write([]byte("*2\r\n$3\r\nGET\r\n$7\r\nmissing\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	assertReply(t, reader, "$-1\r\n")
}

func TestServerFragmentedRequest(t *testing.T) {
	srv := startTestServer(t)
	conn := dialTestServer(t, srv)
	reader := bufio.NewReader(conn)

	// One request delivered a few bytes at a time still decodes once
	// complete.
	request := []byte("*2\r\n$4\r\nECHO\r\n$5\r\nojbK\n\r\n")
	for _, chunk := range [][]byte{request[:3], request[3:9], request[9:20], request[20:]} {
		if _, err := conn.Write(chunk); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	assertReply(t, reader, "$5\r\nojbK\n\r\n")
}

func TestServerPipelinedRequests(t *testing.T) {
	srv := startTestServer(t)
	conn := dialTestServer(t, srv)
	reader := bufio.NewReader(conn)

	// Two requests in one write produce two replies in order
	if _, err := conn.Write([]byte("*1\r\n$4\r\nPING\r\n*2\r\n$4\r\nECHO\r\n$2\r\nhi\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	assertReply(t, reader, "+PONG\r\n")
	assertReply(t, reader, "$2\r\nhi\r\n")
}

func TestServerClosesOnProtocolError(t *testing.T) {
	srv := startTestServer(t)
	conn := dialTestServer(t, srv)

	if _, err := conn.Write([]byte("#bogus\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The stream cannot be re-synchronized, so the server drops the
	// connection.
	buf := make([]byte, 64)
	if _, err := conn.Read(buf); err != io.EOF {
		t.Errorf("Read() after protocol error = %v, want EOF", err)
	}
}

func TestServerClosesOnReplyEncodeFailure(t *testing.T) {
	// A handler producing an unencodable reply (simple string without a
	// payload) fails the serve loop; the connection must be torn down
	// promptly even though the client is idle and the read loop is
	// parked in a blocking Read.
	broken := server.HandlerFunc(func(ctx context.Context, req *protocol.Message) protocol.Message {
		return protocol.Message{Kind: protocol.KindSimpleString}
	})
	srv := startServerWithHandler(t, broken)
	conn := dialTestServer(t, srv)

	if _, err := conn.Write([]byte("*1\r\n$4\r\nPING\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	buf := make([]byte, 64)
	_, err := conn.Read(buf)
	if err == nil {
		t.Fatal("Read() returned data, want connection close")
	}
	if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
		t.Fatal("connection still open after reply encoding failed")
	}
}

func TestServerAnswersPipelineBeforeClientClose(t *testing.T) {
	srv := startTestServer(t)
	conn := dialTestServer(t, srv)
	reader := bufio.NewReader(conn)

	// Queue two requests and half-close immediately: both replies must
	// still arrive before the server hangs up.
	if _, err := conn.Write([]byte("*1\r\n$4\r\nPING\r\n*2\r\n$4\r\nECHO\r\n$3\r\nbye\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		t.Fatalf("conn is %T, want *net.TCPConn", conn)
	}
	if err := tcp.CloseWrite(); err != nil {
		t.Fatalf("CloseWrite() error: %v", err)
	}

	assertReply(t, reader, "+PONG\r\n")
	assertReply(t, reader, "$3\r\nbye\r\n")

	if _, err := reader.ReadByte(); err != io.EOF {
		t.Errorf("Read() after replies = %v, want EOF", err)
	}
}

func TestServerStats(t *testing.T) {
	srv := startTestServer(t)
	conn := dialTestServer(t, srv)
	reader := bufio.NewReader(conn)

	if _, err := conn.Write([]byte("*1\r\n$4\r\nPING\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	assertReply(t, reader, "+PONG\r\n")

	stats := srv.Stats()
	if stats["total_connections"].(int64) < 1 {
		t.Errorf("total_connections = %v, want >= 1", stats["total_connections"])
	}
	if stats["total_messages"].(int64) < 1 {
		t.Errorf("total_messages = %v, want >= 1", stats["total_messages"])
	}
}

func assertReply(t *testing.T, reader *bufio.Reader, want string) {
	t.Helper()

	got := make([]byte, len(want))
	if _, err := io.ReadFull(reader, got); err != nil {
		t.Fatalf("reading reply: %v", err)
	}
	if !bytes.Equal(got, []byte(want)) {
		t.Fatalf("reply = %q, want %q", got, want)
	}
}
