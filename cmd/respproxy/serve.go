package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	respcodec "github.com/raniellyferreira/redis-resp-codec"
	"github.com/raniellyferreira/redis-resp-codec/protocol"
	"github.com/raniellyferreira/redis-resp-codec/server"
)

var (
	addr     string
	maxDepth int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a PING/ECHO server over the RESP codec",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := server.New(addr, server.HandlerFunc(handle),
			server.WithCodecOptions(respcodec.WithMaxDepth(maxDepth)),
		)
		if err != nil {
			return err
		}
		if err := srv.Start(); err != nil {
			return err
		}
		defer srv.Stop()

		fmt.Printf("respproxy listening on %s\n", srv.Addr())

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", ":6380", "listen address")
	serveCmd.Flags().IntVar(&maxDepth, "max-depth", protocol.DefaultMaxDepth, "maximum RESP array nesting depth")

	rootCmd.AddCommand(serveCmd)
}

// handle answers the handful of commands needed to poke at the framing
// layer with redis-cli. Anything else gets an error reply.
func handle(ctx context.Context, req *protocol.Message) protocol.Message {
	name, err := req.CommandName()
	if err != nil {
		return protocol.NewError("ERR protocol: " + err.Error())
	}

	switch strings.ToUpper(string(name)) {
	case "PING":
		if arg, ok := req.Get(1); ok {
			return protocol.NewBulkString(arg.Data)
		}
		return protocol.NewSimpleString("PONG")
	case "ECHO":
		arg, ok := req.Get(1)
		if !ok {
			return protocol.NewError("ERR wrong number of arguments for 'echo' command")
		}
		return protocol.NewBulkString(arg.Data)
	case "QUIT":
		return protocol.NewSimpleString("OK")
	default:
		return protocol.NewError(fmt.Sprintf("ERR unknown command '%s'", name))
	}
}
