// Package server provides a minimal TCP server that frames client
// connections with the RESP codec and hands decoded requests to a
// Handler.
//
// The server owns only transport concerns: accepting connections,
// accumulating bytes into per-connection buffers, decoding and encoding
// through respcodec, and shutting down cleanly. What a request means is
// entirely up to the Handler, so command dispatch stays outside this
// package.
//
// Basic usage:
//
//	srv, err := server.New(":6380", server.HandlerFunc(handle))
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := srv.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer srv.Stop()
package server
