// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package frontend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bureau-foundation/stampede/lib/codec"
)

// Server-side connection limits.
const (
	serverReadTimeout  = 60 * time.Second
	serverWriteTimeout = 60 * time.Second

	// maxRequestSize caps one request frame. STORE_LOCAL_CHANGES
	// carries file bodies and STORE_BUILD_GRAPH a compressed graph.
	maxRequestSize = 512 * 1024 * 1024
)

// SocketServer serves a Handler on a Unix socket using the framing
// SocketTransport expects: one CBOR request frame in, one CBOR response
// frame out, then the connection closes.
type SocketServer struct {
	socketPath string
	handler    Handler
	logger     *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once

	activeConnections sync.WaitGroup
}

// NewSocketServer creates a server that will listen on socketPath.
func NewSocketServer(socketPath string, handler Handler, logger *slog.Logger) *SocketServer {
	return &SocketServer{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger,
		ready:      make(chan struct{}),
	}
}

// Ready is closed once the socket is listening.
func (s *SocketServer) Ready() <-chan struct{} { return s.ready }

// Serve accepts connections until ctx is cancelled, then stops
// accepting and waits for in-flight requests to finish. A stale socket
// file at the path is removed first; the socket file is removed on
// return.
func (s *SocketServer) Serve(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.socketPath, err)
	}
	defer func() {
		listener.Close()
		os.Remove(s.socketPath)
	}()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("frontend socket listening", "path", s.socketPath)
	s.readyOnce.Do(func() { close(s.ready) })

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			s.handleConnection(ctx, conn)
		}()
	}

	s.activeConnections.Wait()
	return nil
}

func (s *SocketServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(serverReadTimeout))

	var raw codec.RawMessage
	if err := codec.NewDecoder(io.LimitReader(conn, maxRequestSize)).Decode(&raw); err != nil {
		if !errors.Is(err, io.EOF) {
			s.logger.Debug("unreadable request frame", "error", err)
		}
		return
	}

	var request Request
	if err := request.UnmarshalCBOR(raw); err != nil {
		// Answer with whatever type the frame declared so the client
		// sees a coordinator failure rather than a dropped connection.
		var header struct {
			Type RequestType `cbor:"type"`
		}
		_ = codec.Unmarshal(raw, &header)
		s.logger.Debug("invalid request", "type", header.Type, "error", err)
		s.writeResponse(conn, NewFailedResponse(header.Type, fmt.Sprintf("invalid request: %v", err)))
		return
	}

	response := s.handler.HandleRequest(ctx, &request)
	if response == nil {
		response = NewFailedResponse(request.Type(), "internal: handler returned no response")
	}
	if !response.Successful() {
		s.logger.Debug("request failed",
			"type", request.Type(),
			"error", response.ErrorMessage(),
		)
	}
	s.writeResponse(conn, response)
}

func (s *SocketServer) writeResponse(conn net.Conn, response *Response) {
	conn.SetWriteDeadline(time.Now().Add(serverWriteTimeout))
	if err := codec.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Debug("failed to write response", "type", response.Type(), "error", err)
	}
}
