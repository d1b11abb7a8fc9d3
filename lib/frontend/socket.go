// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package frontend

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/stampede/lib/codec"
)

// Default socket transport limits.
const (
	// DefaultDialTimeout covers only the connect phase.
	DefaultDialTimeout = 5 * time.Second

	// DefaultResponseTimeout is how long the client waits for the
	// coordinator to answer after the request is written. Graph
	// uploads and CAS stores of large file sets dominate.
	DefaultResponseTimeout = 120 * time.Second

	// DefaultMaxResponseSize caps one decoded response frame. Source
	// file fetches and log directory archives are the large ones.
	DefaultMaxResponseSize = 256 * 1024 * 1024
)

// SocketOptions configures a SocketTransport. Zero fields take the
// package defaults.
type SocketOptions struct {
	DialTimeout     time.Duration
	ResponseTimeout time.Duration
	MaxResponseSize int64
}

// SocketTransport speaks the frontend envelope over a Unix socket. Each
// MakeRequest opens a new connection, writes one CBOR request frame,
// half-closes the write side, reads one CBOR response frame, and closes
// the connection. No connection state is shared between requests, so
// concurrent calls are independent.
type SocketTransport struct {
	socketPath      string
	dialTimeout     time.Duration
	responseTimeout time.Duration
	maxResponseSize int64
	closed          atomic.Bool
}

// NewSocketTransport creates a transport for the coordinator listening
// on socketPath. No connection is made until the first request.
func NewSocketTransport(socketPath string, options SocketOptions) *SocketTransport {
	transport := &SocketTransport{
		socketPath:      socketPath,
		dialTimeout:     options.DialTimeout,
		responseTimeout: options.ResponseTimeout,
		maxResponseSize: options.MaxResponseSize,
	}
	if transport.dialTimeout <= 0 {
		transport.dialTimeout = DefaultDialTimeout
	}
	if transport.responseTimeout <= 0 {
		transport.responseTimeout = DefaultResponseTimeout
	}
	if transport.maxResponseSize <= 0 {
		transport.maxResponseSize = DefaultMaxResponseSize
	}
	return transport
}

// MakeRequest performs one request/response exchange. Cancelling ctx
// aborts an in-flight exchange by closing its connection.
func (t *SocketTransport) MakeRequest(ctx context.Context, request *Request) (*Response, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}

	dialer := net.Dialer{Timeout: t.dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", t.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to frontend at %s: %w", t.socketPath, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		return nil, t.exchangeError(ctx, request, "writing request", err)
	}

	// CBOR is self-delimiting; the half-close just lets the server see
	// EOF cleanly.
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	conn.SetReadDeadline(time.Now().Add(t.responseTimeout))
	var raw codec.RawMessage
	if err := codec.NewDecoder(io.LimitReader(conn, t.maxResponseSize)).Decode(&raw); err != nil {
		return nil, t.exchangeError(ctx, request, "reading response", err)
	}

	var response Response
	if err := response.UnmarshalCBOR(raw); err != nil {
		return nil, err
	}
	return &response, nil
}

// exchangeError prefers the context error when cancellation is what
// broke the connection.
func (t *SocketTransport) exchangeError(ctx context.Context, request *Request, stage string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s %s: %w", stage, request.Type(), ctxErr)
	}
	return fmt.Errorf("%s %s: %w", stage, request.Type(), err)
}

// Close marks the transport closed. Requests already in flight finish
// normally; later requests fail with ErrTransportClosed.
func (t *SocketTransport) Close() error {
	t.closed.Store(true)
	return nil
}
