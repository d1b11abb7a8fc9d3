// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package frontend

import (
	"context"
	"errors"
)

// ErrTransportClosed is returned by MakeRequest after Close.
var ErrTransportClosed = errors.New("frontend transport closed")

// Transport carries one request to the coordinator and returns its
// response. Implementations must be safe for concurrent use: callers
// issue independent requests from many goroutines over one Transport.
//
// A non-nil error means no response was obtained (dial failure, broken
// connection, undecodable frame). Coordinator-reported failures come
// back as a Response with Successful() false, not as an error.
type Transport interface {
	MakeRequest(ctx context.Context, request *Request) (*Response, error)
	Close() error
}

// Handler answers frontend requests. It is the server-side counterpart
// of Transport and must be safe for concurrent use.
type Handler interface {
	HandleRequest(ctx context.Context, request *Request) *Response
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, request *Request) *Response

func (f HandlerFunc) HandleRequest(ctx context.Context, request *Request) *Response {
	return f(ctx, request)
}

// Loopback returns a Transport that hands requests straight to handler
// in-process. Requests and responses are passed by reference, not
// encoded.
func Loopback(handler Handler) Transport {
	return &loopback{handler: handler}
}

type loopback struct {
	handler Handler
}

func (l *loopback) MakeRequest(ctx context.Context, request *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.handler.HandleRequest(ctx, request), nil
}

func (l *loopback) Close() error { return nil }
