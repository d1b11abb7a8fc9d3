// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package distbuild

import (
	"errors"
	"log/slog"

	"github.com/bureau-foundation/stampede/lib/async"
	"github.com/bureau-foundation/stampede/lib/buildgraph"
	"github.com/bureau-foundation/stampede/lib/clock"
	"github.com/bureau-foundation/stampede/lib/frontend"
)

// Options configures a Service.
type Options struct {
	// Transport carries requests to the coordinator. Required. The
	// Service takes ownership and closes it in Close.
	Transport frontend.Transport

	// Pool runs asynchronous operations. Defaults to a pool sized to
	// GOMAXPROCS.
	Pool *async.Pool

	// Clock supplies build creation timestamps and request timings.
	// Defaults to the real clock.
	Clock clock.Clock

	// Logger receives operation logs. Defaults to discarding them.
	Logger *slog.Logger

	// GraphCompression is applied to uploaded build graphs. The zero
	// value uploads them uncompressed; pass
	// buildgraph.DefaultCompression for the usual setting.
	GraphCompression buildgraph.Compression

	// DotFiles selects which project root files UploadBuckDotFiles
	// propagates. The zero value means DefaultDotFileFilter.
	DotFiles DotFileFilter
}

// Service is a distributed build client bound to one coordinator. It is
// safe for concurrent use.
type Service struct {
	transport   frontend.Transport
	pool        *async.Pool
	clock       clock.Clock
	logger      *slog.Logger
	compression buildgraph.Compression
	dotFiles    DotFileFilter
}

// New creates a Service.
func New(options Options) (*Service, error) {
	if options.Transport == nil {
		return nil, errors.New("distbuild: Options.Transport is required")
	}
	service := &Service{
		transport:   options.Transport,
		pool:        options.Pool,
		clock:       options.Clock,
		logger:      options.Logger,
		compression: options.GraphCompression,
		dotFiles:    options.DotFiles,
	}
	if service.pool == nil {
		service.pool = async.NewPool(0)
	}
	if service.clock == nil {
		service.clock = clock.Real()
	}
	if service.logger == nil {
		service.logger = slog.New(slog.DiscardHandler)
	}
	if service.dotFiles == (DotFileFilter{}) {
		service.dotFiles = DefaultDotFileFilter
	}
	return service, nil
}

// Close closes the transport. Operations still in flight may fail.
func (s *Service) Close() error {
	return s.transport.Close()
}
