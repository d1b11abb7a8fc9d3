// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package frontendtest provides an in-memory frontend coordinator for
// tests and local development. It keeps builds, CAS content, graphs,
// dotfile paths and worker logs in maps, records every request it
// receives, and lets tests replace the answer for any request type.
//
// It implements frontend.Handler, so it can sit behind
// frontend.Loopback for in-process tests or behind a
// frontend.SocketServer (see Serve) for end-to-end tests.
package frontendtest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/bureau-foundation/stampede/lib/frontend"
)

// OverrideFunc produces the response for a request in place of the
// coordinator's normal handling.
type OverrideFunc func(request *frontend.Request) *frontend.Response

type logKey struct {
	run    frontend.RunID
	stream frontend.LogStreamType
}

// Coordinator is an in-memory frontend. The zero value is not usable;
// construct with New.
type Coordinator struct {
	mu sync.Mutex

	nextBuild int
	builds    map[frontend.StampedeID]*frontend.BuildJob
	graphs    map[frontend.StampedeID][]byte
	content   map[string][]byte
	logs      map[logKey][]frontend.LogLineBatch
	logDirs   map[frontend.RunID][]byte

	requests  []*frontend.Request
	overrides map[frontend.RequestType]OverrideFunc
}

// New returns an empty coordinator.
func New() *Coordinator {
	return &Coordinator{
		builds:    make(map[frontend.StampedeID]*frontend.BuildJob),
		graphs:    make(map[frontend.StampedeID][]byte),
		content:   make(map[string][]byte),
		logs:      make(map[logKey][]frontend.LogLineBatch),
		logDirs:   make(map[frontend.RunID][]byte),
		overrides: make(map[frontend.RequestType]OverrideFunc),
	}
}

// Override makes every later request of type t answered by fn. Passing
// nil restores normal handling.
func (c *Coordinator) Override(t frontend.RequestType, fn OverrideFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fn == nil {
		delete(c.overrides, t)
		return
	}
	c.overrides[t] = fn
}

// Requests returns every request received so far, in arrival order.
func (c *Coordinator) Requests() []*frontend.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.requests)
}

// RequestsOfType returns the received requests of type t.
func (c *Coordinator) RequestsOfType(t frontend.RequestType) []*frontend.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	var matching []*frontend.Request
	for _, request := range c.requests {
		if request.Type() == t {
			matching = append(matching, request)
		}
	}
	return matching
}

// SeedContent stores content under hash as if it had been uploaded.
func (c *Coordinator) SeedContent(hash string, content []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content[hash] = bytes.Clone(content)
}

// Content returns stored CAS content.
func (c *Coordinator) Content(hash string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	content, ok := c.content[hash]
	return bytes.Clone(content), ok
}

// Graph returns the stored encoded graph for a build.
func (c *Coordinator) Graph(id frontend.StampedeID) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	graph, ok := c.graphs[id]
	return bytes.Clone(graph), ok
}

// Build returns a copy of a build's job record.
func (c *Coordinator) Build(id frontend.StampedeID) (frontend.BuildJob, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	job, ok := c.builds[id]
	if !ok {
		return frontend.BuildJob{}, false
	}
	return cloneJob(job), true
}

// SetStatus moves a build to status. Unknown builds are ignored.
func (c *Coordinator) SetStatus(id frontend.StampedeID, status frontend.BuildStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if job, ok := c.builds[id]; ok {
		job.Status = status
	}
}

// AppendLogLines adds one batch of lines to a worker stream. Batches
// are numbered from zero in append order.
func (c *Coordinator) AppendLogLines(run frontend.RunID, stream frontend.LogStreamType, lines ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := logKey{run: run, stream: stream}
	c.logs[key] = append(c.logs[key], frontend.LogLineBatch{
		BatchNumber: int32(len(c.logs[key])),
		Lines:       slices.Clone(lines),
	})
}

// SetLogDir sets the archived log directory of a worker run.
func (c *Coordinator) SetLogDir(run frontend.RunID, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logDirs[run] = bytes.Clone(data)
}

// HandleRequest implements frontend.Handler.
func (c *Coordinator) HandleRequest(ctx context.Context, request *frontend.Request) *frontend.Response {
	c.mu.Lock()
	c.requests = append(c.requests, request)
	override := c.overrides[request.Type()]
	c.mu.Unlock()

	if override != nil {
		return override(request)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch payload := request.Payload().(type) {
	case *frontend.CreateBuildRequest:
		c.nextBuild++
		job := &frontend.BuildJob{
			StampedeID: frontend.StampedeID{ID: fmt.Sprintf("stampede-%d", c.nextBuild)},
			Status:     frontend.StatusCreated,
		}
		c.builds[job.StampedeID] = job
		return frontend.NewResponse(&frontend.CreateBuildResponse{BuildJob: cloneJob(job)})

	case *frontend.StartBuildRequest:
		job, failed := c.lookup(request, payload.StampedeID)
		if failed != nil {
			return failed
		}
		if job.Status == frontend.StatusCreated {
			job.Status = frontend.StatusQueued
		}
		return frontend.NewResponse(&frontend.StartBuildResponse{BuildJob: cloneJob(job)})

	case *frontend.BuildStatusRequest:
		job, failed := c.lookup(request, payload.StampedeID)
		if failed != nil {
			return failed
		}
		return frontend.NewResponse(&frontend.BuildStatusResponse{BuildJob: cloneJob(job)})

	case *frontend.StoreBuildGraphRequest:
		if _, failed := c.lookup(request, payload.StampedeID); failed != nil {
			return failed
		}
		c.graphs[payload.StampedeID] = bytes.Clone(payload.BuildGraph)
		return frontend.NewResponse(&frontend.StoreBuildGraphResponse{})

	case *frontend.FetchBuildGraphRequest:
		if _, failed := c.lookup(request, payload.StampedeID); failed != nil {
			return failed
		}
		return frontend.NewResponse(&frontend.FetchBuildGraphResponse{
			BuildGraph: bytes.Clone(c.graphs[payload.StampedeID]),
		})

	case *frontend.CASContainsRequest:
		exists := make([]bool, len(payload.ContentHashes))
		for i, hash := range payload.ContentHashes {
			_, exists[i] = c.content[hash]
		}
		return frontend.NewResponse(&frontend.CASContainsResponse{Exists: exists})

	case *frontend.StoreLocalChangesRequest:
		for _, file := range payload.Files {
			c.content[file.ContentHash] = bytes.Clone(file.Content)
		}
		return frontend.NewResponse(&frontend.StoreLocalChangesResponse{})

	case *frontend.FetchSourceFilesRequest:
		files := make([]frontend.FileInfo, 0, len(payload.ContentHashes))
		for _, hash := range payload.ContentHashes {
			content, ok := c.content[hash]
			if !ok {
				return frontend.NewFailedResponse(request.Type(), fmt.Sprintf("no content for hash %s", hash))
			}
			files = append(files, frontend.FileInfo{ContentHash: hash, Content: bytes.Clone(content)})
		}
		return frontend.NewResponse(&frontend.FetchSourceFilesResponse{Files: files})

	case *frontend.SetBuckVersionRequest:
		job, failed := c.lookup(request, payload.StampedeID)
		if failed != nil {
			return failed
		}
		version := payload.BuckVersion
		job.BuckVersion = &version
		return frontend.NewResponse(&frontend.SetBuckVersionResponse{})

	case *frontend.SetBuckDotFilePathsRequest:
		job, failed := c.lookup(request, payload.StampedeID)
		if failed != nil {
			return failed
		}
		job.DotFiles = slices.Clone(payload.DotFiles)
		return frontend.NewResponse(&frontend.SetBuckDotFilePathsResponse{})

	case *frontend.MultiGetBuildSlaveRealTimeLogsRequest:
		if _, failed := c.lookup(request, payload.StampedeID); failed != nil {
			return failed
		}
		streams := make([]frontend.StreamLogs, 0, len(payload.Batches))
		for _, batch := range payload.Batches {
			streams = append(streams, c.streamLogs(batch))
		}
		return frontend.NewResponse(&frontend.MultiGetBuildSlaveRealTimeLogsResponse{MultiStreamLogs: streams})

	case *frontend.MultiGetBuildSlaveLogDirRequest:
		if _, failed := c.lookup(request, payload.StampedeID); failed != nil {
			return failed
		}
		dirs := make([]frontend.BuildSlaveLogDir, 0, len(payload.RunIDs))
		for _, run := range payload.RunIDs {
			dir := frontend.BuildSlaveLogDir{RunID: run}
			if data, ok := c.logDirs[run]; ok {
				dir.Data = bytes.Clone(data)
			} else {
				dir.ErrorMessage = fmt.Sprintf("no log directory for run %s", run)
			}
			dirs = append(dirs, dir)
		}
		return frontend.NewResponse(&frontend.MultiGetBuildSlaveLogDirResponse{LogDirs: dirs})
	}

	return frontend.NewFailedResponse(request.Type(), fmt.Sprintf("unsupported request type %s", request.Type()))
}

// lookup must be called with c.mu held.
func (c *Coordinator) lookup(request *frontend.Request, id frontend.StampedeID) (*frontend.BuildJob, *frontend.Response) {
	job, ok := c.builds[id]
	if !ok {
		return nil, frontend.NewFailedResponse(request.Type(), fmt.Sprintf("unknown build %q", id.ID))
	}
	return job, nil
}

// streamLogs must be called with c.mu held.
func (c *Coordinator) streamLogs(request frontend.LogLineBatchRequest) frontend.StreamLogs {
	result := frontend.StreamLogs{RunID: request.RunID, Stream: request.Stream}
	batches, ok := c.logs[logKey{run: request.RunID, stream: request.Stream}]
	if !ok {
		result.ErrorMessage = fmt.Sprintf("no %s logs for run %s", request.Stream, request.RunID)
		return result
	}
	for _, batch := range batches {
		if batch.BatchNumber >= request.BatchNumber {
			result.Batches = append(result.Batches, frontend.LogLineBatch{
				BatchNumber: batch.BatchNumber,
				Lines:       slices.Clone(batch.Lines),
			})
		}
	}
	return result
}

func cloneJob(job *frontend.BuildJob) frontend.BuildJob {
	clone := *job
	if job.BuckVersion != nil {
		version := *job.BuckVersion
		if version.DevelopmentToolchain != nil {
			toolchain := *version.DevelopmentToolchain
			version.DevelopmentToolchain = &toolchain
		}
		clone.BuckVersion = &version
	}
	clone.DotFiles = slices.Clone(job.DotFiles)
	return clone
}

// Serve runs coordinator behind a frontend.SocketServer on socketPath
// until ctx is cancelled. It returns once the socket is listening; the
// returned channel delivers Serve's result when the server stops.
func Serve(ctx context.Context, socketPath string, coordinator *Coordinator, logger *slog.Logger) (<-chan error, error) {
	server := frontend.NewSocketServer(socketPath, coordinator, logger)
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx)
	}()

	select {
	case <-server.Ready():
		return done, nil
	case err := <-done:
		if err == nil {
			err = fmt.Errorf("frontend socket server on %s stopped before listening", socketPath)
		}
		return nil, err
	}
}
