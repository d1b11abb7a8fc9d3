// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package distbuild

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/stampede/lib/async"
	"github.com/bureau-foundation/stampede/lib/buildgraph"
	"github.com/bureau-foundation/stampede/lib/clock"
	"github.com/bureau-foundation/stampede/lib/frontend"
	"github.com/bureau-foundation/stampede/lib/frontend/frontendtest"
	"github.com/bureau-foundation/stampede/lib/projectfs"
	"github.com/bureau-foundation/stampede/lib/testutil"
)

// socketService returns a Service talking to an in-memory coordinator
// over a real Unix socket.
func socketService(t *testing.T) (*Service, *frontendtest.Coordinator) {
	t.Helper()
	socketPath := filepath.Join(testutil.SocketDir(t), "frontend.sock")
	coordinator := frontendtest.New()

	ctx, cancel := context.WithCancel(context.Background())
	done, err := frontendtest.Serve(ctx, socketPath, coordinator, testLogger())
	if err != nil {
		cancel()
		t.Fatalf("Serve: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		testutil.RequireReceive(t, done, 5*time.Second, "waiting for coordinator shutdown")
	})

	service, err := New(Options{
		Transport:        frontend.NewSocketTransport(socketPath, frontend.SocketOptions{}),
		Pool:             async.NewPool(4),
		Clock:            clock.Fake(testEpoch),
		Logger:           testLogger(),
		GraphCompression: buildgraph.CompressionLZ4,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { service.Close() })
	return service, coordinator
}

func TestSubmitOverSocket(t *testing.T) {
	service, coordinator := socketService(t)
	filesystem := projectRoot(t)
	state := graphWithContents()
	version := frontend.BuckVersion{Type: frontend.VersionGit, GitHash: "f00dcafe"}

	job, err := service.Submit(context.Background(), Submission{
		State:      state,
		Filesystem: filesystem,
		Hashes:     projectfs.NewHashCache(filesystem),
		Version:    version,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if job.Status != frontend.StatusQueued {
		t.Errorf("status = %s, want QUEUED", job.Status)
	}
	requireStartedLast(t, coordinator.Requests())

	recorded, ok := coordinator.Build(job.StampedeID)
	if !ok {
		t.Fatalf("coordinator does not know build %s", job.StampedeID)
	}
	if recorded.BuckVersion == nil || *recorded.BuckVersion != version {
		t.Errorf("version = %+v, want %+v", recorded.BuckVersion, version)
	}
	if len(recorded.DotFiles) != 2 {
		t.Errorf("dotfiles = %+v, want 2 entries", recorded.DotFiles)
	}

	for _, hash := range []string{"m1", "u1", "v1"} {
		if _, ok := coordinator.Content(hash); !ok {
			t.Errorf("content %s was not uploaded", hash)
		}
	}
	if _, ok := coordinator.Content("d1"); ok {
		t.Error("directory entry was uploaded as content")
	}

	fetched, err := service.FetchBuildJobState(context.Background(), job.StampedeID)
	if err != nil {
		t.Fatalf("FetchBuildJobState: %v", err)
	}
	if fetched.EntryCount() != state.EntryCount() {
		t.Errorf("fetched graph has %d entries, want %d", fetched.EntryCount(), state.EntryCount())
	}
}

func TestSubmitUploadFailureDoesNotStart(t *testing.T) {
	service, coordinator := newCoordinatorService(t)
	coordinator.Override(frontend.StoreBuildGraph, func(request *frontend.Request) *frontend.Response {
		return frontend.NewFailedResponse(request.Type(), "graph too large")
	})

	job, err := service.Submit(context.Background(), Submission{State: graphWithContents()})
	if err == nil {
		t.Fatal("Submit succeeded despite graph upload failure")
	}
	if job.StampedeID.ID == "" {
		t.Error("failed Submit did not report the created build")
	}
	if starts := coordinator.RequestsOfType(frontend.StartBuild); len(starts) != 0 {
		t.Errorf("build started after a failed upload")
	}
}

func TestSubmitValidation(t *testing.T) {
	service, coordinator := newCoordinatorService(t)

	if _, err := service.Submit(context.Background(), Submission{}); err == nil {
		t.Error("Submit without a graph succeeded")
	}
	filesystem := projectRoot(t)
	if _, err := service.Submit(context.Background(), Submission{State: graphWithContents(), Filesystem: filesystem}); err == nil {
		t.Error("Submit with a filesystem but no hasher succeeded")
	}
	if requests := coordinator.Requests(); len(requests) != 0 {
		t.Errorf("invalid submissions sent %d requests", len(requests))
	}
}

// requireStartedLast checks that a submission opened with CREATE_BUILD,
// ended with START_BUILD, and sent every upload before the start.
func requireStartedLast(t *testing.T, requests []*frontend.Request) {
	t.Helper()
	if len(requests) == 0 {
		t.Fatal("coordinator recorded no requests")
	}
	if first := requests[0].Type(); first != frontend.CreateBuild {
		t.Errorf("first request = %s, want CREATE_BUILD", first)
	}
	start := -1
	for index, request := range requests {
		if request.Type() == frontend.StartBuild {
			start = index
			break
		}
	}
	if start != len(requests)-1 {
		t.Fatalf("START_BUILD at index %d of %d requests, want last", start, len(requests))
	}
	uploads := map[frontend.RequestType]bool{}
	for _, request := range requests[:start] {
		uploads[request.Type()] = true
	}
	for _, want := range []frontend.RequestType{
		frontend.StoreBuildGraph,
		frontend.CASContains,
		frontend.StoreLocalChanges,
		frontend.SetBuckVersion,
		frontend.SetDotFilePaths,
	} {
		if !uploads[want] {
			t.Errorf("no %s request before START_BUILD", want)
		}
	}
}
