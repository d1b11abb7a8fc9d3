// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package distbuild

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bureau-foundation/stampede/lib/async"
	"github.com/bureau-foundation/stampede/lib/clock"
	"github.com/bureau-foundation/stampede/lib/frontend"
	"github.com/bureau-foundation/stampede/lib/frontend/frontendtest"
	"github.com/bureau-foundation/stampede/lib/projectfs"
	"github.com/bureau-foundation/stampede/lib/testutil"
)

func TestDotFileFilter(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{".buckversion", true},
		{".buckjavaargs", true},
		{".nobuckcache", true},
		{".buckconfig", false},
		{".buckconfig.local", false},
		{"buck.version", false},
		{".gitignore", false},
		{"BUCK", false},
	}
	for _, test := range tests {
		if got := DefaultDotFileFilter.Matches(test.name); got != test.want {
			t.Errorf("Matches(%q) = %v, want %v", test.name, got, test.want)
		}
	}

	noExclusion := DotFileFilter{Prefix: ".", Tag: "buck"}
	if !noExclusion.Matches(".buckconfig") {
		t.Error("empty ExcludePrefix excluded .buckconfig")
	}
}

// projectRoot lays out a project root with dotfiles that should and
// should not be propagated.
func projectRoot(t *testing.T) *projectfs.Dir {
	t.Helper()
	root := testutil.WriteTree(t, map[string]string{
		".buckversion":       "v2026.03",
		".buckjavaargs":      "-Xmx4g",
		".buckconfig":        "[cxx]\n",
		".buckconfig.local":  "[cache]\n",
		".gitignore":         "buck-out/\n",
		"BUCK":               "cxx_binary(name = 'main')\n",
		".buckd/pid":         "1234",
		"app/.buckversion":   "nested, not top level",
		"shared/.buckextras": "linked",
	})
	if err := os.Symlink(filepath.Join(root, "shared", ".buckextras"), filepath.Join(root, ".buckextras")); err != nil {
		t.Fatalf("Symlink: %v", err)
	}
	filesystem, err := projectfs.NewDir(root)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	return filesystem
}

func TestUploadBuckDotFiles(t *testing.T) {
	service, coordinator := newCoordinatorService(t)
	id := createBuild(t, service)
	filesystem := projectRoot(t)

	if _, err := await(t, service.UploadBuckDotFiles(context.Background(), id, filesystem, projectfs.NewHashCache(filesystem))); err != nil {
		t.Fatalf("UploadBuckDotFiles: %v", err)
	}

	javaArgs := projectfs.HashBytes([]byte("-Xmx4g"))
	version := projectfs.HashBytes([]byte("v2026.03"))
	wantPaths := []frontend.PathInfo{
		{Path: ".buckjavaargs", ContentHash: javaArgs},
		{Path: ".buckversion", ContentHash: version},
	}
	job, _ := coordinator.Build(id)
	if !reflect.DeepEqual(job.DotFiles, wantPaths) {
		t.Errorf("recorded dotfiles = %+v, want %+v", job.DotFiles, wantPaths)
	}

	for hash, want := range map[string]string{javaArgs: "-Xmx4g", version: "v2026.03"} {
		content, ok := coordinator.Content(hash)
		if !ok || string(content) != want {
			t.Errorf("stored content for %s = %q, %v; want %q", hash, content, ok, want)
		}
	}
	if got := len(coordinator.RequestsOfType(frontend.StoreLocalChanges)); got != 1 {
		t.Errorf("%d STORE_LOCAL_CHANGES requests, want 1", got)
	}
}

func TestUploadBuckDotFilesSingleWorker(t *testing.T) {
	service, err := New(Options{
		Transport: frontend.Loopback(frontendtest.New()),
		Pool:      async.NewPool(1),
		Clock:     clock.Fake(testEpoch),
		Logger:    testLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id := createBuild(t, service)
	filesystem := projectRoot(t)

	if _, err := await(t, service.UploadBuckDotFiles(context.Background(), id, filesystem, projectfs.NewHashCache(filesystem))); err != nil {
		t.Fatalf("UploadBuckDotFiles: %v", err)
	}
}

// failingFilesystem fails every operation with err.
type failingFilesystem struct {
	err error
}

func (f failingFilesystem) Root() string                         { return "/nonexistent" }
func (f failingFilesystem) ListRoot() ([]projectfs.Entry, error) { return nil, f.err }
func (f failingFilesystem) ReadFile(string) ([]byte, error)      { return nil, f.err }

func TestUploadBuckDotFilesListingError(t *testing.T) {
	service, coordinator := newCoordinatorService(t)
	id := createBuild(t, service)
	errListing := errors.New("permission denied")

	_, err := await(t, service.UploadBuckDotFiles(context.Background(), id, failingFilesystem{err: errListing}, projectfs.NewHashCache(failingFilesystem{err: errListing})))
	if err != errListing {
		t.Fatalf("error = %v, want the listing error unmodified", err)
	}
	if got := len(coordinator.RequestsOfType(frontend.SetDotFilePaths)) + len(coordinator.RequestsOfType(frontend.CASContains)); got != 0 {
		t.Errorf("%d requests sent after enumeration failed", got)
	}
}

// failingHasher fails every hash with err.
type failingHasher struct {
	err error
}

func (f failingHasher) Hash(string) (string, error) { return "", f.err }

func TestUploadBuckDotFilesHashError(t *testing.T) {
	service, _ := newCoordinatorService(t)
	id := createBuild(t, service)
	errHash := errors.New("hash failed")

	_, err := await(t, service.UploadBuckDotFiles(context.Background(), id, projectRoot(t), failingHasher{err: errHash}))
	if err != errHash {
		t.Fatalf("error = %v, want the hashing error unmodified", err)
	}
}

func TestUploadBuckDotFilesOneStepFails(t *testing.T) {
	service, coordinator := newCoordinatorService(t)
	id := createBuild(t, service)
	coordinator.Override(frontend.SetDotFilePaths, func(request *frontend.Request) *frontend.Response {
		return frontend.NewFailedResponse(request.Type(), "dotfile paths rejected")
	})
	filesystem := projectRoot(t)

	_, err := await(t, service.UploadBuckDotFiles(context.Background(), id, filesystem, projectfs.NewHashCache(filesystem)))
	var remote *frontend.RemoteOperationError
	if !errors.As(err, &remote) || remote.Type != frontend.SetDotFilePaths {
		t.Fatalf("error = %v, want RemoteOperationError for SET_DOTFILE_PATHS", err)
	}
	// The content upload is independent and is not rolled back.
	if _, ok := coordinator.Content(projectfs.HashBytes([]byte("v2026.03"))); !ok {
		t.Error("content upload did not complete alongside the failed path update")
	}
}

func TestUploadBuckDotFilesContinuationsIndependent(t *testing.T) {
	service, coordinator := newCoordinatorService(t)
	id := createBuild(t, service)

	// Hold the path update until the content upload has happened. If
	// the two steps were chained, this would never complete.
	uploaded := make(chan struct{})
	coordinator.Override(frontend.StoreLocalChanges, func(request *frontend.Request) *frontend.Response {
		coordinator.Override(frontend.StoreLocalChanges, nil)
		response := coordinator.HandleRequest(context.Background(), request)
		close(uploaded)
		return response
	})
	coordinator.Override(frontend.SetDotFilePaths, func(request *frontend.Request) *frontend.Response {
		<-uploaded
		coordinator.Override(frontend.SetDotFilePaths, nil)
		return coordinator.HandleRequest(context.Background(), request)
	})

	filesystem := projectRoot(t)
	if _, err := await(t, service.UploadBuckDotFiles(context.Background(), id, filesystem, projectfs.NewHashCache(filesystem))); err != nil {
		t.Fatalf("UploadBuckDotFiles: %v", err)
	}
}

func TestUploadBuckDotFilesCustomFilter(t *testing.T) {
	coordinator := frontendtest.New()
	service, err := New(Options{
		Transport: frontend.Loopback(coordinator),
		Logger:    testLogger(),
		DotFiles:  DotFileFilter{Prefix: ".", Tag: "git"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id := createBuild(t, service)
	filesystem := projectRoot(t)

	if _, err := await(t, service.UploadBuckDotFiles(context.Background(), id, filesystem, projectfs.NewHashCache(filesystem))); err != nil {
		t.Fatalf("UploadBuckDotFiles: %v", err)
	}
	request := coordinator.RequestsOfType(frontend.SetDotFilePaths)[0]
	paths := request.Payload().(*frontend.SetBuckDotFilePathsRequest).DotFiles
	if len(paths) != 1 || paths[0].Path != ".gitignore" {
		t.Errorf("dotfiles = %+v, want only .gitignore", paths)
	}
}
