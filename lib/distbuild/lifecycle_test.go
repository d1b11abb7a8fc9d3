// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package distbuild

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/bureau-foundation/stampede/lib/frontend"
)

func TestCreateBuild(t *testing.T) {
	service, coordinator := newCoordinatorService(t)

	job, err := service.CreateBuild(context.Background())
	if err != nil {
		t.Fatalf("CreateBuild: %v", err)
	}
	if job.StampedeID.ID == "" || job.Status != frontend.StatusCreated {
		t.Errorf("job = %+v", job)
	}

	requests := coordinator.RequestsOfType(frontend.CreateBuild)
	if len(requests) != 1 {
		t.Fatalf("%d CREATE_BUILD requests, want 1", len(requests))
	}
	timestamp := requests[0].Payload().(*frontend.CreateBuildRequest).CreateTimestampMillis
	if timestamp != testEpoch.UnixMilli() {
		t.Errorf("CreateTimestampMillis = %d, want %d", timestamp, testEpoch.UnixMilli())
	}
}

func TestStartBuild(t *testing.T) {
	service, _ := newCoordinatorService(t)
	id := createBuild(t, service)

	job, err := service.StartBuild(context.Background(), id)
	if err != nil {
		t.Fatalf("StartBuild: %v", err)
	}
	if job.StampedeID != id || job.Status != frontend.StatusQueued {
		t.Errorf("job = %+v", job)
	}
}

func TestGetCurrentBuildJobState(t *testing.T) {
	service, coordinator := newCoordinatorService(t)
	id := createBuild(t, service)
	coordinator.SetStatus(id, frontend.StatusBuilding)

	for range 3 {
		job, err := service.GetCurrentBuildJobState(context.Background(), id)
		if err != nil {
			t.Fatalf("GetCurrentBuildJobState: %v", err)
		}
		if job.Status != frontend.StatusBuilding {
			t.Errorf("status = %s, want BUILDING", job.Status)
		}
	}
	if job, _ := coordinator.Build(id); job.Status != frontend.StatusBuilding {
		t.Errorf("status query changed the build to %s", job.Status)
	}
}

func TestIdentityMismatch(t *testing.T) {
	other := frontend.BuildJob{StampedeID: frontend.StampedeID{ID: "someone-else"}, Status: frontend.StatusQueued}

	tests := []struct {
		name        string
		requestType frontend.RequestType
		response    frontend.ResponsePayload
		call        func(*Service, frontend.StampedeID) error
	}{
		{
			name:        "start",
			requestType: frontend.StartBuild,
			response:    &frontend.StartBuildResponse{BuildJob: other},
			call: func(service *Service, id frontend.StampedeID) error {
				_, err := service.StartBuild(context.Background(), id)
				return err
			},
		},
		{
			name:        "status",
			requestType: frontend.BuildStatusQuery,
			response:    &frontend.BuildStatusResponse{BuildJob: other},
			call: func(service *Service, id frontend.StampedeID) error {
				_, err := service.GetCurrentBuildJobState(context.Background(), id)
				return err
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			service, coordinator := newCoordinatorService(t)
			id := createBuild(t, service)
			coordinator.Override(test.requestType, func(*frontend.Request) *frontend.Response {
				return frontend.NewResponse(test.response)
			})

			err := test.call(service, id)
			var mismatch *IdentityMismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("error = %v, want IdentityMismatchError", err)
			}
			if mismatch.Requested != id || mismatch.Returned != other.StampedeID || mismatch.Type != test.requestType {
				t.Errorf("mismatch = %+v", mismatch)
			}
		})
	}
}

func TestSetBuckVersion(t *testing.T) {
	service, coordinator := newCoordinatorService(t)
	id := createBuild(t, service)

	version := frontend.BuckVersion{Type: frontend.VersionGit, GitHash: "0123abcd"}
	if err := service.SetBuckVersion(context.Background(), id, version); err != nil {
		t.Fatalf("SetBuckVersion: %v", err)
	}
	job, _ := coordinator.Build(id)
	if job.BuckVersion == nil || *job.BuckVersion != version {
		t.Errorf("recorded version = %+v, want %+v", job.BuckVersion, version)
	}

	var remote *frontend.RemoteOperationError
	if err := service.SetBuckVersion(context.Background(), frontend.StampedeID{ID: "missing"}, version); !errors.As(err, &remote) {
		t.Errorf("SetBuckVersion on unknown build error = %v, want RemoteOperationError", err)
	}
}

func TestSetBuckDotFiles(t *testing.T) {
	service, coordinator := newCoordinatorService(t)
	id := createBuild(t, service)

	paths := []frontend.PathInfo{{Path: ".buckversion", ContentHash: "h1"}, {Path: ".buckjavaargs", ContentHash: "h2"}}
	if err := service.SetBuckDotFiles(context.Background(), id, paths); err != nil {
		t.Fatalf("SetBuckDotFiles: %v", err)
	}
	job, _ := coordinator.Build(id)
	if !reflect.DeepEqual(job.DotFiles, paths) {
		t.Errorf("recorded dotfiles = %+v, want %+v", job.DotFiles, paths)
	}
}
