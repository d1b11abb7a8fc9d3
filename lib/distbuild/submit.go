// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package distbuild

import (
	"context"
	"errors"

	"github.com/bureau-foundation/stampede/lib/async"
	"github.com/bureau-foundation/stampede/lib/buildgraph"
	"github.com/bureau-foundation/stampede/lib/frontend"
	"github.com/bureau-foundation/stampede/lib/projectfs"
)

// Submission is everything needed to hand a build to the coordinator.
type Submission struct {
	// State is the build graph, with inline contents for the files the
	// coordinator may be missing. It is not modified.
	State *buildgraph.BuildJobState

	// Filesystem and Hashes give access to the project root for dotfile
	// propagation. Both nil skips it.
	Filesystem projectfs.Filesystem
	Hashes     projectfs.FileHasher

	// Version identifies the build tool workers must run.
	Version frontend.BuckVersion
}

// Submit creates a build, uploads its graph, file contents, dotfiles and
// tool version concurrently, and starts it once every upload has
// finished. On failure after creation the returned job identifies the
// build that was created but not started.
func (s *Service) Submit(ctx context.Context, submission Submission) (frontend.BuildJob, error) {
	if submission.State == nil {
		return frontend.BuildJob{}, errors.New("distbuild: Submit with nil build job state")
	}
	if (submission.Filesystem == nil) != (submission.Hashes == nil) {
		return frontend.BuildJob{}, errors.New("distbuild: Submit needs both Filesystem and Hashes, or neither")
	}

	job, err := s.CreateBuild(ctx)
	if err != nil {
		return frontend.BuildJob{}, err
	}
	id := job.StampedeID

	uploads := []async.Awaitable{
		s.UploadTargetGraph(ctx, submission.State, id),
		s.UploadMissingFiles(ctx, submission.State.FileHashes),
		async.Submit(ctx, s.pool, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.SetBuckVersion(ctx, id, submission.Version)
		}),
	}
	if submission.Filesystem != nil {
		uploads = append(uploads, s.UploadBuckDotFiles(ctx, id, submission.Filesystem, submission.Hashes))
	}
	if err := async.JoinAll(ctx, uploads...); err != nil {
		return job, err
	}

	return s.StartBuild(ctx, id)
}
