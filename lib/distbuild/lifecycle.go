// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package distbuild

import (
	"context"

	"github.com/bureau-foundation/stampede/lib/frontend"
)

// CreateBuild asks the coordinator for a new build. The returned job
// carries the coordinator-assigned StampedeID used by every later call.
func (s *Service) CreateBuild(ctx context.Context) (frontend.BuildJob, error) {
	response, err := callAs[*frontend.CreateBuildResponse](ctx, s, frontend.NewRequest(&frontend.CreateBuildRequest{
		CreateTimestampMillis: s.clock.Now().UnixMilli(),
	}))
	if err != nil {
		return frontend.BuildJob{}, err
	}
	s.logger.Info("created distributed build",
		"stampede_id", response.BuildJob.StampedeID.ID,
		"status", response.BuildJob.Status,
	)
	return response.BuildJob, nil
}

// StartBuild starts a created build.
func (s *Service) StartBuild(ctx context.Context, id frontend.StampedeID) (frontend.BuildJob, error) {
	response, err := callAs[*frontend.StartBuildResponse](ctx, s, frontend.NewRequest(&frontend.StartBuildRequest{StampedeID: id}))
	if err != nil {
		return frontend.BuildJob{}, err
	}
	if err := checkIdentity(frontend.StartBuild, id, response.BuildJob); err != nil {
		return frontend.BuildJob{}, err
	}
	s.logger.Info("started distributed build",
		"stampede_id", id.ID,
		"status", response.BuildJob.Status,
	)
	return response.BuildJob, nil
}

// GetCurrentBuildJobState returns the coordinator's current record of a
// build. It has no side effects.
func (s *Service) GetCurrentBuildJobState(ctx context.Context, id frontend.StampedeID) (frontend.BuildJob, error) {
	response, err := callAs[*frontend.BuildStatusResponse](ctx, s, CreateBuildStatusRequest(id))
	if err != nil {
		return frontend.BuildJob{}, err
	}
	if err := checkIdentity(frontend.BuildStatusQuery, id, response.BuildJob); err != nil {
		return frontend.BuildJob{}, err
	}
	return response.BuildJob, nil
}

// SetBuckVersion records which build tool version workers must run.
func (s *Service) SetBuckVersion(ctx context.Context, id frontend.StampedeID, version frontend.BuckVersion) error {
	_, err := callAs[*frontend.SetBuckVersionResponse](ctx, s, frontend.NewRequest(&frontend.SetBuckVersionRequest{
		StampedeID:  id,
		BuckVersion: version,
	}))
	return err
}

// SetBuckDotFiles records the logical paths of the build's dotfiles.
// The content behind each hash is uploaded separately.
func (s *Service) SetBuckDotFiles(ctx context.Context, id frontend.StampedeID, dotFiles []frontend.PathInfo) error {
	_, err := callAs[*frontend.SetBuckDotFilePathsResponse](ctx, s, frontend.NewRequest(&frontend.SetBuckDotFilePathsRequest{
		StampedeID: id,
		DotFiles:   dotFiles,
	}))
	return err
}

func checkIdentity(requestType frontend.RequestType, requested frontend.StampedeID, job frontend.BuildJob) error {
	if job.StampedeID != requested {
		return &IdentityMismatchError{Type: requestType, Requested: requested, Returned: job.StampedeID}
	}
	return nil
}
