// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package distbuild

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/stampede/lib/frontend"
)

// call performs one checked round trip. Every request the Service makes
// goes through here.
func (s *Service) call(ctx context.Context, request *frontend.Request) (*frontend.Response, error) {
	started := s.clock.Now()
	response, err := s.transport.MakeRequest(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("stampede %s request: %w", request.Type(), err)
	}
	s.logger.Debug("stampede request completed",
		"type", request.Type(),
		"successful", response != nil && response.Successful(),
		"elapsed", s.clock.Now().Sub(started),
	)

	if response == nil {
		return nil, &frontend.ProtocolViolation{Type: request.Type(), Detail: "transport returned no response"}
	}
	if !response.Successful() {
		return nil, &frontend.RemoteOperationError{Type: request.Type(), Message: response.ErrorMessage()}
	}
	if response.Type() != request.Type() {
		return nil, &frontend.ProtocolViolation{
			Type:   request.Type(),
			Detail: fmt.Sprintf("response has type %s", response.Type()),
		}
	}
	return response, nil
}

// callAs performs a checked call and extracts the typed payload.
func callAs[T frontend.ResponsePayload](ctx context.Context, s *Service, request *frontend.Request) (T, error) {
	response, err := s.call(ctx, request)
	if err != nil {
		var zero T
		return zero, err
	}
	return frontend.ResponseAs[T](response)
}

// CreateFetchBuildGraphRequest builds the FETCH_BUILD_GRAPH request for
// a build.
func CreateFetchBuildGraphRequest(id frontend.StampedeID) *frontend.Request {
	return frontend.NewRequest(&frontend.FetchBuildGraphRequest{StampedeID: id})
}

// CreateFetchSourceFileRequest builds a FETCH_SRC_FILES request for a
// single content hash.
func CreateFetchSourceFileRequest(contentHash string) *frontend.Request {
	return frontend.NewRequest(&frontend.FetchSourceFilesRequest{ContentHashes: []string{contentHash}})
}

// CreateBuildStatusRequest builds the BUILD_STATUS request for a build.
func CreateBuildStatusRequest(id frontend.StampedeID) *frontend.Request {
	return frontend.NewRequest(&frontend.BuildStatusRequest{StampedeID: id})
}
