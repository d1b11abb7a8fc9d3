// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package distbuild

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/bureau-foundation/stampede/lib/frontend"
)

// FetchSlaveLogLines returns real-time log batches of build workers.
// Per-stream failures are reported inside the response.
func (s *Service) FetchSlaveLogLines(ctx context.Context, id frontend.StampedeID, batches []frontend.LogLineBatchRequest) (*frontend.MultiGetBuildSlaveRealTimeLogsResponse, error) {
	return callAs[*frontend.MultiGetBuildSlaveRealTimeLogsResponse](ctx, s, frontend.NewRequest(&frontend.MultiGetBuildSlaveRealTimeLogsRequest{
		StampedeID: id,
		Batches:    batches,
	}))
}

// FetchBuildSlaveLogDir returns the archived log directories of build
// workers.
func (s *Service) FetchBuildSlaveLogDir(ctx context.Context, id frontend.StampedeID, runIDs []frontend.RunID) (*frontend.MultiGetBuildSlaveLogDirResponse, error) {
	return callAs[*frontend.MultiGetBuildSlaveLogDirResponse](ctx, s, frontend.NewRequest(&frontend.MultiGetBuildSlaveLogDirRequest{
		StampedeID: id,
		RunIDs:     runIDs,
	}))
}

// FetchSourceFile returns the content stored under one hash. Any
// response other than exactly one file with content is a protocol
// violation.
func (s *Service) FetchSourceFile(ctx context.Context, contentHash string) (io.Reader, error) {
	response, err := callAs[*frontend.FetchSourceFilesResponse](ctx, s, CreateFetchSourceFileRequest(contentHash))
	if err != nil {
		return nil, err
	}
	if len(response.Files) != 1 {
		return nil, &frontend.ProtocolViolation{
			Type:   frontend.FetchSourceFiles,
			Detail: fmt.Sprintf("requested 1 file, received %d", len(response.Files)),
		}
	}
	file := response.Files[0]
	if file.Content == nil {
		return nil, &frontend.ProtocolViolation{
			Type:   frontend.FetchSourceFiles,
			Detail: fmt.Sprintf("file %s has no content", file.ContentHash),
		}
	}
	return bytes.NewReader(file.Content), nil
}
