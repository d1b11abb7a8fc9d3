// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package distbuild

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/bureau-foundation/stampede/lib/async"
	"github.com/bureau-foundation/stampede/lib/buildgraph"
	"github.com/bureau-foundation/stampede/lib/frontend"
)

// UploadTargetGraph stores the build graph for a build. File contents
// never travel inside the graph: they are stripped from a private copy
// taken before this method returns, so the caller keeps using state
// (contents included) while the upload runs. Content goes through
// UploadMissingFiles instead.
func (s *Service) UploadTargetGraph(ctx context.Context, state *buildgraph.BuildJobState, id frontend.StampedeID) *async.Future[struct{}] {
	if state == nil {
		return async.Failed[struct{}](errors.New("distbuild: UploadTargetGraph with nil build job state"))
	}
	stripped := state.DeepCopy()

	return async.Submit(ctx, s.pool, func(ctx context.Context) (struct{}, error) {
		stripped.StripContents()
		encoded, err := buildgraph.Serialize(stripped, s.compression)
		if err != nil {
			return struct{}{}, err
		}
		s.logger.Info("uploading build graph",
			"stampede_id", id.ID,
			"entries", stripped.EntryCount(),
			"size", humanize.IBytes(uint64(len(encoded))),
			"compression", s.compression,
		)
		_, err = callAs[*frontend.StoreBuildGraphResponse](ctx, s, frontend.NewRequest(&frontend.StoreBuildGraphRequest{
			StampedeID: id,
			BuildGraph: encoded,
		}))
		return struct{}{}, err
	})
}

// FetchBuildJobState retrieves and decodes the stored build graph of a
// build.
func (s *Service) FetchBuildJobState(ctx context.Context, id frontend.StampedeID) (*buildgraph.BuildJobState, error) {
	response, err := callAs[*frontend.FetchBuildGraphResponse](ctx, s, CreateFetchBuildGraphRequest(id))
	if err != nil {
		return nil, err
	}
	if len(response.BuildGraph) == 0 {
		return nil, &EmptyGraphError{StampedeID: id}
	}
	state, err := buildgraph.Deserialize(response.BuildGraph)
	if err != nil {
		return nil, fmt.Errorf("build graph of %q: %w", id.ID, err)
	}
	return state, nil
}
