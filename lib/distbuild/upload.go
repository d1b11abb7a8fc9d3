// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package distbuild

import (
	"context"
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/bureau-foundation/stampede/lib/async"
	"github.com/bureau-foundation/stampede/lib/buildgraph"
	"github.com/bureau-foundation/stampede/lib/frontend"
)

// UploadSummary reports what one dedup upload did.
type UploadSummary struct {
	// Total is the number of distinct content hashes considered.
	Total int `json:"total"`

	// Present is how many of them the coordinator already held.
	Present int `json:"present"`

	// Uploaded is how many were sent, and UploadedBytes their combined
	// content size.
	Uploaded      int   `json:"uploaded"`
	UploadedBytes int64 `json:"uploaded_bytes"`
}

// UploadMissingFiles uploads the content of the graph's file entries
// that the coordinator does not already hold. Entries reached through a
// root symlink, directories, and absolute paths are skipped with an
// info log; they are never backed by uploaded content.
func (s *Service) UploadMissingFiles(ctx context.Context, fileHashes []buildgraph.FileHashes) *async.Future[UploadSummary] {
	var required []frontend.FileInfo
	for _, cell := range fileHashes {
		for _, entry := range cell.Entries {
			switch {
			case entry.IsSymlink():
				s.logger.Info("skipping upload of symlinked file", "path", entry.Path)
				continue
			case entry.IsDirectory:
				s.logger.Info("skipping upload of directory", "path", entry.Path)
				continue
			case entry.PathIsAbsolute:
				s.logger.Info("skipping upload of absolute path", "path", entry.Path)
				continue
			}
			required = append(required, frontend.FileInfo{
				ContentHash: entry.HashCode,
				Content:     entry.Contents,
			})
		}
	}
	return s.UploadMissingFilesFromList(ctx, required)
}

// UploadMissingFilesFromList uploads those of files whose content hash
// the coordinator does not hold. Files sharing a hash are sent at most
// once; the last one in the list is the one sent. An empty list still
// performs both round trips and uploads nothing.
//
// The list is copied before returning; callers may reuse it.
func (s *Service) UploadMissingFilesFromList(ctx context.Context, files []frontend.FileInfo) *async.Future[UploadSummary] {
	files = slices.Clone(files)
	return async.Submit(ctx, s.pool, func(ctx context.Context) (UploadSummary, error) {
		return s.uploadMissing(ctx, files)
	})
}

func (s *Service) uploadMissing(ctx context.Context, files []frontend.FileInfo) (UploadSummary, error) {
	distinct := dedupByHash(files)
	hashes := make([]string, len(distinct))
	for i, file := range distinct {
		hashes[i] = file.ContentHash
	}

	contains, err := callAs[*frontend.CASContainsResponse](ctx, s, frontend.NewRequest(&frontend.CASContainsRequest{
		ContentHashes: hashes,
	}))
	if err != nil {
		return UploadSummary{}, err
	}
	if len(contains.Exists) != len(hashes) {
		return UploadSummary{}, &frontend.ProtocolViolation{
			Type:   frontend.CASContains,
			Detail: fmt.Sprintf("answered %d flags for %d content hashes", len(contains.Exists), len(hashes)),
		}
	}

	missing := make([]frontend.FileInfo, 0, len(distinct))
	var missingBytes int64
	for i, exists := range contains.Exists {
		if exists {
			continue
		}
		missing = append(missing, distinct[i])
		missingBytes += int64(len(distinct[i].Content))
	}

	summary := UploadSummary{
		Total:         len(distinct),
		Present:       len(distinct) - len(missing),
		Uploaded:      len(missing),
		UploadedBytes: missingBytes,
	}
	s.logger.Info("uploading files missing from the content store",
		"present", summary.Present,
		"total", summary.Total,
		"uploading", summary.Uploaded,
		"upload_size", humanize.IBytes(uint64(missingBytes)),
	)

	if _, err := callAs[*frontend.StoreLocalChangesResponse](ctx, s, frontend.NewRequest(&frontend.StoreLocalChangesRequest{
		Files: missing,
	})); err != nil {
		return UploadSummary{}, err
	}
	return summary, nil
}

// dedupByHash keeps one record per content hash in first-seen order,
// holding the last record seen for each hash.
func dedupByHash(files []frontend.FileInfo) []frontend.FileInfo {
	position := make(map[string]int, len(files))
	distinct := make([]frontend.FileInfo, 0, len(files))
	for _, file := range files {
		if i, seen := position[file.ContentHash]; seen {
			distinct[i] = file
			continue
		}
		position[file.ContentHash] = len(distinct)
		distinct = append(distinct, file)
	}
	return distinct
}
