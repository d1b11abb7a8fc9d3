// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package distbuild

import (
	"context"
	"strings"

	"github.com/bureau-foundation/stampede/lib/async"
	"github.com/bureau-foundation/stampede/lib/frontend"
	"github.com/bureau-foundation/stampede/lib/projectfs"
)

// DotFileFilter selects the build tool's dotfiles among the regular
// files at the project root: names starting with Prefix and containing
// Tag, except those starting with ExcludePrefix (the primary config,
// which workers receive another way). An empty ExcludePrefix excludes
// nothing.
type DotFileFilter struct {
	Prefix        string `yaml:"prefix"`
	Tag           string `yaml:"tag"`
	ExcludePrefix string `yaml:"exclude_prefix"`
}

// DefaultDotFileFilter matches files such as .buckversion and
// .buckjavaargs but not .buckconfig or .buckconfig.local.
var DefaultDotFileFilter = DotFileFilter{
	Prefix:        ".",
	Tag:           "buck",
	ExcludePrefix: ".buckconfig",
}

// Matches reports whether a file name passes the filter.
func (f DotFileFilter) Matches(name string) bool {
	if !strings.HasPrefix(name, f.Prefix) || !strings.Contains(name, f.Tag) {
		return false
	}
	return f.ExcludePrefix == "" || !strings.HasPrefix(name, f.ExcludePrefix)
}

// dotFiles is the enumeration result both continuations of
// UploadBuckDotFiles read. Neither modifies it.
type dotFiles struct {
	files []frontend.FileInfo
	paths []frontend.PathInfo
}

// UploadBuckDotFiles propagates the project's dotfiles to a build:
// their paths are recorded with SetBuckDotFiles and their content goes
// through the dedup uploader. Both steps start from one enumeration of
// the project root and run independently of each other; the returned
// future completes when both have, failing with the first error either
// reports. A step that succeeded is not undone when the other fails.
// Filesystem and hashing errors are returned as they are.
func (s *Service) UploadBuckDotFiles(ctx context.Context, id frontend.StampedeID, filesystem projectfs.Filesystem, hashes projectfs.FileHasher) *async.Future[struct{}] {
	enumerated := async.Submit(ctx, s.pool, func(context.Context) (dotFiles, error) {
		return s.collectDotFiles(filesystem, hashes)
	})

	recorded := async.Then(ctx, s.pool, enumerated, func(ctx context.Context, found dotFiles) (struct{}, error) {
		return struct{}{}, s.SetBuckDotFiles(ctx, id, found.paths)
	})
	uploaded := async.ThenAsync(ctx, s.pool, enumerated, func(ctx context.Context, found dotFiles) *async.Future[UploadSummary] {
		return s.UploadMissingFilesFromList(ctx, found.files)
	})

	return async.AllOf(ctx, recorded, uploaded)
}

func (s *Service) collectDotFiles(filesystem projectfs.Filesystem, hashes projectfs.FileHasher) (dotFiles, error) {
	entries, err := filesystem.ListRoot()
	if err != nil {
		return dotFiles{}, err
	}

	var found dotFiles
	for _, entry := range entries {
		if !entry.IsRegular() || !s.dotFiles.Matches(entry.Name) {
			continue
		}
		content, err := filesystem.ReadFile(entry.Name)
		if err != nil {
			return dotFiles{}, err
		}
		hash, err := hashes.Hash(entry.Name)
		if err != nil {
			return dotFiles{}, err
		}
		found.files = append(found.files, frontend.FileInfo{ContentHash: hash, Content: content})
		found.paths = append(found.paths, frontend.PathInfo{Path: entry.Name, ContentHash: hash})
	}
	s.logger.Debug("collected dotfiles", "count", len(found.paths))
	return found, nil
}
