// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/stampede/lib/buildgraph"
	"github.com/bureau-foundation/stampede/lib/projectfs"
)

// graphManifest is the hand-written description of a build graph that
// "build submit" and "graph upload" accept. It is JSON with comments and
// trailing commas allowed. Files are named relative to the build root;
// their hashes and contents are read from disk.
type graphManifest struct {
	Cells           map[int32]buildgraph.Cell `json:"cells"`
	TopLevelTargets []string                  `json:"top_level_targets"`
	Targets         []buildgraph.TargetNode   `json:"targets"`
	Files           []manifestFile            `json:"files"`
	RuleKeys        map[string]string         `json:"rule_keys"`
}

type manifestFile struct {
	CellIndex  int32  `json:"cell_index"`
	Path       string `json:"path"`
	Executable bool   `json:"executable"`
}

func parseManifest(data []byte) (*graphManifest, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()

	var manifest graphManifest
	if err := decoder.Decode(&manifest); err != nil {
		return nil, fmt.Errorf("parsing graph manifest: %w", err)
	}
	if len(manifest.TopLevelTargets) == 0 {
		return nil, fmt.Errorf("graph manifest names no top_level_targets")
	}
	for _, file := range manifest.Files {
		if _, ok := manifest.Cells[file.CellIndex]; !ok && len(manifest.Cells) > 0 {
			return nil, fmt.Errorf("file %s refers to undefined cell %d", file.Path, file.CellIndex)
		}
	}
	return &manifest, nil
}

func readManifest(path string) (*graphManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	manifest, err := parseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return manifest, nil
}

// buildState resolves the manifest's files against filesystem and
// returns the graph with every file's hash and inline contents filled.
// Cells appear in FileHashes in order of first use.
func (m *graphManifest) buildState(filesystem projectfs.Filesystem) (*buildgraph.BuildJobState, error) {
	state := &buildgraph.BuildJobState{
		Cells:           m.Cells,
		TargetGraph:     buildgraph.TargetGraph{Nodes: slices.Clone(m.Targets)},
		TopLevelTargets: slices.Clone(m.TopLevelTargets),
		RuleKeys:        m.RuleKeys,
	}

	cellPosition := make(map[int32]int)
	for _, file := range m.Files {
		contents, err := filesystem.ReadFile(file.Path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file.Path, err)
		}
		position, ok := cellPosition[file.CellIndex]
		if !ok {
			position = len(state.FileHashes)
			cellPosition[file.CellIndex] = position
			state.FileHashes = append(state.FileHashes, buildgraph.FileHashes{CellIndex: file.CellIndex})
		}
		state.FileHashes[position].Entries = append(state.FileHashes[position].Entries, buildgraph.FileHashEntry{
			Path:         file.Path,
			HashCode:     projectfs.HashBytes(contents),
			IsExecutable: file.Executable,
			Contents:     contents,
		})
	}
	return state, nil
}
