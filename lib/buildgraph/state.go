// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

import (
	"bytes"
	"maps"
	"slices"
)

// BuildJobState is the full build graph snapshot for one build.
type BuildJobState struct {
	// Cells maps a cell index to its definition. FileHashes and target
	// nodes refer to cells by index.
	Cells map[int32]Cell `cbor:"cells,omitempty" json:"cells,omitempty"`

	TargetGraph     TargetGraph `cbor:"target_graph" json:"target_graph"`
	TopLevelTargets []string    `cbor:"top_level_targets,omitempty" json:"top_level_targets,omitempty"`

	// FileHashes holds, per cell, every input file the graph depends on.
	FileHashes []FileHashes `cbor:"file_hashes,omitempty" json:"file_hashes,omitempty"`

	// RuleKeys maps a build target to its locally computed rule key so
	// workers can detect divergent inputs.
	RuleKeys map[string]string `cbor:"rule_keys,omitempty" json:"rule_keys,omitempty"`
}

// Cell is one filesystem cell (repository root) of the build.
type Cell struct {
	Name   string                       `cbor:"name" json:"name"`
	Config map[string]map[string]string `cbor:"config,omitempty" json:"config,omitempty"`
}

// TargetGraph is the set of target definitions.
type TargetGraph struct {
	Nodes []TargetNode `cbor:"nodes,omitempty" json:"nodes,omitempty"`
}

// TargetNode is one target definition. RawNode is the parsed rule
// attributes as produced by the build file parser, opaque here.
type TargetNode struct {
	BuildTarget string `cbor:"build_target" json:"build_target"`
	CellIndex   int32  `cbor:"cell_index" json:"cell_index"`
	RawNode     string `cbor:"raw_node,omitempty" json:"raw_node,omitempty"`
}

// FileHashes is the set of file hash entries for one cell.
type FileHashes struct {
	CellIndex int32           `cbor:"cell_index" json:"cell_index"`
	Entries   []FileHashEntry `cbor:"entries,omitempty" json:"entries,omitempty"`
}

// FileHashEntry describes one input path. Contents is the inline file
// body, present only in the caller's in-memory snapshot; it is never
// part of an uploaded graph.
type FileHashEntry struct {
	Path              string       `cbor:"path" json:"path"`
	ArchiveMemberPath string       `cbor:"archive_member_path,omitempty" json:"archive_member_path,omitempty"`
	HashCode          string       `cbor:"hash_code" json:"hash_code"`
	IsDirectory       bool         `cbor:"is_directory,omitempty" json:"is_directory,omitempty"`
	PathIsAbsolute    bool         `cbor:"path_is_absolute,omitempty" json:"path_is_absolute,omitempty"`
	IsExecutable      bool         `cbor:"is_executable,omitempty" json:"is_executable,omitempty"`
	RootSymLink       *RootSymLink `cbor:"root_sym_link,omitempty" json:"root_sym_link,omitempty"`
	Children          []string     `cbor:"children,omitempty" json:"children,omitempty"`
	Contents          []byte       `cbor:"contents,omitempty" json:"contents,omitempty"`
}

// RootSymLink records that an entry lives under a symlink leading out
// of the cell.
type RootSymLink struct {
	Path   string `cbor:"path" json:"path"`
	Target string `cbor:"target" json:"target"`
}

// IsSymlink reports whether the entry is reached through a root symlink.
func (e *FileHashEntry) IsSymlink() bool { return e.RootSymLink != nil }

// DeepCopy returns a snapshot sharing no mutable memory with s.
func (s *BuildJobState) DeepCopy() *BuildJobState {
	if s == nil {
		return nil
	}
	clone := &BuildJobState{
		TargetGraph:     TargetGraph{Nodes: slices.Clone(s.TargetGraph.Nodes)},
		TopLevelTargets: slices.Clone(s.TopLevelTargets),
		RuleKeys:        maps.Clone(s.RuleKeys),
	}
	if s.Cells != nil {
		clone.Cells = make(map[int32]Cell, len(s.Cells))
		for index, cell := range s.Cells {
			clone.Cells[index] = cell.deepCopy()
		}
	}
	if s.FileHashes != nil {
		clone.FileHashes = make([]FileHashes, len(s.FileHashes))
		for i, cell := range s.FileHashes {
			clone.FileHashes[i] = cell.deepCopy()
		}
	}
	return clone
}

func (c Cell) deepCopy() Cell {
	clone := Cell{Name: c.Name}
	if c.Config != nil {
		clone.Config = make(map[string]map[string]string, len(c.Config))
		for section, values := range c.Config {
			clone.Config[section] = maps.Clone(values)
		}
	}
	return clone
}

func (h FileHashes) deepCopy() FileHashes {
	clone := FileHashes{CellIndex: h.CellIndex}
	if h.Entries != nil {
		clone.Entries = make([]FileHashEntry, len(h.Entries))
		for i, entry := range h.Entries {
			clone.Entries[i] = entry.deepCopy()
		}
	}
	return clone
}

func (e FileHashEntry) deepCopy() FileHashEntry {
	clone := e
	if e.RootSymLink != nil {
		link := *e.RootSymLink
		clone.RootSymLink = &link
	}
	clone.Children = slices.Clone(e.Children)
	if e.Contents != nil {
		clone.Contents = bytes.Clone(e.Contents)
	}
	return clone
}

// StripContents removes inline file contents from every entry in every
// cell, keeping paths, hashes and flags. It mutates s; callers that do
// not own s must strip a DeepCopy instead.
func (s *BuildJobState) StripContents() {
	for i := range s.FileHashes {
		entries := s.FileHashes[i].Entries
		for j := range entries {
			entries[j].Contents = nil
		}
	}
}

// EntryCount returns the number of file hash entries across all cells.
func (s *BuildJobState) EntryCount() int {
	count := 0
	for _, cell := range s.FileHashes {
		count += len(cell.Entries)
	}
	return count
}
