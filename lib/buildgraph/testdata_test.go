// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

import (
	"fmt"
	"strings"
)

// sampleState returns a small two-cell graph with inline contents.
func sampleState() *BuildJobState {
	return &BuildJobState{
		Cells: map[int32]Cell{
			0: {Name: "root", Config: map[string]map[string]string{
				"cxx": {"cflags": "-O2"},
			}},
			1: {Name: "third-party"},
		},
		TargetGraph: TargetGraph{Nodes: []TargetNode{
			{BuildTarget: "//app:main", CellIndex: 0, RawNode: `{"deps":["//lib:core"]}`},
			{BuildTarget: "//lib:core", CellIndex: 0},
		}},
		TopLevelTargets: []string{"//app:main"},
		FileHashes: []FileHashes{
			{CellIndex: 0, Entries: []FileHashEntry{
				{Path: "app/main.c", HashCode: "aa01", Contents: []byte("int main() { return 0; }")},
				{Path: "app", HashCode: "aa02", IsDirectory: true, Children: []string{"main.c"}},
				{Path: "lib/core.c", HashCode: "aa03", IsExecutable: true, Contents: []byte("void core() {}")},
			}},
			{CellIndex: 1, Entries: []FileHashEntry{
				{Path: "vendor/link.h", HashCode: "bb01", RootSymLink: &RootSymLink{Path: "vendor", Target: "/opt/vendor"}},
				{Path: "/usr/include/stdio.h", HashCode: "bb02", PathIsAbsolute: true},
			}},
		},
		RuleKeys: map[string]string{"//app:main": "rk1", "//lib:core": "rk2"},
	}
}

// largeState returns a graph big enough, and repetitive enough, that
// both compressors shrink it.
func largeState() *BuildJobState {
	state := &BuildJobState{}
	entries := make([]FileHashEntry, 0, 500)
	for i := range 500 {
		entries = append(entries, FileHashEntry{
			Path:     fmt.Sprintf("src/generated/module_%04d/source.c", i),
			HashCode: strings.Repeat("0", 36) + fmt.Sprintf("%04d", i),
		})
	}
	state.FileHashes = []FileHashes{{CellIndex: 0, Entries: entries}}
	return state
}
