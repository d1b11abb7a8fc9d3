// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package frontend

import "fmt"

// StampedeID identifies one distributed build. The coordinator assigns
// it at build creation; it is the correlation key on every later request.
type StampedeID struct {
	ID string `cbor:"id" json:"id"`
}

func (id StampedeID) String() string { return id.ID }

// RunID identifies one worker (build slave) participating in a build.
type RunID struct {
	ID string `cbor:"id" json:"id"`
}

func (id RunID) String() string { return id.ID }

// BuildStatus is the coordinator-owned lifecycle state of a build.
type BuildStatus uint8

const (
	StatusUnknown BuildStatus = iota
	StatusCreated
	StatusQueued
	StatusBuilding
	StatusFinishedSuccessfully
	StatusFailed
)

var buildStatusNames = [...]string{
	StatusUnknown:              "UNKNOWN",
	StatusCreated:              "CREATED",
	StatusQueued:               "QUEUED",
	StatusBuilding:             "BUILDING",
	StatusFinishedSuccessfully: "FINISHED_SUCCESSFULLY",
	StatusFailed:               "FAILED",
}

func (s BuildStatus) String() string {
	if int(s) < len(buildStatusNames) {
		return buildStatusNames[s]
	}
	return fmt.Sprintf("BuildStatus(%d)", s)
}

// MarshalText renders the status by name in CLI JSON output. CBOR
// encoding is unaffected and stays numeric.
func (s BuildStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether the build has stopped changing state.
func (s BuildStatus) Terminal() bool {
	return s == StatusFinishedSuccessfully || s == StatusFailed
}

// BuildJob is the coordinator's status record for one build.
type BuildJob struct {
	StampedeID  StampedeID   `cbor:"stampede_id" json:"stampede_id"`
	Status      BuildStatus  `cbor:"status" json:"status"`
	BuckVersion *BuckVersion `cbor:"buck_version,omitempty" json:"buck_version,omitempty"`
	DotFiles    []PathInfo   `cbor:"dot_files,omitempty" json:"dot_files,omitempty"`
}

// FileInfo is one file body destined for the content-addressable store.
// ContentHash is the dedup key. A nil Content means "not populated";
// an empty non-nil slice is a legitimately empty file.
type FileInfo struct {
	ContentHash string `cbor:"content_hash" json:"content_hash"`
	Content     []byte `cbor:"content" json:"-"`
}

// PathInfo records where a content blob lives in the build environment,
// independent of whether the blob itself has been uploaded.
type PathInfo struct {
	Path        string `cbor:"path" json:"path"`
	ContentHash string `cbor:"content_hash" json:"content_hash"`
}

// VersionType distinguishes released tool builds from local ones.
type VersionType uint8

const (
	VersionUnknown VersionType = iota
	// VersionGit identifies the tool by the commit it was built from.
	VersionGit
	// VersionDevelopment identifies an uncommitted local build by the
	// content hash of its binary.
	VersionDevelopment
)

func (v VersionType) String() string {
	switch v {
	case VersionGit:
		return "GIT"
	case VersionDevelopment:
		return "DEVELOPMENT"
	default:
		return "UNKNOWN"
	}
}

// DevelopmentToolchain identifies a locally built tool binary.
type DevelopmentToolchain struct {
	ContentHash string `cbor:"content_hash" json:"content_hash"`
}

// BuckVersion identifies the build tool that produced a build graph, so
// remote workers run a matching tool.
type BuckVersion struct {
	Type                 VersionType           `cbor:"type" json:"type"`
	GitHash              string                `cbor:"git_hash,omitempty" json:"git_hash,omitempty"`
	DevelopmentToolchain *DevelopmentToolchain `cbor:"development_toolchain,omitempty" json:"development_toolchain,omitempty"`
}

// LogStreamType selects which output stream of a worker to read.
type LogStreamType uint8

const (
	StreamUnknown LogStreamType = iota
	StreamStdout
	StreamStderr
)

func (s LogStreamType) String() string {
	switch s {
	case StreamStdout:
		return "STDOUT"
	case StreamStderr:
		return "STDERR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogStreamType accepts "stdout" or "stderr" in any case.
func ParseLogStreamType(name string) (LogStreamType, error) {
	switch name {
	case "stdout", "STDOUT":
		return StreamStdout, nil
	case "stderr", "STDERR":
		return StreamStderr, nil
	default:
		return StreamUnknown, fmt.Errorf("unknown log stream %q (want stdout or stderr)", name)
	}
}

// LogLineBatchRequest asks for log batches of one worker stream,
// starting at BatchNumber.
type LogLineBatchRequest struct {
	RunID       RunID         `cbor:"run_id" json:"run_id"`
	Stream      LogStreamType `cbor:"stream" json:"stream"`
	BatchNumber int32         `cbor:"batch_number" json:"batch_number"`
}

// LogLineBatch is one numbered batch of log lines.
type LogLineBatch struct {
	BatchNumber int32    `cbor:"batch_number" json:"batch_number"`
	Lines       []string `cbor:"lines" json:"lines"`
}

// StreamLogs is the coordinator's answer for one LogLineBatchRequest.
type StreamLogs struct {
	RunID        RunID          `cbor:"run_id" json:"run_id"`
	Stream       LogStreamType  `cbor:"stream" json:"stream"`
	Batches      []LogLineBatch `cbor:"batches,omitempty" json:"batches,omitempty"`
	ErrorMessage string         `cbor:"error_message,omitempty" json:"error_message,omitempty"`
}

// BuildSlaveLogDir is an archived log directory of one worker.
type BuildSlaveLogDir struct {
	RunID        RunID  `cbor:"run_id" json:"run_id"`
	Data         []byte `cbor:"data,omitempty" json:"-"`
	ErrorMessage string `cbor:"error_message,omitempty" json:"error_message,omitempty"`
}
