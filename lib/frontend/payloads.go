// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package frontend

// RequestPayload is implemented only by the request payload types in
// this package.
type RequestPayload interface {
	requestType() RequestType
}

// ResponsePayload is implemented only by the response payload types in
// this package. A response payload reports the request type it answers.
type ResponsePayload interface {
	responseType() RequestType
}

// Request payloads.

type CreateBuildRequest struct {
	CreateTimestampMillis int64 `cbor:"create_timestamp_millis"`
}

type StartBuildRequest struct {
	StampedeID StampedeID `cbor:"stampede_id"`
}

type BuildStatusRequest struct {
	StampedeID StampedeID `cbor:"stampede_id"`
}

type FetchBuildGraphRequest struct {
	StampedeID StampedeID `cbor:"stampede_id"`
}

type StoreBuildGraphRequest struct {
	StampedeID StampedeID `cbor:"stampede_id"`
	BuildGraph []byte     `cbor:"build_graph"`
}

type CASContainsRequest struct {
	ContentHashes []string `cbor:"content_hashes"`
}

type StoreLocalChangesRequest struct {
	Files []FileInfo `cbor:"files"`
}

type FetchSourceFilesRequest struct {
	ContentHashes []string `cbor:"content_hashes"`
}

type SetBuckVersionRequest struct {
	StampedeID  StampedeID  `cbor:"stampede_id"`
	BuckVersion BuckVersion `cbor:"buck_version"`
}

type SetBuckDotFilePathsRequest struct {
	StampedeID StampedeID `cbor:"stampede_id"`
	DotFiles   []PathInfo `cbor:"dot_files"`
}

type MultiGetBuildSlaveRealTimeLogsRequest struct {
	StampedeID StampedeID            `cbor:"stampede_id"`
	Batches    []LogLineBatchRequest `cbor:"batches"`
}

type MultiGetBuildSlaveLogDirRequest struct {
	StampedeID StampedeID `cbor:"stampede_id"`
	RunIDs     []RunID    `cbor:"run_ids"`
}

func (*CreateBuildRequest) requestType() RequestType                    { return CreateBuild }
func (*StartBuildRequest) requestType() RequestType                     { return StartBuild }
func (*BuildStatusRequest) requestType() RequestType                    { return BuildStatusQuery }
func (*FetchBuildGraphRequest) requestType() RequestType                { return FetchBuildGraph }
func (*StoreBuildGraphRequest) requestType() RequestType                { return StoreBuildGraph }
func (*CASContainsRequest) requestType() RequestType                    { return CASContains }
func (*StoreLocalChangesRequest) requestType() RequestType              { return StoreLocalChanges }
func (*FetchSourceFilesRequest) requestType() RequestType               { return FetchSourceFiles }
func (*SetBuckVersionRequest) requestType() RequestType                 { return SetBuckVersion }
func (*SetBuckDotFilePathsRequest) requestType() RequestType            { return SetDotFilePaths }
func (*MultiGetBuildSlaveRealTimeLogsRequest) requestType() RequestType { return GetBuildSlaveRealTimeLogs }
func (*MultiGetBuildSlaveLogDirRequest) requestType() RequestType       { return GetBuildSlaveLogDir }

// Response payloads.

type CreateBuildResponse struct {
	BuildJob BuildJob `cbor:"build_job"`
}

type StartBuildResponse struct {
	BuildJob BuildJob `cbor:"build_job"`
}

type BuildStatusResponse struct {
	BuildJob BuildJob `cbor:"build_job"`
}

type FetchBuildGraphResponse struct {
	BuildGraph []byte `cbor:"build_graph"`
}

type StoreBuildGraphResponse struct{}

// CASContainsResponse is positionally aligned with the request's
// ContentHashes: Exists[i] answers ContentHashes[i].
type CASContainsResponse struct {
	Exists []bool `cbor:"exists"`
}

type StoreLocalChangesResponse struct{}

type FetchSourceFilesResponse struct {
	Files []FileInfo `cbor:"files"`
}

type SetBuckVersionResponse struct{}

type SetBuckDotFilePathsResponse struct{}

type MultiGetBuildSlaveRealTimeLogsResponse struct {
	MultiStreamLogs []StreamLogs `cbor:"multi_stream_logs"`
}

type MultiGetBuildSlaveLogDirResponse struct {
	LogDirs []BuildSlaveLogDir `cbor:"log_dirs"`
}

func (*CreateBuildResponse) responseType() RequestType                    { return CreateBuild }
func (*StartBuildResponse) responseType() RequestType                     { return StartBuild }
func (*BuildStatusResponse) responseType() RequestType                    { return BuildStatusQuery }
func (*FetchBuildGraphResponse) responseType() RequestType                { return FetchBuildGraph }
func (*StoreBuildGraphResponse) responseType() RequestType                { return StoreBuildGraph }
func (*CASContainsResponse) responseType() RequestType                    { return CASContains }
func (*StoreLocalChangesResponse) responseType() RequestType              { return StoreLocalChanges }
func (*FetchSourceFilesResponse) responseType() RequestType               { return FetchSourceFiles }
func (*SetBuckVersionResponse) responseType() RequestType                 { return SetBuckVersion }
func (*SetBuckDotFilePathsResponse) responseType() RequestType            { return SetDotFilePaths }
func (*MultiGetBuildSlaveRealTimeLogsResponse) responseType() RequestType { return GetBuildSlaveRealTimeLogs }
func (*MultiGetBuildSlaveLogDirResponse) responseType() RequestType       { return GetBuildSlaveLogDir }

// newRequestPayload allocates the payload kind for t, for decoding.
func newRequestPayload(t RequestType) RequestPayload {
	switch t {
	case CreateBuild:
		return &CreateBuildRequest{}
	case StartBuild:
		return &StartBuildRequest{}
	case BuildStatusQuery:
		return &BuildStatusRequest{}
	case FetchBuildGraph:
		return &FetchBuildGraphRequest{}
	case StoreBuildGraph:
		return &StoreBuildGraphRequest{}
	case CASContains:
		return &CASContainsRequest{}
	case StoreLocalChanges:
		return &StoreLocalChangesRequest{}
	case FetchSourceFiles:
		return &FetchSourceFilesRequest{}
	case SetBuckVersion:
		return &SetBuckVersionRequest{}
	case SetDotFilePaths:
		return &SetBuckDotFilePathsRequest{}
	case GetBuildSlaveRealTimeLogs:
		return &MultiGetBuildSlaveRealTimeLogsRequest{}
	case GetBuildSlaveLogDir:
		return &MultiGetBuildSlaveLogDirRequest{}
	}
	return nil
}

// newResponsePayload allocates the payload kind answering t.
func newResponsePayload(t RequestType) ResponsePayload {
	switch t {
	case CreateBuild:
		return &CreateBuildResponse{}
	case StartBuild:
		return &StartBuildResponse{}
	case BuildStatusQuery:
		return &BuildStatusResponse{}
	case FetchBuildGraph:
		return &FetchBuildGraphResponse{}
	case StoreBuildGraph:
		return &StoreBuildGraphResponse{}
	case CASContains:
		return &CASContainsResponse{}
	case StoreLocalChanges:
		return &StoreLocalChangesResponse{}
	case FetchSourceFiles:
		return &FetchSourceFilesResponse{}
	case SetBuckVersion:
		return &SetBuckVersionResponse{}
	case SetDotFilePaths:
		return &SetBuckDotFilePathsResponse{}
	case GetBuildSlaveRealTimeLogs:
		return &MultiGetBuildSlaveRealTimeLogsResponse{}
	case GetBuildSlaveLogDir:
		return &MultiGetBuildSlaveLogDirResponse{}
	}
	return nil
}
