// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package frontend

import (
	"fmt"
	"strings"
)

// RequestType tags a request and its matching response. The numeric
// values are protocol constants.
type RequestType uint8

const (
	RequestUnknown RequestType = iota
	CreateBuild
	StartBuild
	BuildStatusQuery
	FetchBuildGraph
	StoreBuildGraph
	CASContains
	StoreLocalChanges
	FetchSourceFiles
	SetBuckVersion
	SetDotFilePaths
	GetBuildSlaveRealTimeLogs
	GetBuildSlaveLogDir
)

var requestTypeNames = [...]string{
	RequestUnknown:            "UNKNOWN",
	CreateBuild:               "CREATE_BUILD",
	StartBuild:                "START_BUILD",
	BuildStatusQuery:          "BUILD_STATUS",
	FetchBuildGraph:           "FETCH_BUILD_GRAPH",
	StoreBuildGraph:           "STORE_BUILD_GRAPH",
	CASContains:               "CAS_CONTAINS",
	StoreLocalChanges:         "STORE_LOCAL_CHANGES",
	FetchSourceFiles:          "FETCH_SRC_FILES",
	SetBuckVersion:            "SET_BUCK_VERSION",
	SetDotFilePaths:           "SET_DOTFILE_PATHS",
	GetBuildSlaveRealTimeLogs: "GET_BUILD_SLAVE_REAL_TIME_LOGS",
	GetBuildSlaveLogDir:       "GET_BUILD_SLAVE_LOG_DIR",
}

func (t RequestType) String() string {
	if int(t) < len(requestTypeNames) {
		return requestTypeNames[t]
	}
	return fmt.Sprintf("RequestType(%d)", t)
}

// Valid reports whether t is one of the known request types.
func (t RequestType) Valid() bool {
	return t > RequestUnknown && int(t) < len(requestTypeNames)
}

// ParseRequestType accepts the protocol name, case-insensitively.
func ParseRequestType(name string) (RequestType, error) {
	upper := strings.ToUpper(name)
	for i, candidate := range requestTypeNames {
		if i == int(RequestUnknown) {
			continue
		}
		if candidate == upper {
			return RequestType(i), nil
		}
	}
	return RequestUnknown, fmt.Errorf("unknown request type %q", name)
}

// RequestTypes returns every valid request type in protocol order.
func RequestTypes() []RequestType {
	types := make([]RequestType, 0, len(requestTypeNames)-1)
	for i := 1; i < len(requestTypeNames); i++ {
		types = append(types, RequestType(i))
	}
	return types
}
