// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/bureau-foundation/stampede/lib/codec"
)

// headerSize is the tag byte plus the uint32 uncompressed length.
const headerSize = 5

// MaxGraphSize bounds the uncompressed body accepted by [Deserialize].
// A corrupt header must not make the decoder allocate gigabytes.
const MaxGraphSize = 1 << 30

// Serialize encodes state for transfer. The body is compressed with
// the requested algorithm unless that would not make it smaller.
// Serialize does not modify state.
func Serialize(state *BuildJobState, compression Compression) ([]byte, error) {
	if state == nil {
		return nil, errors.New("buildgraph: cannot serialize a nil build job state")
	}
	body, err := codec.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("buildgraph: encoding build job state: %w", err)
	}
	if uint64(len(body)) > math.MaxUint32 {
		return nil, fmt.Errorf("buildgraph: encoded build job state is %d bytes, exceeds header limit", len(body))
	}

	compressed, err := compress(body, compression)
	if errors.Is(err, errIncompressible) {
		compression, compressed, err = CompressionNone, body, nil
	}
	if err != nil {
		return nil, fmt.Errorf("buildgraph: %w", err)
	}

	output := make([]byte, headerSize, headerSize+len(compressed))
	output[0] = byte(compression)
	binary.BigEndian.PutUint32(output[1:headerSize], uint32(len(body)))
	return append(output, compressed...), nil
}

// Deserialize decodes bytes produced by [Serialize].
func Deserialize(data []byte) (*BuildJobState, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("buildgraph: encoded graph is %d bytes, shorter than its %d-byte header", len(data), headerSize)
	}
	compression := Compression(data[0])
	size := binary.BigEndian.Uint32(data[1:headerSize])
	if size > MaxGraphSize {
		return nil, fmt.Errorf("buildgraph: header declares %d bytes, exceeds limit of %d", size, MaxGraphSize)
	}

	body, err := decompress(data[headerSize:], compression, int(size))
	if err != nil {
		return nil, fmt.Errorf("buildgraph: %w", err)
	}

	var state BuildJobState
	if err := codec.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("buildgraph: decoding build job state: %w", err)
	}
	return &state, nil
}

// CompressionOf reports the compression tag of an encoded graph.
func CompressionOf(data []byte) (Compression, error) {
	if len(data) < headerSize {
		return 0, fmt.Errorf("buildgraph: encoded graph is %d bytes, shorter than its %d-byte header", len(data), headerSize)
	}
	return Compression(data[0]), nil
}
