// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package diagnostics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/tidwall/jsonc"
)

// Filename is the conventional name of an aggregated diagnostics file.
const Filename = "diagnostics.json"

// ErrMissingInput is returned when an input document does not exist.
var ErrMissingInput = errors.New("diagnostic input does not exist")

// Aggregate reads each input document and writes them to output as one
// JSON array. Inputs are ordered by path and a path named more than once
// is read once.
func Aggregate(inputs []string, output io.Writer) error {
	var buffer bytes.Buffer
	if err := aggregate(inputs, &buffer); err != nil {
		return err
	}
	_, err := output.Write(buffer.Bytes())
	return err
}

// AggregateFile writes the aggregate of inputs to outputPath, creating
// its parent directory first.
func AggregateFile(inputs []string, outputPath string) error {
	var buffer bytes.Buffer
	if err := aggregate(inputs, &buffer); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, buffer.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	return nil
}

func aggregate(inputs []string, buffer *bytes.Buffer) error {
	inputs = slices.Compact(slices.Sorted(slices.Values(inputs)))

	buffer.WriteByte('[')
	for index, input := range inputs {
		data, err := os.ReadFile(input)
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingInput, input)
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", input, err)
		}

		stripped := jsonc.ToJSON(data)
		if !json.Valid(stripped) {
			return fmt.Errorf("%s: not a valid JSON document", input)
		}

		if index > 0 {
			buffer.WriteByte(',')
		}
		if err := json.Compact(buffer, stripped); err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}
	}
	buffer.WriteByte(']')
	buffer.WriteByte('\n')
	return nil
}
