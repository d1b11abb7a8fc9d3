// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package projectfs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one directory entry of the project root. Kind flags come
// from Lstat, so a symlink to a directory has IsSymlink set and IsDir
// unset.
type Entry struct {
	Name      string
	IsDir     bool
	IsSymlink bool
	Size      int64
}

// IsRegular reports whether the entry is a plain file.
func (e Entry) IsRegular() bool { return !e.IsDir && !e.IsSymlink }

// Filesystem is the view of a project the client needs. Paths passed
// to it are relative to Root.
type Filesystem interface {
	// Root returns the absolute project root.
	Root() string

	// ListRoot returns the entries directly under the root, sorted by
	// name.
	ListRoot() ([]Entry, error)

	// ReadFile returns the content of a file under the root.
	ReadFile(path string) ([]byte, error)
}

// Dir is a Filesystem backed by a directory on disk.
type Dir struct {
	root string
}

// NewDir returns a Filesystem rooted at root, which is made absolute.
// The directory must exist.
func NewDir(root string) (*Dir, error) {
	absolute, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root %s: %w", root, err)
	}
	info, err := os.Stat(absolute)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", absolute)
	}
	return &Dir{root: absolute}, nil
}

func (d *Dir) Root() string { return d.root }

func (d *Dir) ListRoot() ([]Entry, error) {
	dirEntries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("listing project root %s: %w", d.root, err)
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		info, err := os.Lstat(filepath.Join(d.root, dirEntry.Name()))
		if err != nil {
			return nil, fmt.Errorf("listing project root %s: %w", d.root, err)
		}
		entries = append(entries, Entry{
			Name:      dirEntry.Name(),
			IsDir:     info.IsDir(),
			IsSymlink: info.Mode()&fs.ModeSymlink != 0,
			Size:      info.Size(),
		})
	}
	return entries, nil
}

func (d *Dir) ReadFile(path string) ([]byte, error) {
	resolved, err := d.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(resolved)
}

// resolve joins a relative path onto the root, rejecting paths that
// escape it.
func (d *Dir) resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("path %q must be relative to the project root", path)
	}
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the project root", path)
	}
	return filepath.Join(d.root, cleaned), nil
}
