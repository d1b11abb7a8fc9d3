// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package projectfs

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/zeebo/blake3"
)

// contentDomainKey is the BLAKE3 key for content hashes: the ASCII
// domain name zero-padded to 32 bytes. Changing it changes every
// content hash and defeats deduplication against existing uploads.
var contentDomainKey = [32]byte{
	's', 't', 'a', 'm', 'p', 'e', 'd', 'e', '.', 'c', 'o', 'n', 't', 'e', 'n', 't',
}

func newContentHasher() *blake3.Hasher {
	hasher, err := blake3.NewKeyed(contentDomainKey[:])
	if err != nil {
		// Only returned for a key of the wrong length.
		panic("projectfs: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}

// HashBytes returns the content hash of data.
func HashBytes(data []byte) string {
	hasher := newContentHasher()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashReader returns the content hash of everything read from r.
func HashReader(r io.Reader) (string, error) {
	hasher := newContentHasher()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashFile returns the content hash of the file at path on disk.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash, err := HashReader(file)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hash, nil
}

// FileHasher returns content hashes of project files by path relative
// to the project root.
type FileHasher interface {
	Hash(path string) (string, error)
}

// HashCache memoizes content hashes of files in a Filesystem. It is
// safe for concurrent use. Entries are never dropped; the cache
// assumes files do not change during one client invocation.
type HashCache struct {
	filesystem Filesystem

	mu     sync.Mutex
	hashes map[string]string
}

// NewHashCache returns an empty cache over filesystem.
func NewHashCache(filesystem Filesystem) *HashCache {
	return &HashCache{
		filesystem: filesystem,
		hashes:     make(map[string]string),
	}
}

// Hash returns the content hash of the file at path, reading and
// hashing it on first use.
func (c *HashCache) Hash(path string) (string, error) {
	c.mu.Lock()
	hash, ok := c.hashes[path]
	c.mu.Unlock()
	if ok {
		return hash, nil
	}

	// Hash outside the lock. Concurrent misses on the same path hash
	// twice and store the same value.
	content, err := c.filesystem.ReadFile(path)
	if err != nil {
		return "", err
	}
	hash = HashBytes(content)

	c.mu.Lock()
	c.hashes[path] = hash
	c.mu.Unlock()
	return hash, nil
}

// Len returns the number of cached hashes.
func (c *HashCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.hashes)
}
