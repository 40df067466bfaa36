// Copyright (c) 2024 The MODOS Project and its Contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package storage provides the archive backends (local filesystem and S3)
// and the hierarchical metadata store layered on top of them. Backends move
// whole data files; the metadata store reads and writes small JSON
// documents laid out in a zarr-v2 compatible key scheme so archives remain
// readable by zarr tooling.
package storage

import (
	"context"
	"io"
	"strings"
)

// MetaRoot is the archive-relative directory holding the metadata store.
const MetaRoot = "data.zarr"

// A Backend stores the files and metadata documents of one archive. All
// paths are archive-relative and slash-separated.
type Backend interface {
	// Path returns the archive location (directory or bucket/prefix).
	Path() string
	// URL returns a resolvable base URL for the archive, used when
	// projecting file locations into the metadata graph.
	URL() string

	// Exists reports whether a file or object exists.
	Exists(ctx context.Context, rel string) (bool, error)
	// Size returns the size in bytes of a stored file.
	Size(ctx context.Context, rel string) (int64, error)
	// Put copies a local file into the archive.
	Put(ctx context.Context, localSrc, rel string) error
	// Open streams a stored file.
	Open(ctx context.Context, rel string) (io.ReadCloser, error)
	// Remove deletes a stored file. Removing an absent file logs a
	// warning and succeeds.
	Remove(ctx context.Context, rel string) error
	// Move renames a stored file.
	Move(ctx context.Context, oldRel, newRel string) error
	// List returns all data files under sub, recursively, excluding the
	// metadata store.
	List(ctx context.Context, sub string) ([]string, error)

	// ReadObject, WriteObject and RemoveObject handle the small metadata
	// documents of the store.
	ReadObject(ctx context.Context, rel string) ([]byte, error)
	WriteObject(ctx context.Context, rel string, data []byte) error
	RemoveObject(ctx context.Context, rel string) error
	// ListObjects returns every key under prefix, metadata included.
	ListObjects(ctx context.Context, prefix string) ([]string, error)
	// RemovePrefix deletes a whole subtree. An empty prefix deletes the
	// archive itself.
	RemovePrefix(ctx context.Context, prefix string) error

	// Empty reports whether the archive has been initialized yet.
	Empty(ctx context.Context) (bool, error)
}

// IsS3Path reports whether a path addresses an S3 location.
func IsS3Path(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// cleanRel validates an archive-relative path: no absolute paths, no
// parent traversal, slash-separated.
func cleanRel(rel string) (string, error) {
	rel = strings.TrimPrefix(rel, "./")
	if rel == "" {
		return "", &InvalidPathError{Path: rel, Reason: "empty path"}
	}
	if strings.HasPrefix(rel, "/") {
		return "", &InvalidPathError{Path: rel, Reason: "absolute paths are not allowed"}
	}
	for _, part := range strings.Split(rel, "/") {
		if part == ".." {
			return "", &InvalidPathError{Path: rel, Reason: "path escapes the archive"}
		}
	}
	return rel, nil
}

// emptyStore reports whether the backend's root attribute document is
// absent or holds no attributes.
func emptyStore(ctx context.Context, b Backend) (bool, error) {
	data, err := b.ReadObject(ctx, MetaRoot+"/.zattrs")
	if err != nil {
		if IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	trimmed := strings.TrimSpace(string(data))
	return trimmed == "" || trimmed == "{}", nil
}
