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

package storage

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// indicates that an archive-relative path is malformed
type InvalidPathError struct {
	Path, Reason string
}

func (e InvalidPathError) Error() string {
	return fmt.Sprintf("Invalid archive path %q: %s", e.Path, e.Reason)
}

// indicates that a stored file or metadata document does not exist
type NotExistError struct {
	Path string
}

func (e NotExistError) Error() string {
	return fmt.Sprintf("No such file or object in archive: %s", e.Path)
}

// indicates a malformed S3 location string
type InvalidS3PathError struct {
	Path string
}

func (e InvalidS3PathError) Error() string {
	return fmt.Sprintf("Invalid S3 path %q (expected s3://bucket[/prefix])", e.Path)
}

// IsNotExist reports whether an error from a backend means the target was
// absent, unwrapping filesystem and S3 error types.
func IsNotExist(err error) bool {
	if err == nil {
		return false
	}
	var notExist NotExistError
	if errors.As(err, &notExist) {
		return true
	}
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}
