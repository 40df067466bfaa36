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
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalBackend stores an archive in a directory on the local filesystem.
type LocalBackend struct {
	root string
}

// NewLocalBackend opens (or creates) an archive directory.
func NewLocalBackend(path string) (*LocalBackend, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, err
	}
	return &LocalBackend{root: abs}, nil
}

func (b *LocalBackend) Path() string { return b.root }

func (b *LocalBackend) URL() string { return "file://" + b.root }

// abs maps an archive-relative path to the filesystem.
func (b *LocalBackend) abs(rel string) (string, error) {
	rel, err := cleanRel(rel)
	if err != nil {
		return "", err
	}
	return filepath.Join(b.root, filepath.FromSlash(rel)), nil
}

func (b *LocalBackend) Exists(ctx context.Context, rel string) (bool, error) {
	target, err := b.abs(rel)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(target); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b *LocalBackend) Size(ctx context.Context, rel string) (int64, error) {
	target, err := b.abs(rel)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, NotExistError{Path: rel}
		}
		return 0, err
	}
	return info.Size(), nil
}

func (b *LocalBackend) Put(ctx context.Context, localSrc, rel string) error {
	source, err := os.Open(localSrc)
	if err != nil {
		return err
	}
	defer source.Close()

	target, err := b.abs(rel)
	if err != nil {
		return err
	}
	return writeFileAtomic(target, source)
}

func (b *LocalBackend) Open(ctx context.Context, rel string) (io.ReadCloser, error) {
	target, err := b.abs(rel)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NotExistError{Path: rel}
		}
		return nil, err
	}
	return file, nil
}

func (b *LocalBackend) Remove(ctx context.Context, rel string) error {
	target, err := b.abs(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			slog.Warn(fmt.Sprintf("File %s does not exist, skipping removal", rel))
			return nil
		}
		return err
	}
	return nil
}

func (b *LocalBackend) Move(ctx context.Context, oldRel, newRel string) error {
	oldPath, err := b.abs(oldRel)
	if err != nil {
		return err
	}
	newPath, err := b.abs(newRel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(newPath), 0755); err != nil {
		return err
	}
	return os.Rename(oldPath, newPath)
}

func (b *LocalBackend) List(ctx context.Context, sub string) ([]string, error) {
	keys, err := b.walk(sub)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, key := range keys {
		if key == MetaRoot || strings.HasPrefix(key, MetaRoot+"/") {
			continue
		}
		files = append(files, key)
	}
	return files, nil
}

func (b *LocalBackend) ReadObject(ctx context.Context, rel string) ([]byte, error) {
	target, err := b.abs(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NotExistError{Path: rel}
		}
		return nil, err
	}
	return data, nil
}

func (b *LocalBackend) WriteObject(ctx context.Context, rel string, data []byte) error {
	target, err := b.abs(rel)
	if err != nil {
		return err
	}
	return writeFileAtomic(target, strings.NewReader(string(data)))
}

func (b *LocalBackend) RemoveObject(ctx context.Context, rel string) error {
	return b.Remove(ctx, rel)
}

func (b *LocalBackend) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	keys, err := b.walk(prefix)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (b *LocalBackend) RemovePrefix(ctx context.Context, prefix string) error {
	if prefix == "" {
		return os.RemoveAll(b.root)
	}
	target, err := b.abs(prefix)
	if err != nil {
		return err
	}
	return os.RemoveAll(target)
}

func (b *LocalBackend) Empty(ctx context.Context) (bool, error) {
	return emptyStore(ctx, b)
}

// walk lists regular files under sub as archive-relative slash paths.
func (b *LocalBackend) walk(sub string) ([]string, error) {
	start := b.root
	if sub != "" {
		var err error
		start, err = b.abs(sub)
		if err != nil {
			return nil, err
		}
	}
	var keys []string
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == start {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// writeFileAtomic stages content next to the target and renames it into
// place, so readers never observe partial writes.
func writeFileAtomic(target string, content io.Reader) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	scratch := filepath.Join(dir, fmt.Sprintf(".staged-%s", uuid.New().String()))
	staged, err := os.OpenFile(scratch, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(staged, content); err != nil {
		staged.Close()
		os.Remove(scratch)
		return err
	}
	if err := staged.Close(); err != nil {
		os.Remove(scratch)
		return err
	}
	if err := os.Rename(scratch, target); err != nil {
		os.Remove(scratch)
		return err
	}
	return nil
}
