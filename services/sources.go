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

package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modos-dev/modos/config"
	"github.com/modos-dev/modos/storage"
)

// A Source enumerates the archives behind the catalog and reads their
// metadata. Sources never write to the store they serve.
type Source interface {
	// lists the scoped object path ("bucket/name") of every served archive
	List(ctx context.Context) ([]string, error)
	// reads the consolidated metadata of the archive at the given path
	Metadata(ctx context.Context, archivePath string) (map[string]map[string]any, error)
}

// we maintain tables of source factories and instances, keyed by the
// provider names given in the store configuration
var sourceFactories = make(map[string]func() (Source, error))
var allSources = make(map[string]Source)

// RegisterSource associates a catalog source factory with a provider name.
func RegisterSource(provider string, factory func() (Source, error)) {
	sourceFactories[provider] = factory
}

// NewSource creates a catalog source for the given provider, or returns an
// existing instance.
func NewSource(provider string) (Source, error) {
	if source, found := allSources[provider]; found {
		return source, nil
	}
	factory, found := sourceFactories[provider]
	if !found {
		return nil, fmt.Errorf("Unknown catalog provider '%s'", provider)
	}
	source, err := factory()
	if err == nil {
		allSources[provider] = source // stash it
	}
	return source, err
}

func init() {
	RegisterSource("s3", newS3Source)
	RegisterSource("local", newLocalSource)
}

// a catalog source serving the archives under an S3 bucket
type s3Source struct{}

func newS3Source() (Source, error) {
	if config.Store.Bucket == "" {
		return nil, fmt.Errorf("No bucket was configured for the S3 catalog source.")
	}
	return &s3Source{}, nil
}

func (s *s3Source) List(ctx context.Context) ([]string, error) {
	return storage.ListS3Archives(ctx, config.Store.Bucket, config.Store.S3)
}

func (s *s3Source) Metadata(ctx context.Context, archivePath string) (map[string]map[string]any, error) {
	backend, err := storage.NewS3Backend(ctx, archivePath, config.Store.S3)
	if err != nil {
		return nil, err
	}
	return storage.NewMetaStore(backend).Snapshot(ctx)
}

// a catalog source serving the archives in subdirectories of a local
// directory, for development deployments and tests
type localSource struct {
	root string
}

func newLocalSource() (Source, error) {
	root, err := filepath.Abs(config.Store.Bucket)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("The local catalog source %s is not a directory.", root)
	}
	return &localSource{root: root}, nil
}

func (s *localSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	// the directory stands in for the bucket, so its name scopes the paths
	bucket := filepath.Base(s.root)
	archives := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			archives = append(archives, bucket+"/"+entry.Name())
		}
	}
	return archives, nil
}

func (s *localSource) Metadata(ctx context.Context, archivePath string) (map[string]map[string]any, error) {
	backend, err := storage.NewLocalBackend(filepath.Join(s.root, archiveName(archivePath)))
	if err != nil {
		return nil, err
	}
	return storage.NewMetaStore(backend).Snapshot(ctx)
}
