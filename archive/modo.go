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

// Package archive implements multi-omics digital objects: archives holding
// omics data files next to a zarr-compatible metadata hierarchy. An archive
// lives in a local directory or under an S3 prefix, and every mutation goes
// through the MODO type, which keeps the flattened metadata snapshot, the
// element containment links and the data files consistent with one another.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/modos-dev/modos/config"
	"github.com/modos-dev/modos/journal"
	"github.com/modos-dev/modos/model"
	"github.com/modos-dev/modos/remote"
	"github.com/modos-dev/modos/schema"
	"github.com/modos-dev/modos/storage"
)

// A MODO is an open multi-omics digital object.
type MODO struct {
	id       string
	backend  storage.Backend
	store    *storage.MetaStore
	endpoint *remote.EndpointManager
}

// Options configures how an archive is opened or created.
type Options struct {
	// ID identifies the archive. When empty, the last segment of the
	// archive path is used. Ignored when opening an existing archive,
	// which keeps its stored id.
	ID string
	// Name and Description seed the root metadata of a new archive.
	Name        string
	Description string
	// S3 carries object store credentials for s3:// paths.
	S3 config.S3Config
	// Endpoint points at a MODOS server. When set, the archive path is
	// interpreted as bucket/prefix on the server's object store, and
	// genomic files stream through its htsget service.
	Endpoint *remote.EndpointManager
}

// Open opens the archive at archivePath, creating it first when the
// location is empty. Paths starting with "s3://" address an object store
// directly; any other path is a local directory unless opts.Endpoint
// routes it to a remote store.
func Open(ctx context.Context, archivePath string, opts Options) (*MODO, error) {
	var backend storage.Backend
	var err error
	if opts.Endpoint != nil || storage.IsS3Path(archivePath) {
		location := archivePath
		if !storage.IsS3Path(location) {
			location = "s3://" + strings.TrimPrefix(location, "/")
		}
		s3opts := opts.S3
		if opts.Endpoint != nil && s3opts.Endpoint == "" {
			s3opts.Endpoint, err = opts.Endpoint.S3(ctx)
			if err != nil {
				return nil, err
			}
		}
		backend, err = storage.NewS3Backend(ctx, location, s3opts)
	} else {
		backend, err = storage.NewLocalBackend(archivePath)
	}
	if err != nil {
		return nil, err
	}

	id := opts.ID
	if id == "" {
		id = path.Base(strings.TrimSuffix(strings.ReplaceAll(archivePath, "\\", "/"), "/"))
	}
	m := &MODO{
		id:       id,
		backend:  backend,
		store:    storage.NewMetaStore(backend),
		endpoint: opts.Endpoint,
	}

	empty, err := backend.Empty(ctx)
	if err != nil {
		return nil, err
	}
	if !empty {
		// an existing archive keeps the id recorded in its metadata
		attrs, err := m.store.ReadAttrs(ctx, "")
		if err != nil {
			return nil, err
		}
		if stored, ok := attrs["id"].(string); ok && stored != "" {
			m.id = stored
		}
		return m, nil
	}
	return m, m.journaled(ctx, "create", "", func() error {
		return m.initialize(ctx, opts)
	})
}

// initialize writes the root metadata and the element category groups of a
// fresh archive.
func (m *MODO) initialize(ctx context.Context, opts Options) error {
	now := time.Now().UTC().Format(time.RFC3339)
	root := model.MODO{
		NamedThing: model.NamedThing{
			ID:          m.id,
			Name:        opts.Name,
			Description: opts.Description,
		},
		CreationDate:   now,
		LastUpdateDate: now,
	}
	attrs, err := model.ToAttrs(&root)
	if err != nil {
		return err
	}
	// unlike elements, whose ids live in their group paths, the root
	// records its id as an attribute
	attrs["id"] = m.id

	kinds := schema.ElementTypes()
	categories := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		categories = append(categories, string(kind))
	}
	return m.store.Init(ctx, attrs, categories)
}

// ID returns the archive identifier.
func (m *MODO) ID() string {
	return m.id
}

// Path returns the archive location.
func (m *MODO) Path() string {
	return m.backend.Path()
}

// Metadata returns the flattened metadata of the archive: one attribute
// document per element, keyed by the element path, plus the root document
// keyed by the archive id. The consolidated snapshot is refreshed first so
// the result always reflects the live documents.
func (m *MODO) Metadata(ctx context.Context) (map[string]map[string]any, error) {
	if err := m.store.Consolidate(ctx); err != nil {
		// read-only locations cannot refresh; fall back to the stored snapshot
		slog.Debug(fmt.Sprintf("Could not reconsolidate metadata for %s: %s", m.id, err.Error()))
	}
	return m.store.Snapshot(ctx)
}

// ListFiles lists the data files of the archive, metadata store excluded.
func (m *MODO) ListFiles(ctx context.Context) ([]string, error) {
	files, err := m.backend.List(ctx, "")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ListArchives lists the archive prefixes under an S3 bucket.
func ListArchives(ctx context.Context, bucket string, opts config.S3Config) ([]string, error) {
	return storage.ListS3Archives(ctx, bucket, opts)
}

// resolve maps a full or bare element id to its stored path and
// attributes. The snapshot the id was resolved against is returned so
// callers can keep working with a consistent view.
func (m *MODO) resolve(ctx context.Context, id string) (string, map[string]any, map[string]map[string]any, error) {
	snapshot, err := m.Metadata(ctx)
	if err != nil {
		return "", nil, nil, err
	}
	trimmed := strings.TrimPrefix(id, "/")
	if attrs, ok := snapshot[trimmed]; ok && trimmed != m.id {
		return trimmed, attrs, snapshot, nil
	}
	// bare names are unique across kinds, so a scan is unambiguous
	for key, attrs := range snapshot {
		if key == m.id {
			continue
		}
		if _, name := schema.SplitID(key); name == trimmed {
			return key, attrs, snapshot, nil
		}
	}
	return "", nil, nil, ElementNotFoundError{Id: id, Known: elementKeys(snapshot, m.id)}
}

// elementKeys returns the sorted element paths of a snapshot, root excluded.
func elementKeys(snapshot map[string]map[string]any, rootID string) []string {
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		if key == rootID {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// commit bumps the archive update timestamp and reconsolidates the
// metadata snapshot, making a mutation visible to readers.
func (m *MODO) commit(ctx context.Context) error {
	attrs, err := m.store.ReadAttrs(ctx, "")
	if err != nil {
		return err
	}
	attrs["last_update_date"] = time.Now().UTC().Format(time.RFC3339)
	if err := m.store.WriteAttrs(ctx, "", attrs); err != nil {
		return err
	}
	return m.store.Consolidate(ctx)
}

// journaled wraps a mutation with an operation record when the journal is
// open. Library callers that never initialize the journal pay nothing, and
// journal trouble is logged rather than failing the operation itself.
func (m *MODO) journaled(ctx context.Context, op, element string, fn func() error) error {
	if !journal.IsOpen() {
		return fn()
	}
	record := journal.Record{
		Id:        uuid.New(),
		Archive:   m.id,
		Operation: op,
		Element:   element,
		StartTime: time.Now(),
	}
	err := fn()
	record.StopTime = time.Now()
	if err != nil {
		record.Status = "failed"
		record.Message = err.Error()
	} else {
		record.Status = "succeeded"
		if op != "delete" {
			if manifest, merr := m.Manifest(ctx); merr == nil {
				record.Manifest = manifest
			} else {
				slog.Debug(fmt.Sprintf("Could not build a manifest for the journal: %s", merr.Error()))
			}
		}
	}
	if jerr := journal.RecordOperation(record); jerr != nil {
		slog.Warn(fmt.Sprintf("Could not journal the %s operation on %s: %s", op, m.id, jerr.Error()))
	}
	return err
}

// attrList coerces a metadata attribute into a string list. Scalars become
// single-entry lists and absent values become nil.
func attrList(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			list = append(list, fmt.Sprint(item))
		}
		return list
	case string:
		return []string{v}
	}
	return nil
}

// emptyValue reports whether an attribute value counts as unpopulated.
func emptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}
