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
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// names of the documents making up a zarr v2 hierarchy
const (
	groupDoc        = ".zgroup"
	attrsDoc        = ".zattrs"
	consolidatedDoc = ".zmetadata"
)

// zarrFormat is the zarr spec version the store writes.
const zarrFormat = 2

// consolidatedFormat is the version of the consolidated-metadata scheme.
const consolidatedFormat = 1

// A MetaStore keeps the hierarchical metadata of one archive as a zarr v2
// group tree: one group per element, attribute documents as .zattrs, and a
// consolidated .zmetadata snapshot at the root. Group paths are
// slash-separated and relative to the store root; the empty path addresses
// the root group.
type MetaStore struct {
	backend Backend
}

// NewMetaStore layers a metadata store over a backend.
func NewMetaStore(backend Backend) *MetaStore {
	return &MetaStore{backend: backend}
}

// doc maps a group path and document name to a backend key.
func (m *MetaStore) doc(group, name string) string {
	if group == "" {
		return MetaRoot + "/" + name
	}
	return MetaRoot + "/" + group + "/" + name
}

// Init lays down the root group, its attribute document, and one child
// group per element category.
func (m *MetaStore) Init(ctx context.Context, rootAttrs map[string]any, categories []string) error {
	if err := m.CreateGroup(ctx, ""); err != nil {
		return err
	}
	if err := m.WriteAttrs(ctx, "", rootAttrs); err != nil {
		return err
	}
	for _, category := range categories {
		if err := m.CreateGroup(ctx, category); err != nil {
			return err
		}
	}
	return m.Consolidate(ctx)
}

// CreateGroup writes the group marker for a path, creating intermediate
// groups implicitly (zarr tolerates sparse hierarchies).
func (m *MetaStore) CreateGroup(ctx context.Context, group string) error {
	marker, err := json.Marshal(map[string]any{"zarr_format": zarrFormat})
	if err != nil {
		return err
	}
	return m.backend.WriteObject(ctx, m.doc(group, groupDoc), marker)
}

// HasGroup reports whether a group exists.
func (m *MetaStore) HasGroup(ctx context.Context, group string) (bool, error) {
	return m.backend.Exists(ctx, m.doc(group, groupDoc))
}

// ReadAttrs returns the attribute document of a group. A group without an
// attribute document reads as empty attributes; a missing group is an
// error.
func (m *MetaStore) ReadAttrs(ctx context.Context, group string) (map[string]any, error) {
	data, err := m.backend.ReadObject(ctx, m.doc(group, attrsDoc))
	if err != nil {
		if IsNotExist(err) {
			exists, groupErr := m.HasGroup(ctx, group)
			if groupErr != nil {
				return nil, groupErr
			}
			if exists {
				return map[string]any{}, nil
			}
			return nil, NotExistError{Path: m.doc(group, attrsDoc)}
		}
		return nil, err
	}
	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, fmt.Errorf("Malformed attribute document for group %q: %s",
			group, err.Error())
	}
	return attrs, nil
}

// WriteAttrs replaces the attribute document of a group, creating the
// group if needed.
func (m *MetaStore) WriteAttrs(ctx context.Context, group string, attrs map[string]any) error {
	exists, err := m.HasGroup(ctx, group)
	if err != nil {
		return err
	}
	if !exists {
		if err := m.CreateGroup(ctx, group); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(attrs, "", "    ")
	if err != nil {
		return err
	}
	return m.backend.WriteObject(ctx, m.doc(group, attrsDoc), data)
}

// RemoveGroup deletes a group and everything beneath it.
func (m *MetaStore) RemoveGroup(ctx context.Context, group string) error {
	if group == "" {
		return m.backend.RemovePrefix(ctx, MetaRoot)
	}
	return m.backend.RemovePrefix(ctx, MetaRoot+"/"+group)
}

// Groups returns the child group names directly under a parent group, in
// sorted order.
func (m *MetaStore) Groups(ctx context.Context, parent string) ([]string, error) {
	prefix := MetaRoot
	if parent != "" {
		prefix = MetaRoot + "/" + parent
	}
	keys, err := m.backend.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, key := range keys {
		if !strings.HasSuffix(key, "/"+groupDoc) {
			continue
		}
		child := strings.TrimSuffix(key, "/"+groupDoc)
		child = strings.TrimPrefix(child, prefix)
		child = strings.TrimPrefix(child, "/")
		// keep direct children only
		if child == "" || strings.Contains(child, "/") {
			continue
		}
		seen[child] = true
	}
	children := make([]string, 0, len(seen))
	for child := range seen {
		children = append(children, child)
	}
	sort.Strings(children)
	return children, nil
}

// Consolidate rewrites the .zmetadata document from the current group
// tree so the whole hierarchy can be read in one request.
func (m *MetaStore) Consolidate(ctx context.Context) error {
	keys, err := m.backend.ListObjects(ctx, MetaRoot)
	if err != nil {
		return err
	}
	metadata := make(map[string]json.RawMessage)
	for _, key := range keys {
		name := key[strings.LastIndex(key, "/")+1:]
		if name != groupDoc && name != attrsDoc {
			continue
		}
		data, err := m.backend.ReadObject(ctx, key)
		if err != nil {
			return err
		}
		entry := strings.TrimPrefix(key, MetaRoot+"/")
		metadata[entry] = json.RawMessage(data)
	}
	doc, err := json.MarshalIndent(map[string]any{
		"zarr_consolidated_format": consolidatedFormat,
		"metadata":                 metadata,
	}, "", "    ")
	if err != nil {
		return err
	}
	return m.backend.WriteObject(ctx, MetaRoot+"/"+consolidatedDoc, doc)
}

// Snapshot reads the consolidated metadata and flattens it into one
// attribute document per group. The root group's attributes are keyed by
// their own "id" attribute; element groups are keyed by their
// "<category>/<name>" path.
func (m *MetaStore) Snapshot(ctx context.Context) (map[string]map[string]any, error) {
	data, err := m.backend.ReadObject(ctx, MetaRoot+"/"+consolidatedDoc)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Format   int                        `json:"zarr_consolidated_format"`
		Metadata map[string]json.RawMessage `json:"metadata"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("Malformed consolidated metadata: %s", err.Error())
	}
	if doc.Format != consolidatedFormat {
		return nil, fmt.Errorf("Unsupported consolidated metadata format: %d", doc.Format)
	}

	snapshot := make(map[string]map[string]any)
	for entry, raw := range doc.Metadata {
		group, name := splitEntry(entry)
		if name != attrsDoc {
			continue
		}
		var attrs map[string]any
		if err := json.Unmarshal(raw, &attrs); err != nil {
			return nil, fmt.Errorf("Malformed attribute document for group %q: %s",
				group, err.Error())
		}
		if len(attrs) == 0 {
			continue
		}
		key := group
		if group == "" {
			// the root keys its snapshot entry by its own id
			id, ok := attrs["id"].(string)
			if !ok || id == "" {
				continue
			}
			key = id
		}
		snapshot[key] = attrs
	}
	return snapshot, nil
}

// splitEntry splits a consolidated metadata key into group path and
// document name.
func splitEntry(entry string) (group, name string) {
	i := strings.LastIndex(entry, "/")
	if i < 0 {
		return "", entry
	}
	return entry[:i], entry[i+1:]
}
