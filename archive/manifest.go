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

package archive

import (
	"context"
	"encoding/json"
	"path"
	"strings"
	"time"

	"github.com/frictionlessdata/datapackage-go/datapackage"
	"github.com/frictionlessdata/datapackage-go/validator"

	"github.com/modos-dev/modos/genomics"
	"github.com/modos-dev/modos/storage"
)

// Manifest builds a Frictionless data package describing the archive's
// files: path, format, size and the recorded content checksum. The
// consolidated metadata document is listed as the first resource, so even
// a fresh archive has a valid package.
func (m *MODO) Manifest(ctx context.Context) (*datapackage.Package, error) {
	snapshot, err := m.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	// recorded checksums by data path
	checksums := make(map[string]string)
	for key, attrs := range snapshot {
		if key == m.id {
			continue
		}
		dataPath, _ := attrs["data_path"].(string)
		sum, _ := attrs["data_checksum"].(string)
		if dataPath != "" && sum != "" {
			checksums[dataPath] = sum
		}
	}

	files, err := m.ListFiles(ctx)
	if err != nil {
		return nil, err
	}

	metaDoc := storage.MetaRoot + "/.zmetadata"
	resources := make([]map[string]any, 0, len(files)+1)
	metaResource := map[string]any{
		"name":   "zmetadata",
		"path":   metaDoc,
		"format": "json",
	}
	if size, err := m.backend.Size(ctx, metaDoc); err == nil {
		metaResource["bytes"] = size
	}
	resources = append(resources, metaResource)

	for _, file := range files {
		size, err := m.backend.Size(ctx, file)
		if err != nil {
			return nil, err
		}
		resource := map[string]any{
			"name":  resourceName(file),
			"path":  file,
			"bytes": size,
		}
		if format, ferr := genomics.FormatFromPath(file); ferr == nil {
			resource["format"] = strings.ToLower(string(format))
		} else if ext := strings.TrimPrefix(path.Ext(file), "."); ext != "" {
			resource["format"] = strings.ToLower(ext)
		}
		if sum, ok := checksums[file]; ok {
			resource["data_checksum"] = sum
		}
		resources = append(resources, resource)
	}

	descriptor := map[string]any{
		"name":      resourceName(m.id),
		"profile":   "data-package",
		"created":   time.Now().UTC().Format(time.RFC3339),
		"resources": resources,
	}
	raw, err := json.Marshal(descriptor)
	if err != nil {
		return nil, err
	}
	return datapackage.FromString(string(raw), "data-package.json", validator.InMemoryLoader())
}

// resourceName sanitizes a file path into a Frictionless resource name,
// which only allows lowercase alphanumerics and ._/- characters.
func resourceName(file string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(file) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_', r == '/':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
