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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/modos-dev/modos/model"
	"github.com/modos-dev/modos/schema"
)

// buildEntry is one block of a declarative build document.
type buildEntry struct {
	Element map[string]any `yaml:"element" json:"element"`
	Args    buildArgs      `yaml:"args" json:"args"`
}

// buildArgs are the per-element add arguments of a build document.
type buildArgs struct {
	SourceFile string `yaml:"source_file" json:"source_file"`
	PartOf     string `yaml:"part_of" json:"part_of"`
}

// pendingElement is a materialized build entry waiting to be placed.
type pendingElement struct {
	element model.Element
	args    buildArgs
}

// FromFile builds an archive from a declarative YAML document: a list of
// element blocks, exactly one of which describes the archive root, each
// with optional source_file and part_of arguments. Elements are placed
// parents before children regardless of their order in the document.
// Ids that already exist in the archive are merged instead of added, so
// rebuilding against an existing archive acts as an update.
func FromFile(ctx context.Context, buildPath, archivePath string, opts Options) (*MODO, error) {
	raw, err := os.ReadFile(buildPath)
	if err != nil {
		return nil, err
	}
	var entries []buildEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, InvalidBuildFileError{Path: buildPath, Reason: err.Error()}
	}

	var root map[string]any
	modoCount := 0
	seen := make(map[string]bool)
	for _, entry := range entries {
		class, _ := entry.Element["@type"].(string)
		id, _ := entry.Element["id"].(string)
		if class == "MODO" {
			modoCount++
			root = entry.Element
		}
		if id != "" {
			if seen[id] {
				return nil, InvalidBuildFileError{
					Path:   buildPath,
					Reason: fmt.Sprintf("duplicate element id %s", id),
				}
			}
			seen[id] = true
		}
	}
	if modoCount != 1 {
		return nil, InvalidBuildFileError{
			Path:   buildPath,
			Reason: fmt.Sprintf("expected exactly one MODO block, found %d", modoCount),
		}
	}

	rootOpts := opts
	if id, ok := root["id"].(string); ok && rootOpts.ID == "" {
		rootOpts.ID = id
	}
	if name, ok := root["name"].(string); ok && rootOpts.Name == "" {
		rootOpts.Name = name
	}
	if description, ok := root["description"].(string); ok && rootOpts.Description == "" {
		rootOpts.Description = description
	}
	m, err := Open(ctx, archivePath, rootOpts)
	if err != nil {
		return nil, err
	}

	var pending []pendingElement
	for _, entry := range entries {
		if class, _ := entry.Element["@type"].(string); class == "MODO" {
			continue
		}
		element, err := materializeEntry(entry)
		if err != nil {
			return nil, InvalidBuildFileError{Path: buildPath, Reason: err.Error()}
		}
		pending = append(pending, pendingElement{element: element, args: entry.Args})
	}

	// place entries parents first: anything whose part_of target is not
	// in the archive yet waits for a later pass
	for len(pending) > 0 {
		var waiting []pendingElement
		for _, p := range pending {
			if p.args.PartOf != "" {
				present, err := m.hasElement(ctx, p.args.PartOf)
				if err != nil {
					return nil, err
				}
				if !present {
					waiting = append(waiting, p)
					continue
				}
			}
			if err := m.place(ctx, p); err != nil {
				return nil, err
			}
		}
		if len(waiting) == len(pending) {
			stuck := make([]string, 0, len(waiting))
			for _, p := range waiting {
				stuck = append(stuck, p.element.ElementID())
			}
			return nil, InvalidBuildFileError{
				Path:   buildPath,
				Reason: fmt.Sprintf("could not resolve part_of for: %s", strings.Join(stuck, ", ")),
			}
		}
		pending = waiting
	}
	return m, nil
}

// materializeEntry turns a build block into a typed element, defaulting
// the data path to the source file name when the class stores files.
func materializeEntry(entry buildEntry) (model.Element, error) {
	class, _ := entry.Element["@type"].(string)
	if class == "" {
		return nil, fmt.Errorf("element block without @type")
	}
	id, _ := entry.Element["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("element block of class %s without id", class)
	}
	attrs := make(map[string]any, len(entry.Element))
	for key, value := range entry.Element {
		attrs[key] = value
	}
	if entry.Args.SourceFile != "" && schema.Load().HasSlot(class, "data_path") {
		if dataPath, _ := attrs["data_path"].(string); dataPath == "" {
			attrs["data_path"] = filepath.Base(entry.Args.SourceFile)
		}
	}
	element, err := schema.FromAttrs(class, attrs)
	if err != nil {
		return nil, err
	}
	element.SetElementID(id)
	return element, nil
}

// hasElement reports whether an id resolves to the archive root or any
// stored element.
func (m *MODO) hasElement(ctx context.Context, id string) (bool, error) {
	snapshot, err := m.Metadata(ctx)
	if err != nil {
		return false, err
	}
	trimmed := strings.TrimPrefix(id, "/")
	if _, ok := snapshot[trimmed]; ok {
		return true, nil
	}
	for key := range snapshot {
		if _, name := schema.SplitID(key); name == trimmed {
			return true, nil
		}
	}
	return false, nil
}

// place adds a build entry to the archive, or merges it when its id is
// already taken.
func (m *MODO) place(ctx context.Context, p pendingElement) error {
	_, bare := schema.SplitID(p.element.ElementID())
	snapshot, err := m.Metadata(ctx)
	if err != nil {
		return err
	}
	for key := range snapshot {
		if key == m.id {
			continue
		}
		if _, name := schema.SplitID(key); name == bare {
			return m.UpdateElement(ctx, p.element, UpdateOptions{SourceFile: p.args.SourceFile})
		}
	}
	return m.AddElement(ctx, p.element, AddOptions{
		SourceFile: p.args.SourceFile,
		PartOf:     p.args.PartOf,
	})
}
