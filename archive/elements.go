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
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/modos-dev/modos/genomics"
	"github.com/modos-dev/modos/model"
	"github.com/modos-dev/modos/schema"
)

// AddOptions configures AddElement.
type AddOptions struct {
	// SourceFile is a local file copied into the archive as the
	// element's data file. When the element carries no data_path, the
	// file's base name is adopted as the path inside the archive.
	SourceFile string
	// PartOf links the new element into the matching has_* list of the
	// named parent element. The archive id links to the root.
	PartOf string
}

// UpdateOptions configures UpdateElement.
type UpdateOptions struct {
	// SourceFile replaces the element's data file when its content
	// differs from the recorded checksum.
	SourceFile string
}

// AddElement adds an element to the archive: its data file is copied in,
// its containment link recorded and its attributes validated against the
// schema before anything is persisted. Element ids must be unique across
// all kinds.
func (m *MODO) AddElement(ctx context.Context, element model.Element, opts AddOptions) error {
	return m.journaled(ctx, "add", strings.TrimPrefix(element.ElementID(), "/"), func() error {
		return m.addElement(ctx, element, opts)
	})
}

func (m *MODO) addElement(ctx context.Context, element model.Element, opts AddOptions) error {
	kind, err := schema.TypeOf(element)
	if err != nil {
		return err
	}
	_, name := schema.SplitID(element.ElementID())
	if name == "" {
		return schema.MissingSlotError{Class: element.ClassName(), Slot: "id"}
	}
	fullID := schema.FullID(kind, name)

	snapshot, err := m.Metadata(ctx)
	if err != nil {
		return err
	}
	// ids must be unique across every kind, the archive root included
	for key := range snapshot {
		if _, existing := schema.SplitID(key); existing == name {
			return DuplicateIdError{Id: name}
		}
	}

	if opts.SourceFile != "" && model.DataPathOf(element) == "" {
		model.SetDataPath(element, filepath.Base(opts.SourceFile))
	}

	// validate before touching files, so a bad element leaves no debris
	attrs, err := model.ToAttrs(element)
	if err != nil {
		return err
	}
	if err := schema.Load().ValidateAttrs(element.ClassName(), attrs); err != nil {
		return err
	}

	if opts.SourceFile != "" {
		target := model.DataPathOf(element)
		if err := m.backend.Put(ctx, opts.SourceFile, target); err != nil {
			return err
		}
		if data, ok := element.(*model.DataEntity); ok {
			sum, err := model.DataChecksum(opts.SourceFile)
			if err != nil {
				return err
			}
			data.DataChecksum = sum
		}
		m.copyIndex(ctx, opts.SourceFile, target)
	}

	if opts.PartOf != "" {
		if err := m.linkToParent(ctx, snapshot, opts.PartOf, element.ClassName(), fullID); err != nil {
			return err
		}
	}

	// rebuild after the checksum and path may have been filled in
	attrs, err = model.ToAttrs(element)
	if err != nil {
		return err
	}
	schema.UpdateHasPartIDs(attrs)
	if err := m.store.WriteAttrs(ctx, fullID, attrs); err != nil {
		return err
	}
	return m.commit(ctx)
}

// linkToParent appends a child's full id to the matching has_* list of its
// parent, after checking that the parent's class declares such a slot.
func (m *MODO) linkToParent(ctx context.Context, snapshot map[string]map[string]any, parent, childClass, childID string) error {
	parentID := strings.TrimPrefix(parent, "/")
	parentAttrs, ok := snapshot[parentID]
	if !ok {
		return ElementNotFoundError{Id: parent, Known: elementKeys(snapshot, m.id)}
	}
	group := parentID
	if parentID == m.id {
		group = ""
	}
	parentClass, _ := parentAttrs["@type"].(string)
	slot, ok := schema.Load().HasPartSlotFor(childClass)
	if !ok || !schema.Load().HasSlot(parentClass, slot) {
		return IncompatibleContainmentError{
			Parent:      parentID,
			ParentClass: parentClass,
			ChildClass:  childClass,
		}
	}
	list := attrList(parentAttrs[slot])
	for _, existing := range list {
		if existing == childID {
			return nil
		}
	}
	parentAttrs[slot] = append(list, childID)
	return m.store.WriteAttrs(ctx, group, parentAttrs)
}

// copyIndex copies the companion index of a genomic file when one sits
// next to the source. A missing index is not an error.
func (m *MODO) copyIndex(ctx context.Context, sourceFile, target string) {
	format, err := genomics.FormatFromPath(sourceFile)
	if err != nil || !format.HasIndex() {
		return
	}
	sourceIndex, err := format.IndexPath(sourceFile)
	if err != nil {
		return
	}
	if _, err := os.Stat(sourceIndex); err != nil {
		return
	}
	targetIndex, err := format.IndexPath(target)
	if err != nil {
		return
	}
	if err := m.backend.Put(ctx, sourceIndex, targetIndex); err != nil {
		slog.Warn(fmt.Sprintf("Could not copy the index file %s: %s", sourceIndex, err.Error()))
	}
}

// moveIndex renames the companion index alongside its data file.
func (m *MODO) moveIndex(ctx context.Context, oldPath, newPath string) {
	format, err := genomics.FormatFromPath(oldPath)
	if err != nil || !format.HasIndex() {
		return
	}
	oldIndex, err := format.IndexPath(oldPath)
	if err != nil {
		return
	}
	exists, err := m.backend.Exists(ctx, oldIndex)
	if err != nil || !exists {
		return
	}
	newIndex, err := format.IndexPath(newPath)
	if err != nil {
		return
	}
	if err := m.backend.Move(ctx, oldIndex, newIndex); err != nil {
		slog.Warn(fmt.Sprintf("Could not move the index file %s: %s", oldIndex, err.Error()))
	}
}

// RemoveElement deletes an element, its backing data file and every link
// other elements hold to it. The archive root cannot be removed this way.
func (m *MODO) RemoveElement(ctx context.Context, id string) error {
	trimmed := strings.TrimPrefix(id, "/")
	if trimmed == m.id {
		return RootRemovalError{Id: trimmed}
	}
	return m.journaled(ctx, "remove", trimmed, func() error {
		return m.removeElement(ctx, trimmed)
	})
}

func (m *MODO) removeElement(ctx context.Context, id string) error {
	fullID, attrs, snapshot, err := m.resolve(ctx, id)
	if err != nil {
		return err
	}

	// delete the backing file and its index; absence is tolerated
	if dataPath, ok := attrs["data_path"].(string); ok && dataPath != "" {
		if err := m.backend.Remove(ctx, dataPath); err != nil {
			return err
		}
		if format, ferr := genomics.FormatFromPath(dataPath); ferr == nil && format.HasIndex() {
			if indexPath, ierr := format.IndexPath(dataPath); ierr == nil {
				if err := m.backend.Remove(ctx, indexPath); err != nil {
					return err
				}
			}
		}
	}

	if err := m.store.RemoveGroup(ctx, fullID); err != nil {
		return err
	}

	// scavenge links to the removed element from everything left
	for key, elementAttrs := range snapshot {
		if key == fullID {
			continue
		}
		group := key
		if key == m.id {
			group = ""
		}
		changed := false
		for attr, value := range elementAttrs {
			switch v := value.(type) {
			case string:
				if v == fullID {
					delete(elementAttrs, attr)
					changed = true
				}
			case []any, []string:
				list := attrList(v)
				kept := make([]string, 0, len(list))
				for _, item := range list {
					if item != fullID {
						kept = append(kept, item)
					}
				}
				if len(kept) != len(list) {
					elementAttrs[attr] = kept
					changed = true
				}
			}
		}
		if changed {
			if err := m.store.WriteAttrs(ctx, group, elementAttrs); err != nil {
				return err
			}
		}
	}
	return m.commit(ctx)
}

// RemoveObject deletes the whole archive: every data file and the metadata
// tree. There is no soft delete, so callers should confirm first.
func (m *MODO) RemoveObject(ctx context.Context) error {
	return m.journaled(ctx, "delete", "", func() error {
		return m.backend.RemovePrefix(ctx, "")
	})
}

// UpdateElement merges new attribute values into a stored element.
// Attributes that are already populated keep their stored value; only
// absent or empty slots adopt the incoming one. A changed data_path moves
// the stored file, and a source file whose checksum differs from the
// recorded one replaces the stored content. When nothing changes, the
// archive is left untouched.
func (m *MODO) UpdateElement(ctx context.Context, element model.Element, opts UpdateOptions) error {
	return m.journaled(ctx, "update", strings.TrimPrefix(element.ElementID(), "/"), func() error {
		return m.updateElement(ctx, element, opts)
	})
}

func (m *MODO) updateElement(ctx context.Context, element model.Element, opts UpdateOptions) error {
	fullID, stored, _, err := m.resolve(ctx, element.ElementID())
	if err != nil {
		return err
	}
	storedClass, _ := stored["@type"].(string)
	if storedClass != element.ClassName() {
		return TypeMismatchError{Id: fullID, Stored: storedClass, Given: element.ClassName()}
	}

	incoming, err := model.ToAttrs(element)
	if err != nil {
		return err
	}
	schema.UpdateHasPartIDs(incoming)

	changed := false

	// a new data path moves the stored file along with its index
	storedPath, _ := stored["data_path"].(string)
	newPath, _ := incoming["data_path"].(string)
	if newPath != "" && newPath != storedPath {
		if storedPath != "" {
			if err := m.backend.Move(ctx, storedPath, newPath); err != nil {
				return err
			}
			m.moveIndex(ctx, storedPath, newPath)
		}
		stored["data_path"] = newPath
		storedPath = newPath
		changed = true
	}

	// source file content only replaces the stored file when it differs
	if opts.SourceFile != "" {
		if storedPath == "" {
			return schema.MissingSlotError{Class: storedClass, Slot: "data_path"}
		}
		sum, err := model.DataChecksum(opts.SourceFile)
		if err != nil {
			return err
		}
		if storedSum, _ := stored["data_checksum"].(string); sum != storedSum {
			if err := m.backend.Put(ctx, opts.SourceFile, storedPath); err != nil {
				return err
			}
			m.copyIndex(ctx, opts.SourceFile, storedPath)
			stored["data_checksum"] = sum
			changed = true
		}
	}

	// additive merge: a populated attribute is never overwritten
	for key, value := range incoming {
		if key == "@type" || key == "data_path" || key == "data_checksum" {
			continue
		}
		if emptyValue(value) {
			continue
		}
		if current, ok := stored[key]; ok && !emptyValue(current) {
			continue
		}
		stored[key] = value
		changed = true
	}

	if !changed {
		return nil
	}
	if err := m.store.WriteAttrs(ctx, fullID, stored); err != nil {
		return err
	}
	return m.commit(ctx)
}
