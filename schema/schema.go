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

// Package schema exposes an introspection view over the modos schema. The
// archive engine drives all structural decisions (which slots a class has,
// which has_* slot accepts which element kind, which values an enum allows)
// through this view instead of hard-coding them, so schema evolution stays
// localized to the bundled definition.
package schema

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed modos_schema.yaml
var schemaBytes []byte

type slotDef struct {
	Range       string `yaml:"range"`
	Multivalued bool   `yaml:"multivalued"`
	Identifier  bool   `yaml:"identifier"`
}

type classDef struct {
	IsA      string   `yaml:"is_a"`
	Slots    []string `yaml:"slots"`
	Required []string `yaml:"required"`
}

type enumDef struct {
	PermissibleValues []string `yaml:"permissible_values"`
}

type schemaDoc struct {
	ID       string              `yaml:"id"`
	Name     string              `yaml:"name"`
	Prefixes map[string]string   `yaml:"prefixes"`
	Slots    map[string]slotDef  `yaml:"slots"`
	Classes  map[string]classDef `yaml:"classes"`
	Enums    map[string]enumDef  `yaml:"enums"`
}

// A View answers structural questions about the modos schema.
type View struct {
	doc schemaDoc

	// class -> its slots, including inherited ones (parent slots first)
	slots map[string][]string
	// class -> required slots, including inherited ones
	required map[string][]string
	// child class -> the has_* slot that contains it
	haspartFor map[string]string
}

var (
	viewOnce sync.Once
	view     *View
)

// Load returns the process-wide schema view, parsing the bundled schema on
// first use. The schema ships with the binary, so a parse failure is a
// build defect and panics.
func Load() *View {
	viewOnce.Do(func() {
		var err error
		view, err = parse(schemaBytes)
		if err != nil {
			panic(fmt.Sprintf("built-in modos schema is malformed: %s", err.Error()))
		}
	})
	return view
}

func parse(data []byte) (*View, error) {
	var doc schemaDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	v := &View{
		doc:        doc,
		slots:      make(map[string][]string),
		required:   make(map[string][]string),
		haspartFor: make(map[string]string),
	}
	for name := range doc.Classes {
		slots, err := v.resolveChain(name, func(c classDef) []string { return c.Slots })
		if err != nil {
			return nil, err
		}
		required, err := v.resolveChain(name, func(c classDef) []string { return c.Required })
		if err != nil {
			return nil, err
		}
		v.slots[name] = slots
		v.required[name] = required
	}
	for slot, def := range doc.Slots {
		if strings.HasPrefix(slot, "has_") {
			if _, isClass := doc.Classes[def.Range]; isClass {
				v.haspartFor[def.Range] = slot
			}
		}
	}
	return v, nil
}

// walks the is_a chain from the root ancestor down, collecting class fields
func (v *View) resolveChain(class string, pick func(classDef) []string) ([]string, error) {
	var chain []classDef
	seen := make(map[string]bool)
	for name := class; name != ""; {
		def, ok := v.doc.Classes[name]
		if !ok {
			return nil, UnknownClassError{Name: name}
		}
		if seen[name] {
			return nil, fmt.Errorf("inheritance cycle through class %s", name)
		}
		seen[name] = true
		chain = append([]classDef{def}, chain...)
		name = def.IsA
	}
	var merged []string
	for _, def := range chain {
		merged = append(merged, pick(def)...)
	}
	return merged, nil
}

// Classes returns the names of all schema classes, sorted.
func (v *View) Classes() []string {
	names := make([]string, 0, len(v.doc.Classes))
	for name := range v.doc.Classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasClass reports whether the schema defines the given class.
func (v *View) HasClass(name string) bool {
	_, ok := v.doc.Classes[name]
	return ok
}

// Slots returns all slots of a class, including inherited ones.
func (v *View) Slots(class string) ([]string, error) {
	slots, ok := v.slots[class]
	if !ok {
		return nil, UnknownClassError{Name: class}
	}
	return slots, nil
}

// HasSlot reports whether a class carries the given slot.
func (v *View) HasSlot(class, slot string) bool {
	slots, ok := v.slots[class]
	if !ok {
		return false
	}
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}

// Required returns the required slots of a class, including inherited ones.
func (v *View) Required(class string) ([]string, error) {
	required, ok := v.required[class]
	if !ok {
		return nil, UnknownClassError{Name: class}
	}
	return required, nil
}

// SlotRange returns the declared range of a slot, or "" if the slot is
// unknown. Ranges name either a scalar type ("string", "uri"), an enum, or
// a schema class.
func (v *View) SlotRange(slot string) string {
	return v.doc.Slots[slot].Range
}

// Multivalued reports whether a slot holds a list of values.
func (v *View) Multivalued(slot string) bool {
	return v.doc.Slots[slot].Multivalued
}

// EnumValues returns the permissible values of an enum.
func (v *View) EnumValues(name string) ([]string, bool) {
	def, ok := v.doc.Enums[name]
	return def.PermissibleValues, ok
}

// HasPartSlots returns the containment slots of a class, mapping each
// has_* slot to the element class it accepts.
func (v *View) HasPartSlots(class string) map[string]string {
	out := make(map[string]string)
	slots, ok := v.slots[class]
	if !ok {
		return out
	}
	for _, slot := range slots {
		if !strings.HasPrefix(slot, "has_") {
			continue
		}
		if target := v.doc.Slots[slot].Range; v.HasClass(target) {
			out[slot] = target
		}
	}
	return out
}

// HasPartSlotFor returns the has_* slot that holds elements of the given
// class, e.g. "has_sample" for Sample.
func (v *View) HasPartSlotFor(childClass string) (string, bool) {
	slot, ok := v.haspartFor[childClass]
	return slot, ok
}

// Prefixes returns the schema's CURIE prefix map.
func (v *View) Prefixes() map[string]string {
	return v.doc.Prefixes
}

// Namespace returns the base IRI of the modos vocabulary.
func (v *View) Namespace() string {
	if ns, ok := v.doc.Prefixes["modos"]; ok {
		return ns
	}
	return v.doc.ID + "/"
}

// ExpandCURIE expands a prefix:local identifier using the schema prefix
// map, returning the input unchanged when no prefix matches.
func (v *View) ExpandCURIE(curie string) string {
	prefix, local, found := strings.Cut(curie, ":")
	if !found {
		return curie
	}
	if base, ok := v.doc.Prefixes[prefix]; ok {
		return base + local
	}
	return curie
}

// ValidateAttrs checks an attribute document against a class definition:
// every key must be a slot of the class, required slots must be present and
// enum-ranged slots must hold permissible values. The "@type" key is
// structural and skipped.
func (v *View) ValidateAttrs(class string, attrs map[string]any) error {
	if !v.HasClass(class) {
		return UnknownClassError{Name: class}
	}
	for key, value := range attrs {
		if key == "@type" || key == "id" {
			continue
		}
		if !v.HasSlot(class, key) {
			return UnknownSlotError{Class: class, Slot: key}
		}
		rng := v.SlotRange(key)
		allowed, isEnum := v.EnumValues(rng)
		if !isEnum {
			continue
		}
		for _, item := range valueList(value) {
			if !contains(allowed, item) {
				return InvalidSlotValueError{Slot: key, Value: item, Enum: rng}
			}
		}
	}
	required, _ := v.Required(class)
	for _, slot := range required {
		if slot == "id" {
			continue
		}
		if isZeroAttr(attrs[slot]) {
			return MissingSlotError{Class: class, Slot: slot}
		}
	}
	return nil
}

func valueList(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		var out []string
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case nil:
		return nil
	default:
		return []string{fmt.Sprint(v)}
	}
}

func isZeroAttr(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
