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

package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modos-dev/modos/model"
)

// An ElementType is the storage kind of an archive element. Elements of a
// kind live under the metadata group of the same name, and an element's
// full id is "<kind>/<name>".
type ElementType string

const (
	SampleElement    ElementType = "sample"
	AssayElement     ElementType = "assay"
	DataElement      ElementType = "data"
	ReferenceElement ElementType = "reference"
	SequenceElement  ElementType = "sequence"
)

var typeToClass = map[ElementType]string{
	SampleElement:    "Sample",
	AssayElement:     "Assay",
	DataElement:      "DataEntity",
	ReferenceElement: "ReferenceGenome",
	SequenceElement:  "ReferenceSequence",
}

var classToType = map[string]ElementType{}

// constructors for materializing stored attribute documents
var classFactories = map[string]func() model.Element{
	"MODO":              func() model.Element { return &model.MODO{} },
	"Sample":            func() model.Element { return &model.Sample{} },
	"Assay":             func() model.Element { return &model.Assay{} },
	"DataEntity":        func() model.Element { return &model.DataEntity{} },
	"ReferenceGenome":   func() model.Element { return &model.ReferenceGenome{} },
	"ReferenceSequence": func() model.Element { return &model.ReferenceSequence{} },
}

func init() {
	for t, class := range typeToClass {
		classToType[class] = t
	}
}

// ElementTypes returns every element kind, including sequence elements
// that only enrichment produces.
func ElementTypes() []ElementType {
	return []ElementType{SampleElement, AssayElement, DataElement,
		ReferenceElement, SequenceElement}
}

// UserElementTypes returns the kinds users may add directly.
func UserElementTypes() []ElementType {
	return []ElementType{SampleElement, AssayElement, DataElement,
		ReferenceElement}
}

// ClassName returns the schema class stored under this kind.
func (t ElementType) ClassName() string {
	return typeToClass[t]
}

// Valid reports whether t names a known element kind.
func (t ElementType) Valid() bool {
	_, ok := typeToClass[t]
	return ok
}

// TypeOf returns the storage kind for an element.
func TypeOf(e model.Element) (ElementType, error) {
	t, ok := classToType[e.ClassName()]
	if !ok {
		return "", UnknownClassError{Name: e.ClassName()}
	}
	return t, nil
}

// TypeForClass returns the storage kind for a schema class name.
func TypeForClass(class string) (ElementType, error) {
	t, ok := classToType[class]
	if !ok {
		return "", UnknownClassError{Name: class}
	}
	return t, nil
}

// NewElement returns a fresh element of the given schema class.
func NewElement(class string) (model.Element, error) {
	factory, ok := classFactories[class]
	if !ok {
		return nil, UnknownClassError{Name: class}
	}
	return factory(), nil
}

// IsFullID reports whether an element id carries its kind prefix
// (e.g. "sample/foo" or "/assay/bar").
func IsFullID(id string) bool {
	trimmed := strings.TrimPrefix(id, "/")
	kind, _, found := strings.Cut(trimmed, "/")
	return found && ElementType(kind).Valid()
}

// FullID prefixes a bare element name with its kind. Ids that already
// carry the right prefix pass through unchanged.
func FullID(t ElementType, id string) string {
	if IsFullID(id) {
		return strings.TrimPrefix(id, "/")
	}
	return string(t) + "/" + id
}

// SplitID splits a full element id into kind and name. Bare names come
// back with an empty kind.
func SplitID(id string) (ElementType, string) {
	trimmed := strings.TrimPrefix(id, "/")
	kind, name, found := strings.Cut(trimmed, "/")
	if !found || !ElementType(kind).Valid() {
		return "", trimmed
	}
	return ElementType(kind), name
}

// FromAttrs materializes a typed element from a stored attribute document.
// The document is validated against the class definition first; the "@type"
// key is dropped and the id is filled in by the caller.
func FromAttrs(class string, attrs map[string]any) (model.Element, error) {
	if err := Load().ValidateAttrs(class, attrs); err != nil {
		return nil, err
	}
	element, err := NewElement(class)
	if err != nil {
		return nil, err
	}
	doc := make(map[string]any, len(attrs))
	for key, value := range attrs {
		if key == "@type" {
			continue
		}
		doc[key] = value
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s attributes: %s", class, err.Error())
	}
	if err := json.Unmarshal(raw, element); err != nil {
		return nil, fmt.Errorf("materializing %s: %s", class, err.Error())
	}
	return element, nil
}

// UpdateHasPartIDs rewrites bare references in every has_* slot of an
// attribute document to full ids, using each slot's declared range to pick
// the kind prefix.
func UpdateHasPartIDs(attrs map[string]any) {
	v := Load()
	for key, value := range attrs {
		if !strings.HasPrefix(key, "has_") {
			continue
		}
		childClass := v.SlotRange(key)
		childType, err := TypeForClass(childClass)
		if err != nil {
			continue
		}
		var fixed []string
		for _, id := range valueList(value) {
			fixed = append(fixed, FullID(childType, id))
		}
		if fixed != nil {
			attrs[key] = fixed
		}
	}
}
