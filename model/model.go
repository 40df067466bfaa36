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

// Package model defines the modos schema entities that live inside a MODO
// archive. Field names mirror the schema slot names, so elements serialize
// to the same attribute documents the metadata store keeps. Zero values are
// treated as absent slots.
package model

import (
	"encoding/json"
	"fmt"
)

// An Element is any schema entity that can be stored in an archive.
type Element interface {
	// ElementID returns the element identifier (bare name or full
	// "kind/name" path, depending on how far it has been normalized).
	ElementID() string
	// SetElementID overwrites the element identifier.
	SetElementID(id string)
	// ElementName returns the human-readable name, if any.
	ElementName() string
	// ClassName returns the schema class name (e.g. "Sample").
	ClassName() string
}

// NamedThing carries the slots shared by every element.
type NamedThing struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

func (n *NamedThing) ElementID() string      { return n.ID }
func (n *NamedThing) SetElementID(id string) { n.ID = id }
func (n *NamedThing) ElementName() string    { return n.Name }

// MODO describes the archive itself. Its attributes live on the root group
// of the metadata store rather than in an element group.
type MODO struct {
	NamedThing     `yaml:",inline"`
	CreationDate   string   `json:"creation_date,omitempty" yaml:"creation_date,omitempty"`
	LastUpdateDate string   `json:"last_update_date,omitempty" yaml:"last_update_date,omitempty"`
	HasAssay       []string `json:"has_assay,omitempty" yaml:"has_assay,omitempty"`
	SourceURI      string   `json:"source_uri,omitempty" yaml:"source_uri,omitempty"`
}

func (m MODO) ClassName() string { return "MODO" }

// A Sample is a biological specimen from which omics data was produced.
type Sample struct {
	NamedThing     `yaml:",inline"`
	CellType       string `json:"cell_type,omitempty" yaml:"cell_type,omitempty"`
	SourceMaterial string `json:"source_material,omitempty" yaml:"source_material,omitempty"`
	Sex            string `json:"sex,omitempty" yaml:"sex,omitempty"`
	TaxonID        string `json:"taxon_id,omitempty" yaml:"taxon_id,omitempty"`
}

func (s Sample) ClassName() string { return "Sample" }

// An Assay is an experiment generating data from one or more samples.
type Assay struct {
	NamedThing       `yaml:",inline"`
	HasSample        []string `json:"has_sample,omitempty" yaml:"has_sample,omitempty"`
	HasData          []string `json:"has_data,omitempty" yaml:"has_data,omitempty"`
	OmicsType        string   `json:"omics_type,omitempty" yaml:"omics_type,omitempty"`
	SampleProcessing string   `json:"sample_processing,omitempty" yaml:"sample_processing,omitempty"`
}

func (a Assay) ClassName() string { return "Assay" }

// A DataEntity is a data file (and its index) tracked by the archive.
type DataEntity struct {
	NamedThing   `yaml:",inline"`
	DataPath     string   `json:"data_path,omitempty" yaml:"data_path,omitempty"`
	DataFormat   string   `json:"data_format,omitempty" yaml:"data_format,omitempty"`
	DataChecksum string   `json:"data_checksum,omitempty" yaml:"data_checksum,omitempty"`
	HasReference []string `json:"has_reference,omitempty" yaml:"has_reference,omitempty"`
}

func (d DataEntity) ClassName() string { return "DataEntity" }

// A ReferenceGenome is an assembly against which data was aligned.
type ReferenceGenome struct {
	NamedThing  `yaml:",inline"`
	DataPath    string   `json:"data_path,omitempty" yaml:"data_path,omitempty"`
	HasSequence []string `json:"has_sequence,omitempty" yaml:"has_sequence,omitempty"`
	SourceURI   string   `json:"source_uri,omitempty" yaml:"source_uri,omitempty"`
	TaxonID     string   `json:"taxon_id,omitempty" yaml:"taxon_id,omitempty"`
	Version     string   `json:"version,omitempty" yaml:"version,omitempty"`
}

func (r ReferenceGenome) ClassName() string { return "ReferenceGenome" }

// A ReferenceSequence is a single sequence of a reference genome, usually
// discovered from alignment headers during metadata enrichment.
type ReferenceSequence struct {
	NamedThing  `yaml:",inline"`
	SequenceMD5 string `json:"sequence_md5,omitempty" yaml:"sequence_md5,omitempty"`
	SourceURI   string `json:"source_uri,omitempty" yaml:"source_uri,omitempty"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
}

func (r ReferenceSequence) ClassName() string { return "ReferenceSequence" }

// recognized omics_type values
const (
	OmicsGenomics        = "GENOMICS"
	OmicsTranscriptomics = "TRANSCRIPTOMICS"
	OmicsProteomics      = "PROTEOMICS"
	OmicsMetabolomics    = "METABOLOMICS"
)

// DataPathOf returns the archive-relative data file path carried by the
// element, or "" for element kinds that carry no data file.
func DataPathOf(e Element) string {
	switch el := e.(type) {
	case *DataEntity:
		return el.DataPath
	case *ReferenceGenome:
		return el.DataPath
	}
	return ""
}

// SetDataPath overwrites the data file path on elements that carry one and
// does nothing on the others.
func SetDataPath(e Element, path string) {
	switch el := e.(type) {
	case *DataEntity:
		el.DataPath = path
	case *ReferenceGenome:
		el.DataPath = path
	}
}

// ToAttrs converts an element to the attribute document stored in the
// metadata store: the id moves out of the document (it becomes the group
// path), the class name moves in as "@type", and empty slots are dropped.
func ToAttrs(e Element) (map[string]any, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %s", e.ClassName(), err.Error())
	}
	attrs := make(map[string]any)
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, fmt.Errorf("unmarshaling %s: %s", e.ClassName(), err.Error())
	}
	delete(attrs, "id")
	attrs["@type"] = e.ClassName()
	return attrs, nil
}
