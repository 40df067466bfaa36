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

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modos-dev/modos/model"
)

// parses an inline YAML element document
func TestReadElementFromYaml(t *testing.T) {
	assert := assert.New(t)

	doc := `
"@type": Sample
id: donor1
name: Donor 1
cell_type: astrocyte
taxon_id: "NCBITaxon:9606"
`
	element, err := readElement(doc, "")
	assert.Nil(err)
	sample, ok := element.(*model.Sample)
	assert.True(ok)
	assert.Equal("donor1", sample.ElementID())
	assert.Equal("Donor 1", sample.Name)
	assert.Equal("astrocyte", sample.CellType)
	assert.Equal("NCBITaxon:9606", sample.TaxonID)
}

// parses an inline JSON element document, which is also valid YAML
func TestReadElementFromJson(t *testing.T) {
	assert := assert.New(t)

	doc := `{"@type": "Assay", "id": "assay1", "name": "An assay", "omics_type": "GENOMICS"}`
	element, err := readElement(doc, "")
	assert.Nil(err)
	analysis, ok := element.(*model.Assay)
	assert.True(ok)
	assert.Equal("assay1", analysis.ElementID())
	assert.Equal("GENOMICS", analysis.OmicsType)
}

// parses an element document from a file
func TestReadElementFromFile(t *testing.T) {
	assert := assert.New(t)

	docFile := filepath.Join(t.TempDir(), "element.yaml")
	err := os.WriteFile(docFile, []byte("\"@type\": Sample\nid: donor2\nname: Donor 2\n"), 0644)
	assert.Nil(err)

	element, err := readElement("", docFile)
	assert.Nil(err)
	assert.Equal("donor2", element.ElementID())
}

// rejects documents missing their discriminator or id
func TestReadElementRejectsIncompleteDocuments(t *testing.T) {
	assert := assert.New(t)

	_, err := readElement("id: donor1\nname: Donor 1\n", "")
	assert.NotNil(err)
	assert.Contains(err.Error(), "@type")

	_, err = readElement("\"@type\": Sample\nname: Donor 1\n", "")
	assert.NotNil(err)
	assert.Contains(err.Error(), "id")

	_, err = readElement("{not yaml", "")
	assert.NotNil(err)
}

// requires exactly one of the inline document and the document file
func TestReadElementRequiresOneSource(t *testing.T) {
	assert := assert.New(t)

	_, err := readElement("", "")
	assert.NotNil(err)

	_, err = readElement("\"@type\": Sample\nid: x\n", "somewhere.yaml")
	assert.NotNil(err)
}

// draws the element groups as a tree
func TestHierarchyTree(t *testing.T) {
	assert := assert.New(t)

	meta := map[string]map[string]any{
		"ex":            {"@type": "MODO"},
		"sample/donor1": {"@type": "Sample"},
		"sample/donor2": {"@type": "Sample"},
		"assay/assay1":  {"@type": "Assay"},
	}
	expected := "ex\n" +
		"├── assay\n" +
		"│   └── assay1\n" +
		"└── sample\n" +
		"    ├── donor1\n" +
		"    └── donor2\n"
	assert.Equal(expected, hierarchyTree("ex", meta))
}
