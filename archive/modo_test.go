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
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/modos-dev/modos/model"
	"github.com/modos-dev/modos/schema"
)

// the directory all test archives and fixture files live in
var testDir string

// newTestArchive creates a fresh archive under testDir.
func newTestArchive(t *testing.T, name string, opts Options) *MODO {
	assert := assert.New(t)
	m, err := Open(context.Background(), filepath.Join(testDir, name), opts)
	assert.Nil(err)
	assert.NotNil(m)
	return m
}

// createTestFile writes a fixture file under testDir and returns its path.
func createTestFile(t *testing.T, name, content string) string {
	path := filepath.Join(testDir, name)
	err := os.MkdirAll(filepath.Dir(path), 0755)
	assert.Nil(t, err)
	err = os.WriteFile(path, []byte(content), 0644)
	assert.Nil(t, err)
	return path
}

func testSample(id, name string) *model.Sample {
	sample := &model.Sample{
		CellType: "astrocyte",
		Sex:      "Male",
		TaxonID:  "NCBITaxon:9606",
	}
	sample.ID = id
	sample.Name = name
	return sample
}

func testAssay(id string) *model.Assay {
	assay := &model.Assay{OmicsType: model.OmicsGenomics}
	assay.ID = id
	return assay
}

func TestOpenInitializes(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := newTestArchive(t, "ex-init", Options{Name: "Example archive"})
	assert.Equal("ex-init", m.ID())

	meta, err := m.Metadata(ctx)
	assert.Nil(err)
	assert.Len(meta, 1)
	root := meta["ex-init"]
	assert.NotNil(root)
	assert.Equal("MODO", root["@type"])
	assert.Equal("ex-init", root["id"])
	assert.Equal("Example archive", root["name"])
	created, _ := root["creation_date"].(string)
	_, err = time.Parse(time.RFC3339, created)
	assert.Nil(err)

	files, err := m.ListFiles(ctx)
	assert.Nil(err)
	assert.Empty(files)
}

func TestOpenExistingKeepsIdentity(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := newTestArchive(t, "ex-reopen", Options{ID: "stable-id", Description: "kept"})
	meta, err := m.Metadata(ctx)
	assert.Nil(err)
	created := meta["stable-id"]["creation_date"]

	// reopening must not reinitialize, whatever options are passed
	reopened, err := Open(ctx, filepath.Join(testDir, "ex-reopen"), Options{ID: "other-id"})
	assert.Nil(err)
	assert.Equal("stable-id", reopened.ID())
	meta, err = reopened.Metadata(ctx)
	assert.Nil(err)
	assert.Equal(created, meta["stable-id"]["creation_date"])
	assert.Equal("kept", meta["stable-id"]["description"])
}

func TestAddElement(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := newTestArchive(t, "ex-add", Options{})
	err := m.AddElement(ctx, testSample("sample1", "Donor 1"), AddOptions{})
	assert.Nil(err)

	meta, err := m.Metadata(ctx)
	assert.Nil(err)
	sample := meta["sample/sample1"]
	assert.NotNil(sample)
	assert.Equal("Sample", sample["@type"])
	assert.Equal("Donor 1", sample["name"])
	assert.Equal("astrocyte", sample["cell_type"])
}

func TestAddElementRejectsDuplicateIds(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := newTestArchive(t, "ex-dup", Options{})
	assert.Nil(m.AddElement(ctx, testSample("sample1", "Donor 1"), AddOptions{}))

	// the same bare name is taken even across element kinds
	err := m.AddElement(ctx, testAssay("sample1"), AddOptions{})
	var duplicate DuplicateIdError
	assert.True(errors.As(err, &duplicate))
	assert.Equal("sample1", duplicate.Id)

	// and the archive id itself is reserved too
	err = m.AddElement(ctx, testSample("ex-dup", "Donor 2"), AddOptions{})
	assert.True(errors.As(err, &duplicate))

	meta, err := m.Metadata(ctx)
	assert.Nil(err)
	assert.Len(meta, 2)
}

func TestAddElementValidatesAttributes(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := newTestArchive(t, "ex-validate", Options{})

	// an assay without its required omics_type must not be persisted
	assay := &model.Assay{}
	assay.ID = "assay1"
	err := m.AddElement(ctx, assay, AddOptions{})
	var missing schema.MissingSlotError
	assert.True(errors.As(err, &missing))
	assert.Equal("omics_type", missing.Slot)

	meta, err := m.Metadata(ctx)
	assert.Nil(err)
	assert.Len(meta, 1)
}

func TestAddElementPartOf(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := newTestArchive(t, "ex-partof", Options{})
	assert.Nil(m.AddElement(ctx, testAssay("assay1"), AddOptions{PartOf: m.ID()}))
	assert.Nil(m.AddElement(ctx, testSample("sample1", "Donor 1"), AddOptions{PartOf: "assay1"}))

	meta, err := m.Metadata(ctx)
	assert.Nil(err)
	assert.Equal([]any{"assay/assay1"}, meta["ex-partof"]["has_assay"])
	assert.Equal([]any{"sample/sample1"}, meta["assay/assay1"]["has_sample"])
}

func TestAddElementRejectsIncompatibleParents(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := newTestArchive(t, "ex-badparent", Options{})
	assert.Nil(m.AddElement(ctx, testSample("sample1", "Donor 1"), AddOptions{}))

	// samples have no containment slot for other samples
	err := m.AddElement(ctx, testSample("sample2", "Donor 2"), AddOptions{PartOf: "sample1"})
	var incompatible IncompatibleContainmentError
	assert.True(errors.As(err, &incompatible))
	assert.Equal("Sample", incompatible.ParentClass)

	// and an unknown parent reports the known elements
	err = m.AddElement(ctx, testSample("sample3", "Donor 3"), AddOptions{PartOf: "nonexistent"})
	var notFound ElementNotFoundError
	assert.True(errors.As(err, &notFound))
	assert.Contains(notFound.Known, "sample/sample1")
}

func TestAddElementWithSourceFile(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	source := createTestFile(t, "fixtures/demo1.cram", "not a real alignment")
	createTestFile(t, "fixtures/demo1.cram.crai", "not a real index")

	m := newTestArchive(t, "ex-data", Options{})
	data := &model.DataEntity{DataFormat: "CRAM"}
	data.ID = "demo1"
	assert.Nil(m.AddElement(ctx, data, AddOptions{SourceFile: source}))

	// the data path defaults to the source file name, the index rides along
	files, err := m.ListFiles(ctx)
	assert.Nil(err)
	assert.Equal([]string{"demo1.cram", "demo1.cram.crai"}, files)

	expected, err := model.DataChecksum(source)
	assert.Nil(err)
	meta, err := m.Metadata(ctx)
	assert.Nil(err)
	assert.Equal("demo1.cram", meta["data/demo1"]["data_path"])
	assert.Equal(expected, meta["data/demo1"]["data_checksum"])
}

func TestUpdateElementMergesAdditively(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := newTestArchive(t, "ex-update", Options{})
	sample := testSample("sample1", "Donor 1")
	sample.Description = ""
	assert.Nil(m.AddElement(ctx, sample, AddOptions{}))

	patch := &model.Sample{CellType: "neuron"}
	patch.ID = "sample1"
	patch.Description = "added later"
	assert.Nil(m.UpdateElement(ctx, patch, UpdateOptions{}))

	meta, err := m.Metadata(ctx)
	assert.Nil(err)
	// the empty description was filled in, the populated cell type kept
	assert.Equal("added later", meta["sample/sample1"]["description"])
	assert.Equal("astrocyte", meta["sample/sample1"]["cell_type"])
}

func TestUpdateElementIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := newTestArchive(t, "ex-noop", Options{})
	assert.Nil(m.AddElement(ctx, testSample("sample1", "Donor 1"), AddOptions{}))

	before, err := m.Metadata(ctx)
	assert.Nil(err)
	assert.Nil(m.UpdateElement(ctx, testSample("sample1", "Donor 1"), UpdateOptions{}))
	after, err := m.Metadata(ctx)
	assert.Nil(err)
	assert.Equal(before, after)
}

func TestUpdateElementRejectsClassChanges(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := newTestArchive(t, "ex-mismatch", Options{})
	assert.Nil(m.AddElement(ctx, testSample("sample1", "Donor 1"), AddOptions{}))

	err := m.UpdateElement(ctx, testAssay("sample1"), UpdateOptions{})
	var mismatch TypeMismatchError
	assert.True(errors.As(err, &mismatch))
	assert.Equal("Sample", mismatch.Stored)
	assert.Equal("Assay", mismatch.Given)
}

func TestUpdateElementMovesDataFile(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	source := createTestFile(t, "fixtures/moveme.cram", "payload")
	createTestFile(t, "fixtures/moveme.cram.crai", "index")

	m := newTestArchive(t, "ex-move", Options{})
	data := &model.DataEntity{DataFormat: "CRAM"}
	data.ID = "demo1"
	assert.Nil(m.AddElement(ctx, data, AddOptions{SourceFile: source}))

	patch := &model.DataEntity{DataPath: "aligned/moveme.cram"}
	patch.ID = "demo1"
	assert.Nil(m.UpdateElement(ctx, patch, UpdateOptions{}))

	files, err := m.ListFiles(ctx)
	assert.Nil(err)
	assert.Equal([]string{"aligned/moveme.cram", "aligned/moveme.cram.crai"}, files)

	meta, err := m.Metadata(ctx)
	assert.Nil(err)
	assert.Equal("aligned/moveme.cram", meta["data/demo1"]["data_path"])
}

func TestUpdateElementReplacesChangedContent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	source := createTestFile(t, "fixtures/content-v1.vcf", "##fileformat=VCFv4.2 (v1)")

	m := newTestArchive(t, "ex-content", Options{})
	data := &model.DataEntity{DataFormat: "VCF"}
	data.ID = "calls"
	assert.Nil(m.AddElement(ctx, data, AddOptions{SourceFile: source}))

	before, err := m.Metadata(ctx)
	assert.Nil(err)

	// the same content is recognized by checksum and changes nothing
	patch := &model.DataEntity{}
	patch.ID = "calls"
	assert.Nil(m.UpdateElement(ctx, patch, UpdateOptions{SourceFile: source}))
	after, err := m.Metadata(ctx)
	assert.Nil(err)
	assert.Equal(before, after)

	// different content replaces the file and the recorded checksum
	changed := createTestFile(t, "fixtures/content-v2.vcf", "##fileformat=VCFv4.2 (v2)")
	assert.Nil(m.UpdateElement(ctx, patch, UpdateOptions{SourceFile: changed}))
	after, err = m.Metadata(ctx)
	assert.Nil(err)
	expected, err := model.DataChecksum(changed)
	assert.Nil(err)
	assert.Equal(expected, after["data/calls"]["data_checksum"])
	assert.NotEqual(before["data/calls"]["data_checksum"], after["data/calls"]["data_checksum"])
}

func TestRemoveElement(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	source := createTestFile(t, "fixtures/removeme.cram", "doomed")
	createTestFile(t, "fixtures/removeme.cram.crai", "doomed index")

	m := newTestArchive(t, "ex-remove", Options{})
	assert.Nil(m.AddElement(ctx, testAssay("assay1"), AddOptions{PartOf: m.ID()}))
	data := &model.DataEntity{DataFormat: "CRAM"}
	data.ID = "demo1"
	assert.Nil(m.AddElement(ctx, data, AddOptions{SourceFile: source, PartOf: "assay1"}))

	// bare names resolve just like full ids
	assert.Nil(m.RemoveElement(ctx, "demo1"))

	meta, err := m.Metadata(ctx)
	assert.Nil(err)
	assert.NotContains(meta, "data/demo1")
	// the link was scavenged from the assay, preserving the empty list
	assert.Empty(meta["assay/assay1"]["has_data"])

	files, err := m.ListFiles(ctx)
	assert.Nil(err)
	assert.Empty(files)
}

func TestRemoveElementReportsKnownElements(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := newTestArchive(t, "ex-remove-unknown", Options{})
	assert.Nil(m.AddElement(ctx, testSample("sample1", "Donor 1"), AddOptions{}))

	err := m.RemoveElement(ctx, "ghost")
	var notFound ElementNotFoundError
	assert.True(errors.As(err, &notFound))
	assert.Equal("ghost", notFound.Id)
	assert.Equal([]string{"sample/sample1"}, notFound.Known)
}

func TestRemoveElementProtectsRoot(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := newTestArchive(t, "ex-rootguard", Options{})
	err := m.RemoveElement(ctx, m.ID())
	var guarded RootRemovalError
	assert.True(errors.As(err, &guarded))
}

func TestRemoveObject(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := newTestArchive(t, "ex-delete", Options{})
	assert.Nil(m.AddElement(ctx, testSample("sample1", "Donor 1"), AddOptions{}))
	assert.DirExists(m.Path())

	assert.Nil(m.RemoveObject(ctx))
	assert.NoDirExists(m.Path())
}

func TestManifest(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	source := createTestFile(t, "fixtures/manifested.vcf", "##fileformat=VCFv4.2")

	m := newTestArchive(t, "ex-manifest", Options{})
	data := &model.DataEntity{DataFormat: "VCF"}
	data.ID = "calls"
	assert.Nil(m.AddElement(ctx, data, AddOptions{SourceFile: source}))

	manifest, err := m.Manifest(ctx)
	assert.Nil(err)
	names := manifest.ResourceNames()
	assert.Contains(names, "zmetadata")
	assert.Contains(names, "manifested.vcf")

	resource := manifest.GetResource("manifested.vcf")
	assert.NotNil(resource)
	descriptor := resource.Descriptor()
	assert.Equal("manifested.vcf", descriptor["path"])
	assert.Equal("vcf", descriptor["format"])
	expected, err := model.DataChecksum(source)
	assert.Nil(err)
	assert.Equal(expected, descriptor["data_checksum"])
}

// this function gets called at the begіnning of a test session
func setup() {
	var err error
	testDir, err = os.MkdirTemp("", "modos-archive-tests-")
	if err != nil {
		panic(err)
	}
}

// this function gets called after all tests have been run
func breakdown() {
	if testDir != "" {
		os.RemoveAll(testDir)
	}
}

// This runs setup, runs all tests, and does breakdown.
func TestMain(m *testing.M) {
	var status int
	setup()
	status = m.Run()
	breakdown()
	os.Exit(status)
}
