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

package metabolomics

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modos-dev/modos/model"
)

const testMzTab = "MTD\tmzTab-version\t2.0.0-M\n" +
	"MTD\tmzTab-ID\tMTBLS0001\n" +
	"MTD\ttitle\tLiver metabolite profiling\n" +
	"MTD\tdescription\tTargeted metabolomics of liver extracts\n" +
	"COM\tfree text comments are skipped\n" +
	"MTD\tsample_processing[1]\t[MSIO, MSIO:0000146, centrifugation, ]\n" +
	"MTD\tsample[1]\tliver1\n" +
	"MTD\tsample[1]-description\tfirst liver extract\n" +
	"MTD\tsample[1]-species[1]\t[NCBITaxon, NCBITaxon:9606, Homo sapiens, ]\n" +
	"MTD\tsample[1]-tissue[1]\t[BTO, BTO:0000759, liver, ]\n" +
	"MTD\tsample[1]-cell_type[1]\t[CL, CL:0000182, hepatocyte, ]\n" +
	"MTD\tsample[2]\tliver2\n" +
	"MTD\tsample[2]-species[1]\t[NCBITaxon, NCBITaxon:10090, Mus musculus, ]\n" +
	"\n" +
	"SMH\tSML_ID\tchemical_name\n" +
	"SML\t1\tglucose\n"

func TestExtractMetadata(t *testing.T) {
	assert := assert.New(t)

	elements, err := ExtractMetadata(strings.NewReader(testMzTab), "metabolites")
	assert.Nil(err)
	assert.Len(elements, 3)

	sample1, ok := elements[0].(*model.Sample)
	assert.True(ok)
	assert.Equal("liver1", sample1.ID)
	assert.Equal("liver1", sample1.Name)
	assert.Equal("first liver extract", sample1.Description)
	assert.Equal("9606", sample1.TaxonID)
	assert.Equal("liver", sample1.SourceMaterial)
	assert.Equal("hepatocyte", sample1.CellType)

	sample2, ok := elements[1].(*model.Sample)
	assert.True(ok)
	assert.Equal("liver2", sample2.ID)
	assert.Equal("10090", sample2.TaxonID)
	assert.Equal("", sample2.CellType)

	assay, ok := elements[2].(*model.Assay)
	assert.True(ok)
	assert.Equal("MTBLS0001", assay.ID)
	assert.Equal("Liver metabolite profiling", assay.Name)
	assert.Equal("Targeted metabolomics of liver extracts", assay.Description)
	assert.Equal(model.OmicsMetabolomics, assay.OmicsType)
	assert.Equal("centrifugation", assay.SampleProcessing)
	assert.Equal([]string{"liver1", "liver2"}, assay.HasSample)
	assert.Equal([]string{"metabolites"}, assay.HasData)
}

func TestExtractMetadataProteomicsVersion(t *testing.T) {
	assert := assert.New(t)

	document := "MTD\tmzTab-version\t1.0.0\n" +
		"MTD\tmzTab-ID\tPXD0042\n"
	elements, err := ExtractMetadata(strings.NewReader(document), "peptides")
	assert.Nil(err)
	assert.Len(elements, 1)
	assay := elements[0].(*model.Assay)
	assert.Equal(model.OmicsProteomics, assay.OmicsType)
	assert.Empty(assay.HasSample)
}

func TestExtractMetadataRequiresID(t *testing.T) {
	assert := assert.New(t)

	document := "MTD\tmzTab-version\t2.0.0-M\n" +
		"MTD\tsample[1]\tliver1\n"
	_, err := ExtractMetadata(strings.NewReader(document), "metabolites")
	var invalidErr InvalidMzTabError
	assert.True(errors.As(err, &invalidErr))
	assert.Equal("missing mzTab-ID", invalidErr.Reason)
}

func TestExtractMetadataPlainValues(t *testing.T) {
	assert := assert.New(t)

	// values that are not CV parameters pass through untouched
	document := "MTD\tmzTab-version\t2.0.0-M\n" +
		"MTD\tmzTab-ID\tMTBLS0002\n" +
		"MTD\tsample[1]\tserum1\n" +
		"MTD\tsample[1]-species[1]\t9606\n" +
		"MTD\tsample[1]-tissue[1]\tserum\n"
	elements, err := ExtractMetadata(strings.NewReader(document), "metabolites")
	assert.Nil(err)
	sample := elements[0].(*model.Sample)
	assert.Equal("9606", sample.TaxonID)
	assert.Equal("serum", sample.SourceMaterial)
}

// this function gets called at the begіnning of a test session
func setup() {
}

// this function gets called after all tests have been run
func breakdown() {
}

// This runs setup, runs all tests, and does breakdown.
func TestMain(m *testing.M) {
	var status int
	setup()
	status = m.Run()
	breakdown()
	os.Exit(status)
}
