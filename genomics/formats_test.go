package genomics

// These tests verify format recognition and the htsget URL scheme.

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFromPath(t *testing.T) {
	assert := assert.New(t)
	cases := map[string]FileFormat{
		"demo1.cram":         CRAM,
		"aligned/demo2.BAM":  BAM,
		"calls.vcf":          VCF,
		"calls.vcf.gz":       VCF,
		"calls.bcf":          BCF,
		"genome.fasta":       FASTA,
		"genome.fa":          FASTA,
		"reads.fastq":        FASTQ,
		"metabolites.mztab":  MzTab,
		"dir.cram/inner.bam": BAM,
	}
	for path, expected := range cases {
		format, err := FormatFromPath(path)
		assert.Nil(err)
		assert.Equal(expected, format, fmt.Sprintf("Wrong format for %s", path))
	}

	_, err := FormatFromPath("notes.txt")
	assert.NotNil(err)
	assert.IsType(UnsupportedFormatError{}, err)
}

func TestFormatFromName(t *testing.T) {
	assert := assert.New(t)
	format, err := FormatFromName("CRAM")
	assert.Nil(err)
	assert.Equal(CRAM, format)
	format, err = FormatFromName("mztab")
	assert.Nil(err)
	assert.Equal(MzTab, format)
	_, err = FormatFromName("xlsx")
	assert.NotNil(err)
}

func TestIndexPath(t *testing.T) {
	assert := assert.New(t)

	index, err := CRAM.IndexPath("demo1.cram")
	assert.Nil(err)
	assert.Equal("demo1.cram.crai", index)

	index, err = VCF.IndexPath("calls.vcf.gz")
	assert.Nil(err)
	assert.Equal("calls.vcf.gz.tbi", index)

	index, err = BAM.IndexPath("demo2.bam")
	assert.Nil(err)
	assert.Equal("demo2.bam.bai", index)

	// formats without indexes refuse
	assert.False(FASTQ.HasIndex())
	_, err = FASTQ.IndexPath("reads.fastq")
	assert.NotNil(err)
}

func TestHtsgetEndpoints(t *testing.T) {
	assert := assert.New(t)
	for format, expected := range map[FileFormat]string{
		CRAM: "reads", BAM: "reads", VCF: "variants", BCF: "variants",
	} {
		endpoint, err := format.HtsgetEndpoint()
		assert.Nil(err)
		assert.Equal(expected, endpoint)
	}
	_, err := FASTA.HtsgetEndpoint()
	assert.NotNil(err)
}

func TestBuildHtsgetURL(t *testing.T) {
	assert := assert.New(t)

	region := &Region{Chrom: "chr1", Start: 10, End: 300}
	built, err := BuildHtsgetURL("http://localhost:8080/htsget", "ex/demo1.cram", region)
	assert.Nil(err)
	assert.Equal("http://localhost:8080/htsget/reads/ex/demo1?"+
		"end=300&format=CRAM&referenceName=chr1&start=10", built)

	// no region, variants endpoint, multi-part suffix
	built, err = BuildHtsgetURL("http://localhost:8080", "ex/calls.vcf.gz", nil)
	assert.Nil(err)
	assert.Equal("http://localhost:8080/variants/ex/calls?format=VCF", built)

	_, err = BuildHtsgetURL("http://localhost:8080", "ex/notes.txt", nil)
	assert.NotNil(err)
}

// ticket URLs survive a round trip for chromosome and finite coordinates
func TestParseHtsgetURL(t *testing.T) {
	assert := assert.New(t)

	region := &Region{Chrom: "chr1", Start: 10, End: 300}
	built, err := BuildHtsgetURL("http://localhost:8080/htsget", "ex/demo1.cram", region)
	assert.Nil(err)
	host, path, parsed, err := ParseHtsgetURL(built)
	assert.Nil(err)
	assert.Equal("http://localhost:8080/htsget", host)
	assert.Equal("ex/demo1.cram", path)
	assert.Equal(region, parsed)

	// the canonical VCF suffix comes back
	built, err = BuildHtsgetURL("http://localhost:8080", "ex/calls.vcf.gz",
		&Region{Chrom: "chr1", Start: 5, End: Unbound})
	assert.Nil(err)
	host, path, parsed, err = ParseHtsgetURL(built)
	assert.Nil(err)
	assert.Equal("http://localhost:8080", host)
	assert.Equal("ex/calls.vcf.gz", path)
	assert.Equal(&Region{Chrom: "chr1", Start: 5, End: Unbound}, parsed)

	_, _, _, err = ParseHtsgetURL("http://localhost:8080/nothing/here")
	assert.NotNil(err)
}
