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
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"

	"github.com/modos-dev/modos/genomics"
	"github.com/modos-dev/modos/model"
)

const streamVCF = `##fileformat=VCFv4.2
##contig=<ID=chr1,length=248956422>
##contig=<ID=chr2,length=242193529>
##INFO=<ID=DP,Number=1,Type=Integer,Description="Depth">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
chr1	15	.	A	T	50	PASS	DP=10
chr1	500	.	G	C	50	PASS	DP=12
chr2	20	.	T	A	50	PASS	DP=8
`

// createReadsFile writes a BAM with one read inside chr1:50-200 and one
// beyond it.
func createReadsFile(t *testing.T, name string) string {
	assert := assert.New(t)
	ref1, err := sam.NewReference("chr1", "", "", 248956422, nil, nil)
	assert.Nil(err)
	header, err := sam.NewHeader(nil, []*sam.Reference{ref1})
	assert.Nil(err)

	cigar := []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 4)}
	seq, qual := []byte("ACGT"), []byte{40, 40, 40, 40}
	inside, err := sam.NewRecord("inside", ref1, nil, 99, -1, 0, 30, cigar, seq, qual, nil)
	assert.Nil(err)
	outside, err := sam.NewRecord("outside", ref1, nil, 300, -1, 0, 30, cigar, seq, qual, nil)
	assert.Nil(err)

	var buf bytes.Buffer
	writer, err := bam.NewWriter(&buf, header, 1)
	assert.Nil(err)
	assert.Nil(writer.Write(inside))
	assert.Nil(writer.Write(outside))
	assert.Nil(writer.Close())

	path := filepath.Join(testDir, name)
	assert.Nil(os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

// streamArchive builds an archive holding a BAM, a VCF and a FASTQ file.
func streamArchive(t *testing.T, name string) *MODO {
	assert := assert.New(t)
	ctx := context.Background()
	m := newTestArchive(t, name, Options{})

	reads := &model.DataEntity{DataFormat: "BAM"}
	reads.ID = "reads"
	assert.Nil(m.AddElement(ctx, reads, AddOptions{SourceFile: createReadsFile(t, name+".bam")}))

	calls := &model.DataEntity{DataFormat: "VCF"}
	calls.ID = "calls"
	assert.Nil(m.AddElement(ctx, calls, AddOptions{
		SourceFile: createTestFile(t, "fixtures/"+name+".vcf", streamVCF),
	}))

	raw := &model.DataEntity{DataFormat: "FASTQ"}
	raw.ID = "raw"
	assert.Nil(m.AddElement(ctx, raw, AddOptions{
		SourceFile: createTestFile(t, "fixtures/"+name+".fastq", "@r1\nACGT\n+\nFFFF\n"),
	}))
	return m
}

func TestStreamGenomicsWholeFile(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := streamArchive(t, "ex-stream-raw")
	stream, err := m.StreamGenomics(ctx, "ex-stream-raw.bam", nil)
	assert.Nil(err)
	content, err := io.ReadAll(stream)
	assert.Nil(err)
	assert.Nil(stream.Close())

	reader, err := bam.NewReader(bytes.NewReader(content), 1)
	assert.Nil(err)
	var names []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		assert.Nil(err)
		names = append(names, record.Name)
	}
	assert.Equal([]string{"inside", "outside"}, names)
}

func TestStreamGenomicsRegion(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := streamArchive(t, "ex-stream-region")
	region, err := genomics.ParseRegion("chr1:50-200")
	assert.Nil(err)

	stream, err := m.StreamGenomics(ctx, "ex-stream-region.bam", region)
	assert.Nil(err)
	content, err := io.ReadAll(stream)
	assert.Nil(err)
	assert.Nil(stream.Close())

	reader, err := bam.NewReader(bytes.NewReader(content), 1)
	assert.Nil(err)
	var names []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		assert.Nil(err)
		names = append(names, record.Name)
	}
	assert.Equal([]string{"inside"}, names)
}

func TestStreamGenomicsVariantRegion(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := streamArchive(t, "ex-stream-vcf")
	region, err := genomics.ParseRegion("chr1:10-300")
	assert.Nil(err)

	stream, err := m.StreamGenomics(ctx, "ex-stream-vcf.vcf", region)
	assert.Nil(err)
	content, err := io.ReadAll(stream)
	assert.Nil(err)
	assert.Nil(stream.Close())
	assert.Contains(string(content), "chr1\t15")
	assert.NotContains(string(content), "chr1\t500")
	assert.NotContains(string(content), "chr2")
}

func TestStreamGenomicsChecksMembership(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := streamArchive(t, "ex-stream-member")
	_, err := m.StreamGenomics(ctx, "ghost.bam", nil)
	var notFound ElementNotFoundError
	assert.True(errors.As(err, &notFound))
	assert.Contains(notFound.Known, "ex-stream-member.bam")
}

func TestStreamGenomicsRejectsUnstreamableFormats(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := streamArchive(t, "ex-stream-formats")

	// fastq has no htsget endpoint at all
	_, err := m.StreamGenomics(ctx, "ex-stream-formats.fastq", nil)
	var unsupported genomics.UnsupportedFormatError
	assert.True(errors.As(err, &unsupported))

	// local region slicing only covers BAM and VCF
	aligned := &model.DataEntity{DataFormat: "CRAM"}
	aligned.ID = "aligned"
	assert.Nil(m.AddElement(ctx, aligned, AddOptions{
		SourceFile: createTestFile(t, "fixtures/ex-stream-formats.cram", "opaque cram bytes"),
	}))
	region, err := genomics.ParseRegion("chr1")
	assert.Nil(err)
	_, err = m.StreamGenomics(ctx, "ex-stream-formats.cram", region)
	assert.True(errors.As(err, &unsupported))

	// but the same file streams whole without a region
	stream, err := m.StreamGenomics(ctx, "ex-stream-formats.cram", nil)
	assert.Nil(err)
	content, err := io.ReadAll(stream)
	assert.Nil(err)
	assert.Nil(stream.Close())
	assert.Equal("opaque cram bytes", string(content))
}
