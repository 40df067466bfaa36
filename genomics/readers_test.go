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

package genomics

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/sam"
	"github.com/brentp/vcfgo"
	"github.com/stretchr/testify/assert"
)

const testVCF = `##fileformat=VCFv4.2
##contig=<ID=chr1,length=248956422>
##contig=<ID=chr2,length=242193529>
##INFO=<ID=DP,Number=1,Type=Integer,Description="Depth">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
chr1	15	.	A	T	50	PASS	DP=10
chr1	500	.	G	C	50	PASS	DP=12
chr2	20	.	T	A	50	PASS	DP=8
`

// buildAlignments writes a small BAM file with reads on either side of
// the chr1:50-200 boundary plus an unplaced one.
func buildAlignments(t *testing.T) []byte {
	assert := assert.New(t)
	ref1, err := sam.NewReference("chr1", "", "", 248956422, nil, nil)
	assert.Nil(err)
	ref2, err := sam.NewReference("chr2", "", "", 242193529, nil, nil)
	assert.Nil(err)
	header, err := sam.NewHeader(nil, []*sam.Reference{ref1, ref2})
	assert.Nil(err)

	cigar := []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 4)}
	seq, qual := []byte("ACGT"), []byte{40, 40, 40, 40}
	keep, err := sam.NewRecord("keep", ref1, nil, 99, -1, 0, 30, cigar, seq, qual, nil)
	assert.Nil(err)
	tail, err := sam.NewRecord("tail", ref1, nil, 300, -1, 0, 30, cigar, seq, qual, nil)
	assert.Nil(err)
	other, err := sam.NewRecord("other", ref2, nil, 60, -1, 0, 30, cigar, seq, qual, nil)
	assert.Nil(err)
	loose, err := sam.NewRecord("loose", nil, nil, -1, -1, 0, 0, nil, seq, qual, nil)
	assert.Nil(err)
	loose.Flags |= sam.Unmapped

	var buf bytes.Buffer
	writer, err := bam.NewWriter(&buf, header, 1)
	assert.Nil(err)
	for _, record := range []*sam.Record{keep, tail, other, loose} {
		assert.Nil(writer.Write(record))
	}
	assert.Nil(writer.Close())
	return buf.Bytes()
}

func TestFilterAlignments(t *testing.T) {
	assert := assert.New(t)

	region, err := ParseRegion("chr1:50-200")
	assert.Nil(err)
	stream, err := FilterAlignments(io.NopCloser(bytes.NewReader(buildAlignments(t))), region)
	assert.Nil(err)
	filtered, err := io.ReadAll(stream)
	assert.Nil(err)
	assert.Nil(stream.Close())

	reader, err := bam.NewReader(bytes.NewReader(filtered), 1)
	assert.Nil(err)
	assert.Len(reader.Header().Refs(), 2)
	var names []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		assert.Nil(err)
		names = append(names, record.Name)
	}
	assert.Equal([]string{"keep"}, names)
}

func TestFilterAlignmentsRejectsNonsense(t *testing.T) {
	assert := assert.New(t)

	region, err := ParseRegion("chr1")
	assert.Nil(err)
	_, err = FilterAlignments(io.NopCloser(strings.NewReader("this is not a BAM file")), region)
	assert.NotNil(err)
}

func TestFilterVariants(t *testing.T) {
	assert := assert.New(t)

	region, err := ParseRegion("chr1:10-300")
	assert.Nil(err)
	stream, err := FilterVariants(io.NopCloser(strings.NewReader(testVCF)), false, region)
	assert.Nil(err)
	filtered, err := io.ReadAll(stream)
	assert.Nil(err)
	assert.Nil(stream.Close())

	reader, err := vcfgo.NewReader(bytes.NewReader(filtered), true)
	assert.Nil(err)
	var kept []uint64
	for {
		variant := reader.Read()
		if variant == nil {
			break
		}
		assert.Equal("chr1", variant.Chromosome)
		kept = append(kept, variant.Pos)
	}
	assert.Equal([]uint64{15}, kept)
}

func TestFilterVariantsCompressed(t *testing.T) {
	assert := assert.New(t)

	var zipped bytes.Buffer
	writer := bgzf.NewWriter(&zipped, 1)
	_, err := writer.Write([]byte(testVCF))
	assert.Nil(err)
	assert.Nil(writer.Close())

	region, err := ParseRegion("chr1:10-300")
	assert.Nil(err)
	stream, err := FilterVariants(io.NopCloser(bytes.NewReader(zipped.Bytes())), true, region)
	assert.Nil(err)
	filtered, err := io.ReadAll(stream)
	assert.Nil(err)
	assert.Nil(stream.Close())

	// the sliced output is itself bgzf compressed
	unzipped, err := bgzf.NewReader(bytes.NewReader(filtered), 1)
	assert.Nil(err)
	text, err := io.ReadAll(unzipped)
	assert.Nil(err)
	assert.Contains(string(text), "chr1\t15\t")
	assert.NotContains(string(text), "chr1\t500\t")
	assert.NotContains(string(text), "chr2\t20\t")
}
