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
	"sort"
	"strings"
)

// A FileFormat identifies a recognized bioinformatics file format.
type FileFormat string

const (
	CRAM  FileFormat = "CRAM"
	BAM   FileFormat = "BAM"
	SAM   FileFormat = "SAM"
	VCF   FileFormat = "VCF"
	BCF   FileFormat = "BCF"
	FASTA FileFormat = "FASTA"
	FASTQ FileFormat = "FASTQ"
	MzTab FileFormat = "mzTab"
)

// htsget endpoint categories
const (
	readsEndpoint    = "reads"
	variantsEndpoint = "variants"
)

// per-format filename suffixes, companion index suffix, and htsget
// endpoint category
type formatInfo struct {
	suffixes    []string
	indexSuffix string
	endpoint    string
}

var formatTable = map[FileFormat]formatInfo{
	CRAM:  {suffixes: []string{".cram"}, indexSuffix: ".crai", endpoint: readsEndpoint},
	BAM:   {suffixes: []string{".bam"}, indexSuffix: ".bai", endpoint: readsEndpoint},
	SAM:   {suffixes: []string{".sam"}},
	VCF:   {suffixes: []string{".vcf.gz", ".vcf"}, indexSuffix: ".tbi", endpoint: variantsEndpoint},
	BCF:   {suffixes: []string{".bcf"}, indexSuffix: ".csi", endpoint: variantsEndpoint},
	FASTA: {suffixes: []string{".fasta", ".fa"}, indexSuffix: ".fai"},
	FASTQ: {suffixes: []string{".fastq", ".fq"}},
	MzTab: {suffixes: []string{".mztab"}},
}

// FileFormats returns every recognized format in a stable order.
func FileFormats() []FileFormat {
	formats := make([]FileFormat, 0, len(formatTable))
	for format := range formatTable {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// FormatFromPath determines a file's format from its name. Longer
// suffixes win, so "calls.vcf.gz" is VCF rather than unrecognized.
func FormatFromPath(path string) (FileFormat, error) {
	lower := strings.ToLower(path)
	var found FileFormat
	var foundLen int
	for format, info := range formatTable {
		for _, suffix := range info.suffixes {
			if strings.HasSuffix(lower, suffix) && len(suffix) > foundLen {
				found = format
				foundLen = len(suffix)
			}
		}
	}
	if foundLen == 0 {
		return "", UnsupportedFormatError{Path: path}
	}
	return found, nil
}

// FormatFromName resolves a format from its name, as stored in the
// data_format attribute of a data element.
func FormatFromName(name string) (FileFormat, error) {
	for format := range formatTable {
		if strings.EqualFold(string(format), name) {
			return format, nil
		}
	}
	return "", UnsupportedFormatError{Path: name}
}

// HasIndex reports whether files of this format travel with a companion
// index file.
func (f FileFormat) HasIndex() bool {
	return formatTable[f].indexSuffix != ""
}

// IndexPath returns the path of the companion index for a data file, by
// appending the format's index suffix (e.g. "demo.cram" to
// "demo.cram.crai").
func (f FileFormat) IndexPath(path string) (string, error) {
	info := formatTable[f]
	if info.indexSuffix == "" {
		return "", UnsupportedFormatError{Path: path}
	}
	return path + info.indexSuffix, nil
}

// HtsgetEndpoint returns the htsget endpoint category serving this
// format ("reads" for alignments, "variants" for variant calls).
func (f FileFormat) HtsgetEndpoint() (string, error) {
	info := formatTable[f]
	if info.endpoint == "" {
		return "", UnsupportedFormatError{Path: string(f)}
	}
	return info.endpoint, nil
}

// Suffix returns the format's canonical filename suffix.
func (f FileFormat) Suffix() string {
	info := formatTable[f]
	if len(info.suffixes) == 0 {
		return ""
	}
	return info.suffixes[0]
}

// TrimSuffix strips the format's filename suffix from a path, leaving
// the stem htsget tickets are addressed by.
func (f FileFormat) TrimSuffix(path string) string {
	lower := strings.ToLower(path)
	for _, suffix := range formatTable[f].suffixes {
		if strings.HasSuffix(lower, suffix) {
			return path[:len(path)-len(suffix)]
		}
	}
	return path
}
