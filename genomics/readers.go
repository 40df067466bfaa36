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
	"io"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/bgzf"
	"github.com/brentp/vcfgo"
)

// a reader that owns the resources feeding it
type filterStream struct {
	io.Reader
	closers []io.Closer
}

func (s *filterStream) Close() error {
	var first error
	for _, closer := range s.closers {
		if err := closer.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// FilterAlignments re-emits a BAM stream keeping only records overlapping
// the region. Records are parsed, compared against the region by their own
// coordinates, and re-encoded, so the result is a valid BAM file with the
// original header. Unplaced records are dropped.
func FilterAlignments(source io.ReadCloser, region *Region) (io.ReadCloser, error) {
	reader, err := bam.NewReader(source, 1)
	if err != nil {
		source.Close()
		return nil, err
	}

	pipeReader, pipeWriter := io.Pipe()
	go func() {
		writer, err := bam.NewWriter(pipeWriter, reader.Header(), 1)
		if err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				pipeWriter.CloseWithError(err)
				return
			}
			if record.Ref == nil {
				continue
			}
			if !region.OverlapsInterval(record.Ref.Name(), int64(record.Pos),
				int64(record.End())) {
				continue
			}
			if err := writer.Write(record); err != nil {
				pipeWriter.CloseWithError(err)
				return
			}
		}
		if err := writer.Close(); err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		pipeWriter.Close()
	}()

	return &filterStream{
		Reader:  pipeReader,
		closers: []io.Closer{pipeReader, reader, source},
	}, nil
}

// FilterVariants re-emits a VCF stream keeping only records overlapping
// the region. Compressed input produces bgzf-compressed output, so a
// sliced ".vcf.gz" stays a ".vcf.gz".
func FilterVariants(source io.ReadCloser, compressed bool, region *Region) (io.ReadCloser, error) {
	var text io.Reader = source
	closers := []io.Closer{source}
	if compressed {
		unzipped, err := bgzf.NewReader(source, 1)
		if err != nil {
			source.Close()
			return nil, err
		}
		text = unzipped
		closers = []io.Closer{unzipped, source}
	}
	reader, err := vcfgo.NewReader(text, true)
	if err != nil {
		for _, closer := range closers {
			closer.Close()
		}
		return nil, err
	}

	pipeReader, pipeWriter := io.Pipe()
	go func() {
		var sink io.Writer = pipeWriter
		var zipped *bgzf.Writer
		if compressed {
			zipped = bgzf.NewWriter(pipeWriter, 1)
			sink = zipped
		}
		writer, err := vcfgo.NewWriter(sink, reader.Header)
		if err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		for {
			variant := reader.Read()
			if variant == nil {
				break
			}
			if !region.OverlapsInterval(variant.Chromosome,
				int64(variant.Start()), int64(variant.End())) {
				continue
			}
			writer.WriteVariant(variant)
		}
		if zipped != nil {
			if err := zipped.Close(); err != nil {
				pipeWriter.CloseWithError(err)
				return
			}
		}
		pipeWriter.Close()
	}()

	return &filterStream{
		Reader:  pipeReader,
		closers: append([]io.Closer{pipeReader}, closers...),
	}, nil
}
