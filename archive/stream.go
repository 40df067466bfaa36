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
	"io"
	"path"
	"strings"

	"github.com/modos-dev/modos/genomics"
)

// StreamGenomics streams a genomic data file of the archive, optionally
// sliced to a region. Archives opened against a MODOS server stream
// through its htsget service; local archives read the file directly and
// filter client-side, which supports regions for BAM and VCF only.
func (m *MODO) StreamGenomics(ctx context.Context, filePath string, region *genomics.Region) (io.ReadCloser, error) {
	rel := strings.TrimPrefix(filePath, "/")
	files, err := m.ListFiles(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for _, file := range files {
		if file == rel {
			found = true
			break
		}
	}
	if !found {
		return nil, ElementNotFoundError{Id: filePath, Known: files}
	}

	format, err := genomics.FormatFromPath(rel)
	if err != nil {
		return nil, err
	}
	if _, err := format.HtsgetEndpoint(); err != nil {
		return nil, err
	}

	if m.endpoint != nil {
		host, err := m.endpoint.Htsget(ctx)
		if err != nil {
			return nil, err
		}
		// the htsget id is the archive id plus the file path inside it
		connection, err := genomics.NewConnection(host, path.Join(m.id, rel), region)
		if err != nil {
			return nil, err
		}
		return connection.Open(ctx)
	}

	source, err := m.backend.Open(ctx, rel)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return source, nil
	}
	switch format {
	case genomics.BAM:
		return genomics.FilterAlignments(source, region)
	case genomics.VCF:
		compressed := strings.HasSuffix(strings.ToLower(rel), ".gz")
		return genomics.FilterVariants(source, compressed, region)
	}
	source.Close()
	return nil, genomics.UnsupportedFormatError{Path: rel}
}
