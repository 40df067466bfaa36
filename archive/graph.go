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
	"sort"
	"strings"

	"github.com/deiu/rdf2go"

	"github.com/modos-dev/modos/rdf"
)

// graphBase returns the base IRI under which archive-relative subjects are
// minted, derived from the storage location.
func (m *MODO) graphBase() string {
	return strings.TrimSuffix(m.backend.URL(), "/") + "/"
}

// KnowledgeGraph projects the archive metadata into an RDF graph. Subjects
// are the element paths resolved against the storage URL, predicates come
// from the schema namespace.
func (m *MODO) KnowledgeGraph(ctx context.Context) (*rdf2go.Graph, error) {
	flat, err := m.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	return rdf.ProjectAttrs(m.graphBase(), flat), nil
}

// ListSamples lists the sample elements recorded in the archive.
func (m *MODO) ListSamples(ctx context.Context) ([]string, error) {
	graph, err := m.KnowledgeGraph(ctx)
	if err != nil {
		return nil, err
	}
	base := m.graphBase()
	samples := make([]string, 0)
	for _, subject := range rdf.SubjectsOfType(graph, "Sample") {
		samples = append(samples, strings.TrimPrefix(subject, base))
	}
	sort.Strings(samples)
	return samples, nil
}

// Query runs a graph query over the archive metadata and returns its
// variable bindings.
func (m *MODO) Query(ctx context.Context, query string) ([]rdf.Binding, error) {
	graph, err := m.KnowledgeGraph(ctx)
	if err != nil {
		return nil, err
	}
	parsed, err := rdf.ParseQuery(query)
	if err != nil {
		return nil, err
	}
	return parsed.Run(graph), nil
}

// Publish writes the metadata graph to w in the requested RDF format.
func (m *MODO) Publish(ctx context.Context, format rdf.Format, w io.Writer) error {
	graph, err := m.KnowledgeGraph(ctx)
	if err != nil {
		return err
	}
	return rdf.Serialize(graph, format, w)
}
