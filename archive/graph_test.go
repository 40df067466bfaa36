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
	"testing"

	"github.com/deiu/rdf2go"
	"github.com/stretchr/testify/assert"

	"github.com/modos-dev/modos/schema"
)

// graphArchive builds an archive with an assay containing one sample.
func graphArchive(t *testing.T, name string) *MODO {
	assert := assert.New(t)
	ctx := context.Background()
	m := newTestArchive(t, name, Options{})
	assert.Nil(m.AddElement(ctx, testAssay("assay1"), AddOptions{PartOf: m.ID()}))
	assert.Nil(m.AddElement(ctx, testSample("sample1", "Donor 1"), AddOptions{PartOf: "assay1"}))
	return m
}

func TestKnowledgeGraph(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := graphArchive(t, "ex-graph")
	graph, err := m.KnowledgeGraph(ctx)
	assert.Nil(err)

	ns := schema.Load().Namespace()
	base := m.graphBase()

	// the sample is typed and carries its literal attributes
	sample := rdf2go.NewResource(base + "sample/sample1")
	typed := graph.One(sample,
		rdf2go.NewResource("http://www.w3.org/1999/02/22-rdf-syntax-ns#type"),
		rdf2go.NewResource(ns+"Sample"))
	assert.NotNil(typed)
	named := graph.One(sample, rdf2go.NewResource(ns+"name"), rdf2go.NewLiteral("Donor 1"))
	assert.NotNil(named)

	// the containment link points from the assay to the sample IRI
	contained := graph.One(rdf2go.NewResource(base+"assay/assay1"),
		rdf2go.NewResource(ns+"has_sample"), sample)
	assert.NotNil(contained)
}

func TestListSamples(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := graphArchive(t, "ex-samples")
	samples, err := m.ListSamples(ctx)
	assert.Nil(err)
	assert.Equal([]string{"sample/sample1"}, samples)

	assert.Nil(m.RemoveElement(ctx, "sample1"))
	samples, err = m.ListSamples(ctx)
	assert.Nil(err)
	assert.Empty(samples)
}

func TestQueryArchive(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := graphArchive(t, "ex-query")
	bindings, err := m.Query(ctx, "SELECT ?s WHERE { ?s a modos:Sample }")
	assert.Nil(err)
	assert.Len(bindings, 1)
	assert.Equal(m.graphBase()+"sample/sample1", bindings[0]["s"])

	_, err = m.Query(ctx, "this is not a query")
	assert.NotNil(err)
}

func TestPublish(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := graphArchive(t, "ex-publish")

	var turtle bytes.Buffer
	assert.Nil(m.Publish(ctx, "turtle", &turtle))
	assert.Contains(turtle.String(), "sample/sample1")

	var triples bytes.Buffer
	assert.Nil(m.Publish(ctx, "ntriples", &triples))
	assert.Contains(triples.String(), "<http://www.w3.org/1999/02/22-rdf-syntax-ns#type>")

	err := m.Publish(ctx, "rdfxml", &turtle)
	assert.NotNil(err)
}
