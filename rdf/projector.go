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

// Package rdf projects archive metadata into RDF graphs and serializes
// them as linked data.
package rdf

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/deiu/rdf2go"

	"github.com/modos-dev/modos/schema"
)

// rdfType is the rdf:type predicate IRI.
const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// A Format names an RDF serialization.
type Format string

const (
	Turtle   Format = "turtle"
	JSONLD   Format = "json-ld"
	NTriples Format = "ntriples"
)

// Formats lists the supported serializations.
func Formats() []Format {
	return []Format{Turtle, JSONLD, NTriples}
}

// ParseFormat resolves a format name, accepting the usual short aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "turtle", "ttl":
		return Turtle, nil
	case "json-ld", "jsonld":
		return JSONLD, nil
	case "ntriples", "n-triples", "nt":
		return NTriples, nil
	}
	return "", UnknownFormatError{Format: name}
}

// ProjectAttrs turns a flattened metadata snapshot into an RDF graph.
// Subject paths become IRIs under the base, "@type" becomes rdf:type in
// the modos vocabulary, and slot values become IRIs when their range is
// a class or URI (data paths included), literals otherwise. Slots the
// schema does not know are left out.
func ProjectAttrs(base string, flat map[string]map[string]any) *rdf2go.Graph {
	view := schema.Load()
	ns := view.Namespace()
	graph := rdf2go.NewGraph(base)

	subjects := make([]string, 0, len(flat))
	for subject := range flat {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	for _, subject := range subjects {
		attrs := flat[subject]
		iri := subject
		if !isURI(iri) {
			iri = base + iri
		}
		node := rdf2go.NewResource(iri)
		if class, ok := attrs["@type"].(string); ok && class != "" {
			graph.AddTriple(node, rdf2go.NewResource(rdfType),
				rdf2go.NewResource(ns+class))
		}

		keys := make([]string, 0, len(attrs))
		for key := range attrs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if key == "@type" || key == "id" {
				continue
			}
			slotRange := view.SlotRange(key)
			if slotRange == "" {
				continue
			}
			predicate := rdf2go.NewResource(ns + key)
			asIRI := strings.Contains(strings.ToLower(slotRange), "uri") ||
				view.HasClass(slotRange) || key == "data_path"
			for _, item := range valueList(attrs[key]) {
				if item == "" {
					continue
				}
				if asIRI {
					if !isURI(item) {
						item = base + item
					}
					graph.AddTriple(node, predicate, rdf2go.NewResource(item))
				} else {
					graph.AddTriple(node, predicate, rdf2go.NewLiteral(item))
				}
			}
		}
	}
	return graph
}

// Serialize writes the graph in the requested format.
func Serialize(graph *rdf2go.Graph, format Format, w io.Writer) error {
	switch format {
	case Turtle:
		return graph.Serialize(w, "text/turtle")
	case JSONLD:
		return graph.Serialize(w, "application/ld+json")
	case NTriples:
		for triple := range graph.IterTriples() {
			if _, err := fmt.Fprintln(w, triple); err != nil {
				return err
			}
		}
		return nil
	}
	return UnknownFormatError{Format: string(format)}
}

// SubjectsOfType returns the subject IRIs typed as the given model class,
// sorted.
func SubjectsOfType(graph *rdf2go.Graph, class string) []string {
	ns := schema.Load().Namespace()
	var subjects []string
	for _, triple := range graph.All(nil, rdf2go.NewResource(rdfType),
		rdf2go.NewResource(ns+class)) {
		subjects = append(subjects, triple.Subject.RawValue())
	}
	sort.Strings(subjects)
	return subjects
}

// valueList flattens a scalar or list attribute value into strings.
func valueList(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

// isURI reports whether the text is an absolute URI with a host.
func isURI(text string) bool {
	parsed, err := url.Parse(text)
	return err == nil && parsed.Scheme != "" && parsed.Host != ""
}
