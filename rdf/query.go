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

package rdf

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/deiu/rdf2go"

	"github.com/modos-dev/modos/schema"
)

// A Query is one parsed triple pattern with a projection, the subset of
// SELECT queries the graph matcher can answer directly.
type Query struct {
	selected []string
	subject  queryTerm
	pred     queryTerm
	object   queryTerm
}

// one pattern position, either a variable or a concrete term
type queryTerm struct {
	variable string
	value    rdf2go.Term
}

// A Binding maps selected variable names to matched values.
type Binding map[string]string

var selectRegex = regexp.MustCompile(`(?is)^\s*select\s+(.+?)\s+where\s*\{(.+)\}\s*$`)

// ParseQuery parses a single-pattern SELECT query, e.g.
//
//	SELECT ?s WHERE { ?s a modos:Sample }
//
// A bare pattern without the SELECT clause selects all its variables.
// CURIEs are expanded with the schema prefix map and "a" stands for
// rdf:type.
func ParseQuery(q string) (*Query, error) {
	pattern := q
	var projection string
	if match := selectRegex.FindStringSubmatch(q); match != nil {
		projection = match[1]
		pattern = match[2]
	}

	tokens, err := tokenize(strings.TrimSuffix(strings.TrimSpace(pattern), "."))
	if err != nil {
		return nil, InvalidQueryError{Query: q, Reason: err.Error()}
	}
	if len(tokens) != 3 {
		return nil, InvalidQueryError{Query: q, Reason: "expected a single triple pattern"}
	}

	query := &Query{}
	positions := []*queryTerm{&query.subject, &query.pred, &query.object}
	for i, token := range tokens {
		term, err := parseTerm(token)
		if err != nil {
			return nil, InvalidQueryError{Query: q, Reason: err.Error()}
		}
		*positions[i] = term
	}

	if projection == "" || strings.TrimSpace(projection) == "*" {
		for _, position := range positions {
			if position.variable != "" && !contains(query.selected, position.variable) {
				query.selected = append(query.selected, position.variable)
			}
		}
	} else {
		for _, field := range strings.Fields(strings.ReplaceAll(projection, ",", " ")) {
			name, found := strings.CutPrefix(field, "?")
			if !found {
				return nil, InvalidQueryError{Query: q, Reason: "projection must list ?variables"}
			}
			query.selected = append(query.selected, name)
		}
	}
	if len(query.selected) == 0 {
		return nil, InvalidQueryError{Query: q, Reason: "nothing to select"}
	}
	return query, nil
}

// Run matches the pattern against the graph and returns one binding per
// matching triple, sorted for stable output.
func (q *Query) Run(graph *rdf2go.Graph) []Binding {
	var matches []*rdf2go.Triple
	if q.subject.value == nil && q.pred.value == nil && q.object.value == nil {
		// the matcher treats the all-wildcard pattern as empty
		for triple := range graph.IterTriples() {
			matches = append(matches, triple)
		}
	} else {
		matches = graph.All(q.subject.value, q.pred.value, q.object.value)
	}
	bindings := make([]Binding, 0, len(matches))
	for _, triple := range matches {
		values := map[string]string{}
		ok := true
		for _, pair := range []struct {
			position *queryTerm
			term     rdf2go.Term
		}{
			{&q.subject, triple.Subject},
			{&q.pred, triple.Predicate},
			{&q.object, triple.Object},
		} {
			if pair.position.variable == "" {
				continue
			}
			raw := pair.term.RawValue()
			if seen, bound := values[pair.position.variable]; bound && seen != raw {
				ok = false // one variable in two positions must match itself
				break
			}
			values[pair.position.variable] = raw
		}
		if !ok {
			continue
		}
		binding := Binding{}
		for _, name := range q.selected {
			binding[name] = values[name]
		}
		bindings = append(bindings, binding)
	}

	sort.Slice(bindings, func(i, j int) bool {
		for _, name := range q.selected {
			if bindings[i][name] != bindings[j][name] {
				return bindings[i][name] < bindings[j][name]
			}
		}
		return false
	})
	return bindings
}

// Variables returns the projected variable names in order.
func (q *Query) Variables() []string {
	return q.selected
}

// tokenize splits a pattern into terms, keeping <...> and "..." intact.
func tokenize(pattern string) ([]string, error) {
	var tokens []string
	rest := strings.TrimSpace(pattern)
	for rest != "" {
		var token string
		switch rest[0] {
		case '<':
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				return nil, errors.New("unterminated IRI")
			}
			token, rest = rest[:end+1], rest[end+1:]
		case '"':
			end := strings.IndexByte(rest[1:], '"')
			if end < 0 {
				return nil, errors.New("unterminated literal")
			}
			token, rest = rest[:end+2], rest[end+2:]
		default:
			if i := strings.IndexAny(rest, " \t\n"); i >= 0 {
				token, rest = rest[:i], rest[i:]
			} else {
				token, rest = rest, ""
			}
		}
		tokens = append(tokens, token)
		rest = strings.TrimSpace(rest)
	}
	return tokens, nil
}

// parseTerm interprets one pattern token.
func parseTerm(token string) (queryTerm, error) {
	switch {
	case strings.HasPrefix(token, "?"):
		if len(token) == 1 {
			return queryTerm{}, errors.New("empty variable name")
		}
		return queryTerm{variable: token[1:]}, nil
	case strings.HasPrefix(token, "<") && strings.HasSuffix(token, ">"):
		return queryTerm{value: rdf2go.NewResource(token[1 : len(token)-1])}, nil
	case strings.HasPrefix(token, `"`) && strings.HasSuffix(token, `"`):
		return queryTerm{value: rdf2go.NewLiteral(token[1 : len(token)-1])}, nil
	case token == "a":
		return queryTerm{value: rdf2go.NewResource(rdfType)}, nil
	case strings.Contains(token, ":"):
		expanded := schema.Load().ExpandCURIE(token)
		if expanded == token {
			return queryTerm{}, errors.New("unknown prefix in " + token)
		}
		return queryTerm{value: rdf2go.NewResource(expanded)}, nil
	}
	return queryTerm{}, errors.New("unrecognized term " + token)
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
