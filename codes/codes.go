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

// Package codes recommends terminology codes for free-text metadata
// values, either through a fuzon service or a local code list.
package codes

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/modos-dev/modos/remote"
)

// DefaultTop is the number of candidate codes returned when the caller
// does not ask for a specific count.
const DefaultTop = 50

// SlotTerminologies maps coded metadata slots to the ontology each one
// draws its values from.
var SlotTerminologies = map[string]string{
	"cell_type":       "https://purl.obolibrary.org/obo/cl.owl",
	"source_material": "https://purl.obolibrary.org/obo/uberon.owl",
	"taxon_id":        "https://purl.obolibrary.org/obo/ncbitaxon/subsets/taxslim.owl",
}

// A Code is one terminology entry.
type Code struct {
	Label string `json:"label"`
	URI   string `json:"uri"`
}

// A Matcher ranks terminology codes against a free-text query.
type Matcher interface {
	Top(ctx context.Context, query string, n int) ([]Code, error)
}

// A RemoteMatcher queries a fuzon terminology service.
type RemoteMatcher struct {
	endpoint   string
	collection string
	client     http.Client
}

// NewRemoteMatcher builds a matcher for the given slot backed by a fuzon
// endpoint.
func NewRemoteMatcher(endpoint, slot string) (*RemoteMatcher, error) {
	if _, ok := SlotTerminologies[slot]; !ok {
		return nil, NoTerminologyError{Slot: slot}
	}
	return &RemoteMatcher{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		collection: slot,
		client:     remote.SecureHttpClient(30 * time.Second),
	}, nil
}

// Top asks the service for the n best matching codes.
func (m *RemoteMatcher) Top(ctx context.Context, query string, n int) ([]Code, error) {
	if n <= 0 {
		n = DefaultTop
	}
	values := url.Values{}
	values.Set("collection", m.collection)
	values.Set("query", query)
	values.Set("top", strconv.Itoa(n))
	var body struct {
		Codes []Code `json:"codes"`
	}
	if err := remote.GetJson(ctx, &m.client, m.endpoint+"/top?"+values.Encode(), &body); err != nil {
		return nil, err
	}
	return body.Codes, nil
}

// A LocalMatcher fuzzy-ranks an in-memory code list.
type LocalMatcher struct {
	codes []Code
}

// NewLocalMatcher builds a matcher over the given codes.
func NewLocalMatcher(codes []Code) *LocalMatcher {
	return &LocalMatcher{codes: codes}
}

// Top returns the n codes whose labels best match the query.
func (m *LocalMatcher) Top(ctx context.Context, query string, n int) ([]Code, error) {
	if n <= 0 {
		n = DefaultTop
	}
	labels := make([]string, len(m.codes))
	for i, code := range m.codes {
		labels[i] = code.Label
	}
	ranks := fuzzy.RankFindNormalizedFold(query, labels)
	sort.Sort(ranks)
	if n > len(ranks) {
		n = len(ranks)
	}
	out := make([]Code, 0, n)
	for _, rank := range ranks[:n] {
		out = append(out, m.codes[rank.OriginalIndex])
	}
	return out, nil
}

// SlotMatchers builds a remote matcher per coded slot.
func SlotMatchers(endpoint string) (map[string]Matcher, error) {
	if endpoint == "" {
		return nil, NoMatcherError{}
	}
	matchers := make(map[string]Matcher, len(SlotTerminologies))
	for slot := range SlotTerminologies {
		matcher, err := NewRemoteMatcher(endpoint, slot)
		if err != nil {
			return nil, err
		}
		matchers[slot] = matcher
	}
	return matchers, nil
}

// LoadCodes reads a tab-separated code list (label, uri). Blank lines and
// lines starting with # are skipped.
func LoadCodes(r io.Reader) ([]Code, error) {
	scanner := bufio.NewScanner(r)
	var codes []Code
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		label, uri, found := strings.Cut(text, "\t")
		if !found {
			return nil, InvalidCodeFileError{Line: line}
		}
		codes = append(codes, Code{
			Label: strings.TrimSpace(label),
			URI:   strings.TrimSpace(uri),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}
