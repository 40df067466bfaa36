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

package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// An ArchiveMatch is one catalog entry answering a search query.
type ArchiveMatch struct {
	// Scoped object path of the archive ("bucket/name").
	Path string `json:"path"`
	// S3 endpoint serving the archive's objects.
	S3Endpoint string `json:"s3_endpoint"`
	// Resolvable URL of the archive.
	Url string `json:"url"`
}

// A CatalogClient talks to the read-only endpoints of a catalog service,
// which project the metadata of every archive under the served bucket.
type CatalogClient struct {
	url    string
	client http.Client
}

// NewCatalogClient creates a client for the catalog service at the given
// URL.
func NewCatalogClient(endpointUrl string) *CatalogClient {
	return &CatalogClient{
		url:    strings.TrimSuffix(endpointUrl, "/"),
		client: SecureHttpClient(30 * time.Second),
	}
}

// List returns the scoped object paths of every archive in the catalog.
func (c *CatalogClient) List(ctx context.Context) ([]string, error) {
	var body struct {
		Archives []string `json:"archives"`
	}
	if err := GetJson(ctx, &c.client, c.url+"/list", &body); err != nil {
		return nil, err
	}
	return body.Archives, nil
}

// Meta returns the merged metadata of every archive in the catalog, keyed
// the way each archive keys its own snapshot.
func (c *CatalogClient) Meta(ctx context.Context) (map[string]map[string]any, error) {
	var body struct {
		Metadata map[string]map[string]any `json:"metadata"`
	}
	if err := GetJson(ctx, &c.client, c.url+"/meta", &body); err != nil {
		return nil, err
	}
	return body.Metadata, nil
}

// Get searches the catalog for archives matching a query, fuzzily unless
// exactMatch is set.
func (c *CatalogClient) Get(ctx context.Context, query string, exactMatch bool) ([]ArchiveMatch, error) {
	values := url.Values{}
	values.Set("query", query)
	values.Set("exact_match", strconv.FormatBool(exactMatch))
	var body struct {
		Matches []ArchiveMatch `json:"matches"`
	}
	if err := GetJson(ctx, &c.client, c.url+"/get?"+values.Encode(), &body); err != nil {
		return nil, err
	}
	return body.Matches, nil
}
