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
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stands in for a catalog service, recording the last /get parameters
type fakeCatalog struct {
	query      string
	exactMatch string
}

func (c *fakeCatalog) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"archives": ["modos-demo/ex1", "modos-demo/ex2"]}`))
	})
	mux.HandleFunc("/meta", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"metadata": {
			"ex1": {"@type": "MODO", "id": "ex1"},
			"sample/donor1": {"@type": "Sample", "name": "Donor 1"}
		}}`))
	})
	mux.HandleFunc("/get", func(w http.ResponseWriter, r *http.Request) {
		c.query = r.URL.Query().Get("query")
		c.exactMatch = r.URL.Query().Get("exact_match")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"matches": [{
			"path": "modos-demo/ex1",
			"s3_endpoint": "http://objects.example.org",
			"url": "http://objects.example.org/modos-demo/ex1"
		}]}`))
	})
	return httptest.NewServer(mux)
}

func TestCatalogList(t *testing.T) {
	assert := assert.New(t)
	catalog := new(fakeCatalog)
	server := catalog.server()
	defer server.Close()

	client := NewCatalogClient(server.URL + "/")
	archives, err := client.List(context.Background())
	assert.Nil(err)
	assert.Equal([]string{"modos-demo/ex1", "modos-demo/ex2"}, archives)
}

func TestCatalogMeta(t *testing.T) {
	assert := assert.New(t)
	catalog := new(fakeCatalog)
	server := catalog.server()
	defer server.Close()

	client := NewCatalogClient(server.URL)
	meta, err := client.Meta(context.Background())
	assert.Nil(err)
	assert.Len(meta, 2)
	assert.Equal("MODO", meta["ex1"]["@type"])
	assert.Equal("Donor 1", meta["sample/donor1"]["name"])
}

func TestCatalogGet(t *testing.T) {
	assert := assert.New(t)
	catalog := new(fakeCatalog)
	server := catalog.server()

	client := NewCatalogClient(server.URL)
	matches, err := client.Get(context.Background(), "ex1", true)
	assert.Nil(err)
	assert.Len(matches, 1)
	assert.Equal("modos-demo/ex1", matches[0].Path)
	assert.Equal("http://objects.example.org", matches[0].S3Endpoint)
	assert.Equal("http://objects.example.org/modos-demo/ex1", matches[0].Url)

	// the query parameters made it over the wire intact
	server.Close()
	assert.Equal("ex1", catalog.query)
	assert.Equal("true", catalog.exactMatch)
}

func TestCatalogReportsServerErrors(t *testing.T) {
	assert := assert.New(t)
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bucket missing", http.StatusBadGateway)
		}))
	defer server.Close()

	client := NewCatalogClient(server.URL)
	_, err := client.List(context.Background())
	assert.NotNil(err)
	var remoteErr *RemoteEndpointError
	assert.ErrorAs(err, &remoteErr)
}
