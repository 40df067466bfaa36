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

package services

import (
	"context"
)

// this type encodes a JSON object for responding to root queries
type ServiceInfoResponse struct {
	Name          string `json:"name" example:"modos" doc:"The name of the service API"`
	Version       string `json:"version" example:"1.0.0" doc:"The version string (major.minor.patch)"`
	Uptime        int    `json:"uptime" example:"345600" doc:"The time the service has been up (seconds)"`
	Documentation string `json:"documentation" example:"/docs" doc:"The OpenAPI documentation endpoint"`
	// URLs of the auxiliary services this deployment advertises, fetched by
	// clients to reach the object store and the genomics streaming service
	S3     string `json:"s3,omitempty" example:"https://objects.example.org" doc:"The object store URL serving the archives"`
	Htsget string `json:"htsget,omitempty" example:"https://htsget.example.org/reads" doc:"The htsget URL streaming the archives' genomic files"`
}

// a response listing the served archives (GET /list)
type ArchiveListResponse struct {
	Archives []string `json:"archives" doc:"the scoped object path of every served archive"`
}

// a response carrying the merged metadata of all served archives (GET /meta)
type MetadataResponse struct {
	Metadata map[string]map[string]any `json:"metadata" doc:"attribute documents keyed the way each archive keys its own metadata"`
}

// one archive matching a search query (GET /get)
type ArchiveMatch struct {
	Path       string `json:"path" example:"modos-demo/ex1" doc:"scoped object path of the archive"`
	S3Endpoint string `json:"s3_endpoint,omitempty" doc:"object store URL serving the archive"`
	Url        string `json:"url,omitempty" doc:"resolvable URL of the archive"`
}

// a response carrying the archives matching a search query (GET /get)
type SearchResponse struct {
	Matches []ArchiveMatch `json:"matches" doc:"the matching archives, best match first"`
}

// CatalogService defines the interface for the digital object catalog
// service.
type CatalogService interface {
	// Starts the service on the selected port, returning an error that indicates
	// success or failure.
	Start(port int) error
	// Gracefully shuts down the service without interrupting active connections.
	Shutdown(ctx context.Context) error
	// Closes down the service, freeing all resources.
	Close()
}
