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
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

// tests that a ticket request carries the slice coordinates and the htsget
// media type, and that the ticket's blocks come back in order
func TestHtsgetTicket(t *testing.T) {
	assert := assert.New(t)

	var ticketQuery url.Values
	var accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/reads/ex/demo1", r.URL.Path)
		ticketQuery = r.URL.Query()
		accept = r.Header.Get("Accept")
		var tick ticket
		tick.Htsget.Format = "CRAM"
		tick.Htsget.Urls = []Block{
			{Url: "data:;base64," + base64.StdEncoding.EncodeToString([]byte("slice"))},
		}
		json.NewEncoder(w).Encode(tick)
	}))
	defer server.Close()

	region, err := ParseRegion("chr1:10-300")
	assert.Nil(err)
	connection, err := NewConnection(server.URL, "ex/demo1.cram", region)
	assert.Nil(err)
	blocks, err := connection.Ticket(context.Background())
	assert.Nil(err)
	assert.Len(blocks, 1)
	assert.Equal("application/vnd.ga4gh.htsget.v1.2.0+json", accept)
	assert.Equal("CRAM", ticketQuery.Get("format"))
	assert.Equal("chr1", ticketQuery.Get("referenceName"))
	assert.Equal("10", ticketQuery.Get("start"))
	assert.Equal("300", ticketQuery.Get("end"))
}

// tests that a stream concatenates inline, absolute, and host-relative
// blocks, forwarding the ticket headers of each block
func TestHtsgetStream(t *testing.T) {
	assert := assert.New(t)

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/reads/ex/demo1":
			var tick ticket
			tick.Htsget.Format = "BAM"
			tick.Htsget.Urls = []Block{
				{Url: "data:application/octet-stream;base64," +
					base64.StdEncoding.EncodeToString([]byte("lead-in "))},
				{
					Url:     server.URL + "/blocks/0",
					Headers: map[string]string{"Authorization": "Bearer token-123"},
				},
				{Url: "/blocks/1"},
			}
			json.NewEncoder(w).Encode(tick)
		case "/blocks/0":
			if r.Header.Get("Authorization") != "Bearer token-123" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			fmt.Fprint(w, "middle ")
		case "/blocks/1":
			fmt.Fprint(w, "end")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	connection, err := NewConnection(server.URL, "ex/demo1.bam", nil)
	assert.Nil(err)
	stream, err := connection.Open(context.Background())
	assert.Nil(err)

	// a short read stops inside the first block
	head := make([]byte, 4)
	_, err = io.ReadFull(stream, head)
	assert.Nil(err)
	assert.Equal("lead", string(head))

	rest, err := io.ReadAll(stream)
	assert.Nil(err)
	assert.Equal("-in middle end", string(rest))
	assert.Nil(stream.Close())
}

func TestHtsgetErrorTicket(t *testing.T) {
	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tick ticket
		tick.Htsget.Error = "NotFound"
		tick.Htsget.Message = "No such file: ex/missing.cram"
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(tick)
	}))
	defer server.Close()

	connection, err := NewConnection(server.URL, "ex/missing.cram", nil)
	assert.Nil(err)
	_, err = connection.Ticket(context.Background())
	var ticketErr HtsgetTicketError
	assert.True(errors.As(err, &ticketErr))
	assert.Equal("No such file: ex/missing.cram", ticketErr.Message)
}

func TestHtsgetStreamBlockFailure(t *testing.T) {
	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/variants/ex/calls" {
			var tick ticket
			tick.Htsget.Format = "VCF"
			tick.Htsget.Urls = []Block{{Url: "/blocks/gone"}}
			json.NewEncoder(w).Encode(tick)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	connection, err := NewConnection(server.URL, "ex/calls.vcf.gz", nil)
	assert.Nil(err)
	stream, err := connection.Open(context.Background())
	assert.Nil(err)
	_, err = io.ReadAll(stream)
	var ticketErr HtsgetTicketError
	assert.True(errors.As(err, &ticketErr))
	assert.Nil(stream.Close())
}

func TestNewConnectionRejectsUnstreamableFiles(t *testing.T) {
	assert := assert.New(t)

	// FASTQ has no htsget endpoint, text files have no format at all
	_, err := NewConnection("http://localhost:8080", "ex/reads.fastq", nil)
	assert.NotNil(err)
	_, err = NewConnection("http://localhost:8080", "ex/notes.txt", nil)
	var formatErr UnsupportedFormatError
	assert.True(errors.As(err, &formatErr))
}
