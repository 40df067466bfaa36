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
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/modos-dev/modos/remote"
)

// DefaultHtsgetTimeout bounds each ticket or block request, body read
// included.
const DefaultHtsgetTimeout = 60 * time.Second

// an htsget ticket, listing the byte blocks making up the requested slice
type ticket struct {
	Htsget struct {
		Format string  `json:"format"`
		Urls   []Block `json:"urls"`
		Error  string  `json:"error"`
		// error responses carry their diagnostic here
		Message string `json:"message"`
	} `json:"htsget"`
}

// A Block is one byte block of a ticket, either an inline data: URI or an
// http(s) URL with request headers.
type Block struct {
	Url     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Class   string            `json:"class,omitempty"`
}

// A Connection addresses one file slice on an htsget server.
type Connection struct {
	host   string
	path   string
	format FileFormat
	region *Region
	client http.Client
}

// NewConnection prepares an htsget request for a slice of the named file.
// The path is relative to the store the server sits in front of and keeps
// its format suffix; a nil region requests the whole file.
func NewConnection(host, path string, region *Region) (*Connection, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if _, err := format.HtsgetEndpoint(); err != nil {
		return nil, err
	}
	return &Connection{
		host:   strings.TrimSuffix(host, "/"),
		path:   path,
		format: format,
		region: region,
		client: remote.SecureHttpClient(DefaultHtsgetTimeout),
	}, nil
}

// SetTimeout overrides the per-request timeout.
func (c *Connection) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// Format returns the format of the requested file.
func (c *Connection) Format() FileFormat {
	return c.format
}

// URL returns the ticket URL of the requested slice.
func (c *Connection) URL() (string, error) {
	return BuildHtsgetURL(c.host, c.path, c.region)
}

// Ticket fetches and parses the htsget ticket for the slice.
func (c *Connection) Ticket(ctx context.Context) ([]Block, error) {
	ticketUrl, err := c.URL()
	if err != nil {
		return nil, err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, ticketUrl, http.NoBody)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/vnd.ga4gh.htsget.v1.2.0+json")
	response, err := c.client.Do(request)
	if err != nil {
		return nil, HtsgetTicketError{Url: ticketUrl, Message: err.Error()}
	}
	defer response.Body.Close()

	var tick ticket
	if err := json.NewDecoder(response.Body).Decode(&tick); err != nil {
		return nil, HtsgetTicketError{Url: ticketUrl, Message: err.Error()}
	}
	if response.StatusCode != http.StatusOK {
		message := tick.Htsget.Message
		if message == "" {
			message = fmt.Sprintf("unexpected status %d", response.StatusCode)
		}
		return nil, HtsgetTicketError{Url: ticketUrl, Message: message}
	}
	return tick.Htsget.Urls, nil
}

// Open fetches the ticket and returns a lazy reader over the slice's
// blocks. Blocks are fetched one at a time as the reader is consumed.
func (c *Connection) Open(ctx context.Context) (*Stream, error) {
	blocks, err := c.Ticket(ctx)
	if err != nil {
		return nil, err
	}
	base, err := c.URL()
	if err != nil {
		return nil, err
	}
	return &Stream{
		ctx:    ctx,
		client: &c.client,
		base:   base,
		blocks: blocks,
	}, nil
}

// A Stream concatenates the byte blocks of an htsget ticket into one
// io.ReadCloser. Each block is materialized only when reading reaches it:
// inline data: URIs are decoded in place, http(s) blocks are fetched with
// their ticket headers. Abandoning the stream early just drops the
// remaining blocks.
type Stream struct {
	ctx     context.Context
	client  *http.Client
	base    string
	blocks  []Block
	current io.ReadCloser
}

func (s *Stream) Read(p []byte) (int, error) {
	for {
		if s.current == nil {
			if len(s.blocks) == 0 {
				return 0, io.EOF
			}
			next := s.blocks[0]
			s.blocks = s.blocks[1:]
			reader, err := s.openBlock(next)
			if err != nil {
				return 0, err
			}
			s.current = reader
		}
		n, err := s.current.Read(p)
		if err == io.EOF {
			s.current.Close()
			s.current = nil
			if n > 0 {
				return n, nil
			}
			continue // move on to the next block
		}
		return n, err
	}
}

func (s *Stream) Close() error {
	s.blocks = nil
	if s.current != nil {
		err := s.current.Close()
		s.current = nil
		return err
	}
	return nil
}

// openBlock materializes one ticket block.
func (s *Stream) openBlock(block Block) (io.ReadCloser, error) {
	if strings.HasPrefix(block.Url, "data:") {
		_, payload, found := strings.Cut(block.Url, ",")
		if !found {
			return nil, HtsgetTicketError{Url: s.base, Message: "malformed data: URI block"}
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, HtsgetTicketError{Url: s.base, Message: err.Error()}
		}
		return io.NopCloser(strings.NewReader(string(data))), nil
	}

	blockUrl, err := s.resolve(block.Url)
	if err != nil {
		return nil, err
	}
	request, err := http.NewRequestWithContext(s.ctx, http.MethodGet, blockUrl, http.NoBody)
	if err != nil {
		return nil, err
	}
	for name, value := range block.Headers {
		request.Header.Set(name, value)
	}
	response, err := s.client.Do(request)
	if err != nil {
		return nil, HtsgetTicketError{Url: blockUrl, Message: err.Error()}
	}
	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusPartialContent {
		response.Body.Close()
		return nil, HtsgetTicketError{
			Url:     blockUrl,
			Message: fmt.Sprintf("unexpected status %d fetching block", response.StatusCode),
		}
	}
	return response.Body, nil
}

// resolve interprets a possibly relative block URL against the ticket URL.
func (s *Stream) resolve(blockUrl string) (string, error) {
	base, err := url.Parse(s.base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(blockUrl)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// BuildHtsgetURL renders the ticket URL for a slice of the named file:
// the endpoint category is picked by format, the path drops its format
// suffix, and unbound region coordinates are omitted.
func BuildHtsgetURL(host, path string, region *Region) (string, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return "", err
	}
	endpoint, err := format.HtsgetEndpoint()
	if err != nil {
		return "", err
	}
	stem := format.TrimSuffix(strings.TrimPrefix(path, "/"))
	query := url.Values{}
	if region != nil {
		query = region.HtsgetQuery()
	}
	query.Set("format", string(format))
	return fmt.Sprintf("%s/%s/%s?%s", strings.TrimSuffix(host, "/"), endpoint,
		stem, query.Encode()), nil
}

// ParseHtsgetURL recovers host, file path, and region from a ticket URL.
// The file path gets the format's canonical suffix back.
func ParseHtsgetURL(raw string) (host, path string, region *Region, err error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", "", nil, err
	}
	var endpoint string
	for _, candidate := range []string{readsEndpoint, variantsEndpoint} {
		if i := strings.LastIndex(parsed.Path, "/"+candidate+"/"); i >= 0 {
			host = parsed.Scheme + "://" + parsed.Host + parsed.Path[:i]
			path = parsed.Path[i+len(candidate)+2:]
			endpoint = candidate
			break
		}
	}
	if endpoint == "" {
		return "", "", nil, fmt.Errorf("No htsget endpoint segment in URL: %s", raw)
	}
	query := parsed.Query()
	format, err := FormatFromName(query.Get("format"))
	if err != nil {
		return "", "", nil, err
	}
	path += format.Suffix()
	region, err = RegionFromQuery(query)
	if err != nil {
		return "", "", nil, err
	}
	return host, path, region, nil
}
