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
	"strings"
	"sync"
	"time"
)

// names of the services a deployment can advertise
const (
	S3Service     = "s3"
	HtsgetService = "htsget"
)

// An EndpointManager resolves the auxiliary services (S3 object store,
// htsget streaming) advertised by a digital object deployment. The
// deployment is addressed either by the URL of its catalog service, whose
// root endpoint lists the services, or by a static service map when no
// catalog service is running.
type EndpointManager struct {
	url    string
	client http.Client

	mutex    sync.Mutex
	services map[string]string
}

// NewEndpointManager creates an endpoint manager that discovers services
// from the catalog service at the given URL.
func NewEndpointManager(url string) *EndpointManager {
	return &EndpointManager{
		url:    strings.TrimSuffix(url, "/"),
		client: SecureHttpClient(30 * time.Second),
	}
}

// NewStaticEndpoints creates an endpoint manager from an explicit service
// map, for deployments without a catalog service.
func NewStaticEndpoints(services map[string]string) *EndpointManager {
	fixed := make(map[string]string, len(services))
	for name, url := range services {
		if url != "" {
			fixed[name] = strings.TrimSuffix(url, "/")
		}
	}
	return &EndpointManager{services: fixed}
}

// URL returns the catalog service URL ("" for static deployments).
func (m *EndpointManager) URL() string {
	return m.url
}

// Services returns the address of every service the deployment
// advertises. The catalog's answer is cached for the manager's lifetime.
func (m *EndpointManager) Services(ctx context.Context) (map[string]string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.services != nil {
		return m.services, nil
	}

	// the catalog's root endpoint reports the deployment's services
	var info map[string]any
	if err := GetJson(ctx, &m.client, m.url+"/", &info); err != nil {
		return nil, err
	}
	services := make(map[string]string)
	for _, name := range []string{S3Service, HtsgetService} {
		if url, ok := info[name].(string); ok && url != "" {
			services[name] = strings.TrimSuffix(url, "/")
		}
	}
	m.services = services
	return services, nil
}

// service resolves one advertised service by name.
func (m *EndpointManager) service(ctx context.Context, name string) (string, error) {
	services, err := m.Services(ctx)
	if err != nil {
		return "", err
	}
	url, ok := services[name]
	if !ok {
		return "", &ServiceNotAdvertisedError{Service: name, Endpoint: m.url}
	}
	return url, nil
}

// S3 returns the deployment's S3 endpoint URL.
func (m *EndpointManager) S3(ctx context.Context) (string, error) {
	return m.service(ctx, S3Service)
}

// Htsget returns the deployment's htsget endpoint URL.
func (m *EndpointManager) Htsget(ctx context.Context) (string, error) {
	return m.service(ctx, HtsgetService)
}
