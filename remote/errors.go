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

import "fmt"

// indicates that a remote service is missing, misconfigured, or answered
// a request with an error
type RemoteEndpointError struct {
	Endpoint, Message string
}

func (e RemoteEndpointError) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("Remote service unavailable: %s", e.Message)
	}
	return fmt.Sprintf("Remote service %s unavailable: %s", e.Endpoint, e.Message)
}

// indicates an attempted downgrade from HTTPS to HTTP in a redirect
type DowngradedRedirectError struct {
	Endpoint string
}

func (e DowngradedRedirectError) Error() string {
	return fmt.Sprintf("Redirect to insecure HTTP endpoint %s rejected", e.Endpoint)
}

// indicates that a deployment does not advertise a service needed by the
// requested operation
type ServiceNotAdvertisedError struct {
	Service, Endpoint string
}

func (e ServiceNotAdvertisedError) Error() string {
	return fmt.Sprintf("The deployment at %s does not advertise a %s service",
		e.Endpoint, e.Service)
}
