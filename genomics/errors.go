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

import "fmt"

// indicates that a file's format is not recognized, or that a requested
// operation is not supported for its format
type UnsupportedFormatError struct {
	Path string
}

func (e UnsupportedFormatError) Error() string {
	return fmt.Sprintf("Unsupported file format: %s", e.Path)
}

// indicates a malformed UCSC region string
type InvalidRegionError struct {
	Region string
}

func (e InvalidRegionError) Error() string {
	return fmt.Sprintf("Invalid genomic region %q (expected e.g. \"chr1:100-200\")", e.Region)
}

// indicates that an htsget server answered a ticket request with an error
type HtsgetTicketError struct {
	Url, Message string
}

func (e HtsgetTicketError) Error() string {
	return fmt.Sprintf("Htsget ticket request to %s failed: %s", e.Url, e.Message)
}

// indicates a malformed CRAM file
type InvalidCramError struct {
	Reason string
}

func (e InvalidCramError) Error() string {
	return fmt.Sprintf("Invalid CRAM file: %s", e.Reason)
}
