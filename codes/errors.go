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

package codes

import "fmt"

// NoTerminologyError indicates a slot with no attached terminology.
type NoTerminologyError struct {
	Slot string
}

func (e NoTerminologyError) Error() string {
	return fmt.Sprintf("No terminology attached to slot %s", e.Slot)
}

// NoMatcherError indicates that neither a fuzon endpoint nor a local code
// list is available.
type NoMatcherError struct{}

func (e NoMatcherError) Error() string {
	return "No fuzon endpoint provided and no local codes available, cannot match codes"
}

// InvalidCodeFileError indicates a malformed line in a code list file.
type InvalidCodeFileError struct {
	Line int
}

func (e InvalidCodeFileError) Error() string {
	return fmt.Sprintf("Invalid code list line %d: expected label<TAB>uri", e.Line)
}
