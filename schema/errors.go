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

package schema

import "fmt"

// indicates that a class name is not part of the modos schema
type UnknownClassError struct {
	Name string
}

func (e UnknownClassError) Error() string {
	return fmt.Sprintf("Class %s is not defined in the modos schema", e.Name)
}

// indicates that a slot is not valid for a given class
type UnknownSlotError struct {
	Class, Slot string
}

func (e UnknownSlotError) Error() string {
	return fmt.Sprintf("Class %s has no slot %s", e.Class, e.Slot)
}

// indicates that a slot value is not among an enum's permissible values
type InvalidSlotValueError struct {
	Slot, Value, Enum string
}

func (e InvalidSlotValueError) Error() string {
	return fmt.Sprintf("Invalid value %q for slot %s (expected one of enum %s)",
		e.Value, e.Slot, e.Enum)
}

// indicates that a required slot is missing from an attribute document
type MissingSlotError struct {
	Class, Slot string
}

func (e MissingSlotError) Error() string {
	return fmt.Sprintf("Class %s requires slot %s", e.Class, e.Slot)
}
