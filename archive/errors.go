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

package archive

import (
	"fmt"
	"strings"
)

// indicates that an element id is already taken somewhere in the archive
type DuplicateIdError struct {
	Id string
}

func (e DuplicateIdError) Error() string {
	return fmt.Sprintf("Please specify a unique ID. An element with ID %s already exists.", e.Id)
}

// indicates that an id could not be resolved to any element of the archive
type ElementNotFoundError struct {
	Id    string
	Known []string
}

func (e ElementNotFoundError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("Element %s was not found in the archive.", e.Id)
	}
	return fmt.Sprintf("Element %s was not found in the archive. Available elements are: %s.",
		e.Id, strings.Join(e.Known, ", "))
}

// indicates that a parent's class has no containment slot for the child's class
type IncompatibleContainmentError struct {
	Parent      string
	ParentClass string
	ChildClass  string
}

func (e IncompatibleContainmentError) Error() string {
	return fmt.Sprintf("Element %s of class %s cannot contain %s elements.",
		e.Parent, e.ParentClass, e.ChildClass)
}

// indicates that an update's class differs from the stored element's class
type TypeMismatchError struct {
	Id     string
	Stored string
	Given  string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("Element %s has class %s, not %s.", e.Id, e.Stored, e.Given)
}

// indicates an attempt to remove the archive root like an element
type RootRemovalError struct {
	Id string
}

func (e RootRemovalError) Error() string {
	return fmt.Sprintf("Cannot remove the archive root %s. Use RemoveObject to delete the whole archive.", e.Id)
}

// indicates that a build document cannot describe a valid archive
type InvalidBuildFileError struct {
	Path   string
	Reason string
}

func (e InvalidBuildFileError) Error() string {
	return fmt.Sprintf("Invalid build file %s: %s.", e.Path, e.Reason)
}
