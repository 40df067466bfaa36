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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/modos-dev/modos/archive"
)

func runUpdate(args []string, endpoint string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	doc := fs.String("element", "", "Element document as inline YAML or JSON")
	docFile := fs.String("element-file", "", "File holding the element document")
	sourceFile := fs.String("source-file", "", "Local file replacing the element's data file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: modos update [options] <archive_path>

Updates an element of a digital object. The merge is additive: slots
that are empty in the stored metadata adopt the document's values, and
populated slots are kept. A changed data_path moves the stored file,
and --source-file replaces its content when the checksum differs. The
element is addressed by the document's id field.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	archivePath := fs.Arg(0)

	element, err := readElement(*doc, *docFile)
	if err != nil {
		fail("%s", err)
	}

	ctx := context.Background()
	m := openArchive(ctx, archivePath, endpoint)
	err = m.UpdateElement(ctx, element, archive.UpdateOptions{
		SourceFile: *sourceFile,
	})
	if err != nil {
		fail("Couldn't update %s: %s", element.ElementID(), err)
	}
	fmt.Printf("Updated %s in %s\n", element.ElementID(), m.ID())
}
