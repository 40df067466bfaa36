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

func runAdd(args []string, endpoint string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	doc := fs.String("element", "", "Element document as inline YAML or JSON")
	docFile := fs.String("element-file", "", "File holding the element document")
	sourceFile := fs.String("source-file", "", "Local data file copied into the archive")
	partOf := fs.String("part-of", "", "Id of the parent element (the archive id links to the root)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: modos add [options] <archive_path>

Adds an element to a digital object. The element document carries the
"@type" of the element (Sample, Assay, DataEntity, ReferenceGenome, or
ReferenceSequence), its id, and the metadata slots of its class:

  "@type": Sample
  id: donor1
  name: Donor 1
  taxon_id: "NCBITaxon:9606"

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
	err = m.AddElement(ctx, element, archive.AddOptions{
		SourceFile: *sourceFile,
		PartOf:     *partOf,
	})
	if err != nil {
		fail("Couldn't add %s: %s", element.ElementID(), err)
	}
	fmt.Printf("Added %s to %s\n", element.ElementID(), m.ID())
}
