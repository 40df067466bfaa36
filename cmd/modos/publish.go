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
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/modos-dev/modos/rdf"
)

func runPublish(args []string, endpoint string) {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	format := fs.String("output-format", "turtle", "RDF serialization: turtle, jsonld, or ntriples")
	manifest := fs.Bool("manifest", false, "Export a Frictionless data package manifest instead of RDF")
	output := fs.String("output", "", "File to write to (default: stdout)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: modos publish [options] <archive_path>

Exports a digital object's metadata for use outside the archive: as an
RDF graph whose subjects resolve under the archive's storage location,
or as a Frictionless data package manifest describing its files.

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

	ctx := context.Background()
	m := openArchive(ctx, archivePath, endpoint)

	w, err := outputWriter(*output)
	if err != nil {
		fail("Couldn't open %s: %s", *output, err)
	}
	if *output != "" {
		defer w.Close()
	}

	if *manifest {
		pkg, err := m.Manifest(ctx)
		if err != nil {
			fail("Couldn't build the manifest of %s: %s", m.ID(), err)
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(pkg.Descriptor()); err != nil {
			fail("Couldn't write the manifest of %s: %s", m.ID(), err)
		}
		return
	}

	rdfFormat, err := rdf.ParseFormat(*format)
	if err != nil {
		fail("%s", err)
	}
	if err := m.Publish(ctx, rdfFormat, w); err != nil {
		fail("Couldn't publish %s: %s", m.ID(), err)
	}
}
