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

func runCreate(args []string, endpoint string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	id := fs.String("id", "", "Archive identifier (default: the last path segment)")
	name := fs.String("name", "", "Human-readable archive name")
	description := fs.String("description", "", "Archive description")
	fromFile := fs.String("from-file", "", "Build the archive from a declarative YAML document")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: modos create [options] <archive_path>

Creates a digital object at the given path. With --from-file, the
archive and its elements are built from a declarative YAML document;
otherwise an empty archive is created with the given metadata.

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
	opts := archiveOptions(endpoint)
	opts.ID = *id
	opts.Name = *name
	opts.Description = *description

	var m *archive.MODO
	var err error
	if *fromFile != "" {
		m, err = archive.FromFile(ctx, *fromFile, archivePath, opts)
	} else {
		m, err = archive.Open(ctx, archivePath, opts)
	}
	if err != nil {
		fail("Couldn't create archive %s: %s", archivePath, err)
	}
	fmt.Printf("Created archive %s at %s\n", m.ID(), archivePath)
}
