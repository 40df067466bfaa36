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
	"io"
	"os"

	"github.com/modos-dev/modos/genomics"
)

func runStream(args []string, endpoint string) {
	fs := flag.NewFlagSet("stream", flag.ExitOnError)
	region := fs.String("region", "", "Genomic region to slice, as chrom[:start-end]")
	output := fs.String("output", "", "File to write to (default: stdout)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: modos stream [options] <archive_path> <file_path>

Streams a genomic file out of a digital object. Remote archives stream
through the deployment's htsget service, which can slice the file to a
region; local archives filter client-side, which supports regions for
BAM and VCF files only.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 2 {
		fs.Usage()
		os.Exit(1)
	}
	archivePath := fs.Arg(0)
	filePath := fs.Arg(1)

	var genomicRegion *genomics.Region
	if *region != "" {
		var err error
		genomicRegion, err = genomics.ParseRegion(*region)
		if err != nil {
			fail("%s", err)
		}
	}

	ctx := context.Background()
	m := openArchive(ctx, archivePath, endpoint)
	reader, err := m.StreamGenomics(ctx, filePath, genomicRegion)
	if err != nil {
		fail("Couldn't stream %s: %s", filePath, err)
	}
	defer reader.Close()

	w, err := outputWriter(*output)
	if err != nil {
		fail("Couldn't open %s: %s", *output, err)
	}
	if *output != "" {
		defer w.Close()
	}
	if _, err := io.Copy(w, reader); err != nil {
		fail("Couldn't stream %s: %s", filePath, err)
	}
}
