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
)

func runRemove(args []string, endpoint string) {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	force := fs.Bool("force", false, "Remove without asking for confirmation")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: modos remove [options] <archive_path> <element_id>

Removes an element from a digital object, along with its data file and
any references other elements hold to it.

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
	elementID := fs.Arg(1)

	ctx := context.Background()
	m := openArchive(ctx, archivePath, endpoint)
	if !*force && !confirm(fmt.Sprintf("Remove element %s from %s?", elementID, m.ID())) {
		fmt.Println("Aborted.")
		os.Exit(1)
	}
	if err := m.RemoveElement(ctx, elementID); err != nil {
		fail("Couldn't remove %s: %s", elementID, err)
	}
	fmt.Printf("Removed %s from %s\n", elementID, m.ID())
}
