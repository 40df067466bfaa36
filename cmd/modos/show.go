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
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

func runShow(args []string, endpoint string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	zarr := fs.Bool("zarr", false, "Print the archive's group hierarchy instead of metadata")
	files := fs.Bool("files", false, "Print the archive's data files instead of metadata")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: modos show [options] <archive_path>

Prints a digital object's metadata as YAML. With --zarr the group
hierarchy is drawn as a tree, with --files the data files are listed.

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

	if *files {
		list, err := m.ListFiles(ctx)
		if err != nil {
			fail("Couldn't list the files of %s: %s", m.ID(), err)
		}
		for _, file := range list {
			fmt.Println(file)
		}
		return
	}

	meta, err := m.Metadata(ctx)
	if err != nil {
		fail("Couldn't read the metadata of %s: %s", m.ID(), err)
	}
	if *zarr {
		fmt.Print(hierarchyTree(m.ID(), meta))
		return
	}
	out, err := yaml.Marshal(meta)
	if err != nil {
		fail("Couldn't render the metadata of %s: %s", m.ID(), err)
	}
	os.Stdout.Write(out)
}

// hierarchyTree draws the archive's element groups the way zarr draws a
// store hierarchy.
func hierarchyTree(rootID string, meta map[string]map[string]any) string {
	groups := make(map[string][]string)
	for key := range meta {
		if key == rootID {
			continue
		}
		group, name, found := strings.Cut(key, "/")
		if !found {
			continue
		}
		groups[group] = append(groups[group], name)
	}
	order := make([]string, 0, len(groups))
	for group := range groups {
		order = append(order, group)
	}
	sort.Strings(order)

	var tree strings.Builder
	tree.WriteString(rootID + "\n")
	for i, group := range order {
		branch, indent := "├── ", "│   "
		if i == len(order)-1 {
			branch, indent = "└── ", "    "
		}
		tree.WriteString(branch + group + "\n")
		members := groups[group]
		sort.Strings(members)
		for j, name := range members {
			leaf := "├── "
			if j == len(members)-1 {
				leaf = "└── "
			}
			tree.WriteString(indent + leaf + name + "\n")
		}
	}
	return tree.String()
}
