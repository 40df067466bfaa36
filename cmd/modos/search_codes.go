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

	"github.com/modos-dev/modos/codes"
)

func runSearchCodes(args []string) {
	fs := flag.NewFlagSet("search-codes", flag.ExitOnError)
	slot := fs.String("slot", "", "Coded metadata slot to search (required)")
	top := fs.Int("top", codes.DefaultTop, "Number of candidate codes to return")
	fuzon := fs.String("fuzon", os.Getenv("MODOS_FUZON_URL"),
		"URL of a fuzon terminology service")
	codesFile := fs.String("codes-file", "",
		"Tab-separated code list (label, uri) to match against instead of a service")

	fs.Usage = func() {
		slots := make([]string, 0, len(codes.SlotTerminologies))
		for name := range codes.SlotTerminologies {
			slots = append(slots, name)
		}
		sort.Strings(slots)
		fmt.Fprintf(os.Stderr, `Usage: modos search-codes [options] <query>

Looks up terminology codes matching a free-text query, for filling a
coded metadata slot. Candidates are ranked by a fuzon service or, with
--codes-file, against a local code list. Coded slots: %s.

Options:
`, strings.Join(slots, ", "))
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	query := fs.Arg(0)
	if *slot == "" {
		fail("No slot was given. Pass --slot.")
	}

	ctx := context.Background()
	var matcher codes.Matcher
	if *codesFile != "" {
		file, err := os.Open(*codesFile)
		if err != nil {
			fail("Couldn't open %s: %s", *codesFile, err)
		}
		defer file.Close()
		list, err := codes.LoadCodes(file)
		if err != nil {
			fail("Couldn't read %s: %s", *codesFile, err)
		}
		matcher = codes.NewLocalMatcher(list)
	} else {
		if *fuzon == "" {
			fail("No terminology service was given. Pass --fuzon, set MODOS_FUZON_URL, or use --codes-file.")
		}
		var err error
		matcher, err = codes.NewRemoteMatcher(*fuzon, *slot)
		if err != nil {
			fail("%s", err)
		}
	}

	matches, err := matcher.Top(ctx, query, *top)
	if err != nil {
		fail("Couldn't search codes for %s: %s", query, err)
	}
	for _, code := range matches {
		fmt.Printf("%s\t%s\n", code.Label, code.URI)
	}
}
