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
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/modos-dev/modos/archive"
	"github.com/modos-dev/modos/model"
	"github.com/modos-dev/modos/remote"
	"github.com/modos-dev/modos/schema"
)

var errorColor = color.New(color.FgRed)

// fail prints an error message in red and exits with a nonzero status.
func fail(format string, args ...any) {
	errorColor.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// archiveOptions builds open options routing the archive through a
// catalog service when an endpoint is configured.
func archiveOptions(endpoint string) archive.Options {
	var opts archive.Options
	if endpoint != "" {
		opts.Endpoint = remote.NewEndpointManager(endpoint)
	}
	return opts
}

// openArchive opens the archive at the given path or exits.
func openArchive(ctx context.Context, archivePath, endpoint string) *archive.MODO {
	m, err := archive.Open(ctx, archivePath, archiveOptions(endpoint))
	if err != nil {
		fail("Couldn't open archive %s: %s", archivePath, err)
	}
	return m
}

// readElement parses an element document given inline as YAML/JSON or as
// a file. The document must carry "@type" and "id" fields next to the
// slots of its class.
func readElement(doc, file string) (model.Element, error) {
	if (doc == "") == (file == "") {
		return nil, fmt.Errorf("Exactly one of --element and --element-file must be given.")
	}
	raw := []byte(doc)
	if file != "" {
		var err error
		raw, err = os.ReadFile(file)
		if err != nil {
			return nil, err
		}
	}
	var attrs map[string]any
	if err := yaml.Unmarshal(raw, &attrs); err != nil {
		return nil, fmt.Errorf("Couldn't parse the element document: %s", err)
	}
	class, _ := attrs["@type"].(string)
	if class == "" {
		return nil, fmt.Errorf("The element document has no @type field.")
	}
	id, _ := attrs["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("The element document has no id field.")
	}
	element, err := schema.FromAttrs(class, attrs)
	if err != nil {
		return nil, err
	}
	element.SetElementID(id)
	return element, nil
}

// confirm prompts for a yes/no answer on stdin, defaulting to no.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// outputWriter opens the given file for writing, or hands back stdout
// when no file was asked for.
func outputWriter(file string) (*os.File, error) {
	if file == "" {
		return os.Stdout, nil
	}
	return os.Create(file)
}
