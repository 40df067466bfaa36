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

// Package main implements the modos CLI for creating, inspecting, and
// publishing multi-omics digital objects.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
)

// version information (set via ldflags during build)
var (
	version = "dev"
)

func main() {
	// global flags
	var (
		endpoint = flag.String("endpoint", os.Getenv("MODOS_ENDPOINT"),
			"URL of a MODOS catalog service for remote archives")
		debug       = flag.Bool("debug", false, "Enable debug logging")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `modos - multi-omics digital object tools

A digital object is an archive of omics data files carrying validated,
hierarchical metadata. This tool creates and edits such archives on the
local filesystem or an object store, and talks to MODOS catalog
deployments.

Usage:
  modos [global options] <command> [options]

Commands:
  create        Create an archive, empty or from a build file
  add           Add an element to an archive
  update        Update an element's metadata or data file
  remove        Remove an element from an archive
  delete        Delete a whole archive (destructive!)
  show          Print an archive's metadata, hierarchy, or file list
  publish       Export an archive's metadata as RDF or a manifest
  enrich        Derive metadata from an archive's data files
  stream        Stream a genomic file, optionally sliced to a region
  list          List the archives of a catalog service
  search-codes  Look up terminology codes for a metadata slot

Global Options:
  --endpoint    URL of a MODOS catalog service (default: $MODOS_ENDPOINT)
  --debug       Enable debug logging
  --no-color    Disable colored output
  --version     Show version and exit

Examples:
  modos create --name "Liver cohort" ./cohort-liver
  modos add --element-file donor.yaml --source-file donor.cram ./cohort-liver
  modos show --zarr ./cohort-liver
  modos publish --output-format turtle ./cohort-liver
  modos stream --region chr1:1000-2000 ./cohort-liver demo1.cram
  modos --endpoint http://modos.example.org list

Archive paths may be local directories, s3://bucket/prefix locations, or
bucket/prefix paths on the object store of the --endpoint deployment.

For detailed command help: modos <command> --help

`)
	}

	flag.Parse()

	if *noColor {
		color.NoColor = true
	}
	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: level})))

	if *showVersion {
		fmt.Printf("modos version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "create":
		runCreate(cmdArgs, *endpoint)
	case "add":
		runAdd(cmdArgs, *endpoint)
	case "update":
		runUpdate(cmdArgs, *endpoint)
	case "remove":
		runRemove(cmdArgs, *endpoint)
	case "delete":
		runDelete(cmdArgs, *endpoint)
	case "show":
		runShow(cmdArgs, *endpoint)
	case "publish":
		runPublish(cmdArgs, *endpoint)
	case "enrich":
		runEnrich(cmdArgs, *endpoint)
	case "stream":
		runStream(cmdArgs, *endpoint)
	case "list":
		runList(cmdArgs, *endpoint)
	case "search-codes":
		runSearchCodes(cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
