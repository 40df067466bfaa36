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

// This package contains testing utilities for the MODOS digital object
// tools.
package modostest

import (
	"context"
	"log/slog"
	"os"

	"github.com/modos-dev/modos/archive"
	"github.com/modos-dev/modos/model"
)

// Enables DEBUG log messages for MODOS's structured log (slog).
func EnableDebugLogging() {
	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelDebug)
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
}

// Creates a small but representative archive at the given path: a root
// object with the given id holding one sample and one assay performed on
// it. Element names are derived from the id, so archives built this way
// can share a metadata namespace without colliding.
func CreateArchive(ctx context.Context, path, id string) (*archive.MODO, error) {
	m, err := archive.Open(ctx, path, archive.Options{
		ID:          id,
		Name:        "Archive " + id,
		Description: "A digital object for testing.",
	})
	if err != nil {
		return nil, err
	}

	sample := &model.Sample{
		NamedThing: model.NamedThing{
			ID:          "sample/" + id + "-donor",
			Name:        "Donor for " + id,
			Description: "A human sample.",
		},
		CellType: "astrocyte",
		TaxonID:  "NCBITaxon:9606",
	}
	if err := m.AddElement(ctx, sample, archive.AddOptions{}); err != nil {
		return nil, err
	}

	assay := &model.Assay{
		NamedThing: model.NamedThing{
			ID:   "assay/" + id + "-assay",
			Name: "Assay for " + id,
		},
		OmicsType: model.OmicsGenomics,
		HasSample: []string{id + "-donor"},
	}
	if err := m.AddElement(ctx, assay, archive.AddOptions{}); err != nil {
		return nil, err
	}
	return m, nil
}
