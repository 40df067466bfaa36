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

package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/modos-dev/modos/genomics"
	"github.com/modos-dev/modos/metabolomics"
	"github.com/modos-dev/modos/model"
	"github.com/modos-dev/modos/schema"
)

// EnrichMetadata extracts metadata from the archive's data files and folds
// it back into the store: alignment headers become reference sequences,
// and mzTab-M metadata sections become samples and assays. Extracted
// elements whose name matches an existing element are merged into it;
// the rest are added. Formats without an extractor are skipped, so the
// operation is safe to run on any archive.
func (m *MODO) EnrichMetadata(ctx context.Context) error {
	return m.journaled(ctx, "enrich", "", func() error {
		return m.enrichMetadata(ctx)
	})
}

func (m *MODO) enrichMetadata(ctx context.Context) error {
	snapshot, err := m.Metadata(ctx)
	if err != nil {
		return err
	}

	// existing elements by human name, for merging repeated extractions
	names := make(map[string]string)
	var dataKeys []string
	for key, attrs := range snapshot {
		if key == m.id {
			continue
		}
		if name, ok := attrs["name"].(string); ok && name != "" {
			names[name] = key
		}
		if class, _ := attrs["@type"].(string); class == "DataEntity" {
			dataKeys = append(dataKeys, key)
		}
	}
	sort.Strings(dataKeys)

	for _, key := range dataKeys {
		elements, err := m.extract(ctx, key, snapshot[key])
		if err != nil {
			return err
		}
		if err := m.fold(ctx, elements, names); err != nil {
			return err
		}
	}
	return nil
}

// extract runs the format-specific extractor for one data element.
// Formats without an extractor yield nothing.
func (m *MODO) extract(ctx context.Context, id string, attrs map[string]any) ([]model.Element, error) {
	formatName, _ := attrs["data_format"].(string)
	dataPath, _ := attrs["data_path"].(string)
	if formatName == "" || dataPath == "" {
		return nil, nil
	}
	format, err := genomics.FormatFromName(formatName)
	if err != nil {
		return nil, nil
	}

	switch format {
	case genomics.CRAM, genomics.BAM, genomics.SAM:
		source, err := m.backend.Open(ctx, dataPath)
		if err != nil {
			return nil, err
		}
		defer source.Close()
		sequences, err := genomics.References(source, format)
		if err != nil {
			return nil, err
		}
		elements := make([]model.Element, 0, len(sequences))
		for _, sequence := range sequences {
			elements = append(elements, sequence)
		}
		return elements, nil
	case genomics.MzTab:
		source, err := m.backend.Open(ctx, dataPath)
		if err != nil {
			return nil, err
		}
		defer source.Close()
		return metabolomics.ExtractMetadata(source, id)
	}
	return nil, nil
}

// fold merges extracted elements into the archive. Elements whose name
// matches a stored one update it in place; new names are added once per
// extraction batch, and ids that are already taken are skipped.
func (m *MODO) fold(ctx context.Context, elements []model.Element, names map[string]string) error {
	batch := make(map[string]bool)
	for _, element := range elements {
		name := element.ElementName()
		if name != "" {
			if existing, ok := names[name]; ok {
				element.SetElementID(existing)
				if err := m.updateElement(ctx, element, UpdateOptions{}); err != nil {
					return err
				}
				continue
			}
			if batch[name] {
				continue
			}
			batch[name] = true
		}
		if err := m.addElement(ctx, element, AddOptions{}); err != nil {
			var duplicate DuplicateIdError
			if errors.As(err, &duplicate) {
				slog.Debug(fmt.Sprintf("Extracted element %s already exists, skipping", element.ElementID()))
				continue
			}
			return err
		}
		if name != "" {
			if kind, kerr := schema.TypeOf(element); kerr == nil {
				_, bare := schema.SplitID(element.ElementID())
				names[name] = schema.FullID(kind, bare)
			}
		}
	}
	return nil
}
