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

// Package metabolomics reads the metadata section of mzTab-M documents
// and turns the declared samples and assay into model elements.
package metabolomics

import (
	"bufio"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/modos-dev/modos/model"
)

// sampleKey matches MTD keys like "sample[1]" and "sample[1]-species[1]".
var sampleKey = regexp.MustCompile(`^sample\[(\d+)\](?:-([a-z_]+)(?:\[\d+\])?)?$`)

// ExtractMetadata reads the MTD section of an mzTab-M document and
// returns the samples it declares followed by the assay, wired to the
// data element identified by dataID. Sample species, tissue, and cell
// type CV parameters are reduced to plain values.
func ExtractMetadata(r io.Reader, dataID string) ([]model.Element, error) {
	var version, id, title, description, processing string
	samples := map[int]*model.Sample{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "COM") {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		if fields[0] != "MTD" {
			break // metadata section is over
		}
		if len(fields) < 3 {
			continue
		}
		key, value := fields[1], strings.TrimSpace(fields[2])
		switch {
		case key == "mzTab-version":
			version = value
		case key == "mzTab-ID":
			id = value
		case key == "title":
			title = value
		case key == "description":
			description = value
		case strings.HasPrefix(key, "sample_processing"):
			if processing == "" {
				processing = paramLabel(value)
			}
		default:
			match := sampleKey.FindStringSubmatch(key)
			if match == nil {
				continue
			}
			index, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			sample, ok := samples[index]
			if !ok {
				sample = &model.Sample{}
				samples[index] = sample
			}
			switch match[2] {
			case "":
				sample.ID = value
				sample.Name = value
			case "description":
				sample.Description = value
			case "species":
				if sample.TaxonID == "" {
					sample.TaxonID = taxonCode(value)
				}
			case "tissue":
				if sample.SourceMaterial == "" {
					sample.SourceMaterial = paramLabel(value)
				}
			case "cell_type":
				if sample.CellType == "" {
					sample.CellType = paramLabel(value)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, InvalidMzTabError{Reason: err.Error()}
	}
	if id == "" {
		return nil, InvalidMzTabError{Reason: "missing mzTab-ID"}
	}

	indices := make([]int, 0, len(samples))
	for index := range samples {
		indices = append(indices, index)
	}
	sort.Ints(indices)

	assay := &model.Assay{
		OmicsType:        model.OmicsProteomics,
		SampleProcessing: processing,
		HasData:          []string{dataID},
	}
	assay.ID = id
	assay.Name = title
	assay.Description = description
	if strings.Contains(version, "-M") {
		assay.OmicsType = model.OmicsMetabolomics
	}

	var elements []model.Element
	for _, index := range indices {
		sample := samples[index]
		if sample.ID == "" {
			continue // never named in the MTD section
		}
		assay.HasSample = append(assay.HasSample, sample.ID)
		elements = append(elements, sample)
	}
	return append(elements, assay), nil
}

// parseParam splits an mzTab CV parameter "[cv, accession, name, value]"
// into its fields.
func parseParam(value string) ([]string, bool) {
	if !strings.HasPrefix(value, "[") || !strings.HasSuffix(value, "]") {
		return nil, false
	}
	parts := strings.Split(value[1:len(value)-1], ",")
	if len(parts) < 3 {
		return nil, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, true
}

// paramLabel reduces a CV parameter to its human readable name, leaving
// plain values untouched.
func paramLabel(value string) string {
	if parts, ok := parseParam(value); ok && parts[2] != "" {
		return parts[2]
	}
	return value
}

// taxonCode reduces a species CV parameter to the bare taxon code, so
// "[NCBITaxon, NCBITaxon:9606, Homo sapiens, ]" becomes "9606".
func taxonCode(value string) string {
	parts, ok := parseParam(value)
	if !ok {
		return value
	}
	accession := parts[1]
	if i := strings.LastIndex(accession, ":"); i >= 0 {
		return accession[i+1:]
	}
	if accession == "" && parts[2] != "" {
		return parts[2]
	}
	return accession
}
