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

// The genomics package handles genomic file formats, regions, and the
// htsget protocol used to stream slices of remotely stored files.
package genomics

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Unbound marks an unset region coordinate.
const Unbound int64 = -1

// A Region is a genomic interval on a chromosome, 0-based half-open.
// Either coordinate may be Unbound, meaning the interval extends to the
// chromosome boundary on that side.
type Region struct {
	Chrom string
	Start int64
	End   int64
}

// matches UCSC region strings like "chr1", "chr1:10-300", "chr1:10-",
// and "chr1:-300"
var ucscRegex = regexp.MustCompile(`^([^:]+)(?::(\d*)-(\d*))?$`)

// ParseRegion parses a UCSC-style region string. A bare chromosome leaves
// both coordinates unbound; an empty start means 0 and an empty end leaves
// the end unbound.
func ParseRegion(ucsc string) (*Region, error) {
	match := ucscRegex.FindStringSubmatch(strings.TrimSpace(ucsc))
	if match == nil || match[1] == "" {
		return nil, InvalidRegionError{Region: ucsc}
	}
	region := Region{Chrom: match[1], Start: Unbound, End: Unbound}
	if strings.Contains(ucsc, ":") {
		if match[2] == "" && match[3] == "" {
			return nil, InvalidRegionError{Region: ucsc}
		}
		region.Start = 0
		if match[2] != "" {
			start, err := strconv.ParseInt(match[2], 10, 64)
			if err != nil {
				return nil, InvalidRegionError{Region: ucsc}
			}
			region.Start = start
		}
		if match[3] != "" {
			end, err := strconv.ParseInt(match[3], 10, 64)
			if err != nil {
				return nil, InvalidRegionError{Region: ucsc}
			}
			region.End = end
		}
	}
	if region.End != Unbound && region.Start > region.End {
		return nil, InvalidRegionError{Region: ucsc}
	}
	return &region, nil
}

// String renders the region as a UCSC region string, omitting unbound
// coordinates.
func (r *Region) String() string {
	switch {
	case r.Start == Unbound && r.End == Unbound:
		return r.Chrom
	case r.End == Unbound:
		return fmt.Sprintf("%s:%d-", r.Chrom, r.Start)
	case r.Start <= 0:
		return fmt.Sprintf("%s:-%d", r.Chrom, r.End)
	default:
		return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
	}
}

// HtsgetQuery renders the region as htsget ticket query parameters,
// omitting unbound coordinates.
func (r *Region) HtsgetQuery() url.Values {
	query := url.Values{}
	query.Set("referenceName", r.Chrom)
	if r.Start != Unbound {
		query.Set("start", strconv.FormatInt(r.Start, 10))
	}
	if r.End != Unbound {
		query.Set("end", strconv.FormatInt(r.End, 10))
	}
	return query
}

// RegionFromQuery recovers a region from htsget query parameters. Queries
// without a referenceName have no region, which is not an error.
func RegionFromQuery(query url.Values) (*Region, error) {
	chrom := query.Get("referenceName")
	if chrom == "" {
		return nil, nil
	}
	region := Region{Chrom: chrom, Start: Unbound, End: Unbound}
	if raw := query.Get("start"); raw != "" {
		start, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, InvalidRegionError{Region: raw}
		}
		region.Start = start
	}
	if raw := query.Get("end"); raw != "" {
		end, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, InvalidRegionError{Region: raw}
		}
		region.End = end
	}
	return &region, nil
}

// effective bounds with unbound coordinates widened to the chromosome
func (r *Region) bounds() (int64, int64) {
	start, end := r.Start, r.End
	if start == Unbound {
		start = 0
	}
	if end == Unbound {
		end = int64(1)<<62 - 1
	}
	return start, end
}

// Overlaps reports whether two regions share at least one position.
func (r *Region) Overlaps(other *Region) bool {
	if other == nil || r.Chrom != other.Chrom {
		return false
	}
	start, end := r.bounds()
	otherStart, otherEnd := other.bounds()
	return start < otherEnd && otherStart < end
}

// Contains reports whether the other region lies entirely within this one.
func (r *Region) Contains(other *Region) bool {
	if other == nil || r.Chrom != other.Chrom {
		return false
	}
	start, end := r.bounds()
	otherStart, otherEnd := other.bounds()
	return start <= otherStart && otherEnd <= end
}

// OverlapsInterval reports whether the region overlaps a concrete
// 0-based half-open interval on a chromosome, as carried by alignment and
// variant records.
func (r *Region) OverlapsInterval(chrom string, start, end int64) bool {
	return r.Overlaps(&Region{Chrom: chrom, Start: start, End: end})
}
