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

package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deliveryhero/pipeline/v2"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// number of archives whose metadata is fetched at once
const metadataFetchers = 4

// a catalog holds the archive listing of a source, refreshing it on demand
// once it goes stale
type catalog struct {
	source Source
	ttl    time.Duration

	mutex    sync.Mutex
	archives []string
	fetched  time.Time
}

func newCatalog(source Source, ttl time.Duration) *catalog {
	return &catalog{
		source: source,
		ttl:    ttl,
	}
}

// Archives returns the sorted paths of the served archives, refreshing the
// listing from the source when the cached one has expired.
func (c *catalog) Archives(ctx context.Context) ([]string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.archives != nil && time.Since(c.fetched) < c.ttl {
		return c.archives, nil
	}

	started := time.Now()
	archives, err := c.source.List(ctx)
	if err != nil {
		return nil, err
	}
	if archives == nil {
		archives = make([]string, 0)
	}
	sort.Strings(archives)
	c.archives = archives
	c.fetched = time.Now()
	observeRefresh(time.Since(started), len(archives))
	return c.archives, nil
}

// an archive path paired with its metadata snapshot
type archiveEntry struct {
	path     string
	snapshot map[string]map[string]any
}

// Metadata gathers the consolidated metadata of every served archive and
// merges it into a single set of attribute documents. Archives whose
// metadata cannot be read are skipped.
func (c *catalog) Metadata(ctx context.Context) (map[string]map[string]any, error) {
	archives, err := c.Archives(ctx)
	if err != nil {
		return nil, err
	}

	fetch := pipeline.NewProcessor(
		func(ctx context.Context, archivePath string) (archiveEntry, error) {
			snapshot, err := c.source.Metadata(ctx, archivePath)
			return archiveEntry{path: archivePath, snapshot: snapshot}, err
		},
		func(archivePath string, err error) {
			slog.Warn(fmt.Sprintf("Could not read metadata for %s: %s",
				archivePath, err.Error()))
		})
	results := pipeline.ProcessConcurrently(ctx, metadataFetchers, fetch,
		pipeline.Emit(archives...))

	snapshots := make(map[string]map[string]map[string]any)
	for entry := range results {
		snapshots[entry.path] = entry.snapshot
	}

	// merge in listing order, so collisions resolve deterministically
	merged := make(map[string]map[string]any)
	for _, archivePath := range archives {
		for key, attrs := range snapshots[archivePath] {
			merged[key] = attrs
		}
	}
	return merged, nil
}

// Search returns the paths of the archives whose names match the query,
// exactly or by fuzzy similarity, best match first.
func (c *catalog) Search(ctx context.Context, query string, exactMatch bool) ([]string, error) {
	archives, err := c.Archives(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]string, 0)
	if exactMatch {
		for _, archivePath := range archives {
			if query == archiveName(archivePath) || query == archivePath {
				matches = append(matches, archivePath)
			}
		}
		return matches, nil
	}

	names := make([]string, len(archives))
	for i, archivePath := range archives {
		names[i] = archiveName(archivePath)
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)
	for _, rank := range ranks {
		// the similarity 1 - distance/(query length + name length) must
		// clear 0.7 for a match to count
		if 10*rank.Distance < 3*(len(query)+len(rank.Target)) {
			matches = append(matches, archives[rank.OriginalIndex])
		}
	}
	return matches, nil
}

// archiveName strips the bucket prefix from a scoped archive path.
func archiveName(archivePath string) string {
	if _, name, found := strings.Cut(archivePath, "/"); found {
		return name
	}
	return archivePath
}
