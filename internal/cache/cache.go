// Package cache is the durable lookup store for the cataloging pipeline.
// It remembers external metadata lookups (including explicit "looked up,
// found nothing" markers) and genre normalizations across runs, trading
// staleness for API calls: metadata for a given artist/title is assumed
// not to change between runs.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"mp3catalog/internal/metadata"
)

// Cache is owned by a single pipeline instance and is not safe for
// concurrent use.
type Cache struct {
	// entries maps composite lookup keys to records. A present nil value
	// is the negative marker: the lookup ran and found nothing, so repeat
	// lookups short-circuit without network activity. An absent key means
	// "never looked up".
	entries map[string]*metadata.Record
	genres  map[string]string

	basePath string
	hits     int
	dirty    bool
}

// fileFormat is the on-disk JSON layout.
type fileFormat struct {
	MetadataCache map[string]*metadata.Record `json:"metadata_cache"`
	GenreCache    map[string]string           `json:"genre_cache"`
	LastUpdated   string                      `json:"last_updated"`
	BasePath      string                      `json:"base_path"`
}

// New creates an empty cache bound to the collection base path.
func New(basePath string) *Cache {
	return &Cache{
		entries:  make(map[string]*metadata.Record),
		genres:   make(map[string]string),
		basePath: basePath,
	}
}

// Key builds the composite metadata lookup key for a provider query.
// Artist, title and album are normalized so trivially different spellings
// share an entry; a missing album still contributes its separator.
func Key(provider, artist, title, album string) string {
	return provider + "_" + norm(artist) + "_" + norm(title) + "_" + norm(album)
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Lookup returns the cached record for key. ok reports whether the key was
// ever stored; a (nil, true) result is the negative marker.
func (c *Cache) Lookup(key string) (rec *metadata.Record, ok bool) {
	rec, ok = c.entries[key]
	if ok {
		c.hits++
	}
	return rec, ok
}

// Store records a lookup outcome. rec == nil stores the negative marker.
func (c *Cache) Store(key string, rec *metadata.Record) {
	if rec != nil {
		clone := rec.Clone()
		rec = &clone
	}
	c.entries[key] = rec
	c.dirty = true
}

// GenreMemo exposes the genre-normalization memo for sharing with the
// classifier. Mutations through the returned map are persisted on Save;
// callers that grow it should MarkDirty so the run flushes the cache.
func (c *Cache) GenreMemo() map[string]string {
	return c.genres
}

// MarkDirty flags the cache for saving at the end of the run.
func (c *Cache) MarkDirty() { c.dirty = true }

// Hits returns how many lookups were answered from the cache this run.
func (c *Cache) Hits() int { return c.hits }

// Len returns the number of stored metadata entries.
func (c *Cache) Len() int { return len(c.entries) }

// GenreLen returns the number of memoized genre normalizations.
func (c *Cache) GenreLen() int { return len(c.genres) }

// Dirty reports whether the cache changed since it was loaded.
func (c *Cache) Dirty() bool { return c.dirty }

// Reset drops all entries, both metadata and genre.
func (c *Cache) Reset() {
	c.entries = make(map[string]*metadata.Record)
	c.genres = make(map[string]string)
	c.dirty = true
}

// Load reads a previously saved cache file. A missing file is not an
// error; a corrupt one resets the cache and reports the parse failure.
// mismatch reports that the file was built for a different base path, so
// the caller can warn that results may be suboptimal.
func (c *Cache) Load(path string) (mismatch bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read cache file %s: %w", path, err)
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		c.Reset()
		c.dirty = false
		return false, fmt.Errorf("failed to parse cache file %s: %w", path, err)
	}

	if ff.MetadataCache != nil {
		c.entries = ff.MetadataCache
	}
	if ff.GenreCache != nil {
		c.genres = ff.GenreCache
	}
	c.dirty = false

	mismatch = ff.BasePath != "" && ff.BasePath != c.basePath
	return mismatch, nil
}

// Save writes the cache to disk, overwriting any previous file.
func (c *Cache) Save(path string) error {
	ff := fileFormat{
		MetadataCache: c.entries,
		GenreCache:    c.genres,
		LastUpdated:   time.Now().Format(time.RFC3339),
		BasePath:      c.basePath,
	}

	data, err := json.MarshalIndent(ff, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file %s: %w", path, err)
	}
	c.dirty = false
	return nil
}

// PurgeIfOlderThan removes the cache file when it has not been updated for
// longer than maxAge. Entries are never invalidated by content, only by
// this age policy or an explicit Reset.
func PurgeIfOlderThan(path string, maxAge time.Duration) (removed bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if time.Since(info.ModTime()) <= maxAge {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("failed to remove stale cache %s: %w", path, err)
	}
	return true, nil
}
