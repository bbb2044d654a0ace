// Package resolver coordinates external metadata lookups across providers
// and the durable cache.
package resolver

import (
	"context"

	"mp3catalog/internal/cache"
	"mp3catalog/internal/logger"
	"mp3catalog/internal/metadata"
	"mp3catalog/internal/provider"
)

// Resolver tries each provider in order until one returns a usable record,
// memoizing every outcome in the cache. Provider failures are logged and
// memoized as negative so a flaky provider cannot stall a large run, but
// they never abort the file being processed.
type Resolver struct {
	providers []provider.Provider
	cache     *cache.Cache
	log       *logger.Logger
	enabled   bool
}

// New creates a Resolver. providers are consulted in slice order.
func New(providers []provider.Provider, c *cache.Cache, log *logger.Logger, enabled bool) *Resolver {
	return &Resolver{
		providers: providers,
		cache:     c,
		log:       log,
		enabled:   enabled,
	}
}

// Resolve returns the first record any provider produces for the query, or
// nil when lookups are disabled, the query is too thin to search, or every
// provider came up empty.
func (r *Resolver) Resolve(ctx context.Context, query metadata.Query) *metadata.Record {
	if !r.enabled {
		return nil
	}
	if query.Artist == "" || query.Title == "" {
		return nil
	}

	for _, p := range r.providers {
		key := cache.Key(p.Name(), query.Artist, query.Title, query.Album)

		if rec, ok := r.cache.Lookup(key); ok {
			if rec == nil {
				r.log.Debug("cache: negative entry for %s (%s - %s)", p.Name(), query.Artist, query.Title)
				continue
			}
			r.log.Debug("cache: hit for %s (%s - %s)", p.Name(), query.Artist, query.Title)
			clone := rec.Clone()
			return &clone
		}

		rec, err := p.Lookup(ctx, query)
		if err != nil {
			r.log.Warn("%s lookup failed for %s - %s: %v", p.Name(), query.Artist, query.Title, err)
			if ctx.Err() != nil {
				return nil
			}
			r.cache.Store(key, nil)
			continue
		}
		r.cache.Store(key, rec)

		if rec != nil {
			r.log.Debug("%s resolved %s - %s (genre %q)", p.Name(), query.Artist, query.Title, rec.Genre)
			return rec
		}
	}
	return nil
}
