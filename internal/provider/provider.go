// Package provider defines the capability interface for external music
// metadata databases.
package provider

import (
	"context"

	"mp3catalog/internal/metadata"
)

// Provider is an external metadata source queried in a fixed fallback
// order. A (nil, nil) return means "looked up, found nothing" and is a
// first-class outcome, not an error.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, query metadata.Query) (*metadata.Record, error)
}
