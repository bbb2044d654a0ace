package resolver

import (
	"context"
	"errors"
	"testing"

	"mp3catalog/internal/cache"
	"mp3catalog/internal/logger"
	"mp3catalog/internal/metadata"
	"mp3catalog/internal/provider"
)

// fakeProvider counts its lookups and returns a canned outcome.
type fakeProvider struct {
	name  string
	rec   *metadata.Record
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Lookup(ctx context.Context, query metadata.Query) (*metadata.Record, error) {
	f.calls++
	return f.rec, f.err
}

func newTestResolver(c *cache.Cache, enabled bool, providers ...provider.Provider) *Resolver {
	return New(providers, c, logger.New(false), enabled)
}

func TestResolve_Disabled(t *testing.T) {
	p := &fakeProvider{name: "a", rec: &metadata.Record{Title: "x"}}
	r := newTestResolver(cache.New("/music"), false, p)

	if rec := r.Resolve(context.Background(), metadata.Query{Artist: "A", Title: "T"}); rec != nil {
		t.Errorf("expected nil when lookups disabled, got %+v", rec)
	}
	if p.calls != 0 {
		t.Errorf("provider called %d times, want 0", p.calls)
	}
}

func TestResolve_ThinQuery(t *testing.T) {
	p := &fakeProvider{name: "a", rec: &metadata.Record{Title: "x"}}
	r := newTestResolver(cache.New("/music"), true, p)

	if rec := r.Resolve(context.Background(), metadata.Query{Title: "only title"}); rec != nil {
		t.Errorf("expected nil for query without artist, got %+v", rec)
	}
	if p.calls != 0 {
		t.Errorf("provider called %d times, want 0", p.calls)
	}
}

func TestResolve_FirstProviderWins(t *testing.T) {
	first := &fakeProvider{name: "first", rec: &metadata.Record{Title: "T", Genre: "salsa"}}
	second := &fakeProvider{name: "second", rec: &metadata.Record{Title: "T", Genre: "rock"}}
	r := newTestResolver(cache.New("/music"), true, first, second)

	rec := r.Resolve(context.Background(), metadata.Query{Artist: "A", Title: "T"})
	if rec == nil || rec.Genre != "salsa" {
		t.Fatalf("rec = %+v, want genre salsa from first provider", rec)
	}
	if second.calls != 0 {
		t.Errorf("second provider called %d times, want 0", second.calls)
	}
}

func TestResolve_FallsThroughEmptyProvider(t *testing.T) {
	first := &fakeProvider{name: "first"} // (nil, nil): found nothing
	second := &fakeProvider{name: "second", rec: &metadata.Record{Title: "T", Genre: "rock"}}
	r := newTestResolver(cache.New("/music"), true, first, second)

	rec := r.Resolve(context.Background(), metadata.Query{Artist: "A", Title: "T"})
	if rec == nil || rec.Genre != "rock" {
		t.Fatalf("rec = %+v, want genre rock from second provider", rec)
	}
}

func TestResolve_CachesPositive(t *testing.T) {
	p := &fakeProvider{name: "p", rec: &metadata.Record{Title: "T", Genre: "jazz"}}
	c := cache.New("/music")
	r := newTestResolver(c, true, p)

	q := metadata.Query{Artist: "A", Title: "T"}
	r.Resolve(context.Background(), q)
	rec := r.Resolve(context.Background(), q)

	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1 (second resolve from cache)", p.calls)
	}
	if rec == nil || rec.Genre != "jazz" {
		t.Errorf("cached rec = %+v, want genre jazz", rec)
	}
	if c.Hits() == 0 {
		t.Error("expected cache hits to be counted")
	}
}

func TestResolve_CachesNegative(t *testing.T) {
	p := &fakeProvider{name: "p"} // always finds nothing
	r := newTestResolver(cache.New("/music"), true, p)

	q := metadata.Query{Artist: "A", Title: "T"}
	r.Resolve(context.Background(), q)
	r.Resolve(context.Background(), q)

	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1 (negative result memoized)", p.calls)
	}
}

func TestResolve_ErrorMemoizedNotPropagated(t *testing.T) {
	failing := &fakeProvider{name: "failing", err: errors.New("boom")}
	backup := &fakeProvider{name: "backup", rec: &metadata.Record{Title: "T", Genre: "pop"}}
	r := newTestResolver(cache.New("/music"), true, failing, backup)

	q := metadata.Query{Artist: "A", Title: "T"}
	rec := r.Resolve(context.Background(), q)
	if rec == nil || rec.Genre != "pop" {
		t.Fatalf("rec = %+v, want backup record despite first provider error", rec)
	}

	r.Resolve(context.Background(), q)
	if failing.calls != 1 {
		t.Errorf("failing provider called %d times, want 1 (failure memoized)", failing.calls)
	}
}

func TestResolve_ReturnsClone(t *testing.T) {
	p := &fakeProvider{name: "p", rec: &metadata.Record{Title: "T", Genre: "jazz"}}
	r := newTestResolver(cache.New("/music"), true, p)

	q := metadata.Query{Artist: "A", Title: "T"}
	r.Resolve(context.Background(), q)

	first := r.Resolve(context.Background(), q)
	first.Genre = "mutated"

	second := r.Resolve(context.Background(), q)
	if second.Genre != "jazz" {
		t.Errorf("cache entry mutated through returned record: Genre = %q", second.Genre)
	}
}
