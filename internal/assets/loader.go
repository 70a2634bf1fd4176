package assets

import (
	"context"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	logger = loggo.GetLogger("sprites.assets")
	tracer = otel.Tracer("sprite-assets/internal/assets")
)

// Config holds the collaborators of a Loader.
type Config struct {
	Backend Backend
	// Clock times backend fetches. Defaults to the wall clock.
	Clock clock.Clock
}

// Validate checks the config is usable.
func (c Config) Validate() error {
	if c.Backend == nil {
		return errors.NotValidf("nil Backend")
	}
	return nil
}

// Stats counts what the loader has done since it was created.
type Stats struct {
	// Backend fetches started, assets and bundles.
	Fetches int64
	// Loads answered from the backend store.
	CacheHits int64
	// Callers that attached to an in-flight load.
	Joins int64
	// Loads that settled with an error.
	Failures int64
	// Total time spent in settled fetches.
	FetchTime time.Duration
}

// Loader is the single authority for whether an asset or bundle is
// loaded, loading, or absent, and the only code path that starts a fetch.
//
// Create one per process with New and pass it to whatever needs assets.
type Loader struct {
	backend Backend
	clock   clock.Clock

	mu        sync.Mutex // guards everything below
	assetOps  map[string]*assetOp
	bundleOps map[string]*bundleOp
	loaded    set.Strings
	stats     Stats
}

// assetOp is an in-flight asset load. It is pending until done is closed,
// after which res and err are fixed.
type assetOp struct {
	done chan struct{}
	res  Resource
	err  error
}

// bundleOp is an in-flight bundle load; it settles with an error only.
type bundleOp struct {
	done chan struct{}
	err  error
}

// New creates a Loader over the configured backend.
func New(cfg Config) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	return &Loader{
		backend:   cfg.Backend,
		clock:     clk,
		assetOps:  make(map[string]*assetOp),
		bundleOps: make(map[string]*bundleOp),
		loaded:    set.NewStrings(),
	}, nil
}

// GetAsset returns the resource stored under alias if it is already
// available. It never starts a fetch.
func (l *Loader) GetAsset(alias string) (Resource, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.backend.Has(alias) {
		if l.loaded.Contains(alias) {
			// The backend dropped it behind our back.
			logger.Debugf("asset %q marked loaded but missing from backend", alias)
			l.loaded.Remove(alias)
		}
		return nil, false
	}
	l.loaded.Add(alias)
	return l.backend.Get(alias), true
}

// LoadSpritesheet returns the resource for alias, fetching it from source
// if neither the loader nor the backend has it yet.
//
// Concurrent calls for the same alias share one fetch and all receive
// its result. The first source wins: while alias is loading or loaded,
// later calls never fetch from a different source. Unload first to
// reload.
//
// If ctx ends before the load settles the caller gets ctx.Err(), but the
// load itself keeps running for everyone else.
func (l *Loader) LoadSpritesheet(ctx context.Context, alias, source string) (Resource, error) {
	l.mu.Lock()
	if op, ok := l.assetOps[alias]; ok {
		l.stats.Joins++
		l.mu.Unlock()
		logger.Tracef("joining in-flight load of %q", alias)
		return op.wait(ctx)
	}
	if l.backend.Has(alias) {
		l.loaded.Add(alias)
		l.stats.CacheHits++
		res := l.backend.Get(alias)
		l.mu.Unlock()
		return res, nil
	}
	op := &assetOp{done: make(chan struct{})}
	l.assetOps[alias] = op
	l.stats.Fetches++
	l.mu.Unlock()

	go l.fetchAsset(context.WithoutCancel(ctx), alias, source, op)
	return op.wait(ctx)
}

func (l *Loader) fetchAsset(ctx context.Context, alias, source string, op *assetOp) {
	ctx, span := tracer.Start(ctx, "assets.FetchAndDecode")
	span.SetAttributes(
		attribute.String("asset.alias", alias),
		attribute.String("asset.source", source),
	)
	defer span.End()

	start := l.clock.Now()
	res, err := l.backend.FetchAndDecode(ctx, alias, source)
	if err != nil {
		err = fetchFailed(alias, err)
	} else if err = checkResource(alias, res); err != nil {
		l.backend.Evict(alias)
		res = nil
	}
	elapsed := l.clock.Now().Sub(start)

	l.mu.Lock()
	if err == nil && !l.backend.Has(alias) {
		// An unload evicted it between the store and the settle. The
		// load fails rather than hand out a resource nothing holds.
		err = fetchFailed(alias, errEvictedWhileLoading)
		res = nil
	}
	delete(l.assetOps, alias)
	l.stats.FetchTime += elapsed
	if err != nil {
		l.stats.Failures++
	} else {
		l.loaded.Add(alias)
	}
	op.res, op.err = res, err
	close(op.done)
	l.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Debugf("loading %q from %q failed: %v", alias, source, err)
	} else {
		logger.Tracef("loaded %q from %q in %v", alias, source, elapsed)
	}
}

func (op *assetOp) wait(ctx context.Context) (Resource, error) {
	select {
	case <-op.done:
		return op.res, op.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (op *bundleOp) wait(ctx context.Context) error {
	select {
	case <-op.done:
		return op.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UnloadAsset evicts alias from the backend and forgets it. If alias is
// loading, UnloadAsset waits for that load to settle first. Unloading an
// absent alias is a no-op.
func (l *Loader) UnloadAsset(ctx context.Context, alias string) error {
	for {
		l.mu.Lock()
		op, pending := l.assetOps[alias]
		if !pending {
			break
		}
		l.mu.Unlock()
		if err := waitSettled(ctx, op.done); err != nil {
			return err
		}
	}
	defer l.mu.Unlock()

	if l.backend.Has(alias) {
		l.backend.Evict(alias)
	}
	l.loaded.Remove(alias)
	delete(l.assetOps, alias)
	logger.Tracef("unloaded %q", alias)
	return nil
}

// UnloadAll waits for every pending load to settle, evicts every loaded
// alias from the backend and clears all tracking.
func (l *Loader) UnloadAll(ctx context.Context) error {
	for {
		l.mu.Lock()
		pending := l.pendingLocked()
		if len(pending) == 0 {
			break
		}
		l.mu.Unlock()
		for _, done := range pending {
			if err := waitSettled(ctx, done); err != nil {
				return err
			}
		}
	}
	defer l.mu.Unlock()

	for _, alias := range l.loaded.Values() {
		if l.backend.Has(alias) {
			l.backend.Evict(alias)
		}
	}
	logger.Debugf("unloaded %d assets", l.loaded.Size())
	l.loaded = set.NewStrings()
	l.assetOps = make(map[string]*assetOp)
	l.bundleOps = make(map[string]*bundleOp)
	return nil
}

func (l *Loader) pendingLocked() []chan struct{} {
	var out []chan struct{}
	for _, op := range l.assetOps {
		out = append(out, op.done)
	}
	for _, op := range l.bundleOps {
		out = append(out, op.done)
	}
	return out
}

func waitSettled(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsLoading reports whether a load of alias is in flight.
func (l *Loader) IsLoading(alias string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.assetOps[alias]
	return ok
}

// IsLoaded reports whether alias is marked loaded. It does not consult
// the backend; use GetAsset for a validated lookup.
func (l *Loader) IsLoaded(alias string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded.Contains(alias)
}

// LoadedAliases returns the aliases marked loaded, sorted.
func (l *Loader) LoadedAliases() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded.SortedValues()
}

// Stats returns a snapshot of the loader counters.
func (l *Loader) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}
