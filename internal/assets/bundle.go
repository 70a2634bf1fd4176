package assets

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// LoadBundle makes every asset in b available, or none of them.
//
// A bundle without a name is a no-op. Concurrent loads of the same bundle
// name share one backend group load. The in-flight marker is cleared
// whether the load succeeds or fails, so a failed bundle can be retried.
func (l *Loader) LoadBundle(ctx context.Context, b BundleDescriptor) error {
	if b.Name == "" {
		return nil
	}

	l.mu.Lock()
	if op, ok := l.bundleOps[b.Name]; ok {
		l.stats.Joins++
		l.mu.Unlock()
		logger.Tracef("joining in-flight load of bundle %q", b.Name)
		return op.wait(ctx)
	}
	op := &bundleOp{done: make(chan struct{})}
	l.bundleOps[b.Name] = op
	l.stats.Fetches++
	l.mu.Unlock()

	members := append([]AssetDescriptor(nil), b.Assets...)
	go l.fetchBundle(context.WithoutCancel(ctx), b.Name, members, op)
	return op.wait(ctx)
}

func (l *Loader) fetchBundle(ctx context.Context, name string, members []AssetDescriptor, op *bundleOp) {
	ctx, span := tracer.Start(ctx, "assets.LoadGroup")
	span.SetAttributes(
		attribute.String("bundle.name", name),
		attribute.Int("bundle.size", len(members)),
	)
	defer span.End()

	start := l.clock.Now()
	l.backend.AddGroup(name, members)
	err := l.backend.LoadGroup(ctx, name)
	if err != nil {
		err = fetchFailed(name, err)
	} else {
		for _, m := range members {
			if !l.backend.Has(m.Alias) {
				err = invalidResource(name, "member "+m.Alias+" missing after group load")
				break
			}
			if err = checkResource(m.Alias, l.backend.Get(m.Alias)); err != nil {
				break
			}
		}
		if err != nil {
			l.backend.EvictGroup(name)
		}
	}
	elapsed := l.clock.Now().Sub(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Debugf("loading bundle %q failed: %v", name, err)
	} else {
		logger.Debugf("loaded bundle %q (%d assets) in %v", name, len(members), elapsed)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.bundleOps, name)
	l.stats.FetchTime += elapsed
	if err != nil {
		l.stats.Failures++
		l.pruneLocked()
	} else {
		// A concurrent UnloadAsset or overlapping UnloadBundle may have
		// evicted members since the check above; those stay unloaded.
		for _, m := range members {
			if l.backend.Has(m.Alias) {
				l.loaded.Add(m.Alias)
			}
		}
	}
	op.err = err
	close(op.done)
}

// UnloadBundle releases every asset registered under name. A pending load
// of the same bundle is allowed to settle first.
//
// There is no reference counting: assets shared with another bundle are
// evicted too, and the last unload wins.
func (l *Loader) UnloadBundle(ctx context.Context, name string) error {
	for {
		l.mu.Lock()
		op, pending := l.bundleOps[name]
		if !pending {
			break
		}
		l.mu.Unlock()
		if err := waitSettled(ctx, op.done); err != nil {
			return err
		}
	}
	defer l.mu.Unlock()

	l.backend.EvictGroup(name)
	delete(l.bundleOps, name)
	l.pruneLocked()
	logger.Tracef("unloaded bundle %q", name)
	return nil
}

// pruneLocked drops loaded marks the backend no longer backs.
func (l *Loader) pruneLocked() {
	for _, alias := range l.loaded.Values() {
		if !l.backend.Has(alias) {
			l.loaded.Remove(alias)
		}
	}
}

// IsBundleLoading reports whether a load of the named bundle is in flight.
func (l *Loader) IsBundleLoading(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.bundleOps[name]
	return ok
}
