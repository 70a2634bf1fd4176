package texture

import (
	"context"
	"sync"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"sprite-assets/internal/assets"
)

// Fetcher produces a decoded resource for a source.
type Fetcher interface {
	Fetch(ctx context.Context, alias, source string) (assets.Resource, error)
}

// Store is the raw keyed resource store behind the asset loader. It is
// safe for concurrent use.
type Store struct {
	fetcher Fetcher
	workers int
	flight  singleflight.Group

	mu     sync.RWMutex
	items  map[string]assets.Resource
	groups map[string][]assets.AssetDescriptor
}

var _ assets.Backend = (*Store)(nil)

// NewStore creates an empty store. Group loads fetch up to workers
// members at once.
func NewStore(fetcher Fetcher, workers int) *Store {
	if workers <= 0 {
		workers = 1
	}
	return &Store{
		fetcher: fetcher,
		workers: workers,
		items:   make(map[string]assets.Resource),
		groups:  make(map[string][]assets.AssetDescriptor),
	}
}

// FetchAndDecode fetches source and stores the result under alias.
// Concurrent fetches of one alias share a single fetch.
func (s *Store) FetchAndDecode(ctx context.Context, alias, source string) (assets.Resource, error) {
	res, _, err := s.fetch(ctx, alias, source)
	return res, err
}

// fetch is FetchAndDecode that also reports whether this call alone
// produced the stored item: it ran the fetch and nobody joined it.
func (s *Store) fetch(ctx context.Context, alias, source string) (assets.Resource, bool, error) {
	led := false
	v, err, shared := s.flight.Do(alias, func() (any, error) {
		led = true
		res, err := s.fetcher.Fetch(ctx, alias, source)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.items[alias] = res
		s.mu.Unlock()
		return res, nil
	})
	if shared {
		logger.Tracef("fetch of %q shared", alias)
	}
	if err != nil {
		return nil, false, errors.Trace(err)
	}
	res, _ := v.(assets.Resource)
	return res, led && !shared, nil
}

// Has reports whether alias is stored.
func (s *Store) Has(alias string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[alias]
	return ok
}

// Get returns the resource stored under alias, or nil.
func (s *Store) Get(alias string) assets.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[alias]
}

// Evict drops alias from the store.
func (s *Store) Evict(alias string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, alias)
}

// AddGroup registers the members of a named group.
func (s *Store) AddGroup(name string, members []assets.AssetDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[name] = append([]assets.AssetDescriptor(nil), members...)
}

// LoadGroup fetches every member of the group not already stored. If any
// member fails, the members fetched by this call alone are evicted again
// so the group is either fully present or not added to.
func (s *Store) LoadGroup(ctx context.Context, name string) error {
	s.mu.RLock()
	members, ok := s.groups[name]
	s.mu.RUnlock()
	if !ok {
		return errors.NotFoundf("group %q", name)
	}

	var (
		g       errgroup.Group
		mu      sync.Mutex
		fetched = set.NewStrings()
	)
	g.SetLimit(s.workers)
	for _, m := range members {
		if s.Has(m.Alias) {
			continue
		}
		g.Go(func() error {
			_, owned, err := s.fetch(ctx, m.Alias, m.Source)
			if err != nil {
				return errors.Annotatef(err, "group %q member %q", name, m.Alias)
			}
			// Fetches shared with another caller belong to it too and
			// are not rolled back.
			if owned {
				mu.Lock()
				fetched.Add(m.Alias)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, alias := range fetched.Values() {
			s.Evict(alias)
		}
		return err
	}
	logger.Debugf("group %q: %d members, %d fetched alone", name, len(members), fetched.Size())
	return nil
}

// EvictGroup drops every member of the group. The registration is kept.
func (s *Store) EvictGroup(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.groups[name] {
		delete(s.items, m.Alias)
	}
}

// Len returns the number of stored resources.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
