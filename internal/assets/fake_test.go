package assets

import (
	"context"
	"sync"

	"github.com/juju/errors"
)

type fakeSheet struct {
	frames []string
}

func (s *fakeSheet) FrameNames() []string { return s.frames }

type fakeImage struct {
	name string
}

// fakeBackend is an in-memory Backend whose decode step is scripted per
// source. Group loads roll back members they fetched when one fails.
type fakeBackend struct {
	mu        sync.Mutex
	items     map[string]Resource
	groups    map[string][]AssetDescriptor
	sources   map[string]Resource
	fetches   map[string]int
	evictions map[string]int
	gate      chan struct{}
	// hold pauses FetchAndDecode of an alias after it is stored.
	hold map[string]func()
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		items:     make(map[string]Resource),
		groups:    make(map[string][]AssetDescriptor),
		sources:   make(map[string]Resource),
		fetches:   make(map[string]int),
		evictions: make(map[string]int),
	}
}

func (b *fakeBackend) decode(ctx context.Context, source string) (Resource, error) {
	if b.gate != nil {
		select {
		case <-b.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	res, ok := b.sources[source]
	if !ok {
		return nil, errors.NotFoundf("source %q", source)
	}
	return res, nil
}

func (b *fakeBackend) FetchAndDecode(ctx context.Context, alias, source string) (Resource, error) {
	b.mu.Lock()
	b.fetches[alias]++
	b.mu.Unlock()

	res, err := b.decode(ctx, source)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.items[alias] = res
	hold := b.hold[alias]
	b.mu.Unlock()
	if hold != nil {
		hold()
	}
	return res, nil
}

// holdAfterStore makes the next fetch of alias pause once the item is
// stored. stored is closed when it pauses; closing release resumes it.
func (b *fakeBackend) holdAfterStore(alias string) (stored <-chan struct{}, release chan struct{}) {
	paused := make(chan struct{})
	release = make(chan struct{})
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hold == nil {
		b.hold = make(map[string]func())
	}
	b.hold[alias] = func() {
		b.mu.Lock()
		delete(b.hold, alias)
		b.mu.Unlock()
		close(paused)
		<-release
	}
	return paused, release
}

func (b *fakeBackend) Has(alias string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.items[alias]
	return ok
}

func (b *fakeBackend) Get(alias string) Resource {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.items[alias]
}

func (b *fakeBackend) Evict(alias string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.evictLocked(alias)
}

func (b *fakeBackend) evictLocked(alias string) {
	if _, ok := b.items[alias]; ok {
		b.evictions[alias]++
		delete(b.items, alias)
	}
}

func (b *fakeBackend) AddGroup(name string, assets []AssetDescriptor) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.groups[name] = assets
}

func (b *fakeBackend) LoadGroup(ctx context.Context, name string) error {
	b.mu.Lock()
	members := b.groups[name]
	b.mu.Unlock()

	var fetched []string
	for _, m := range members {
		if b.Has(m.Alias) {
			continue
		}
		if _, err := b.FetchAndDecode(ctx, m.Alias, m.Source); err != nil {
			b.mu.Lock()
			for _, alias := range fetched {
				b.evictLocked(alias)
			}
			b.mu.Unlock()
			return errors.Annotatef(err, "group %q", name)
		}
		fetched = append(fetched, m.Alias)
	}
	return nil
}

func (b *fakeBackend) EvictGroup(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range b.groups[name] {
		b.evictLocked(m.Alias)
	}
}

func (b *fakeBackend) fetchCount(alias string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fetches[alias]
}

func (b *fakeBackend) evictionCount(alias string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.evictions[alias]
}

func (b *fakeBackend) put(alias string, res Resource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[alias] = res
}
