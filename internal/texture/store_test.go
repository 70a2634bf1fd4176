package texture_test

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"sprite-assets/internal/assets"
	"sprite-assets/internal/texture"
)

// stubFetcher returns a Texture per source, failing for sources in fail.
type stubFetcher struct {
	calls atomic.Int64
	fail  map[string]bool
	gate  chan struct{}
	// gates holds back fetches of single sources.
	gates map[string]chan struct{}
}

func (f *stubFetcher) Fetch(ctx context.Context, alias, source string) (assets.Resource, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if g := f.gates[source]; g != nil {
		<-g
	}
	if f.fail[source] {
		return nil, errors.NotFoundf("source %q", source)
	}
	return &texture.Texture{Alias: alias, Source: source}, nil
}

type storeSuite struct {
	fetcher *stubFetcher
	store   *texture.Store
}

var _ = gc.Suite(&storeSuite{})

func (s *storeSuite) SetUpTest(c *gc.C) {
	s.fetcher = &stubFetcher{
		fail:  make(map[string]bool),
		gates: make(map[string]chan struct{}),
	}
	s.store = texture.NewStore(s.fetcher, 2)
}

func (s *storeSuite) TestFetchAndDecodeStores(c *gc.C) {
	res, err := s.store.FetchAndDecode(context.Background(), "coin", "coin.png")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(s.store.Has("coin"), jc.IsTrue)
	c.Check(s.store.Get("coin"), gc.Equals, res)
	c.Check(s.store.Len(), gc.Equals, 1)

	s.store.Evict("coin")
	c.Check(s.store.Has("coin"), jc.IsFalse)
	c.Check(s.store.Get("coin"), gc.IsNil)
}

func (s *storeSuite) TestFetchFailureStoresNothing(c *gc.C) {
	s.fetcher.fail["coin.png"] = true
	_, err := s.store.FetchAndDecode(context.Background(), "coin", "coin.png")
	c.Check(errors.Is(err, errors.NotFound), jc.IsTrue)
	c.Check(s.store.Has("coin"), jc.IsFalse)
}

func (s *storeSuite) TestConcurrentFetchesAreShared(c *gc.C) {
	s.fetcher.gate = make(chan struct{})

	const callers = 5
	var wg sync.WaitGroup
	results := make([]assets.Resource, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = s.store.FetchAndDecode(context.Background(), "coin", "coin.png")
		}(i)
	}
	// Let the first fetch start before releasing it.
	for s.fetcher.calls.Load() == 0 {
		runtime.Gosched()
	}
	close(s.fetcher.gate)
	wg.Wait()

	c.Check(s.fetcher.calls.Load() >= 1, jc.IsTrue)
	c.Check(s.store.Has("coin"), jc.IsTrue)
	for _, r := range results {
		c.Check(r, gc.NotNil)
	}
}

func (s *storeSuite) TestLoadGroup(c *gc.C) {
	s.store.AddGroup("hero", []assets.AssetDescriptor{
		{Alias: "hero_run", Source: "run.json"},
		{Alias: "hero_win", Source: "win.png"},
	})
	c.Assert(s.store.LoadGroup(context.Background(), "hero"), jc.ErrorIsNil)
	c.Check(s.store.Has("hero_run"), jc.IsTrue)
	c.Check(s.store.Has("hero_win"), jc.IsTrue)
	c.Check(s.fetcher.calls.Load(), gc.Equals, int64(2))

	// Members already present are not fetched again.
	c.Assert(s.store.LoadGroup(context.Background(), "hero"), jc.ErrorIsNil)
	c.Check(s.fetcher.calls.Load(), gc.Equals, int64(2))

	s.store.EvictGroup("hero")
	c.Check(s.store.Len(), gc.Equals, 0)
}

func (s *storeSuite) TestLoadGroupRollsBack(c *gc.C) {
	_, err := s.store.FetchAndDecode(context.Background(), "coin", "coin.png")
	c.Assert(err, jc.ErrorIsNil)
	s.fetcher.fail["win.png"] = true

	s.store.AddGroup("hero", []assets.AssetDescriptor{
		{Alias: "coin", Source: "coin.png"},
		{Alias: "hero_run", Source: "run.json"},
		{Alias: "hero_win", Source: "win.png"},
	})
	err = s.store.LoadGroup(context.Background(), "hero")
	c.Assert(err, gc.ErrorMatches, `group "hero" member "hero_win": source "win.png" not found`)
	c.Check(errors.Is(err, errors.NotFound), jc.IsTrue)

	c.Check(s.store.Has("hero_run"), jc.IsFalse)
	c.Check(s.store.Has("hero_win"), jc.IsFalse)
	// Present before the group load, so left alone.
	c.Check(s.store.Has("coin"), jc.IsTrue)
}

func (s *storeSuite) TestLoadGroupKeepsFetchSharedWithCaller(c *gc.C) {
	runGate := make(chan struct{})
	s.fetcher.gates["run.json"] = runGate
	s.fetcher.fail["win.png"] = true
	s.store.AddGroup("hero", []assets.AssetDescriptor{
		{Alias: "hero_run", Source: "run.json"},
		{Alias: "hero_win", Source: "win.png"},
	})

	groupErr := make(chan error, 1)
	go func() { groupErr <- s.store.LoadGroup(context.Background(), "hero") }()
	deadline := time.Now().Add(testing.LongWait)
	for s.fetcher.calls.Load() < 2 {
		if time.Now().After(deadline) {
			c.Fatalf("group fetches did not start")
		}
		runtime.Gosched()
	}

	// A standalone caller joins the group's in-flight fetch of hero_run.
	type result struct {
		res assets.Resource
		err error
	}
	standalone := make(chan result, 1)
	go func() {
		res, err := s.store.FetchAndDecode(context.Background(), "hero_run", "run.json")
		standalone <- result{res, err}
	}()
	time.Sleep(testing.ShortWait)
	close(runGate)

	c.Check(<-groupErr, gc.ErrorMatches, `group "hero" member "hero_win": .*`)
	r := <-standalone
	c.Assert(r.err, jc.ErrorIsNil)
	c.Check(s.fetcher.calls.Load(), gc.Equals, int64(2))

	// The caller was told hero_run is stored, so the rollback leaves it.
	c.Check(s.store.Has("hero_run"), jc.IsTrue)
	c.Check(s.store.Get("hero_run"), gc.Equals, r.res)
	c.Check(s.store.Has("hero_win"), jc.IsFalse)
}

func (s *storeSuite) TestLoadUnknownGroup(c *gc.C) {
	err := s.store.LoadGroup(context.Background(), "nope")
	c.Check(errors.Is(err, errors.NotFound), jc.IsTrue)
}

func (s *storeSuite) TestAddGroupCopiesMembers(c *gc.C) {
	members := []assets.AssetDescriptor{{Alias: "a", Source: "a.png"}}
	s.store.AddGroup("g", members)
	members[0].Alias = "b"

	c.Assert(s.store.LoadGroup(context.Background(), "g"), jc.ErrorIsNil)
	c.Check(s.store.Has("a"), jc.IsTrue)
	c.Check(s.store.Has("b"), jc.IsFalse)
}
