package resolver

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"asset-resolver/core/handle"
	"asset-resolver/core/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubAsync is a scriptable primary provider. Handles it issues track release
// calls so tests can assert on handle lifetime.
type stubAsync struct {
	mu       sync.Mutex
	loads    int
	releases int
	result   func(key string) (any, error)
	block    chan struct{}
}

func (s *stubAsync) Name() string { return "bundle" }

func (s *stubAsync) LoadAsync(ctx context.Context, key string) *handle.Handle {
	s.mu.Lock()
	s.loads++
	s.mu.Unlock()

	h := handle.NewWithRelease(func() error {
		s.mu.Lock()
		s.releases++
		s.mu.Unlock()
		return nil
	})
	go func() {
		// Mirrors the real bundle provider: a fault in the fetch path fails
		// the handle instead of crashing.
		defer func() {
			if rec := recover(); rec != nil {
				h.Fail(fmt.Errorf("load panicked: %v", rec))
			}
		}()
		if s.block != nil {
			<-s.block
		}
		v, err := s.result(key)
		if err != nil {
			h.Fail(err)
			return
		}
		h.Complete(v)
	}()
	return h
}

func (s *stubAsync) InstantiateAsync(ctx context.Context, key, name string, parent any) *handle.Handle {
	return s.LoadAsync(ctx, key)
}

func (s *stubAsync) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

func (s *stubAsync) releaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releases
}

// stubSync is a scriptable fallback provider.
type stubSync struct {
	mu     sync.Mutex
	loads  int
	result func(key string) (any, error)
}

func (s *stubSync) Name() string { return "local" }

func (s *stubSync) Load(ctx context.Context, key string) (any, error) {
	s.mu.Lock()
	s.loads++
	s.mu.Unlock()
	return s.result(key)
}

func (s *stubSync) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

// stubSink records instantiations.
type stubSink struct {
	mu    sync.Mutex
	calls int
	last  struct {
		obj    any
		name   string
		parent any
	}
}

func (s *stubSink) Instantiate(ctx context.Context, obj any, name string, parent any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last.obj = obj
	s.last.name = name
	s.last.parent = parent
	return &instance{asset: obj, name: name, parent: parent}, nil
}

type instance struct {
	asset  any
	name   string
	parent any
}

func notFoundAll(string) (any, error) { return nil, provider.ErrNotFound }

func newTestResolver(primary *stubAsync, fallback *stubSync, sink provider.Sink) *Resolver {
	chain := provider.NewChain(primary, fallback, sink, zap.NewNop())
	return New(chain, sink, zap.NewNop())
}

func TestTryGetInvalidKey(t *testing.T) {
	primary := &stubAsync{result: notFoundAll}
	fallback := &stubSync{result: notFoundAll}
	r := newTestResolver(primary, fallback, nil)

	for _, key := range []string{"", "   ", "\t\n"} {
		_, err := TryGet[any](r, context.Background(), key)
		assert.ErrorIs(t, err, ErrInvalidKey)
	}

	// No provider was touched and no entry appeared.
	assert.Equal(t, 0, primary.loadCount())
	assert.Equal(t, 0, fallback.loadCount())
	assert.Equal(t, Stats{}, r.CacheStats())
}

func TestTryGetUnresolvable(t *testing.T) {
	primary := &stubAsync{result: notFoundAll}
	fallback := &stubSync{result: notFoundAll}
	r := newTestResolver(primary, fallback, &stubSink{})

	_, err := TryGet[any](r, context.Background(), "ghost", WithCache())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Instantiate(context.Background(), "ghost", "", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.False(t, r.IsLoaded("ghost"))
	assert.False(t, r.IsLoading("ghost"))
	assert.Equal(t, Stats{}, r.CacheStats())
}

func TestTryGetCacheCoherence(t *testing.T) {
	blob := &provider.Blob{Key: "hero", Data: []byte("x")}
	primary := &stubAsync{result: func(string) (any, error) { return blob, nil }}
	fallback := &stubSync{result: notFoundAll}
	r := newTestResolver(primary, fallback, nil)

	first, err := TryGet[*provider.Blob](r, context.Background(), "hero", WithCache())
	require.NoError(t, err)
	assert.True(t, r.IsLoaded("hero"))

	second, err := TryGet[*provider.Blob](r, context.Background(), "hero")
	require.NoError(t, err)

	// Same instance, and the provider was not consulted again.
	assert.Same(t, first, second)
	assert.Equal(t, 1, primary.loadCount())
}

func TestTryGetWithoutCacheReleasesHandle(t *testing.T) {
	primary := &stubAsync{result: func(string) (any, error) { return "v", nil }}
	r := newTestResolver(primary, &stubSync{result: notFoundAll}, nil)

	v, err := TryGet[string](r, context.Background(), "hero")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	// Nothing was cached, so nothing may retain the bundle handle.
	assert.False(t, r.IsLoaded("hero"))
	assert.Equal(t, 1, primary.releaseCount())
}

func TestTryGetTypeMismatch(t *testing.T) {
	blob := &provider.Blob{Key: "hero"}
	primary := &stubAsync{result: func(string) (any, error) { return blob, nil }}
	r := newTestResolver(primary, &stubSync{result: notFoundAll}, nil)

	_, err := TryGet[*provider.Blob](r, context.Background(), "hero", WithCache())
	require.NoError(t, err)

	// Requesting an unrelated type fails without disturbing the entry.
	_, err = TryGet[int](r, context.Background(), "hero")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	assert.True(t, r.IsLoaded("hero"))
	still, err := TryGet[*provider.Blob](r, context.Background(), "hero")
	require.NoError(t, err)
	assert.Same(t, blob, still)
	assert.Equal(t, 1, primary.loadCount())
}

func TestTryGetFallbackOnly(t *testing.T) {
	// "Enemy" resolves via fallback only; the primary store has no such key.
	primary := &stubAsync{result: notFoundAll}
	fallback := &stubSync{result: func(string) (any, error) { return "enemy-prefab", nil }}
	r := newTestResolver(primary, fallback, nil)

	v, err := TryGet[string](r, context.Background(), "Enemy", WithCache())
	require.NoError(t, err)
	assert.Equal(t, "enemy-prefab", v)
	assert.True(t, r.IsLoaded("Enemy"))

	r.Release("Enemy")
	assert.False(t, r.IsLoaded("Enemy"))

	// The next lookup walks the providers again.
	before := fallback.loadCount()
	_, err = TryGet[string](r, context.Background(), "Enemy")
	require.NoError(t, err)
	assert.Equal(t, before+1, fallback.loadCount())
}

func TestTryGetDeduplicatesConcurrentLoads(t *testing.T) {
	gate := make(chan struct{})
	primary := &stubAsync{
		block:  gate,
		result: func(string) (any, error) { return "v", nil },
	}
	r := newTestResolver(primary, &stubSync{result: notFoundAll}, nil)

	var wg sync.WaitGroup
	results := make([]string, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := TryGet[string](r, context.Background(), "hero", WithCache())
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	// Let every caller reach the in-flight load before it is allowed to
	// finish, so they all join the same flight.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, 1, primary.loadCount())
	for _, v := range results {
		assert.Equal(t, "v", v)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	primary := &stubAsync{result: func(string) (any, error) { return "v", nil }}
	r := newTestResolver(primary, &stubSync{result: notFoundAll}, nil)

	_, err := TryGet[string](r, context.Background(), "hero", WithCache())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		r.Release("hero")
		r.Release("hero")
	})
	assert.False(t, r.IsLoaded("hero"))
	assert.Equal(t, Stats{}, r.CacheStats())
	assert.Equal(t, 1, primary.releaseCount())

	// Releasing keys that never existed is also fine.
	assert.NotPanics(t, func() {
		r.Release("never-loaded")
		r.Release("  ")
	})
}

func TestClearCache(t *testing.T) {
	primary := &stubAsync{result: func(string) (any, error) { return "v", nil }}
	r := newTestResolver(primary, &stubSync{result: notFoundAll}, nil)

	// Safe on an empty resolver.
	assert.NotPanics(t, r.ClearCache)

	for _, key := range []string{"a", "b", "c"} {
		_, err := TryGet[string](r, context.Background(), key, WithCache())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, r.CacheStats().Cached)

	r.ClearCache()
	assert.Equal(t, Stats{}, r.CacheStats())
	assert.Equal(t, 3, primary.releaseCount())
}

func TestInstantiateFromCache(t *testing.T) {
	prefab := &provider.Blob{Key: "Coin"}
	primary := &stubAsync{result: func(string) (any, error) { return prefab, nil }}
	sink := &stubSink{}
	r := newTestResolver(primary, &stubSync{result: notFoundAll}, sink)

	_, err := TryGet[*provider.Blob](r, context.Background(), "Coin", WithCache())
	require.NoError(t, err)
	loadsAfterCache := primary.loadCount()

	parent := &instance{name: "P"}
	v, err := r.Instantiate(context.Background(), "Coin", "Coin_0", parent)
	require.NoError(t, err)

	inst, ok := v.(*instance)
	require.True(t, ok)
	assert.Equal(t, "Coin_0", inst.name)
	assert.Same(t, parent, inst.parent)
	assert.Same(t, prefab, inst.asset)

	// Instantiating from cache consulted no provider and mutated no table.
	assert.Equal(t, loadsAfterCache, primary.loadCount())
	assert.True(t, r.IsLoaded("Coin"))
	assert.Equal(t, 1, r.CacheStats().Cached)
}

func TestInstantiateViaProviders(t *testing.T) {
	primary := &stubAsync{result: func(string) (any, error) { return "coin-instance", nil }}
	sink := &stubSink{}
	r := newTestResolver(primary, &stubSync{result: notFoundAll}, sink)

	v, err := r.Instantiate(context.Background(), "Coin", "Coin_0", nil)
	require.NoError(t, err)
	assert.Equal(t, "coin-instance", v)

	// Instantiation does not populate the cache.
	assert.False(t, r.IsLoaded("Coin"))
}

// panicSink simulates the object-graph manager faulting mid-instantiate.
type panicSink struct{}

func (panicSink) Instantiate(ctx context.Context, obj any, name string, parent any) (any, error) {
	panic("scene graph destroyed")
}

func TestInstantiateSinkPanicIsAbsorbed(t *testing.T) {
	primary := &stubAsync{result: func(string) (any, error) { return "prefab", nil }}
	r := newTestResolver(primary, &stubSync{result: notFoundAll}, panicSink{})

	_, err := TryGet[string](r, context.Background(), "Coin", WithCache())
	require.NoError(t, err)

	v, err := r.Instantiate(context.Background(), "Coin", "", nil)
	assert.Error(t, err)
	assert.Nil(t, v)
	assert.True(t, r.IsLoaded("Coin"))
}
