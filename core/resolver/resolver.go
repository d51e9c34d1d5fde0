package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"asset-resolver/core/handle"
	"asset-resolver/core/provider"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrInvalidKey is returned for empty or whitespace-only keys, before any
	// provider is touched.
	ErrInvalidKey = errors.New("invalid asset key")
	// ErrNotFound is returned when no provider resolved the key.
	ErrNotFound = provider.ErrNotFound
	// ErrTypeMismatch is returned when a resolved or cached value exists but
	// is not of the requested type. The cache entry is left untouched.
	ErrTypeMismatch = errors.New("asset type mismatch")
)

// Resolver is the process-wide resolution cache. It owns three tables: the
// cached values, the retained bundle handles backing them, and the pending
// preloads. A retained handle lives exactly as long as its cache entry: they
// are created together and released together.
type Resolver struct {
	mu       sync.RWMutex
	cached   map[string]any
	retained map[string]*handle.Handle
	pending  map[string]*preloadTask

	// generation is bumped by Reset; in-flight work compares its snapshot
	// against it before writing, so loads that complete after a reload discard
	// their result instead of repopulating cleared tables.
	generation uint64

	chain  *provider.Chain
	sink   provider.Sink
	logger *zap.Logger
	sf     singleflight.Group

	reloadOnce sync.Once
}

// New creates a resolver over the given chain. sink is optional; without it
// Instantiate only works for keys whose provider can instantiate directly.
func New(chain *provider.Chain, sink provider.Sink, logger *zap.Logger) *Resolver {
	return &Resolver{
		cached:   make(map[string]any),
		retained: make(map[string]*handle.Handle),
		pending:  make(map[string]*preloadTask),
		chain:    chain,
		sink:     sink,
		logger:   logger,
	}
}

// TryGet resolves key to a value of type T. Lookup order: cache hit, then the
// provider chain in the requested order. The call blocks until the providers
// answer. With WithCache the winning value is stored, along with its bundle
// handle when one was produced.
func TryGet[T any](r *Resolver, ctx context.Context, key string, opts ...Option) (T, error) {
	var zero T
	if err := validateKey(key); err != nil {
		r.logger.Warn("Rejected asset key", zap.String("key", key))
		return zero, err
	}
	o := buildOptions(opts)

	if v, ok, err := cacheHit[T](r, key); ok {
		return v, err
	}

	gen := r.currentGeneration()

	// Concurrent identical loads collapse into one provider walk. The cache
	// flag is part of the flight key: callers of a shared flight all handle
	// the one outcome the same way, so a non-caching caller can never dispose
	// a handle a caching caller just retained.
	sfKey := fmt.Sprintf("%s|%v|%v|%v", key, o.chain.PrimaryFirst, o.chain.TryFallback, o.cache)
	res, err, _ := r.sf.Do(sfKey, func() (any, error) {
		return r.chain.Load(ctx, key, o.chain)
	})
	if err != nil {
		r.logger.Warn("Asset resolution failed", zap.String("key", key), zap.Error(err))
		return zero, err
	}
	out := res.(*provider.Outcome)

	v, ok := out.Value.(T)
	if !ok {
		r.logger.Warn("Resolved asset has wrong type",
			zap.String("key", key),
			zap.String("source", out.Source),
			zap.String("got", fmt.Sprintf("%T", out.Value)),
		)
		// In a caching flight the handle's fate belongs to whichever caller
		// stores it; only a non-caching flight may dispose it here.
		if !o.cache {
			releaseOutcome(out)
		}
		return zero, fmt.Errorf("%q resolved as %T: %w", key, out.Value, ErrTypeMismatch)
	}

	if o.cache {
		r.store(gen, key, out)
	} else {
		releaseOutcome(out)
	}
	return v, nil
}

// cacheHit checks the cached table under the read lock. The second return
// reports whether the lookup is settled (hit or poisoned); the error carries a
// type mismatch. A mismatch never evicts the existing entry.
func cacheHit[T any](r *Resolver, key string) (T, bool, error) {
	var zero T
	r.mu.RLock()
	raw, ok := r.cached[key]
	r.mu.RUnlock()
	if !ok {
		return zero, false, nil
	}
	v, ok := raw.(T)
	if !ok {
		r.logger.Warn("Cached asset has wrong type",
			zap.String("key", key),
			zap.String("cached", fmt.Sprintf("%T", raw)),
		)
		return zero, true, fmt.Errorf("%q cached as %T: %w", key, raw, ErrTypeMismatch)
	}
	return v, true, nil
}

// Instantiate creates a live instance for key. A cached value instantiates
// straight through the sink with no provider call and no cache mutation;
// otherwise the provider chain runs in the same order TryGet uses.
func (r *Resolver) Instantiate(ctx context.Context, key, name string, parent any, opts ...Option) (any, error) {
	if err := validateKey(key); err != nil {
		r.logger.Warn("Rejected asset key", zap.String("key", key))
		return nil, err
	}
	o := buildOptions(opts)

	r.mu.RLock()
	cached, ok := r.cached[key]
	r.mu.RUnlock()
	if ok {
		if r.sink == nil {
			r.logger.Warn("No sink to instantiate cached asset", zap.String("key", key))
			return nil, fmt.Errorf("no instantiation sink for cached %q: %w", key, ErrNotFound)
		}
		instance, err := r.instantiateCached(ctx, cached, name, parent)
		if err != nil {
			r.logger.Warn("Instantiation from cache failed", zap.String("key", key), zap.Error(err))
			return nil, err
		}
		return instance, nil
	}

	out, err := r.chain.Instantiate(ctx, key, name, parent, o.chain)
	if err != nil {
		r.logger.Warn("Asset instantiation failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	// Instance handles are owned by the instance's lifetime, not the cache:
	// no CachedAsset entry is created here, so nothing is retained.
	return out.Value, nil
}

// instantiateCached calls the sink with panic isolation; a sink fault is a
// retrievable failure, never a crash.
func (r *Resolver) instantiateCached(ctx context.Context, obj any, name string, parent any) (instance any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			instance = nil
			err = fmt.Errorf("sink panicked: %v", rec)
		}
	}()
	return r.sink.Instantiate(ctx, obj, name, parent)
}

// Release drops every table entry for key and politely releases the retained
// handle. Releasing an unknown or already-released key is a no-op.
func (r *Resolver) Release(key string) {
	if validateKey(key) != nil {
		return
	}
	r.mu.Lock()
	h := r.retained[key]
	delete(r.cached, key)
	delete(r.retained, key)
	// A preload still in flight loses its table entry here; its completion
	// check sees the entry gone and discards the result.
	delete(r.pending, key)
	r.mu.Unlock()

	if h != nil {
		h.Release()
	}
}

// ClearCache releases every retained handle and empties all tables. Safe to
// call on an empty resolver.
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	handles := make([]*handle.Handle, 0, len(r.retained))
	for _, h := range r.retained {
		handles = append(handles, h)
	}
	r.cached = make(map[string]any)
	r.retained = make(map[string]*handle.Handle)
	r.pending = make(map[string]*preloadTask)
	r.mu.Unlock()

	for _, h := range handles {
		h.Release()
	}
}

// IsLoaded reports whether key has a cached value.
func (r *Resolver) IsLoaded(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cached[key]
	return ok
}

// IsLoading reports whether a preload for key is still in flight.
func (r *Resolver) IsLoading(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.pending[key]
	return ok && !task.finished.Load()
}

// Stats reports table sizes for the status surface.
type Stats struct {
	Cached  int `json:"cached"`
	Pending int `json:"pending"`
}

// CacheStats returns current table sizes.
func (r *Resolver) CacheStats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{Cached: len(r.cached), Pending: len(r.pending)}
}

// store writes a chain outcome into the tables, unless the world moved on: a
// reset since gen was snapshotted, or another writer already populated the
// key. In both cases the incoming handle is disposed instead of the tables
// changing.
func (r *Resolver) store(gen uint64, key string, out *provider.Outcome) {
	r.mu.Lock()
	if r.generation != gen {
		// Reset raced the load; the handle's resources are presumed gone, so
		// only flag it, never touch them.
		r.mu.Unlock()
		if out.Handle != nil {
			out.Handle.Invalidate()
		}
		return
	}
	if _, exists := r.cached[key]; exists {
		// Callers of one deduplicated flight all arrive here with the same
		// outcome; only dispose a handle that is not the retained one.
		retainedHere := out.Handle != nil && r.retained[key] == out.Handle
		r.mu.Unlock()
		if !retainedHere {
			releaseOutcome(out)
		}
		return
	}
	r.cached[key] = out.Value
	if out.Handle != nil {
		r.retained[key] = out.Handle
	}
	r.mu.Unlock()
}

func (r *Resolver) currentGeneration() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// releaseOutcome disposes a chain outcome that will not be retained.
func releaseOutcome(out *provider.Outcome) {
	if out != nil && out.Handle != nil {
		out.Handle.Release()
	}
}

// validateKey rejects empty and whitespace-only keys.
func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}
