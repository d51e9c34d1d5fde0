package resolver

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// preloadTask tracks one in-flight background load. finished flips before the
// table entry is removed so IsLoading never reports a completed task as live.
type preloadTask struct {
	done     chan struct{}
	finished atomic.Bool
}

// Preload starts a background load for key and returns without waiting. A key
// that is already cached, or already has an unfinished preload, is a no-op:
// at most one background load runs per key. The background task cannot be
// cancelled once started; it runs to completion or failure.
func (r *Resolver) Preload(ctx context.Context, key string, opts ...Option) error {
	if err := validateKey(key); err != nil {
		r.logger.Warn("Rejected asset key", zap.String("key", key))
		return err
	}
	o := buildOptions(opts)

	r.mu.Lock()
	if _, ok := r.cached[key]; ok {
		r.mu.Unlock()
		return nil
	}
	if task, ok := r.pending[key]; ok && !task.finished.Load() {
		r.mu.Unlock()
		return nil
	}
	task := &preloadTask{done: make(chan struct{})}
	r.pending[key] = task
	gen := r.generation
	r.mu.Unlock()

	// Detach from the caller's cancellation: an in-flight load is never
	// cancelled, only declined up front.
	go r.runPreload(context.WithoutCancel(ctx), key, task, gen, o)
	return nil
}

// runPreload is the background task body. The deferred block is the
// guaranteed-cleanup path: whatever happens (success, failure, panic), the
// task marks itself finished and removes its own pending entry.
func (r *Resolver) runPreload(ctx context.Context, key string, task *preloadTask, gen uint64, o callOptions) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Preload panicked", zap.String("key", key), zap.Any("panic", rec))
		}
		task.finished.Store(true)
		close(task.done)
		r.mu.Lock()
		if r.pending[key] == task {
			delete(r.pending, key)
		}
		r.mu.Unlock()
	}()

	out, err := r.chain.Load(ctx, key, o.chain)
	if err != nil {
		r.logger.Warn("Preload failed", zap.String("key", key), zap.Error(err))
		return
	}

	// Marshal the write back through the table lock. The result is discarded
	// if a reset happened mid-flight or the key was released while loading.
	r.mu.Lock()
	if r.generation != gen {
		// The environment reloaded under us; the handle's resources are
		// presumed gone, so only flag it, never touch them.
		r.mu.Unlock()
		if out.Handle != nil {
			out.Handle.Invalidate()
		}
		return
	}
	stale := r.pending[key] != task
	if !stale {
		if _, exists := r.cached[key]; !exists {
			r.cached[key] = out.Value
			if out.Handle != nil {
				r.retained[key] = out.Handle
			}
			out = nil
		}
	}
	r.mu.Unlock()

	releaseOutcome(out)
}
