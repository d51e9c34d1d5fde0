package handle

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrInvalid is returned by Result when the handle has been released or
	// invalidated by an environment reset.
	ErrInvalid = errors.New("handle is no longer valid")
	// ErrPending is returned by Result when the underlying operation has not
	// completed yet.
	ErrPending = errors.New("handle has not completed")
)

// Status describes the state of the underlying asynchronous operation.
type Status int

const (
	// StatusPending means the operation has not completed.
	StatusPending Status = iota
	// StatusSucceeded means the operation completed with a value.
	StatusSucceeded
	// StatusFailed means the operation completed with an error, or the handle
	// was invalidated.
	StatusFailed
)

// Handle wraps a provider's asynchronous load operation. It completes exactly
// once, can be waited on, and remains safe to query after the provider that
// issued it has been torn down: an invalidated handle reports failure from
// Result instead of panicking.
type Handle struct {
	mu       sync.Mutex
	done     chan struct{}
	status   Status
	value    any
	err      error
	invalid  bool
	released bool
	release  func() error
}

// New creates a pending handle.
func New() *Handle {
	return &Handle{done: make(chan struct{})}
}

// NewWithRelease creates a pending handle that runs release when Release is
// first called. The release function is best-effort; errors and panics from it
// are swallowed.
func NewWithRelease(release func() error) *Handle {
	return &Handle{done: make(chan struct{}), release: release}
}

// Completed returns a handle that is already resolved with v. Used when a
// cached value must be presented through the handle interface.
func Completed(v any) *Handle {
	h := New()
	h.Complete(v)
	return h
}

// Complete resolves the handle with a value. Only the first completion wins;
// later calls are no-ops so a provider shutting down mid-flight cannot corrupt
// an already-resolved handle.
func (h *Handle) Complete(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status != StatusPending {
		return
	}
	h.status = StatusSucceeded
	h.value = v
	close(h.done)
}

// Fail resolves the handle with an error. Only the first completion wins.
func (h *Handle) Fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status != StatusPending {
		return
	}
	h.status = StatusFailed
	h.err = err
	close(h.done)
}

// Wait blocks until the handle completes or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel closed when the handle completes. It allows select
// based awaiting without blocking a goroutine inside this package.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// IsValid reports whether the handle may still be dereferenced. A handle stops
// being valid once released or invalidated; callers must check this before
// trusting Result.
func (h *Handle) IsValid() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.invalid && !h.released
}

// Status returns the current status. An invalidated handle reports failure
// regardless of how the underlying operation ended.
func (h *Handle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.invalid || h.released {
		return StatusFailed
	}
	return h.status
}

// Result returns the value the operation produced. Accessing the result of an
// invalidated or released handle returns ErrInvalid, never panics; a pending
// handle returns ErrPending.
func (h *Handle) Result() (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.invalid || h.released {
		return nil, ErrInvalid
	}
	switch h.status {
	case StatusPending:
		return nil, ErrPending
	case StatusFailed:
		return nil, h.err
	default:
		return h.value, nil
	}
}

// Release frees the underlying operation's resources. It is idempotent:
// double release, release of an invalidated handle, and errors or panics from
// the underlying release function are all swallowed.
func (h *Handle) Release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	release := h.release
	invalid := h.invalid
	h.mu.Unlock()

	if release == nil || invalid {
		return
	}
	func() {
		defer func() { _ = recover() }()
		_ = release()
	}()
}

// Invalidate marks the handle unsafe to dereference without touching the
// underlying resources. Used after an environment reload, when the resources
// behind the handle are presumed already gone and releasing them could fault.
func (h *Handle) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.invalid = true
}
