package provider

import (
	"context"
	"fmt"

	"asset-resolver/core/handle"

	"go.uber.org/zap"
)

// Options controls the order in which the chain consults its providers.
type Options struct {
	// PrimaryFirst tries the bundle provider before the local fallback.
	PrimaryFirst bool
	// TryFallback enables the local fallback provider at all.
	TryFallback bool
}

// DefaultOptions is the common case: bundle first, fallback enabled.
func DefaultOptions() Options {
	return Options{PrimaryFirst: true, TryFallback: true}
}

// Result is the outcome of a single provider attempt. It is transient; the
// chain never stores one.
type Result struct {
	Value  any
	Handle *handle.Handle
	Err    error
}

// OK reports whether the attempt produced a value.
func (r Result) OK() bool {
	return r.Err == nil
}

// Outcome is the winning result of a chain walk. Handle is non-nil only when
// the primary provider produced the value; the caller owns it and must retain
// or release it.
type Outcome struct {
	Value  any
	Handle *handle.Handle
	Source string
}

// Chain consults providers in a fixed order until one produces a result. It is
// stateless between calls: no reference to a value or handle survives a walk
// except through the returned Outcome.
type Chain struct {
	primary  AsyncProvider
	fallback Provider
	sink     Sink
	logger   *zap.Logger
}

// NewChain creates a provider chain. fallback and sink are optional.
func NewChain(primary AsyncProvider, fallback Provider, sink Sink, logger *zap.Logger) *Chain {
	return &Chain{primary: primary, fallback: fallback, sink: sink, logger: logger}
}

// Load walks the chain for key and returns the first successful result. The
// wait on the primary provider's handle is blocking: callers get a synchronous
// answer over the asynchronous substrate.
func (c *Chain) Load(ctx context.Context, key string, opts Options) (*Outcome, error) {
	return c.walk(ctx, key, opts, func(ctx context.Context) Result {
		return c.attemptPrimary(ctx, key)
	}, func(ctx context.Context) Result {
		return c.attemptFallback(ctx, key)
	})
}

// Instantiate walks the chain for key and instantiates the winning result.
func (c *Chain) Instantiate(ctx context.Context, key, name string, parent any, opts Options) (*Outcome, error) {
	return c.walk(ctx, key, opts, func(ctx context.Context) Result {
		return c.attemptPrimaryInstantiate(ctx, key, name, parent)
	}, func(ctx context.Context) Result {
		return c.attemptFallbackInstantiate(ctx, key, name, parent)
	})
}

type attempt func(ctx context.Context) Result

// walk runs the attempts in the order the options dictate; the first Ok result
// wins. Every failure is logged and absorbed so the next provider gets its
// turn.
func (c *Chain) walk(ctx context.Context, key string, opts Options, primary, fallback attempt) (*Outcome, error) {
	type source struct {
		name string
		run  attempt
	}

	var order []source
	if opts.PrimaryFirst {
		order = append(order, source{c.primaryName(), primary})
		if opts.TryFallback {
			order = append(order, source{c.fallbackName(), fallback})
		}
	} else {
		if opts.TryFallback {
			order = append(order, source{c.fallbackName(), fallback})
		}
		order = append(order, source{c.primaryName(), primary})
	}

	attempted := make([]string, 0, len(order))
	for _, s := range order {
		attempted = append(attempted, s.name)
		res := s.run(ctx)
		if res.OK() {
			return &Outcome{Value: res.Value, Handle: res.Handle, Source: s.name}, nil
		}
		c.logger.Warn("Provider attempt failed",
			zap.String("key", key),
			zap.String("provider", s.name),
			zap.Error(res.Err),
		)
	}
	return nil, fmt.Errorf("no provider resolved %q (attempted %v): %w", key, attempted, ErrNotFound)
}

func (c *Chain) attemptPrimary(ctx context.Context, key string) (res Result) {
	defer recoverAttempt(&res, "primary load")
	if c.primary == nil {
		res.Err = fmt.Errorf("no primary provider configured")
		return
	}
	h := c.primary.LoadAsync(ctx, key)
	res = awaitHandle(ctx, h)
	return
}

func (c *Chain) attemptPrimaryInstantiate(ctx context.Context, key, name string, parent any) (res Result) {
	defer recoverAttempt(&res, "primary instantiate")
	if c.primary == nil {
		res.Err = fmt.Errorf("no primary provider configured")
		return
	}
	h := c.primary.InstantiateAsync(ctx, key, name, parent)
	res = awaitHandle(ctx, h)
	return
}

func (c *Chain) attemptFallback(ctx context.Context, key string) (res Result) {
	defer recoverAttempt(&res, "fallback load")
	if c.fallback == nil {
		res.Err = fmt.Errorf("no fallback provider configured")
		return
	}
	v, err := c.fallback.Load(ctx, key)
	res = Result{Value: v, Err: err}
	return
}

func (c *Chain) attemptFallbackInstantiate(ctx context.Context, key, name string, parent any) (res Result) {
	defer recoverAttempt(&res, "fallback instantiate")
	if c.fallback == nil {
		res.Err = fmt.Errorf("no fallback provider configured")
		return
	}
	if c.sink == nil {
		res.Err = fmt.Errorf("no instantiation sink configured")
		return
	}
	v, err := c.fallback.Load(ctx, key)
	if err != nil {
		res.Err = err
		return
	}
	instance, err := c.sink.Instantiate(ctx, v, name, parent)
	res = Result{Value: instance, Err: err}
	return
}

// awaitHandle blocks until the handle completes, then reads its result. Both
// the wait and the read are soft-failing: an invalidated handle becomes a
// provider failure, not a crash.
func awaitHandle(ctx context.Context, h *handle.Handle) Result {
	if h == nil {
		return Result{Err: fmt.Errorf("provider returned nil handle")}
	}
	if err := h.Wait(ctx); err != nil {
		return Result{Err: err}
	}
	v, err := h.Result()
	if err != nil {
		return Result{Err: err}
	}
	if v == nil {
		return Result{Err: fmt.Errorf("provider returned nil result")}
	}
	return Result{Value: v, Handle: h}
}

// recoverAttempt converts a panic inside a provider attempt into that
// provider's failure.
func recoverAttempt(res *Result, stage string) {
	if r := recover(); r != nil {
		*res = Result{Err: fmt.Errorf("%s panicked: %v", stage, r)}
	}
}

func (c *Chain) primaryName() string {
	if c.primary != nil {
		return c.primary.Name()
	}
	return "primary"
}

func (c *Chain) fallbackName() string {
	if c.fallback != nil {
		return c.fallback.Name()
	}
	return "fallback"
}
