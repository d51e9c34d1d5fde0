package resolver

import "asset-resolver/core/provider"

// Option adjusts a single resolution call.
type Option func(*callOptions)

type callOptions struct {
	cache bool
	chain provider.Options
}

func buildOptions(opts []Option) callOptions {
	o := callOptions{chain: provider.DefaultOptions()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithCache stores the resolved value (and its bundle handle, when one was
// produced) for subsequent lookups.
func WithCache() Option {
	return func(o *callOptions) { o.cache = true }
}

// WithoutFallback restricts the walk to the primary provider.
func WithoutFallback() Option {
	return func(o *callOptions) { o.chain.TryFallback = false }
}

// WithFallbackFirst consults the local fallback before the bundle store.
func WithFallbackFirst() Option {
	return func(o *callOptions) {
		o.chain.PrimaryFirst = false
		o.chain.TryFallback = true
	}
}
