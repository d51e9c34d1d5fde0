// Package resolver implements the process-wide asset resolution cache, the
// preload scheduler, and the environment-reload reset hook.
//
// # Resolution
//
// TryGet resolves a key through the provider chain and optionally caches the
// result. The caller-facing API is blocking even though the primary provider
// is asynchronous: the chain waits on the bundle handle internally. Concurrent
// identical loads collapse into a single provider walk via singleflight.
//
// Every read path type-checks the value against the caller's requested type.
// A mismatch is a retrievable failure (ErrTypeMismatch) that never evicts or
// alters the existing entry: poisoning the cache by requesting the wrong type
// is caller error, and the entry stays authoritative for callers that ask
// correctly.
//
// # Ownership
//
// The resolver exclusively owns the cached values, the retained bundle
// handles, and the pending preload table. A retained handle exists exactly as
// long as its cache entry. Release and ClearCache dispose handles politely;
// Reset only invalidates them, because after an environment reload the
// resources behind them are presumed already destroyed.
//
// # Preloading
//
// Preload starts at most one background load per key and returns immediately.
// The task removes its own pending entry through a deferred cleanup path on
// every outcome, and marshals its cache write back through the table lock. A
// generation counter snapshot makes loads that straddle a Reset discard their
// results instead of repopulating cleared tables.
package resolver
