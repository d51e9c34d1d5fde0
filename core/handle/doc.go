// Package handle provides the asynchronous load handle used by asset
// providers and retained by the resolution cache.
//
// A Handle completes exactly once (Complete or Fail) and can be waited on with
// a context. The accessors tolerate the operation behind the handle being torn
// down at any point: once a handle is Released or Invalidated, Status reports
// failure and Result returns ErrInvalid instead of dereferencing dead state.
//
// # Release vs Invalidate
//
// Release is the polite path: it runs the underlying cleanup function once,
// swallowing double-release and cleanup faults. Invalidate is the reset path:
// it only flips the validity flag, because after an environment reload the
// underlying resources are presumed already destroyed and touching them could
// fault.
package handle
