// Package assets exposes the resolution core over HTTP.
//
// The feature follows the handler/service split: the Service wraps the
// resolver and object graph, the Handler maps Fiber routes onto it.
//
// # Routes
//
//   - GET    /assets/{key}        fetch (resolve, cache, stream bytes)
//   - POST   /assets/preload      schedule a background load
//   - GET    /assets/status       cache state for a key
//   - POST   /assets/instantiate  create a named instance in the object graph
//   - DELETE /assets/{key}        release the cached entry
//   - DELETE /assets/cache        clear the whole cache
//   - GET    /assets/cache/stats  table sizes
package assets
