// Package provider implements the ordered asset provider chain.
//
// Two provider shapes exist. The BundleProvider is the primary source: it
// resolves keys against the remote bundle store through asynchronous handle
// returning operations, consulting the catalog for key to object-name mapping.
// The LocalProvider is the fallback: a synchronous read of resources packaged
// alongside the application.
//
// # Chain
//
// The Chain walks its providers in the order the caller requests (primary
// first by default) and returns the first successful result. Each attempt is
// fault-isolated: a panic or invalid-handle condition inside one provider is
// converted into that provider's failure and the walk continues. The chain
// holds no state between calls; a winning primary handle is surfaced in the
// Outcome for the resolution cache to retain.
//
// # Materialization
//
// Providers hand fetched bytes to a Materializer, which produces the value
// that gets cached. The default wraps the bytes in a Blob; embedding
// applications install their own to decode domain types.
package provider
