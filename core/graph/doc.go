// Package graph is a minimal object-graph manager used as the instantiation
// sink for resolved assets.
//
// It maintains a tree of named nodes, each holding a reference to the asset it
// was instantiated from. The resolution core only depends on the Sink
// interface; this package is one embedding of it.
package graph
