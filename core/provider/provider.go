package provider

import (
	"context"
	"errors"
	"fmt"

	"asset-resolver/core/handle"
)

// ErrNotFound indicates that a provider does not have the requested key.
var ErrNotFound = errors.New("asset not found")

// Provider is a synchronous asset source. The local fallback provider
// implements this shape.
type Provider interface {
	// Name identifies the provider in logs and error messages.
	Name() string
	// Load fetches the asset for key without instantiation.
	Load(ctx context.Context, key string) (any, error)
}

// AsyncProvider is an asset source accessed through asynchronous operations.
// The remote bundle provider implements this shape; every operation returns a
// handle that completes independently of the caller.
type AsyncProvider interface {
	Name() string
	// LoadAsync starts fetching the asset for key.
	LoadAsync(ctx context.Context, key string) *handle.Handle
	// InstantiateAsync fetches the asset and creates a live instance, applying
	// the optional name and parent attachment.
	InstantiateAsync(ctx context.Context, key, name string, parent any) *handle.Handle
}

// Sink produces a live instance from a loaded asset. It is the embedding
// application's object-graph manager, an external collaborator of the
// resolution core.
type Sink interface {
	Instantiate(ctx context.Context, obj any, name string, parent any) (any, error)
}

// Blob is the default materialized asset value: the raw object bytes plus the
// content type the store reported.
type Blob struct {
	Key         string
	Data        []byte
	ContentType string
}

// Materializer turns fetched bytes into the object that gets cached. Embedding
// applications supply their own to decode bundles into domain types.
type Materializer interface {
	Materialize(key string, data []byte, contentType string) (any, error)
}

// MaterializeFunc adapts a function to the Materializer interface.
type MaterializeFunc func(key string, data []byte, contentType string) (any, error)

func (f MaterializeFunc) Materialize(key string, data []byte, contentType string) (any, error) {
	return f(key, data, contentType)
}

// BlobMaterializer is the default Materializer; it wraps the bytes in a Blob.
type BlobMaterializer struct{}

func (BlobMaterializer) Materialize(key string, data []byte, contentType string) (any, error) {
	return &Blob{Key: key, Data: data, ContentType: contentType}, nil
}

// notFound wraps ErrNotFound with the provider and key for log output.
func notFound(provider, key string) error {
	return fmt.Errorf("%s: %q: %w", provider, key, ErrNotFound)
}
