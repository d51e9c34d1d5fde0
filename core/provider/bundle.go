package provider

import (
	"context"
	"fmt"
	"io"

	"asset-resolver/core/catalog"
	"asset-resolver/core/handle"
	"asset-resolver/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// BundleProvider resolves keys against the remote bundle store. All operations
// are asynchronous: they return immediately with a handle that completes when
// the fetch finishes. A panic anywhere in the fetch path fails the handle
// instead of escaping the provider boundary.
type BundleProvider struct {
	client  storage.Client
	bucket  string
	catalog *catalog.Catalog
	mat     Materializer
	sink    Sink
	logger  *zap.Logger
}

// NewBundleProvider creates a bundle provider. cat and sink are optional: with
// no catalog, keys map to object names by convention; with no sink,
// InstantiateAsync fails. A nil mat defaults to BlobMaterializer.
func NewBundleProvider(client storage.Client, bucket string, cat *catalog.Catalog, sink Sink, mat Materializer, logger *zap.Logger) *BundleProvider {
	if mat == nil {
		mat = BlobMaterializer{}
	}
	return &BundleProvider{
		client:  client,
		bucket:  bucket,
		catalog: cat,
		mat:     mat,
		sink:    sink,
		logger:  logger,
	}
}

// Name returns the name of the provider.
func (p *BundleProvider) Name() string {
	return "bundle"
}

// LoadAsync starts fetching the asset for key from the bundle store.
func (p *BundleProvider) LoadAsync(ctx context.Context, key string) *handle.Handle {
	h := handle.New()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				h.Fail(fmt.Errorf("bundle load panicked for %q: %v", key, r))
			}
		}()
		obj, err := p.fetch(ctx, key)
		if err != nil {
			h.Fail(err)
			return
		}
		h.Complete(obj)
	}()
	return h
}

// InstantiateAsync fetches the asset for key and creates a live instance
// through the configured sink.
func (p *BundleProvider) InstantiateAsync(ctx context.Context, key, name string, parent any) *handle.Handle {
	h := handle.New()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				h.Fail(fmt.Errorf("bundle instantiate panicked for %q: %v", key, r))
			}
		}()
		if p.sink == nil {
			h.Fail(fmt.Errorf("bundle provider has no instantiation sink"))
			return
		}
		obj, err := p.fetch(ctx, key)
		if err != nil {
			h.Fail(err)
			return
		}
		instance, err := p.sink.Instantiate(ctx, obj, name, parent)
		if err != nil {
			h.Fail(fmt.Errorf("instantiate %q: %w", key, err))
			return
		}
		h.Complete(instance)
	}()
	return h
}

// fetch resolves the key to an object name, downloads it, and materializes the
// cached value.
func (p *BundleProvider) fetch(ctx context.Context, key string) (any, error) {
	objectName, contentType := p.resolve(ctx, key)

	reader, err := p.client.GetObject(ctx, p.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, p.mapError(key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, p.mapError(key, err)
	}

	obj, err := p.mat.Materialize(key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("materialize %q: %w", key, err)
	}
	return obj, nil
}

// resolve maps a logical key to its object name via the catalog. A missing or
// failing catalog falls back to the key-as-object-name convention; the catalog
// is an optimization, never a hard dependency.
func (p *BundleProvider) resolve(ctx context.Context, key string) (objectName, contentType string) {
	if p.catalog == nil {
		return key, ""
	}
	entry, err := p.catalog.Lookup(ctx, key)
	if err != nil {
		p.logger.Warn("Catalog lookup failed, using key as object name",
			zap.String("key", key), zap.Error(err))
		return key, ""
	}
	if entry == nil {
		return key, ""
	}
	return entry.ObjectName, entry.ContentType
}

// mapError converts storage-level errors into the provider error taxonomy.
func (p *BundleProvider) mapError(key string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return notFound(p.Name(), key)
	}
	return fmt.Errorf("bundle fetch %q: %w", key, err)
}
