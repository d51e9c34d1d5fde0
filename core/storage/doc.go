// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a read-only interface: the asset
// resolver never mutates the bundle store, so only retrieval operations are
// exposed. This abstraction supports both AWS S3 and self-hosted MinIO
// instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it
// easy to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists: Verifies access to the target bucket.
//   - GetObject: Retrieves content as a stream.
//   - StatObject: Retrieves object metadata without the payload.
//   - ListObjects: Lists objects in a bucket (supports prefix/recursive).
package storage
