// Package blobstore provides storage abstraction for saved models.
//
// BlobStore is the interface for reading and writing named blobs. A saved
// model is one blob; it is written sequentially through Create and read
// sequentially through Open. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with atomic rename on commit
//   - MemoryStore: In-process map, for tests
//   - s3.Store: Amazon S3 with multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)            // Open for reading
//	    Create(ctx, name) (WritableBlob, error)  // Create for writing
//	    Put(ctx, name, data) error               // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// A WritableBlob becomes visible to Open only after Close succeeds. Abort
// discards everything written so far.
package blobstore
