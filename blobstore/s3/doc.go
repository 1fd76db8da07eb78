// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("models/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	info, err := persistence.Save(ctx, store, "ranker.jsonl.zst", m,
//	    func(o *persistence.Options) { o.Compression = persistence.CompressionZstd })
//
// # Features
//
//   - Multipart uploads for large models
//   - Optional CRC32C integrity checks on upload
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
