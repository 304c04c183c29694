// Package blobstore publishes and fetches recordings.
//
// A recording is a single file (a SQLite database). BlobStore moves whole
// files between the local disk and a storage backend.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests
//   - LocalStore: a directory on the local file system
//   - s3.Store: Amazon S3 with multipart uploads
//   - minio.Store: MinIO and other S3-compatible storage
package blobstore
