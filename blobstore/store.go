package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore stores named immutable blobs.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Put stores the content of r as name. size is -1 when unknown.
	Put(ctx context.Context, name string, r io.Reader, size int64) error
	// Get opens name for reading.
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	// Delete removes name. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// UploadFile stores the local file at path as name.
func UploadFile(ctx context.Context, bs BlobStore, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if err := bs.Put(ctx, name, f, info.Size()); err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return nil
}

// DownloadFile writes blob name to the local file at path. The file is
// written to a temporary name first and renamed when complete.
func DownloadFile(ctx context.Context, bs BlobStore, name, path string) error {
	rc, err := bs.Get(ctx, name)
	if err != nil {
		return err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.part")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to download %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
