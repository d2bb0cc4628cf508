package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/saqibaltaf27/Convertly/server/config"
)

// Storage sentinel errors
var (
	// ErrNotFound is returned when no artifact with the given name exists
	ErrNotFound = errors.New("artifact not found")

	// ErrInvalidName is returned when sanitization yields an empty name
	ErrInvalidName = errors.New("invalid artifact name")
)

// Artifact describes a stored blob. Artifacts are immutable once written;
// they are only ever deleted, never rewritten.
type Artifact struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Age returns the time elapsed since the artifact was written
func (a Artifact) Age(now time.Time) time.Duration {
	return now.Sub(a.ModTime)
}

// ArtifactStore is a flat, directory-backed content area keyed by generated
// names. There is no separate index: store contents and modification times
// are the state. Concurrent Puts with distinct names are independent; the
// naming scheme is relied upon to avoid same-name writes.
type ArtifactStore interface {
	// Put writes the blob under the sanitized name and returns its metadata.
	// A partially written artifact is removed on failure.
	Put(ctx context.Context, name string, data io.Reader) (Artifact, error)

	// Open returns a reader over the artifact bytes. Returns ErrNotFound
	// when the name does not exist. Path traversal outside the store root
	// is impossible regardless of input.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Stat returns artifact metadata, or ErrNotFound
	Stat(ctx context.Context, name string) (Artifact, error)

	// Exists reports whether an artifact with the given name exists
	Exists(ctx context.Context, name string) (bool, error)

	// Delete removes an artifact. Deleting a nonexistent name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the current store contents
	List(ctx context.Context) ([]Artifact, error)

	// Close releases provider resources
	Close() error
}

// NewArtifactStore creates a store from configuration, keyed by provider
func NewArtifactStore(cfg *config.StorageConfig) (ArtifactStore, error) {
	switch cfg.Provider {
	case "filesystem":
		return NewFilesystemStore(cfg.BasePath)
	case "minio":
		return NewMinIOStore(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.BucketName, cfg.UseSSL)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}
