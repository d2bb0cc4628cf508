package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FilesystemStore implements ArtifactStore on a single flat directory.
// File existence and mtime are the only state kept.
type FilesystemStore struct {
	basePath string
}

var _ ArtifactStore = (*FilesystemStore)(nil)

// NewFilesystemStore creates a filesystem-backed artifact store rooted at basePath
func NewFilesystemStore(basePath string) (*FilesystemStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &FilesystemStore{basePath: basePath}, nil
}

// Put writes the blob under the sanitized name inside the store root
func (fs *FilesystemStore) Put(ctx context.Context, name string, data io.Reader) (Artifact, error) {
	name = SanitizeName(name)
	if name == "" {
		return Artifact{}, ErrInvalidName
	}

	filePath := filepath.Join(fs.basePath, name)
	file, err := os.Create(filePath)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to create artifact file: %w", err)
	}

	size, err := io.Copy(file, data)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(filePath)
		return Artifact{}, fmt.Errorf("failed to write artifact data: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(filePath)
		return Artifact{}, fmt.Errorf("failed to close artifact file: %w", err)
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to stat artifact file: %w", err)
	}

	return Artifact{Name: name, Size: size, ModTime: info.ModTime()}, nil
}

// Open returns a reader over the artifact bytes
func (fs *FilesystemStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	name = SanitizeName(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	file, err := os.Open(filepath.Join(fs.basePath, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}

	return file, nil
}

// Stat returns artifact metadata
func (fs *FilesystemStore) Stat(ctx context.Context, name string) (Artifact, error) {
	name = SanitizeName(name)
	if name == "" {
		return Artifact{}, ErrInvalidName
	}

	info, err := os.Stat(filepath.Join(fs.basePath, name))
	if err != nil {
		if os.IsNotExist(err) {
			return Artifact{}, ErrNotFound
		}
		return Artifact{}, fmt.Errorf("failed to stat artifact: %w", err)
	}

	return Artifact{Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Exists reports whether the artifact exists
func (fs *FilesystemStore) Exists(ctx context.Context, name string) (bool, error) {
	_, err := fs.Stat(ctx, name)
	if err != nil {
		if err == ErrNotFound || err == ErrInvalidName {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes an artifact. Idempotent: a missing name is not an error.
func (fs *FilesystemStore) Delete(ctx context.Context, name string) error {
	name = SanitizeName(name)
	if name == "" {
		return nil
	}

	err := os.Remove(filepath.Join(fs.basePath, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}

	return nil
}

// List returns the current store contents. Subdirectories are ignored:
// the store keyspace is flat.
func (fs *FilesystemStore) List(ctx context.Context) ([]Artifact, error) {
	entries, err := os.ReadDir(fs.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage directory: %w", err)
	}

	artifacts := make([]Artifact, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return artifacts, nil
}

// Close is a no-op for filesystem storage
func (fs *FilesystemStore) Close() error {
	return nil
}
