package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStore implements ArtifactStore on a MinIO/S3 bucket. The flat
// keyspace maps directly to object names; object LastModified stands in
// for the filesystem mtime.
type MinIOStore struct {
	client     *minio.Client
	bucketName string
}

var _ ArtifactStore = (*MinIOStore)(nil)

// NewMinIOStore creates a MinIO-backed artifact store, ensuring the bucket exists
func NewMinIOStore(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOStore{client: client, bucketName: bucketName}, nil
}

// Put stores the blob as an object under the sanitized name
func (m *MinIOStore) Put(ctx context.Context, name string, data io.Reader) (Artifact, error) {
	name = SanitizeName(name)
	if name == "" {
		return Artifact{}, ErrInvalidName
	}

	info, err := m.client.PutObject(ctx, m.bucketName, name, data, -1, minio.PutObjectOptions{})
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to store artifact in MinIO: %w", err)
	}

	return m.Stat(ctx, info.Key)
}

// Open returns a reader over the object bytes
func (m *MinIOStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	name = SanitizeName(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	// GetObject is lazy; stat first so a missing object surfaces as ErrNotFound
	if _, err := m.Stat(ctx, name); err != nil {
		return nil, err
	}

	object, err := m.client.GetObject(ctx, m.bucketName, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve artifact from MinIO: %w", err)
	}

	return object, nil
}

// Stat returns object metadata
func (m *MinIOStore) Stat(ctx context.Context, name string) (Artifact, error) {
	name = SanitizeName(name)
	if name == "" {
		return Artifact{}, ErrInvalidName
	}

	info, err := m.client.StatObject(ctx, m.bucketName, name, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return Artifact{}, ErrNotFound
		}
		return Artifact{}, fmt.Errorf("failed to stat artifact in MinIO: %w", err)
	}

	return Artifact{Name: name, Size: info.Size, ModTime: info.LastModified}, nil
}

// Exists reports whether the object exists
func (m *MinIOStore) Exists(ctx context.Context, name string) (bool, error) {
	_, err := m.Stat(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidName) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes an object. Idempotent: MinIO treats removal of a missing
// key as success.
func (m *MinIOStore) Delete(ctx context.Context, name string) error {
	name = SanitizeName(name)
	if name == "" {
		return nil
	}

	if err := m.client.RemoveObject(ctx, m.bucketName, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete artifact from MinIO: %w", err)
	}

	return nil
}

// List returns the current bucket contents
func (m *MinIOStore) List(ctx context.Context) ([]Artifact, error) {
	var artifacts []Artifact

	for object := range m.client.ListObjects(ctx, m.bucketName, minio.ListObjectsOptions{}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list artifacts in MinIO: %w", object.Err)
		}
		artifacts = append(artifacts, Artifact{
			Name:    object.Key,
			Size:    object.Size,
			ModTime: object.LastModified,
		})
	}

	return artifacts, nil
}

// Close closes the MinIO connection
func (m *MinIOStore) Close() error {
	return nil
}
