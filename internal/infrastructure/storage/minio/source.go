// Package minio loads snapshot data from an S3-compatible object store,
// letting a batch pipeline publish new vocabulary snapshots as objects.
package minio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/lexicon-health/lexicon/internal/config"
	"github.com/lexicon-health/lexicon/internal/snapshot"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// Connect creates a MinIO client for cfg.
func Connect(cfg config.MinIOConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeExternalService, "cannot create object store client")
	}
	return client, nil
}

// Source loads a JSON snapshot object from a bucket.
type Source struct {
	client *minio.Client
	bucket string
	object string
}

// NewSource creates an object-store-backed snapshot source.
func NewSource(client *minio.Client, bucket, object string) *Source {
	return &Source{client: client, bucket: bucket, object: object}
}

// Load implements snapshot.Source.
func (s *Source) Load(ctx context.Context) (*snapshot.Data, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSnapshotLoadFailed,
			fmt.Sprintf("cannot fetch snapshot object %s/%s", s.bucket, s.object))
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSnapshotLoadFailed,
			fmt.Sprintf("cannot read snapshot object %s/%s", s.bucket, s.object))
	}

	var data snapshot.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSnapshotInvalid,
			fmt.Sprintf("snapshot object %s/%s is not valid JSON", s.bucket, s.object))
	}
	return &data, nil
}
