package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/config"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const presignExpiry = 15 * time.Minute

// EvidenceStore hands out presigned URLs for quotation / receipt evidence.
// The upload itself happens client-side against MinIO; the engine only
// stores the resulting references.
type EvidenceStore struct {
	client *minio.Client
	bucket string
}

func NewEvidenceStore(cfg config.MinIOConfig) (*EvidenceStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("conectar a minio: %w", err)
	}
	return &EvidenceStore{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the evidence bucket if it does not exist yet.
func (s *EvidenceStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

// PresignedUpload returns a PUT URL for a new evidence object plus the
// object key the client should reference afterwards.
func (s *EvidenceStore) PresignedUpload(ctx context.Context, orderID, filename string) (uploadURL, objectKey string, err error) {
	objectKey = fmt.Sprintf("quotations/%s/%s%s", orderID, uuid.New().String()[:8], path.Ext(filename))
	u, err := s.client.PresignedPutObject(ctx, s.bucket, objectKey, presignExpiry)
	if err != nil {
		return "", "", fmt.Errorf("generar URL de carga: %w", err)
	}
	return u.String(), objectKey, nil
}

// PresignedDownload returns a GET URL for an existing evidence object.
func (s *EvidenceStore) PresignedDownload(ctx context.Context, objectKey string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, presignExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("generar URL de descarga: %w", err)
	}
	return u.String(), nil
}
