package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	apperrors "echoscribe/internal/app/errors"
	"echoscribe/internal/app/model"
)

// ObjectSaver persists transcripts to S3-compatible object storage for
// destinations of the form s3://bucket/key.
type ObjectSaver struct {
	client *minio.Client
}

// NewObjectSaverFromEnv builds an ObjectSaver from MINIO_* environment
// variables, mirroring how local deployments configure object storage.
func NewObjectSaverFromEnv() (*ObjectSaver, error) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	if accessKey == "" {
		accessKey = "minioadmin"
	}
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	if secretKey == "" {
		secretKey = "minioadmin"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage client: %w", err)
	}
	return &ObjectSaver{client: client}, nil
}

func (s *ObjectSaver) Save(ctx context.Context, result model.ProcessingResult, destination string) (string, error) {
	bucket, key, err := parseObjectDestination(destination)
	if err != nil {
		return "", err
	}
	if key == "" || strings.HasSuffix(key, "/") {
		key += DefaultFileName
	}

	data, err := json.MarshalIndent(Document{
		Source:   result.Source,
		Status:   result.Status,
		Segments: result.Segments,
	}, "", "  ")
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrPersistence, "encoding transcript")
	}

	_, err = s.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrPersistence, "uploading s3://%s/%s", bucket, key)
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}

func parseObjectDestination(destination string) (bucket, key string, err error) {
	u, err := url.Parse(destination)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return "", "", apperrors.Wrapf(apperrors.ErrPersistence, "invalid object destination %q", destination)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// Router dispatches a run's destination hint to the matching saver: object
// storage for s3:// destinations, the local filesystem otherwise.
type Router struct {
	File   Saver
	Object Saver
}

func NewRouter(file, object Saver) *Router {
	return &Router{File: file, Object: object}
}

func (r *Router) Save(ctx context.Context, result model.ProcessingResult, destination string) (string, error) {
	if strings.HasPrefix(destination, "s3://") {
		if r.Object == nil {
			return "", apperrors.Wrap(apperrors.ErrPersistence, "object storage is not configured")
		}
		return r.Object.Save(ctx, result, destination)
	}
	return r.File.Save(ctx, result, destination)
}
