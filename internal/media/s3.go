package media

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// S3Store writes objects to an S3-compatible bucket
type S3Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewS3Store connects to endpoint. publicURL is the base objects are linked from;
// when empty it is derived from the endpoint and bucket.
func NewS3Store(endpoint, accessKey, secretKey, bucket string, useSSL bool, publicURL string) (*S3Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	if publicURL == "" {
		publicURL = client.EndpointURL().String() + "/" + bucket
	}
	return &S3Store{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return err
	}
	logrus.WithField("bucket", s.bucket).Info("Created media bucket")
	return nil
}

// Put uploads body under key. size may be -1 when unknown.
func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if size <= 0 {
		size = -1
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return s.publicURL + "/" + key, nil
}

// Remove deletes key from the bucket
func (s *S3Store) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
