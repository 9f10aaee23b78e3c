package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"docsummarizer/internal/domain"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/notification"
)

const (
	defaultRegion = "us-east-1"

	ObjectCreatedEvents = "s3:ObjectCreated:*"
)

// MinioConfig encapsulates the connection info for S3-compatible storage.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// MinioStorage implements ObjectStorage on top of minio-go. The client is
// created once per process and shared by every invocation.
type MinioStorage struct {
	client *minio.Client
}

// NewMinioStorage builds the storage client. Without static keys the usual
// AWS/MinIO environment, credentials file and IAM chain is used.
func NewMinioStorage(cfg MinioConfig) (*MinioStorage, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimSuffix(endpoint, "/")
	if endpoint == "" {
		return nil, errors.New("storage endpoint must be provided")
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = defaultRegion
	}

	var creds *credentials.Credentials
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.EnvMinio{},
			&credentials.FileAWSCredentials{},
			&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
		})
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client (endpoint = %s): %w", endpoint, err)
	}

	return &MinioStorage{client: client}, nil
}

func (s *MinioStorage) GetObject(ctx context.Context, ref domain.ObjectRef) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, ref.Bucket, ref.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object (bucket = %s, key = %s): %w", ref.Bucket, ref.Key, err)
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object (bucket = %s, key = %s): %w", ref.Bucket, ref.Key, err)
	}

	return body, nil
}

func (s *MinioStorage) PutObject(
	ctx context.Context,
	ref domain.ObjectRef,
	body []byte,
	contentType string,
) error {
	_, err := s.client.PutObject(
		ctx,
		ref.Bucket,
		ref.Key,
		bytes.NewReader(body),
		int64(len(body)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return fmt.Errorf("put object (bucket = %s, key = %s): %w", ref.Bucket, ref.Key, err)
	}

	return nil
}

func (s *MinioStorage) ListObjects(
	ctx context.Context,
	bucket string,
	prefix string,
) ([]ObjectInfo, error) {
	var results []ObjectInfo

	for obj := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects (bucket = %s, prefix = %s): %w", bucket, prefix, obj.Err)
		}

		results = append(results, ObjectInfo{Key: obj.Key, Size: obj.Size})
	}

	return results, nil
}

// Listen subscribes to object-created notifications of bucket. The channel
// is closed when ctx is done.
func (s *MinioStorage) Listen(
	ctx context.Context,
	bucket string,
	prefix string,
) <-chan notification.Info {
	return s.client.ListenBucketNotification(ctx, bucket, prefix, "", []string{ObjectCreatedEvents})
}

var _ ObjectStorage = (*MinioStorage)(nil)
