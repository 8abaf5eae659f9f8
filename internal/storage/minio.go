package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Storage struct {
	client *minio.Client
	bucket string
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type FileInfo struct {
	Key      string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

func NewStorage(ctx context.Context, config *Config) (*Storage, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	s := &Storage{
		client: client,
		bucket: config.Bucket,
	}

	exists, err := client.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, err
	}

	if !exists {
		err = client.MakeBucket(ctx, config.Bucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Storage) Bucket() string {
	return s.bucket
}

// Exists stats the object at key. A missing object is not an error.
func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", key, err)
}

// Download copies the object at key to localPath, creating parent directories.
func (s *Storage) Download(ctx context.Context, key, localPath string) error {
	if err := s.client.FGetObject(ctx, s.bucket, key, localPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("failed to download %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

func (s *Storage) GetDownloadUrl(ctx context.Context, key string, duration time.Duration) (string, error) {
	presignedUrl, err := s.client.PresignedGetObject(
		ctx,
		s.bucket,
		key,
		duration,
		url.Values{},
	)
	if err != nil {
		return "", err
	}

	return presignedUrl.String(), nil
}

func (s *Storage) ListFiles(ctx context.Context, prefix string) ([]FileInfo, error) {
	objects := s.client.ListObjects(
		ctx,
		s.bucket,
		minio.ListObjectsOptions{Prefix: strings.TrimSuffix(prefix, "/") + "/", Recursive: true},
	)

	files := make([]FileInfo, 0)
	for obj := range objects {
		if obj.Err != nil {
			return nil, obj.Err
		}

		files = append(files, FileInfo{
			Key:      obj.Key,
			Size:     obj.Size,
			Modified: obj.LastModified,
		})
	}

	return files, nil
}

// IsNotFound reports whether err is the store's "no such object" answer.
func IsNotFound(err error) bool {
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		resp = minio.ToErrorResponse(err)
	}
	switch resp.Code {
	case "NoSuchKey", "NoSuchObject":
		return true
	}
	return resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket"
}
