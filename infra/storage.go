package infra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/phnam/docnest-upload-service/config"
)

// ErrObjectNotFound is returned by read operations when no object exists
// at the requested key.
var ErrObjectNotFound = errors.New("object not found")

// S3Client wraps an S3-compatible store behind the narrow capability set the
// upload orchestrator needs: byte writes/reads, deletes, and signed URLs.
// Presigned PUT URLs are an administrative option; callers must branch on
// PresignedUploadsEnabled rather than assume one upload transport.
type S3Client struct {
	Client   *minio.Client
	Endpoint string
	Bucket   string

	publicDomain       string
	usePresignedUpload bool
}

func InitS3Client(cfg *config.EnvConfig) *S3Client {
	endpoint := cfg.S3.Endpoint
	if endpoint == "" {
		panic("S3 endpoint is not configured")
	}

	if cfg.S3.Bucket == "" {
		panic("S3 bucket is not configured")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, ""),
		Secure: cfg.S3.UseSSL,
		Region: cfg.S3.Region,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize S3 client: %v", err))
	}

	return &S3Client{
		Client:             client,
		Endpoint:           endpoint,
		Bucket:             cfg.S3.Bucket,
		publicDomain:       cfg.S3.PublicDomain,
		usePresignedUpload: cfg.S3.UsePresignedUpload,
	}
}

// Write stores data at key, overwriting any existing object.
func (s *S3Client) Write(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	_, err := s.Client.PutObject(ctx, s.Bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}

	return nil
}

// Read returns the full content of the object at key.
func (s *S3Client) Read(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	obj, err := s.Client.GetObject(ctx, s.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("object %s: %w", key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	return data, nil
}

// ReadText returns the object content decoded as a string.
func (s *S3Client) ReadText(ctx context.Context, key string) (string, error) {
	data, err := s.Read(ctx, key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Delete removes the object at key. Removing a missing key is not an error.
func (s *S3Client) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if err := s.Client.RemoveObject(ctx, s.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}

	return nil
}

// DeleteMany removes each key best effort; there is no atomicity across keys.
func (s *S3Client) DeleteMany(ctx context.Context, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stat returns object metadata, or ErrObjectNotFound when the key is absent.
func (s *S3Client) Stat(ctx context.Context, key string) (minio.ObjectInfo, error) {
	info, err := s.Client.StatObject(ctx, s.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return minio.ObjectInfo{}, fmt.Errorf("object %s: %w", key, ErrObjectNotFound)
		}
		return minio.ObjectInfo{}, fmt.Errorf("failed to stat object %s: %w", key, err)
	}
	return info, nil
}

// SignedReadURL returns a time-limited GET URL for key. The object is not
// checked for existence; the URL may 404 at use time.
func (s *S3Client) SignedReadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key cannot be empty")
	}

	signed, err := s.Client.PresignedGetObject(ctx, s.Bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign read for %s: %w", key, err)
	}

	return s.rewritePublicURL(signed), nil
}

// SignedWriteURL returns a time-limited PUT URL for key, or "" when presigned
// uploads are administratively disabled.
func (s *S3Client) SignedWriteURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if !s.usePresignedUpload {
		return "", nil
	}
	if key == "" {
		return "", fmt.Errorf("key cannot be empty")
	}

	signed, err := s.Client.PresignedPutObject(ctx, s.Bucket, key, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to presign write for %s: %w", key, err)
	}

	return s.rewritePublicURL(signed), nil
}

// PresignedUploadsEnabled is a pure configuration read.
func (s *S3Client) PresignedUploadsEnabled() bool {
	return s.usePresignedUpload
}

// rewritePublicURL swaps the signed URL's scheme and host for the public
// domain when one is configured (MinIO behind a reverse proxy).
func (s *S3Client) rewritePublicURL(signed *url.URL) string {
	if s.publicDomain == "" {
		return signed.String()
	}

	public, err := url.Parse(s.publicDomain)
	if err != nil || public.Host == "" {
		return signed.String()
	}

	signed.Scheme = public.Scheme
	signed.Host = public.Host
	return signed.String()
}
