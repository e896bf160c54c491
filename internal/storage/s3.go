package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/redmarwoest/cp-automation-script/internal/infra"
)

// S3Options configures the S3-compatible bucket uploader.
type S3Options struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	UseSSL        bool
	PublicBaseURL string
	PresignTTL    time.Duration
	Logger        *infra.Logger
}

// S3Uploader stores files in an S3-compatible bucket through the MinIO client.
type S3Uploader struct {
	opts   S3Options
	logger *infra.Logger

	mu     sync.Mutex
	client *minio.Client
}

// NewS3Uploader applies defaults to opts. The client is created on first use
// so missing settings surface as upload errors.
func NewS3Uploader(opts S3Options) *S3Uploader {
	opts.Endpoint = strings.TrimSpace(opts.Endpoint)
	opts.Bucket = strings.TrimSpace(opts.Bucket)
	opts.PublicBaseURL = strings.TrimRight(strings.TrimSpace(opts.PublicBaseURL), "/")
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = 7 * 24 * time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &S3Uploader{opts: opts, logger: logger}
}

func (s *S3Uploader) Name() string { return "s3" }

func (s *S3Uploader) missing() error {
	for _, kv := range [][2]string{
		{"S3_ENDPOINT", s.opts.Endpoint},
		{"S3_ACCESS_KEY", s.opts.AccessKey},
		{"S3_SECRET_KEY", s.opts.SecretKey},
		{"S3_BUCKET", s.opts.Bucket},
	} {
		if err := infra.RequireValue(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

func (s *S3Uploader) minioClient() (*minio.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}
	if err := s.missing(); err != nil {
		return nil, err
	}
	client, err := minio.New(s.opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s.opts.AccessKey, s.opts.SecretKey, ""),
		Secure: s.opts.UseSSL,
		Region: s.opts.Region,
	})
	if err != nil {
		return nil, err
	}
	s.client = client
	return client, nil
}

func (s *S3Uploader) Upload(ctx context.Context, req Request) (*Result, error) {
	key := cleanRemotePath(req.RemotePath)
	if key == "" {
		return nil, &UploadError{Service: s.Name(), Err: errors.New("remote path is required")}
	}
	f, info, err := openLocal(s.Name(), req.LocalPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	client, err := s.minioClient()
	if err != nil {
		return nil, &UploadError{Service: s.Name(), Err: err}
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = ContentTypeFor(req.LocalPath)
	}

	uploaded, err := client.PutObject(ctx, s.opts.Bucket, key, f, info.Size(), minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		return nil, &UploadError{Service: s.Name(), StatusCode: resp.StatusCode, Body: resp.Message, Err: err}
	}

	link, err := s.link(ctx, client, key)
	if err != nil {
		return nil, &UploadError{Service: s.Name(), Err: err}
	}
	s.logger.Info().
		Str("bucket", s.opts.Bucket).
		Str("key", key).
		Int64("bytes", uploaded.Size).
		Msg("storage: uploaded to s3")
	return &Result{RemotePath: key, DownloadURL: link, Zone: s.opts.Bucket}, nil
}

func (s *S3Uploader) link(ctx context.Context, client *minio.Client, key string) (string, error) {
	if public := s.PublicURL(key); public != "" {
		return public, nil
	}
	u, err := client.PresignedGetObject(ctx, s.opts.Bucket, key, s.opts.PresignTTL, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// PublicURL returns the unsigned link for key, or "" when no public base URL
// is configured.
func (s *S3Uploader) PublicURL(key string) string {
	if s.opts.PublicBaseURL == "" {
		return ""
	}
	return s.opts.PublicBaseURL + "/" + escapePath(cleanRemotePath(key))
}

func (s *S3Uploader) Check(ctx context.Context) []string {
	if err := s.missing(); err != nil {
		return []string{err.Error()}
	}
	client, err := s.minioClient()
	if err != nil {
		return []string{err.Error()}
	}
	ok, err := client.BucketExists(ctx, s.opts.Bucket)
	switch {
	case err != nil:
		return []string{"s3 bucket check failed: " + err.Error()}
	case !ok:
		return []string{"s3 bucket " + s.opts.Bucket + " does not exist"}
	}
	return nil
}
