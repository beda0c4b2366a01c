package adapter

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/ruturajs19/chat-app/internal/infrastructure/storage/port"
)

// S3Config configures S3Storage.
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKeyID   string
	SecretKey     string
	UsePathStyle  bool
	PublicBaseURL string
}

// S3Storage stores chat images in an S3 compatible bucket.
type S3Storage struct {
	cfg      S3Config
	client   *s3.Client
	log      zerolog.Logger
	disabled bool
}

func NewS3Storage(ctx context.Context, cfg S3Config, log zerolog.Logger) (*S3Storage, error) {
	logger := log.With().Str("component", "s3-storage").Logger()
	cfg.Bucket = strings.TrimSpace(cfg.Bucket)
	storage := &S3Storage{cfg: cfg, log: logger}

	if cfg.Bucket == "" {
		logger.Warn().Msg("S3_BUCKET is not set; image messages will be rejected")
		storage.disabled = true
		return storage, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	storage.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return storage, nil
}

var _ port.ObjectStore = (*S3Storage)(nil)

func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if s.disabled {
		return "", port.ErrDisabled
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.publicURL(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if s.disabled {
		return port.ErrDisabled
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// Health checks the bucket is reachable. A disabled store is healthy.
func (s *S3Storage) Health(ctx context.Context) error {
	if s.disabled {
		return nil
	}
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.cfg.Bucket)})
	return err
}

func (s *S3Storage) publicURL(key string) string {
	return objectURL(s.cfg, key)
}

func objectURL(cfg S3Config, key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/") + "/" + escaped
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket + "/" + escaped
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.Bucket, cfg.Region, escaped)
	}
}
