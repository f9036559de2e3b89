package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"apivro/internal/config"
	"apivro/internal/domain/ports/adapter"
)

var _ adapter.ObjectStorage = (*S3Storage)(nil)

// s3API is the subset of *s3.Client we use, so tests can fake it.
type s3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage uploads public objects to an S3-compatible bucket.
type S3Storage struct {
	client    s3API
	bucket    string
	publicURL string
}

// NewS3Storage builds a path-style client so custom endpoints work.
func NewS3Storage(ctx context.Context, cfg config.S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket empty")
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})
	return newS3Storage(client, cfg), nil
}

func newS3Storage(client s3API, cfg config.S3Config) *S3Storage {
	public := cfg.PublicURL
	if public == "" {
		public = cfg.Endpoint
	}
	return &S3Storage{client: client, bucket: cfg.Bucket, publicURL: strings.TrimRight(public, "/")}
}

// Put uploads body as a public-read object and returns endpoint/bucket/key.
func (s *S3Storage) Put(ctx context.Context, key string, body []byte, contentType string, meta map[string]string) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", errors.New("empty object key")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		Metadata:      meta,
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.objectURL(key), nil
}

func (s *S3Storage) objectURL(key string) string {
	segs := strings.Split(key, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return s.publicURL + "/" + s.bucket + "/" + strings.Join(segs, "/")
}
