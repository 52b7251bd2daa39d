package outputs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds explicit construction parameters. From the command
// line we normally go through OpenS3FromEnv.
type S3Config struct {
	Bucket          string
	Prefix          string // prepended to every name, no leading or trailing /
	Region          string // default us-east-1
	Endpoint        string // optional, for MinIO and friends
	AccessKeyID     string // optional, falls back to the default chain
	SecretAccessKey string
	PathStyle       bool
	HTTPClient      *http.Client // optional, tests swap the transport
}

// Environment variables:
//
//	SGSIM_S3_REGION=<region> (default us-east-1)
//	SGSIM_S3_ENDPOINT=<url> (optional)
//	SGSIM_S3_PATH_STYLE=true|false (default false)
//	AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / AWS_SESSION_TOKEN (optional)

// S3 uploads each file as one object when it is closed.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// ParseS3URL splits s3://bucket/some/prefix.
func ParseS3URL(u string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(u, s3Scheme) {
		return "", "", fmt.Errorf("%q is not an s3:// url", u)
	}
	rest := strings.TrimPrefix(u, s3Scheme)
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("no bucket in %q", u)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

// NewS3 builds the client.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
	return &S3{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// OpenS3FromEnv takes the bucket and prefix from the url and the rest
// from the environment.
func OpenS3FromEnv(ctx context.Context, u string) (*S3, error) {
	bucket, prefix, err := ParseS3URL(u)
	if err != nil {
		return nil, err
	}
	return NewS3(ctx, S3Config{
		Bucket:    bucket,
		Prefix:    prefix,
		Region:    os.Getenv("SGSIM_S3_REGION"),
		Endpoint:  os.Getenv("SGSIM_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("SGSIM_S3_PATH_STYLE"), "true"),
	})
}

func (s *S3) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// s3File collects everything and puts it in one go on Close.
type s3File struct {
	bytes.Buffer
	ctx    context.Context
	s      *S3
	key    string
	closed bool
}

func (f *s3File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	_, err := f.s.client.PutObject(f.ctx, &s3.PutObjectInput{
		Bucket:      aws.String(f.s.bucket),
		Key:         aws.String(f.key),
		Body:        bytes.NewReader(f.Bytes()),
		ContentType: aws.String(contentType(f.key)),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", f.s.bucket, f.key, err)
	}
	return nil
}

func (s *S3) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	return &s3File{ctx: ctx, s: s, key: s.key(name)}, nil
}

func (s *S3) Describe() string { return s3Scheme + path.Join(s.bucket, s.prefix) }

func contentType(key string) string {
	if strings.HasSuffix(key, ".gz") {
		return "application/gzip"
	}
	return "text/plain"
}
