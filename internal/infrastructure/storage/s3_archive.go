// Package storage archives generated bank files in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	appsettlement "github.com/JKrishnaV/WPFGrowerApp-sub001/internal/application/settlement"
	infraconfig "github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrArchiveUnavailable is returned while the breaker is open
var ErrArchiveUnavailable = errors.New("bank file archive unavailable")

// objectAPI is the subset of the S3 client the archive uses
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3Archive stores bank files under a key prefix in one bucket. Uploads run
// behind a circuit breaker so a storage outage fails confirmations fast
// instead of holding every request for the full timeout.
type S3Archive struct {
	client        objectAPI
	bucket        string
	prefix        string
	uploadTimeout time.Duration
	breaker       *gobreaker.CircuitBreaker
	logger        *zap.Logger
}

// S3ArchiveOption is a functional option for S3Archive
type S3ArchiveOption func(*S3Archive)

// WithLogger sets the archive logger
func WithLogger(logger *zap.Logger) S3ArchiveOption {
	return func(a *S3Archive) {
		a.logger = logger
	}
}

// NewS3Archive builds an S3 client from cfg. Static credentials are used when
// an access key is configured, otherwise the default AWS credential chain.
func NewS3Archive(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3ArchiveOption) (*S3Archive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
		return nil, errors.New("storage access key and secret must be set together")
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3Archive(client, cfg, opts...), nil
}

func newS3Archive(client objectAPI, cfg *infraconfig.StorageConfig, opts ...S3ArchiveOption) *S3Archive {
	a := &S3Archive{
		client:        client,
		bucket:        cfg.Bucket,
		prefix:        strings.Trim(cfg.Prefix, "/"),
		uploadTimeout: cfg.UploadTimeout,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	a.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "bank-file-archive",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// a caller giving up is not a storage fault
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			a.logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return a
}

// Archive uploads content under the archive prefix and returns its s3:// URI
func (a *S3Archive) Archive(ctx context.Context, key string, content []byte) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", errors.New("archive key is required")
	}
	objectKey := key
	if a.prefix != "" {
		objectKey = path.Join(a.prefix, key)
	}

	_, err := a.breaker.Execute(func() (interface{}, error) {
		uctx := ctx
		if a.uploadTimeout > 0 {
			var cancel context.CancelFunc
			uctx, cancel = context.WithTimeout(ctx, a.uploadTimeout)
			defer cancel()
		}
		return a.client.PutObject(uctx, &s3.PutObjectInput{
			Bucket:        aws.String(a.bucket),
			Key:           aws.String(objectKey),
			Body:          bytes.NewReader(content),
			ContentLength: aws.Int64(int64(len(content))),
			ContentType:   aws.String("text/plain"),
		})
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %v", ErrArchiveUnavailable, err)
	}
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}

	ref := "s3://" + a.bucket + "/" + objectKey
	a.logger.Info("Bank file archived", zap.String("reference", ref), zap.Int("bytes", len(content)))
	return ref, nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (a *S3Archive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}

	a.logger.Info("Creating archive bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// State reports the breaker state, for health checks
func (a *S3Archive) State() string {
	return a.breaker.State().String()
}

var _ appsettlement.BankFileArchive = (*S3Archive)(nil)
