// Package storage archives run summaries in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
)

// ObjectPutter is the part of the S3 client the report store needs
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ ObjectPutter = (*s3.Client)(nil)

// Config configures the report bucket
type Config struct {
	Bucket    string
	Prefix    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	// UsePathStyle is required by most self-hosted S3 servers (MinIO, RustFS)
	UsePathStyle bool
}

// ReportStore uploads one JSON document per run
type ReportStore struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *zap.Logger
}

// ReportStoreOption is a functional option for ReportStore
type ReportStoreOption func(*ReportStore)

// WithLogger sets a custom logger for ReportStore
func WithLogger(logger *zap.Logger) ReportStoreOption {
	return func(s *ReportStore) {
		s.logger = logger
	}
}

// WithClient replaces the S3 client
func WithClient(client ObjectPutter) ReportStoreOption {
	return func(s *ReportStore) {
		s.client = client
	}
}

// NewReportStore creates a store backed by an S3 client built from cfg.
// An empty endpoint uses AWS S3.
func NewReportStore(ctx context.Context, cfg Config, opts ...ReportStoreOption) (*ReportStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	store := &ReportStore{
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.client != nil {
		return store, nil
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	store.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return store, nil
}

// Name implements the run reporter contract
func (s *ReportStore) Name() string {
	return "s3"
}

// Key returns the object key of a run: <prefix><platform>/<yyyy>/<mm>/<dd>/<run id>.json
func (s *ReportStore) Key(summary *integration.RunSummary) string {
	day := summary.StartedAt.UTC().Format("2006/01/02")
	platform := strings.ToLower(string(summary.Platform))
	return s.prefix + path.Join(platform, day, summary.RunID.String()+".json")
}

// Report uploads the summary as indented JSON
func (s *ReportStore) Report(ctx context.Context, summary *integration.RunSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encoding run summary: %w", err)
	}

	key := s.Key(summary)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("storage: uploading %s: %w", key, err)
	}

	s.logger.Debug("run report uploaded", zap.String("bucket", s.bucket), zap.String("key", key))
	return nil
}
