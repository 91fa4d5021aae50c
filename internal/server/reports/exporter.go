// Package reports uploads audit reports to S3-compatible object storage and
// hands out presigned download links.
package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/careervault/internal/server/audit"
	"github.com/dmitrijs2005/careervault/internal/timex"
)

// LinkTTL is the validity of presigned download links.
const LinkTTL = 15 * time.Minute

// Config addresses the bucket audits are stored in.
type Config struct {
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Endpoint  string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type urlPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Seams for tests.
var (
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return config.LoadDefaultConfig(ctx, optFns...)
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}
)

// Exporter writes audit JSON documents and presigns GET links for them.
type Exporter struct {
	bucket    string
	putter    objectPutter
	presigner urlPresigner
	now       timex.Clock
}

// NewExporter builds S3 clients for cfg. Path-style addressing keeps MinIO working.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("reports: bucket is required")
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &Exporter{
		bucket:    cfg.Bucket,
		putter:    client,
		presigner: newS3PresignClient(client),
		now:       timex.Now,
	}, nil
}

// StorageKey places a report under its vault and generation date.
func StorageKey(vaultID string, at time.Time) string {
	return fmt.Sprintf("audits/%s/%04d/%02d/%02d/%s.json", vaultID, at.Year(), at.Month(), at.Day(), uuid.New())
}

// Export uploads result and returns its key with a presigned GET URL.
func (e *Exporter) Export(ctx context.Context, result *audit.Result) (key, url string, err error) {
	if result == nil {
		return "", "", errors.New("reports: nil audit")
	}

	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("encode audit: %w", err)
	}

	key = StorageKey(result.VaultID, e.now())

	_, err = e.putter.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", "", fmt.Errorf("put object: %w", err)
	}

	req, err := e.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(LinkTTL))
	if err != nil {
		return "", "", fmt.Errorf("presign get: %w", err)
	}

	return key, req.URL, nil
}
