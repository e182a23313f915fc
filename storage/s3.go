package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"land_alert/config"
)

// SnapshotStore uploads the raw markup of challenge-blocked pages to
// S3-compatible storage so blocks can be inspected after the fact.
type SnapshotStore struct {
	client *s3.Client
	bucket string
}

func NewSnapshotStore(ctx context.Context, cfg config.S3Config) (*SnapshotStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		// DO Spaces, R2 and friends want path-style addressing.
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &SnapshotStore{client: client, bucket: cfg.Bucket}, nil
}

// SaveBlockedPage stores the markup under a date-bucketed key derived
// from the URL fingerprint and returns the key.
func (s *SnapshotStore) SaveBlockedPage(ctx context.Context, fingerprint, markup string) (string, error) {
	key := fmt.Sprintf("blocked/%s/%s.html", time.Now().UTC().Format("2006-01-02"), fingerprint)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(markup),
		ContentType: aws.String("text/html; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot %s: %w", key, err)
	}

	return key, nil
}
