package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config is the bucket uploaded food photos are kept in.
type S3Config struct {
	Client     *s3.Client
	BucketName string

	presign *s3.PresignClient
}

// NewS3Config builds an S3 client from the default AWS credential chain.
// It returns nil without error when no bucket is configured.
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	if cfg.S3BucketName == "" {
		return nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Config{
		Client:     client,
		BucketName: cfg.S3BucketName,
		presign:    s3.NewPresignClient(client),
	}, nil
}

// PresignedGetURL returns a time-limited download link for objectKey.
func (s *S3Config) PresignedGetURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error) {
	presign := s.presign
	if presign == nil {
		presign = s3.NewPresignClient(s.Client)
	}
	req, err := presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", objectKey, err)
	}
	return req.URL, nil
}
