package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API - используемая часть клиента S3.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Storage struct {
	client        S3API
	bucket        string
	publicBaseURL string
}

// NewS3Storage берёт учётные данные из стандартной цепочки AWS.
func NewS3Storage(ctx context.Context, bucket, region, publicBaseURL string) (*S3Storage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage: S3_BUCKET_NAME не задан")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось загрузить конфигурацию AWS: %w", err)
	}

	return NewS3StorageWithClient(s3.NewFromConfig(cfg), bucket, region, publicBaseURL), nil
}

func NewS3StorageWithClient(client S3API, bucket, region, publicBaseURL string) *S3Storage {
	base := strings.TrimRight(publicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3Storage{client: client, bucket: bucket, publicBaseURL: base}
}

func (s *S3Storage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key = cleanKey(key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("storage: s3 put %s: %w", key, err)
	}
	return s.publicBaseURL + "/" + key, nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	key = cleanKey(key)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: s3 delete %s: %w", key, err)
	}
	return nil
}
