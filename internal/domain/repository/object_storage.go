package repository

import "context"

// ObjectStorage - внешнее файловое хранилище (локальный диск или S3).
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
