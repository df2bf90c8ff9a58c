package matching

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
)

const maxParallelUploads = 4

// Photo - уже проверенное изображение из формы.
type Photo struct {
	Data        []byte
	ContentType string
	Extension   string
}

type uploadedPhoto struct {
	key string
	url string
}

// PhotoUploader загружает фотографии объявления до любых записей в базу.
type PhotoUploader struct {
	storage repository.ObjectStorage
}

func NewPhotoUploader(storage repository.ObjectStorage) *PhotoUploader {
	return &PhotoUploader{storage: storage}
}

// Upload возвращает ссылки в порядке входных фотографий. При ошибке уже
// загруженные объекты удаляются.
func (u *PhotoUploader) Upload(ctx context.Context, prefix string, photos []Photo) ([]uploadedPhoto, error) {
	if len(photos) == 0 {
		return nil, nil
	}

	results := make([]uploadedPhoto, len(photos))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)

	for i, photo := range photos {
		i, photo := i, photo
		g.Go(func() error {
			if len(photo.Data) == 0 {
				return fmt.Errorf("photo %d is empty", i)
			}
			key := fmt.Sprintf("%s/%s.%s", prefix, uuid.NewString(), photo.Extension)
			url, err := u.storage.Upload(gCtx, key, photo.Data, photo.ContentType)
			if err != nil {
				return fmt.Errorf("uploading photo %d: %w", i, err)
			}
			results[i] = uploadedPhoto{key: key, url: url}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		u.Cleanup(context.WithoutCancel(ctx), results)
		return nil, apperror.Upload(err, "не удалось загрузить фотографии")
	}

	return results, nil
}

// Cleanup удаляет загруженные объекты, ошибки только логируются.
func (u *PhotoUploader) Cleanup(ctx context.Context, uploaded []uploadedPhoto) {
	for _, p := range uploaded {
		if p.key == "" {
			continue
		}
		if err := u.storage.Delete(ctx, p.key); err != nil {
			logger.Log.WithError(err).WithField("key", p.key).Warn("matching: не удалось удалить фотографию")
		}
	}
}

func photoURLs(uploaded []uploadedPhoto) []string {
	urls := make([]string, 0, len(uploaded))
	for _, p := range uploaded {
		urls = append(urls, p.url)
	}
	return urls
}
