package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage хранит файлы на диске и отдаёт их через статический маршрут.
type LocalStorage struct {
	rootPath       string
	publicBaseURL  string
	maxUploadBytes int64
}

// NewLocalStorage создаёт файловое хранилище.
func NewLocalStorage(rootPath, publicBaseURL string, maxUploadMB int64) (*LocalStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &LocalStorage{
		rootPath:       rootPath,
		publicBaseURL:  strings.TrimRight(publicBaseURL, "/"),
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

func (s *LocalStorage) Root() string {
	return s.rootPath
}

// Upload пишет во временный файл и переименовывает, чтобы читатели
// не увидели недописанный файл.
func (s *LocalStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.maxUploadBytes > 0 && int64(len(data)) > s.maxUploadBytes {
		return "", fmt.Errorf("storage: размер файла превышает лимит %d байт", s.maxUploadBytes)
	}

	target, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("storage: не удалось создать каталог: %w", err)
	}

	tempPath := target + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: ошибка записи файла: %w", err)
	}
	if err := os.Rename(tempPath, target); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return s.publicBaseURL + "/" + cleanKey(key), nil
}

// Delete удаляет файл, отсутствие файла не ошибка.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

func (s *LocalStorage) resolve(key string) (string, error) {
	clean := cleanKey(key)
	if clean == "" || clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("storage: недопустимый ключ %q", key)
	}
	return filepath.Join(s.rootPath, filepath.FromSlash(clean)), nil
}

// cleanKey нормализует ключ объекта к относительному пути со слэшами.
func cleanKey(key string) string {
	key = strings.ReplaceAll(key, "\\", "/")
	return strings.TrimPrefix(path.Clean("/"+key), "/")
}
