package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/http/middleware"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/storage"
)

const megabyte = 1 << 20

var errNoUser = errors.New("user_id не найден в контексте")

func getUserID(c *gin.Context) (uuid.UUID, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return uuid.Nil, errNoUser
	}
	return userID, nil
}

// uploadedImage - прочитанный и проверенный по магическим байтам файл формы.
type uploadedImage struct {
	data []byte
	info storage.ImageInfo
}

// readImage читает файл формы не больше maxBytes и проверяет, что это изображение.
func readImage(fh *multipart.FileHeader, maxBytes int64) (*uploadedImage, error) {
	if fh.Size == 0 {
		return nil, apperror.Validation("файл не может быть пустым")
	}
	if fh.Size > maxBytes {
		return nil, apperror.Validation(fmt.Sprintf("файл %s больше %d МБ", fh.Filename, maxBytes/megabyte))
	}

	src, err := fh.Open()
	if err != nil {
		return nil, apperror.Validation("не удалось прочитать файл")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return nil, apperror.Validation("не удалось прочитать файл")
	}
	if int64(len(data)) > maxBytes {
		return nil, apperror.Validation(fmt.Sprintf("файл %s больше %d МБ", fh.Filename, maxBytes/megabyte))
	}

	info, err := storage.DetectImage(data)
	if err != nil {
		return nil, apperror.Validation("разрешены только изображения jpeg, png, gif и webp")
	}
	return &uploadedImage{data: data, info: info}, nil
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
