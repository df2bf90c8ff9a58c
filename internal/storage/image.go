package storage

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/h2non/filetype"
)

var ErrNotImage = errors.New("storage: файл не является поддерживаемым изображением")

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ImageInfo - результат проверки загруженного изображения.
type ImageInfo struct {
	MIME      string
	Extension string
	Width     int
	Height    int
}

// DetectImage определяет тип по магическим байтам, расширение файла не учитывается.
func DetectImage(data []byte) (ImageInfo, error) {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return ImageInfo{}, ErrNotImage
	}

	ext, ok := allowedImageTypes[kind.MIME.Value]
	if !ok {
		return ImageInfo{}, ErrNotImage
	}

	info := ImageInfo{MIME: kind.MIME.Value, Extension: ext}

	// Размеры известны не для всех форматов (webp без декодера), тогда нули.
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		info.Width = cfg.Width
		info.Height = cfg.Height
	}
	return info, nil
}
