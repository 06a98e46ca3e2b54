package ports

import (
	"context"
	"io"
)

// FileStorage определяет интерфейс для работы с файловым хранилищем (AWS S3, MinIO).
// Ядро хранит только непрозрачные ключи, URL строится в момент сборки ответа.
type FileStorage interface {
	// UploadFile сохраняет файл в папку folder и возвращает сгенерированный ключ
	UploadFile(ctx context.Context, folder string, reader io.Reader, size int64, contentType string) (string, error)
	// FileURL строит публичный URL для ключа
	FileURL(key string) string
	// GetFile дает domain.ErrNotFound, если объекта нет в хранилище
	GetFile(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteFile(ctx context.Context, key string) error
}

// ImageMeta: метаданные декодированного изображения
type ImageMeta struct {
	Width       int
	Height      int
	Format      string
	ContentType string
	Color       string
}

// ImageInspector декодирует загруженные изображения
type ImageInspector interface {
	// Inspect возвращает domain.ErrInvalidMedia, если данные не декодируются как изображение
	Inspect(data []byte) (ImageMeta, error)
	// Thumbnail уменьшает изображение до ширины width (JPEG)
	Thumbnail(data []byte, width int) ([]byte, error)
}
