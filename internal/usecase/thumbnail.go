package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/GoArmGo/PhotoHub/internal/core/ports"
	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/GoArmGo/PhotoHub/internal/messaging/payloads"
)

// ThumbnailProcessor строит миниатюры для загруженных фото, вызывается воркером
type ThumbnailProcessor struct {
	photos ports.PhotoStorage
	files  ports.FileStorage
	images ports.ImageInspector
	width  int
	logger *slog.Logger
}

func NewThumbnailProcessor(
	photos ports.PhotoStorage,
	files ports.FileStorage,
	images ports.ImageInspector,
	width int,
	logger *slog.Logger,
) *ThumbnailProcessor {
	return &ThumbnailProcessor{photos: photos, files: files, images: images, width: width, logger: logger}
}

// Process обрабатывает событие photo.uploaded. Повторная доставка и удаленное фото
// не считаются ошибкой, иначе сообщение будет переотправляться бесконечно.
func (p *ThumbnailProcessor) Process(ctx context.Context, event payloads.PhotoUploadedPayload) error {
	start := time.Now()

	if event.Width > 0 && event.Width <= p.width {
		p.logger.Debug("photo is narrower than thumbnail, skipping", "photo_id", event.PhotoID, "width", event.Width)
		return nil
	}

	photo, err := p.photos.GetPhotoByID(ctx, event.PhotoID)
	if errors.Is(err, domain.ErrNotFound) {
		p.logger.Warn("photo deleted before thumbnail was built", "photo_id", event.PhotoID)
		return nil
	}
	if err != nil {
		return err
	}
	if photo.ThumbnailKey != nil {
		return nil
	}

	original, err := p.files.GetFile(ctx, photo.ImageKey)
	if errors.Is(err, domain.ErrNotFound) {
		p.logger.Warn("original object is missing, skipping", "photo_id", photo.ID, "key", photo.ImageKey)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch original: %w", err)
	}
	data, err := io.ReadAll(original)
	original.Close()
	if err != nil {
		return fmt.Errorf("read original: %w", err)
	}

	thumb, err := p.images.Thumbnail(data, p.width)
	if errors.Is(err, domain.ErrInvalidMedia) {
		p.logger.Warn("stored photo is not decodable, skipping", "photo_id", photo.ID, "error", err)
		return nil
	}
	if err != nil {
		return err
	}

	key, err := p.files.UploadFile(ctx, ThumbnailsFolder, bytes.NewReader(thumb), int64(len(thumb)), "image/jpeg")
	if err != nil {
		return fmt.Errorf("upload thumbnail: %w", err)
	}

	if err := p.photos.SetThumbnail(ctx, photo.ID, key); err != nil {
		if delErr := p.files.DeleteFile(ctx, key); delErr != nil {
			p.logger.Warn("failed to delete orphaned thumbnail", "key", key, "error", delErr)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	p.logger.Info("thumbnail generated",
		"photo_id", photo.ID,
		"key", key,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
