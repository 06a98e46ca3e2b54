package app

import (
	"context"
	"fmt"
)

// runWorker потребляет события photo.uploaded и строит миниатюры до отмены ctx
func (a *App) runWorker(ctx context.Context) error {
	if err := a.consumer.StartConsumingPhotoUploaded(ctx, a.thumbnails.Process); err != nil {
		return fmt.Errorf("start RabbitMQ consumer: %w", err)
	}

	a.logger.Info("worker started, waiting for photo.uploaded events",
		"thumbnail_width", a.Config.ThumbnailWidth,
	)

	<-ctx.Done()
	a.logger.Info("shutdown signal received, stopping worker")
	return nil
}
