package ports

import (
	"context"

	"github.com/GoArmGo/PhotoHub/internal/messaging/payloads"
)

// PhotoEventPublisher публикует события жизненного цикла фото.
// Используется каталогом фото после успешной загрузки.
type PhotoEventPublisher interface {
	PublishPhotoUploaded(ctx context.Context, payload payloads.PhotoUploadedPayload) error
}

// PhotoEventConsumer определяет методы для потребления событий о фото
// будет использоваться воркером для генерации миниатюр
type PhotoEventConsumer interface {
	// StartConsumingPhotoUploaded начинает прослушивание очереди;
	// handler вызывается для каждого полученного сообщения
	StartConsumingPhotoUploaded(ctx context.Context, handler func(context.Context, payloads.PhotoUploadedPayload) error) error
}
