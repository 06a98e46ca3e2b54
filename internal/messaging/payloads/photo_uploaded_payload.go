package payloads

import "github.com/google/uuid"

// PhotoUploadedPayload представляет событие о загруженной фотографии,
// передаваемое через RabbitMQ воркеру миниатюр.
type PhotoUploadedPayload struct {
	PhotoID  uuid.UUID `json:"photo_id"`
	ImageKey string    `json:"image_key"`
	Width    int       `json:"width"`
}
