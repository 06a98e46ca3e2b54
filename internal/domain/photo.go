package domain

import (
	"time"

	"github.com/google/uuid"
)

// Photo представляет модель фотографии в системе,
// соответствует таблице photos в бд
type Photo struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	Title          string    `json:"title" db:"title"`
	Description    *string   `json:"description,omitempty" db:"description"`
	ImageKey       string    `json:"image_key" db:"image_key"`
	ThumbnailKey   *string   `json:"thumbnail_key,omitempty" db:"thumbnail_key"`
	Width          int       `json:"width" db:"width"`
	Height         int       `json:"height" db:"height"`
	FileSize       int64     `json:"file_size" db:"file_size"`
	Color          *string   `json:"color,omitempty" db:"color"`
	ViewsCount     int64     `json:"views_count" db:"views_count"`
	DownloadsCount int64     `json:"downloads_count" db:"downloads_count"`
	LikesCount     int64     `json:"likes_count" db:"likes_count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
	Tags           []Tag     `json:"tags,omitempty" db:"-"`
}

// IsOwnedBy сообщает, является ли пользователь владельцем фото
func (p *Photo) IsOwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && p.UserID == userID
}

// TagNames возвращает имена тегов в порядке хранения
func (p *Photo) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}

// Tag представляет модель тега,
// соответствует таблице tags в бд
type Tag struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}

// PhotoTag представляет связующую модель для отношения Many-to-Many между Photo и Tag,
// соответствует таблице photo_tags в бд
type PhotoTag struct {
	PhotoID uuid.UUID `json:"photo_id" db:"photo_id"`
	TagID   uuid.UUID `json:"tag_id" db:"tag_id"`
}

// PhotoPatch описывает частичное обновление фото.
// nil означает "не менять", непустой указатель (даже на "") перезаписывает значение.
// Tags != nil полностью заменяет набор тегов.
type PhotoPatch struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}
