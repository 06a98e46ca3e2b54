package domain

import (
	"time"

	"github.com/google/uuid"
)

// Collection представляет подборку фотографий пользователя,
// соответствует таблице collections в бд
type Collection struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	IsPrivate   bool      `json:"is_private" db:"is_private"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (c *Collection) IsOwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && c.UserID == userID
}

// VisibleTo: приватная подборка видна только владельцу
func (c *Collection) VisibleTo(viewerID uuid.UUID) bool {
	return !c.IsPrivate || c.IsOwnedBy(viewerID)
}

// CollectionPatch описывает частичное обновление подборки
type CollectionPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsPrivate   *bool   `json:"is_private"`
}

// Apply применяет заданные поля патча к подборке
func (p CollectionPatch) Apply(c *Collection) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = p.Description
	}
	if p.IsPrivate != nil {
		c.IsPrivate = *p.IsPrivate
	}
}

// CollectionMembers содержит сводку по составу подборки:
// первые ключи изображений в порядке добавления и общее число фото
type CollectionMembers struct {
	CoverKeys   []string
	PhotosCount int64
}
