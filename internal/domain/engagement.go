package domain

import (
	"time"

	"github.com/google/uuid"
)

// Like: уникальное ребро (пользователь, фото)
type Like struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	PhotoID   uuid.UUID `json:"photo_id" db:"photo_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Follow: уникальное ребро (подписчик, автор)
type Follow struct {
	FollowerID  uuid.UUID `json:"follower_id" db:"follower_id"`
	FollowingID uuid.UUID `json:"following_id" db:"following_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Download: запись журнала скачиваний, никогда не удаляется и не дедуплицируется.
// UserID == nil для анонимного скачивания.
type Download struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	PhotoID   uuid.UUID  `json:"photo_id" db:"photo_id"`
	IPAddress string     `json:"ip_address" db:"ip_address"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
