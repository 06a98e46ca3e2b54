package domain

import (
	"time"

	"github.com/google/uuid"
)

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID                uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Username          string    `json:"username" db:"username" gorm:"uniqueIndex"`
	Email             string    `json:"email" db:"email" gorm:"uniqueIndex"`
	PasswordHash      string    `json:"-" db:"password_hash"`
	Name              *string   `json:"name,omitempty" db:"name"`
	Bio               *string   `json:"bio,omitempty" db:"bio"`
	Location          *string   `json:"location,omitempty" db:"location"`
	PortfolioURL      *string   `json:"portfolio_url,omitempty" db:"portfolio_url"`
	InstagramUsername *string   `json:"instagram_username,omitempty" db:"instagram_username"`
	TwitterUsername   *string   `json:"twitter_username,omitempty" db:"twitter_username"`
	ProfileImageKey   *string   `json:"profile_image_key,omitempty" db:"profile_image_key"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserStats содержит производные счетчики профиля
type UserStats struct {
	PhotosCount      int64 `json:"photos_count" db:"photos_count"`
	CollectionsCount int64 `json:"collections_count" db:"collections_count"`
	FollowersCount   int64 `json:"followers_count" db:"followers_count"`
	FollowingCount   int64 `json:"following_count" db:"following_count"`
}

// ProfilePatch описывает частичное обновление профиля, семантика как у PhotoPatch
type ProfilePatch struct {
	Name              *string `json:"name"`
	Bio               *string `json:"bio"`
	Location          *string `json:"location"`
	PortfolioURL      *string `json:"portfolio_url"`
	InstagramUsername *string `json:"instagram_username"`
	TwitterUsername   *string `json:"twitter_username"`
}

// Apply применяет заданные поля патча к пользователю
func (p ProfilePatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = p.Name
	}
	if p.Bio != nil {
		u.Bio = p.Bio
	}
	if p.Location != nil {
		u.Location = p.Location
	}
	if p.PortfolioURL != nil {
		u.PortfolioURL = p.PortfolioURL
	}
	if p.InstagramUsername != nil {
		u.InstagramUsername = p.InstagramUsername
	}
	if p.TwitterUsername != nil {
		u.TwitterUsername = p.TwitterUsername
	}
}
