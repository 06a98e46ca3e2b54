package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/PhotoHub/internal/database/client"
	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserStorage реализует интерфейс ports.UserStorage с использованием GORM
type GormUserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormUserStorage создает новый экземпляр GormUserStorage
func NewGormUserStorage(db *gorm.DB, logger *slog.Logger) *GormUserStorage {
	return &GormUserStorage{db: db, logger: logger}
}

// CreateUser сохраняет нового пользователя; занятые username/email дают domain.ErrConflict
func (s *GormUserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if client.IsUniqueViolation(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Warn("user already exists", "username", user.Username)
			return fmt.Errorf("user %s: %w", user.Username, domain.ErrConflict)
		}
		s.logger.Error("failed to create user", "username", user.Username, "error", err)
		return fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user created",
		"user_id", user.ID,
		"username", user.Username,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetUserByID получает пользователя по ID
func (s *GormUserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.first(ctx, "id = ?", id)
}

// GetUserByUsername получает пользователя по имени
func (s *GormUserStorage) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.first(ctx, "username = ?", username)
}

func (s *GormUserStorage) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("user not found", "lookup", query, "value", arg)
			return nil, fmt.Errorf("user %v: %w", arg, domain.ErrNotFound)
		}
		s.logger.Error("failed to get user", "lookup", query, "error", err)
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// GetUsersByIDs загружает пользователей пачкой для сборки ответов списков
func (s *GormUserStorage) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.User, error) {
	out := make(map[uuid.UUID]domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []domain.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		s.logger.Error("failed to load users", "count", len(ids), "error", err)
		return nil, fmt.Errorf("get users by ids: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (s *GormUserStorage) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, "username = ?", username)
}

func (s *GormUserStorage) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, "email = ?", email)
}

func (s *GormUserStorage) exists(ctx context.Context, query string, arg any) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where(query, arg).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

// UpdateUser сохраняет изменяемые поля профиля
func (s *GormUserStorage) UpdateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()
	user.UpdatedAt = time.Now().UTC()

	result := s.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"name":               user.Name,
			"bio":                user.Bio,
			"location":           user.Location,
			"portfolio_url":      user.PortfolioURL,
			"instagram_username": user.InstagramUsername,
			"twitter_username":   user.TwitterUsername,
			"profile_image_key":  user.ProfileImageKey,
			"updated_at":         user.UpdatedAt,
		})
	if result.Error != nil {
		s.logger.Error("failed to update user", "user_id", user.ID, "error", result.Error)
		return fmt.Errorf("update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	}

	s.logger.Info("user updated", "user_id", user.ID, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
