package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// UserStatsStorage считает счетчики профиля агрегатами по таблицам,
// поэтому они всегда согласованы с ребрами follows и строками photos/collections
type UserStatsStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewUserStatsStorage(db *sqlx.DB, logger *slog.Logger) *UserStatsStorage {
	return &UserStatsStorage{db: db, logger: logger}
}

// GetUserStats возвращает число фото, подборок, подписчиков и подписок пользователя
func (s *UserStatsStorage) GetUserStats(ctx context.Context, userID uuid.UUID) (domain.UserStats, error) {
	start := time.Now()

	var stats domain.UserStats
	err := s.db.GetContext(ctx, &stats, `
	SELECT
		(SELECT COUNT(*) FROM photos WHERE user_id = $1)           AS photos_count,
		(SELECT COUNT(*) FROM collections WHERE user_id = $1)      AS collections_count,
		(SELECT COUNT(*) FROM follows WHERE following_id = $1)     AS followers_count,
		(SELECT COUNT(*) FROM follows WHERE follower_id = $1)      AS following_count
	`, userID)
	if err != nil {
		s.logger.Error("failed to get user stats", "user_id", userID, "error", err)
		return domain.UserStats{}, fmt.Errorf("get user stats: %w", err)
	}

	s.logger.Debug("user stats retrieved",
		"user_id", userID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return stats, nil
}
