package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/PhotoHub/internal/database/client"
	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// EngagementStorage хранит ребра лайков и подписок и журнал скачиваний.
// Ребро и соответствующий счетчик фото меняются в одной транзакции.
type EngagementStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewEngagementStorage(db *sqlx.DB, logger *slog.Logger) *EngagementStorage {
	return &EngagementStorage{db: db, logger: logger}
}

func (s *EngagementStorage) AddLike(ctx context.Context, userID, photoID uuid.UUID) error {
	err := client.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
		INSERT INTO likes (user_id, photo_id, created_at) VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, photo_id) DO NOTHING
		`, userID, photoID)
		if err != nil {
			if client.IsForeignKeyViolation(err) {
				return fmt.Errorf("photo %s: %w", photoID, domain.ErrNotFound)
			}
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("photo %s already liked: %w", photoID, domain.ErrConflict)
		}
		return bumpCounter(ctx, tx, `UPDATE photos SET likes_count = likes_count + 1 WHERE id = $1`, photoID)
	})
	if err != nil {
		return fmt.Errorf("like photo: %w", err)
	}

	s.logger.Info("photo liked", "user_id", userID, "photo_id", photoID)
	return nil
}

func (s *EngagementStorage) RemoveLike(ctx context.Context, userID, photoID uuid.UUID) error {
	err := client.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM likes WHERE user_id = $1 AND photo_id = $2`, userID, photoID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("photo %s not liked: %w", photoID, domain.ErrConflict)
		}
		return bumpCounter(ctx, tx,
			`UPDATE photos SET likes_count = GREATEST(likes_count - 1, 0) WHERE id = $1`, photoID)
	})
	if err != nil {
		return fmt.Errorf("unlike photo: %w", err)
	}

	s.logger.Info("photo unliked", "user_id", userID, "photo_id", photoID)
	return nil
}

// LikedPhotoIDs возвращает подмножество photoIDs, лайкнутых пользователем
func (s *EngagementStorage) LikedPhotoIDs(ctx context.Context, userID uuid.UUID, photoIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(photoIDs))
	if userID == uuid.Nil || len(photoIDs) == 0 {
		return out, nil
	}

	var liked []uuid.UUID
	err := s.db.SelectContext(ctx, &liked, `
	SELECT photo_id FROM likes WHERE user_id = $1 AND photo_id = ANY($2::uuid[])
	`, userID, pq.Array(uuidStrings(photoIDs, func(id uuid.UUID) uuid.UUID { return id })))
	if err != nil {
		s.logger.Error("failed to load liked photos", "user_id", userID, "error", err)
		return nil, fmt.Errorf("liked photo ids: %w", err)
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

func (s *EngagementStorage) AddFollow(ctx context.Context, followerID, followingID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO follows (follower_id, following_id, created_at) VALUES ($1, $2, NOW())
	ON CONFLICT (follower_id, following_id) DO NOTHING
	`, followerID, followingID)
	if err != nil {
		if client.IsForeignKeyViolation(err) {
			return fmt.Errorf("user %s: %w", followingID, domain.ErrNotFound)
		}
		s.logger.Error("failed to follow", "follower_id", followerID, "following_id", followingID, "error", err)
		return fmt.Errorf("follow user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("already following %s: %w", followingID, domain.ErrConflict)
	}

	s.logger.Info("user followed", "follower_id", followerID, "following_id", followingID)
	return nil
}

func (s *EngagementStorage) RemoveFollow(ctx context.Context, followerID, followingID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`, followerID, followingID)
	if err != nil {
		s.logger.Error("failed to unfollow", "follower_id", followerID, "following_id", followingID, "error", err)
		return fmt.Errorf("unfollow user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("not following %s: %w", followingID, domain.ErrConflict)
	}

	s.logger.Info("user unfollowed", "follower_id", followerID, "following_id", followingID)
	return nil
}

func (s *EngagementStorage) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`,
		followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("is following: %w", err)
	}
	return exists, nil
}

// ListFollowerIDs: подписчики пользователя, новые первыми
func (s *EngagementStorage) ListFollowerIDs(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]uuid.UUID, int64, error) {
	return s.listFollowEdges(ctx, "follower_id", "following_id", userID, page)
}

// ListFollowingIDs: на кого подписан пользователь, новые первыми
func (s *EngagementStorage) ListFollowingIDs(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]uuid.UUID, int64, error) {
	return s.listFollowEdges(ctx, "following_id", "follower_id", userID, page)
}

// listFollowEdges: selectCol и matchCol задаются константами, не пользовательским вводом
func (s *EngagementStorage) listFollowEdges(ctx context.Context, selectCol, matchCol string, userID uuid.UUID, page domain.PageRequest) ([]uuid.UUID, int64, error) {
	start := time.Now()

	var total int64
	if err := s.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM follows WHERE `+matchCol+` = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("count follows: %w", err)
	}

	ids := []uuid.UUID{}
	err := s.db.SelectContext(ctx, &ids,
		`SELECT `+selectCol+` FROM follows WHERE `+matchCol+` = $1
		ORDER BY created_at DESC, `+selectCol+` LIMIT $2 OFFSET $3`,
		userID, page.Limit(), page.Offset())
	if err != nil {
		s.logger.Error("failed to list follows", "user_id", userID, "error", err)
		return nil, 0, fmt.Errorf("list follows: %w", err)
	}

	s.logger.Debug("listed follow edges",
		"user_id", userID,
		"column", selectCol,
		"count", len(ids),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ids, total, nil
}

// RecordDownload увеличивает downloads_count и добавляет запись журнала в одной транзакции
func (s *EngagementStorage) RecordDownload(ctx context.Context, d *domain.Download) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = time.Now().UTC()

	err := client.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := bumpCounter(ctx, tx,
			`UPDATE photos SET downloads_count = downloads_count + 1 WHERE id = $1`, d.PhotoID); err != nil {
			return err
		}
		_, err := tx.NamedExecContext(ctx, `
		INSERT INTO downloads (id, user_id, photo_id, ip_address, created_at)
		VALUES (:id, :user_id, :photo_id, :ip_address, :created_at)
		`, d)
		return err
	})
	if err != nil {
		return fmt.Errorf("record download: %w", err)
	}

	s.logger.Info("download recorded", "photo_id", d.PhotoID, "anonymous", d.UserID == nil)
	return nil
}

// bumpCounter выполняет UPDATE счетчика фото; отсутствие строки дает domain.ErrNotFound
func bumpCounter(ctx context.Context, tx *sqlx.Tx, query string, photoID uuid.UUID) error {
	res, err := tx.ExecContext(ctx, query, photoID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("photo %s: %w", photoID, domain.ErrNotFound)
	}
	return nil
}
