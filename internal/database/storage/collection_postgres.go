package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/PhotoHub/internal/core/ports"
	"github.com/GoArmGo/PhotoHub/internal/database/client"
	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const collectionColumns = `c.id, c.user_id, c.title, c.description, c.is_private, c.created_at, c.updated_at`

// CollectionStorage хранит подборки и их состав
type CollectionStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewCollectionStorage(db *sqlx.DB, logger *slog.Logger) *CollectionStorage {
	return &CollectionStorage{db: db, logger: logger}
}

func (s *CollectionStorage) SaveCollection(ctx context.Context, c *domain.Collection) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.NamedExecContext(ctx, `
	INSERT INTO collections (id, user_id, title, description, is_private, created_at, updated_at)
	VALUES (:id, :user_id, :title, :description, :is_private, :created_at, :updated_at)
	`, c)
	if err != nil {
		s.logger.Error("failed to save collection", "id", c.ID, "error", err)
		if client.IsForeignKeyViolation(err) {
			return fmt.Errorf("owner %s: %w", c.UserID, domain.ErrNotFound)
		}
		return fmt.Errorf("save collection: %w", err)
	}

	s.logger.Info("collection saved", "id", c.ID, "user_id", c.UserID, "is_private", c.IsPrivate)
	return nil
}

func (s *CollectionStorage) GetCollectionByID(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	var c domain.Collection
	err := s.db.GetContext(ctx, &c, `SELECT `+collectionColumns+` FROM collections c WHERE c.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("collection %s: %w", id, domain.ErrNotFound)
		}
		s.logger.Error("failed to get collection", "id", id, "error", err)
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return &c, nil
}

func (s *CollectionStorage) UpdateCollection(ctx context.Context, c *domain.Collection) error {
	c.UpdatedAt = time.Now().UTC()

	res, err := s.db.NamedExecContext(ctx, `
	UPDATE collections
	SET title = :title, description = :description, is_private = :is_private, updated_at = :updated_at
	WHERE id = :id
	`, c)
	if err != nil {
		s.logger.Error("failed to update collection", "id", c.ID, "error", err)
		return fmt.Errorf("update collection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("collection %s: %w", c.ID, domain.ErrNotFound)
	}

	s.logger.Info("collection updated", "id", c.ID)
	return nil
}

// DeleteCollection удаляет членство и затем саму подборку; фото не затрагиваются
func (s *CollectionStorage) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	err := client.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM collection_photos WHERE collection_id = $1`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("collection %s: %w", id, domain.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to delete collection", "id", id, "error", err)
		return fmt.Errorf("delete collection: %w", err)
	}

	s.logger.Info("collection deleted", "id", id)
	return nil
}

func (s *CollectionStorage) ListCollections(ctx context.Context, filter ports.CollectionFilter, page domain.PageRequest) ([]domain.Collection, int64, error) {
	start := time.Now()

	var (
		conds []string
		args  []any
	)
	if filter.UserID != uuid.Nil {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("c.user_id = $%d", len(args)))
	}
	if filter.PublicOnly {
		conds = append(conds, "c.is_private = FALSE")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM collections c`+where, args...); err != nil {
		s.logger.Error("failed to count collections", "error", err)
		return nil, 0, fmt.Errorf("count collections: %w", err)
	}

	q := `SELECT ` + collectionColumns + ` FROM collections c` + where +
		` ORDER BY c.created_at DESC, c.seq DESC` +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, page.Limit(), page.Offset())

	var items []domain.Collection
	if err := s.db.SelectContext(ctx, &items, q, args...); err != nil {
		s.logger.Error("failed to list collections", "error", err)
		return nil, 0, fmt.Errorf("list collections: %w", err)
	}

	s.logger.Info("listed collections",
		"user_id", filter.UserID,
		"public_only", filter.PublicOnly,
		"count", len(items),
		"total", total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return items, total, nil
}

// AddPhoto добавляет фото в подборку; повторное добавление дает domain.ErrConflict
func (s *CollectionStorage) AddPhoto(ctx context.Context, collectionID, photoID uuid.UUID) error {
	err := client.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
		INSERT INTO collection_photos (collection_id, photo_id, added_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (collection_id, photo_id) DO NOTHING
		`, collectionID, photoID)
		if err != nil {
			if client.IsForeignKeyViolation(err) {
				return fmt.Errorf("collection or photo: %w", domain.ErrNotFound)
			}
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("photo %s already in collection: %w", photoID, domain.ErrConflict)
		}
		_, err = tx.ExecContext(ctx, `UPDATE collections SET updated_at = NOW() WHERE id = $1`, collectionID)
		return err
	})
	if err != nil {
		return fmt.Errorf("add photo to collection: %w", err)
	}

	s.logger.Info("photo added to collection", "collection_id", collectionID, "photo_id", photoID)
	return nil
}

// RemovePhoto убирает фото из подборки; отсутствие членства дает domain.ErrConflict
func (s *CollectionStorage) RemovePhoto(ctx context.Context, collectionID, photoID uuid.UUID) error {
	err := client.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM collection_photos WHERE collection_id = $1 AND photo_id = $2`,
			collectionID, photoID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("photo %s not in collection: %w", photoID, domain.ErrConflict)
		}
		_, err = tx.ExecContext(ctx, `UPDATE collections SET updated_at = NOW() WHERE id = $1`, collectionID)
		return err
	})
	if err != nil {
		return fmt.Errorf("remove photo from collection: %w", err)
	}

	s.logger.Info("photo removed from collection", "collection_id", collectionID, "photo_id", photoID)
	return nil
}

type memberCountRow struct {
	CollectionID uuid.UUID `db:"collection_id"`
	PhotosCount  int64     `db:"photos_count"`
}

type coverRow struct {
	CollectionID uuid.UUID `db:"collection_id"`
	ImageKey     string    `db:"image_key"`
}

// Members возвращает размер и обложки (первые coverLimit фото по порядку добавления)
func (s *CollectionStorage) Members(ctx context.Context, collectionIDs []uuid.UUID, coverLimit int) (map[uuid.UUID]domain.CollectionMembers, error) {
	out := make(map[uuid.UUID]domain.CollectionMembers, len(collectionIDs))
	if len(collectionIDs) == 0 {
		return out, nil
	}
	ids := pq.Array(uuidStrings(collectionIDs, func(id uuid.UUID) uuid.UUID { return id }))

	var counts []memberCountRow
	err := s.db.SelectContext(ctx, &counts, `
	SELECT collection_id, COUNT(*) AS photos_count
	FROM collection_photos
	WHERE collection_id = ANY($1::uuid[])
	GROUP BY collection_id
	`, ids)
	if err != nil {
		s.logger.Error("failed to count collection members", "error", err)
		return nil, fmt.Errorf("count collection members: %w", err)
	}

	var covers []coverRow
	err = s.db.SelectContext(ctx, &covers, `
	SELECT collection_id, image_key FROM (
		SELECT cp.collection_id, p.image_key,
			ROW_NUMBER() OVER (PARTITION BY cp.collection_id ORDER BY cp.position) AS rn
		FROM collection_photos cp
		JOIN photos p ON p.id = cp.photo_id
		WHERE cp.collection_id = ANY($1::uuid[])
	) ranked
	WHERE rn <= $2
	ORDER BY collection_id, rn
	`, ids, coverLimit)
	if err != nil {
		s.logger.Error("failed to load collection covers", "error", err)
		return nil, fmt.Errorf("load collection covers: %w", err)
	}

	for _, r := range counts {
		m := out[r.CollectionID]
		m.PhotosCount = r.PhotosCount
		out[r.CollectionID] = m
	}
	for _, r := range covers {
		m := out[r.CollectionID]
		m.CoverKeys = append(m.CoverKeys, r.ImageKey)
		out[r.CollectionID] = m
	}
	return out, nil
}
