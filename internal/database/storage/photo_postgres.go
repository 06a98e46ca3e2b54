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

const photoColumns = `p.id, p.user_id, p.title, p.description, p.image_key, p.thumbnail_key,
	p.width, p.height, p.file_size, p.color, p.views_count, p.downloads_count, p.likes_count,
	p.created_at, p.updated_at`

// PhotoStorage реализует ports.PhotoStorage поверх PostgreSQL
type PhotoStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPhotoStorage(db *sqlx.DB, logger *slog.Logger) *PhotoStorage {
	return &PhotoStorage{db: db, logger: logger}
}

// SavePhoto сохраняет метаданные фотографии и связи с тегами в одной транзакции
func (s *PhotoStorage) SavePhoto(ctx context.Context, photo *domain.Photo, tagIDs []uuid.UUID) error {
	start := time.Now()

	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}
	now := time.Now().UTC()
	photo.CreatedAt = now
	photo.UpdatedAt = now

	query := `
	INSERT INTO photos (id, user_id, title, description, image_key, thumbnail_key, width, height,
		file_size, color, views_count, downloads_count, likes_count, created_at, updated_at)
	VALUES (:id, :user_id, :title, :description, :image_key, :thumbnail_key, :width, :height,
		:file_size, :color, 0, 0, 0, :created_at, :updated_at)
	`

	err := client.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, query, photo); err != nil {
			if client.IsForeignKeyViolation(err) {
				return fmt.Errorf("owner %s: %w", photo.UserID, domain.ErrNotFound)
			}
			return err
		}
		return insertPhotoTags(ctx, tx, photo.ID, tagIDs)
	})
	if err != nil {
		s.logger.Error("failed to save photo", "id", photo.ID, "error", err)
		return fmt.Errorf("save photo: %w", err)
	}

	s.logger.Info("photo saved successfully",
		"id", photo.ID,
		"user_id", photo.UserID,
		"tags", len(tagIDs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetPhotoByID получает детали фото по ID вместе с тегами
func (s *PhotoStorage) GetPhotoByID(ctx context.Context, id uuid.UUID) (*domain.Photo, error) {
	start := time.Now()

	var photo domain.Photo
	query := `SELECT ` + photoColumns + ` FROM photos p WHERE p.id = $1`

	if err := s.db.GetContext(ctx, &photo, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("photo not found by id", "id", id)
			return nil, fmt.Errorf("photo %s: %w", id, domain.ErrNotFound)
		}
		s.logger.Error("failed to get photo by id", "id", id, "error", err)
		return nil, fmt.Errorf("get photo by id: %w", err)
	}

	photos := []domain.Photo{photo}
	if err := loadTags(ctx, s.db, photos); err != nil {
		return nil, err
	}

	s.logger.Debug("photo retrieved by id",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &photos[0], nil
}

// IncrementViews увеличивает счетчик просмотров одним UPDATE ... RETURNING,
// поэтому конкурентные чтения одного фото не теряют инкременты
func (s *PhotoStorage) IncrementViews(ctx context.Context, id uuid.UUID) (*domain.Photo, error) {
	var photo domain.Photo
	query := `
	UPDATE photos p SET views_count = p.views_count + 1
	WHERE p.id = $1
	RETURNING ` + photoColumns

	if err := s.db.GetContext(ctx, &photo, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("photo not found for view", "id", id)
			return nil, fmt.Errorf("photo %s: %w", id, domain.ErrNotFound)
		}
		s.logger.Error("failed to increment views", "id", id, "error", err)
		return nil, fmt.Errorf("increment views: %w", err)
	}

	photos := []domain.Photo{photo}
	if err := loadTags(ctx, s.db, photos); err != nil {
		return nil, err
	}
	return &photos[0], nil
}

// UpdatePhoto обновляет заголовок и описание; tagIDs != nil полностью заменяет теги
func (s *PhotoStorage) UpdatePhoto(ctx context.Context, photo *domain.Photo, tagIDs []uuid.UUID) error {
	start := time.Now()
	photo.UpdatedAt = time.Now().UTC()

	err := client.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.NamedExecContext(ctx, `
		UPDATE photos SET title = :title, description = :description, updated_at = :updated_at
		WHERE id = :id
		`, photo)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("photo %s: %w", photo.ID, domain.ErrNotFound)
		}

		if tagIDs == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM photo_tags WHERE photo_id = $1`, photo.ID); err != nil {
			return err
		}
		return insertPhotoTags(ctx, tx, photo.ID, tagIDs)
	})
	if err != nil {
		s.logger.Error("failed to update photo", "id", photo.ID, "error", err)
		return fmt.Errorf("update photo: %w", err)
	}

	s.logger.Info("photo updated",
		"id", photo.ID,
		"tags_replaced", tagIDs != nil,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// SetThumbnail записывает ключ миниатюры, сгенерированной воркером
func (s *PhotoStorage) SetThumbnail(ctx context.Context, id uuid.UUID, key string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE photos SET thumbnail_key = $2, updated_at = NOW() WHERE id = $1`, id, key)
	if err != nil {
		s.logger.Error("failed to set thumbnail", "id", id, "error", err)
		return fmt.Errorf("set thumbnail: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("photo %s: %w", id, domain.ErrNotFound)
	}
	s.logger.Info("thumbnail recorded", "id", id, "key", key)
	return nil
}

// DeletePhoto удаляет зависимые строки (теги, подборки, лайки, скачивания), затем само фото
func (s *PhotoStorage) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	dependents := []string{
		`DELETE FROM photo_tags WHERE photo_id = $1`,
		`DELETE FROM collection_photos WHERE photo_id = $1`,
		`DELETE FROM likes WHERE photo_id = $1`,
		`DELETE FROM downloads WHERE photo_id = $1`,
	}

	err := client.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for _, q := range dependents {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM photos WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("photo %s: %w", id, domain.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to delete photo", "id", id, "error", err)
		return fmt.Errorf("delete photo: %w", err)
	}

	s.logger.Info("photo deleted", "id", id, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// ListPhotos получает страницу фото по фильтру
func (s *PhotoStorage) ListPhotos(ctx context.Context, filter ports.PhotoFilter, page domain.PageRequest) ([]domain.Photo, int64, error) {
	start := time.Now()

	where, args := photoWhere(filter)

	var total int64
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM photos p`+where, args...); err != nil {
		s.logger.Error("failed to count photos", "error", err)
		return nil, 0, fmt.Errorf("count photos: %w", err)
	}

	order := ` ORDER BY p.created_at DESC, p.seq DESC`
	switch filter.Order {
	case ports.OrderPopular:
		order = ` ORDER BY p.likes_count DESC, p.created_at DESC, p.seq DESC`
	case ports.OrderTrending:
		order = ` ORDER BY p.views_count DESC, p.created_at DESC, p.seq DESC`
	}

	q := `SELECT ` + photoColumns + ` FROM photos p` + where + order +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, page.Limit(), page.Offset())

	var photos []domain.Photo
	if err := s.db.SelectContext(ctx, &photos, q, args...); err != nil {
		s.logger.Error("failed to list photos",
			"page", page.Page,
			"size", page.Size,
			"error", err,
		)
		return nil, 0, fmt.Errorf("list photos: %w", err)
	}
	if err := loadTags(ctx, s.db, photos); err != nil {
		return nil, 0, err
	}

	s.logger.Info("listed photos successfully",
		"page", page.Page,
		"size", page.Size,
		"count", len(photos),
		"total", total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return photos, total, nil
}

// photoWhere строит WHERE с позиционными аргументами для фильтра
func photoWhere(f ports.PhotoFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Keyword != "" {
		n := next("%" + escapeLike(strings.ToLower(f.Keyword)) + "%")
		conds = append(conds, fmt.Sprintf(`(LOWER(p.title) LIKE %s ESCAPE '\' OR LOWER(p.description) LIKE %s ESCAPE '\')`, n, n))
	}
	if f.TagName != "" {
		conds = append(conds, fmt.Sprintf(`EXISTS (SELECT 1 FROM photo_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.photo_id = p.id AND t.name = %s)`, next(f.TagName)))
	}
	if f.UserID != uuid.Nil {
		conds = append(conds, "p.user_id = "+next(f.UserID))
	}
	if f.LikedBy != uuid.Nil {
		conds = append(conds, fmt.Sprintf(`EXISTS (SELECT 1 FROM likes l WHERE l.photo_id = p.id AND l.user_id = %s)`, next(f.LikedBy)))
	}
	if f.CollectionID != uuid.Nil {
		conds = append(conds, fmt.Sprintf(`EXISTS (SELECT 1 FROM collection_photos cp WHERE cp.photo_id = p.id AND cp.collection_id = %s)`, next(f.CollectionID)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func insertPhotoTags(ctx context.Context, tx *sqlx.Tx, photoID uuid.UUID, tagIDs []uuid.UUID) error {
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO photo_tags (photo_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			photoID, tagID,
		); err != nil {
			return fmt.Errorf("link tag %s: %w", tagID, err)
		}
	}
	return nil
}

type photoTagRow struct {
	PhotoID uuid.UUID `db:"photo_id"`
	TagID   uuid.UUID `db:"tag_id"`
	Name    string    `db:"name"`
}

// loadTags заполняет Tags у переданных фото одним запросом
func loadTags(ctx context.Context, q sqlx.QueryerContext, photos []domain.Photo) error {
	if len(photos) == 0 {
		return nil
	}

	index := make(map[uuid.UUID]int, len(photos))
	for i := range photos {
		index[photos[i].ID] = i
		photos[i].Tags = []domain.Tag{}
	}

	var rows []photoTagRow
	err := sqlx.SelectContext(ctx, q, &rows, `
	SELECT pt.photo_id, t.id AS tag_id, t.name
	FROM photo_tags pt JOIN tags t ON t.id = pt.tag_id
	WHERE pt.photo_id = ANY($1::uuid[])
	ORDER BY t.name
	`, pq.Array(uuidStrings(photos, func(p domain.Photo) uuid.UUID { return p.ID })))
	if err != nil {
		return fmt.Errorf("load photo tags: %w", err)
	}

	for _, r := range rows {
		if i, ok := index[r.PhotoID]; ok {
			photos[i].Tags = append(photos[i].Tags, domain.Tag{ID: r.TagID, Name: r.Name})
		}
	}
	return nil
}

func uuidStrings[T any](items []T, id func(T) uuid.UUID) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it).String())
	}
	return out
}
