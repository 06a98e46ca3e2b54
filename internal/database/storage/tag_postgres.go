package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TagStorage: реестр тегов с уникальным именем
type TagStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewTagStorage(db *sqlx.DB, logger *slog.Logger) *TagStorage {
	return &TagStorage{db: db, logger: logger}
}

// GetOrCreateTags возвращает теги по именам, создавая отсутствующие.
// Upsert по уникальному name гарантирует одну строку на имя даже при гонке загрузок.
func (s *TagStorage) GetOrCreateTags(ctx context.Context, names []string) ([]domain.Tag, error) {
	tags := make([]domain.Tag, 0, len(names))

	for _, name := range names {
		var tag domain.Tag
		err := s.db.GetContext(ctx, &tag, `
		INSERT INTO tags (id, name) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
		`, uuid.New(), name)
		if err != nil {
			s.logger.Error("failed to upsert tag", "name", name, "error", err)
			return nil, fmt.Errorf("upsert tag %q: %w", name, err)
		}
		tags = append(tags, tag)
	}

	return tags, nil
}
