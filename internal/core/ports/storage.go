package ports

import (
	"context"

	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/google/uuid"
)

// PhotoOrder задает порядок выдачи списков фото
type PhotoOrder int

const (
	// OrderNewest: по времени создания, новые первыми
	OrderNewest PhotoOrder = iota
	// OrderPopular: по числу лайков, затем по новизне
	OrderPopular
	// OrderTrending: по числу просмотров, затем по новизне
	OrderTrending
)

// PhotoFilter описывает выборку фото. Пустые поля не участвуют в фильтрации.
type PhotoFilter struct {
	Keyword string
	TagName string
	UserID  uuid.UUID
	LikedBy uuid.UUID
	Order   PhotoOrder

	// CollectionID ограничивает выборку членами подборки
	CollectionID uuid.UUID
}

// CollectionFilter описывает выборку подборок
type CollectionFilter struct {
	UserID     uuid.UUID
	PublicOnly bool
}

// PhotoStorage определяет методы для взаимодействия с хранилищем фотографий
type PhotoStorage interface {
	// SavePhoto сохраняет фото и его связи с тегами в одной транзакции
	SavePhoto(ctx context.Context, photo *domain.Photo, tagIDs []uuid.UUID) error
	// GetPhotoByID возвращает фото с тегами или domain.ErrNotFound
	GetPhotoByID(ctx context.Context, id uuid.UUID) (*domain.Photo, error)
	// IncrementViews атомарно увеличивает views_count и возвращает актуальное фото
	IncrementViews(ctx context.Context, id uuid.UUID) (*domain.Photo, error)
	// UpdatePhoto обновляет поля фото; tagIDs != nil полностью заменяет теги
	UpdatePhoto(ctx context.Context, photo *domain.Photo, tagIDs []uuid.UUID) error
	SetThumbnail(ctx context.Context, id uuid.UUID, key string) error
	// DeletePhoto явно удаляет зависимые строки и затем само фото
	DeletePhoto(ctx context.Context, id uuid.UUID) error
	ListPhotos(ctx context.Context, filter PhotoFilter, page domain.PageRequest) ([]domain.Photo, int64, error)
}

// TagStorage: реестр тегов
type TagStorage interface {
	// GetOrCreateTags атомарно (upsert) сопоставляет имена тегам, сохраняя порядок
	GetOrCreateTags(ctx context.Context, names []string) ([]domain.Tag, error)
}

// CollectionStorage определяет методы для работы с подборками и их составом
type CollectionStorage interface {
	SaveCollection(ctx context.Context, c *domain.Collection) error
	GetCollectionByID(ctx context.Context, id uuid.UUID) (*domain.Collection, error)
	UpdateCollection(ctx context.Context, c *domain.Collection) error
	DeleteCollection(ctx context.Context, id uuid.UUID) error
	ListCollections(ctx context.Context, filter CollectionFilter, page domain.PageRequest) ([]domain.Collection, int64, error)
	// AddPhoto возвращает domain.ErrConflict, если фото уже в подборке
	AddPhoto(ctx context.Context, collectionID, photoID uuid.UUID) error
	// RemovePhoto возвращает domain.ErrConflict, если фото нет в подборке
	RemovePhoto(ctx context.Context, collectionID, photoID uuid.UUID) error
	// Members возвращает обложки (первые coverLimit ключей в порядке добавления) и размер подборок
	Members(ctx context.Context, collectionIDs []uuid.UUID, coverLimit int) (map[uuid.UUID]domain.CollectionMembers, error)
}

// EngagementStorage: лайки, подписки и журнал скачиваний.
// Каждая мутация выполняется в одной транзакции вместе со своим счетчиком.
type EngagementStorage interface {
	AddLike(ctx context.Context, userID, photoID uuid.UUID) error
	RemoveLike(ctx context.Context, userID, photoID uuid.UUID) error
	LikedPhotoIDs(ctx context.Context, userID uuid.UUID, photoIDs []uuid.UUID) (map[uuid.UUID]bool, error)

	AddFollow(ctx context.Context, followerID, followingID uuid.UUID) error
	RemoveFollow(ctx context.Context, followerID, followingID uuid.UUID) error
	IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	ListFollowerIDs(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]uuid.UUID, int64, error)
	ListFollowingIDs(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]uuid.UUID, int64, error)

	// RecordDownload добавляет запись и увеличивает downloads_count; domain.ErrNotFound, если фото нет
	RecordDownload(ctx context.Context, d *domain.Download) error
}

// UserStorage определяет методы для взаимодействия с хранилищем пользователей
type UserStorage interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateUser(ctx context.Context, user *domain.User) error
}

// UserStatsStorage считает производные счетчики профиля
type UserStatsStorage interface {
	GetUserStats(ctx context.Context, userID uuid.UUID) (domain.UserStats, error)
}
