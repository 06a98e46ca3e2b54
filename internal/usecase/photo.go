package usecase

import (
	"context"
	"time"

	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/google/uuid"
)

// Папки файлового хранилища
const (
	PhotosFolder     = "photos"
	ThumbnailsFolder = "thumbnails"
	ProfilesFolder   = "profiles"
)

// UploadPhotoInput: данные загрузки фото
type UploadPhotoInput struct {
	OwnerID     uuid.UUID
	Title       string
	Description *string
	Tags        []string
	Data        []byte
}

// PhotoUseCase определяет интерфейс для бизнес-логики каталога фото.
// viewerID == uuid.Nil означает анонимного зрителя.
type PhotoUseCase interface {
	// Upload проверяет изображение, сохраняет файл и метаданные, теги создаются по требованию
	Upload(ctx context.Context, in UploadPhotoInput) (*PhotoResponse, error)

	// View возвращает фото и увеличивает счетчик просмотров при каждом чтении
	View(ctx context.Context, photoID, viewerID uuid.UUID) (*PhotoResponse, error)

	List(ctx context.Context, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[PhotoResponse], error)
	Popular(ctx context.Context, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[PhotoResponse], error)
	// Trending упорядочивает по числу просмотров
	Trending(ctx context.Context, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[PhotoResponse], error)
	// Search ищет подстроку без учета регистра в заголовке или описании
	Search(ctx context.Context, keyword string, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[PhotoResponse], error)
	ByTag(ctx context.Context, tagName string, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[PhotoResponse], error)
	ByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[PhotoResponse], error)
	LikedBy(ctx context.Context, userID uuid.UUID, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[PhotoResponse], error)

	// Update применяет частичное обновление, доступно только владельцу
	Update(ctx context.Context, photoID uuid.UUID, patch domain.PhotoPatch, actingID uuid.UUID) (*PhotoResponse, error)

	// Delete удаляет фото владельца; ошибка удаления файла только логируется
	Delete(ctx context.Context, photoID, actingID uuid.UUID) error
}

// CollectionInput: данные создания подборки
type CollectionInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	IsPrivate   bool    `json:"is_private"`
}

// CollectionUseCase: управление подборками и их составом
type CollectionUseCase interface {
	Create(ctx context.Context, ownerID uuid.UUID, in CollectionInput) (*CollectionResponse, error)
	// Get возвращает domain.ErrUnauthorized для чужой приватной подборки
	Get(ctx context.Context, id, viewerID uuid.UUID) (*CollectionResponse, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.CollectionPatch, actingID uuid.UUID) (*CollectionResponse, error)
	Delete(ctx context.Context, id, actingID uuid.UUID) error

	ListPublic(ctx context.Context, page domain.PageRequest) (domain.Page[CollectionResponse], error)
	// ListForUser отдает приватные подборки только самому владельцу
	ListForUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[CollectionResponse], error)
	Photos(ctx context.Context, id uuid.UUID, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[PhotoResponse], error)

	AddPhoto(ctx context.Context, collectionID, photoID, actingID uuid.UUID) (*CollectionResponse, error)
	RemovePhoto(ctx context.Context, collectionID, photoID, actingID uuid.UUID) (*CollectionResponse, error)
}

// EngagementUseCase: лайки, подписки и скачивания
type EngagementUseCase interface {
	Like(ctx context.Context, photoID, userID uuid.UUID) (*LikeResponse, error)
	Unlike(ctx context.Context, photoID, userID uuid.UUID) (*LikeResponse, error)

	Follow(ctx context.Context, targetID, followerID uuid.UUID) error
	Unfollow(ctx context.Context, targetID, followerID uuid.UUID) error
	// IsFollowing для анонимного followerID возвращает false без ошибки
	IsFollowing(ctx context.Context, targetID, followerID uuid.UUID) (bool, error)
	Followers(ctx context.Context, userID uuid.UUID, page domain.PageRequest) (domain.Page[UserSummary], error)
	Following(ctx context.Context, userID uuid.UUID, page domain.PageRequest) (domain.Page[UserSummary], error)

	// RecordDownload пишет журнал скачивания; userID может быть uuid.Nil
	RecordDownload(ctx context.Context, photoID, userID uuid.UUID, clientIP string) (*DownloadResponse, error)
}

// UserUseCase: профили пользователей
type UserUseCase interface {
	Get(ctx context.Context, id, viewerID uuid.UUID) (*UserResponse, error)
	GetByUsername(ctx context.Context, username string, viewerID uuid.UUID) (*UserResponse, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch domain.ProfilePatch, actingID uuid.UUID) (*UserResponse, error)
	UpdateProfileImage(ctx context.Context, id uuid.UUID, data []byte, actingID uuid.UUID) (*UserResponse, error)
}

// RegisterInput: данные регистрации
type RegisterInput struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

// AuthUseCase: регистрация и вход
type AuthUseCase interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResponse, error)
	// Login не различает неизвестного пользователя и неверный пароль
	Login(ctx context.Context, username, password string) (*AuthResponse, error)
}

// TokenIssuer выпускает токен доступа для пользователя
type TokenIssuer interface {
	Issue(user *domain.User) (string, time.Time, error)
}
