package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/GoArmGo/PhotoHub/internal/core/ports"
	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/google/uuid"
)

// CoverLimit: сколько обложек показывает подборка
const CoverLimit = 3

// UserSummary: краткое представление автора
type UserSummary struct {
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	Name            *string   `json:"name,omitempty"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty"`
}

type PhotoResponse struct {
	ID             uuid.UUID   `json:"id"`
	Title          string      `json:"title"`
	Description    *string     `json:"description,omitempty"`
	ImageURL       string      `json:"image_url"`
	ThumbnailURL   string      `json:"thumbnail_url"`
	Width          int         `json:"width"`
	Height         int         `json:"height"`
	FileSize       int64       `json:"file_size"`
	Color          *string     `json:"color,omitempty"`
	ViewsCount     int64       `json:"views_count"`
	DownloadsCount int64       `json:"downloads_count"`
	LikesCount     int64       `json:"likes_count"`
	Tags           []string    `json:"tags"`
	User           UserSummary `json:"user"`
	LikedByViewer  bool        `json:"liked_by_viewer"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type CollectionResponse struct {
	ID             uuid.UUID   `json:"id"`
	Title          string      `json:"title"`
	Description    *string     `json:"description,omitempty"`
	IsPrivate      bool        `json:"is_private"`
	CoverPhotoURLs []string    `json:"cover_photo_urls"`
	PhotosCount    int64       `json:"photos_count"`
	User           UserSummary `json:"user"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type UserResponse struct {
	ID                uuid.UUID `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email,omitempty"`
	Name              *string   `json:"name,omitempty"`
	Bio               *string   `json:"bio,omitempty"`
	Location          *string   `json:"location,omitempty"`
	PortfolioURL      *string   `json:"portfolio_url,omitempty"`
	InstagramUsername *string   `json:"instagram_username,omitempty"`
	TwitterUsername   *string   `json:"twitter_username,omitempty"`
	ProfileImageURL   *string   `json:"profile_image_url,omitempty"`
	domain.UserStats
	CreatedAt time.Time `json:"created_at"`
}

type LikeResponse struct {
	PhotoID    uuid.UUID `json:"photo_id"`
	Liked      bool      `json:"liked"`
	LikesCount int64     `json:"likes_count"`
}

type DownloadResponse struct {
	PhotoID     uuid.UUID `json:"photo_id"`
	DownloadURL string    `json:"download_url"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// Assembler собирает внешние представления сущностей:
// ключи хранилища превращаются в URL, поля относительно зрителя вычисляются пачкой
type Assembler struct {
	files       ports.FileStorage
	users       ports.UserStorage
	engagement  ports.EngagementStorage
	collections ports.CollectionStorage
}

func NewAssembler(
	files ports.FileStorage,
	users ports.UserStorage,
	engagement ports.EngagementStorage,
	collections ports.CollectionStorage,
) *Assembler {
	return &Assembler{files: files, users: users, engagement: engagement, collections: collections}
}

// Photos собирает список фото для зрителя viewerID
func (a *Assembler) Photos(ctx context.Context, photos []domain.Photo, viewerID uuid.UUID) ([]PhotoResponse, error) {
	ids := make([]uuid.UUID, 0, len(photos))
	owners := make([]uuid.UUID, 0, len(photos))
	for _, p := range photos {
		ids = append(ids, p.ID)
		owners = append(owners, p.UserID)
	}

	users, err := a.users.GetUsersByIDs(ctx, uniqueIDs(owners))
	if err != nil {
		return nil, fmt.Errorf("load photo owners: %w", err)
	}
	liked, err := a.engagement.LikedPhotoIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, fmt.Errorf("load viewer likes: %w", err)
	}

	out := make([]PhotoResponse, 0, len(photos))
	for i := range photos {
		out = append(out, a.photo(&photos[i], users[photos[i].UserID], liked[photos[i].ID]))
	}
	return out, nil
}

// Photo собирает одно фото
func (a *Assembler) Photo(ctx context.Context, photo *domain.Photo, viewerID uuid.UUID) (*PhotoResponse, error) {
	out, err := a.Photos(ctx, []domain.Photo{*photo}, viewerID)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (a *Assembler) photo(p *domain.Photo, owner domain.User, liked bool) PhotoResponse {
	imageURL := a.files.FileURL(p.ImageKey)
	thumbURL := imageURL
	if p.ThumbnailKey != nil && *p.ThumbnailKey != "" {
		thumbURL = a.files.FileURL(*p.ThumbnailKey)
	}
	if owner.ID == uuid.Nil {
		owner.ID = p.UserID
	}

	return PhotoResponse{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		ImageURL:       imageURL,
		ThumbnailURL:   thumbURL,
		Width:          p.Width,
		Height:         p.Height,
		FileSize:       p.FileSize,
		Color:          p.Color,
		ViewsCount:     p.ViewsCount,
		DownloadsCount: p.DownloadsCount,
		LikesCount:     p.LikesCount,
		Tags:           p.TagNames(),
		User:           a.Summary(&owner),
		LikedByViewer:  liked,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// Collections собирает подборки вместе с обложками и числом фото
func (a *Assembler) Collections(ctx context.Context, cols []domain.Collection) ([]CollectionResponse, error) {
	ids := make([]uuid.UUID, 0, len(cols))
	owners := make([]uuid.UUID, 0, len(cols))
	for _, c := range cols {
		ids = append(ids, c.ID)
		owners = append(owners, c.UserID)
	}

	members, err := a.collections.Members(ctx, ids, CoverLimit)
	if err != nil {
		return nil, fmt.Errorf("load collection members: %w", err)
	}
	users, err := a.users.GetUsersByIDs(ctx, uniqueIDs(owners))
	if err != nil {
		return nil, fmt.Errorf("load collection owners: %w", err)
	}

	out := make([]CollectionResponse, 0, len(cols))
	for _, c := range cols {
		m := members[c.ID]
		covers := make([]string, 0, len(m.CoverKeys))
		for _, key := range m.CoverKeys {
			covers = append(covers, a.files.FileURL(key))
		}
		owner := users[c.UserID]
		if owner.ID == uuid.Nil {
			owner.ID = c.UserID
		}

		out = append(out, CollectionResponse{
			ID:             c.ID,
			Title:          c.Title,
			Description:    c.Description,
			IsPrivate:      c.IsPrivate,
			CoverPhotoURLs: covers,
			PhotosCount:    m.PhotosCount,
			User:           a.Summary(&owner),
			CreatedAt:      c.CreatedAt,
			UpdatedAt:      c.UpdatedAt,
		})
	}
	return out, nil
}

func (a *Assembler) Collection(ctx context.Context, c *domain.Collection) (*CollectionResponse, error) {
	out, err := a.Collections(ctx, []domain.Collection{*c})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (a *Assembler) Summary(u *domain.User) UserSummary {
	return UserSummary{
		ID:              u.ID,
		Username:        u.Username,
		Name:            u.Name,
		ProfileImageURL: a.optionalURL(u.ProfileImageKey),
	}
}

// Summaries собирает краткие профили в порядке ids, пропуская неизвестные
func (a *Assembler) Summaries(ctx context.Context, ids []uuid.UUID) ([]UserSummary, error) {
	users, err := a.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	out := make([]UserSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, a.Summary(&u))
		}
	}
	return out, nil
}

// User собирает профиль; email виден только самому пользователю
func (a *Assembler) User(u *domain.User, stats domain.UserStats, viewerID uuid.UUID) UserResponse {
	resp := UserResponse{
		ID:                u.ID,
		Username:          u.Username,
		Name:              u.Name,
		Bio:               u.Bio,
		Location:          u.Location,
		PortfolioURL:      u.PortfolioURL,
		InstagramUsername: u.InstagramUsername,
		TwitterUsername:   u.TwitterUsername,
		ProfileImageURL:   a.optionalURL(u.ProfileImageKey),
		UserStats:         stats,
		CreatedAt:         u.CreatedAt,
	}
	if viewerID != uuid.Nil && viewerID == u.ID {
		resp.Email = u.Email
	}
	return resp
}

func (a *Assembler) optionalURL(key *string) *string {
	if key == nil || *key == "" {
		return nil
	}
	url := a.files.FileURL(*key)
	return &url
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
