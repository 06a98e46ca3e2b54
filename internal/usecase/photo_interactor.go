package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/PhotoHub/internal/core/ports"
	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/GoArmGo/PhotoHub/internal/messaging/payloads"
	"github.com/google/uuid"
)

// photoUseCase implements PhotoUseCase
type photoUseCase struct {
	photos    ports.PhotoStorage
	tags      ports.TagStorage
	users     ports.UserStorage
	files     ports.FileStorage
	images    ports.ImageInspector
	publisher ports.PhotoEventPublisher
	assembler *Assembler
	logger    *slog.Logger
}

// NewPhotoUseCase создает новый экземпляр PhotoUseCase.
// publisher может быть nil, тогда события о загрузке не публикуются.
func NewPhotoUseCase(
	photos ports.PhotoStorage,
	tags ports.TagStorage,
	users ports.UserStorage,
	files ports.FileStorage,
	images ports.ImageInspector,
	publisher ports.PhotoEventPublisher,
	assembler *Assembler,
	logger *slog.Logger,
) PhotoUseCase {
	return &photoUseCase{
		photos:    photos,
		tags:      tags,
		users:     users,
		files:     files,
		images:    images,
		publisher: publisher,
		assembler: assembler,
		logger:    logger,
	}
}

// Upload проверяет изображение, кладет файл в хранилище и сохраняет метаданные с тегами
func (uc *photoUseCase) Upload(ctx context.Context, in UploadPhotoInput) (*PhotoResponse, error) {
	start := time.Now()

	if in.OwnerID == uuid.Nil {
		return nil, fmt.Errorf("upload photo: %w", domain.ErrUnauthenticated)
	}
	title := strings.TrimSpace(in.Title)
	if err := checkLength("title", title, 1, maxPhotoTitle); err != nil {
		return nil, err
	}
	if err := checkOptional("description", in.Description, maxDescription); err != nil {
		return nil, err
	}
	tagNames, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	meta, err := uc.images.Inspect(in.Data)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	key, err := uc.files.UploadFile(ctx, PhotosFolder, bytes.NewReader(in.Data), int64(len(in.Data)), meta.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload photo file: %w", err)
	}

	tags, err := uc.tags.GetOrCreateTags(ctx, tagNames)
	if err != nil {
		uc.discardFile(ctx, key)
		return nil, fmt.Errorf("resolve tags: %w", err)
	}

	photo := &domain.Photo{
		UserID:      in.OwnerID,
		Title:       title,
		Description: in.Description,
		ImageKey:    key,
		Width:       meta.Width,
		Height:      meta.Height,
		FileSize:    int64(len(in.Data)),
		Tags:        tags,
	}
	if meta.Color != "" {
		photo.Color = &meta.Color
	}

	if err := uc.photos.SavePhoto(ctx, photo, tagIDs(tags)); err != nil {
		uc.discardFile(ctx, key)
		return nil, fmt.Errorf("save photo: %w", err)
	}

	uc.publishUploaded(ctx, photo)

	uc.logger.Info("photo uploaded",
		"photo_id", photo.ID,
		"user_id", photo.UserID,
		"key", key,
		"tags", len(tags),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return uc.assembler.Photo(ctx, photo, in.OwnerID)
}

// View увеличивает счетчик просмотров и возвращает фото для зрителя
func (uc *photoUseCase) View(ctx context.Context, photoID, viewerID uuid.UUID) (*PhotoResponse, error) {
	photo, err := uc.photos.IncrementViews(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("view photo: %w", err)
	}
	return uc.assembler.Photo(ctx, photo, viewerID)
}

func (uc *photoUseCase) List(ctx context.Context, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[PhotoResponse], error) {
	return uc.list(ctx, ports.PhotoFilter{}, page, viewerID)
}

func (uc *photoUseCase) Popular(ctx context.Context, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[PhotoResponse], error) {
	return uc.list(ctx, ports.PhotoFilter{Order: ports.OrderPopular}, page, viewerID)
}

func (uc *photoUseCase) Trending(ctx context.Context, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[PhotoResponse], error) {
	return uc.list(ctx, ports.PhotoFilter{Order: ports.OrderTrending}, page, viewerID)
}

func (uc *photoUseCase) Search(ctx context.Context, keyword string, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[PhotoResponse], error) {
	keyword = strings.TrimSpace(keyword)
	if err := checkLength("keyword", keyword, 1, maxSearchKeywordLen); err != nil {
		return domain.Page[PhotoResponse]{}, err
	}
	return uc.list(ctx, ports.PhotoFilter{Keyword: keyword}, page, viewerID)
}

func (uc *photoUseCase) ByTag(ctx context.Context, tagName string, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[PhotoResponse], error) {
	tagName = strings.ToLower(strings.TrimSpace(tagName))
	if tagName == "" {
		return domain.Page[PhotoResponse]{}, invalid("tag is required")
	}
	return uc.list(ctx, ports.PhotoFilter{TagName: tagName}, page, viewerID)
}

func (uc *photoUseCase) ByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[PhotoResponse], error) {
	if _, err := uc.users.GetUserByID(ctx, userID); err != nil {
		return domain.Page[PhotoResponse]{}, fmt.Errorf("photos by user: %w", err)
	}
	return uc.list(ctx, ports.PhotoFilter{UserID: userID}, page, viewerID)
}

func (uc *photoUseCase) LikedBy(ctx context.Context, userID uuid.UUID, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[PhotoResponse], error) {
	if _, err := uc.users.GetUserByID(ctx, userID); err != nil {
		return domain.Page[PhotoResponse]{}, fmt.Errorf("liked photos: %w", err)
	}
	return uc.list(ctx, ports.PhotoFilter{LikedBy: userID}, page, viewerID)
}

func (uc *photoUseCase) list(ctx context.Context, filter ports.PhotoFilter, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[PhotoResponse], error) {
	return listPhotos(ctx, uc.photos, uc.assembler, filter, page, viewerID)
}

// listPhotos: общая выборка страницы фото для каталога и подборок
func listPhotos(
	ctx context.Context,
	photos ports.PhotoStorage,
	assembler *Assembler,
	filter ports.PhotoFilter,
	page domain.PageRequest,
	viewerID uuid.UUID,
) (domain.Page[PhotoResponse], error) {
	items, total, err := photos.ListPhotos(ctx, filter, page)
	if err != nil {
		return domain.Page[PhotoResponse]{}, fmt.Errorf("list photos: %w", err)
	}
	content, err := assembler.Photos(ctx, items, viewerID)
	if err != nil {
		return domain.Page[PhotoResponse]{}, err
	}
	return domain.NewPage(content, page, total), nil
}

// Update применяет частичное обновление; список тегов, если задан, заменяет прежний
func (uc *photoUseCase) Update(ctx context.Context, photoID uuid.UUID, patch domain.PhotoPatch, actingID uuid.UUID) (*PhotoResponse, error) {
	photo, err := uc.ownedPhoto(ctx, photoID, actingID)
	if err != nil {
		return nil, err
	}
	if err := validatePhotoPatch(patch); err != nil {
		return nil, err
	}

	if patch.Title != nil {
		photo.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		photo.Description = patch.Description
	}

	var ids []uuid.UUID
	if patch.Tags != nil {
		names, err := normalizeTags(patch.Tags)
		if err != nil {
			return nil, err
		}
		tags, err := uc.tags.GetOrCreateTags(ctx, names)
		if err != nil {
			return nil, fmt.Errorf("resolve tags: %w", err)
		}
		photo.Tags = tags
		ids = tagIDs(tags)
	}

	if err := uc.photos.UpdatePhoto(ctx, photo, ids); err != nil {
		return nil, fmt.Errorf("update photo: %w", err)
	}
	return uc.assembler.Photo(ctx, photo, actingID)
}

// Delete удаляет фото владельца, затем пытается удалить файлы
func (uc *photoUseCase) Delete(ctx context.Context, photoID, actingID uuid.UUID) error {
	photo, err := uc.ownedPhoto(ctx, photoID, actingID)
	if err != nil {
		return err
	}

	if err := uc.photos.DeletePhoto(ctx, photoID); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}

	uc.discardFile(ctx, photo.ImageKey)
	if photo.ThumbnailKey != nil {
		uc.discardFile(ctx, *photo.ThumbnailKey)
	}

	uc.logger.Info("photo deleted", "photo_id", photoID, "user_id", actingID)
	return nil
}

func (uc *photoUseCase) ownedPhoto(ctx context.Context, photoID, actingID uuid.UUID) (*domain.Photo, error) {
	if actingID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}
	photo, err := uc.photos.GetPhotoByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if !photo.IsOwnedBy(actingID) {
		return nil, fmt.Errorf("photo %s is not owned by %s: %w", photoID, actingID, domain.ErrUnauthorized)
	}
	return photo, nil
}

// publishUploaded отправляет событие для генерации миниатюры; сбой только логируется
func (uc *photoUseCase) publishUploaded(ctx context.Context, photo *domain.Photo) {
	if uc.publisher == nil {
		return
	}
	err := uc.publisher.PublishPhotoUploaded(ctx, payloads.PhotoUploadedPayload{
		PhotoID:  photo.ID,
		ImageKey: photo.ImageKey,
		Width:    photo.Width,
	})
	if err != nil {
		uc.logger.Warn("failed to publish photo uploaded event", "photo_id", photo.ID, "error", err)
	}
}

// discardFile удаляет файл без возврата ошибки
func (uc *photoUseCase) discardFile(ctx context.Context, key string) {
	if err := uc.files.DeleteFile(ctx, key); err != nil {
		uc.logger.Warn("failed to delete file", "key", key, "error", err)
	}
}

func tagIDs(tags []domain.Tag) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	return ids
}
