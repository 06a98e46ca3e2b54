package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GoArmGo/PhotoHub/internal/core/ports"
	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/google/uuid"
)

type collectionUseCase struct {
	collections ports.CollectionStorage
	photos      ports.PhotoStorage
	users       ports.UserStorage
	assembler   *Assembler
	logger      *slog.Logger
}

func NewCollectionUseCase(
	collections ports.CollectionStorage,
	photos ports.PhotoStorage,
	users ports.UserStorage,
	assembler *Assembler,
	logger *slog.Logger,
) CollectionUseCase {
	return &collectionUseCase{
		collections: collections,
		photos:      photos,
		users:       users,
		assembler:   assembler,
		logger:      logger,
	}
}

func (uc *collectionUseCase) Create(ctx context.Context, ownerID uuid.UUID, in CollectionInput) (*CollectionResponse, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}
	title := strings.TrimSpace(in.Title)
	if err := checkLength("title", title, 1, maxCollectionTitle); err != nil {
		return nil, err
	}
	if err := checkOptional("description", in.Description, maxDescription); err != nil {
		return nil, err
	}

	c := &domain.Collection{
		UserID:      ownerID,
		Title:       title,
		Description: in.Description,
		IsPrivate:   in.IsPrivate,
	}
	if err := uc.collections.SaveCollection(ctx, c); err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	uc.logger.Info("collection created", "collection_id", c.ID, "user_id", ownerID)
	return uc.assembler.Collection(ctx, c)
}

// Get раскрывает существование приватной подборки, но не ее содержимое
func (uc *collectionUseCase) Get(ctx context.Context, id, viewerID uuid.UUID) (*CollectionResponse, error) {
	c, err := uc.visible(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	return uc.assembler.Collection(ctx, c)
}

func (uc *collectionUseCase) Update(ctx context.Context, id uuid.UUID, patch domain.CollectionPatch, actingID uuid.UUID) (*CollectionResponse, error) {
	c, err := uc.owned(ctx, id, actingID)
	if err != nil {
		return nil, err
	}
	if err := validateCollectionPatch(patch); err != nil {
		return nil, err
	}
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		patch.Title = &trimmed
	}

	patch.Apply(c)
	if err := uc.collections.UpdateCollection(ctx, c); err != nil {
		return nil, fmt.Errorf("update collection: %w", err)
	}
	return uc.assembler.Collection(ctx, c)
}

func (uc *collectionUseCase) Delete(ctx context.Context, id, actingID uuid.UUID) error {
	if _, err := uc.owned(ctx, id, actingID); err != nil {
		return err
	}
	if err := uc.collections.DeleteCollection(ctx, id); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	uc.logger.Info("collection deleted", "collection_id", id, "user_id", actingID)
	return nil
}

func (uc *collectionUseCase) ListPublic(ctx context.Context, page domain.PageRequest) (domain.Page[CollectionResponse], error) {
	return uc.list(ctx, ports.CollectionFilter{PublicOnly: true}, page)
}

// ListForUser: владелец видит все свои подборки, остальные только публичные
func (uc *collectionUseCase) ListForUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[CollectionResponse], error) {
	if _, err := uc.users.GetUserByID(ctx, userID); err != nil {
		return domain.Page[CollectionResponse]{}, fmt.Errorf("collections by user: %w", err)
	}
	filter := ports.CollectionFilter{
		UserID:     userID,
		PublicOnly: viewerID == uuid.Nil || viewerID != userID,
	}
	return uc.list(ctx, filter, page)
}

func (uc *collectionUseCase) list(ctx context.Context, filter ports.CollectionFilter, page domain.PageRequest) (domain.Page[CollectionResponse], error) {
	items, total, err := uc.collections.ListCollections(ctx, filter, page)
	if err != nil {
		return domain.Page[CollectionResponse]{}, fmt.Errorf("list collections: %w", err)
	}
	content, err := uc.assembler.Collections(ctx, items)
	if err != nil {
		return domain.Page[CollectionResponse]{}, err
	}
	return domain.NewPage(content, page, total), nil
}

// Photos: фото подборки с учетом ее видимости
func (uc *collectionUseCase) Photos(ctx context.Context, id uuid.UUID, page domain.PageRequest, viewerID uuid.UUID) (domain.Page[PhotoResponse], error) {
	if _, err := uc.visible(ctx, id, viewerID); err != nil {
		return domain.Page[PhotoResponse]{}, err
	}
	return listPhotos(ctx, uc.photos, uc.assembler, ports.PhotoFilter{CollectionID: id}, page, viewerID)
}

func (uc *collectionUseCase) AddPhoto(ctx context.Context, collectionID, photoID, actingID uuid.UUID) (*CollectionResponse, error) {
	c, err := uc.owned(ctx, collectionID, actingID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.photos.GetPhotoByID(ctx, photoID); err != nil {
		return nil, fmt.Errorf("add photo to collection: %w", err)
	}
	if err := uc.collections.AddPhoto(ctx, collectionID, photoID); err != nil {
		return nil, err
	}
	return uc.assembler.Collection(ctx, c)
}

func (uc *collectionUseCase) RemovePhoto(ctx context.Context, collectionID, photoID, actingID uuid.UUID) (*CollectionResponse, error) {
	c, err := uc.owned(ctx, collectionID, actingID)
	if err != nil {
		return nil, err
	}
	if err := uc.collections.RemovePhoto(ctx, collectionID, photoID); err != nil {
		return nil, err
	}
	return uc.assembler.Collection(ctx, c)
}

func (uc *collectionUseCase) visible(ctx context.Context, id, viewerID uuid.UUID) (*domain.Collection, error) {
	c, err := uc.collections.GetCollectionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.VisibleTo(viewerID) {
		return nil, fmt.Errorf("collection %s is private: %w", id, domain.ErrUnauthorized)
	}
	return c, nil
}

func (uc *collectionUseCase) owned(ctx context.Context, id, actingID uuid.UUID) (*domain.Collection, error) {
	if actingID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}
	c, err := uc.collections.GetCollectionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsOwnedBy(actingID) {
		return nil, fmt.Errorf("collection %s is not owned by %s: %w", id, actingID, domain.ErrUnauthorized)
	}
	return c, nil
}
