package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/PhotoHub/internal/core/ports"
	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/google/uuid"
)

type engagementUseCase struct {
	engagement ports.EngagementStorage
	photos     ports.PhotoStorage
	users      ports.UserStorage
	files      ports.FileStorage
	assembler  *Assembler
	logger     *slog.Logger
}

func NewEngagementUseCase(
	engagement ports.EngagementStorage,
	photos ports.PhotoStorage,
	users ports.UserStorage,
	files ports.FileStorage,
	assembler *Assembler,
	logger *slog.Logger,
) EngagementUseCase {
	return &engagementUseCase{
		engagement: engagement,
		photos:     photos,
		users:      users,
		files:      files,
		assembler:  assembler,
		logger:     logger,
	}
}

// Like добавляет ребро лайка; повторный лайк дает domain.ErrConflict
func (uc *engagementUseCase) Like(ctx context.Context, photoID, userID uuid.UUID) (*LikeResponse, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := uc.engagement.AddLike(ctx, userID, photoID); err != nil {
		return nil, err
	}
	return uc.likeState(ctx, photoID, true)
}

// Unlike удаляет ребро лайка; отсутствие лайка дает domain.ErrConflict
func (uc *engagementUseCase) Unlike(ctx context.Context, photoID, userID uuid.UUID) (*LikeResponse, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}
	if _, err := uc.photos.GetPhotoByID(ctx, photoID); err != nil {
		return nil, err
	}
	if err := uc.engagement.RemoveLike(ctx, userID, photoID); err != nil {
		return nil, err
	}
	return uc.likeState(ctx, photoID, false)
}

func (uc *engagementUseCase) likeState(ctx context.Context, photoID uuid.UUID, liked bool) (*LikeResponse, error) {
	photo, err := uc.photos.GetPhotoByID(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("reload photo: %w", err)
	}
	return &LikeResponse{PhotoID: photoID, Liked: liked, LikesCount: photo.LikesCount}, nil
}

// Follow подписывает followerID на targetID; подписка на себя дает domain.ErrValidation
func (uc *engagementUseCase) Follow(ctx context.Context, targetID, followerID uuid.UUID) error {
	if followerID == uuid.Nil {
		return domain.ErrUnauthenticated
	}
	if targetID == followerID {
		return invalid("cannot follow yourself")
	}
	if _, err := uc.users.GetUserByID(ctx, targetID); err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	return uc.engagement.AddFollow(ctx, followerID, targetID)
}

func (uc *engagementUseCase) Unfollow(ctx context.Context, targetID, followerID uuid.UUID) error {
	if followerID == uuid.Nil {
		return domain.ErrUnauthenticated
	}
	return uc.engagement.RemoveFollow(ctx, followerID, targetID)
}

// IsFollowing: анонимный зритель ни на кого не подписан
func (uc *engagementUseCase) IsFollowing(ctx context.Context, targetID, followerID uuid.UUID) (bool, error) {
	if followerID == uuid.Nil || targetID == uuid.Nil {
		return false, nil
	}
	return uc.engagement.IsFollowing(ctx, followerID, targetID)
}

func (uc *engagementUseCase) Followers(ctx context.Context, userID uuid.UUID, page domain.PageRequest) (domain.Page[UserSummary], error) {
	return uc.edges(ctx, userID, page, uc.engagement.ListFollowerIDs)
}

func (uc *engagementUseCase) Following(ctx context.Context, userID uuid.UUID, page domain.PageRequest) (domain.Page[UserSummary], error) {
	return uc.edges(ctx, userID, page, uc.engagement.ListFollowingIDs)
}

type edgeLister func(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]uuid.UUID, int64, error)

func (uc *engagementUseCase) edges(ctx context.Context, userID uuid.UUID, page domain.PageRequest, list edgeLister) (domain.Page[UserSummary], error) {
	if _, err := uc.users.GetUserByID(ctx, userID); err != nil {
		return domain.Page[UserSummary]{}, err
	}
	ids, total, err := list(ctx, userID, page)
	if err != nil {
		return domain.Page[UserSummary]{}, err
	}
	content, err := uc.assembler.Summaries(ctx, ids)
	if err != nil {
		return domain.Page[UserSummary]{}, err
	}
	return domain.NewPage(content, page, total), nil
}

// RecordDownload пишет журнал и увеличивает счетчик, в том числе для анонимов
func (uc *engagementUseCase) RecordDownload(ctx context.Context, photoID, userID uuid.UUID, clientIP string) (*DownloadResponse, error) {
	d := &domain.Download{PhotoID: photoID, IPAddress: clientIP}
	if userID != uuid.Nil {
		d.UserID = &userID
	}

	if err := uc.engagement.RecordDownload(ctx, d); err != nil {
		return nil, err
	}

	photo, err := uc.photos.GetPhotoByID(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("reload photo: %w", err)
	}

	uc.logger.Info("photo downloaded", "photo_id", photoID, "anonymous", d.UserID == nil, "ip", clientIP)
	return &DownloadResponse{PhotoID: photoID, DownloadURL: uc.files.FileURL(photo.ImageKey)}, nil
}
