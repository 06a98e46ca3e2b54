package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/PhotoHub/internal/core/ports"
	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/google/uuid"
)

type userUseCase struct {
	users     ports.UserStorage
	stats     ports.UserStatsStorage
	files     ports.FileStorage
	images    ports.ImageInspector
	assembler *Assembler
	logger    *slog.Logger
}

func NewUserUseCase(
	users ports.UserStorage,
	stats ports.UserStatsStorage,
	files ports.FileStorage,
	images ports.ImageInspector,
	assembler *Assembler,
	logger *slog.Logger,
) UserUseCase {
	return &userUseCase{
		users:     users,
		stats:     stats,
		files:     files,
		images:    images,
		assembler: assembler,
		logger:    logger,
	}
}

func (uc *userUseCase) Get(ctx context.Context, id, viewerID uuid.UUID) (*UserResponse, error) {
	user, err := uc.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.respond(ctx, user, viewerID)
}

func (uc *userUseCase) GetByUsername(ctx context.Context, username string, viewerID uuid.UUID) (*UserResponse, error) {
	user, err := uc.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return uc.respond(ctx, user, viewerID)
}

// UpdateProfile: nil-поле не меняется, заданное (даже пустое) перезаписывает значение
func (uc *userUseCase) UpdateProfile(ctx context.Context, id uuid.UUID, patch domain.ProfilePatch, actingID uuid.UUID) (*UserResponse, error) {
	user, err := uc.self(ctx, id, actingID)
	if err != nil {
		return nil, err
	}
	if err := validateProfilePatch(patch); err != nil {
		return nil, err
	}

	patch.Apply(user)
	if err := uc.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	uc.logger.Info("profile updated", "user_id", id)
	return uc.respond(ctx, user, actingID)
}

// UpdateProfileImage загружает новое изображение профиля и удаляет прежнее
func (uc *userUseCase) UpdateProfileImage(ctx context.Context, id uuid.UUID, data []byte, actingID uuid.UUID) (*UserResponse, error) {
	user, err := uc.self(ctx, id, actingID)
	if err != nil {
		return nil, err
	}

	meta, err := uc.images.Inspect(data)
	if err != nil {
		return nil, fmt.Errorf("profile image: %w", err)
	}
	key, err := uc.files.UploadFile(ctx, ProfilesFolder, bytes.NewReader(data), int64(len(data)), meta.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload profile image: %w", err)
	}

	previous := user.ProfileImageKey
	user.ProfileImageKey = &key
	if err := uc.users.UpdateUser(ctx, user); err != nil {
		if delErr := uc.files.DeleteFile(ctx, key); delErr != nil {
			uc.logger.Warn("failed to delete orphaned profile image", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("update profile image: %w", err)
	}

	if previous != nil && *previous != "" {
		if err := uc.files.DeleteFile(ctx, *previous); err != nil {
			uc.logger.Warn("failed to delete previous profile image", "key", *previous, "error", err)
		}
	}

	uc.logger.Info("profile image updated", "user_id", id, "key", key)
	return uc.respond(ctx, user, actingID)
}

func (uc *userUseCase) self(ctx context.Context, id, actingID uuid.UUID) (*domain.User, error) {
	if actingID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}
	if id != actingID {
		return nil, fmt.Errorf("user %s cannot modify %s: %w", actingID, id, domain.ErrUnauthorized)
	}
	return uc.users.GetUserByID(ctx, id)
}

func (uc *userUseCase) respond(ctx context.Context, user *domain.User, viewerID uuid.UUID) (*UserResponse, error) {
	stats, err := uc.stats.GetUserStats(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	resp := uc.assembler.User(user, stats, viewerID)
	return &resp, nil
}
