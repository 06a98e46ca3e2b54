package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GoArmGo/PhotoHub/internal/auth"
	"github.com/GoArmGo/PhotoHub/internal/core/ports"
	"github.com/GoArmGo/PhotoHub/internal/domain"
)

type authUseCase struct {
	users     ports.UserStorage
	tokens    TokenIssuer
	assembler *Assembler
	logger    *slog.Logger
}

func NewAuthUseCase(users ports.UserStorage, tokens TokenIssuer, assembler *Assembler, logger *slog.Logger) AuthUseCase {
	return &authUseCase{users: users, tokens: tokens, assembler: assembler, logger: logger}
}

// Register создает пользователя; занятые username/email дают domain.ErrConflict
func (uc *authUseCase) Register(ctx context.Context, in RegisterInput) (*AuthResponse, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	taken, err := uc.users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("username %q is taken: %w", in.Username, domain.ErrConflict)
	}
	taken, err = uc.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("email is already registered: %w", domain.ErrConflict)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
	}
	// гонку двух регистраций разрешают уникальные индексы: CreateUser вернет domain.ErrConflict
	if err := uc.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	uc.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return uc.issue(user)
}

// Login проверяет пароль и выпускает токен
func (uc *authUseCase) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	user, err := uc.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthenticated)
		}
		return nil, err
	}

	uc.logger.Info("user logged in", "user_id", user.ID)
	return uc.issue(user)
}

func (uc *authUseCase) issue(user *domain.User) (*AuthResponse, error) {
	token, expires, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      uc.assembler.User(user, domain.UserStats{}, user.ID),
	}, nil
}
