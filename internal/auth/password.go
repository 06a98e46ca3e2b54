package auth

import (
	"errors"
	"fmt"

	"github.com/GoArmGo/PhotoHub/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword возвращает bcrypt-хеш пароля
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword сравнивает пароль с хешем; несовпадение дает domain.ErrUnauthenticated
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return fmt.Errorf("wrong password: %w", domain.ErrUnauthenticated)
	}
	if err != nil {
		return fmt.Errorf("compare password: %w", err)
	}
	return nil
}
