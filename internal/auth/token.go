// Package auth выпускает и проверяет токены доступа и хеширует пароли
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "photohub"

// Principal: аутентифицированный пользователь, извлеченный из токена
type Principal struct {
	UserID   uuid.UUID
	Username string
}

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager подписывает токены HS256 общим секретом
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue выпускает токен для пользователя; subject содержит его ID
func (m *TokenManager) Issue(user *domain.User) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify проверяет подпись и срок действия; любая ошибка дает domain.ErrUnauthenticated
func (m *TokenManager) Verify(raw string) (Principal, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, fmt.Errorf("token expired: %w", domain.ErrUnauthenticated)
		}
		return Principal{}, fmt.Errorf("invalid token: %v: %w", err, domain.ErrUnauthenticated)
	}

	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return Principal{}, fmt.Errorf("invalid subject: %w", domain.ErrUnauthenticated)
	}
	return Principal{UserID: id, Username: c.Username}, nil
}
