package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/GoArmGo/PhotoHub/internal/auth"
	"github.com/google/uuid"
)

// RequestLogger: middleware для логирования HTTP-запросов.
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Оборачиваем ResponseWriter, чтобы знать статус
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration_ms", duration.Milliseconds(),
			)
		})
	}
}

// responseWriter нужен, чтобы перехватывать код ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// TokenVerifier проверяет bearer-токен
type TokenVerifier interface {
	Verify(raw string) (auth.Principal, error)
}

type principalKey struct{}

// Authenticate кладет в контекст пользователя из заголовка Authorization.
// Запрос без заголовка проходит анонимно, неверный токен отклоняется с 401.
func Authenticate(tokens TokenVerifier, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "authorization header must be a bearer token", logger)
				return
			}
			principal, err := tokens.Verify(strings.TrimSpace(raw))
			if err != nil {
				logger.Warn("rejected access token", "path", r.URL.Path, "error", err)
				respondWithError(w, http.StatusUnauthorized, "invalid or expired token", logger)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth пропускает только аутентифицированные запросы
func RequireAuth(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if viewerID(r) == uuid.Nil {
				respondWithError(w, http.StatusUnauthorized, "authentication required", logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// viewerID: ID текущего пользователя или uuid.Nil для анонима
func viewerID(r *http.Request) uuid.UUID {
	p, ok := r.Context().Value(principalKey{}).(auth.Principal)
	if !ok {
		return uuid.Nil
	}
	return p.UserID
}
