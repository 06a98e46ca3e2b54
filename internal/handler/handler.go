package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// respondWithJSON: отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError: отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message}, logger)
}

// respondWithDomainError сопоставляет доменную ошибку с HTTP-статусом.
// Подробности внутренних ошибок остаются в логах.
func respondWithDomainError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", code, "error", err)
		message := "internal server error"
		if code == http.StatusBadGateway {
			message = "file storage is unavailable"
		}
		respondWithError(w, code, message, logger)
		return
	}

	logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", code, "error", err)
	respondWithError(w, code, err.Error(), logger)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidMedia):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrStorage):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// pageRequest читает page и size из query; нечисловые значения дают значения по умолчанию
func pageRequest(r *http.Request) domain.PageRequest {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	return domain.NewPageRequest(page, size)
}

// pathUUID разбирает UUID из параметра маршрута
func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", param, raw, domain.ErrValidation)
	}
	return id, nil
}

// decodeJSON читает тело запроса в dst, неизвестные поля отклоняются
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("malformed request body: %v: %w", err, domain.ErrValidation)
	}
	return nil
}

// clientIP отдает адрес клиента; RemoteAddr уже подменен middleware.RealIP
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writePage пишет страницу результата или ошибку
func writePage[T any](w http.ResponseWriter, r *http.Request, page domain.Page[T], err error, logger *slog.Logger) {
	if err != nil {
		respondWithDomainError(w, r, err, logger)
		return
	}
	respondWithJSON(w, http.StatusOK, page, logger)
}
