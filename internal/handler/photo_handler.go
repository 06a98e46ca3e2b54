package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/GoArmGo/PhotoHub/internal/usecase"
	"github.com/go-chi/chi/v5"
)

// PhotoHandler: обработчик HTTP-запросов для работы с фотографиями.
type PhotoHandler struct {
	photoUseCase      usecase.PhotoUseCase
	engagementUseCase usecase.EngagementUseCase
	uploadLimiter     chan struct{}
	maxUploadBytes    int64
	logger            *slog.Logger
}

// NewPhotoHandler создаёт новый экземпляр PhotoHandler.
// limiter ограничивает число одновременных загрузок.
func NewPhotoHandler(
	photos usecase.PhotoUseCase,
	engagement usecase.EngagementUseCase,
	limiter chan struct{},
	maxUploadBytes int64,
	logger *slog.Logger,
) *PhotoHandler {
	return &PhotoHandler{
		photoUseCase:      photos,
		engagementUseCase: engagement,
		uploadLimiter:     limiter,
		maxUploadBytes:    maxUploadBytes,
		logger:            logger,
	}
}

// Routes монтирует маршруты /api/photos
func (h *PhotoHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/popular", h.Popular)
	r.Get("/trending", h.Trending)
	r.Get("/search", h.Search)
	r.Get("/tag/{tag}", h.ByTag)
	r.Get("/user/{userID}", h.ByUser)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/download", h.Download)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.logger))
		r.Post("/", h.Upload)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/like", h.Like)
		r.Delete("/{id}/like", h.Unlike)
	})
}

// Upload принимает multipart-форму: file, title, description, tags (через запятую)
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	select {
	case h.uploadLimiter <- struct{}{}:
		defer func() { <-h.uploadLimiter }()
	case <-r.Context().Done():
		h.logger.Warn("upload cancelled while waiting for a slot", "error", r.Context().Err())
		respondWithError(w, http.StatusServiceUnavailable, "too many concurrent uploads", h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", h.maxUploadBytes), h.logger)
			return
		}
		respondWithError(w, http.StatusBadRequest, "malformed multipart form", h.logger)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "file is required", h.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondWithDomainError(w, r, fmt.Errorf("read upload: %w", err), h.logger)
		return
	}

	in := usecase.UploadPhotoInput{
		OwnerID: viewerID(r),
		Title:   r.FormValue("title"),
		Tags:    splitTags(r.MultipartForm.Value["tags"]),
		Data:    data,
	}
	if values, ok := r.MultipartForm.Value["description"]; ok && len(values) > 0 {
		in.Description = &values[0]
	}

	photo, err := h.photoUseCase.Upload(r.Context(), in)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	respondWithJSON(w, http.StatusCreated, photo, h.logger)
}

// splitTags принимает и повторяющиеся поля, и список через запятую
func splitTags(values []string) []string {
	var tags []string
	for _, v := range values {
		tags = append(tags, strings.Split(v, ",")...)
	}
	return tags
}

func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.photoUseCase.List(r.Context(), pageRequest(r), viewerID(r))
	writePage(w, r, page, err, h.logger)
}

func (h *PhotoHandler) Popular(w http.ResponseWriter, r *http.Request) {
	page, err := h.photoUseCase.Popular(r.Context(), pageRequest(r), viewerID(r))
	writePage(w, r, page, err, h.logger)
}

func (h *PhotoHandler) Trending(w http.ResponseWriter, r *http.Request) {
	page, err := h.photoUseCase.Trending(r.Context(), pageRequest(r), viewerID(r))
	writePage(w, r, page, err, h.logger)
}

func (h *PhotoHandler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	page, err := h.photoUseCase.Search(r.Context(), keyword, pageRequest(r), viewerID(r))
	writePage(w, r, page, err, h.logger)
}

func (h *PhotoHandler) ByTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	page, err := h.photoUseCase.ByTag(r.Context(), tag, pageRequest(r), viewerID(r))
	writePage(w, r, page, err, h.logger)
}

func (h *PhotoHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userID")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	page, err := h.photoUseCase.ByUser(r.Context(), userID, pageRequest(r), viewerID(r))
	writePage(w, r, page, err, h.logger)
}

// Get возвращает фото и засчитывает просмотр
func (h *PhotoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	photo, err := h.photoUseCase.View(r.Context(), id, viewerID(r))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, photo, h.logger)
}

func (h *PhotoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	var patch domain.PhotoPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	photo, err := h.photoUseCase.Update(r.Context(), id, patch, viewerID(r))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, photo, h.logger)
}

func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := h.photoUseCase.Delete(r.Context(), id, viewerID(r)); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PhotoHandler) Like(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	resp, err := h.engagementUseCase.Like(r.Context(), id, viewerID(r))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, resp, h.logger)
}

func (h *PhotoHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	resp, err := h.engagementUseCase.Unlike(r.Context(), id, viewerID(r))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, resp, h.logger)
}

// Download засчитывает скачивание и отдает адрес файла; доступно анонимно
func (h *PhotoHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	resp, err := h.engagementUseCase.RecordDownload(r.Context(), id, viewerID(r), clientIP(r))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, resp, h.logger)
}
