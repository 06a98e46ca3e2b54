package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/GoArmGo/PhotoHub/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CollectionHandler: HTTP-обработчики подборок
type CollectionHandler struct {
	collections usecase.CollectionUseCase
	logger      *slog.Logger
}

func NewCollectionHandler(collections usecase.CollectionUseCase, logger *slog.Logger) *CollectionHandler {
	return &CollectionHandler{collections: collections, logger: logger}
}

// Routes монтирует маршруты /api/collections
func (h *CollectionHandler) Routes(r chi.Router) {
	r.Get("/", h.ListPublic)
	r.Get("/user/{userID}", h.ByUser)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/photos", h.Photos)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.logger))
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/photos/{photoID}", h.AddPhoto)
		r.Delete("/{id}/photos/{photoID}", h.RemovePhoto)
	})
}

func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in usecase.CollectionInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	c, err := h.collections.Create(r.Context(), viewerID(r), in)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, c, h.logger)
}

func (h *CollectionHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	page, err := h.collections.ListPublic(r.Context(), pageRequest(r))
	writePage(w, r, page, err, h.logger)
}

func (h *CollectionHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userID")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	page, err := h.collections.ListForUser(r.Context(), userID, pageRequest(r), viewerID(r))
	writePage(w, r, page, err, h.logger)
}

func (h *CollectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	c, err := h.collections.Get(r.Context(), id, viewerID(r))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, c, h.logger)
}

func (h *CollectionHandler) Photos(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	page, err := h.collections.Photos(r.Context(), id, pageRequest(r), viewerID(r))
	writePage(w, r, page, err, h.logger)
}

func (h *CollectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	var patch domain.CollectionPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	c, err := h.collections.Update(r.Context(), id, patch, viewerID(r))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, c, h.logger)
}

func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := h.collections.Delete(r.Context(), id, viewerID(r)); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CollectionHandler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, h.collections.AddPhoto)
}

func (h *CollectionHandler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, h.collections.RemovePhoto)
}

func (h *CollectionHandler) membership(w http.ResponseWriter, r *http.Request, change func(ctx context.Context, collectionID, photoID, actingID uuid.UUID) (*usecase.CollectionResponse, error)) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	photoID, err := pathUUID(r, "photoID")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	c, err := change(r.Context(), id, photoID, viewerID(r))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, c, h.logger)
}
