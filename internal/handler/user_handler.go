package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/PhotoHub/internal/domain"
	"github.com/GoArmGo/PhotoHub/internal/usecase"
	"github.com/go-chi/chi/v5"
)

// UserHandler: профили, подписки и лайкнутые фото пользователя
type UserHandler struct {
	users          usecase.UserUseCase
	engagement     usecase.EngagementUseCase
	photos         usecase.PhotoUseCase
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewUserHandler(
	users usecase.UserUseCase,
	engagement usecase.EngagementUseCase,
	photos usecase.PhotoUseCase,
	maxUploadBytes int64,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		users:          users,
		engagement:     engagement,
		photos:         photos,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Routes монтирует маршруты /api/users
func (h *UserHandler) Routes(r chi.Router) {
	r.Get("/username/{username}", h.GetByUsername)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/followers", h.Followers)
	r.Get("/{id}/following", h.Following)
	r.Get("/{id}/is-following", h.IsFollowing)
	r.Get("/{id}/likes", h.LikedPhotos)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.logger))
		r.Put("/{id}", h.UpdateProfile)
		r.Post("/{id}/profile-image", h.UpdateProfileImage)
		r.Post("/{id}/follow", h.Follow)
		r.Delete("/{id}/follow", h.Unfollow)
	})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	u, err := h.users.Get(r.Context(), id, viewerID(r))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, u, h.logger)
}

func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByUsername(r.Context(), chi.URLParam(r, "username"), viewerID(r))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, u, h.logger)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	var patch domain.ProfilePatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	u, err := h.users.UpdateProfile(r.Context(), id, patch, viewerID(r))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, u, h.logger)
}

// UpdateProfileImage принимает multipart-поле file
func (h *UserHandler) UpdateProfileImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "profile image is too large", h.logger)
			return
		}
		respondWithError(w, http.StatusBadRequest, "file is required", h.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	u, err := h.users.UpdateProfileImage(r.Context(), id, data, viewerID(r))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, u, h.logger)
}

func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := h.engagement.Follow(r.Context(), id, viewerID(r)); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"following": true}, h.logger)
}

func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := h.engagement.Unfollow(r.Context(), id, viewerID(r)); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"following": false}, h.logger)
}

// IsFollowing отвечает, подписан ли текущий пользователь; для анонима false
func (h *UserHandler) IsFollowing(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	following, err := h.engagement.IsFollowing(r.Context(), id, viewerID(r))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"following": following}, h.logger)
}

func (h *UserHandler) Followers(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	page, err := h.engagement.Followers(r.Context(), id, pageRequest(r))
	writePage(w, r, page, err, h.logger)
}

func (h *UserHandler) Following(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	page, err := h.engagement.Following(r.Context(), id, pageRequest(r))
	writePage(w, r, page, err, h.logger)
}

func (h *UserHandler) LikedPhotos(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	page, err := h.photos.LikedBy(r.Context(), id, pageRequest(r), viewerID(r))
	writePage(w, r, page, err, h.logger)
}

// AuthHandler: регистрация и вход
type AuthHandler struct {
	auth   usecase.AuthUseCase
	logger *slog.Logger
}

func NewAuthHandler(auth usecase.AuthUseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Routes монтирует маршруты /api/auth
func (h *AuthHandler) Routes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in usecase.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	resp, err := h.auth.Register(r.Context(), in)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, resp, h.logger)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(r, &in); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	resp, err := h.auth.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, resp, h.logger)
}
