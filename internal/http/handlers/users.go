package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/luxaccount/media-platform/internal/domain"
	"github.com/luxaccount/media-platform/internal/middleware"
)

type registerRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,max=120"`
}

type userResponse struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	AvatarURL          string     `json:"avatar_url,omitempty"`
	Tier               string     `json:"subscription_tier"`
	TotalMediaRequests int        `json:"total_media_requests"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		AvatarURL:          u.AvatarURL,
		Tier:               string(u.Tier),
		TotalMediaRequests: u.TotalMediaRequests,
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt,
	}
}

// UserRegister creates an account on the free tier and returns a signed
// token for subsequent calls.
func (a *App) UserRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !a.decode(w, r, &req) {
		return
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Name:      req.Name,
		Tier:      domain.TierFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.Users.Create(r.Context(), user); err != nil {
		a.domainError(w, r, err)
		return
	}

	token, err := middleware.SignToken(a.Config.JWTSecret, user.ID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"user":  toUserResponse(user),
		"token": token,
	})
}

func (a *App) UserMe(w http.ResponseWriter, r *http.Request) {
	user, err := a.Users.GetByID(r.Context(), a.currentUserID(r))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toUserResponse(user))
}

type updateUserRequest struct {
	Name      *string `json:"name" validate:"omitempty,max=120"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

func (a *App) UserUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !a.decode(w, r, &req) {
		return
	}
	user, err := a.Users.Update(r.Context(), a.currentUserID(r), domain.UserUpdate{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toUserResponse(user))
}

// UserDeactivate suspends the account. Records stay for audit; a
// suspended user cannot create requests or sign in again.
func (a *App) UserDeactivate(w http.ResponseWriter, r *http.Request) {
	suspended := domain.TierSuspended
	if _, err := a.Users.Update(r.Context(), a.currentUserID(r), domain.UserUpdate{Tier: &suspended}); err != nil {
		a.domainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UserGet returns a profile by id. Accounts are private: only the owner
// may read their own profile.
func (a *App) UserGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id != a.currentUserID(r) {
		a.error(w, http.StatusForbidden, "access_denied", "cannot view another user's profile")
		return
	}
	user, err := a.Users.GetByID(r.Context(), id)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toUserResponse(user))
}
