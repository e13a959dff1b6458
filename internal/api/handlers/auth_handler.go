package handlers

import (
	"log/slog"
	"net/http"

	"backoffice-service/internal/auth"
	"backoffice-service/internal/models"
)

type AuthHandler struct {
	auth   *auth.Service
	logger *slog.Logger
}

func NewAuthHandler(svc *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, logger: logger}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	session, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "sign in")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

type meResponse struct {
	User       *models.User    `json:"user"`
	Role       models.Role     `json:"role"`
	Navigation []auth.NavEntry `json:"navigation"`
}

// Me returns the signed-in profile and the pages its role may open.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	writeJSON(w, http.StatusOK, meResponse{
		User:       user,
		Role:       user.Role,
		Navigation: auth.Navigation(user.Role),
	})
}

func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req auth.NewUserInput
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	user, err := h.auth.CreateUser(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}
