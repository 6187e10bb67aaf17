package handlers

import (
	"net/http"
	"time"

	"github.com/BallXZ48/markattendancebackend/internal/auth"
	"github.com/BallXZ48/markattendancebackend/internal/identity"
	"github.com/BallXZ48/markattendancebackend/internal/middleware"
	"github.com/BallXZ48/markattendancebackend/internal/models"
)

type AuthHandler struct {
	users *identity.Service
}

func NewAuthHandler(users *identity.Service) *AuthHandler {
	return &AuthHandler{users: users}
}

type signupRequest struct {
	Email      string `json:"email" validate:"required,email"`
	FullName   string `json:"full_name" validate:"required"`
	Password   string `json:"password" validate:"required,min=8"`
	StudentID  string `json:"student_id"`
	Department string `json:"department"`
}

// Signup registers a student account. Elevated roles are only assigned by an
// admin through the users endpoint.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	u, err := h.users.Register(r.Context(), identity.NewUser{
		Email:      req.Email,
		FullName:   req.FullName,
		Password:   req.Password,
		Role:       models.RoleStudent,
		StudentID:  req.StudentID,
		Department: req.Department,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login checks credentials and sets the token cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := auth.GenerateJWT(u.ID.Hex(), u.Role)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, u)
}

// Logout clears the token cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Logged out"))
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.users.Resolve(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}
