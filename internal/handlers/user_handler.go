package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BallXZ48/markattendancebackend/internal/identity"
	"github.com/BallXZ48/markattendancebackend/internal/models"
)

type UserHandler struct {
	users *identity.Service
}

func NewUserHandler(users *identity.Service) *UserHandler {
	return &UserHandler{users: users}
}

func pathID(r *http.Request, key string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[key])
	return id, err == nil
}

type createUserRequest struct {
	Email      string          `json:"email" validate:"required,email"`
	FullName   string          `json:"full_name" validate:"required"`
	Password   string          `json:"password" validate:"required,min=8"`
	Role       models.UserRole `json:"role" validate:"required,oneof=admin teacher student"`
	StudentID  string          `json:"student_id"`
	Department string          `json:"department"`
}

// CreateUser lets an admin provision an account with any role.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	u, err := h.users.Register(r.Context(), identity.NewUser{
		Email:      req.Email,
		FullName:   req.FullName,
		Password:   req.Password,
		Role:       req.Role,
		StudentID:  req.StudentID,
		Department: req.Department,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, u)
}

// GetUsers lists accounts, optionally filtered by role.
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	role := models.UserRole(r.URL.Query().Get("role"))
	if role != "" && !models.ValidRole(role) {
		http.Error(w, "Invalid role", http.StatusBadRequest)
		return
	}

	users, err := h.users.FindAll(r.Context(), role)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	u, err := h.users.Resolve(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

type updateUserRequest struct {
	FullName   *string `json:"full_name"`
	StudentID  *string `json:"student_id"`
	Department *string `json:"department"`
	IsActive   *bool   `json:"is_active"`
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req updateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	u, err := h.users.UpdateByID(r.Context(), id, identity.Update{
		FullName:   req.FullName,
		StudentID:  req.StudentID,
		Department: req.Department,
		IsActive:   req.IsActive,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

type updateRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,oneof=admin teacher student"`
}

func (h *UserHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req updateRoleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	u, err := h.users.SetRole(r.Context(), id, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
