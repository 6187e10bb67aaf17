package handlers

import (
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BallXZ48/markattendancebackend/internal/middleware"
	"github.com/BallXZ48/markattendancebackend/internal/session"
)

type SessionHandler struct {
	sessions *session.Service
}

func NewSessionHandler(sessions *session.Service) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type createSessionRequest struct {
	CourseID       string    `json:"course_id" validate:"required"`
	Title          string    `json:"title" validate:"required"`
	ScheduledStart time.Time `json:"scheduled_start" validate:"required"`
	ScheduledEnd   time.Time `json:"scheduled_end" validate:"required,gtfield=ScheduledStart"`
}

// CreateSession schedules a session ahead of time; it is not open for
// attendance until a teacher opens it.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	courseID, err := primitive.ObjectIDFromHex(req.CourseID)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	s, err := h.sessions.Create(r.Context(), session.NewSession{
		CourseID:       courseID,
		Title:          req.Title,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
		CreatedBy:      userID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, s)
}

// OpenSession ensures the course has an open attendance window. Calling it
// again while one is open returns the same session.
func (h *SessionHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	courseID, ok := pathID(r, "courseId")
	if !ok {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}
	userID, _ := middleware.UserID(r.Context())
	role, _ := middleware.Role(r.Context())

	s, err := h.sessions.Open(r.Context(), courseID, userID, role)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

// CloseSession ends the open window if there is one and always deactivates
// the course; an already-closed course is a success, not an error.
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	courseID, ok := pathID(r, "courseId")
	if !ok {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}
	userID, _ := middleware.UserID(r.Context())
	role, _ := middleware.Role(r.Context())

	if err := h.sessions.Close(r.Context(), courseID, userID, role); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Session closed",
	})
}

func (h *SessionHandler) ListSessionsAdmin(w http.ResponseWriter, r *http.Request) {
	var courseID *primitive.ObjectID
	if v := r.URL.Query().Get("course_id"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			http.Error(w, "Invalid course_id", http.StatusBadRequest)
			return
		}
		courseID = &id
	}

	sessions, err := h.sessions.ListForAdmin(r.Context(), courseID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}

func (h *SessionHandler) ListSessionsTeacher(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var isOpen *bool
	if v := r.URL.Query().Get("is_attendance_open"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "Invalid is_attendance_open", http.StatusBadRequest)
			return
		}
		isOpen = &parsed
	}

	sessions, err := h.sessions.ListForTeacher(r.Context(), userID, isOpen)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}

func (h *SessionHandler) ListSessionsStudent(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	courses, err := h.sessions.ListForStudent(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, courses)
}
