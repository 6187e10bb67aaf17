package handlers

import (
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BallXZ48/markattendancebackend/internal/attendance"
	"github.com/BallXZ48/markattendancebackend/internal/middleware"
	"github.com/BallXZ48/markattendancebackend/internal/models"
)

type AttendanceHandler struct {
	ledger *attendance.Service
}

func NewAttendanceHandler(ledger *attendance.Service) *AttendanceHandler {
	return &AttendanceHandler{ledger: ledger}
}

type recordRequest struct {
	CourseID  string                  `json:"course_id" validate:"required"`
	StudentID string                  `json:"student_id" validate:"required"`
	ClassDate time.Time               `json:"class_date" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required,oneof=present absent late excused"`
	Remarks   *string                 `json:"remarks"`
}

// Record upserts one manual attendance record. Students can only record for
// themselves; their id overrides whatever the payload says.
func (h *AttendanceHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	courseID, err := primitive.ObjectIDFromHex(req.CourseID)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}
	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.UserID(r.Context())
	role, _ := middleware.Role(r.Context())
	if role == models.RoleStudent {
		studentID = userID
	}

	rec, err := h.ledger.Record(r.Context(), courseID, studentID, req.ClassDate, attendance.Mark{
		Status:     req.Status,
		Remarks:    req.Remarks,
		RecordedBy: userID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

type bulkEntry struct {
	StudentID string                  `json:"student_id" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required"`
	Remarks   *string                 `json:"remarks"`
}

type bulkRequest struct {
	CourseID  string      `json:"course_id" validate:"required"`
	ClassDate time.Time   `json:"class_date" validate:"required"`
	Records   []bulkEntry `json:"records" validate:"required,min=1"`
}

// RecordBulk applies a batch of independent upserts; malformed entries are
// skipped without affecting the rest.
func (h *AttendanceHandler) RecordBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	courseID, err := primitive.ObjectIDFromHex(req.CourseID)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}
	userID, _ := middleware.UserID(r.Context())

	entries := make([]attendance.BulkEntry, 0, len(req.Records))
	for _, rec := range req.Records {
		e := attendance.BulkEntry{Status: rec.Status, Remarks: rec.Remarks}
		// A bad student id makes the entry invalid, not the batch; the
		// service counts it as skipped.
		if id, err := primitive.ObjectIDFromHex(rec.StudentID); err == nil {
			e.StudentID = id
		}
		entries = append(entries, e)
	}

	res, err := h.ledger.RecordBulk(r.Context(), courseID, req.ClassDate, entries, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

type markRequest struct {
	Status models.AttendanceStatus `json:"status" validate:"required,oneof=present absent late excused"`
}

// Mark is the student self-check-in for an open session. Repeat calls while
// the session stays open overwrite the status on the same record.
func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "sessionId")
	if !ok {
		http.Error(w, "Invalid session ID", http.StatusBadRequest)
		return
	}

	var req markRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	userID, _ := middleware.UserID(r.Context())

	rec, err := h.ledger.MarkForOpenSession(r.Context(), sessionID, userID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

func (h *AttendanceHandler) GetByCourse(w http.ResponseWriter, r *http.Request) {
	courseID, ok := pathID(r, "courseId")
	if !ok {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	records, err := h.ledger.FindByCourse(r.Context(), courseID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *AttendanceHandler) GetByStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(r, "studentId")
	if !ok {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	records, err := h.ledger.FindByStudent(r.Context(), studentID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *AttendanceHandler) GetByStudentAndCourse(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(r, "studentId")
	if !ok {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}
	courseID, ok := pathID(r, "courseId")
	if !ok {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	records, err := h.ledger.FindByCourseAndStudent(r.Context(), courseID, studentID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *AttendanceHandler) GetStudentStats(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(r, "studentId")
	if !ok {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}
	courseID, ok := pathID(r, "courseId")
	if !ok {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	stats, err := h.ledger.StudentStats(r.Context(), courseID, studentID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GetReport returns all records for a course, for export.
func (h *AttendanceHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	courseID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("course_id"))
	if err != nil {
		http.Error(w, "Invalid course_id", http.StatusBadRequest)
		return
	}

	records, err := h.ledger.FindByCourse(r.Context(), courseID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *AttendanceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid attendance ID", http.StatusBadRequest)
		return
	}

	rec, err := h.ledger.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

type updateAttendanceRequest struct {
	Status        *models.AttendanceStatus `json:"status" validate:"omitempty,oneof=present absent late excused"`
	Remarks       *string                  `json:"remarks"`
	SessionNumber *int                     `json:"session_number"`
}

func (h *AttendanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid attendance ID", http.StatusBadRequest)
		return
	}

	var req updateAttendanceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rec, err := h.ledger.UpdateByID(r.Context(), id, attendance.Update{
		Status:        req.Status,
		Remarks:       req.Remarks,
		SessionNumber: req.SessionNumber,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *AttendanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid attendance ID", http.StatusBadRequest)
		return
	}

	if err := h.ledger.DeleteByID(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
