package handlers

import (
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BallXZ48/markattendancebackend/internal/course"
)

type CourseHandler struct {
	courses *course.Service
}

func NewCourseHandler(courses *course.Service) *CourseHandler {
	return &CourseHandler{courses: courses}
}

type createCourseRequest struct {
	CourseCode   string   `json:"course_code" validate:"required"`
	CourseName   string   `json:"course_name" validate:"required"`
	Description  string   `json:"description"`
	TeacherID    string   `json:"teacher_id" validate:"required"`
	Department   string   `json:"department" validate:"required"`
	RoomLocation string   `json:"room_location" validate:"required"`
	Semester     int      `json:"semester" validate:"required,min=1"`
	AcademicYear int      `json:"academic_year" validate:"required"`
	StudentIDs   []string `json:"student_ids"`
	TotalClasses int      `json:"total_classes" validate:"required,min=1"`
	Credits      int      `json:"credits" validate:"required,min=1"`
}

func parseObjectIDs(hexes []string) ([]primitive.ObjectID, bool) {
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, false
		}
		out = append(out, id)
	}
	return out, true
}

// CreateCourse handles creating a new course
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req createCourseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	teacherID, err := primitive.ObjectIDFromHex(req.TeacherID)
	if err != nil {
		http.Error(w, "Invalid teacher ID", http.StatusBadRequest)
		return
	}
	studentIDs, ok := parseObjectIDs(req.StudentIDs)
	if !ok {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	c, err := h.courses.Create(r.Context(), course.NewCourse{
		CourseCode:   req.CourseCode,
		CourseName:   req.CourseName,
		Description:  req.Description,
		TeacherID:    teacherID,
		Department:   req.Department,
		RoomLocation: req.RoomLocation,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		StudentIDs:   studentIDs,
		TotalClasses: req.TotalClasses,
		Credits:      req.Credits,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// GetCourses lists courses with optional year/semester/teacher filters.
func (h *CourseHandler) GetCourses(w http.ResponseWriter, r *http.Request) {
	filter := course.Filter{}
	q := r.URL.Query()
	if v := q.Get("academic_year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid academic_year", http.StatusBadRequest)
			return
		}
		filter.AcademicYear = year
	}
	if v := q.Get("semester"); v != "" {
		sem, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid semester", http.StatusBadRequest)
			return
		}
		filter.Semester = sem
	}
	if v := q.Get("teacher_id"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			http.Error(w, "Invalid teacher_id", http.StatusBadRequest)
			return
		}
		filter.TeacherID = &id
	}

	courses, err := h.courses.FindAll(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) GetCourseByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	c, err := h.courses.Resolve(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *CourseHandler) GetTeacherCourses(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := pathID(r, "teacherId")
	if !ok {
		http.Error(w, "Invalid teacher ID", http.StatusBadRequest)
		return
	}

	courses, err := h.courses.FindByTeacher(r.Context(), teacherID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) GetStudentCourses(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(r, "studentId")
	if !ok {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	courses, err := h.courses.FindByStudent(r.Context(), studentID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, courses)
}

type updateCourseRequest struct {
	CourseName   *string `json:"course_name"`
	Description  *string `json:"description"`
	TeacherID    *string `json:"teacher_id"`
	Department   *string `json:"department"`
	RoomLocation *string `json:"room_location"`
	Semester     *int    `json:"semester"`
	AcademicYear *int    `json:"academic_year"`
	TotalClasses *int    `json:"total_classes"`
	Credits      *int    `json:"credits"`
}

// UpdateCourse updates course details
func (h *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	var req updateCourseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	upd := course.Update{
		CourseName:   req.CourseName,
		Description:  req.Description,
		Department:   req.Department,
		RoomLocation: req.RoomLocation,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		TotalClasses: req.TotalClasses,
		Credits:      req.Credits,
	}
	if req.TeacherID != nil {
		teacherID, err := primitive.ObjectIDFromHex(*req.TeacherID)
		if err != nil {
			http.Error(w, "Invalid teacher ID", http.StatusBadRequest)
			return
		}
		upd.TeacherID = &teacherID
	}

	c, err := h.courses.UpdateByID(r.Context(), id, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

type rosterRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1"`
}

// AddStudents enrolls students into the course roster; duplicates are
// ignored.
func (h *CourseHandler) AddStudents(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	var req rosterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	studentIDs, ok := parseObjectIDs(req.StudentIDs)
	if !ok {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	c, err := h.courses.AddStudents(r.Context(), id, studentIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// RemoveStudents drops students from the course roster.
func (h *CourseHandler) RemoveStudents(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	var req rosterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	studentIDs, ok := parseObjectIDs(req.StudentIDs)
	if !ok {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	c, err := h.courses.RemoveStudents(r.Context(), id, studentIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// DeleteCourse deletes a course
func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	if err := h.courses.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
