// Package course is the course directory: it owns course records and the
// roster, and exposes the resolve/set-active surface the session store
// consumes.
package course

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BallXZ48/markattendancebackend/internal/models"
)

var (
	ErrNotFound   = errors.New("course not found")
	ErrCodeExists = errors.New("course code already exists")
)

type (
	// Filter narrows FilterCourses results; zero-valued fields are ignored.
	Filter struct {
		AcademicYear int
		Semester     int
		TeacherID    *primitive.ObjectID
	}

	// Update carries the mutable course fields; nil means leave unchanged.
	Update struct {
		CourseName   *string
		Description  *string
		TeacherID    *primitive.ObjectID
		Department   *string
		RoomLocation *string
		Semester     *int
		AcademicYear *int
		TotalClasses *int
		Credits      *int
	}

	Repository interface {
		CreateCourse(ctx context.Context, c models.Course) (models.Course, error)
		GetCourseByID(ctx context.Context, id primitive.ObjectID) (models.Course, error)
		FilterCourses(ctx context.Context, filter Filter) ([]models.Course, error)
		FindCoursesByTeacher(ctx context.Context, teacherID primitive.ObjectID) ([]models.Course, error)
		FindCoursesByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Course, error)
		UpdateCourse(ctx context.Context, id primitive.ObjectID, upd Update) (models.Course, error)
		AddStudents(ctx context.Context, id primitive.ObjectID, studentIDs []primitive.ObjectID) (models.Course, error)
		RemoveStudents(ctx context.Context, id primitive.ObjectID, studentIDs []primitive.ObjectID) (models.Course, error)
		DeleteCourse(ctx context.Context, id primitive.ObjectID) error
		SetCourseActive(ctx context.Context, id primitive.ObjectID, active bool) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type NewCourse struct {
	CourseCode   string
	CourseName   string
	Description  string
	TeacherID    primitive.ObjectID
	Department   string
	RoomLocation string
	Semester     int
	AcademicYear int
	StudentIDs   []primitive.ObjectID
	TotalClasses int
	Credits      int
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (models.Course, error) {
	now := time.Now().UTC()
	c := models.Course{
		ID:           primitive.NewObjectID(),
		CourseCode:   nc.CourseCode,
		CourseName:   nc.CourseName,
		Description:  nc.Description,
		TeacherID:    nc.TeacherID,
		Department:   nc.Department,
		RoomLocation: nc.RoomLocation,
		Semester:     nc.Semester,
		AcademicYear: nc.AcademicYear,
		StudentIDs:   nc.StudentIDs,
		TotalClasses: nc.TotalClasses,
		Credits:      nc.Credits,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if c.StudentIDs == nil {
		c.StudentIDs = []primitive.ObjectID{}
	}
	return svc.repo.CreateCourse(ctx, c)
}

// Resolve returns the course or ErrNotFound. This is the read side of the
// directory interface the session store depends on.
func (svc *Service) Resolve(ctx context.Context, id primitive.ObjectID) (models.Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

// SetActive flips the mirrored open-session flag. Only the session store
// calls this.
func (svc *Service) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	return svc.repo.SetCourseActive(ctx, id, active)
}

func (svc *Service) FindAll(ctx context.Context, filter Filter) ([]models.Course, error) {
	return svc.repo.FilterCourses(ctx, filter)
}

func (svc *Service) FindByTeacher(ctx context.Context, teacherID primitive.ObjectID) ([]models.Course, error) {
	return svc.repo.FindCoursesByTeacher(ctx, teacherID)
}

func (svc *Service) FindByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Course, error) {
	return svc.repo.FindCoursesByStudent(ctx, studentID)
}

func (svc *Service) UpdateByID(ctx context.Context, id primitive.ObjectID, upd Update) (models.Course, error) {
	return svc.repo.UpdateCourse(ctx, id, upd)
}

func (svc *Service) AddStudents(ctx context.Context, id primitive.ObjectID, studentIDs []primitive.ObjectID) (models.Course, error) {
	return svc.repo.AddStudents(ctx, id, studentIDs)
}

func (svc *Service) RemoveStudents(ctx context.Context, id primitive.ObjectID, studentIDs []primitive.ObjectID) (models.Course, error) {
	return svc.repo.RemoveStudents(ctx, id, studentIDs)
}

func (svc *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return svc.repo.DeleteCourse(ctx, id)
}
