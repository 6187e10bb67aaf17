// Package session is the session store: it owns the open/closed lifecycle of
// class sessions and keeps the course's is_active flag in step with it.
//
// Per course the lifecycle is a two-state machine: NO_OPEN_SESSION -> OPEN on
// Open, OPEN -> NO_OPEN_SESSION on Close. Both transitions are idempotent: a
// redundant Open returns the existing open session, a redundant Close
// force-syncs the course flag to false and succeeds.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BallXZ48/markattendancebackend/internal/models"
)

var (
	ErrNotFound = errors.New("class session not found")
	// ErrScheduleConflict is returned when a session for the course already
	// starts at the same instant.
	ErrScheduleConflict = errors.New("a session for this course already starts at that time")
	ErrNotOwner         = errors.New("course is not taught by this teacher")
)

// openWindow is how long an implicitly created session is scheduled to run.
const openWindow = 3 * time.Hour

type (
	// Filter narrows ListSessions; nil fields are ignored.
	Filter struct {
		CourseID         *primitive.ObjectID
		CourseIDs        []primitive.ObjectID
		IsAttendanceOpen *bool
	}

	Repository interface {
		CreateSession(ctx context.Context, s models.ClassSession) (models.ClassSession, error)
		// EnsureOpenSession atomically returns the open session for
		// s.CourseID, inserting s if none exists. Concurrent calls for the
		// same course converge on a single session.
		EnsureOpenSession(ctx context.Context, s models.ClassSession) (models.ClassSession, error)
		FindOpenSessionByCourse(ctx context.Context, courseID primitive.ObjectID) (models.ClassSession, error)
		FindOpenSessionsByCourses(ctx context.Context, courseIDs []primitive.ObjectID) ([]models.ClassSession, error)
		GetSessionByID(ctx context.Context, id primitive.ObjectID) (models.ClassSession, error)
		CloseSession(ctx context.Context, id, closedBy primitive.ObjectID, at time.Time) error
		ListSessions(ctx context.Context, filter Filter) ([]models.ClassSession, error)
	}

	// CourseDirectory is the slice of the course service this store consumes.
	CourseDirectory interface {
		Resolve(ctx context.Context, id primitive.ObjectID) (models.Course, error)
		SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
		FindByTeacher(ctx context.Context, teacherID primitive.ObjectID) ([]models.Course, error)
		FindByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Course, error)
	}

	Service struct {
		repo    Repository
		courses CourseDirectory

		// enforceOwnership gates the teacher-owns-course check on open/close.
		// Admins bypass it either way.
		enforceOwnership bool
	}
)

func NewService(repo Repository, courses CourseDirectory, enforceOwnership bool) *Service {
	return &Service{repo: repo, courses: courses, enforceOwnership: enforceOwnership}
}

type NewSession struct {
	CourseID       primitive.ObjectID
	Title          string
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	CreatedBy      primitive.ObjectID
}

// Create adds a scheduled (not yet open) session. Fails with
// course.ErrNotFound if the course does not resolve and ErrScheduleConflict
// if one already starts at the same instant.
func (svc *Service) Create(ctx context.Context, ns NewSession) (models.ClassSession, error) {
	if _, err := svc.courses.Resolve(ctx, ns.CourseID); err != nil {
		return models.ClassSession{}, err
	}

	now := time.Now().UTC()
	s := models.ClassSession{
		ID:             primitive.NewObjectID(),
		CourseID:       ns.CourseID,
		Title:          ns.Title,
		ScheduledStart: ns.ScheduledStart,
		ScheduledEnd:   ns.ScheduledEnd,
		CreatedBy:      ns.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateSession(ctx, s)
}

func (svc *Service) authorize(c models.Course, userID primitive.ObjectID, role models.UserRole) error {
	if !svc.enforceOwnership || role == models.RoleAdmin {
		return nil
	}
	if c.TeacherID != userID {
		log.Printf("User %s attempted to manage course owned by %s", userID.Hex(), c.TeacherID.Hex())
		return ErrNotOwner
	}
	return nil
}

// Open ensures the course has an open session and returns it. Calling it
// again while a session is open is a no-op that returns the existing session.
//
// Session creation and course activation are two separate writes. A crash
// between them leaves the course inactive with an open session; Close heals
// the reverse drift, so no transaction spans the two.
func (svc *Service) Open(ctx context.Context, courseID, userID primitive.ObjectID, role models.UserRole) (models.ClassSession, error) {
	c, err := svc.courses.Resolve(ctx, courseID)
	if err != nil {
		return models.ClassSession{}, err
	}
	if err := svc.authorize(c, userID, role); err != nil {
		return models.ClassSession{}, err
	}

	now := time.Now().UTC()
	s, err := svc.repo.EnsureOpenSession(ctx, models.ClassSession{
		ID:                 primitive.NewObjectID(),
		CourseID:           c.ID,
		Title:              fmt.Sprintf("Class session for %s", c.CourseCode),
		ScheduledStart:     now,
		ScheduledEnd:       now.Add(openWindow),
		IsAttendanceOpen:   true,
		AttendanceOpenedAt: &now,
		CreatedBy:          userID,
		OpenedBy:           &userID,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		return models.ClassSession{}, err
	}

	if err := svc.courses.SetActive(ctx, c.ID, true); err != nil {
		return models.ClassSession{}, err
	}
	log.Printf("Opened session %s for course %s", s.ID.Hex(), c.ID.Hex())
	return s, nil
}

// Close ends the open session for the course, if any, and deactivates the
// course. A course with no open session is not an error: the course flag may
// have drifted true, so it is forced back to false and the call succeeds.
func (svc *Service) Close(ctx context.Context, courseID, userID primitive.ObjectID, role models.UserRole) error {
	c, err := svc.courses.Resolve(ctx, courseID)
	if err != nil {
		return err
	}
	if err := svc.authorize(c, userID, role); err != nil {
		return err
	}

	s, err := svc.repo.FindOpenSessionByCourse(ctx, c.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Printf("No open session for course %s, syncing course status", c.ID.Hex())
			return svc.courses.SetActive(ctx, c.ID, false)
		}
		return err
	}

	if err := svc.repo.CloseSession(ctx, s.ID, userID, time.Now().UTC()); err != nil {
		return err
	}
	if err := svc.courses.SetActive(ctx, c.ID, false); err != nil {
		return err
	}
	log.Printf("Closed session %s for course %s", s.ID.Hex(), c.ID.Hex())
	return nil
}

// GetByID returns the session or ErrNotFound. The attendance ledger uses it
// to vet check-ins.
func (svc *Service) GetByID(ctx context.Context, id primitive.ObjectID) (models.ClassSession, error) {
	return svc.repo.GetSessionByID(ctx, id)
}

// ListForAdmin returns all sessions, optionally limited to one course.
func (svc *Service) ListForAdmin(ctx context.Context, courseID *primitive.ObjectID) ([]models.ClassSession, error) {
	return svc.repo.ListSessions(ctx, Filter{CourseID: courseID})
}

// TeacherSession is a session joined with its course for teacher dashboards.
type TeacherSession struct {
	ID               primitive.ObjectID `json:"id"`
	Title            string             `json:"title"`
	ScheduledStart   time.Time          `json:"scheduled_start"`
	ScheduledEnd     time.Time          `json:"scheduled_end"`
	IsAttendanceOpen bool               `json:"is_attendance_open"`
	CourseID         primitive.ObjectID `json:"course_id"`
	CourseCode       string             `json:"course_code"`
	CourseName       string             `json:"course_name"`
	StudentCount     int                `json:"student_count"`
}

// ListForTeacher returns the sessions of the teacher's courses, oldest first,
// optionally filtered on open state.
func (svc *Service) ListForTeacher(ctx context.Context, teacherID primitive.ObjectID, isOpen *bool) ([]TeacherSession, error) {
	courses, err := svc.courses.FindByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.Course, len(courses))
	courseIDs := make([]primitive.ObjectID, 0, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
		courseIDs = append(courseIDs, c.ID)
	}

	sessions, err := svc.repo.ListSessions(ctx, Filter{CourseIDs: courseIDs, IsAttendanceOpen: isOpen})
	if err != nil {
		return nil, err
	}

	out := make([]TeacherSession, 0, len(sessions))
	for _, s := range sessions {
		c := byID[s.CourseID]
		out = append(out, TeacherSession{
			ID:               s.ID,
			Title:            s.Title,
			ScheduledStart:   s.ScheduledStart,
			ScheduledEnd:     s.ScheduledEnd,
			IsAttendanceOpen: s.IsAttendanceOpen,
			CourseID:         c.ID,
			CourseCode:       c.CourseCode,
			CourseName:       c.CourseName,
			StudentCount:     len(c.StudentIDs),
		})
	}
	return out, nil
}

// StudentCourse is an enrolled course with its live check-in state.
type StudentCourse struct {
	CourseID         primitive.ObjectID  `json:"course_id"`
	CourseCode       string              `json:"course_code"`
	CourseName       string              `json:"course_name"`
	RoomLocation     string              `json:"room_location"`
	IsActive         bool                `json:"is_active"`
	CurrentSessionID *primitive.ObjectID `json:"current_session_id"`
}

// ListForStudent returns the student's courses with the currently open
// session id, if one exists.
func (svc *Service) ListForStudent(ctx context.Context, studentID primitive.ObjectID) ([]StudentCourse, error) {
	courses, err := svc.courses.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	courseIDs := make([]primitive.ObjectID, 0, len(courses))
	for _, c := range courses {
		courseIDs = append(courseIDs, c.ID)
	}
	open, err := svc.repo.FindOpenSessionsByCourses(ctx, courseIDs)
	if err != nil {
		return nil, err
	}
	openByCourse := make(map[primitive.ObjectID]models.ClassSession, len(open))
	for _, s := range open {
		openByCourse[s.CourseID] = s
	}

	out := make([]StudentCourse, 0, len(courses))
	for _, c := range courses {
		sc := StudentCourse{
			CourseID:     c.ID,
			CourseCode:   c.CourseCode,
			CourseName:   c.CourseName,
			RoomLocation: c.RoomLocation,
		}
		if s, ok := openByCourse[c.ID]; ok {
			sc.IsActive = true
			id := s.ID
			sc.CurrentSessionID = &id
		}
		out = append(out, sc)
	}
	return out, nil
}
