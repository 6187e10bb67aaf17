package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BallXZ48/markattendancebackend/internal/course"
	"github.com/BallXZ48/markattendancebackend/internal/models"
	"github.com/BallXZ48/markattendancebackend/internal/session"
	"github.com/BallXZ48/markattendancebackend/internal/storage/inmem"
)

type env struct {
	courses  *course.Service
	sessions *session.Service
	repo     session.Repository
}

func newEnv(t *testing.T, enforceOwnership bool) *env {
	t.Helper()
	db := inmem.NewDB()
	courses := course.NewService(inmem.NewCourseRepository(db))
	repo := inmem.NewSessionRepository(db)
	return &env{
		courses:  courses,
		sessions: session.NewService(repo, courses, enforceOwnership),
		repo:     repo,
	}
}

func (e *env) newCourse(t *testing.T, teacherID primitive.ObjectID) models.Course {
	t.Helper()
	c, err := e.courses.Create(context.Background(), course.NewCourse{
		CourseCode:   "CS101-" + primitive.NewObjectID().Hex()[18:],
		CourseName:   "Intro to Computer Science",
		TeacherID:    teacherID,
		Department:   "CS",
		RoomLocation: "B204",
		Semester:     1,
		AcademicYear: 2026,
		TotalClasses: 30,
		Credits:      3,
	})
	require.NoError(t, err)
	return c
}

func openCount(t *testing.T, repo session.Repository, courseID primitive.ObjectID) int {
	t.Helper()
	open := true
	sessions, err := repo.ListSessions(context.Background(), session.Filter{
		CourseID:         &courseID,
		IsAttendanceOpen: &open,
	})
	require.NoError(t, err)
	return len(sessions)
}

func TestOpenIsIdempotent(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	teacher := primitive.NewObjectID()
	c := e.newCourse(t, teacher)

	first, err := e.sessions.Open(ctx, c.ID, teacher, models.RoleTeacher)
	require.NoError(t, err)
	assert.True(t, first.IsAttendanceOpen)
	require.NotNil(t, first.OpenedBy)
	assert.Equal(t, teacher, *first.OpenedBy)

	second, err := e.sessions.Open(ctx, c.ID, teacher, models.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, openCount(t, e.repo, c.ID))

	got, err := e.courses.Resolve(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestOpenUnknownCourse(t *testing.T) {
	e := newEnv(t, false)

	_, err := e.sessions.Open(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), models.RoleTeacher)
	assert.ErrorIs(t, err, course.ErrNotFound)
}

func TestCloseWithoutOpenSessionSelfHeals(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	teacher := primitive.NewObjectID()
	c := e.newCourse(t, teacher)

	// Drift the flag true without a backing session.
	require.NoError(t, e.courses.SetActive(ctx, c.ID, true))

	err := e.sessions.Close(ctx, c.ID, teacher, models.RoleTeacher)
	require.NoError(t, err)

	got, err := e.courses.Resolve(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestCloseOpenSession(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	teacher := primitive.NewObjectID()
	c := e.newCourse(t, teacher)

	opened, err := e.sessions.Open(ctx, c.ID, teacher, models.RoleTeacher)
	require.NoError(t, err)

	require.NoError(t, e.sessions.Close(ctx, c.ID, teacher, models.RoleTeacher))

	closed, err := e.sessions.GetByID(ctx, opened.ID)
	require.NoError(t, err)
	assert.False(t, closed.IsAttendanceOpen)
	require.NotNil(t, closed.AttendanceClosedAt)
	require.NotNil(t, closed.ClosedBy)
	assert.Equal(t, teacher, *closed.ClosedBy)

	got, err := e.courses.Resolve(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestSingleOpenSessionInvariant(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	teacher := primitive.NewObjectID()
	c := e.newCourse(t, teacher)

	steps := []string{"open", "open", "close", "open", "close", "close", "open"}
	for _, step := range steps {
		var err error
		if step == "open" {
			_, err = e.sessions.Open(ctx, c.ID, teacher, models.RoleTeacher)
		} else {
			err = e.sessions.Close(ctx, c.ID, teacher, models.RoleTeacher)
		}
		require.NoError(t, err, "step %q", step)
		assert.LessOrEqual(t, openCount(t, e.repo, c.ID), 1)
	}
}

func TestCreateCoursesBackToBack(t *testing.T) {
	e := newEnv(t, false)
	teacher := primitive.NewObjectID()

	// Two courses created within the same instant must not collide on code.
	first := e.newCourse(t, teacher)
	second := e.newCourse(t, teacher)
	assert.NotEqual(t, first.CourseCode, second.CourseCode)
}

func TestConcurrentOpensConverge(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	teacher := primitive.NewObjectID()
	c := e.newCourse(t, teacher)

	var wg sync.WaitGroup
	ids := make(chan primitive.ObjectID, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := e.sessions.Open(ctx, c.ID, teacher, models.RoleTeacher)
			assert.NoError(t, err)
			ids <- s.ID
		}()
	}
	wg.Wait()
	close(ids)

	first := <-ids
	for id := range ids {
		assert.Equal(t, first, id)
	}
	assert.Equal(t, 1, openCount(t, e.repo, c.ID))
}

func TestCreateSessionScheduleConflict(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	teacher := primitive.NewObjectID()
	c := e.newCourse(t, teacher)

	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	ns := session.NewSession{
		CourseID:       c.ID,
		Title:          "Lecture 1",
		ScheduledStart: start,
		ScheduledEnd:   start.Add(2 * time.Hour),
		CreatedBy:      teacher,
	}

	_, err := e.sessions.Create(ctx, ns)
	require.NoError(t, err)

	_, err = e.sessions.Create(ctx, ns)
	assert.ErrorIs(t, err, session.ErrScheduleConflict)
}

func TestCreateSessionUnknownCourse(t *testing.T) {
	e := newEnv(t, false)

	_, err := e.sessions.Create(context.Background(), session.NewSession{
		CourseID:       primitive.NewObjectID(),
		Title:          "Lecture 1",
		ScheduledStart: time.Now(),
		ScheduledEnd:   time.Now().Add(time.Hour),
		CreatedBy:      primitive.NewObjectID(),
	})
	assert.ErrorIs(t, err, course.ErrNotFound)
}

func TestOwnershipEnforcement(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()
	c := e.newCourse(t, owner)

	_, err := e.sessions.Open(ctx, c.ID, other, models.RoleTeacher)
	assert.ErrorIs(t, err, session.ErrNotOwner)
	assert.Equal(t, 0, openCount(t, e.repo, c.ID))

	// Admins bypass the check.
	_, err = e.sessions.Open(ctx, c.ID, other, models.RoleAdmin)
	require.NoError(t, err)

	require.NoError(t, e.sessions.Close(ctx, c.ID, owner, models.RoleTeacher))

	_, err = e.sessions.Open(ctx, c.ID, owner, models.RoleTeacher)
	require.NoError(t, err)
}

func TestListForStudent(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	teacher := primitive.NewObjectID()
	student := primitive.NewObjectID()

	active := e.newCourse(t, teacher)
	idle := e.newCourse(t, teacher)
	_, err := e.courses.AddStudents(ctx, active.ID, []primitive.ObjectID{student})
	require.NoError(t, err)
	_, err = e.courses.AddStudents(ctx, idle.ID, []primitive.ObjectID{student})
	require.NoError(t, err)

	opened, err := e.sessions.Open(ctx, active.ID, teacher, models.RoleTeacher)
	require.NoError(t, err)

	list, err := e.sessions.ListForStudent(ctx, student)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byCourse := map[primitive.ObjectID]session.StudentCourse{}
	for _, sc := range list {
		byCourse[sc.CourseID] = sc
	}

	got := byCourse[active.ID]
	assert.True(t, got.IsActive)
	require.NotNil(t, got.CurrentSessionID)
	assert.Equal(t, opened.ID, *got.CurrentSessionID)

	assert.False(t, byCourse[idle.ID].IsActive)
	assert.Nil(t, byCourse[idle.ID].CurrentSessionID)
}

func TestListForTeacher(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	teacher := primitive.NewObjectID()
	student := primitive.NewObjectID()
	c := e.newCourse(t, teacher)
	_, err := e.courses.AddStudents(ctx, c.ID, []primitive.ObjectID{student})
	require.NoError(t, err)

	_, err = e.sessions.Open(ctx, c.ID, teacher, models.RoleTeacher)
	require.NoError(t, err)

	open := true
	list, err := e.sessions.ListForTeacher(ctx, teacher, &open)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.CourseCode, list[0].CourseCode)
	assert.Equal(t, 1, list[0].StudentCount)
	assert.True(t, list[0].IsAttendanceOpen)
}
