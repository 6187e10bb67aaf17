package attendance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BallXZ48/markattendancebackend/internal/attendance"
	"github.com/BallXZ48/markattendancebackend/internal/course"
	"github.com/BallXZ48/markattendancebackend/internal/models"
	"github.com/BallXZ48/markattendancebackend/internal/session"
	"github.com/BallXZ48/markattendancebackend/internal/storage/inmem"
)

type env struct {
	courses  *course.Service
	sessions *session.Service
	ledger   *attendance.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := inmem.NewDB()
	courses := course.NewService(inmem.NewCourseRepository(db))
	sessions := session.NewService(inmem.NewSessionRepository(db), courses, false)
	ledger := attendance.NewService(inmem.NewAttendanceRepository(db), sessions)
	return &env{courses: courses, sessions: sessions, ledger: ledger}
}

func (e *env) newCourse(t *testing.T, teacherID primitive.ObjectID) models.Course {
	t.Helper()
	c, err := e.courses.Create(context.Background(), course.NewCourse{
		CourseCode:   "MA201-" + primitive.NewObjectID().Hex()[18:],
		CourseName:   "Linear Algebra",
		TeacherID:    teacherID,
		Department:   "Math",
		RoomLocation: "A101",
		Semester:     2,
		AcademicYear: 2026,
		TotalClasses: 28,
		Credits:      4,
	})
	require.NoError(t, err)
	return c
}

func TestCheckInUpsert(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	teacher := primitive.NewObjectID()
	student := primitive.NewObjectID()
	c := e.newCourse(t, teacher)

	opened, err := e.sessions.Open(ctx, c.ID, teacher, models.RoleTeacher)
	require.NoError(t, err)

	first, err := e.ledger.MarkForOpenSession(ctx, opened.ID, student, models.StatusPresent)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPresent, first.Status)
	assert.Equal(t, c.ID, first.CourseID)
	require.NotNil(t, first.ClassSessionID)
	assert.Equal(t, opened.ID, *first.ClassSessionID)

	second, err := e.ledger.MarkForOpenSession(ctx, opened.ID, student, models.StatusLate)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.StatusLate, second.Status)

	records, err := e.ledger.FindByCourseAndStudent(ctx, c.ID, student)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.StatusLate, records[0].Status)
}

func TestMarkClosedSessionRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	teacher := primitive.NewObjectID()
	student := primitive.NewObjectID()
	c := e.newCourse(t, teacher)

	opened, err := e.sessions.Open(ctx, c.ID, teacher, models.RoleTeacher)
	require.NoError(t, err)
	require.NoError(t, e.sessions.Close(ctx, c.ID, teacher, models.RoleTeacher))

	_, err = e.ledger.MarkForOpenSession(ctx, opened.ID, student, models.StatusPresent)
	assert.ErrorIs(t, err, attendance.ErrSessionClosed)

	records, err := e.ledger.FindByStudent(ctx, student)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMarkUnknownSessionRejected(t *testing.T) {
	e := newEnv(t)

	_, err := e.ledger.MarkForOpenSession(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), models.StatusPresent)
	assert.ErrorIs(t, err, attendance.ErrSessionClosed)
}

// failingSessions simulates a session directory whose backing store is down.
type failingSessions struct {
	err error
}

func (f failingSessions) GetByID(ctx context.Context, id primitive.ObjectID) (models.ClassSession, error) {
	return models.ClassSession{}, f.err
}

func TestMarkSessionLookupErrorPropagates(t *testing.T) {
	storeDown := errors.New("connection reset by peer")
	ledger := attendance.NewService(inmem.NewAttendanceRepository(inmem.NewDB()), failingSessions{err: storeDown})

	_, err := ledger.MarkForOpenSession(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), models.StatusPresent)
	assert.ErrorIs(t, err, storeDown)
	assert.NotErrorIs(t, err, attendance.ErrSessionClosed)
}

// failingBulkRepo reports store-side failures from the bulk write.
type failingBulkRepo struct {
	*inmem.AttendanceRepository
}

func (r failingBulkRepo) BulkUpsertByDate(ctx context.Context, courseID primitive.ObjectID, classDate time.Time, entries []attendance.BulkEntry, recordedBy primitive.ObjectID) (attendance.BulkResult, error) {
	return attendance.BulkResult{Inserted: len(entries) - 1, Failed: 1}, nil
}

func TestBulkKeepsFailedCountAlongsideSkipped(t *testing.T) {
	db := inmem.NewDB()
	ledger := attendance.NewService(failingBulkRepo{inmem.NewAttendanceRepository(db)}, nil)

	res, err := ledger.RecordBulk(context.Background(), primitive.NewObjectID(), time.Now(), []attendance.BulkEntry{
		{StudentID: primitive.NewObjectID(), Status: models.StatusPresent},
		{StudentID: primitive.NewObjectID(), Status: models.StatusPresent},
		{Status: models.StatusPresent}, // no student id, skipped before the write
	}, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Skipped)
}

func TestRecordNormalizesDate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	teacher := primitive.NewObjectID()
	student := primitive.NewObjectID()
	c := e.newCourse(t, teacher)

	afternoon := time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC)
	morning := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	_, err := e.ledger.Record(ctx, c.ID, student, afternoon, attendance.Mark{
		Status:     models.StatusPresent,
		RecordedBy: teacher,
	})
	require.NoError(t, err)

	rec, err := e.ledger.Record(ctx, c.ID, student, morning, attendance.Mark{
		Status:     models.StatusAbsent,
		RecordedBy: teacher,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), rec.ClassDate)

	records, err := e.ledger.FindByCourseAndStudent(ctx, c.ID, student)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.StatusAbsent, records[0].Status)
}

func TestSessionAndManualRecordsCoexist(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	teacher := primitive.NewObjectID()
	student := primitive.NewObjectID()
	c := e.newCourse(t, teacher)

	opened, err := e.sessions.Open(ctx, c.ID, teacher, models.RoleTeacher)
	require.NoError(t, err)

	_, err = e.ledger.MarkForOpenSession(ctx, opened.ID, student, models.StatusPresent)
	require.NoError(t, err)

	// Manual entry for the same student, course and day.
	_, err = e.ledger.Record(ctx, c.ID, student, time.Now(), attendance.Mark{
		Status:     models.StatusExcused,
		RecordedBy: teacher,
	})
	require.NoError(t, err)

	records, err := e.ledger.FindByCourseAndStudent(ctx, c.ID, student)
	require.NoError(t, err)
	require.Len(t, records, 2)

	var sessionScoped, dateScoped int
	for _, rec := range records {
		if rec.ClassSessionID != nil {
			sessionScoped++
		} else {
			dateScoped++
		}
	}
	assert.Equal(t, 1, sessionScoped)
	assert.Equal(t, 1, dateScoped)
}

func TestBulkEntriesAreIndependent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	teacher := primitive.NewObjectID()
	c := e.newCourse(t, teacher)

	entries := make([]attendance.BulkEntry, 0, 10)
	for i := 0; i < 9; i++ {
		entries = append(entries, attendance.BulkEntry{
			StudentID: primitive.NewObjectID(),
			Status:    models.StatusPresent,
		})
	}
	// Malformed entry: no student id.
	entries = append(entries, attendance.BulkEntry{Status: models.StatusPresent})

	res, err := e.ledger.RecordBulk(ctx, c.ID, time.Now(), entries, teacher)
	require.NoError(t, err)
	assert.Equal(t, 9, res.Inserted)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 1, res.Skipped)

	records, err := e.ledger.FindByCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, records, 9)
}

func TestBulkSkipsUnknownStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	teacher := primitive.NewObjectID()
	student := primitive.NewObjectID()
	c := e.newCourse(t, teacher)

	res, err := e.ledger.RecordBulk(ctx, c.ID, time.Now(), []attendance.BulkEntry{
		{StudentID: student, Status: "attending"},
		{StudentID: primitive.NewObjectID(), Status: models.StatusLate},
	}, teacher)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
}

func TestBulkRerunUpdatesInPlace(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	teacher := primitive.NewObjectID()
	student := primitive.NewObjectID()
	c := e.newCourse(t, teacher)
	day := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	_, err := e.ledger.RecordBulk(ctx, c.ID, day, []attendance.BulkEntry{
		{StudentID: student, Status: models.StatusAbsent},
	}, teacher)
	require.NoError(t, err)

	res, err := e.ledger.RecordBulk(ctx, c.ID, day, []attendance.BulkEntry{
		{StudentID: student, Status: models.StatusPresent},
	}, teacher)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 1, res.Updated)

	records, err := e.ledger.FindByCourseAndStudent(ctx, c.ID, student)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.StatusPresent, records[0].Status)
}

func TestUpdateAndDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	teacher := primitive.NewObjectID()
	student := primitive.NewObjectID()
	c := e.newCourse(t, teacher)

	rec, err := e.ledger.Record(ctx, c.ID, student, time.Now(), attendance.Mark{
		Status:     models.StatusPresent,
		RecordedBy: teacher,
	})
	require.NoError(t, err)

	excused := models.StatusExcused
	remarks := "medical leave"
	updated, err := e.ledger.UpdateByID(ctx, rec.ID, attendance.Update{Status: &excused, Remarks: &remarks})
	require.NoError(t, err)
	assert.Equal(t, models.StatusExcused, updated.Status)
	assert.Equal(t, "medical leave", updated.Remarks)

	require.NoError(t, e.ledger.DeleteByID(ctx, rec.ID))

	_, err = e.ledger.GetByID(ctx, rec.ID)
	assert.ErrorIs(t, err, attendance.ErrNotFound)
	err = e.ledger.DeleteByID(ctx, rec.ID)
	assert.ErrorIs(t, err, attendance.ErrNotFound)
}

func TestUpdateUnknownID(t *testing.T) {
	e := newEnv(t)

	status := models.StatusLate
	_, err := e.ledger.UpdateByID(context.Background(), primitive.NewObjectID(), attendance.Update{Status: &status})
	assert.ErrorIs(t, err, attendance.ErrNotFound)
}

func TestStudentStats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	teacher := primitive.NewObjectID()
	student := primitive.NewObjectID()
	c := e.newCourse(t, teacher)

	days := []time.Time{
		time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 4, 8, 0, 0, 0, time.UTC),
	}
	for _, day := range days {
		_, err := e.ledger.Record(ctx, c.ID, student, day, attendance.Mark{
			Status:     models.StatusPresent,
			RecordedBy: teacher,
		})
		require.NoError(t, err)
	}

	stats, err := e.ledger.StudentStats(ctx, c.ID, student)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Len(t, stats.Records, 3)
}
