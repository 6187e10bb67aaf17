// Package attendance is the attendance ledger. Every write path is a single
// atomic upsert keyed by one of the two uniqueness constraints, so repeated
// marks overwrite status instead of inserting duplicates.
package attendance

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BallXZ48/markattendancebackend/internal/models"
	"github.com/BallXZ48/markattendancebackend/internal/session"
)

var (
	ErrNotFound = errors.New("attendance record not found")
	// ErrSessionClosed covers both a missing session and one that is no
	// longer accepting check-ins; callers get a client error either way.
	ErrSessionClosed = errors.New("session closed or not found")
)

type (
	// Mark is the payload of a date-scoped upsert.
	Mark struct {
		Status     models.AttendanceStatus
		Remarks    *string
		RecordedBy primitive.ObjectID
	}

	// BulkEntry is one student's mark inside a bulk upload.
	BulkEntry struct {
		StudentID primitive.ObjectID
		Status    models.AttendanceStatus
		Remarks   *string
	}

	// BulkResult reports per-key outcomes; there is no atomicity across
	// entries. Skipped counts entries rejected before the write, Failed
	// counts entries the store refused.
	BulkResult struct {
		Inserted int `json:"inserted"`
		Updated  int `json:"updated"`
		Skipped  int `json:"skipped"`
		Failed   int `json:"failed"`
	}

	Update struct {
		Status        *models.AttendanceStatus
		Remarks       *string
		SessionNumber *int
	}

	Repository interface {
		// UpsertByDate updates or inserts the manual record keyed by
		// (courseID, studentID, classDate) with class_session_id null.
		UpsertByDate(ctx context.Context, courseID, studentID primitive.ObjectID, classDate time.Time, mark Mark) (models.Attendance, error)
		// BulkUpsertByDate issues the entries as independent unordered
		// upserts on the same key.
		BulkUpsertByDate(ctx context.Context, courseID primitive.ObjectID, classDate time.Time, entries []BulkEntry, recordedBy primitive.ObjectID) (BulkResult, error)
		// UpsertBySession updates or inserts the record keyed by
		// (sessionID, studentID).
		UpsertBySession(ctx context.Context, sessionID, studentID, courseID primitive.ObjectID, classDate time.Time, status models.AttendanceStatus) (models.Attendance, error)
		FindByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Attendance, error)
		FindByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Attendance, error)
		FindByCourseAndStudent(ctx context.Context, courseID, studentID primitive.ObjectID) ([]models.Attendance, error)
		GetAttendanceByID(ctx context.Context, id primitive.ObjectID) (models.Attendance, error)
		UpdateAttendance(ctx context.Context, id primitive.ObjectID, upd Update) (models.Attendance, error)
		DeleteAttendance(ctx context.Context, id primitive.ObjectID) error
	}

	// SessionDirectory is the read-only slice of the session store the
	// ledger needs to vet check-ins.
	SessionDirectory interface {
		GetByID(ctx context.Context, id primitive.ObjectID) (models.ClassSession, error)
	}

	Service struct {
		repo     Repository
		sessions SessionDirectory
	}
)

func NewService(repo Repository, sessions SessionDirectory) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// normalizeDate anchors a timestamp to midnight UTC so any two instants on
// the same day address the same record.
func normalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Record upserts a manual (date-scoped) attendance record. Recording twice
// for the same day overwrites the status.
func (svc *Service) Record(ctx context.Context, courseID, studentID primitive.ObjectID, classDate time.Time, mark Mark) (models.Attendance, error) {
	return svc.repo.UpsertByDate(ctx, courseID, studentID, normalizeDate(classDate), mark)
}

// RecordBulk applies a batch of independent date-scoped upserts. Entries with
// an unknown status or zero student id are counted as skipped; the rest go
// through regardless.
func (svc *Service) RecordBulk(ctx context.Context, courseID primitive.ObjectID, classDate time.Time, entries []BulkEntry, recordedBy primitive.ObjectID) (BulkResult, error) {
	valid := make([]BulkEntry, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		if e.StudentID.IsZero() || !models.ValidStatus(e.Status) {
			skipped++
			continue
		}
		valid = append(valid, e)
	}

	res, err := svc.repo.BulkUpsertByDate(ctx, courseID, normalizeDate(classDate), valid, recordedBy)
	if err != nil {
		return BulkResult{}, err
	}
	res.Skipped += skipped
	return res, nil
}

// MarkForOpenSession is the student self-check-in path. It fails with
// ErrSessionClosed unless the session exists and is open; on success it
// upserts by (session, student), so repeated calls stay a single record.
func (svc *Service) MarkForOpenSession(ctx context.Context, sessionID, studentID primitive.ObjectID, status models.AttendanceStatus) (models.Attendance, error) {
	s, err := svc.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			log.Printf("Student %s attempted to check in to unknown session %s", studentID.Hex(), sessionID.Hex())
			return models.Attendance{}, ErrSessionClosed
		}
		return models.Attendance{}, err
	}
	if !s.IsAttendanceOpen {
		log.Printf("Student %s attempted to check in to closed session %s", studentID.Hex(), sessionID.Hex())
		return models.Attendance{}, ErrSessionClosed
	}

	return svc.repo.UpsertBySession(ctx, s.ID, studentID, s.CourseID, normalizeDate(time.Now()), status)
}

func (svc *Service) FindByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Attendance, error) {
	return svc.repo.FindByCourse(ctx, courseID)
}

func (svc *Service) FindByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Attendance, error) {
	return svc.repo.FindByStudent(ctx, studentID)
}

func (svc *Service) FindByCourseAndStudent(ctx context.Context, courseID, studentID primitive.ObjectID) ([]models.Attendance, error) {
	return svc.repo.FindByCourseAndStudent(ctx, courseID, studentID)
}

func (svc *Service) GetByID(ctx context.Context, id primitive.ObjectID) (models.Attendance, error) {
	return svc.repo.GetAttendanceByID(ctx, id)
}

// Stats is a per-student, per-course attendance summary.
type Stats struct {
	Total   int                 `json:"total"`
	Records []models.Attendance `json:"records"`
}

func (svc *Service) StudentStats(ctx context.Context, courseID, studentID primitive.ObjectID) (Stats, error) {
	records, err := svc.repo.FindByCourseAndStudent(ctx, courseID, studentID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Total: len(records), Records: records}, nil
}

func (svc *Service) UpdateByID(ctx context.Context, id primitive.ObjectID, upd Update) (models.Attendance, error) {
	return svc.repo.UpdateAttendance(ctx, id, upd)
}

func (svc *Service) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	return svc.repo.DeleteAttendance(ctx, id)
}
