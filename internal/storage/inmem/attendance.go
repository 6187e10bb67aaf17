package inmem

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BallXZ48/markattendancebackend/internal/attendance"
	"github.com/BallXZ48/markattendancebackend/internal/models"
)

type AttendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// findByDateKey locates the manual record for (courseID, studentID, date).
// Caller must hold the lock.
func (repo *AttendanceRepository) findByDateKey(courseID, studentID primitive.ObjectID, classDate time.Time) *models.Attendance {
	for _, a := range repo.db.attendance {
		if a.ClassSessionID == nil && a.CourseID == courseID && a.StudentID == studentID && a.ClassDate.Equal(classDate) {
			return a
		}
	}
	return nil
}

func (repo *AttendanceRepository) upsertByDateLocked(courseID, studentID primitive.ObjectID, classDate time.Time, mark attendance.Mark) (models.Attendance, bool) {
	now := time.Now().UTC()
	if a := repo.findByDateKey(courseID, studentID, classDate); a != nil {
		a.Status = mark.Status
		a.RecordedBy = mark.RecordedBy
		if mark.Remarks != nil {
			a.Remarks = *mark.Remarks
		}
		a.UpdatedAt = now
		return *a, false
	}

	a := models.Attendance{
		ID:         primitive.NewObjectID(),
		CourseID:   courseID,
		StudentID:  studentID,
		ClassDate:  classDate,
		Status:     mark.Status,
		RecordedBy: mark.RecordedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if mark.Remarks != nil {
		a.Remarks = *mark.Remarks
	}
	repo.db.attendance[a.ID] = &a
	return a, true
}

func (repo *AttendanceRepository) UpsertByDate(ctx context.Context, courseID, studentID primitive.ObjectID, classDate time.Time, mark attendance.Mark) (models.Attendance, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a, _ := repo.upsertByDateLocked(courseID, studentID, classDate, mark)
	return a, nil
}

func (repo *AttendanceRepository) BulkUpsertByDate(ctx context.Context, courseID primitive.ObjectID, classDate time.Time, entries []attendance.BulkEntry, recordedBy primitive.ObjectID) (attendance.BulkResult, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	res := attendance.BulkResult{}
	for _, e := range entries {
		_, inserted := repo.upsertByDateLocked(courseID, e.StudentID, classDate, attendance.Mark{
			Status:     e.Status,
			Remarks:    e.Remarks,
			RecordedBy: recordedBy,
		})
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
	}
	return res, nil
}

func (repo *AttendanceRepository) UpsertBySession(ctx context.Context, sessionID, studentID, courseID primitive.ObjectID, classDate time.Time, status models.AttendanceStatus) (models.Attendance, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	now := time.Now().UTC()
	for _, a := range repo.db.attendance {
		if a.ClassSessionID != nil && *a.ClassSessionID == sessionID && a.StudentID == studentID {
			a.Status = status
			a.RecordedBy = studentID
			a.CourseID = courseID
			a.ClassDate = classDate
			a.UpdatedAt = now
			return *a, nil
		}
	}

	sid := sessionID
	a := models.Attendance{
		ID:             primitive.NewObjectID(),
		ClassSessionID: &sid,
		CourseID:       courseID,
		StudentID:      studentID,
		ClassDate:      classDate,
		Status:         status,
		RecordedBy:     studentID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	repo.db.attendance[a.ID] = &a
	return a, nil
}

func (repo *AttendanceRepository) find(match func(*models.Attendance) bool) []models.Attendance {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	out := []models.Attendance{}
	for _, a := range repo.db.attendance {
		if match(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClassDate.Before(out[j].ClassDate) })
	return out
}

func (repo *AttendanceRepository) FindByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Attendance, error) {
	return repo.find(func(a *models.Attendance) bool { return a.CourseID == courseID }), nil
}

func (repo *AttendanceRepository) FindByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Attendance, error) {
	return repo.find(func(a *models.Attendance) bool { return a.StudentID == studentID }), nil
}

func (repo *AttendanceRepository) FindByCourseAndStudent(ctx context.Context, courseID, studentID primitive.ObjectID) ([]models.Attendance, error) {
	return repo.find(func(a *models.Attendance) bool {
		return a.CourseID == courseID && a.StudentID == studentID
	}), nil
}

func (repo *AttendanceRepository) GetAttendanceByID(ctx context.Context, id primitive.ObjectID) (models.Attendance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.attendance[id]; ok {
		return *a, nil
	}
	return models.Attendance{}, attendance.ErrNotFound
}

func (repo *AttendanceRepository) UpdateAttendance(ctx context.Context, id primitive.ObjectID, upd attendance.Update) (models.Attendance, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a, ok := repo.db.attendance[id]
	if !ok {
		return models.Attendance{}, attendance.ErrNotFound
	}
	if upd.Status != nil {
		a.Status = *upd.Status
	}
	if upd.Remarks != nil {
		a.Remarks = *upd.Remarks
	}
	if upd.SessionNumber != nil {
		a.SessionNumber = upd.SessionNumber
	}
	a.UpdatedAt = time.Now().UTC()
	return *a, nil
}

func (repo *AttendanceRepository) DeleteAttendance(ctx context.Context, id primitive.ObjectID) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.attendance[id]; !ok {
		return attendance.ErrNotFound
	}
	delete(repo.db.attendance, id)
	return nil
}
