package inmem

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BallXZ48/markattendancebackend/internal/models"
	"github.com/BallXZ48/markattendancebackend/internal/session"
)

type SessionRepository struct {
	db *DB
}

func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (repo *SessionRepository) CreateSession(ctx context.Context, s models.ClassSession) (models.ClassSession, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.sessions {
		if existing.CourseID == s.CourseID && existing.ScheduledStart.Equal(s.ScheduledStart) {
			return models.ClassSession{}, session.ErrScheduleConflict
		}
	}
	repo.db.sessions[s.ID] = &s
	return s, nil
}

func (repo *SessionRepository) EnsureOpenSession(ctx context.Context, s models.ClassSession) (models.ClassSession, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.sessions {
		if existing.CourseID == s.CourseID && existing.IsAttendanceOpen {
			return *existing, nil
		}
	}
	repo.db.sessions[s.ID] = &s
	return s, nil
}

func (repo *SessionRepository) FindOpenSessionByCourse(ctx context.Context, courseID primitive.ObjectID) (models.ClassSession, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.sessions {
		if s.CourseID == courseID && s.IsAttendanceOpen {
			return *s, nil
		}
	}
	return models.ClassSession{}, session.ErrNotFound
}

func (repo *SessionRepository) FindOpenSessionsByCourses(ctx context.Context, courseIDs []primitive.ObjectID) ([]models.ClassSession, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := make(map[primitive.ObjectID]bool, len(courseIDs))
	for _, id := range courseIDs {
		wanted[id] = true
	}

	out := []models.ClassSession{}
	for _, s := range repo.db.sessions {
		if s.IsAttendanceOpen && wanted[s.CourseID] {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (repo *SessionRepository) GetSessionByID(ctx context.Context, id primitive.ObjectID) (models.ClassSession, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.sessions[id]; ok {
		return *s, nil
	}
	return models.ClassSession{}, session.ErrNotFound
}

func (repo *SessionRepository) CloseSession(ctx context.Context, id, closedBy primitive.ObjectID, at time.Time) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s, ok := repo.db.sessions[id]
	if !ok {
		return session.ErrNotFound
	}
	s.IsAttendanceOpen = false
	s.AttendanceClosedAt = &at
	s.ClosedBy = &closedBy
	s.UpdatedAt = at
	return nil
}

func (repo *SessionRepository) ListSessions(ctx context.Context, filter session.Filter) ([]models.ClassSession, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var wanted map[primitive.ObjectID]bool
	if filter.CourseIDs != nil {
		wanted = make(map[primitive.ObjectID]bool, len(filter.CourseIDs))
		for _, id := range filter.CourseIDs {
			wanted[id] = true
		}
	}

	out := []models.ClassSession{}
	for _, s := range repo.db.sessions {
		if filter.CourseID != nil && s.CourseID != *filter.CourseID {
			continue
		}
		if wanted != nil && !wanted[s.CourseID] {
			continue
		}
		if filter.IsAttendanceOpen != nil && s.IsAttendanceOpen != *filter.IsAttendanceOpen {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledStart.Before(out[j].ScheduledStart) })
	return out, nil
}
