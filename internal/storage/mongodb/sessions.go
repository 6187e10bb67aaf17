package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BallXZ48/markattendancebackend/internal/models"
	"github.com/BallXZ48/markattendancebackend/internal/session"
)

type SessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{coll: db.Collection("class_sessions")}
}

func (repo *SessionRepository) CreateSession(ctx context.Context, s models.ClassSession) (models.ClassSession, error) {
	if _, err := repo.coll.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ClassSession{}, session.ErrScheduleConflict
		}
		return models.ClassSession{}, errors.Wrap(err, "inserting class session")
	}
	return s, nil
}

// EnsureOpenSession is a single find-or-create: the filter pins the open slot
// per course, $setOnInsert fills the rest only when a new document is born.
// The partial unique index on (course_id where is_attendance_open) rejects
// the insert when two opens race; the loser retries the find and converges
// on the winner's session.
func (repo *SessionRepository) EnsureOpenSession(ctx context.Context, s models.ClassSession) (models.ClassSession, error) {
	filter := bson.M{"course_id": s.CourseID, "is_attendance_open": true}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":                  s.ID,
		"title":                s.Title,
		"scheduled_start":      s.ScheduledStart,
		"scheduled_end":        s.ScheduledEnd,
		"attendance_opened_at": s.AttendanceOpenedAt,
		"attendance_closed_at": nil,
		"created_by":           s.CreatedBy,
		"opened_by":            s.OpenedBy,
		"closed_by":            nil,
		"created_at":           s.CreatedAt,
		"updated_at":           s.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out models.ClassSession
	for {
		err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
		if err == nil {
			return out, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return models.ClassSession{}, errors.Wrap(err, "ensuring open session")
		}
	}
}

func (repo *SessionRepository) FindOpenSessionByCourse(ctx context.Context, courseID primitive.ObjectID) (models.ClassSession, error) {
	var out models.ClassSession
	err := repo.coll.FindOne(ctx, bson.M{"course_id": courseID, "is_attendance_open": true}).Decode(&out)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.ClassSession{}, session.ErrNotFound
		}
		return models.ClassSession{}, errors.Wrap(err, "finding open session")
	}
	return out, nil
}

func (repo *SessionRepository) FindOpenSessionsByCourses(ctx context.Context, courseIDs []primitive.ObjectID) ([]models.ClassSession, error) {
	cursor, err := repo.coll.Find(ctx, bson.M{
		"course_id":          bson.M{"$in": courseIDs},
		"is_attendance_open": true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "finding open sessions")
	}
	defer cursor.Close(ctx)

	var out []models.ClassSession
	if err := cursor.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decoding open sessions")
	}
	return out, nil
}

func (repo *SessionRepository) GetSessionByID(ctx context.Context, id primitive.ObjectID) (models.ClassSession, error) {
	var out models.ClassSession
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.ClassSession{}, session.ErrNotFound
		}
		return models.ClassSession{}, errors.Wrap(err, "getting class session")
	}
	return out, nil
}

func (repo *SessionRepository) CloseSession(ctx context.Context, id, closedBy primitive.ObjectID, at time.Time) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_attendance_open":   false,
		"attendance_closed_at": at,
		"closed_by":            closedBy,
		"updated_at":           at,
	}})
	if err != nil {
		return errors.Wrap(err, "closing class session")
	}
	if res.MatchedCount == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (repo *SessionRepository) ListSessions(ctx context.Context, filter session.Filter) ([]models.ClassSession, error) {
	query := bson.M{}
	if filter.CourseID != nil {
		query["course_id"] = *filter.CourseID
	}
	if filter.CourseIDs != nil {
		query["course_id"] = bson.M{"$in": filter.CourseIDs}
	}
	if filter.IsAttendanceOpen != nil {
		query["is_attendance_open"] = *filter.IsAttendanceOpen
	}

	opts := options.Find().SetSort(bson.D{{Key: "scheduled_start", Value: 1}})
	cursor, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "listing class sessions")
	}
	defer cursor.Close(ctx)

	out := []models.ClassSession{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decoding class sessions")
	}
	return out, nil
}
