package mongodb

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BallXZ48/markattendancebackend/internal/attendance"
	"github.com/BallXZ48/markattendancebackend/internal/models"
)

type AttendanceRepository struct {
	coll *mongo.Collection
}

func NewAttendanceRepository(db *mongo.Database) *AttendanceRepository {
	return &AttendanceRepository{coll: db.Collection("attendance")}
}

// UpsertByDate writes the manual record in one atomic update-or-insert. The
// class_session_id: null filter term targets the date-scoped partial index
// and lands null in new documents, keeping the two addressing modes disjoint.
func (repo *AttendanceRepository) UpsertByDate(ctx context.Context, courseID, studentID primitive.ObjectID, classDate time.Time, mark attendance.Mark) (models.Attendance, error) {
	now := time.Now().UTC()
	set := bson.M{
		"status":      mark.Status,
		"recorded_by": mark.RecordedBy,
		"updated_at":  now,
	}
	if mark.Remarks != nil {
		set["remarks"] = *mark.Remarks
	}

	filter := bson.M{
		"class_session_id": nil,
		"course_id":        courseID,
		"student_id":       studentID,
		"class_date":       classDate,
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out models.Attendance
	if err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return models.Attendance{}, errors.Wrap(err, "upserting attendance by date")
	}
	return out, nil
}

// BulkUpsertByDate issues one unordered BulkWrite of independent upserts;
// a failing entry does not stop the rest.
func (repo *AttendanceRepository) BulkUpsertByDate(ctx context.Context, courseID primitive.ObjectID, classDate time.Time, entries []attendance.BulkEntry, recordedBy primitive.ObjectID) (attendance.BulkResult, error) {
	if len(entries) == 0 {
		return attendance.BulkResult{}, nil
	}

	now := time.Now().UTC()
	ops := make([]mongo.WriteModel, 0, len(entries))
	for _, e := range entries {
		set := bson.M{
			"status":      e.Status,
			"recorded_by": recordedBy,
			"updated_at":  now,
		}
		if e.Remarks != nil {
			set["remarks"] = *e.Remarks
		}
		ops = append(ops, mongo.NewUpdateOneModel().
			SetFilter(bson.M{
				"class_session_id": nil,
				"course_id":        courseID,
				"student_id":       e.StudentID,
				"class_date":       classDate,
			}).
			SetUpdate(bson.M{
				"$set":         set,
				"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "created_at": now},
			}).
			SetUpsert(true))
	}

	res, err := repo.coll.BulkWrite(ctx, ops, options.BulkWrite().SetOrdered(false))
	if err != nil {
		// Unordered bulk writes land the rest of the batch and report
		// per-op errors; log each one and count it as failed.
		bwe, ok := err.(mongo.BulkWriteException)
		if !ok || res == nil {
			return attendance.BulkResult{}, errors.Wrap(err, "bulk upserting attendance")
		}
		for _, we := range bwe.WriteErrors {
			log.Printf("Bulk attendance upsert for entry %d failed: %s", we.Index, we.Message)
		}
		return attendance.BulkResult{
			Inserted: int(res.UpsertedCount),
			Updated:  int(res.ModifiedCount),
			Failed:   len(bwe.WriteErrors),
		}, nil
	}
	return attendance.BulkResult{
		Inserted: int(res.UpsertedCount),
		Updated:  int(res.ModifiedCount),
	}, nil
}

func (repo *AttendanceRepository) UpsertBySession(ctx context.Context, sessionID, studentID, courseID primitive.ObjectID, classDate time.Time, status models.AttendanceStatus) (models.Attendance, error) {
	now := time.Now().UTC()
	filter := bson.M{"class_session_id": sessionID, "student_id": studentID}
	update := bson.M{
		"$set": bson.M{
			"status":      status,
			"recorded_by": studentID,
			"course_id":   courseID,
			"class_date":  classDate,
			"updated_at":  now,
		},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out models.Attendance
	if err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return models.Attendance{}, errors.Wrap(err, "upserting attendance by session")
	}
	return out, nil
}

func (repo *AttendanceRepository) find(ctx context.Context, query bson.M) ([]models.Attendance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "class_date", Value: 1}})
	cursor, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding attendance")
	}
	defer cursor.Close(ctx)

	out := []models.Attendance{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decoding attendance")
	}
	return out, nil
}

func (repo *AttendanceRepository) FindByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Attendance, error) {
	return repo.find(ctx, bson.M{"course_id": courseID})
}

func (repo *AttendanceRepository) FindByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Attendance, error) {
	return repo.find(ctx, bson.M{"student_id": studentID})
}

func (repo *AttendanceRepository) FindByCourseAndStudent(ctx context.Context, courseID, studentID primitive.ObjectID) ([]models.Attendance, error) {
	return repo.find(ctx, bson.M{"course_id": courseID, "student_id": studentID})
}

func (repo *AttendanceRepository) GetAttendanceByID(ctx context.Context, id primitive.ObjectID) (models.Attendance, error) {
	var out models.Attendance
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Attendance{}, attendance.ErrNotFound
		}
		return models.Attendance{}, errors.Wrap(err, "getting attendance")
	}
	return out, nil
}

func (repo *AttendanceRepository) UpdateAttendance(ctx context.Context, id primitive.ObjectID, upd attendance.Update) (models.Attendance, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.Remarks != nil {
		set["remarks"] = *upd.Remarks
	}
	if upd.SessionNumber != nil {
		set["session_number"] = *upd.SessionNumber
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.Attendance
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&out)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Attendance{}, attendance.ErrNotFound
		}
		return models.Attendance{}, errors.Wrap(err, "updating attendance")
	}
	return out, nil
}

func (repo *AttendanceRepository) DeleteAttendance(ctx context.Context, id primitive.ObjectID) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	if res.DeletedCount == 0 {
		return attendance.ErrNotFound
	}
	return nil
}
