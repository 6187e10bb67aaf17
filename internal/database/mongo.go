package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongoDB establishes a client connection and verifies it with a ping.
func ConnectMongoDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "pinging mongodb")
	}

	return client, nil
}

// EnsureIndexes creates the uniqueness constraints the services rely on.
//
// Attendance carries two disjoint partial unique indexes, one per addressing
// mode: session-scoped records (class_session_id set) are unique per
// (class_session_id, student_id); manual date-scoped records
// (class_session_id null) are unique per (course_id, student_id, class_date).
// They must stay separate indexes or check-ins and manual entries for the
// same student and day would collide.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "creating users index")
	}

	_, err = db.Collection("courses").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "course_code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "creating courses index")
	}

	_, err = db.Collection("class_sessions").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "course_id", Value: 1}, {Key: "scheduled_start", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// The open slot: at most one session per course may have
			// is_attendance_open set. Backs the EnsureOpenSession upsert so
			// racing opens cannot both insert.
			Keys: bson.D{{Key: "course_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_attendance_open": true}),
		},
	})
	if err != nil {
		return errors.Wrap(err, "creating class_sessions indexes")
	}

	_, err = db.Collection("attendance").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "class_session_id", Value: 1}, {Key: "student_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"class_session_id": bson.M{"$type": "objectId"}}),
		},
		{
			Keys: bson.D{
				{Key: "course_id", Value: 1},
				{Key: "student_id", Value: 1},
				{Key: "class_date", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"class_session_id": bson.M{"$eq": nil}}),
		},
	})
	return errors.Wrap(err, "creating attendance indexes")
}
