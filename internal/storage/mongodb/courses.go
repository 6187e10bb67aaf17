package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BallXZ48/markattendancebackend/internal/course"
	"github.com/BallXZ48/markattendancebackend/internal/models"
)

type CourseRepository struct {
	coll *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{coll: db.Collection("courses")}
}

func (repo *CourseRepository) CreateCourse(ctx context.Context, c models.Course) (models.Course, error) {
	if _, err := repo.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Course{}, course.ErrCodeExists
		}
		return models.Course{}, errors.Wrap(err, "inserting course")
	}
	return c, nil
}

func (repo *CourseRepository) GetCourseByID(ctx context.Context, id primitive.ObjectID) (models.Course, error) {
	var out models.Course
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Course{}, course.ErrNotFound
		}
		return models.Course{}, errors.Wrap(err, "getting course")
	}
	return out, nil
}

func (repo *CourseRepository) find(ctx context.Context, query bson.M) ([]models.Course, error) {
	cursor, err := repo.coll.Find(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "finding courses")
	}
	defer cursor.Close(ctx)

	out := []models.Course{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decoding courses")
	}
	return out, nil
}

func (repo *CourseRepository) FilterCourses(ctx context.Context, filter course.Filter) ([]models.Course, error) {
	query := bson.M{}
	if filter.AcademicYear != 0 {
		query["academic_year"] = filter.AcademicYear
	}
	if filter.Semester != 0 {
		query["semester"] = filter.Semester
	}
	if filter.TeacherID != nil {
		query["teacher_id"] = *filter.TeacherID
	}
	return repo.find(ctx, query)
}

func (repo *CourseRepository) FindCoursesByTeacher(ctx context.Context, teacherID primitive.ObjectID) ([]models.Course, error) {
	return repo.find(ctx, bson.M{"teacher_id": teacherID})
}

func (repo *CourseRepository) FindCoursesByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Course, error) {
	return repo.find(ctx, bson.M{"student_ids": studentID})
}

func (repo *CourseRepository) UpdateCourse(ctx context.Context, id primitive.ObjectID, upd course.Update) (models.Course, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.CourseName != nil {
		set["course_name"] = *upd.CourseName
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.TeacherID != nil {
		set["teacher_id"] = *upd.TeacherID
	}
	if upd.Department != nil {
		set["department"] = *upd.Department
	}
	if upd.RoomLocation != nil {
		set["room_location"] = *upd.RoomLocation
	}
	if upd.Semester != nil {
		set["semester"] = *upd.Semester
	}
	if upd.AcademicYear != nil {
		set["academic_year"] = *upd.AcademicYear
	}
	if upd.TotalClasses != nil {
		set["total_classes"] = *upd.TotalClasses
	}
	if upd.Credits != nil {
		set["credits"] = *upd.Credits
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.Course
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&out)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Course{}, course.ErrNotFound
		}
		return models.Course{}, errors.Wrap(err, "updating course")
	}
	return out, nil
}

func (repo *CourseRepository) AddStudents(ctx context.Context, id primitive.ObjectID, studentIDs []primitive.ObjectID) (models.Course, error) {
	update := bson.M{
		"$addToSet": bson.M{"student_ids": bson.M{"$each": studentIDs}},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.Course
	if err := repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&out); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Course{}, course.ErrNotFound
		}
		return models.Course{}, errors.Wrap(err, "adding students to course")
	}
	return out, nil
}

func (repo *CourseRepository) RemoveStudents(ctx context.Context, id primitive.ObjectID, studentIDs []primitive.ObjectID) (models.Course, error) {
	update := bson.M{
		"$pull": bson.M{"student_ids": bson.M{"$in": studentIDs}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.Course
	if err := repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&out); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Course{}, course.ErrNotFound
		}
		return models.Course{}, errors.Wrap(err, "removing students from course")
	}
	return out, nil
}

func (repo *CourseRepository) DeleteCourse(ctx context.Context, id primitive.ObjectID) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if res.DeletedCount == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo *CourseRepository) SetCourseActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_active": active}})
	if err != nil {
		return errors.Wrap(err, "setting course active flag")
	}
	if res.MatchedCount == 0 {
		return course.ErrNotFound
	}
	return nil
}
