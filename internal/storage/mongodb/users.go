package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BallXZ48/markattendancebackend/internal/identity"
	"github.com/BallXZ48/markattendancebackend/internal/models"
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection("users")}
}

func (repo *UserRepository) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if _, err := repo.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, identity.ErrEmailExists
		}
		return models.User{}, errors.Wrap(err, "inserting user")
	}
	return u, nil
}

func (repo *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var out models.User
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.User{}, identity.ErrNotFound
		}
		return models.User{}, errors.Wrap(err, "getting user")
	}
	return out, nil
}

func (repo *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var out models.User
	if err := repo.coll.FindOne(ctx, bson.M{"email": email}).Decode(&out); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.User{}, identity.ErrNotFound
		}
		return models.User{}, errors.Wrap(err, "getting user by email")
	}
	return out, nil
}

func (repo *UserRepository) FilterUsers(ctx context.Context, role models.UserRole) ([]models.User, error) {
	query := bson.M{}
	if role != "" {
		query["role"] = role
	}

	cursor, err := repo.coll.Find(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "finding users")
	}
	defer cursor.Close(ctx)

	out := []models.User{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decoding users")
	}
	return out, nil
}

func (repo *UserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, upd identity.Update) (models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.FullName != nil {
		set["full_name"] = *upd.FullName
	}
	if upd.StudentID != nil {
		set["student_id"] = *upd.StudentID
	}
	if upd.Department != nil {
		set["department"] = *upd.Department
	}
	if upd.IsActive != nil {
		set["is_active"] = *upd.IsActive
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.User
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&out)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.User{}, identity.ErrNotFound
		}
		return models.User{}, errors.Wrap(err, "updating user")
	}
	return out, nil
}

func (repo *UserRepository) SetUserRole(ctx context.Context, id primitive.ObjectID, role models.UserRole) (models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"role": role, "updated_at": time.Now().UTC()}}

	var out models.User
	if err := repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&out); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.User{}, identity.ErrNotFound
		}
		return models.User{}, errors.Wrap(err, "setting user role")
	}
	return out, nil
}

func (repo *UserRepository) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if res.DeletedCount == 0 {
		return identity.ErrNotFound
	}
	return nil
}
