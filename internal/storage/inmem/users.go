package inmem

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BallXZ48/markattendancebackend/internal/identity"
	"github.com/BallXZ48/markattendancebackend/internal/models"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (repo *UserRepository) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.users {
		if existing.Email == u.Email {
			return models.User{}, identity.ErrEmailExists
		}
	}
	repo.db.users[u.ID] = &u
	return u, nil
}

func (repo *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if u, ok := repo.db.users[id]; ok {
		return *u, nil
	}
	return models.User{}, identity.ErrNotFound
}

func (repo *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, u := range repo.db.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return models.User{}, identity.ErrNotFound
}

func (repo *UserRepository) FilterUsers(ctx context.Context, role models.UserRole) ([]models.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	out := []models.User{}
	for _, u := range repo.db.users {
		if role == "" || u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (repo *UserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, upd identity.Update) (models.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	u, ok := repo.db.users[id]
	if !ok {
		return models.User{}, identity.ErrNotFound
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.StudentID != nil {
		u.StudentID = *upd.StudentID
	}
	if upd.Department != nil {
		u.Department = *upd.Department
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	u.UpdatedAt = time.Now().UTC()
	return *u, nil
}

func (repo *UserRepository) SetUserRole(ctx context.Context, id primitive.ObjectID, role models.UserRole) (models.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	u, ok := repo.db.users[id]
	if !ok {
		return models.User{}, identity.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return *u, nil
}

func (repo *UserRepository) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[id]; !ok {
		return identity.ErrNotFound
	}
	delete(repo.db.users, id)
	return nil
}
