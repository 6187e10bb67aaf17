// Package inmem holds mutex-guarded in-memory repositories that mirror the
// MongoDB repositories' semantics, uniqueness constraints included. The
// service tests run against these.
package inmem

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BallXZ48/markattendancebackend/internal/models"
)

type DB struct {
	mutex      sync.RWMutex
	users      map[primitive.ObjectID]*models.User
	courses    map[primitive.ObjectID]*models.Course
	sessions   map[primitive.ObjectID]*models.ClassSession
	attendance map[primitive.ObjectID]*models.Attendance
}

func NewDB() *DB {
	return &DB{
		users:      make(map[primitive.ObjectID]*models.User),
		courses:    make(map[primitive.ObjectID]*models.Course),
		sessions:   make(map[primitive.ObjectID]*models.ClassSession),
		attendance: make(map[primitive.ObjectID]*models.Attendance),
	}
}
