package inmem

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BallXZ48/markattendancebackend/internal/course"
	"github.com/BallXZ48/markattendancebackend/internal/models"
)

type CourseRepository struct {
	db *DB
}

func NewCourseRepository(db *DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (repo *CourseRepository) CreateCourse(ctx context.Context, c models.Course) (models.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.courses {
		if existing.CourseCode == c.CourseCode {
			return models.Course{}, course.ErrCodeExists
		}
	}
	repo.db.courses[c.ID] = &c
	return c, nil
}

func (repo *CourseRepository) GetCourseByID(ctx context.Context, id primitive.ObjectID) (models.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.courses[id]; ok {
		return *c, nil
	}
	return models.Course{}, course.ErrNotFound
}

func (repo *CourseRepository) find(match func(*models.Course) bool) []models.Course {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	out := []models.Course{}
	for _, c := range repo.db.courses {
		if match(c) {
			out = append(out, *c)
		}
	}
	return out
}

func (repo *CourseRepository) FilterCourses(ctx context.Context, filter course.Filter) ([]models.Course, error) {
	return repo.find(func(c *models.Course) bool {
		if filter.AcademicYear != 0 && c.AcademicYear != filter.AcademicYear {
			return false
		}
		if filter.Semester != 0 && c.Semester != filter.Semester {
			return false
		}
		if filter.TeacherID != nil && c.TeacherID != *filter.TeacherID {
			return false
		}
		return true
	}), nil
}

func (repo *CourseRepository) FindCoursesByTeacher(ctx context.Context, teacherID primitive.ObjectID) ([]models.Course, error) {
	return repo.find(func(c *models.Course) bool { return c.TeacherID == teacherID }), nil
}

func (repo *CourseRepository) FindCoursesByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Course, error) {
	return repo.find(func(c *models.Course) bool {
		for _, id := range c.StudentIDs {
			if id == studentID {
				return true
			}
		}
		return false
	}), nil
}

func (repo *CourseRepository) UpdateCourse(ctx context.Context, id primitive.ObjectID, upd course.Update) (models.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c, ok := repo.db.courses[id]
	if !ok {
		return models.Course{}, course.ErrNotFound
	}
	if upd.CourseName != nil {
		c.CourseName = *upd.CourseName
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	if upd.TeacherID != nil {
		c.TeacherID = *upd.TeacherID
	}
	if upd.Department != nil {
		c.Department = *upd.Department
	}
	if upd.RoomLocation != nil {
		c.RoomLocation = *upd.RoomLocation
	}
	if upd.Semester != nil {
		c.Semester = *upd.Semester
	}
	if upd.AcademicYear != nil {
		c.AcademicYear = *upd.AcademicYear
	}
	if upd.TotalClasses != nil {
		c.TotalClasses = *upd.TotalClasses
	}
	if upd.Credits != nil {
		c.Credits = *upd.Credits
	}
	return *c, nil
}

func (repo *CourseRepository) AddStudents(ctx context.Context, id primitive.ObjectID, studentIDs []primitive.ObjectID) (models.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c, ok := repo.db.courses[id]
	if !ok {
		return models.Course{}, course.ErrNotFound
	}
	present := make(map[primitive.ObjectID]bool, len(c.StudentIDs))
	for _, sid := range c.StudentIDs {
		present[sid] = true
	}
	for _, sid := range studentIDs {
		if !present[sid] {
			c.StudentIDs = append(c.StudentIDs, sid)
			present[sid] = true
		}
	}
	return *c, nil
}

func (repo *CourseRepository) RemoveStudents(ctx context.Context, id primitive.ObjectID, studentIDs []primitive.ObjectID) (models.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c, ok := repo.db.courses[id]
	if !ok {
		return models.Course{}, course.ErrNotFound
	}
	remove := make(map[primitive.ObjectID]bool, len(studentIDs))
	for _, sid := range studentIDs {
		remove[sid] = true
	}
	kept := c.StudentIDs[:0]
	for _, sid := range c.StudentIDs {
		if !remove[sid] {
			kept = append(kept, sid)
		}
	}
	c.StudentIDs = kept
	return *c, nil
}

func (repo *CourseRepository) DeleteCourse(ctx context.Context, id primitive.ObjectID) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[id]; !ok {
		return course.ErrNotFound
	}
	delete(repo.db.courses, id)
	return nil
}

func (repo *CourseRepository) SetCourseActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c, ok := repo.db.courses[id]
	if !ok {
		return course.ErrNotFound
	}
	c.IsActive = active
	return nil
}
