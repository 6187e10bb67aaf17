package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Course struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	CourseCode   string               `json:"course_code" bson:"course_code"`
	CourseName   string               `json:"course_name" bson:"course_name"`
	Description  string               `json:"description" bson:"description"`
	TeacherID    primitive.ObjectID   `json:"teacher_id" bson:"teacher_id"`
	Department   string               `json:"department" bson:"department"`
	RoomLocation string               `json:"room_location" bson:"room_location"`
	Semester     int                  `json:"semester" bson:"semester"`
	AcademicYear int                  `json:"academic_year" bson:"academic_year"`
	StudentIDs   []primitive.ObjectID `json:"student_ids" bson:"student_ids"`
	TotalClasses int                  `json:"total_classes" bson:"total_classes"`
	Credits      int                  `json:"credits" bson:"credits"`
	// IsActive mirrors whether the course currently has an open class
	// session. The session store is the only writer of this flag.
	IsActive  bool      `json:"is_active" bson:"is_active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
