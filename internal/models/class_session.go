package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClassSession is one attendance-taking window for a course. At most one
// session per course may have IsAttendanceOpen set at any instant, and the
// (course_id, scheduled_start) pair is unique.
type ClassSession struct {
	ID                 primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	CourseID           primitive.ObjectID  `json:"course_id" bson:"course_id"`
	Title              string              `json:"title" bson:"title"`
	ScheduledStart     time.Time           `json:"scheduled_start" bson:"scheduled_start"`
	ScheduledEnd       time.Time           `json:"scheduled_end" bson:"scheduled_end"`
	IsAttendanceOpen   bool                `json:"is_attendance_open" bson:"is_attendance_open"`
	AttendanceOpenedAt *time.Time          `json:"attendance_opened_at" bson:"attendance_opened_at"`
	AttendanceClosedAt *time.Time          `json:"attendance_closed_at" bson:"attendance_closed_at"`
	CreatedBy          primitive.ObjectID  `json:"created_by" bson:"created_by"`
	OpenedBy           *primitive.ObjectID `json:"opened_by" bson:"opened_by"`
	ClosedBy           *primitive.ObjectID `json:"closed_by" bson:"closed_by"`
	CreatedAt          time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at" bson:"updated_at"`
}
