package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
	StatusExcused AttendanceStatus = "excused"
)

// ValidStatus reports whether s is one of the known attendance statuses.
func ValidStatus(s AttendanceStatus) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// Attendance is one attendance record. ClassSessionID selects the addressing
// mode: when non-nil the record is unique per (class_session_id, student_id);
// when nil it is a manual entry, unique per (course_id, student_id,
// class_date). The two uniqueness constraints are disjoint partial indexes.
type Attendance struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	ClassSessionID *primitive.ObjectID `json:"class_session_id" bson:"class_session_id"`
	CourseID       primitive.ObjectID  `json:"course_id" bson:"course_id"`
	StudentID      primitive.ObjectID  `json:"student_id" bson:"student_id"`
	ClassDate      time.Time           `json:"class_date" bson:"class_date"` // midnight UTC
	Status         AttendanceStatus    `json:"status" bson:"status"`
	Remarks        string              `json:"remarks,omitempty" bson:"remarks,omitempty"`
	RecordedBy     primitive.ObjectID  `json:"recorded_by" bson:"recorded_by"`
	SessionNumber  *int                `json:"session_number,omitempty" bson:"session_number,omitempty"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" bson:"updated_at"`
}
