package auth

import "github.com/BallXZ48/markattendancebackend/internal/models"

// Action names one guarded operation. Authorization is a single table lookup
// here instead of ad hoc role-string comparisons in handlers.
type Action string

const (
	ActionManageUsers Action = "users:manage"
	ActionViewUsers   Action = "users:view"

	ActionManageCourses Action = "courses:manage"
	ActionDeleteCourse  Action = "courses:delete"
	ActionViewCourses   Action = "courses:view"

	ActionCreateSession       Action = "sessions:create"
	ActionListSessionsAdmin   Action = "sessions:list-admin"
	ActionListSessionsTeacher Action = "sessions:list-teacher"
	ActionListSessionsStudent Action = "sessions:list-student"
	ActionOpenCloseSession    Action = "sessions:open-close"

	ActionMarkOwnAttendance Action = "attendance:mark-own"
	ActionRecordAttendance  Action = "attendance:record"
	ActionBulkAttendance    Action = "attendance:bulk"
	ActionViewAttendance    Action = "attendance:view"
	ActionEditAttendance    Action = "attendance:edit"
)

var policy = map[Action][]models.UserRole{
	ActionManageUsers: {models.RoleAdmin},
	ActionViewUsers:   {models.RoleAdmin, models.RoleTeacher},

	ActionManageCourses: {models.RoleAdmin, models.RoleTeacher},
	ActionDeleteCourse:  {models.RoleAdmin},
	ActionViewCourses:   {models.RoleAdmin, models.RoleTeacher, models.RoleStudent},

	ActionCreateSession:       {models.RoleAdmin},
	ActionListSessionsAdmin:   {models.RoleAdmin},
	ActionListSessionsTeacher: {models.RoleTeacher},
	ActionListSessionsStudent: {models.RoleStudent},
	ActionOpenCloseSession:    {models.RoleAdmin, models.RoleTeacher},

	ActionMarkOwnAttendance: {models.RoleStudent},
	ActionRecordAttendance:  {models.RoleAdmin, models.RoleTeacher, models.RoleStudent},
	ActionBulkAttendance:    {models.RoleAdmin, models.RoleTeacher},
	ActionViewAttendance:    {models.RoleAdmin, models.RoleTeacher, models.RoleStudent},
	ActionEditAttendance:    {models.RoleAdmin, models.RoleTeacher},
}

// Allowed reports whether role may perform action.
func Allowed(role models.UserRole, action Action) bool {
	for _, r := range policy[action] {
		if r == role {
			return true
		}
	}
	return false
}
