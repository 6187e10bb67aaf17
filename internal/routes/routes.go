package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BallXZ48/markattendancebackend/internal/auth"
	"github.com/BallXZ48/markattendancebackend/internal/handlers"
	"github.com/BallXZ48/markattendancebackend/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Users      *handlers.UserHandler
	Courses    *handlers.CourseHandler
	Sessions   *handlers.SessionHandler
	Attendance *handlers.AttendanceHandler
}

func SetupRouter(h Handlers) *mux.Router {
	router := mux.NewRouter()

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Server is healthy"))
	}).Methods("GET")

	guard := func(action auth.Action, fn http.HandlerFunc) http.Handler {
		return middleware.Require(action)(fn)
	}

	router.HandleFunc("/api/auth/signup", h.Auth.Signup).Methods("POST")
	router.HandleFunc("/api/auth/login", h.Auth.Login).Methods("POST")
	router.HandleFunc("/api/auth/logout", h.Auth.Logout).Methods("POST")
	router.Handle("/api/auth/me", guard(auth.ActionViewCourses, h.Auth.Me)).Methods("GET")

	router.Handle("/api/users", guard(auth.ActionManageUsers, h.Users.CreateUser)).Methods("POST")
	router.Handle("/api/users", guard(auth.ActionViewUsers, h.Users.GetUsers)).Methods("GET")
	router.Handle("/api/users/{id}", guard(auth.ActionViewUsers, h.Users.GetUserByID)).Methods("GET")
	router.Handle("/api/users/{id}", guard(auth.ActionManageUsers, h.Users.UpdateUser)).Methods("PUT")
	router.Handle("/api/users/{id}/role", guard(auth.ActionManageUsers, h.Users.UpdateUserRole)).Methods("PUT")
	router.Handle("/api/users/{id}", guard(auth.ActionManageUsers, h.Users.DeleteUser)).Methods("DELETE")

	router.Handle("/api/courses", guard(auth.ActionManageCourses, h.Courses.CreateCourse)).Methods("POST")
	router.Handle("/api/courses", guard(auth.ActionViewCourses, h.Courses.GetCourses)).Methods("GET")
	router.Handle("/api/courses/teacher/{teacherId}", guard(auth.ActionViewUsers, h.Courses.GetTeacherCourses)).Methods("GET")
	router.Handle("/api/courses/student/{studentId}", guard(auth.ActionViewCourses, h.Courses.GetStudentCourses)).Methods("GET")
	router.Handle("/api/courses/{id}", guard(auth.ActionViewCourses, h.Courses.GetCourseByID)).Methods("GET")
	router.Handle("/api/courses/{id}", guard(auth.ActionManageCourses, h.Courses.UpdateCourse)).Methods("PUT")
	router.Handle("/api/courses/{id}/students/add", guard(auth.ActionManageCourses, h.Courses.AddStudents)).Methods("POST")
	router.Handle("/api/courses/{id}/students/remove", guard(auth.ActionManageCourses, h.Courses.RemoveStudents)).Methods("POST")
	router.Handle("/api/courses/{id}", guard(auth.ActionDeleteCourse, h.Courses.DeleteCourse)).Methods("DELETE")

	router.Handle("/api/attendance/sessions", guard(auth.ActionCreateSession, h.Sessions.CreateSession)).Methods("POST")
	router.Handle("/api/attendance/sessions/admin", guard(auth.ActionListSessionsAdmin, h.Sessions.ListSessionsAdmin)).Methods("GET")
	router.Handle("/api/attendance/sessions/teacher", guard(auth.ActionListSessionsTeacher, h.Sessions.ListSessionsTeacher)).Methods("GET")
	router.Handle("/api/attendance/sessions/student", guard(auth.ActionListSessionsStudent, h.Sessions.ListSessionsStudent)).Methods("GET")
	router.Handle("/api/attendance/courses/{courseId}/open", guard(auth.ActionOpenCloseSession, h.Sessions.OpenSession)).Methods("POST")
	router.Handle("/api/attendance/courses/{courseId}/close", guard(auth.ActionOpenCloseSession, h.Sessions.CloseSession)).Methods("POST")
	router.Handle("/api/attendance/sessions/{sessionId}/mark", guard(auth.ActionMarkOwnAttendance, h.Attendance.Mark)).Methods("POST")

	router.Handle("/api/attendance", guard(auth.ActionRecordAttendance, h.Attendance.Record)).Methods("POST")
	router.Handle("/api/attendance/bulk", guard(auth.ActionBulkAttendance, h.Attendance.RecordBulk)).Methods("POST")
	router.Handle("/api/attendance/course/{courseId}", guard(auth.ActionViewAttendance, h.Attendance.GetByCourse)).Methods("GET")
	router.Handle("/api/attendance/student/{studentId}/course/{courseId}", guard(auth.ActionViewAttendance, h.Attendance.GetByStudentAndCourse)).Methods("GET")
	router.Handle("/api/attendance/student/{studentId}", guard(auth.ActionViewAttendance, h.Attendance.GetByStudent)).Methods("GET")
	router.Handle("/api/attendance/stats/student/{studentId}/course/{courseId}", guard(auth.ActionViewAttendance, h.Attendance.GetStudentStats)).Methods("GET")
	router.Handle("/api/attendance/report", guard(auth.ActionBulkAttendance, h.Attendance.GetReport)).Methods("GET")
	router.Handle("/api/attendance/{id}", guard(auth.ActionViewAttendance, h.Attendance.GetByID)).Methods("GET")
	router.Handle("/api/attendance/{id}", guard(auth.ActionEditAttendance, h.Attendance.Update)).Methods("PUT")
	router.Handle("/api/attendance/{id}", guard(auth.ActionEditAttendance, h.Attendance.Delete)).Methods("DELETE")

	router.Use(middleware.RequestID)

	return router
}
