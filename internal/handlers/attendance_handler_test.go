package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BallXZ48/markattendancebackend/internal/attendance"
	"github.com/BallXZ48/markattendancebackend/internal/auth"
	"github.com/BallXZ48/markattendancebackend/internal/course"
	"github.com/BallXZ48/markattendancebackend/internal/handlers"
	"github.com/BallXZ48/markattendancebackend/internal/identity"
	"github.com/BallXZ48/markattendancebackend/internal/models"
	"github.com/BallXZ48/markattendancebackend/internal/routes"
	"github.com/BallXZ48/markattendancebackend/internal/session"
	"github.com/BallXZ48/markattendancebackend/internal/storage/inmem"
)

type testEnv struct {
	router   *mux.Router
	users    *identity.Service
	courses  *course.Service
	sessions *session.Service
	ledger   *attendance.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	auth.Configure("test-secret")

	db := inmem.NewDB()
	users := identity.NewService(inmem.NewUserRepository(db), nil)
	courses := course.NewService(inmem.NewCourseRepository(db))
	sessions := session.NewService(inmem.NewSessionRepository(db), courses, false)
	ledger := attendance.NewService(inmem.NewAttendanceRepository(db), sessions)

	router := routes.SetupRouter(routes.Handlers{
		Auth:       handlers.NewAuthHandler(users),
		Users:      handlers.NewUserHandler(users),
		Courses:    handlers.NewCourseHandler(courses),
		Sessions:   handlers.NewSessionHandler(sessions),
		Attendance: handlers.NewAttendanceHandler(ledger),
	})
	return &testEnv{router: router, users: users, courses: courses, sessions: sessions, ledger: ledger}
}

func (env *testEnv) do(t *testing.T, method, path, body string, as *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		token, err := auth.GenerateJWT(as.ID.Hex(), as.Role)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) seedCourse(t *testing.T) (teacher, student models.User, c models.Course) {
	t.Helper()
	ctx := context.Background()

	teacher, err := env.users.Register(ctx, identity.NewUser{
		Email:    "teacher@university.edu",
		FullName: "Teacher",
		Password: "password123",
		Role:     models.RoleTeacher,
	})
	require.NoError(t, err)

	student, err = env.users.Register(ctx, identity.NewUser{
		Email:    "student@university.edu",
		FullName: "Student",
		Password: "password123",
	})
	require.NoError(t, err)

	c, err = env.courses.Create(ctx, course.NewCourse{
		CourseCode: "CS101",
		CourseName: "Intro to Computing",
		TeacherID:  teacher.ID,
		StudentIDs: []primitive.ObjectID{student.ID},
	})
	require.NoError(t, err)
	return teacher, student, c
}

func TestMarkOpenSessionOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	teacher, student, c := env.seedCourse(t)

	rec := env.do(t, "POST", "/api/attendance/courses/"+c.ID.Hex()+"/open", "", &teacher)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var opened models.ClassSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opened))
	assert.True(t, opened.IsAttendanceOpen)

	rec = env.do(t, "POST", "/api/attendance/sessions/"+opened.ID.Hex()+"/mark",
		`{"status":"present"}`, &student)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var marked models.Attendance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &marked))
	assert.Equal(t, models.StatusPresent, marked.Status)
	assert.Equal(t, student.ID, marked.StudentID)
	require.NotNil(t, marked.ClassSessionID)
	assert.Equal(t, opened.ID, *marked.ClassSessionID)
}

func TestMarkClosedSessionOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	teacher, student, c := env.seedCourse(t)

	ctx := context.Background()
	opened, err := env.sessions.Open(ctx, c.ID, teacher.ID, teacher.Role)
	require.NoError(t, err)
	require.NoError(t, env.sessions.Close(ctx, c.ID, teacher.ID, teacher.Role))

	rec := env.do(t, "POST", "/api/attendance/sessions/"+opened.ID.Hex()+"/mark",
		`{"status":"present"}`, &student)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	teacher, _, c := env.seedCourse(t)

	opened, err := env.sessions.Open(context.Background(), c.ID, teacher.ID, teacher.Role)
	require.NoError(t, err)

	rec := env.do(t, "POST", "/api/attendance/sessions/"+opened.ID.Hex()+"/mark",
		`{"status":"present"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Teachers record through the roster endpoints, not self check-in.
	rec = env.do(t, "POST", "/api/attendance/sessions/"+opened.ID.Hex()+"/mark",
		`{"status":"present"}`, &teacher)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStudentRecordForcedToOwnID(t *testing.T) {
	env := newTestEnv(t)
	_, student, c := env.seedCourse(t)

	other := primitive.NewObjectID()
	body := fmt.Sprintf(`{"course_id":%q,"student_id":%q,"class_date":"2026-03-02T10:00:00Z","status":"present"}`,
		c.ID.Hex(), other.Hex())
	rec := env.do(t, "POST", "/api/attendance", body, &student)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Attendance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, student.ID, created.StudentID)
}

func TestBulkRecordOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	teacher, student, c := env.seedCourse(t)

	body := fmt.Sprintf(`{"course_id":%q,"class_date":"2026-03-02T10:00:00Z","records":[
		{"student_id":%q,"status":"present"},
		{"student_id":"not-an-id","status":"present"}
	]}`, c.ID.Hex(), student.ID.Hex())
	rec := env.do(t, "POST", "/api/attendance/bulk", body, &teacher)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res attendance.BulkResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
}

func TestSignupAndLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/auth/signup",
		`{"email":"new@university.edu","full_name":"New Student","password":"password123"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, "POST", "/api/auth/login",
		`{"email":"new@university.edu","password":"password123"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var token string
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "token" {
			token = cookie.Value
		}
	}
	require.NotEmpty(t, token, "login should set the token cookie")

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	me := httptest.NewRecorder()
	env.router.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)

	rec = env.do(t, "POST", "/api/auth/login",
		`{"email":"new@university.edu","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCloseWithoutOpenSessionOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	teacher, _, c := env.seedCourse(t)

	rec := env.do(t, "POST", "/api/attendance/courses/"+c.ID.Hex()+"/close", "", &teacher)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
