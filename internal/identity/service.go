// Package identity is the identity directory: user accounts, roles and
// credential checks. The attendance core only resolves users here;
// authorization itself happens in the middleware policy check.
package identity

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/BallXZ48/markattendancebackend/internal/models"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type (
	Update struct {
		FullName   *string
		StudentID  *string
		Department *string
		IsActive   *bool
	}

	Repository interface {
		CreateUser(ctx context.Context, u models.User) (models.User, error)
		GetUserByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
		GetUserByEmail(ctx context.Context, email string) (models.User, error)
		FilterUsers(ctx context.Context, role models.UserRole) ([]models.User, error)
		UpdateUser(ctx context.Context, id primitive.ObjectID, upd Update) (models.User, error)
		SetUserRole(ctx context.Context, id primitive.ObjectID, role models.UserRole) (models.User, error)
		DeleteUser(ctx context.Context, id primitive.ObjectID) error
	}

	// Mailer sends account notifications. Failures are logged, never fatal.
	Mailer interface {
		Send(to, subject, body string) error
	}

	Service struct {
		repo   Repository
		mailer Mailer
	}
)

func NewService(repo Repository, mailer Mailer) *Service {
	return &Service{repo: repo, mailer: mailer}
}

type NewUser struct {
	Email      string
	FullName   string
	Password   string
	Role       models.UserRole
	StudentID  string
	Department string
}

// Register creates an account with a hashed password and sends a welcome
// notification.
func (svc *Service) Register(ctx context.Context, nu NewUser) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	role := nu.Role
	if role == "" {
		role = models.RoleStudent
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Email:        strings.ToLower(strings.TrimSpace(nu.Email)),
		FullName:     nu.FullName,
		PasswordHash: string(hash),
		Role:         role,
		StudentID:    nu.StudentID,
		Department:   nu.Department,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := svc.repo.CreateUser(ctx, u)
	if err != nil {
		return models.User{}, err
	}

	if svc.mailer != nil {
		body := "Hello " + created.FullName + ",\n\nYour attendance account has been created."
		if err := svc.mailer.Send(created.Email, "Welcome to MarkAttendance", body); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", created.Email, err)
		}
	}
	return created, nil
}

// Authenticate checks the email/password pair and returns the account.
func (svc *Service) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := svc.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if !u.IsActive {
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Resolve returns the user or ErrNotFound.
func (svc *Service) Resolve(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) FindAll(ctx context.Context, role models.UserRole) ([]models.User, error) {
	return svc.repo.FilterUsers(ctx, role)
}

func (svc *Service) UpdateByID(ctx context.Context, id primitive.ObjectID, upd Update) (models.User, error) {
	return svc.repo.UpdateUser(ctx, id, upd)
}

func (svc *Service) SetRole(ctx context.Context, id primitive.ObjectID, role models.UserRole) (models.User, error) {
	return svc.repo.SetUserRole(ctx, id, role)
}

func (svc *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return svc.repo.DeleteUser(ctx, id)
}
