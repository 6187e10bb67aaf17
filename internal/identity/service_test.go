package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BallXZ48/markattendancebackend/internal/identity"
	"github.com/BallXZ48/markattendancebackend/internal/models"
	"github.com/BallXZ48/markattendancebackend/internal/storage/inmem"
)

func newService() *identity.Service {
	return identity.NewService(inmem.NewUserRepository(inmem.NewDB()), nil)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	u, err := svc.Register(ctx, identity.NewUser{
		Email:    "Jane.Doe@University.EDU",
		FullName: "Jane Doe",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@university.edu", u.Email)
	assert.Equal(t, models.RoleStudent, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "correct horse battery", u.PasswordHash)

	got, err := svc.Authenticate(ctx, "jane.doe@university.edu", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "jane.doe@university.edu", "wrong password")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@university.edu", "whatever")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	nu := identity.NewUser{Email: "dup@university.edu", FullName: "First", Password: "password123"}
	_, err := svc.Register(ctx, nu)
	require.NoError(t, err)

	_, err = svc.Register(ctx, nu)
	assert.ErrorIs(t, err, identity.ErrEmailExists)
}

func TestDeactivatedUserCannotAuthenticate(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	u, err := svc.Register(ctx, identity.NewUser{
		Email:    "gone@university.edu",
		FullName: "Gone",
		Password: "password123",
	})
	require.NoError(t, err)

	inactive := false
	_, err = svc.UpdateByID(ctx, u.ID, identity.Update{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "gone@university.edu", "password123")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestSetRole(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	u, err := svc.Register(ctx, identity.NewUser{
		Email:    "promote@university.edu",
		FullName: "Promote Me",
		Password: "password123",
	})
	require.NoError(t, err)

	got, err := svc.SetRole(ctx, u.ID, models.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, got.Role)
}
