package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traqcheck/candidateverify/pkg/auth"
	"github.com/traqcheck/candidateverify/pkg/repository/memory"
	"github.com/traqcheck/candidateverify/pkg/security/jwt"
)

func newService(t *testing.T, bootstrapAdmin bool) auth.AuthUseCase {
	t.Helper()
	repo := memory.NewUserRepository()
	tokens := jwt.NewGenerator("test-secret", "candidateverify-test", time.Hour)
	return auth.NewAuthService(repo, tokens, bootstrapAdmin)
}

func TestRegisterBootstrapAdmin(t *testing.T) {
	svc := newService(t, true)
	ctx := context.Background()

	first, err := svc.Register(ctx, "Admin@Example.com", "s3cret")
	require.NoError(t, err)
	assert.True(t, first.User.IsAdmin, "first account becomes the admin")
	assert.Equal(t, "admin@example.com", first.User.Email)
	assert.NotEmpty(t, first.Token)

	second, err := svc.Register(ctx, "recruiter@example.com", "s3cret")
	require.NoError(t, err)
	assert.False(t, second.User.IsAdmin)
}

func TestRegisterWithoutBootstrap(t *testing.T) {
	svc := newService(t, false)

	res, err := svc.Register(context.Background(), "admin@example.com", "s3cret")
	require.NoError(t, err)
	assert.False(t, res.User.IsAdmin)
}

func TestRegisterDuplicate(t *testing.T) {
	svc := newService(t, true)
	ctx := context.Background()

	_, err := svc.Register(ctx, "recruiter@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Recruiter@example.com", "other")
	require.ErrorIs(t, err, auth.ErrUserAlreadyExists)
}

func TestRegisterEmptyFields(t *testing.T) {
	svc := newService(t, true)

	_, err := svc.Register(context.Background(), "", "s3cret")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Register(context.Background(), "recruiter@example.com", "")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin(t *testing.T) {
	svc := newService(t, true)
	ctx := context.Background()

	_, err := svc.Register(ctx, "recruiter@example.com", "s3cret")
	require.NoError(t, err)

	res, err := svc.Login(ctx, " Recruiter@Example.COM ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "recruiter@example.com", res.User.Email)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Login(ctx, "recruiter@example.com", "wrong")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "s3cret")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
