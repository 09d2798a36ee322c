package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func newAuthService() *AuthService {
	cfg := config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4}
	return NewAuthService(cfg, memory.NewStore().Users(), nil)
}

func TestRegisterUser_AlwaysEndUser(t *testing.T) {
	svc := newAuthService()
	session, err := svc.RegisterUser(context.Background(), RegisterInput{
		FullName:   "Marta Student",
		Email:      "Marta@Uni.edu",
		Department: "Physics",
		Password:   "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEndUser, session.User.Role)
	assert.Equal(t, "marta@uni.edu", session.User.Email)
	assert.NotEmpty(t, session.Token)
	assert.NotEqual(t, "s3cret-pass", session.User.PasswordHash)

	claims, err := svc.TokenManager().ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.Subject)
}

func TestRegisterUser_Rejections(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()
	valid := RegisterInput{FullName: "Marta", Email: "marta@uni.edu", Password: "long-enough"}

	_, err := svc.RegisterUser(ctx, valid)
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, valid)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	bad := valid
	bad.Email = "not-an-email"
	bad.Password = "short"
	_, err = svc.RegisterUser(ctx, bad)
	require.ErrorIs(t, err, apperrors.ErrValidation)
	fields := apperrors.ToDomainError(err).Details["fields"].(map[string]any)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestLogin(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()
	_, err := svc.ProvisionUser(ctx, RegisterInput{FullName: "Alice", Email: "alice@uni.edu", Password: "agent-pass"}, domain.RoleAgent)
	require.NoError(t, err)

	session, err := svc.Login(ctx, "ALICE@uni.edu", "agent-pass")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAgent, session.User.Role)

	_, err = svc.Login(ctx, "alice@uni.edu", "wrong-pass")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Login(ctx, "nobody@uni.edu", "agent-pass")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestEnsureUser_Idempotent(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()
	input := RegisterInput{FullName: "Root", Email: "root@uni.edu", Password: "bootstrap-pass"}

	first, err := svc.EnsureUser(ctx, input, domain.RoleAdministrator)
	require.NoError(t, err)
	second, err := svc.EnsureUser(ctx, input, domain.RoleAdministrator)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.RoleAdministrator, second.Role)
}
