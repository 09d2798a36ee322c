package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, expiresAt, err := tm.GenerateToken(domain.User{ID: "u-1", Role: domain.RoleAgent})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, domain.RoleAgent, claims.Role)
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, _, err := tm.GenerateToken(domain.User{ID: "u-1"})
	require.NoError(t, err)

	_, err = NewTokenManager("other-secret", 5).ParseToken(token)
	assert.Error(t, err, "wrong key")

	expired := NewTokenManager("secret", 5)
	expired.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = expired.ParseToken(token)
	assert.Error(t, err, "expired")

	_, err = tm.ParseToken("not-a-jwt")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "correct horse"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}

func newProtectedApp(t *testing.T) (*fiber.App, *TokenManager) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Users().Create(context.Background(), &domain.User{ID: "u-admin", Email: "admin@uni.edu", Role: domain.RoleAdministrator}))
	require.NoError(t, store.Users().Create(context.Background(), &domain.User{ID: "u-end", Email: "end@uni.edu", Role: domain.RoleEndUser}))

	tm := NewTokenManager("secret", 5)
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
		},
	})
	mw := NewAuthMiddleware(tm, store.Users())
	app.Get("/admin", mw.Handle, RequireRole(domain.RoleAdministrator), func(c *fiber.Ctx) error {
		actor, err := MustActor(c)
		if err != nil {
			return err
		}
		return c.SendString(actor.ID)
	})
	return app, tm
}

func doGet(t *testing.T, app *fiber.App, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthMiddleware(t *testing.T) {
	app, tm := newProtectedApp(t)

	adminToken, _, err := tm.GenerateToken(domain.User{ID: "u-admin", Role: domain.RoleAdministrator})
	require.NoError(t, err)
	status, body := doGet(t, app, adminToken)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "u-admin", body)

	// A token claiming administrator for an enduser row is judged by the stored role.
	forged, _, err := tm.GenerateToken(domain.User{ID: "u-end", Role: domain.RoleAdministrator})
	require.NoError(t, err)
	status, body = doGet(t, app, forged)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, apperrors.CodeNotAuthorized, decodeCode(t, body))

	status, body = doGet(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, apperrors.CodeUnauthorized, decodeCode(t, body))

	ghost, _, err := tm.GenerateToken(domain.User{ID: "u-ghost"})
	require.NoError(t, err)
	status, _ = doGet(t, app, ghost)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func decodeCode(t *testing.T, body string) string {
	t.Helper()
	var payload struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	return payload.Code
}
