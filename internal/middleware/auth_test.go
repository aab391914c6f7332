package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "feedback-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func newProtectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/feedback", JWTProtected(testSecret), RequireRole(RoleAdmin, RoleTeacher), func(c *fiber.Ctx) error {
		subject, _ := c.Locals("user_id").(string)
		return c.SendString(subject)
	})
	return app
}

func requestWithToken(t *testing.T, app *fiber.App, header string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/feedback", nil)
	if header != "" {
		req.Header.Set(fiber.HeaderAuthorization, header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestJWTProtectedAcceptsTeacherToken(t *testing.T) {
	app := newProtectedApp()
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub":  "teacher-7",
		"role": "Teacher",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	resp := requestWithToken(t, app, "Bearer "+token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedReadsRoleList(t *testing.T) {
	app := newProtectedApp()
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub":   "admin-1",
		"roles": []string{"admin"},
	})

	resp := requestWithToken(t, app, "bearer "+token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejectsBadCredentials(t *testing.T) {
	app := newProtectedApp()

	expired := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})
	wrongKey := signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"role": "admin"})

	for name, header := range map[string]string{
		"missing":   "",
		"no scheme": expired,
		"basic":     "Basic dXNlcjpwYXNz",
		"expired":   "Bearer " + expired,
		"wrong key": "Bearer " + wrongKey,
		"garbage":   "Bearer not.a.token",
	} {
		resp := requestWithToken(t, app, header)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, name)
	}
}

func TestJWTProtectedRejectsNoneAlgorithm(t *testing.T) {
	app := newProtectedApp()
	token := signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"role": "admin"})

	resp := requestWithToken(t, app, "Bearer "+token)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRoleRejectsStudents(t *testing.T) {
	app := newProtectedApp()
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "s-1", "role": "student"})

	resp := requestWithToken(t, app, "Bearer "+token)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
	app := fiber.New()
	app.Use(RequireRole(RoleAdmin))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
