package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/Custodia-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Custodia-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "tech-7"
	testIssuer    = "custodia-api-test"
	testExpMin    = 60
)

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// whoami responde con el actor y el rol que dejó el middleware.
func whoami(roles ...string) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{apphttp.AuthMiddleware(testJWTSecret)}
	if len(roles) > 0 {
		handlers = append(handlers, apphttp.RequireRole(roles...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"actor": apphttp.GetUserID(c), "role": apphttp.GetRole(c)})
	})
	app.Get("/whoami", handlers...)
	return app
}

func call(t *testing.T, app *fiber.App, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthMiddleware_ActorFromToken(t *testing.T) {
	status, body := call(t, whoami(), bearer(t, testUserID, pkgjwt.RoleBodeguero))
	require.Equal(t, http.StatusOK, status)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, testUserID, got["actor"])
	assert.Equal(t, pkgjwt.RoleBodeguero, got["role"])
}

func TestAuthMiddleware_RejectsBadCredentials(t *testing.T) {
	otherSecret, err := pkgjwt.Generate("otro-secreto", testUserID, pkgjwt.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema distinto", "Basic abc", "INVALID_TOKEN"},
		{"token malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"firmado con otro secreto", "Bearer " + otherSecret, "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, whoami(), tt.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Contains(t, body, tt.code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	warehouse := []string{pkgjwt.RoleAdmin, pkgjwt.RoleBodeguero}
	branch := []string{pkgjwt.RoleAdmin, pkgjwt.RoleVendedor}

	tests := []struct {
		name    string
		allowed []string
		role    string
		status  int
	}{
		{"bodeguero identifica", warehouse, pkgjwt.RoleBodeguero, http.StatusOK},
		{"admin identifica", warehouse, pkgjwt.RoleAdmin, http.StatusOK},
		{"vendedor no identifica", warehouse, pkgjwt.RoleVendedor, http.StatusForbidden},
		{"vendedor vende", branch, pkgjwt.RoleVendedor, http.StatusOK},
		{"bodeguero no vende", branch, pkgjwt.RoleBodeguero, http.StatusForbidden},
		{"token sin rol", warehouse, "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, whoami(tt.allowed...), bearer(t, testUserID, tt.role))
			assert.Equal(t, tt.status, status)
			switch tt.status {
			case http.StatusForbidden:
				assert.Contains(t, body, "FORBIDDEN")
			case http.StatusUnauthorized:
				assert.Contains(t, body, "MISSING_ROLE")
			}
		})
	}
}
