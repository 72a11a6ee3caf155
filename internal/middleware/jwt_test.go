package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unienroll/enroll-api/internal/models"
	"github.com/unienroll/enroll-api/internal/service"
)

func protectedRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWT(service.NewTokenVerifier(secret)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/students/:id", RBAC(string(models.RoleAdmin), "SELF"), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func issueToken(t *testing.T, secret, userID string, role models.UserRole) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, models.JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTMissingHeader(t *testing.T) {
	r := protectedRouter("secret")
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)

	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTValidToken(t *testing.T) {
	r := protectedRouter("secret")
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "secret", "u1", models.RoleStudent))

	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACRoleAllowed(t *testing.T) {
	r := protectedRouter("secret")
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/students/s9", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "secret", "admin-1", models.RoleAdmin))

	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACSelfMatch(t *testing.T) {
	r := protectedRouter("secret")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/students/s1", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "secret", "s1", models.RoleStudent))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/students/s2", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "secret", "s1", models.RoleStudent))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
