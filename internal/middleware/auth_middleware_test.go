package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/internal/db"
	"github.com/foodmarket/provision-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

func setupMiddlewareTest() (*gin.Engine, *AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggingMiddleware())
	return router, NewAuthMiddleware(NewJWTVerifier(testJWTSecret))
}

func generateTestToken(t *testing.T, staffID, email string, role model.StaffRole) *util.TokenPair {
	tokens, err := util.GenerateTokenPair(staffID, email, string(role), testJWTSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return tokens
}

func whoAmI(c *gin.Context) {
	id, _ := GetStaffID(c)
	email, _ := GetStaffEmail(c)
	role, _ := GetStaffRole(c)
	c.JSON(http.StatusOK, gin.H{"staff_id": id, "email": email, "role": role})
}

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	token := generateTestToken(t, "staff-1", "kim@example.com", model.RoleStaff).AccessToken

	router.GET("/test", authMiddleware.Authenticate(), whoAmI)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"staff_id":"staff-1"`)
	assert.Contains(t, w.Body.String(), `"role":"staff"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthMiddleware_Authenticate_QueryToken(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	token := generateTestToken(t, "staff-1", "kim@example.com", model.RoleStaff).AccessToken

	router.GET("/ws", authMiddleware.Authenticate(), whoAmI)

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_Authenticate_NoToken(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	router.GET("/test", authMiddleware.Authenticate(), whoAmI)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_UNAUTHORIZED")
}

func TestAuthMiddleware_Authenticate_InvalidFormat(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	router.GET("/test", authMiddleware.Authenticate(), whoAmI)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_TOKEN_INVALID")
}

func TestAuthMiddleware_Authenticate_RejectsRefreshToken(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	token := generateTestToken(t, "staff-1", "kim@example.com", model.RoleStaff).RefreshToken

	router.GET("/test", authMiddleware.Authenticate(), whoAmI)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_Authenticate_ExpiredToken(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	tokens, err := util.GenerateTokenPair("staff-1", "kim@example.com", "staff", testJWTSecret, -time.Minute, time.Hour)
	require.NoError(t, err)

	router.GET("/test", authMiddleware.Authenticate(), whoAmI)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_TOKEN_EXPIRED")
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	router.GET("/admin", authMiddleware.Authenticate(), authMiddleware.RequireRole(model.RoleAdmin), whoAmI)

	tests := []struct {
		name string
		role model.StaffRole
		code int
	}{
		{"admin allowed", model.RoleAdmin, http.StatusOK},
		{"staff forbidden", model.RoleStaff, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := generateTestToken(t, "staff-1", "kim@example.com", tt.role).AccessToken
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestAuthMiddleware_RequireRole_WithoutAuthentication(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	router.GET("/admin", authMiddleware.RequireRole(model.RoleAdmin), whoAmI)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTHZ_ROLE_NOT_FOUND")
}

type fakeIDTokens struct {
	token *auth.Token
	err   error
}

func (f fakeIDTokens) VerifyIDToken(context.Context, string) (*auth.Token, error) {
	return f.token, f.err
}

func TestFirebaseVerifier(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	staffRepo := repository.NewStaffRepository(testDB)
	ctx := context.Background()
	require.NoError(t, staffRepo.Create(ctx, &model.Staff{ID: "s-approved", Email: "lee@example.com", Name: "Lee", Role: model.RoleAdmin, Approved: true}))
	require.NoError(t, staffRepo.Create(ctx, &model.Staff{ID: "s-pending", Email: "park@example.com", Name: "Park", Role: model.RoleStaff}))

	emailToken := func(email string) *auth.Token {
		return &auth.Token{UID: "uid", Claims: map[string]interface{}{"email": email}}
	}

	t.Run("approved staff", func(t *testing.T) {
		v := NewFirebaseVerifier(fakeIDTokens{token: emailToken("Lee@example.com")}, staffRepo)
		p, err := v.Verify(ctx, "id-token")
		require.NoError(t, err)
		assert.Equal(t, "s-approved", p.StaffID)
		assert.Equal(t, model.RoleAdmin, p.Role)
	})

	t.Run("pending staff", func(t *testing.T) {
		v := NewFirebaseVerifier(fakeIDTokens{token: emailToken("park@example.com")}, staffRepo)
		_, err := v.Verify(ctx, "id-token")
		assert.ErrorIs(t, err, ErrStaffNotApproved)
	})

	t.Run("unregistered email", func(t *testing.T) {
		v := NewFirebaseVerifier(fakeIDTokens{token: emailToken("nobody@example.com")}, staffRepo)
		_, err := v.Verify(ctx, "id-token")
		assert.ErrorIs(t, err, util.ErrInvalidToken)
	})

	t.Run("missing email claim", func(t *testing.T) {
		v := NewFirebaseVerifier(fakeIDTokens{token: &auth.Token{Claims: map[string]interface{}{}}}, staffRepo)
		_, err := v.Verify(ctx, "id-token")
		assert.ErrorIs(t, err, util.ErrInvalidToken)
	})

	t.Run("rejected token", func(t *testing.T) {
		v := NewFirebaseVerifier(fakeIDTokens{err: stderrors.New("bad signature")}, staffRepo)
		_, err := v.Verify(ctx, "id-token")
		assert.ErrorIs(t, err, util.ErrInvalidToken)
	})

	t.Run("not approved maps to 403", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		m := NewAuthMiddleware(NewFirebaseVerifier(fakeIDTokens{token: emailToken("park@example.com")}, staffRepo))
		router.GET("/test", m.Authenticate(), whoAmI)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer id-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_NOT_APPROVED")
	})
}
