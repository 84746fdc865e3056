package middleware

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/internal/errors"
	"github.com/foodmarket/provision-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

// Context keys for staff information
const (
	StaffIDKey    = "staff_id"
	StaffEmailKey = "staff_email"
	StaffRoleKey  = "staff_role"
)

var ErrStaffNotApproved = stderrors.New("staff not approved")

// Principal is the authenticated staff member of a request.
type Principal struct {
	StaffID string
	Email   string
	Role    model.StaffRole
}

// TokenVerifier turns a bearer token into a Principal.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// JWTVerifier accepts access tokens issued by the login endpoint.
type JWTVerifier struct {
	secret string
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (*Principal, error) {
	claims, err := util.ValidateToken(token, v.secret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != util.TokenTypeAccess {
		return nil, util.ErrInvalidToken
	}
	return &Principal{
		StaffID: claims.StaffID,
		Email:   claims.Email,
		Role:    model.StaffRole(claims.Role),
	}, nil
}

// IDTokenVerifier is the part of the Firebase auth client used here.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier accepts Firebase ID tokens and maps the email claim to a
// registered, approved staff member.
type FirebaseVerifier struct {
	client IDTokenVerifier
	staff  repository.StaffRepository
}

func NewFirebaseVerifier(client IDTokenVerifier, staff repository.StaffRepository) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, staff: staff}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		if auth.IsIDTokenExpired(err) {
			return nil, util.ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidToken, err)
	}

	email, _ := decoded.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: email claim missing", util.ErrInvalidToken)
	}

	staff, err := v.staff.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: staff not registered", util.ErrInvalidToken)
		}
		return nil, err
	}
	if !staff.Approved {
		return nil, ErrStaffNotApproved
	}
	return &Principal{StaffID: staff.ID, Email: staff.Email, Role: staff.Role}, nil
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// Authenticate validates the bearer token (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		var token string

		// Try to get token from Authorization header first
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "인증 형식이 올바르지 않습니다")
				c.Abort()
				return
			}
			token = parts[1]
		} else {
			// WebSocket clients cannot set headers
			token = c.Query("token")
			if token == "" {
				log.Warn("Missing authorization header", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.Unauthorized(c, "로그인이 필요합니다")
				c.Abort()
				return
			}
			log.Debug("Using token from query parameter", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
		}

		principal, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			switch {
			case stderrors.Is(err, util.ErrExpiredToken):
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "로그인이 만료되었습니다")
			case stderrors.Is(err, ErrStaffNotApproved):
				errors.RespondWithError(c, http.StatusForbidden, errors.AuthNotApproved, "관리자 승인 후 이용할 수 있습니다")
			default:
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "유효하지 않은 인증 토큰입니다")
			}
			c.Abort()
			return
		}

		c.Set(StaffIDKey, principal.StaffID)
		c.Set(StaffEmailKey, principal.Email)
		c.Set(StaffRoleKey, principal.Role)

		log.Debug("Staff authenticated successfully", map[string]interface{}{
			"staff_id": principal.StaffID,
			"email":    principal.Email,
			"role":     principal.Role,
		})

		c.Next()
	}
}

// RequireRole checks if staff has required role
func (m *AuthMiddleware) RequireRole(roles ...model.StaffRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		role, exists := GetStaffRole(c)
		if !exists {
			log.Warn("Role information not found in context", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzRoleNotFound, "권한 정보를 찾을 수 없습니다")
			c.Abort()
			return
		}

		staffID, _ := GetStaffID(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		log.Warn("Insufficient permissions", map[string]interface{}{
			"staff_id":       staffID,
			"staff_role":     role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		errors.RespondWithError(c, http.StatusForbidden, errors.AuthzAdminOnly, "관리자만 이용할 수 있습니다")
		c.Abort()
	}
}

// GetStaffID extracts staff ID from context
func GetStaffID(c *gin.Context) (string, bool) {
	id, exists := c.Get(StaffIDKey)
	if !exists {
		return "", false
	}
	s, ok := id.(string)
	return s, ok
}

// GetStaffEmail extracts staff email from context
func GetStaffEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(StaffEmailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}

// GetStaffRole extracts staff role from context
func GetStaffRole(c *gin.Context) (model.StaffRole, bool) {
	role, exists := c.Get(StaffRoleKey)
	if !exists {
		return "", false
	}
	r, ok := role.(model.StaffRole)
	return r, ok
}
