package controller

import (
	"errors"
	"net/http"

	"github.com/foodmarket/provision-backend/internal/app/service"
	apperrors "github.com/foodmarket/provision-backend/internal/errors"
	"github.com/foodmarket/provision-backend/internal/middleware"
	"github.com/foodmarket/provision-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Register handles staff registration
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BindError(c, err)
		return
	}

	staff, tokens, err := ctrl.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "이미 사용 중인 이메일입니다")
		case errors.Is(err, util.ErrPasswordTooShort):
			apperrors.BadRequest(c, apperrors.ValidationTooShort, "비밀번호는 8자 이상이어야 합니다")
		case errors.Is(err, service.ErrInvalidInput):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		default:
			log.Error("Registration failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "register staff")
		}
		return
	}

	log.Info("Staff registered successfully", map[string]interface{}{
		"staff_id": staff.ID,
		"approved": staff.Approved,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Staff registered successfully",
		"staff":   staff,
		"tokens":  tokens,
	})
}

// Login handles staff login
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BindError(c, err)
		return
	}

	staff, tokens, err := ctrl.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "이메일 또는 비밀번호가 올바르지 않습니다")
		case errors.Is(err, service.ErrStaffNotApproved):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthNotApproved, "관리자 승인 후 이용할 수 있습니다")
		case errors.Is(err, service.ErrLocalLoginDisabled):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "외부 인증으로 로그인해주세요")
		default:
			log.Error("Login failed", err, nil)
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "login")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"staff":   staff,
		"tokens":  tokens,
	})
}

// Refresh issues a new token pair
// POST /api/v1/auth/refresh
func (ctrl *AuthController) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BindError(c, err)
		return
	}

	tokens, err := ctrl.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrExpiredToken):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "리프레시 토큰이 만료되었습니다. 다시 로그인해주세요")
		case errors.Is(err, util.ErrInvalidToken), errors.Is(err, service.ErrStaffNotFound):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "유효하지 않은 인증 토큰입니다")
		case errors.Is(err, service.ErrStaffNotApproved):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthNotApproved, "관리자 승인 후 이용할 수 있습니다")
		case errors.Is(err, service.ErrLocalLoginDisabled):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "외부 인증으로 로그인해주세요")
		default:
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "refresh token")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// GetMe returns the current staff member
// GET /api/v1/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	staffID, ok := middleware.GetStaffID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	staff, err := ctrl.authService.GetStaffByID(c.Request.Context(), staffID)
	if err != nil {
		if errors.Is(err, service.ErrStaffNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "직원을 찾을 수 없습니다")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get staff")
		return
	}

	c.JSON(http.StatusOK, gin.H{"staff": staff})
}

// ListStaff lists staff accounts, only pending ones with ?pending=true
// GET /api/v1/admin/staff
func (ctrl *AuthController) ListStaff(c *gin.Context) {
	pending := c.Query("pending") == "true"

	staff, err := ctrl.authService.ListStaff(c.Request.Context(), pending)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list staff")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"staff": staff,
		"count": len(staff),
	})
}

// ApproveStaff approves a pending staff account
// POST /api/v1/admin/staff/:id/approve
func (ctrl *AuthController) ApproveStaff(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	adminID, _ := middleware.GetStaffID(c)

	staff, err := ctrl.authService.Approve(c.Request.Context(), adminID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrStaffNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "직원을 찾을 수 없습니다")
			return
		}
		log.Error("Failed to approve staff", err, map[string]interface{}{
			"staff_id": c.Param("id"),
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "approve staff")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Staff approved",
		"staff":   staff,
	})
}
