package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/pkg/logger"
	"github.com/foodmarket/provision-backend/pkg/util"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrStaffNotFound      = errors.New("staff not found")
	ErrStaffNotApproved   = errors.New("staff not approved")
	ErrLocalLoginDisabled = errors.New("password login is disabled")
	ErrInvalidInput       = errors.New("invalid input")
)

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type AuthService interface {
	// Register creates a staff account waiting for approval. The very first
	// account becomes an approved admin and receives tokens right away.
	Register(ctx context.Context, input RegisterInput) (*model.Staff, *util.TokenPair, error)
	Login(ctx context.Context, email, password string) (*model.Staff, *util.TokenPair, error)
	// Refresh exchanges a refresh token for a new pair while the account
	// is still approved.
	Refresh(ctx context.Context, refreshToken string) (*util.TokenPair, error)
	GetStaffByID(ctx context.Context, id string) (*model.Staff, error)
	ListStaff(ctx context.Context, pendingOnly bool) ([]model.Staff, error)
	Approve(ctx context.Context, adminID, staffID string) (*model.Staff, error)
}

type authService struct {
	staffRepo     repository.StaffRepository
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	// passwords is false when an external identity provider verifies tokens.
	passwords bool
	now       func() time.Time
}

func NewAuthService(
	staffRepo repository.StaffRepository,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
	passwords bool,
) AuthService {
	return &authService{
		staffRepo:     staffRepo,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		passwords:     passwords,
		now:           time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.Staff, *util.TokenPair, error) {
	email := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)

	logger.Info("Attempting staff registration", map[string]interface{}{
		"email": email,
		"name":  name,
	})

	if email == "" || name == "" {
		return nil, nil, ErrInvalidInput
	}

	existing, err := s.staffRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		logger.Error("Failed to check existing staff", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}
	if existing != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrEmailAlreadyExists
	}

	staff := &model.Staff{
		Email: email,
		Name:  name,
		Role:  model.RoleStaff,
	}

	if s.passwords {
		hash, err := util.HashPassword(input.Password)
		if err != nil {
			logger.Warn("Registration failed: password rejected", map[string]interface{}{
				"email": email,
				"error": err.Error(),
			})
			return nil, nil, err
		}
		staff.PasswordHash = hash
	}

	all, err := s.staffRepo.FindAll(ctx, false)
	if err != nil {
		logger.Error("Failed to count staff", err)
		return nil, nil, err
	}
	if len(all) == 0 {
		now := s.now()
		staff.Role = model.RoleAdmin
		staff.Approved = true
		staff.ApprovedAt = &now
		logger.Info("Bootstrapping first staff account as admin", map[string]interface{}{
			"email": email,
		})
	}

	if err := s.staffRepo.Create(ctx, staff); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, ErrEmailAlreadyExists
		}
		logger.Error("Failed to create staff", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	if staff.Role == model.RoleAdmin {
		if err := s.settleBootstrap(ctx, staff); err != nil {
			return nil, nil, err
		}
	}

	var tokens *util.TokenPair
	if staff.Approved && s.passwords {
		if tokens, err = s.issueTokens(staff); err != nil {
			return nil, nil, err
		}
	}

	logger.Info("Staff registered successfully", map[string]interface{}{
		"staff_id": staff.ID,
		"email":    email,
		"role":     staff.Role,
		"approved": staff.Approved,
	})

	return staff, tokens, nil
}

// settleBootstrap re-checks an admin bootstrap after the insert. Concurrent
// registrations on an empty table can all see zero staff; only the earliest
// record (by creation time, then id) keeps the admin role.
func (s *authService) settleBootstrap(ctx context.Context, staff *model.Staff) error {
	all, err := s.staffRepo.FindAll(ctx, false)
	if err != nil {
		logger.Error("Failed to re-check admin bootstrap", err, map[string]interface{}{
			"staff_id": staff.ID,
		})
		return err
	}

	first := earliestStaff(all)
	if first == nil || first.ID == staff.ID {
		return nil
	}

	staff.Role = model.RoleStaff
	staff.Approved = false
	staff.ApprovedAt = nil
	if err := s.staffRepo.Update(ctx, staff); err != nil {
		logger.Error("Failed to demote concurrent bootstrap admin", err, map[string]interface{}{
			"staff_id": staff.ID,
		})
		return err
	}
	logger.Warn("Concurrent admin bootstrap lost, registered as pending staff", map[string]interface{}{
		"staff_id": staff.ID,
		"admin_id": first.ID,
	})
	return nil
}

func earliestStaff(all []model.Staff) *model.Staff {
	var first *model.Staff
	for i := range all {
		c := &all[i]
		if first == nil || c.CreatedAt.Before(first.CreatedAt) ||
			(c.CreatedAt.Equal(first.CreatedAt) && c.ID < first.ID) {
			first = c
		}
	}
	return first
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.Staff, *util.TokenPair, error) {
	email = normalizeEmail(email)
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	if !s.passwords {
		return nil, nil, ErrLocalLoginDisabled
	}

	staff, err := s.staffRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Login failed: staff not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find staff", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	if !util.VerifyPassword(staff.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":    email,
			"staff_id": staff.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	if !staff.Approved {
		logger.Warn("Login failed: staff not approved", map[string]interface{}{
			"staff_id": staff.ID,
		})
		return nil, nil, ErrStaffNotApproved
	}

	tokens, err := s.issueTokens(staff)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Staff logged in successfully", map[string]interface{}{
		"staff_id": staff.ID,
		"email":    email,
		"role":     staff.Role,
	})

	return staff, tokens, nil
}

func (s *authService) issueTokens(staff *model.Staff) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(
		staff.ID,
		staff.Email,
		string(staff.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"staff_id": staff.ID,
		})
		return nil, err
	}
	return tokens, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*util.TokenPair, error) {
	if !s.passwords {
		return nil, ErrLocalLoginDisabled
	}

	claims, err := util.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != util.TokenTypeRefresh {
		return nil, util.ErrInvalidToken
	}

	staff, err := s.GetStaffByID(ctx, claims.StaffID)
	if err != nil {
		return nil, err
	}
	if !staff.Approved {
		return nil, ErrStaffNotApproved
	}
	return s.issueTokens(staff)
}

func (s *authService) GetStaffByID(ctx context.Context, id string) (*model.Staff, error) {
	staff, err := s.staffRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Staff not found", map[string]interface{}{
				"staff_id": id,
			})
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return staff, nil
}

func (s *authService) ListStaff(ctx context.Context, pendingOnly bool) ([]model.Staff, error) {
	return s.staffRepo.FindAll(ctx, pendingOnly)
}

// Approve marks staffID as approved by adminID. Approving twice is a no-op.
func (s *authService) Approve(ctx context.Context, adminID, staffID string) (*model.Staff, error) {
	staff, err := s.GetStaffByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if staff.Approved {
		return staff, nil
	}

	now := s.now()
	staff.Approved = true
	staff.ApprovedBy = adminID
	staff.ApprovedAt = &now

	if err := s.staffRepo.Update(ctx, staff); err != nil {
		logger.Error("Failed to approve staff", err, map[string]interface{}{
			"staff_id": staffID,
		})
		return nil, err
	}

	logger.Info("Staff approved", map[string]interface{}{
		"staff_id":    staffID,
		"approved_by": adminID,
	})
	return staff, nil
}
