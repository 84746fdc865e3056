package repository

import (
	"context"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/pkg/logger"
	"gorm.io/gorm"
)

type staffRepository struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	logger.Debug("Creating staff in database", map[string]interface{}{
		"email": staff.Email,
	})

	if err := r.db.WithContext(ctx).Create(staff).Error; err != nil {
		logger.Error("Failed to create staff in database", err, map[string]interface{}{
			"email": staff.Email,
		})
		return translate(err)
	}

	logger.Debug("Staff created in database", map[string]interface{}{
		"staff_id": staff.ID,
		"email":    staff.Email,
	})
	return nil
}

func (r *staffRepository) FindByID(ctx context.Context, id string) (*model.Staff, error) {
	var staff model.Staff
	if err := r.db.WithContext(ctx).First(&staff, "id = ?", id).Error; err != nil {
		logger.Error("Failed to find staff by ID in database", err, map[string]interface{}{
			"staff_id": id,
		})
		return nil, translate(err)
	}
	return &staff, nil
}

func (r *staffRepository) FindByEmail(ctx context.Context, email string) (*model.Staff, error) {
	logger.Debug("Finding staff by email in database", map[string]interface{}{
		"email": email,
	})

	var staff model.Staff
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&staff).Error; err != nil {
		logger.Debug("Staff not found by email", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		return nil, translate(err)
	}
	return &staff, nil
}

func (r *staffRepository) FindAll(ctx context.Context, pendingOnly bool) ([]model.Staff, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if pendingOnly {
		query = query.Where("approved = ?", false)
	}

	var staff []model.Staff
	if err := query.Find(&staff).Error; err != nil {
		logger.Error("Failed to list staff in database", err)
		return nil, translate(err)
	}
	return staff, nil
}

func (r *staffRepository) Update(ctx context.Context, staff *model.Staff) error {
	if err := r.db.WithContext(ctx).Save(staff).Error; err != nil {
		logger.Error("Failed to update staff in database", err, map[string]interface{}{
			"staff_id": staff.ID,
		})
		return translate(err)
	}

	logger.Debug("Staff updated in database", map[string]interface{}{
		"staff_id": staff.ID,
		"approved": staff.Approved,
	})
	return nil
}
