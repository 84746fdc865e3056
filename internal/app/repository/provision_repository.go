package repository

import (
	"context"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/pkg/logger"
	"gorm.io/gorm"
)

type provisionRepository struct {
	db *gorm.DB
}

func NewProvisionRepository(db *gorm.DB) ProvisionRepository {
	return &provisionRepository{db: db}
}

func (r *provisionRepository) Create(ctx context.Context, provision *model.Provision) error {
	if err := r.db.WithContext(ctx).Create(provision).Error; err != nil {
		logger.Error("Failed to create provision in database", err, map[string]interface{}{
			"customer_id": provision.CustomerID,
		})
		return translate(err)
	}

	logger.Debug("Provision created in database", map[string]interface{}{
		"provision_id": provision.ID,
		"customer_id":  provision.CustomerID,
		"total":        provision.Total,
	})
	return nil
}

func (r *provisionRepository) FindByID(ctx context.Context, id string) (*model.Provision, error) {
	var provision model.Provision
	if err := r.db.WithContext(ctx).First(&provision, "id = ?", id).Error; err != nil {
		logger.Error("Failed to find provision by ID in database", err, map[string]interface{}{
			"provision_id": id,
		})
		return nil, translate(err)
	}
	return &provision, nil
}

// List returns matching provisions oldest first.
func (r *provisionRepository) List(ctx context.Context, filter ProvisionFilter) ([]model.Provision, error) {
	logger.Debug("Listing provisions in database", map[string]interface{}{
		"quarter_key": filter.QuarterKey,
		"period_key":  filter.PeriodKey,
		"customer_id": filter.CustomerID,
	})

	query := r.db.WithContext(ctx).Model(&model.Provision{})
	if filter.QuarterKey != "" {
		query = query.Where("quarter_key = ?", filter.QuarterKey)
	}
	if filter.PeriodKey != "" {
		query = query.Where("period_key = ?", filter.PeriodKey)
	}
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.From != nil {
		query = query.Where("timestamp >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("timestamp < ?", *filter.To)
	}

	var provisions []model.Provision
	if err := query.Order("timestamp ASC").Find(&provisions).Error; err != nil {
		logger.Error("Failed to list provisions in database", err)
		return nil, translate(err)
	}
	return provisions, nil
}
