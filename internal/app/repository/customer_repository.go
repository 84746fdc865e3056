package repository

import (
	"context"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/pkg/logger"
	"gorm.io/gorm"
)

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	logger.Debug("Creating customer in database", map[string]interface{}{
		"name": customer.Name,
	})

	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		logger.Error("Failed to create customer in database", err, map[string]interface{}{
			"name": customer.Name,
		})
		return translate(err)
	}

	logger.Debug("Customer created in database", map[string]interface{}{
		"customer_id": customer.ID,
	})
	return nil
}

func (r *customerRepository) FindAll(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&customers).Error; err != nil {
		logger.Error("Failed to find customers in database", err)
		return nil, translate(err)
	}

	logger.Debug("Customers found in database", map[string]interface{}{
		"count": len(customers),
	})
	return customers, nil
}

func (r *customerRepository) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		logger.Error("Failed to find customer by ID in database", err, map[string]interface{}{
			"customer_id": id,
		})
		return nil, translate(err)
	}
	return &customer, nil
}

// Search matches keyword as a substring of the name, any status.
func (r *customerRepository) Search(ctx context.Context, keyword string) ([]model.Customer, error) {
	logger.Debug("Searching customers in database", map[string]interface{}{
		"keyword": keyword,
	})

	var customers []model.Customer
	if err := r.db.WithContext(ctx).
		Where("name LIKE ?", "%"+keyword+"%").
		Order("name ASC").
		Find(&customers).Error; err != nil {
		logger.Error("Failed to search customers in database", err, map[string]interface{}{
			"keyword": keyword,
		})
		return nil, translate(err)
	}
	return customers, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	logger.Debug("Updating customer in database", map[string]interface{}{
		"customer_id": customer.ID,
	})

	// visits and lifelove belong to the ledger and are never overwritten here
	result := r.db.WithContext(ctx).
		Model(&model.Customer{ID: customer.ID}).
		Select("Name", "Birth", "Gender", "Status", "Address", "Phone", "Note", "UpdatedAt").
		Updates(customer)
	if result.Error != nil {
		logger.Error("Failed to update customer in database", result.Error, map[string]interface{}{
			"customer_id": customer.ID,
		})
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&model.Customer{}, "id = ?", id)
	if result.Error != nil {
		logger.Error("Failed to delete customer from database", result.Error, map[string]interface{}{
			"customer_id": id,
		})
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}

	logger.Info("Customer deleted from database", map[string]interface{}{
		"customer_id": id,
	})
	return nil
}
