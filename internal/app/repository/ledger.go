package repository

import (
	"context"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormLedger struct {
	db *gorm.DB
}

// NewLedger returns a Ledger backed by a database transaction.
func NewLedger(db *gorm.DB) Ledger {
	return &gormLedger{db: db}
}

func (l *gormLedger) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormLedgerTx{db: tx})
	})
}

type gormLedgerTx struct {
	db *gorm.DB
}

func (t *gormLedgerTx) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	query := t.db.WithContext(ctx)
	// SQLite locks the whole database for a write transaction already.
	if t.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var customer model.Customer
	if err := query.First(&customer, "id = ?", id).Error; err != nil {
		logger.Error("Failed to read customer in ledger transaction", err, map[string]interface{}{
			"customer_id": id,
		})
		return nil, translate(err)
	}
	return &customer, nil
}

func (t *gormLedgerTx) AppendProvision(ctx context.Context, provision *model.Provision) error {
	if err := t.db.WithContext(ctx).Create(provision).Error; err != nil {
		logger.Error("Failed to append provision in ledger transaction", err, map[string]interface{}{
			"customer_id": provision.CustomerID,
		})
		return translate(err)
	}
	return nil
}

func (t *gormLedgerTx) UpdateCustomerVisits(ctx context.Context, customerID string, visits model.Visits, lifelove model.LifeLove) error {
	result := t.db.WithContext(ctx).
		Model(&model.Customer{ID: customerID}).
		Select("Visits", "LifeLove", "UpdatedAt").
		Updates(&model.Customer{Visits: visits, LifeLove: lifelove, UpdatedAt: t.db.NowFunc()})
	if result.Error != nil {
		logger.Error("Failed to update customer ledger", result.Error, map[string]interface{}{
			"customer_id": customerID,
		})
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}
