package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"gorm.io/gorm"
)

// Store-independent failures. Both the gorm and the document store
// implementations wrap their native errors with these.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	FindAll(ctx context.Context) ([]model.Customer, error)
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	Search(ctx context.Context, keyword string) ([]model.Customer, error)
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, id string) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error
}

// ProvisionFilter narrows a provision listing. Zero fields are ignored;
// From is inclusive and To exclusive.
type ProvisionFilter struct {
	QuarterKey string
	PeriodKey  string
	CustomerID string
	From       *time.Time
	To         *time.Time
}

type ProvisionRepository interface {
	Create(ctx context.Context, provision *model.Provision) error
	FindByID(ctx context.Context, id string) (*model.Provision, error)
	List(ctx context.Context, filter ProvisionFilter) ([]model.Provision, error)
}

type StaffRepository interface {
	Create(ctx context.Context, staff *model.Staff) error
	FindByID(ctx context.Context, id string) (*model.Staff, error)
	FindByEmail(ctx context.Context, email string) (*model.Staff, error)
	FindAll(ctx context.Context, pendingOnly bool) ([]model.Staff, error)
	Update(ctx context.Context, staff *model.Staff) error
}

// LedgerTx is the view of the store inside a ledger transaction. Reads must
// happen before writes.
type LedgerTx interface {
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	AppendProvision(ctx context.Context, provision *model.Provision) error
	UpdateCustomerVisits(ctx context.Context, customerID string, visits model.Visits, lifelove model.LifeLove) error
}

// Ledger runs the provision append and the customer ledger update as one
// atomic unit. fn may be retried by the store and must not have side effects
// outside tx.
type Ledger interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case isDuplicate(err):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	return err
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
