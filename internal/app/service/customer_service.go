package service

import (
	"context"
	"errors"
	"strings"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/pkg/logger"
)

var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrCustomerNameNeeded = errors.New("customer name is required")
)

// CustomerInput holds the profile fields staff may edit. The visit and
// life-love ledgers are written only by provisioning.
type CustomerInput struct {
	Name    string
	Birth   string
	Gender  string
	Status  string
	Address string
	Phone   string
	Note    string
}

type CustomerService interface {
	ListCustomers(ctx context.Context, query string) ([]model.Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*model.Customer, error)
	CreateCustomer(ctx context.Context, input CustomerInput) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, id string, input CustomerInput) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

type customerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) ListCustomers(ctx context.Context, query string) ([]model.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.customerRepo.FindAll(ctx)
	}
	return s.customerRepo.Search(ctx, query)
}

func (s *customerService) GetCustomerByID(ctx context.Context, id string) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (input CustomerInput) apply(c *model.Customer) {
	c.Name = strings.TrimSpace(input.Name)
	c.Birth = strings.TrimSpace(input.Birth)
	c.Gender = strings.TrimSpace(input.Gender)
	c.Status = strings.TrimSpace(input.Status)
	c.Address = strings.TrimSpace(input.Address)
	c.Phone = strings.TrimSpace(input.Phone)
	c.Note = input.Note
	if c.Status == "" {
		c.Status = model.StatusActiveSupport
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, input CustomerInput) (*model.Customer, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrCustomerNameNeeded
	}

	customer := &model.Customer{
		Visits:   model.Visits{},
		LifeLove: model.LifeLove{},
	}
	input.apply(customer)

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	logger.Info("Customer created", map[string]interface{}{
		"customer_id": customer.ID,
		"status":      customer.Status,
	})
	return customer, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id string, input CustomerInput) (*model.Customer, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrCustomerNameNeeded
	}

	customer, err := s.GetCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	input.apply(customer)

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	logger.Info("Customer updated", map[string]interface{}{
		"customer_id": customer.ID,
	})
	return customer, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}
	return nil
}
