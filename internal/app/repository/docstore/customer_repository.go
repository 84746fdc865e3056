package docstore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/pkg/logger"
)

type customerRepository struct {
	client *firestore.Client
}

func NewCustomerRepository(client *firestore.Client) repository.CustomerRepository {
	return &customerRepository{client: client}
}

func (r *customerRepository) col() *firestore.CollectionRef {
	return r.client.Collection(customersCollection)
}

func setCustomerID(c *model.Customer, id string) { c.ID = id }

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	ref := r.col().NewDoc()
	if id := strings.TrimSpace(customer.ID); id != "" {
		ref = r.col().Doc(id)
	}
	now := time.Now()
	customer.ID = ref.ID
	customer.CreatedAt, customer.UpdatedAt = now, now

	if _, err := ref.Create(ctx, customer); err != nil {
		logger.Error("Failed to create customer document", err, map[string]interface{}{
			"customer_id": customer.ID,
		})
		return translate(err)
	}
	return nil
}

func (r *customerRepository) FindAll(ctx context.Context) ([]model.Customer, error) {
	customers, err := collect(r.col().OrderBy("name", firestore.Asc).Documents(ctx), setCustomerID)
	if err != nil {
		logger.Error("Failed to list customer documents", err)
		return nil, err
	}
	logger.Debug("Customer documents fetched", map[string]interface{}{
		"count": len(customers),
	})
	return customers, nil
}

func (r *customerRepository) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	c, err := getDoc[model.Customer](ctx, r.col().Doc(id))
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

// Search filters the whole collection; Firestore has no substring query.
func (r *customerRepository) Search(ctx context.Context, keyword string) ([]model.Customer, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Customer
	for _, c := range all {
		if strings.Contains(c.Name, keyword) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Update writes the profile fields only; visits and lifelove belong to the ledger.
func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	_, err := r.col().Doc(customer.ID).Update(ctx, []firestore.Update{
		{Path: "name", Value: customer.Name},
		{Path: "birth", Value: customer.Birth},
		{Path: "gender", Value: customer.Gender},
		{Path: "status", Value: customer.Status},
		{Path: "address", Value: customer.Address},
		{Path: "phone", Value: customer.Phone},
		{Path: "note", Value: customer.Note},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		logger.Error("Failed to update customer document", err, map[string]interface{}{
			"customer_id": customer.ID,
		})
		return translate(err)
	}
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	ref := r.col().Doc(id)
	ok, err := exists(ctx, ref)
	if err != nil {
		return translate(err)
	}
	if !ok {
		return repository.ErrNotFound
	}
	if _, err := ref.Delete(ctx); err != nil {
		return translate(err)
	}
	logger.Info("Customer document deleted", map[string]interface{}{
		"customer_id": id,
	})
	return nil
}
