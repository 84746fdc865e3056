package docstore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/pkg/logger"
)

type provisionRepository struct {
	client *firestore.Client
}

func NewProvisionRepository(client *firestore.Client) repository.ProvisionRepository {
	return &provisionRepository{client: client}
}

func (r *provisionRepository) col() *firestore.CollectionRef {
	return r.client.Collection(provisionsCollection)
}

func setProvisionID(p *model.Provision, id string) { p.ID = id }

func (r *provisionRepository) Create(ctx context.Context, provision *model.Provision) error {
	ref := r.col().NewDoc()
	provision.ID = ref.ID
	if _, err := ref.Create(ctx, provision); err != nil {
		logger.Error("Failed to create provision document", err, map[string]interface{}{
			"customer_id": provision.CustomerID,
		})
		return translate(err)
	}
	return nil
}

func (r *provisionRepository) FindByID(ctx context.Context, id string) (*model.Provision, error) {
	p, err := getDoc[model.Provision](ctx, r.col().Doc(id))
	if err != nil {
		return nil, err
	}
	p.ID = id
	return p, nil
}

// List needs a composite index on each equality field plus timestamp.
func (r *provisionRepository) List(ctx context.Context, filter repository.ProvisionFilter) ([]model.Provision, error) {
	q := r.col().Query
	if filter.QuarterKey != "" {
		q = q.Where("quarterKey", "==", filter.QuarterKey)
	}
	if filter.PeriodKey != "" {
		q = q.Where("periodKey", "==", filter.PeriodKey)
	}
	if filter.CustomerID != "" {
		q = q.Where("customerId", "==", filter.CustomerID)
	}
	if filter.From != nil {
		q = q.Where("timestamp", ">=", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("timestamp", "<", *filter.To)
	}

	provisions, err := collect(q.OrderBy("timestamp", firestore.Asc).Documents(ctx), setProvisionID)
	if err != nil {
		logger.Error("Failed to list provision documents", err)
		return nil, err
	}
	return provisions, nil
}
