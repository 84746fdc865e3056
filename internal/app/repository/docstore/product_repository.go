package docstore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/pkg/logger"
)

type productRepository struct {
	client *firestore.Client
}

func NewProductRepository(client *firestore.Client) repository.ProductRepository {
	return &productRepository{client: client}
}

func (r *productRepository) col() *firestore.CollectionRef {
	return r.client.Collection(productsCollection)
}

func setProductID(p *model.Product, id string) { p.ID = id }

func (r *productRepository) byBarcode(barcode string) firestore.Query {
	return r.col().Where("barcode", "==", barcode)
}

// Create enforces barcode uniqueness inside a transaction.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	ref := r.col().NewDoc()
	if product.ID != "" {
		ref = r.col().Doc(product.ID)
	}
	now := time.Now()
	product.ID = ref.ID
	product.CreatedAt, product.UpdatedAt = now, now

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		other, err := takenBy(tx, r.byBarcode(product.Barcode), product.ID)
		if err != nil {
			return err
		}
		if other != "" {
			return fmt.Errorf("%w: barcode %s used by %s", repository.ErrDuplicate, product.Barcode, other)
		}
		return tx.Create(ref, product)
	})
	if err != nil {
		logger.Error("Failed to create product document", err, map[string]interface{}{
			"barcode": product.Barcode,
		})
		return translate(err)
	}
	return nil
}

func (r *productRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	products, err := collect(r.col().OrderBy("name", firestore.Asc).Documents(ctx), setProductID)
	if err != nil {
		logger.Error("Failed to list product documents", err)
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	p, err := getDoc[model.Product](ctx, r.col().Doc(id))
	if err != nil {
		return nil, err
	}
	p.ID = id
	return p, nil
}

func (r *productRepository) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	products, err := collect(r.byBarcode(barcode).Limit(1).Documents(ctx), setProductID)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, repository.ErrNotFound
	}
	return &products[0], nil
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	ref := r.col().Doc(product.ID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return translate(err)
		}
		other, err := takenBy(tx, r.byBarcode(product.Barcode), product.ID)
		if err != nil {
			return err
		}
		if other != "" {
			return fmt.Errorf("%w: barcode %s used by %s", repository.ErrDuplicate, product.Barcode, other)
		}
		if created, ok := snap.Data()["createdAt"].(time.Time); ok {
			product.CreatedAt = created
		}
		product.UpdatedAt = time.Now()
		return tx.Set(ref, product)
	})
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	ref := r.col().Doc(id)
	ok, err := exists(ctx, ref)
	if err != nil {
		return translate(err)
	}
	if !ok {
		return repository.ErrNotFound
	}
	_, err = ref.Delete(ctx)
	return translate(err)
}
