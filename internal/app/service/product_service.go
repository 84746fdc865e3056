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
	ErrProductNotFound   = errors.New("product not found")
	ErrBarcodeRequired   = errors.New("barcode is required")
	ErrBarcodeExists     = errors.New("barcode already registered")
	ErrInvalidPrice      = errors.New("price must not be negative")
	ErrProductNameNeeded = errors.New("product name is required")
)

// CatalogInvalidator drops cached product data after catalog writes.
type CatalogInvalidator interface {
	Invalidate()
}

type ProductInput struct {
	Name     string
	Price    int
	Barcode  string
	Category string
}

type ProductService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProductByID(ctx context.Context, id string) (*model.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, input ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type productService struct {
	productRepo repository.ProductRepository
	catalog     CatalogInvalidator
}

func NewProductService(productRepo repository.ProductRepository, catalog CatalogInvalidator) ProductService {
	return &productService{
		productRepo: productRepo,
		catalog:     catalog,
	}
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}
	return products, nil
}

func (s *productService) GetProductByID(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (input ProductInput) validate() error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrProductNameNeeded
	}
	if strings.TrimSpace(input.Barcode) == "" {
		return ErrBarcodeRequired
	}
	if input.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

func (input ProductInput) apply(p *model.Product) {
	p.Name = strings.TrimSpace(input.Name)
	p.Price = input.Price
	p.Barcode = strings.TrimSpace(input.Barcode)
	p.Category = strings.TrimSpace(input.Category)
}

func (s *productService) CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product := &model.Product{}
	input.apply(product)

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			logger.Warn("Product barcode already registered", map[string]interface{}{
				"barcode": product.Barcode,
			})
			return nil, ErrBarcodeExists
		}
		return nil, err
	}
	s.catalog.Invalidate()

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"barcode":    product.Barcode,
	})
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, input ProductInput) (*model.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	input.apply(product)

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrBarcodeExists
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	s.catalog.Invalidate()

	logger.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
	})
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.catalog.Invalidate()
	return nil
}
