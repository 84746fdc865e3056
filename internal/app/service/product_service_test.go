package service

import (
	"context"
	"testing"

	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate() { c.calls++ }

func setupProductServiceTest(t *testing.T) (ProductService, *countingInvalidator) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	inv := &countingInvalidator{}
	return NewProductService(repository.NewProductRepository(testDB), inv), inv
}

func TestProductService_CreateAndList(t *testing.T) {
	productService, inv := setupProductServiceTest(t)
	ctx := context.Background()

	products, err := productService.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	rice, err := productService.CreateProduct(ctx, ProductInput{Name: " 쌀 ", Price: 3000, Barcode: "880001"})
	require.NoError(t, err)
	assert.NotEmpty(t, rice.ID)
	assert.Equal(t, "쌀", rice.Name)

	_, err = productService.CreateProduct(ctx, ProductInput{Name: "라면", Price: 1000, Barcode: "880002"})
	require.NoError(t, err)
	assert.Equal(t, 2, inv.calls)

	products, err = productService.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestProductService_Validation(t *testing.T) {
	productService, inv := setupProductServiceTest(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   ProductInput
		wantErr error
	}{
		{"missing name", ProductInput{Price: 100, Barcode: "1"}, ErrProductNameNeeded},
		{"missing barcode", ProductInput{Name: "쌀", Price: 100}, ErrBarcodeRequired},
		{"negative price", ProductInput{Name: "쌀", Price: -1, Barcode: "1"}, ErrInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := productService.CreateProduct(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Zero(t, inv.calls)
}

func TestProductService_DuplicateBarcode(t *testing.T) {
	productService, _ := setupProductServiceTest(t)
	ctx := context.Background()

	_, err := productService.CreateProduct(ctx, ProductInput{Name: "쌀", Price: 3000, Barcode: "880001"})
	require.NoError(t, err)
	noodles, err := productService.CreateProduct(ctx, ProductInput{Name: "라면", Price: 1000, Barcode: "880002"})
	require.NoError(t, err)

	_, err = productService.CreateProduct(ctx, ProductInput{Name: "쌀 20kg", Price: 5000, Barcode: "880001"})
	assert.ErrorIs(t, err, ErrBarcodeExists)

	_, err = productService.UpdateProduct(ctx, noodles.ID, ProductInput{Name: "라면", Price: 1000, Barcode: "880001"})
	assert.ErrorIs(t, err, ErrBarcodeExists)
}

func TestProductService_UpdateAndDelete(t *testing.T) {
	productService, inv := setupProductServiceTest(t)
	ctx := context.Background()

	rice, err := productService.CreateProduct(ctx, ProductInput{Name: "쌀", Price: 3000, Barcode: "880001"})
	require.NoError(t, err)

	updated, err := productService.UpdateProduct(ctx, rice.ID, ProductInput{Name: "쌀", Price: 3500, Barcode: "880001", Category: "곡류"})
	require.NoError(t, err)
	assert.Equal(t, 3500, updated.Price)
	assert.Equal(t, "곡류", updated.Category)

	found, err := productService.GetProductByID(ctx, rice.ID)
	require.NoError(t, err)
	assert.Equal(t, 3500, found.Price)

	require.NoError(t, productService.DeleteProduct(ctx, rice.ID))
	assert.Equal(t, 3, inv.calls)

	_, err = productService.GetProductByID(ctx, rice.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, productService.DeleteProduct(ctx, rice.ID), ErrProductNotFound)
	_, err = productService.UpdateProduct(ctx, rice.ID, ProductInput{Name: "쌀", Barcode: "880001"})
	assert.ErrorIs(t, err, ErrProductNotFound)

	// the barcode is free again after a delete
	_, err = productService.CreateProduct(ctx, ProductInput{Name: "쌀", Price: 3000, Barcode: "880001"})
	assert.NoError(t, err)
}
