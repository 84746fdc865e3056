package repository

import (
	"context"
	"testing"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductTest(t *testing.T) (*gorm.DB, ProductRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewProductRepository(testDB)
	return testDB, repo
}

func TestProductRepository_Create(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()

	product := &model.Product{Name: "쌀 10kg", Price: 10, Barcode: "8801234000010"}
	err := repo.Create(ctx, product)
	assert.NoError(t, err)
	assert.NotEmpty(t, product.ID)
}

func TestProductRepository_DuplicateBarcode(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Product{Name: "라면", Price: 2, Barcode: "880001"}))

	err := repo.Create(ctx, &model.Product{Name: "다른 라면", Price: 3, Barcode: "880001"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestProductRepository_FindAll(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()

	products := []model.Product{
		{Name: "휴지", Price: 4, Barcode: "1"},
		{Name: "간장", Price: 3, Barcode: "2"},
	}
	for i := range products {
		require.NoError(t, repo.Create(ctx, &products[i]))
	}

	found, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "간장", found[0].Name)
}

func TestProductRepository_FindByBarcode(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()

	product := &model.Product{Name: "참치캔", Price: 2, Barcode: "8809999"}
	require.NoError(t, repo.Create(ctx, product))

	found, err := repo.FindByBarcode(ctx, "8809999")
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)

	_, err = repo.FindByBarcode(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_UpdateAndDelete(t *testing.T) {
	testDB, repo := setupProductTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()

	product := &model.Product{Name: "우유", Price: 2, Barcode: "777"}
	require.NoError(t, repo.Create(ctx, product))

	product.Price = 3
	require.NoError(t, repo.Update(ctx, product))

	found, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.Price)

	require.NoError(t, repo.Delete(ctx, product.ID))
	assert.ErrorIs(t, repo.Delete(ctx, product.ID), ErrNotFound)

	// the barcode is free again after a delete
	assert.NoError(t, repo.Create(ctx, &model.Product{Name: "우유", Price: 2, Barcode: "777"}))
}
