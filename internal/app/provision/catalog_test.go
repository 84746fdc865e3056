package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_LoadsOnce(t *testing.T) {
	source := &fakeProducts{products: []model.Product{product("p1", 1), product("p2", 2)}}
	catalog := NewCatalog(source)
	ctx := context.Background()

	p, found, err := catalog.Find(ctx, "p2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, p.Price)

	p, found, err = catalog.FindByBarcode(ctx, " bc-p1 ")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "p1", p.ID)

	_, found, err = catalog.Find(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, found)

	assert.Equal(t, 1, source.calls)
}

func TestCatalog_RetriesAfterFailure(t *testing.T) {
	source := &fakeProducts{err: errors.New("offline")}
	catalog := NewCatalog(source)
	ctx := context.Background()

	_, err := catalog.Products(ctx)
	assert.Error(t, err)

	source.err = nil
	source.products = []model.Product{product("p1", 1)}
	products, err := catalog.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 2, source.calls)
}

func TestCatalog_Invalidate(t *testing.T) {
	source := &fakeProducts{products: []model.Product{product("p1", 1)}}
	catalog := NewCatalog(source)
	ctx := context.Background()

	_, _ = catalog.Products(ctx)
	source.products = append(source.products, product("p2", 2))

	products, _ := catalog.Products(ctx)
	assert.Len(t, products, 1)

	catalog.Invalidate()
	products, err := catalog.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}
