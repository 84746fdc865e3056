package service

import (
	"context"
	"testing"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCustomerServiceTest(t *testing.T) CustomerService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return NewCustomerService(repository.NewCustomerRepository(testDB))
}

func TestCustomerService_CreateAndSearch(t *testing.T) {
	customerService := setupCustomerServiceTest(t)
	ctx := context.Background()

	kim, err := customerService.CreateCustomer(ctx, CustomerInput{Name: "김영희", Birth: "1950-01-01"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusActiveSupport, kim.Status)

	_, err = customerService.CreateCustomer(ctx, CustomerInput{Name: "김영수", Status: "중지"})
	require.NoError(t, err)
	_, err = customerService.CreateCustomer(ctx, CustomerInput{Name: "박철수"})
	require.NoError(t, err)

	_, err = customerService.CreateCustomer(ctx, CustomerInput{Name: "  "})
	assert.ErrorIs(t, err, ErrCustomerNameNeeded)

	all, err := customerService.ListCustomers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := customerService.ListCustomers(ctx, " 김영 ")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestCustomerService_UpdateAndDelete(t *testing.T) {
	customerService := setupCustomerServiceTest(t)
	ctx := context.Background()

	kim, err := customerService.CreateCustomer(ctx, CustomerInput{Name: "김영희"})
	require.NoError(t, err)

	updated, err := customerService.UpdateCustomer(ctx, kim.ID, CustomerInput{Name: "김영희", Phone: "010-1111-2222", Status: "중지"})
	require.NoError(t, err)
	assert.Equal(t, "010-1111-2222", updated.Phone)
	assert.False(t, updated.IsActiveSupport())

	_, err = customerService.UpdateCustomer(ctx, "missing", CustomerInput{Name: "x"})
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	require.NoError(t, customerService.DeleteCustomer(ctx, kim.ID))
	_, err = customerService.GetCustomerByID(ctx, kim.ID)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
	assert.ErrorIs(t, customerService.DeleteCustomer(ctx, kim.ID), ErrCustomerNotFound)
}
