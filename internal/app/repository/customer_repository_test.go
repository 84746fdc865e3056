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

func setupCustomerTest(t *testing.T) (*gorm.DB, CustomerRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	return testDB, NewCustomerRepository(testDB)
}

func TestCustomerRepository_CreateAndFind(t *testing.T) {
	testDB, repo := setupCustomerTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()

	customer := &model.Customer{
		Name:     "김영희",
		Birth:    "1950-03-02",
		Status:   model.StatusActiveSupport,
		Visits:   model.Visits{"24-25": {"2024-04-01"}},
		LifeLove: model.LifeLove{"2024-Q1": true},
	}
	require.NoError(t, repo.Create(ctx, customer))
	require.NotEmpty(t, customer.ID)

	found, err := repo.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "김영희", found.Name)
	assert.Equal(t, []string{"2024-04-01"}, found.Visits["24-25"])
	assert.True(t, found.LifeLove["2024-Q1"])
}

func TestCustomerRepository_FindByID_NotFound(t *testing.T) {
	testDB, repo := setupCustomerTest(t)
	defer db.CleanupTestDB(testDB)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerRepository_Search(t *testing.T) {
	testDB, repo := setupCustomerTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()

	for _, name := range []string{"김영희", "김영수", "박철수"} {
		require.NoError(t, repo.Create(ctx, &model.Customer{Name: name, Status: model.StatusActiveSupport}))
	}

	found, err := repo.Search(ctx, "김영")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.Search(ctx, "철수")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "박철수", found[0].Name)
}

func TestCustomerRepository_UpdateAndDelete(t *testing.T) {
	testDB, repo := setupCustomerTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()

	customer := &model.Customer{Name: "이순자", Status: "중지"}
	require.NoError(t, repo.Create(ctx, customer))

	customer.Status = model.StatusActiveSupport
	require.NoError(t, repo.Update(ctx, customer))

	found, err := repo.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, found.IsActiveSupport())

	require.NoError(t, repo.Delete(ctx, customer.ID))
	_, err = repo.FindByID(ctx, customer.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCustomerRepository_UpdateKeepsLedger(t *testing.T) {
	testDB, repo := setupCustomerTest(t)
	defer db.CleanupTestDB(testDB)
	ctx := context.Background()

	customer := &model.Customer{
		Name:     "최영희",
		Status:   model.StatusActiveSupport,
		Visits:   model.Visits{"24-25": {"2024-04-15"}},
		LifeLove: model.LifeLove{"2024-Q1": true},
	}
	require.NoError(t, repo.Create(ctx, customer))

	stale := &model.Customer{ID: customer.ID, Name: "최영희", Phone: "010-0000-0000", Status: model.StatusActiveSupport}
	require.NoError(t, repo.Update(ctx, stale))

	found, err := repo.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "010-0000-0000", found.Phone)
	assert.Equal(t, []string{"2024-04-15"}, found.Visits["24-25"])
	assert.True(t, found.LifeLove["2024-Q1"])

	assert.ErrorIs(t, repo.Update(ctx, &model.Customer{ID: "missing", Name: "x"}), ErrNotFound)
}
