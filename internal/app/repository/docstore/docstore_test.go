package docstore

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// setupEmulator connects to the Firestore emulator named by
// FIRESTORE_EMULATOR_HOST; the test is skipped without one.
func setupEmulator(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "test-"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestTranslate(t *testing.T) {
	err := translate(status.Error(codes.NotFound, "no doc"))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = translate(status.Error(codes.AlreadyExists, "dup"))
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	assert.NoError(t, translate(nil))
}

func TestProductRepository_Emulator(t *testing.T) {
	client := setupEmulator(t)
	repo := NewProductRepository(client)
	ctx := context.Background()

	p := &model.Product{Name: "쌀", Price: 10, Barcode: "880"}
	require.NoError(t, repo.Create(ctx, p))
	assert.NotEmpty(t, p.ID)

	err := repo.Create(ctx, &model.Product{Name: "보리", Price: 5, Barcode: "880"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	found, err := repo.FindByBarcode(ctx, "880")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), repository.ErrNotFound)
}

func TestLedger_Emulator(t *testing.T) {
	client := setupEmulator(t)
	customers := NewCustomerRepository(client)
	provisions := NewProvisionRepository(client)
	ledger := NewLedger(client)
	ctx := context.Background()

	c := &model.Customer{Name: "김영희", Status: model.StatusActiveSupport}
	require.NoError(t, customers.Create(ctx, c))

	err := ledger.WithinTransaction(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
		got, err := tx.GetCustomer(ctx, c.ID)
		if err != nil {
			return err
		}
		if err := tx.AppendProvision(ctx, &model.Provision{
			CustomerID: got.ID, CustomerName: got.Name, Total: 9,
			Timestamp: time.Now(), HandledBy: "s@example.com", QuarterKey: "2024-Q1",
		}); err != nil {
			return err
		}
		return tx.UpdateCustomerVisits(ctx, got.ID, model.Visits{"24-25": {"2024-04-15"}}, model.LifeLove{"2024-Q1": true})
	})
	require.NoError(t, err)

	found, err := customers.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-04-15"}, found.Visits["24-25"])
	assert.True(t, found.LifeLove["2024-Q1"])

	list, err := provisions.List(ctx, repository.ProvisionFilter{CustomerID: c.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
