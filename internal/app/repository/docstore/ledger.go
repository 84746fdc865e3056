package docstore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
)

type ledger struct {
	client *firestore.Client
}

// NewLedger returns a Ledger backed by a Firestore transaction. Firestore may
// run fn more than once on contention.
func NewLedger(client *firestore.Client) repository.Ledger {
	return &ledger{client: client}
}

func (l *ledger) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.LedgerTx) error) error {
	return l.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, &ledgerTx{client: l.client, tx: tx})
	})
}

type ledgerTx struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func (t *ledgerTx) GetCustomer(_ context.Context, id string) (*model.Customer, error) {
	snap, err := t.tx.Get(t.client.Collection(customersCollection).Doc(id))
	if err != nil {
		return nil, translate(err)
	}
	var c model.Customer
	if err := snap.DataTo(&c); err != nil {
		return nil, err
	}
	c.ID = id
	return &c, nil
}

func (t *ledgerTx) AppendProvision(_ context.Context, provision *model.Provision) error {
	ref := t.client.Collection(provisionsCollection).NewDoc()
	provision.ID = ref.ID
	return t.tx.Create(ref, provision)
}

func (t *ledgerTx) UpdateCustomerVisits(_ context.Context, customerID string, visits model.Visits, lifelove model.LifeLove) error {
	ref := t.client.Collection(customersCollection).Doc(customerID)
	return t.tx.Update(ref, []firestore.Update{
		{Path: "visits", Value: visits},
		{Path: "lifelove", Value: lifelove},
		{Path: "updatedAt", Value: time.Now()},
	})
}
