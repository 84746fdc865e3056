package provision

import (
	"context"
	"errors"
	"sync"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
)

type fakeCustomers struct {
	customers []model.Customer
	err       error
	calls     int
}

func (f *fakeCustomers) FindAll(context.Context) ([]model.Customer, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Customer(nil), f.customers...), nil
}

type fakeProducts struct {
	products []model.Product
	err      error
	calls    int
}

func (f *fakeProducts) FindAll(context.Context) ([]model.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Product(nil), f.products...), nil
}

// fakeLedger applies a transaction to in-memory maps only when fn succeeds.
type fakeLedger struct {
	mu         sync.Mutex
	customers  map[string]model.Customer
	provisions []model.Provision
	err        error
	txCount    int
}

func newFakeLedger(customers ...model.Customer) *fakeLedger {
	l := &fakeLedger{customers: make(map[string]model.Customer)}
	for _, c := range customers {
		l.customers[c.ID] = c
	}
	return l
}

func (l *fakeLedger) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.LedgerTx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txCount++
	if l.err != nil {
		return l.err
	}
	tx := &fakeLedgerTx{ledger: l, updates: make(map[string]model.Customer)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	l.provisions = append(l.provisions, tx.appended...)
	for id, c := range tx.updates {
		l.customers[id] = c
	}
	return nil
}

type fakeLedgerTx struct {
	ledger   *fakeLedger
	appended []model.Provision
	updates  map[string]model.Customer
}

func (t *fakeLedgerTx) GetCustomer(_ context.Context, id string) (*model.Customer, error) {
	c, ok := t.ledger.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (t *fakeLedgerTx) AppendProvision(_ context.Context, p *model.Provision) error {
	if p.ID == "" {
		p.ID = "prov-" + p.CustomerID
	}
	t.appended = append(t.appended, *p)
	return nil
}

func (t *fakeLedgerTx) UpdateCustomerVisits(_ context.Context, id string, visits model.Visits, lifelove model.LifeLove) error {
	c, ok := t.ledger.customers[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Visits = visits
	c.LifeLove = lifelove
	t.updates[id] = c
	return nil
}

// failingHoldBackend fails every call.
type failingHoldBackend struct{}

var errBackendDown = errors.New("backend down")

func (failingHoldBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, errBackendDown
}
func (failingHoldBackend) Set(context.Context, string, string) error { return errBackendDown }
func (failingHoldBackend) Delete(context.Context, string) error      { return errBackendDown }
func (failingHoldBackend) Keys(context.Context, string) ([]string, error) {
	return nil, errBackendDown
}

func customer(id, name string) model.Customer {
	return model.Customer{ID: id, Name: name, Birth: "1950-01-01", Status: model.StatusActiveSupport}
}

func product(id string, price int) model.Product {
	return model.Product{ID: id, Name: "상품-" + id, Price: price, Barcode: "bc-" + id}
}
