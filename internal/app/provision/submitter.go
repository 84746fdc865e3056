package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/pkg/logger"
	"github.com/foodmarket/provision-backend/pkg/util"
)

type SubmitState string

const (
	SubmitIdle       SubmitState = "idle"
	SubmitValidating SubmitState = "validating"
	SubmitCommitting SubmitState = "committing"
	SubmitDone       SubmitState = "done"
	SubmitFailed     SubmitState = "failed"
)

// SubmitRequest carries what the operator supplies at submission time.
type SubmitRequest struct {
	Identity string // email of the authenticated staff member
	LifeLove bool   // 생활사랑 체크 여부
}

// Submitter commits a cart as a provision record and updates the customer's
// visit and life-love ledgers in one store transaction.
type Submitter struct {
	ledger repository.Ledger
	holds  *HoldStore
	clock  func() time.Time

	mu    sync.Mutex
	state SubmitState
}

func NewSubmitter(ledger repository.Ledger, holds *HoldStore, clock func() time.Time) *Submitter {
	if clock == nil {
		clock = time.Now
	}
	return &Submitter{ledger: ledger, holds: holds, clock: clock, state: SubmitIdle}
}

func (s *Submitter) State() SubmitState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Submitter) setState(state SubmitState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// begin moves to Validating unless a commit is already running.
func (s *Submitter) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SubmitCommitting || s.state == SubmitValidating {
		return ErrSubmitInProgress
	}
	s.state = SubmitValidating
	return nil
}

func (s *Submitter) validate(active *model.Customer, cart *Cart, req SubmitRequest) error {
	switch {
	case strings.TrimSpace(req.Identity) == "":
		return ErrNoIdentity
	case active == nil:
		return ErrNoActiveVisitor
	case cart.IsEmpty():
		return ErrEmptyCart
	case cart.OverCap():
		return ErrOverPointCap
	}
	return nil
}

// Submit validates and commits. Validation failures leave the submitter Idle
// with nothing written. Commit failures return ErrSubmitFailed wrapping the
// cause.
func (s *Submitter) Submit(ctx context.Context, active *model.Customer, cart *Cart, req SubmitRequest) (*model.Provision, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}

	if err := s.validate(active, cart, req); err != nil {
		s.setState(SubmitIdle)
		logger.Warn("Provision submission rejected", map[string]interface{}{
			"reason":   err.Error(),
			"identity": req.Identity,
		})
		return nil, err
	}

	s.setState(SubmitCommitting)

	now := s.clock()
	record := &model.Provision{
		CustomerID: active.ID,
		Items:      cart.Lines(),
		Total:      cart.Total(),
		Timestamp:  now,
		HandledBy:  strings.TrimSpace(req.Identity),
		LifeLove:   req.LifeLove,
		QuarterKey: util.QuarterKey(now),
		PeriodKey:  util.PeriodKey(now),
		VisitDate:  util.VisitDate(now),
	}

	logger.Info("Committing provision", map[string]interface{}{
		"customer_id": record.CustomerID,
		"total":       record.Total,
		"items":       len(record.Items),
		"quarter_key": record.QuarterKey,
		"handled_by":  record.HandledBy,
	})

	err := s.ledger.WithinTransaction(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
		customer, err := tx.GetCustomer(ctx, record.CustomerID)
		if err != nil {
			return err
		}
		record.CustomerName = customer.Name
		record.CustomerBirth = customer.Birth

		if err := tx.AppendProvision(ctx, record); err != nil {
			return err
		}

		visits, _ := util.AddVisitDate(customer.Visits, record.PeriodKey, record.VisitDate)
		lifelove := util.UpdateCustomerLifeLove(customer.LifeLove, record.QuarterKey, record.LifeLove)
		return tx.UpdateCustomerVisits(ctx, customer.ID, visits, lifelove)
	})
	if err != nil {
		s.setState(SubmitFailed)
		logger.Error("Provision commit failed", err, map[string]interface{}{
			"customer_id": record.CustomerID,
		})
		if errors.Is(err, repository.ErrNotFound) {
			err = fmt.Errorf("%w: %w", ErrCustomerNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	if err := s.holds.Clear(ctx, record.CustomerID); err != nil {
		// The provision is already recorded; a stale hold is swept later.
		logger.Warn("Hold not cleared after submission", map[string]interface{}{
			"customer_id": record.CustomerID,
			"error":       err.Error(),
		})
	}

	s.setState(SubmitDone)
	logger.Info("Provision committed", map[string]interface{}{
		"provision_id": record.ID,
		"customer_id":  record.CustomerID,
	})
	return record, nil
}
