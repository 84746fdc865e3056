package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/pkg/logger"
	"github.com/foodmarket/provision-backend/pkg/util"
)

var (
	ErrProvisionNotFound = errors.New("provision not found")
	ErrInvalidQuarter    = errors.New("invalid quarter key")
	ErrInvalidDate       = errors.New("invalid date")
)

const dateLayout = "2006-01-02"

// ProvisionQuery is the raw listing filter from a request. Dates are
// YYYY-MM-DD in the provisioning timezone and To is inclusive.
type ProvisionQuery struct {
	Quarter    string
	CustomerID string
	From       string
	To         string
}

type ProvisionService interface {
	ListProvisions(ctx context.Context, query ProvisionQuery) ([]model.Provision, error)
	GetProvisionByID(ctx context.Context, id string) (*model.Provision, error)
}

type provisionService struct {
	provisionRepo repository.ProvisionRepository
	loc           *time.Location
}

func NewProvisionService(provisionRepo repository.ProvisionRepository, loc *time.Location) ProvisionService {
	if loc == nil {
		loc = time.UTC
	}
	return &provisionService{provisionRepo: provisionRepo, loc: loc}
}

func parseDay(value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return &t, nil
}

func (s *provisionService) filter(query ProvisionQuery) (repository.ProvisionFilter, error) {
	filter := repository.ProvisionFilter{CustomerID: strings.TrimSpace(query.CustomerID)}

	if q := strings.TrimSpace(query.Quarter); q != "" {
		if _, _, err := util.ParseQuarterKey(q); err != nil {
			return filter, fmt.Errorf("%w: %v", ErrInvalidQuarter, err)
		}
		filter.QuarterKey = q
	}

	from, err := parseDay(query.From, s.loc)
	if err != nil {
		return filter, err
	}
	to, err := parseDay(query.To, s.loc)
	if err != nil {
		return filter, err
	}
	if to != nil {
		end := to.AddDate(0, 0, 1)
		to = &end
	}
	filter.From, filter.To = from, to
	return filter, nil
}

func (s *provisionService) ListProvisions(ctx context.Context, query ProvisionQuery) ([]model.Provision, error) {
	filter, err := s.filter(query)
	if err != nil {
		return nil, err
	}

	provisions, err := s.provisionRepo.List(ctx, filter)
	if err != nil {
		logger.Error("Failed to list provisions", err, map[string]interface{}{
			"quarter":     filter.QuarterKey,
			"customer_id": filter.CustomerID,
		})
		return nil, err
	}
	return provisions, nil
}

func (s *provisionService) GetProvisionByID(ctx context.Context, id string) (*model.Provision, error) {
	p, err := s.provisionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProvisionNotFound
		}
		return nil, err
	}
	return p, nil
}
