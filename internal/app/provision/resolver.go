package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/pkg/logger"
)

// CustomerSource fetches the full customer collection; filtering happens here.
type CustomerSource interface {
	FindAll(ctx context.Context) ([]model.Customer, error)
}

type ResolverState string

const (
	ResolverClosed   ResolverState = "closed"
	ResolverOpen     ResolverState = "open"
	ResolverSelected ResolverState = "selected"
)

type Direction string

const (
	DirectionDown Direction = "down"
	DirectionUp   Direction = "up"
)

// Resolver drives the name search and the disambiguation list.
type Resolver struct {
	source     CustomerSource
	query      string
	candidates []model.Customer
	active     int
}

func NewResolver(source CustomerSource) *Resolver {
	return &Resolver{source: source, active: -1}
}

// State is derived: no candidates is Closed, a highlighted candidate is
// Selected, otherwise Open.
func (r *Resolver) State() ResolverState {
	switch {
	case len(r.candidates) == 0:
		return ResolverClosed
	case r.active >= 0:
		return ResolverSelected
	default:
		return ResolverOpen
	}
}

func (r *Resolver) Query() string { return r.query }
func (r *Resolver) ActiveIndex() int {
	return r.active
}

func (r *Resolver) Candidates() []model.Customer {
	return append([]model.Customer(nil), r.candidates...)
}

// Selected returns the highlighted candidate, if any.
func (r *Resolver) Selected() (model.Customer, bool) {
	if r.active < 0 || r.active >= len(r.candidates) {
		return model.Customer{}, false
	}
	return r.candidates[r.active], true
}

// Search replaces the candidate list with active-support customers whose name
// contains keyword. A single match is highlighted immediately but not confirmed.
func (r *Resolver) Search(ctx context.Context, keyword string) (*Notice, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}

	customers, err := r.source.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to fetch customers for search", err, map[string]interface{}{
			"keyword": keyword,
		})
		return nil, fmt.Errorf("search customers: %w", err)
	}

	var matches []model.Customer
	for _, c := range customers {
		if c.IsActiveSupport() && strings.Contains(c.Name, keyword) {
			matches = append(matches, c)
		}
	}

	logger.Debug("Customer search completed", map[string]interface{}{
		"keyword": keyword,
		"scanned": len(customers),
		"matches": len(matches),
	})

	r.query = keyword
	r.candidates = matches
	r.active = -1
	switch len(matches) {
	case 0:
		return newNotice(NoticeCustomerNotFound), nil
	case 1:
		r.active = 0
	}
	return nil, nil
}

// Move shifts the highlight circularly. It is a no-op when Closed.
func (r *Resolver) Move(dir Direction) {
	n := len(r.candidates)
	if n == 0 {
		return
	}
	switch dir {
	case DirectionUp:
		if r.active <= 0 {
			r.active = n - 1
		} else {
			r.active--
		}
	default:
		r.active = (r.active + 1) % n
	}
}

// Select highlights the candidate at index.
func (r *Resolver) Select(index int) error {
	if index < 0 || index >= len(r.candidates) {
		return ErrCandidateOutOfRange
	}
	r.active = index
	return nil
}

// Take returns the highlighted candidate and closes the resolver.
func (r *Resolver) Take() (model.Customer, error) {
	c, ok := r.Selected()
	if !ok {
		return model.Customer{}, ErrNoSelection
	}
	r.Abort()
	return c, nil
}

// Abort closes the list and clears the query.
func (r *Resolver) Abort() {
	r.query = ""
	r.candidates = nil
	r.active = -1
}
