package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/pkg/util"
)

// FilterProvisionsByQuarter returns the provisions tagged with quarter,
// keeping their order.
func FilterProvisionsByQuarter(provisions []model.Provision, quarter string) []model.Provision {
	out := make([]model.Provision, 0, len(provisions))
	for _, p := range provisions {
		if p.QuarterKey == quarter {
			out = append(out, p)
		}
	}
	return out
}

type CustomerVisits struct {
	CustomerID string   `json:"customer_id"`
	Name       string   `json:"name"`
	Birth      string   `json:"birth"`
	Status     string   `json:"status"`
	Count      int      `json:"count"`
	Dates      []string `json:"dates"`
}

type VisitStats struct {
	Period      string           `json:"period"`
	Customers   []CustomerVisits `json:"customers"`
	TotalVisits int              `json:"total_visits"`
}

type LifeLoveCustomer struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Birth      string `json:"birth"`
}

type LifeLoveStats struct {
	Quarter   string             `json:"quarter"`
	Customers []LifeLoveCustomer `json:"customers"`
	Count     int                `json:"count"`
}

type DailyCount struct {
	Date   string `json:"date"`
	Count  int    `json:"count"`
	Points int    `json:"points"`
}

type StatsService interface {
	// VisitStats ranks customers by distinct visit days in period
	// (default: the current period).
	VisitStats(ctx context.Context, period string) (*VisitStats, error)
	// LifeLoveStats lists customers flagged for quarter (default: current).
	LifeLoveStats(ctx context.Context, quarter string) (*LifeLoveStats, error)
	// DailyCounts counts provisions per visit date in [from, to].
	DailyCounts(ctx context.Context, from, to string) ([]DailyCount, error)
}

type statsService struct {
	customerRepo  repository.CustomerRepository
	provisionRepo repository.ProvisionRepository
	loc           *time.Location
	now           func() time.Time
}

func NewStatsService(
	customerRepo repository.CustomerRepository,
	provisionRepo repository.ProvisionRepository,
	loc *time.Location,
	now func() time.Time,
) StatsService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &statsService{
		customerRepo:  customerRepo,
		provisionRepo: provisionRepo,
		loc:           loc,
		now:           now,
	}
}

func (s *statsService) VisitStats(ctx context.Context, period string) (*VisitStats, error) {
	period = strings.TrimSpace(period)
	if period == "" {
		period = util.PeriodKey(s.now().In(s.loc))
	}

	customers, err := s.customerRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &VisitStats{Period: period, Customers: []CustomerVisits{}}
	for _, c := range customers {
		dates := c.Visits[period]
		if len(dates) == 0 {
			continue
		}
		stats.Customers = append(stats.Customers, CustomerVisits{
			CustomerID: c.ID,
			Name:       c.Name,
			Birth:      c.Birth,
			Status:     c.Status,
			Count:      len(dates),
			Dates:      dates,
		})
		stats.TotalVisits += len(dates)
	}
	sort.SliceStable(stats.Customers, func(i, j int) bool {
		a, b := stats.Customers[i], stats.Customers[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
	return stats, nil
}

func (s *statsService) LifeLoveStats(ctx context.Context, quarter string) (*LifeLoveStats, error) {
	quarter = strings.TrimSpace(quarter)
	if quarter == "" {
		quarter = util.QuarterKey(s.now().In(s.loc))
	}
	if _, _, err := util.ParseQuarterKey(quarter); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuarter, err)
	}

	customers, err := s.customerRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &LifeLoveStats{Quarter: quarter, Customers: []LifeLoveCustomer{}}
	for _, c := range customers {
		if c.LifeLove[quarter] {
			stats.Customers = append(stats.Customers, LifeLoveCustomer{CustomerID: c.ID, Name: c.Name, Birth: c.Birth})
		}
	}
	stats.Count = len(stats.Customers)
	return stats, nil
}

func (s *statsService) DailyCounts(ctx context.Context, from, to string) ([]DailyCount, error) {
	start, err := parseDay(from, s.loc)
	if err != nil {
		return nil, err
	}
	end, err := parseDay(to, s.loc)
	if err != nil {
		return nil, err
	}
	if end != nil {
		next := end.AddDate(0, 0, 1)
		end = &next
	}

	provisions, err := s.provisionRepo.List(ctx, repository.ProvisionFilter{From: start, To: end})
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*DailyCount)
	var dates []string
	for _, p := range provisions {
		date := p.VisitDate
		if date == "" {
			date = util.VisitDate(p.Timestamp.In(s.loc))
		}
		dc, ok := byDate[date]
		if !ok {
			dc = &DailyCount{Date: date}
			byDate[date] = dc
			dates = append(dates, date)
		}
		dc.Count++
		dc.Points += p.Total
	}

	sort.Strings(dates)
	out := make([]DailyCount, 0, len(dates))
	for _, d := range dates {
		out = append(out, *byDate[d])
	}
	return out, nil
}
