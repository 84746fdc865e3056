package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type statsFixture struct {
	customers  repository.CustomerRepository
	provisions repository.ProvisionRepository
}

func setupStatsTest(t *testing.T) statsFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	f := statsFixture{
		customers:  repository.NewCustomerRepository(testDB),
		provisions: repository.NewProvisionRepository(testDB),
	}
	ctx := context.Background()

	for _, c := range []*model.Customer{
		{ID: "c1", Name: "김영희", Status: model.StatusActiveSupport,
			Visits:   model.Visits{"24-25": {"2024-04-01", "2024-05-01"}, "23-24": {"2023-12-01"}},
			LifeLove: model.LifeLove{"2024-Q1": true}},
		{ID: "c2", Name: "박철수", Status: model.StatusActiveSupport,
			Visits:   model.Visits{"24-25": {"2024-07-01"}},
			LifeLove: model.LifeLove{"2024-Q2": true}},
		{ID: "c3", Name: "이순자", Status: "중지"},
	} {
		require.NoError(t, f.customers.Create(ctx, c))
	}

	for _, p := range []*model.Provision{
		{CustomerID: "c1", CustomerName: "김영희", HandledBy: "kim@example.com", QuarterKey: "2024-Q1", PeriodKey: "24-25", VisitDate: "2024-04-01",
			Timestamp: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC), Total: 10, LifeLove: true,
			Items: []model.CartLine{{ProductID: "p1", Name: "쌀", Price: 5, Quantity: 2}}},
		{CustomerID: "c2", CustomerName: "박철수", HandledBy: "kim@example.com", QuarterKey: "2024-Q1", PeriodKey: "24-25", VisitDate: "2024-04-01",
			Timestamp: time.Date(2024, 4, 1, 11, 0, 0, 0, time.UTC), Total: 4},
		{CustomerID: "c1", CustomerName: "김영희", HandledBy: "lee@example.com", QuarterKey: "2024-Q1", PeriodKey: "24-25", VisitDate: "2024-05-01",
			Timestamp: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), Total: 7},
		{CustomerID: "c2", CustomerName: "박철수", HandledBy: "lee@example.com", QuarterKey: "2024-Q2", PeriodKey: "24-25", VisitDate: "2024-07-01",
			Timestamp: time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC), Total: 3, LifeLove: true},
	} {
		require.NoError(t, f.provisions.Create(ctx, p))
	}
	return f
}

func TestFilterProvisionsByQuarter(t *testing.T) {
	in := []model.Provision{
		{ID: "a", QuarterKey: "2024-Q1"},
		{ID: "b", QuarterKey: "2024-Q2"},
		{ID: "c", QuarterKey: "2024-Q1"},
	}

	out := FilterProvisionsByQuarter(in, "2024-Q1")
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "c", out[1].ID)

	assert.Empty(t, FilterProvisionsByQuarter(in, "2024-Q3"))
	assert.NotNil(t, FilterProvisionsByQuarter(nil, "2024-Q1"))
}

func TestStatsService_VisitStats(t *testing.T) {
	f := setupStatsTest(t)
	now := func() time.Time { return time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC) }
	statsService := NewStatsService(f.customers, f.provisions, time.UTC, now)

	stats, err := statsService.VisitStats(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "24-25", stats.Period)
	require.Len(t, stats.Customers, 2)
	assert.Equal(t, "c1", stats.Customers[0].CustomerID)
	assert.Equal(t, 2, stats.Customers[0].Count)
	assert.Equal(t, 3, stats.TotalVisits)

	stats, err = statsService.VisitStats(context.Background(), "23-24")
	require.NoError(t, err)
	require.Len(t, stats.Customers, 1)
	assert.Equal(t, []string{"2023-12-01"}, stats.Customers[0].Dates)
}

func TestStatsService_LifeLoveStats(t *testing.T) {
	f := setupStatsTest(t)
	now := func() time.Time { return time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC) }
	statsService := NewStatsService(f.customers, f.provisions, time.UTC, now)

	stats, err := statsService.LifeLoveStats(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2024-Q2", stats.Quarter)
	require.Equal(t, 1, stats.Count)
	assert.Equal(t, "박철수", stats.Customers[0].Name)

	_, err = statsService.LifeLoveStats(context.Background(), "2024-Q9")
	assert.ErrorIs(t, err, ErrInvalidQuarter)
}

func TestStatsService_DailyCounts(t *testing.T) {
	f := setupStatsTest(t)
	statsService := NewStatsService(f.customers, f.provisions, time.UTC, nil)

	counts, err := statsService.DailyCounts(context.Background(), "2024-04-01", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, []DailyCount{
		{Date: "2024-04-01", Count: 2, Points: 14},
		{Date: "2024-05-01", Count: 1, Points: 7},
	}, counts)

	counts, err = statsService.DailyCounts(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, counts, 3)

	_, err = statsService.DailyCounts(context.Background(), "04/01/2024", "")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestProvisionService_ListProvisions(t *testing.T) {
	f := setupStatsTest(t)
	provisionService := NewProvisionService(f.provisions, time.UTC)
	ctx := context.Background()

	list, err := provisionService.ListProvisions(ctx, ProvisionQuery{Quarter: "2024-Q1"})
	require.NoError(t, err)
	assert.Len(t, list, 3)

	list, err = provisionService.ListProvisions(ctx, ProvisionQuery{Quarter: "2024-Q1", CustomerID: "c1", To: "2024-04-30"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 10, list[0].Total)

	_, err = provisionService.ListProvisions(ctx, ProvisionQuery{Quarter: "Q1"})
	assert.ErrorIs(t, err, ErrInvalidQuarter)

	_, err = provisionService.GetProvisionByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrProvisionNotFound)
}

func TestReportService_ExportQuarter(t *testing.T) {
	f := setupStatsTest(t)
	reportService := NewReportService(f.provisions, time.UTC)

	report, err := reportService.ExportQuarter(context.Background(), "2024-Q1")
	require.NoError(t, err)
	assert.Equal(t, "provisions-2024-Q1.xlsx", report.Filename)
	assert.Equal(t, 3, report.Rows)

	book, err := excelize.OpenReader(bytes.NewReader(report.Data))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(provisionSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "제공일", rows[0][0])
	assert.Equal(t, []string{"2024-04-01", "09:00", "김영희", "", "쌀 x2", "10", "kim@example.com", "O"}, rows[1])

	summary, err := book.GetRows(customerSheet)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"김영희", "", "2", "17", "O"}, summary[1])
	require.GreaterOrEqual(t, len(summary[2]), 4)
	assert.Equal(t, []string{"박철수", "", "1", "4"}, summary[2][:4])

	_, err = reportService.ExportQuarter(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrInvalidQuarter)
}
