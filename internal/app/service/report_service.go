package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"github.com/foodmarket/provision-backend/pkg/logger"
	"github.com/foodmarket/provision-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

const (
	provisionSheet = "제공내역"
	customerSheet  = "이용자별"
	XLSXMimeType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Report is a rendered spreadsheet.
type Report struct {
	Quarter  string
	Filename string
	Rows     int
	Data     []byte
}

type ReportService interface {
	// ExportQuarter renders every provision of quarter as an xlsx workbook
	// with a detail sheet and a per-customer summary sheet.
	ExportQuarter(ctx context.Context, quarter string) (*Report, error)
}

type reportService struct {
	provisionRepo repository.ProvisionRepository
	loc           *time.Location
}

func NewReportService(provisionRepo repository.ProvisionRepository, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{provisionRepo: provisionRepo, loc: loc}
}

func (s *reportService) ExportQuarter(ctx context.Context, quarter string) (*Report, error) {
	quarter = strings.TrimSpace(quarter)
	start, end, err := util.QuarterRange(quarter, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuarter, err)
	}

	// The timestamp window narrows the scan; the quarter tag decides membership.
	provisions, err := s.provisionRepo.List(ctx, repository.ProvisionFilter{From: &start, To: &end})
	if err != nil {
		return nil, err
	}
	provisions = FilterProvisionsByQuarter(provisions, quarter)

	data, err := s.render(provisions)
	if err != nil {
		logger.Error("Failed to render quarter report", err, map[string]interface{}{
			"quarter": quarter,
		})
		return nil, err
	}

	logger.Info("Quarter report rendered", map[string]interface{}{
		"quarter": quarter,
		"rows":    len(provisions),
		"bytes":   len(data),
	})

	return &Report{
		Quarter:  quarter,
		Filename: fmt.Sprintf("provisions-%s.xlsx", quarter),
		Rows:     len(provisions),
		Data:     data,
	}, nil
}

type customerTotal struct {
	name   string
	birth  string
	count  int
	points int
	life   bool
}

func (s *reportService) render(provisions []model.Provision) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), provisionSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(customerSheet); err != nil {
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := writeRow(f, provisionSheet, 1, []interface{}{"제공일", "시각", "이용자", "생년월일", "물품", "포인트", "담당", "생활사랑"}); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(provisionSheet, 1, 1, header); err != nil {
		return nil, err
	}

	totals := make(map[string]*customerTotal)
	var order []string
	for i, p := range provisions {
		ts := p.Timestamp.In(s.loc)
		row := []interface{}{
			util.VisitDate(ts),
			ts.Format("15:04"),
			p.CustomerName,
			p.CustomerBirth,
			itemsSummary(p.Items),
			p.Total,
			p.HandledBy,
			lifeLoveMark(p.LifeLove),
		}
		if err := writeRow(f, provisionSheet, i+2, row); err != nil {
			return nil, err
		}

		t, ok := totals[p.CustomerID]
		if !ok {
			t = &customerTotal{name: p.CustomerName, birth: p.CustomerBirth}
			totals[p.CustomerID] = t
			order = append(order, p.CustomerID)
		}
		t.count++
		t.points += p.Total
		t.life = t.life || p.LifeLove
	}

	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]].name < totals[order[j]].name
	})

	if err := writeRow(f, customerSheet, 1, []interface{}{"이용자", "생년월일", "방문 횟수", "포인트 합계", "생활사랑"}); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(customerSheet, 1, 1, header); err != nil {
		return nil, err
	}
	for i, id := range order {
		t := totals[id]
		if err := writeRow(f, customerSheet, i+2, []interface{}{t.name, t.birth, t.count, t.points, lifeLoveMark(t.life)}); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func itemsSummary(items []model.CartLine) string {
	parts := make([]string, 0, len(items))
	for _, l := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", l.Name, l.Quantity))
	}
	return strings.Join(parts, ", ")
}

func lifeLoveMark(v bool) string {
	if v {
		return "O"
	}
	return ""
}
