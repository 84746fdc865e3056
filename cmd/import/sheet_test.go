package main

import (
	"testing"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newWorkbook(t *testing.T, rows [][]interface{}) *excelize.File {
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	return f
}

func TestReadCustomers(t *testing.T) {
	f := newWorkbook(t, [][]interface{}{
		{"비고", "이름", "생년월일", "상태"},
		{"", "김영희", "1950-01-01", ""},
		{"메모", "", "1948-03-02", "지원"},
		{"", "박철수", "1955-07-07", "중단"},
	})

	customers, skipped, err := readCustomers(f, "")
	require.NoError(t, err)

	require.Len(t, customers, 2)
	assert.Equal(t, "김영희", customers[0].Name)
	assert.Equal(t, model.StatusActiveSupport, customers[0].Status)
	assert.Equal(t, "중단", customers[1].Status)

	require.Len(t, skipped, 1)
	assert.Equal(t, 3, skipped[0].Row)
}

func TestReadProducts(t *testing.T) {
	f := newWorkbook(t, [][]interface{}{
		{"물품명", "포인트", "바코드", "분류"},
		{"쌀", "5", "880001", "곡류"},
		{"라면", "1,200", "880002", ""},
		{"쌀 중복", "5", "880001", ""},
		{"우유", "abc", "880003", ""},
		{"두부", "2", "", ""},
	})

	products, skipped, err := readProducts(f, "")
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, 5, products[0].Price)
	assert.Equal(t, "곡류", products[0].Category)
	assert.Equal(t, 1200, products[1].Price)

	require.Len(t, skipped, 3)
	assert.Equal(t, 4, skipped[0].Row)
	assert.Contains(t, skipped[0].Reason, "row 2")
}

func TestReadProducts_RequiresNameColumn(t *testing.T) {
	f := newWorkbook(t, [][]interface{}{{"바코드"}, {"880001"}})

	_, _, err := readProducts(f, "")
	assert.Error(t, err)
}
