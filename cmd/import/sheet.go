package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

// 헤더 이름 → 필드 매핑
var (
	customerColumns = map[string]string{
		"이름":   "name",
		"생년월일": "birth",
		"성별":   "gender",
		"상태":   "status",
		"주소":   "address",
		"전화번호": "phone",
		"비고":   "note",
	}
	productColumns = map[string]string{
		"이름":  "name",
		"물품명": "name",
		"가격":  "price",
		"포인트": "price",
		"바코드": "barcode",
		"분류":  "category",
	}
)

// rowError reports a skipped spreadsheet row.
type rowError struct {
	Row    int
	Reason string
}

func (e rowError) String() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// sheetRecords reads sheet (the first one when empty) and returns each data
// row keyed by field name. Row numbers are 1-based as shown in spreadsheet apps.
func sheetRecords(f *excelize.File, sheet string, columns map[string]string) ([]map[string]string, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	index := make(map[int]string)
	for i, header := range rows[0] {
		if field, ok := columns[strings.TrimSpace(header)]; ok {
			index[i] = field
		}
	}
	if _, ok := findField(index, "name"); !ok {
		return nil, fmt.Errorf("sheet %s has no name column", sheet)
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(index))
		for i, cell := range row {
			if field, ok := index[i]; ok {
				rec[field] = strings.TrimSpace(cell)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func findField(index map[int]string, field string) (int, bool) {
	for i, f := range index {
		if f == field {
			return i, true
		}
	}
	return 0, false
}

func readCustomers(f *excelize.File, sheet string) ([]model.Customer, []rowError, error) {
	records, err := sheetRecords(f, sheet, customerColumns)
	if err != nil {
		return nil, nil, err
	}

	var (
		customers []model.Customer
		skipped   []rowError
	)
	for i, rec := range records {
		row := i + 2
		if rec["name"] == "" {
			skipped = append(skipped, rowError{Row: row, Reason: "missing name"})
			continue
		}
		status := rec["status"]
		if status == "" {
			status = model.StatusActiveSupport
		}
		customers = append(customers, model.Customer{
			Name:    rec["name"],
			Birth:   rec["birth"],
			Gender:  rec["gender"],
			Status:  status,
			Address: rec["address"],
			Phone:   rec["phone"],
			Note:    rec["note"],
		})
	}
	return customers, skipped, nil
}

func readProducts(f *excelize.File, sheet string) ([]model.Product, []rowError, error) {
	records, err := sheetRecords(f, sheet, productColumns)
	if err != nil {
		return nil, nil, err
	}

	var (
		products []model.Product
		skipped  []rowError
	)
	seen := make(map[string]int)
	for i, rec := range records {
		row := i + 2
		switch {
		case rec["name"] == "":
			skipped = append(skipped, rowError{Row: row, Reason: "missing name"})
			continue
		case rec["barcode"] == "":
			skipped = append(skipped, rowError{Row: row, Reason: "missing barcode"})
			continue
		}
		if first, dup := seen[rec["barcode"]]; dup {
			skipped = append(skipped, rowError{Row: row, Reason: fmt.Sprintf("barcode %s already on row %d", rec["barcode"], first)})
			continue
		}

		price, err := strconv.Atoi(strings.ReplaceAll(rec["price"], ",", ""))
		if err != nil || price < 0 {
			skipped = append(skipped, rowError{Row: row, Reason: fmt.Sprintf("invalid price %q", rec["price"])})
			continue
		}

		seen[rec["barcode"]] = row
		products = append(products, model.Product{
			Name:     rec["name"],
			Price:    price,
			Barcode:  rec["barcode"],
			Category: rec["category"],
		})
	}
	return products, skipped, nil
}
