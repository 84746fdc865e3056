package util

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// 회계 연도는 3월 1일에 시작한다.
const fiscalStartMonth = time.March

const visitDateLayout = "2006-01-02"

// PeriodKey returns the fiscal visit period of t as "YY-YY".
// January and February belong to the period that started the previous year.
func PeriodKey(t time.Time) string {
	start := t.Year()
	if t.Month() < fiscalStartMonth {
		start--
	}
	return fmt.Sprintf("%02d-%02d", start%100, (start+1)%100)
}

// QuarterKey returns the life-love quarter of t as "YYYY-Qn".
// Q1 Mar–May, Q2 Jun–Aug, Q3 Sep–Nov, Q4 Dec–Feb (Jan/Feb counted in the prior year).
func QuarterKey(t time.Time) string {
	year := t.Year()
	var q int
	switch m := t.Month(); {
	case m >= time.March && m <= time.May:
		q = 1
	case m >= time.June && m <= time.August:
		q = 2
	case m >= time.September && m <= time.November:
		q = 3
	case m == time.December:
		q = 4
	default:
		q = 4
		year--
	}
	return fmt.Sprintf("%d-Q%d", year, q)
}

// VisitDate formats t as the ISO date stored in a customer's visit ledger.
func VisitDate(t time.Time) string {
	return t.Format(visitDateLayout)
}

// ParseQuarterKey splits "YYYY-Qn" into its year and quarter number.
func ParseQuarterKey(key string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(key), "-Q", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid quarter key %q", key)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid quarter key %q: %w", key, err)
	}
	q, err := strconv.Atoi(parts[1])
	if err != nil || q < 1 || q > 4 {
		return 0, 0, fmt.Errorf("invalid quarter key %q", key)
	}
	return year, q, nil
}

// QuarterRange returns the half-open interval [start, end) covered by key in loc.
func QuarterRange(key string, loc *time.Location) (time.Time, time.Time, error) {
	year, q, err := ParseQuarterKey(key)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, fiscalStartMonth+time.Month(3*(q-1)), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 3, 0), nil
}

// PreviousQuarterKey returns the quarter immediately before the one containing t.
func PreviousQuarterKey(t time.Time) string {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return QuarterKey(first.AddDate(0, -3, 0))
}

// AddVisitDate inserts date into visits[period] unless already present.
// The input map is not modified; the returned map is always non-nil.
func AddVisitDate(visits map[string][]string, period, date string) (map[string][]string, bool) {
	out := make(map[string][]string, len(visits)+1)
	for k, v := range visits {
		out[k] = append([]string(nil), v...)
	}

	for _, d := range out[period] {
		if d == date {
			return out, false
		}
	}
	dates := append(out[period], date)
	sort.Strings(dates)
	out[period] = dates
	return out, true
}

// UpdateCustomerLifeLove marks quarter when checked. An existing true entry is
// never cleared. The input map is not modified.
func UpdateCustomerLifeLove(lifelove map[string]bool, quarter string, checked bool) map[string]bool {
	out := make(map[string]bool, len(lifelove)+1)
	for k, v := range lifelove {
		out[k] = v
	}
	if checked {
		out[quarter] = true
	}
	return out
}
