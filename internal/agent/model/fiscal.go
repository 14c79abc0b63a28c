package model

import (
	"fmt"
	"strconv"
)

// FiscalYear is a calendar year (e.g. 2025) identifying one town fiscal year.
type FiscalYear int

const (
	// MinYear is the earliest fiscal year with loaded data.
	MinYear FiscalYear = 2024
	// LatestCompleteYear is the most recent fiscal year with complete data.
	LatestCompleteYear FiscalYear = 2025
	// PartialYear has data loaded for only part of the year; answers that
	// touch it must carry PartialNote.
	PartialYear FiscalYear = 2026
)

// PartialNote is appended verbatim to any answer that references PartialYear.
const PartialNote = " Note: FY26 data is partial."

// Label renders the short fiscal year form used in answers, e.g. "FY25".
func (y FiscalYear) Label() string {
	return fmt.Sprintf("FY%02d", int(y)%100)
}

// IsPartial reports whether this year has incomplete data.
func (y FiscalYear) IsPartial() bool {
	return y == PartialYear
}

// Valid reports whether the year falls inside the loaded data range.
func (y FiscalYear) Valid() bool {
	return y >= MinYear && y <= PartialYear
}

// ParseFiscalYear normalises a 2- or 4-digit year string. Two-digit years
// pivot at 50: values below 50 map to 20xx, the rest to 19xx.
func ParseFiscalYear(s string) (FiscalYear, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return NormalizeYearDigits(n), true
}

// NormalizeYearDigits applies the two-digit pivot to a numeric year.
func NormalizeYearDigits(n int) FiscalYear {
	if n < 100 {
		if n < 50 {
			return FiscalYear(2000 + n)
		}
		return FiscalYear(1900 + n)
	}
	return FiscalYear(n)
}
