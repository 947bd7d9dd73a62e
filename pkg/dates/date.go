// Package dates splits search date ranges into per-month intervals so that
// each archive query stays below the service's result cap.
package dates

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Supported calendar range.
const (
	MinYear = 1
	MaxYear = 9999
)

var (
	// ErrMalformedDate is returned for dates that are not dd.mm.yyyy or do not exist.
	ErrMalformedDate = errors.New("malformed date")

	// ErrMalformedInterval is returned when an interval ends before it starts.
	ErrMalformedInterval = errors.New("malformed date interval")
)

// Date is a calendar day as used by the archive search form.
type Date struct{ Day, Month, Year int }

// ParseDate parses a date in dd.mm.yyyy form. Single-digit day and month
// components are accepted.
func ParseDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q: want dd.mm.yyyy", ErrMalformedDate, s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q: %v", ErrMalformedDate, s, err)
		}
		nums[i] = n
	}

	d := Date{Day: nums[0], Month: nums[1], Year: nums[2]}
	if err := d.Validate(); err != nil {
		return Date{}, err
	}
	return d, nil
}

// MustParseDate is like ParseDate but panics on error. Intended for tests and constants.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Validate reports whether d names an existing day in the supported range.
func (d Date) Validate() error {
	if d.Year < MinYear || d.Year > MaxYear {
		return fmt.Errorf("%w: year %d outside %d..%d", ErrMalformedDate, d.Year, MinYear, MaxYear)
	}
	if d.Month < 1 || d.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrMalformedDate, d.Month)
	}
	if d.Day < 1 || d.Day > DaysIn(d.Year, d.Month) {
		return fmt.Errorf("%w: day %d in %02d.%04d", ErrMalformedDate, d.Day, d.Month, d.Year)
	}
	return nil
}

// String renders d as dd.mm.yyyy.
func (d Date) String() string {
	return fmt.Sprintf("%02d.%02d.%04d", d.Day, d.Month, d.Year)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(d.Month - other.Month)
	default:
		return sign(d.Day - other.Day)
	}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// SameMonth reports whether d and other fall in the same month of the same year.
func (d Date) SameMonth(other Date) bool {
	return d.Year == other.Year && d.Month == other.Month
}

// DaysIn returns the number of days in month of year (Gregorian calendar).
func DaysIn(year, month int) int {
	switch month {
	case 2:
		if isLeap(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
