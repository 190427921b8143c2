// Package period converts target period keys into inclusive date ranges.
//
// Key formats per target type:
//
//	MONTHLY    2025-07
//	QUARTERLY  2025-Q3  (quarters start at months 1, 4, 7, 10)
//	YEARLY     2025
package period

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"backoffice-backend/internal/models"
)

var ErrInvalidPeriodKey = errors.New("invalid period key")

// KeyError carries the rejected key; errors.Is(err, ErrInvalidPeriodKey) holds.
type KeyError struct {
	Key    string
	Type   models.TargetType
	Reason string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("invalid period key %q for %s: %s", e.Key, e.Type, e.Reason)
}

func (e *KeyError) Unwrap() error { return ErrInvalidPeriodKey }

// Range is an inclusive [Start, End] window. End is the last millisecond of the period.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

var (
	monthlyPattern   = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	quarterlyPattern = regexp.MustCompile(`^(\d{4})-Q(\d)$`)
	yearlyPattern    = regexp.MustCompile(`^(\d{4})$`)
)

// Resolve returns the period boundaries in loc (UTC when nil).
func Resolve(key string, typ models.TargetType, loc *time.Location) (Range, error) {
	if loc == nil {
		loc = time.UTC
	}

	year, firstMonth, months, err := parse(key, typ)
	if err != nil {
		return Range{}, err
	}

	start := time.Date(year, time.Month(firstMonth), 1, 0, 0, 0, 0, loc)
	next := start.AddDate(0, months, 0)
	// gün sonu dahil: son günün 23:59:59.999'u
	end := next.Add(-time.Millisecond)

	return Range{Start: start, End: end}, nil
}

// Validate reports whether key is well formed for typ.
func Validate(key string, typ models.TargetType) error {
	_, _, _, err := parse(key, typ)
	return err
}

func parse(key string, typ models.TargetType) (year, firstMonth, months int, err error) {
	invalid := func(reason string) error {
		return &KeyError{Key: key, Type: typ, Reason: reason}
	}

	switch typ {
	case models.TargetMonthly:
		m := monthlyPattern.FindStringSubmatch(key)
		if m == nil {
			return 0, 0, 0, invalid("expected YYYY-MM")
		}
		year, _ = strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return 0, 0, 0, invalid("month out of range")
		}
		return year, month, 1, nil

	case models.TargetQuarterly:
		m := quarterlyPattern.FindStringSubmatch(key)
		if m == nil {
			return 0, 0, 0, invalid("expected YYYY-Qn")
		}
		year, _ = strconv.Atoi(m[1])
		q, _ := strconv.Atoi(m[2])
		if q < 1 || q > 4 {
			return 0, 0, 0, invalid("quarter out of range")
		}
		return year, (q-1)*3 + 1, 3, nil

	case models.TargetYearly:
		m := yearlyPattern.FindStringSubmatch(key)
		if m == nil {
			return 0, 0, 0, invalid("expected YYYY")
		}
		year, _ = strconv.Atoi(m[1])
		return year, 1, 12, nil

	default:
		return 0, 0, 0, invalid("unknown target type")
	}
}

// KeyFor returns the key of the period of type typ that contains t.
func KeyFor(t time.Time, typ models.TargetType) string {
	switch typ {
	case models.TargetQuarterly:
		return fmt.Sprintf("%04d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	case models.TargetYearly:
		return fmt.Sprintf("%04d", t.Year())
	default:
		return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
	}
}

// Recent returns the n most recent period keys up to and including the one
// containing now, oldest first.
func Recent(typ models.TargetType, n int, now time.Time, loc *time.Location) []string {
	if n <= 0 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	step := 1
	switch typ {
	case models.TargetQuarterly:
		step = 3
	case models.TargetYearly:
		step = 12
	}

	// ayın 1'inden geri git, AddDate ay sonu taşmasını yaşamasın
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[n-1-i] = KeyFor(anchor.AddDate(0, -step*i, 0), typ)
	}
	return keys
}
