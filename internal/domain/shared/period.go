package shared

import (
	"fmt"
	"regexp"
	"time"

	"github.com/jinzhu/now"
)

// Period is an inclusive time window
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ErrInvalidPeriod is returned for unparseable date selectors
var ErrInvalidPeriod = NewValidationError("INVALID_PERIOD", "Invalid date filter")

var (
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
	monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
	dayPattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// NewPeriod builds a period from explicit bounds
func NewPeriod(from, to time.Time) (Period, error) {
	if to.Before(from) {
		return Period{}, ErrInvalidPeriod.WithDetails("from must not be after to")
	}
	return Period{From: from, To: to}, nil
}

// MonthOf returns the calendar month containing t
func MonthOf(t time.Time) Period {
	n := now.With(t)
	return Period{From: n.BeginningOfMonth(), To: n.EndOfMonth()}
}

// DayOf returns the calendar day containing t
func DayOf(t time.Time) Period {
	n := now.With(t)
	return Period{From: n.BeginningOfDay(), To: n.EndOfDay()}
}

// YearOf returns the calendar year containing t
func YearOf(t time.Time) Period {
	n := now.With(t)
	return Period{From: n.BeginningOfYear(), To: n.EndOfYear()}
}

// ParseDateFilter resolves the list filter used by invoice and quotation reads:
// yyyy-mm selects a month, yyyy-mm-dd a day, and an empty value the month
// containing ref.
func ParseDateFilter(value string, ref time.Time) (Period, error) {
	switch {
	case value == "":
		return MonthOf(ref), nil
	case monthPattern.MatchString(value):
		t, err := time.ParseInLocation("2006-01", value, ref.Location())
		if err != nil {
			return Period{}, ErrInvalidPeriod.WithDetails(err.Error())
		}
		return MonthOf(t), nil
	case dayPattern.MatchString(value):
		t, err := time.ParseInLocation("2006-01-02", value, ref.Location())
		if err != nil {
			return Period{}, ErrInvalidPeriod.WithDetails(err.Error())
		}
		return DayOf(t), nil
	}
	return Period{}, ErrInvalidPeriod.WithDetails(fmt.Sprintf("date must be yyyy-mm or yyyy-mm-dd, got %q", value))
}

// ParseRange resolves a dashboard selector. Relative windows (30d, 60d, 90d, 1y)
// end at ref; yyyy, yyyy-mm and yyyy-mm-dd select calendar periods. An empty
// value means 30d.
func ParseRange(value string, ref time.Time) (Period, error) {
	switch value {
	case "", "30d":
		return Period{From: ref.AddDate(0, 0, -30), To: ref}, nil
	case "60d":
		return Period{From: ref.AddDate(0, 0, -60), To: ref}, nil
	case "90d":
		return Period{From: ref.AddDate(0, 0, -90), To: ref}, nil
	case "1y":
		return Period{From: ref.AddDate(-1, 0, 0), To: ref}, nil
	}
	if yearPattern.MatchString(value) {
		t, err := time.ParseInLocation("2006", value, ref.Location())
		if err != nil {
			return Period{}, ErrInvalidPeriod.WithDetails(err.Error())
		}
		return YearOf(t), nil
	}
	if monthPattern.MatchString(value) || dayPattern.MatchString(value) {
		return ParseDateFilter(value, ref)
	}
	return Period{}, ErrInvalidPeriod.WithDetails(
		fmt.Sprintf("dateRange must be one of 30d, 60d, 90d, 1y, yyyy, yyyy-mm, yyyy-mm-dd, got %q", value))
}
