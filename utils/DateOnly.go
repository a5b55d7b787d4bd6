package utils

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type DateOnly time.Time

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	*d = DateOnly(t)
	return nil
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Format("2006-01-02"))
}

// Value implements the driver.Valuer interface for database writes
func (d DateOnly) Value() (driver.Value, error) {
	return time.Time(d).Format("2006-01-02"), nil
}

// Scan implements the sql.Scanner interface for database reads
func (d *DateOnly) Scan(value interface{}) error {
	if value == nil {
		*d = DateOnly(time.Time{})
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		*d = DateOnly(v)
		return nil
	case string:
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return err
		}
		*d = DateOnly(t)
		return nil
	default:
		return fmt.Errorf("cannot scan type %T into DateOnly", value)
	}
}

// Time returns the date truncated to midnight. Parsed dates carry no clock
// component, so truncation only matters for values built from time.Now().
func (d DateOnly) Time() time.Time {
	t := time.Time(d)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (d DateOnly) String() string {
	return time.Time(d).Format("2006-01-02")
}

// dateUTC rebuilds the calendar date at midnight UTC so comparisons look at
// year/month/day only. Values built from time.Now() carry the app timezone,
// parsed values carry UTC; comparing the raw instants would shift dates
// across the boundary in any non-UTC deployment.
func (d DateOnly) dateUTC() time.Time {
	t := time.Time(d)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (d DateOnly) Equal(other DateOnly) bool {
	return d.dateUTC().Equal(other.dateUTC())
}

func (d DateOnly) Before(other DateOnly) bool {
	return d.dateUTC().Before(other.dateUTC())
}

func (d DateOnly) After(other DateOnly) bool {
	return d.dateUTC().After(other.dateUTC())
}

func (d DateOnly) AddDays(n int) DateOnly {
	return DateOnly(d.Time().AddDate(0, 0, n))
}

// ParseDateOnly parses a YYYY-MM-DD string.
func ParseDateOnly(s string) (DateOnly, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return DateOnly{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOnly(t), nil
}
