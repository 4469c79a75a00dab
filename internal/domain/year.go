package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// naYear is how an invalid Year prints.
const naYear = "NA"

// Year identifies one annual FARS dataset. The zero value is invalid.
type Year struct {
	value int
	valid bool
}

// NewYear returns a valid Year.
func NewYear(v int) Year {
	return Year{value: v, valid: true}
}

// ParseYear coerces v to a Year. Integers, integral or fractional floats
// (truncated toward zero) and numeric strings are accepted; anything else
// yields an invalid Year.
func ParseYear(v any) Year {
	switch x := v.(type) {
	case Year:
		return x
	case int:
		return yearFromInt64(int64(x))
	case int8:
		return NewYear(int(x))
	case int16:
		return NewYear(int(x))
	case int32:
		return NewYear(int(x))
	case int64:
		return yearFromInt64(x)
	case uint:
		return yearFromUint64(uint64(x))
	case uint8:
		return NewYear(int(x))
	case uint16:
		return NewYear(int(x))
	case uint32:
		return yearFromUint64(uint64(x))
	case uint64:
		return yearFromUint64(x)
	case float32:
		return yearFromFloat(float64(x))
	case float64:
		return yearFromFloat(x)
	case json.Number:
		return parseYearString(x.String())
	case string:
		return parseYearString(x)
	case fmt.Stringer:
		return parseYearString(x.String())
	default:
		return Year{}
	}
}

// ParseYears coerces each value with ParseYear, preserving order.
func ParseYears[T any](values []T) []Year {
	years := make([]Year, len(values))
	for i, v := range values {
		years[i] = ParseYear(v)
	}
	return years
}

func parseYearString(s string) Year {
	s = strings.TrimSpace(s)
	if s == "" {
		return Year{}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return yearFromInt64(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Year{}
	}
	return yearFromFloat(f)
}

func yearFromInt64(n int64) Year {
	if n > math.MaxInt32 || n < math.MinInt32 {
		return Year{}
	}
	return NewYear(int(n))
}

func yearFromUint64(n uint64) Year {
	if n > math.MaxInt32 {
		return Year{}
	}
	return NewYear(int(n))
}

func yearFromFloat(f float64) Year {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return Year{}
	}
	return NewYear(int(f))
}

// Int returns the numeric year and whether it is valid.
func (y Year) Int() (int, bool) {
	return y.value, y.valid
}

// Valid reports whether the year was coerced successfully.
func (y Year) Valid() bool { return y.valid }

// String prints the year as a plain integer, or "NA" when invalid.
func (y Year) String() string {
	if !y.valid {
		return naYear
	}
	return strconv.Itoa(y.value)
}

// MakeFilename returns the conventional FARS file name for a year,
// e.g. "accident_2013.csv.bz2". An invalid year yields "accident_NA.csv.bz2".
func MakeFilename(y Year) string {
	return fmt.Sprintf("accident_%s.csv.bz2", y)
}
