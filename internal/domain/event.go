package domain

import "math"

// Coordinates above these values are FARS "not available" sentinels.
const (
	MissingLongitude = 900.0
	MissingLatitude  = 90.0
)

// Coordinate is a WGS-84 longitude/latitude pair.
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// NewLocation returns nil when either value is NaN or a FARS sentinel.
func NewLocation(lon, lat float64) *Coordinate {
	if math.IsNaN(lon) || math.IsNaN(lat) {
		return nil
	}
	if lon > MissingLongitude || lat > MissingLatitude {
		return nil
	}
	return &Coordinate{Lon: lon, Lat: lat}
}

// AccidentRecord is one row of a FARS accident file.
type AccidentRecord struct {
	Case       int         `json:"st_case,omitempty"`
	State      int         `json:"state"`
	Month      int         `json:"month"`
	Day        int         `json:"day,omitempty"`
	Fatalities int         `json:"fatals,omitempty"`
	Location   *Coordinate `json:"location,omitempty"`
}

// Table is the parsed content of one accident file.
type Table struct {
	Path    string
	Records []AccidentRecord
}

// HasState reports whether any record belongs to state.
func (t Table) HasState(state int) bool {
	for i := range t.Records {
		if t.Records[i].State == state {
			return true
		}
	}
	return false
}

// FilterState returns the records belonging to state.
func (t Table) FilterState(state int) []AccidentRecord {
	var out []AccidentRecord
	for i := range t.Records {
		if t.Records[i].State == state {
			out = append(out, t.Records[i])
		}
	}
	return out
}

// YearTable is a Table tagged with the year it was loaded for.
type YearTable struct {
	Year Year
	Table
}

// MonthYears projects every row down to its (Month, Year) tag.
func (t YearTable) MonthYears() []MonthYear {
	y, _ := t.Year.Int()
	rows := make([]MonthYear, len(t.Records))
	for i := range t.Records {
		rows[i] = MonthYear{Month: t.Records[i].Month, Year: y}
	}
	return rows
}

// MonthYear is the grouping key used by the summary.
type MonthYear struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// YearResult is the outcome of loading one requested year. Exactly one of
// Rows and Err is meaningful.
type YearResult struct {
	Year Year
	Rows []MonthYear
	Err  error
}

// OK reports whether the year loaded.
func (r YearResult) OK() bool { return r.Err == nil }
