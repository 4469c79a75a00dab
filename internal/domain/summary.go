package domain

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// MonthColumn is the name of the row-key column in the wide summary.
const MonthColumn = "MONTH"

// Summary is a month-by-year accident count: one row per observed month, one
// column per successfully loaded year.
type Summary struct {
	years  []int
	months []int
	counts map[MonthYear]int
}

// Summarize groups the rows of every successful result by (Year, Month) and
// counts them. Failed results contribute nothing; if all failed, Summarize
// returns ErrNoData.
func Summarize(results []YearResult) (*Summary, error) {
	s := &Summary{counts: make(map[MonthYear]int)}
	seenYear := make(map[int]bool)
	seenMonth := make(map[int]bool)

	for _, r := range results {
		if !r.OK() {
			continue
		}
		y, ok := r.Year.Int()
		if !ok {
			continue
		}
		if !seenYear[y] {
			seenYear[y] = true
			s.years = append(s.years, y)
		}
		for _, row := range r.Rows {
			s.counts[row]++
			if !seenMonth[row.Month] {
				seenMonth[row.Month] = true
				s.months = append(s.months, row.Month)
			}
		}
	}

	if len(s.years) == 0 {
		return nil, fmt.Errorf("summarize %d years: %w", len(results), ErrNoData)
	}

	slices.Sort(s.years)
	slices.Sort(s.months)
	return s, nil
}

// Years returns the column keys in ascending order.
func (s *Summary) Years() []int { return slices.Clone(s.years) }

// Months returns the row keys in ascending order.
func (s *Summary) Months() []int { return slices.Clone(s.months) }

// Count returns the number of accidents in month of year, and false when
// that combination was never observed.
func (s *Summary) Count(month, year int) (int, bool) {
	n, ok := s.counts[MonthYear{Month: month, Year: year}]
	return n, ok
}

// Total returns the number of accidents counted for year.
func (s *Summary) Total(year int) int {
	total := 0
	for k, n := range s.counts {
		if k.Year == year {
			total += n
		}
	}
	return total
}

// SummaryRow is one month of the wide table. Unset cells are absent from Counts.
type SummaryRow struct {
	Month  int            `json:"month"`
	Counts map[string]int `json:"counts"`
}

// Rows returns the wide table keyed by the year's string form.
func (s *Summary) Rows() []SummaryRow {
	rows := make([]SummaryRow, 0, len(s.months))
	for _, m := range s.months {
		row := SummaryRow{Month: m, Counts: make(map[string]int)}
		for _, y := range s.years {
			if n, ok := s.Count(m, y); ok {
				row.Counts[strconv.Itoa(y)] = n
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// DataFrame returns the wide table with a MONTH column followed by one Int
// column per year. Unset cells are NaN.
func (s *Summary) DataFrame() dataframe.DataFrame {
	cols := make([]series.Series, 0, len(s.years)+1)
	cols = append(cols, series.New(slices.Clone(s.months), series.Int, MonthColumn))
	for _, y := range s.years {
		cells := make([]string, len(s.months))
		for i, m := range s.months {
			if n, ok := s.Count(m, y); ok {
				cells[i] = strconv.Itoa(n)
			} else {
				cells[i] = "NaN"
			}
		}
		cols = append(cols, series.New(cells, series.Int, strconv.Itoa(y)))
	}
	return dataframe.New(cols...)
}

// WriteCSV writes the wide table, header included.
func (s *Summary) WriteCSV(w io.Writer) error {
	df := s.DataFrame()
	if df.Err != nil {
		return fmt.Errorf("build summary frame: %w", df.Err)
	}
	return df.WriteCSV(w)
}
