// Command validate performs data integrity checks on a directory of FARS
// accident files: every file parses, required fields are in range,
// coordinates are either valid or FARS sentinels, case numbers are unique
// within a state and year, and the month-by-year summary accounts for every
// row.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data
//	go run ./cmd/validate -data-dir data -years 2013,2014
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/willojs/FARS/internal/adapter/census"
	"github.com/willojs/FARS/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", ".", "directory containing accident_<year>.csv.bz2 files")
	years := flag.String("years", "", "comma-separated years; default is every accident_* file in -data-dir")
	flag.Parse()

	var requested []string
	if *years != "" {
		requested = strings.Split(*years, ",")
	}
	os.Exit(run(os.Stdout, *dataDir, requested))
}

func run(w io.Writer, dataDir string, requested []string) int {
	fmt.Fprintln(w, "=== FARS Data Integrity Validation ===")
	fmt.Fprintln(w)

	paths, err := resolvePaths(dataDir, requested)
	if err != nil {
		fmt.Fprintf(w, "FATAL: %v\n", err)
		return 1
	}
	if len(paths) == 0 {
		fmt.Fprintf(w, "FATAL: no accident files in %s\n", dataDir)
		return 1
	}

	// ── Load ──
	readable := &phase{name: "Files readable"}
	var tables []domain.YearTable
	for _, path := range paths {
		table, err := census.ReadFile(path)
		if err != nil {
			readable.errorf("%v", err)
			continue
		}
		tables = append(tables, domain.YearTable{Year: yearOf(path), Table: table})
		fmt.Fprintf(w, "  loaded %s: %d rows\n", filepath.Base(path), len(table.Records))
	}

	// ── Validate ──
	phases := []*phase{
		readable,
		validateRequiredFields(tables),
		validateCoordinates(tables),
		validateUniqueCases(tables),
		validateSummary(tables),
	}

	// ── Report ──
	fmt.Fprintln(w)
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-32s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// resolvePaths returns the files for the requested years, or every
// accident_* file in dir when none are requested.
func resolvePaths(dir string, requested []string) ([]string, error) {
	if len(requested) == 0 {
		paths, err := filepath.Glob(filepath.Join(dir, "accident_*.csv*"))
		if err != nil {
			return nil, err
		}
		sort.Strings(paths)
		return paths, nil
	}

	paths := make([]string, 0, len(requested))
	for _, y := range domain.ParseYears(requested) {
		if !y.Valid() {
			return nil, fmt.Errorf("invalid year in %v", requested)
		}
		paths = append(paths, filepath.Join(dir, domain.MakeFilename(y)))
	}
	return paths, nil
}

// yearOf recovers the year from an accident_<year>.<ext> file name.
func yearOf(path string) domain.Year {
	name := strings.TrimPrefix(filepath.Base(path), "accident_")
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	return domain.ParseYear(name)
}

func validateRequiredFields(tables []domain.YearTable) *phase {
	p := &phase{name: "Required fields in range"}
	for _, t := range tables {
		if !t.Year.Valid() {
			p.errorf("%s: file name carries no year", t.Path)
		}
		for i, rec := range t.Records {
			if rec.Month < 1 || rec.Month > 12 {
				p.errorf("%s row %d: MONTH=%d", t.Path, i+1, rec.Month)
			}
			if rec.State <= 0 {
				p.errorf("%s row %d: STATE=%d", t.Path, i+1, rec.State)
			}
		}
	}
	return p
}

func validateCoordinates(tables []domain.YearTable) *phase {
	p := &phase{name: "Coordinates valid or unknown"}
	for _, t := range tables {
		for i, rec := range t.Records {
			if rec.Location == nil {
				continue
			}
			if math.Abs(rec.Location.Lat) > 90 || math.Abs(rec.Location.Lon) > 180 {
				p.errorf("%s row %d: coordinate (%g, %g) out of range", t.Path, i+1, rec.Location.Lon, rec.Location.Lat)
			}
		}
	}
	return p
}

func validateUniqueCases(tables []domain.YearTable) *phase {
	p := &phase{name: "Case numbers unique"}
	for _, t := range tables {
		seen := make(map[[2]int]int)
		for i, rec := range t.Records {
			if rec.Case == 0 {
				continue
			}
			key := [2]int{rec.State, rec.Case}
			if first, dup := seen[key]; dup {
				p.errorf("%s: ST_CASE %d of state %d on rows %d and %d", t.Path, rec.Case, rec.State, first, i+1)
				continue
			}
			seen[key] = i + 1
		}
	}
	return p
}

// validateSummary checks that the monthly counts add back up to the rows read.
func validateSummary(tables []domain.YearTable) *phase {
	p := &phase{name: "Summary accounts for every row"}
	results := make([]domain.YearResult, 0, len(tables))
	rows := make(map[int]int)
	for _, t := range tables {
		y, ok := t.Year.Int()
		if !ok {
			continue
		}
		results = append(results, domain.YearResult{Year: t.Year, Rows: t.MonthYears()})
		rows[y] += len(t.Records)
	}
	if len(results) == 0 {
		return p
	}

	summary, err := domain.Summarize(results)
	if err != nil {
		p.errorf("summarize: %v", err)
		return p
	}
	for y, want := range rows {
		if got := summary.Total(y); got != want {
			p.errorf("year %d: summary total %d, rows read %d", y, got, want)
		}
	}
	return p
}
