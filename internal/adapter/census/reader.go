// Package census reads FARS accident files from disk into typed records.
package census

import (
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	"github.com/willojs/FARS/internal/domain"
)

// FARS accident column names.
const (
	ColState     = "STATE"
	ColMonth     = "MONTH"
	ColCase      = "ST_CASE"
	ColDay       = "DAY"
	ColFatals    = "FATALS"
	ColLongitude = "LONGITUD"
	ColLatitude  = "LATITUDE"
)

var requiredColumns = []string{ColState, ColMonth}

// FileReader implements pipeline.TableReader on the local filesystem.
type FileReader struct{}

// ReadFile delegates to the package-level ReadFile.
func (FileReader) ReadFile(path string) (domain.Table, error) {
	return ReadFile(path)
}

// ReadFile loads one accident file. The codec is chosen from the file
// suffix: .bz2, .gz, .zst and .zip are decompressed, anything else is read
// as plain CSV. A missing file yields an error wrapping domain.ErrFileNotFound.
func ReadFile(path string) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Table{}, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		return domain.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r, closeFn, err := decompress(f, path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("decompress %s: %w", path, err)
	}
	defer closeFn()

	records, err := Parse(r)
	if err != nil {
		return domain.Table{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return domain.Table{Path: path, Records: records}, nil
}

// decompress wraps f in the reader matching the path suffix.
func decompress(f *os.File, path string) (io.Reader, func(), error) {
	noop := func() {}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".bz2":
		return bzip2.NewReader(f), noop, nil
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, noop, err
		}
		return zr, func() { _ = zr.Close() }, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, noop, err
		}
		return zr, zr.Close, nil
	case ".zip":
		info, err := f.Stat()
		if err != nil {
			return nil, noop, err
		}
		zr, err := zip.NewReader(f, info.Size())
		if err != nil {
			return nil, noop, err
		}
		if len(zr.File) == 0 {
			return nil, noop, errors.New("empty zip archive")
		}
		rc, err := zr.File[0].Open()
		if err != nil {
			return nil, noop, err
		}
		return rc, func() { _ = rc.Close() }, nil
	default:
		return f, noop, nil
	}
}

// Parse reads a delimited accident table and converts it into typed records.
// STATE and MONTH must be present and integral on every row; the remaining
// columns are optional and default to zero or, for coordinates, to a nil
// location.
func Parse(r io.Reader) ([]domain.AccidentRecord, error) {
	df := dataframe.ReadCSV(r,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithLazyQuotes(true),
	)
	if df.Err != nil {
		return nil, df.Err
	}

	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[name] = true
	}
	for _, name := range requiredColumns {
		if !present[name] {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingColumn, name)
		}
	}

	column := func(name string) []string {
		if !present[name] {
			return nil
		}
		return df.Col(name).Records()
	}

	states := column(ColState)
	months := column(ColMonth)
	cases := column(ColCase)
	days := column(ColDay)
	fatals := column(ColFatals)
	lons := column(ColLongitude)
	lats := column(ColLatitude)

	records := make([]domain.AccidentRecord, df.Nrow())
	for i := range records {
		// Line numbers count the header as line 1.
		line := i + 2

		state, err := parseRequiredInt(states[i])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s %q", domain.ErrMalformedRow, line, ColState, states[i])
		}
		month, err := parseRequiredInt(months[i])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s %q", domain.ErrMalformedRow, line, ColMonth, months[i])
		}

		rec := domain.AccidentRecord{
			State:      state,
			Month:      month,
			Case:       intAt(cases, i),
			Day:        intAt(days, i),
			Fatalities: intAt(fatals, i),
		}
		if lons != nil && lats != nil {
			rec.Location = domain.NewLocation(floatOrNaN(lons[i]), floatOrNaN(lats[i]))
		}
		records[i] = rec
	}
	return records, nil
}

func parseRequiredInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// intAt returns the integer in col[i], or 0 when the column is absent or the
// cell does not parse.
func intAt(col []string, i int) int {
	if col == nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(col[i]))
	if err != nil {
		return 0
	}
	return n
}

func floatOrNaN(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
