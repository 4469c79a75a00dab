// Package fixture writes synthetic FARS accident files for demos and tests.
package fixture

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/willojs/FARS/internal/domain"
)

// Header is the column order written by WriteFile.
var Header = []string{"STATE", "ST_CASE", "MONTH", "DAY", "FATALS", "LATITUDE", "LONGITUD"}

// Sentinel coordinates as FARS writes them.
const (
	UnknownLongitude = 999.9999
	UnknownLatitude  = 99.9999
)

// Row is one raw accident row. Coordinates are written verbatim, so
// sentinels can be expressed.
type Row struct {
	State  int
	Case   int
	Month  int
	Day    int
	Fatals int
	Lat    float64
	Lon    float64
}

// Encode writes rows as CSV with the fixture header.
func Encode(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.State),
			strconv.Itoa(r.Case),
			strconv.Itoa(r.Month),
			strconv.Itoa(r.Day),
			strconv.Itoa(r.Fatals),
			strconv.FormatFloat(r.Lat, 'f', 4, 64),
			strconv.FormatFloat(r.Lon, 'f', 4, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile encodes rows to path, compressing according to the suffix
// (.bz2, .gz, .zst; anything else is plain CSV).
func WriteFile(path string, rows []Row) error {
	var buf bytes.Buffer
	if err := Encode(&buf, rows); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return WriteRaw(path, buf.Bytes())
}

// WriteRaw compresses data according to the suffix of path and writes it.
func WriteRaw(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w, flush, err := compressor(f, path)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("compress %s: %w", path, err)
	}
	if _, err := w.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// compressor returns the writer for path's suffix and the func that flushes it.
func compressor(f *os.File, path string) (io.Writer, func() error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bz2":
		zw, err := bzip2.NewWriter(f, nil)
		if err != nil {
			return nil, nil, err
		}
		return zw, zw.Close, nil
	case ".gz":
		zw := gzip.NewWriter(f)
		return zw, zw.Close, nil
	case ".zst":
		zw, err := zstd.NewWriter(f)
		if err != nil {
			return nil, nil, err
		}
		return zw, zw.Close, nil
	default:
		return f, func() error { return nil }, nil
	}
}

// Generate returns n pseudo-random rows for year spread over the given
// states. About one row in ten carries sentinel coordinates.
func Generate(year domain.Year, n int, states []int, seed uint64) []Row {
	y, _ := year.Int()
	rng := rand.New(rand.NewPCG(seed, uint64(y)))
	rows := make([]Row, n)
	for i := range rows {
		state := states[rng.IntN(len(states))]
		lon, lat := randomPoint(rng, state)
		if rng.IntN(10) == 0 {
			lon, lat = UnknownLongitude, UnknownLatitude
		}
		rows[i] = Row{
			State:  state,
			Case:   state*10000 + i + 1,
			Month:  rng.IntN(12) + 1,
			Day:    rng.IntN(28) + 1,
			Fatals: rng.IntN(3) + 1,
			Lat:    lat,
			Lon:    lon,
		}
	}
	return rows
}

// randomPoint places a point inside a box derived from the state number so
// that different states land in different parts of the continental US.
func randomPoint(rng *rand.Rand, state int) (lon, lat float64) {
	baseLon := -124.0 + float64(state%10)*5.5
	baseLat := 25.0 + float64(state%5)*4.5
	return baseLon + rng.Float64()*5, baseLat + rng.Float64()*4
}
