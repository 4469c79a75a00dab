package census

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willojs/FARS/internal/domain"
	"github.com/willojs/FARS/internal/fixture"
)

var sampleRows = []fixture.Row{
	{State: 1, Case: 10001, Month: 1, Day: 1, Fatals: 1, Lat: 33.5243, Lon: -86.8720},
	{State: 1, Case: 10002, Month: 2, Day: 5, Fatals: 2, Lat: fixture.UnknownLatitude, Lon: fixture.UnknownLongitude},
	{State: 6, Case: 60001, Month: 2, Day: 9, Fatals: 1, Lat: 34.0478, Lon: -118.2602},
}

func TestReadFile_CommittedBzip2(t *testing.T) {
	table, err := ReadFile(filepath.Join("testdata", "accident_2013.csv.bz2"))
	require.NoError(t, err)
	require.Len(t, table.Records, 6)

	first := table.Records[0]
	assert.Equal(t, 1, first.State)
	assert.Equal(t, 10001, first.Case)
	assert.Equal(t, 1, first.Month)
	assert.Equal(t, 1, first.Day)
	assert.Equal(t, 1, first.Fatalities)
	require.NotNil(t, first.Location)
	assert.InDelta(t, -86.87202778, first.Location.Lon, 1e-9)
	assert.InDelta(t, 33.52430556, first.Location.Lat, 1e-9)

	assert.Nil(t, table.Records[3].Location, "sentinel coordinates")
	assert.Nil(t, table.Records[5].Location, "NA coordinates")
	assert.Equal(t, 12, table.Records[5].Month)
}

func TestReadFile_Codecs(t *testing.T) {
	for _, name := range []string{"accident_2014.csv.bz2", "accident_2014.csv.gz", "accident_2014.csv.zst", "accident_2014.csv"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, fixture.WriteFile(path, sampleRows))

			table, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, path, table.Path)
			require.Len(t, table.Records, 3)
			assert.Equal(t, 6, table.Records[2].State)
			assert.NotNil(t, table.Records[0].Location)
			assert.Nil(t, table.Records[1].Location)
		})
	}
}

func TestReadFile_Zip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accident_2014.zip")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	w, err := zw.Create("accident.csv")
	require.NoError(t, err)
	require.NoError(t, fixture.Encode(w, sampleRows))
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	table, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, table.Records, 3)
}

func TestReadFile_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accident_1900.csv.bz2")

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFileNotFound))
	assert.Contains(t, err.Error(), path)
}

func TestReadFile_CorruptArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accident_2014.csv.gz")
	require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0o600))

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrFileNotFound))
	assert.Contains(t, err.Error(), "decompress")
}

func TestParse_MissingColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("STATE,DAY\n1,2\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingColumn)
	assert.Contains(t, err.Error(), "MONTH")
}

func TestParse_MalformedRequiredField(t *testing.T) {
	_, err := Parse(strings.NewReader("STATE,MONTH\n1,2\n1,x\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedRow)
	assert.Contains(t, err.Error(), "line 3")
}

func TestParse_OptionalColumnsAbsent(t *testing.T) {
	records, err := Parse(strings.NewReader("MONTH,STATE\n4,13\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.AccidentRecord{State: 13, Month: 4}, records[0])
}

func TestParse_HeaderOnly(t *testing.T) {
	_, err := Parse(strings.NewReader("STATE,MONTH\n"))
	assert.Error(t, err)
}
