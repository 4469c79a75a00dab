package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocation(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
		valid    bool
	}{
		{"valid", -86.3, 32.4, true},
		{"longitude sentinel", 999.9999, 32.4, false},
		{"latitude sentinel", -86.3, 99.9999, false},
		{"codes under the thresholds", 888.8888, 88.8888, true},
		{"edge longitude", 900, 45, true},
		{"edge latitude", -100, 90, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := NewLocation(tt.lon, tt.lat)
			if tt.valid {
				require.NotNil(t, loc)
				assert.Equal(t, tt.lon, loc.Lon)
				assert.Equal(t, tt.lat, loc.Lat)
			} else {
				assert.Nil(t, loc)
			}
		})
	}
}

func TestBuildStateMap(t *testing.T) {
	table := YearTable{
		Year: NewYear(2013),
		Table: Table{Records: []AccidentRecord{
			{State: 1, Month: 1, Location: NewLocation(-86.0, 32.0)},
			{State: 1, Month: 2, Location: NewLocation(-88.0, 34.5)},
			{State: 1, Month: 3, Location: NewLocation(999.9999, 99.9999)},
			{State: 1, Month: 3, Location: NewLocation(-87.0, 99.9999)},
			{State: 6, Month: 4, Location: NewLocation(-120.0, 36.0)},
		}},
	}

	m, err := BuildStateMap(table, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, m.State)
	assert.Equal(t, NewYear(2013), m.Year)
	assert.Equal(t, []Coordinate{{Lon: -86.0, Lat: 32.0}, {Lon: -88.0, Lat: 34.5}}, m.Points)
	assert.Equal(t, 2, m.Skipped)
	assert.Equal(t, Bounds{MinLon: -88.0, MaxLon: -86.0, MinLat: 32.0, MaxLat: 34.5}, m.Bounds)
	assert.False(t, m.Empty())
}

func TestBuildStateMap_InvalidState(t *testing.T) {
	table := YearTable{Year: NewYear(2013), Table: Table{Records: []AccidentRecord{{State: 1, Month: 1}}}}

	_, err := BuildStateMap(table, 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Contains(t, err.Error(), "99")
}

func TestBuildStateMap_NoLocatedAccidents(t *testing.T) {
	table := YearTable{Year: NewYear(2013), Table: Table{Records: []AccidentRecord{
		{State: 2, Month: 1},
		{State: 2, Month: 7, Location: NewLocation(999.9999, 61.0)},
	}}}

	m, err := BuildStateMap(table, 2)
	require.NoError(t, err)
	assert.True(t, m.Empty())
	assert.Equal(t, 2, m.Skipped)
	assert.Equal(t, Bounds{}, m.Bounds)
}
