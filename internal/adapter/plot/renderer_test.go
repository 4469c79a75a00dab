package plot

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/willojs/FARS/internal/domain"
)

func alabamaMap() domain.StateMap {
	return domain.StateMap{
		State: 1,
		Year:  domain.NewYear(2013),
		Bounds: domain.Bounds{
			MinLon: -88.1, MaxLon: -85.2,
			MinLat: 30.6, MaxLat: 34.9,
		},
		Points: []domain.Coordinate{
			{Lon: -88.1, Lat: 30.6},
			{Lon: -86.8, Lat: 33.5},
			{Lon: -85.2, Lat: 34.9},
		},
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "FARS accidents: state 1, 2013", Title(alabamaMap()))
}

func TestRender_PNGToWriter(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewWriterRenderer(&buf, "PNG", 3*vg.Inch, 2*vg.Inch)
	require.NoError(t, err)

	require.NoError(t, r.Render(context.Background(), alabamaMap()))

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Positive(t, cfg.Width)
	assert.Greater(t, cfg.Width, cfg.Height)
}

func TestRender_SVGContainsTitle(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewWriterRenderer(&buf, "svg", 0, 0)
	require.NoError(t, err)

	require.NoError(t, r.Render(context.Background(), alabamaMap()))
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "state 1")
}

func TestRender_SinglePoint(t *testing.T) {
	m := domain.StateMap{
		State:  6,
		Year:   domain.NewYear(2014),
		Bounds: domain.Bounds{MinLon: -118.2, MaxLon: -118.2, MinLat: 34.0, MaxLat: 34.0},
		Points: []domain.Coordinate{{Lon: -118.2, Lat: 34.0}},
	}
	var buf bytes.Buffer
	r, err := NewWriterRenderer(&buf, "png", 0, 0)
	require.NoError(t, err)

	require.NoError(t, r.Render(context.Background(), m))
	assert.NotZero(t, buf.Len())
}

func TestRender_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state1.pdf")
	r, err := NewFileRenderer(path, 0, 0)
	require.NoError(t, err)

	require.NoError(t, r.Render(context.Background(), alabamaMap()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRender_EmptyMap(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewWriterRenderer(&buf, "png", 0, 0)
	require.NoError(t, err)

	err = r.Render(context.Background(), domain.StateMap{State: 1, Year: domain.NewYear(2013)})
	require.ErrorIs(t, err, domain.ErrNoData)
	assert.Zero(t, buf.Len())
}

func TestRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	r, err := NewWriterRenderer(&buf, "png", 0, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, r.Render(ctx, alabamaMap()), context.Canceled)
}

func TestNewRenderer_UnsupportedFormat(t *testing.T) {
	_, err := NewWriterRenderer(&bytes.Buffer{}, "gif", 0, 0)
	require.Error(t, err)

	_, err = NewFileRenderer("map.bmp", 0, 0)
	require.Error(t, err)

	_, err = NewFileRenderer("map", 0, 0)
	require.Error(t, err)
}

func TestContentType(t *testing.T) {
	ct, ok := ContentType("PNG")
	assert.True(t, ok)
	assert.Equal(t, "image/png", ct)

	_, ok = ContentType("gif")
	assert.False(t, ok)
}
