// Package plot draws state accident maps with gonum/plot.
package plot

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/willojs/FARS/internal/domain"
)

// DefaultSize is used when a renderer is built with a zero width or height.
const DefaultSize = 6 * vg.Inch

// boundsPad widens a degenerate axis so a single accident still gets a frame.
const boundsPad = 0.05

var formats = map[string]string{
	"png":  "image/png",
	"svg":  "image/svg+xml",
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"eps":  "application/postscript",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
}

// ContentType returns the MIME type for format and whether it is supported.
func ContentType(format string) (string, bool) {
	ct, ok := formats[strings.ToLower(format)]
	return ct, ok
}

// Renderer draws a scatter of accident locations, longitude on x and
// latitude on y, either into a writer or into a file.
type Renderer struct {
	w      io.Writer
	path   string
	format string
	width  vg.Length
	height vg.Length
}

// NewWriterRenderer renders into w using the named image format.
func NewWriterRenderer(w io.Writer, format string, width, height vg.Length) (*Renderer, error) {
	format = strings.ToLower(format)
	if _, ok := formats[format]; !ok {
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	return &Renderer{w: w, format: format, width: width, height: height}, nil
}

// NewFileRenderer renders into path; the format follows its extension.
func NewFileRenderer(path string, width, height vg.Length) (*Renderer, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if _, ok := formats[format]; !ok {
		return nil, fmt.Errorf("unsupported image format for %s", path)
	}
	return &Renderer{path: path, format: format, width: width, height: height}, nil
}

// Title is the caption drawn above a state map.
func Title(m domain.StateMap) string {
	return fmt.Sprintf("FARS accidents: state %d, %s", m.State, m.Year)
}

// Render draws m. It never draws an empty map.
func (r *Renderer) Render(ctx context.Context, m domain.StateMap) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.Empty() {
		return fmt.Errorf("render state %d: %w", m.State, domain.ErrNoData)
	}

	p, err := newPlot(m)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(r.size(r.width), r.size(r.height), r.format)
	if err != nil {
		return fmt.Errorf("render state %d: %w", m.State, err)
	}

	if r.w != nil {
		_, err = wt.WriteTo(r.w)
		return err
	}
	return writeFile(r.path, wt)
}

func (r *Renderer) size(l vg.Length) vg.Length {
	if l <= 0 {
		return DefaultSize
	}
	return l
}

func newPlot(m domain.StateMap) (*gplot.Plot, error) {
	p := gplot.New()
	p.Title.Text = Title(m)
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	xys := make(plotter.XYs, len(m.Points))
	for i, pt := range m.Points {
		xys[i].X = pt.Lon
		xys[i].Y = pt.Lat
	}

	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("scatter: %w", err)
	}
	s.GlyphStyle.Color = color.RGBA{R: 178, G: 24, B: 43, A: 255}
	s.GlyphStyle.Radius = vg.Points(2)
	p.Add(s)

	p.X.Min, p.X.Max = pad(m.Bounds.MinLon, m.Bounds.MaxLon)
	p.Y.Min, p.Y.Max = pad(m.Bounds.MinLat, m.Bounds.MaxLat)
	return p, nil
}

func pad(lo, hi float64) (float64, float64) {
	if lo == hi {
		return lo - boundsPad, hi + boundsPad
	}
	return lo, hi
}

func writeFile(path string, wt io.WriterTo) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = wt.WriteTo(f)
	return err
}
