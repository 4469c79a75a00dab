package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	plotadapter "github.com/willojs/FARS/internal/adapter/plot"
	"github.com/willojs/FARS/internal/domain"
	"github.com/willojs/FARS/internal/pipeline"
)

// trackingRenderer records whether the pipeline asked for a drawing.
type trackingRenderer struct {
	pipeline.Renderer
	drawn int
}

func (t *trackingRenderer) Render(ctx context.Context, m domain.StateMap) error {
	if err := t.Renderer.Render(ctx, m); err != nil {
		return err
	}
	t.drawn = len(m.Points)
	return nil
}

func newMapCmd(a *app) *cobra.Command {
	var (
		state int
		year  string
		out   string
	)

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Draw the accidents of one state in one year",
		Long: `Draw a scatter of accident locations, longitude against latitude, for one
state and year. The image format follows the extension of --out. Accidents
without a usable location are left out; when none remain nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			y := domain.ParseYear(year)
			if !y.Valid() {
				return fmt.Errorf("invalid --year %q", year)
			}
			if out == "" {
				out = fmt.Sprintf("state%d_%s.png", state, y)
			}

			r, err := plotadapter.NewFileRenderer(out, a.cfg.PlotWidth, a.cfg.PlotHeight)
			if err != nil {
				return err
			}
			tr := &trackingRenderer{Renderer: r}

			if err := a.service().MapState(cmd.Context(), state, y, tr); err != nil {
				return err
			}
			if tr.drawn > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d accidents)\n", out, tr.drawn)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&state, "state", 0, "FARS state number")
	f.StringVar(&year, "year", "", "year to draw")
	f.StringVarP(&out, "out", "o", "", "output image (png, svg, pdf, jpg, eps, tif); default state<S>_<YEAR>.png")
	f.String("width", "6in", "image width (in, cm, mm or pt)")
	f.String("height", "6in", "image height (in, cm, mm or pt)")
	_ = cmd.MarkFlagRequired("state")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}
