package diagnostics

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoReports is returned by RenderWallTime when given an empty history.
var ErrNoReports = errors.New("no tick reports to render")

// RenderWallTime plots total per-tick wall time across a run's history to an SVG file at path,
// an offline debugging aid for the planning statistics output (§6 Outputs, SPEC_FULL supplemented
// feature "Planning statistics as a first-class output").
func RenderWallTime(history []TickReport, path string) error {
	if len(history) == 0 {
		return ErrNoReports
	}

	p := plot.New()
	p.Title.Text = "QP planning wall time per tick"
	p.X.Label.Text = "tick"
	p.Y.Label.Text = "milliseconds"

	points := make(plotter.XYs, len(history))
	for i, r := range history {
		points[i].X = float64(i)
		points[i].Y = float64(r.Timings.Total().Microseconds()) / 1000.0
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return errors.Wrap(err, "building wall-time line plot")
	}
	p.Add(line)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "saving wall-time render")
	}
	return nil
}
