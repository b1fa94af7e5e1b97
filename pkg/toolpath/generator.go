// Package toolpath converts a grayscale sample grid into a G-code
// toolpath for a 3-axis engraving machine. Darker pixels cut deeper,
// up to a configured maximum, split over multiple step-down passes.
package toolpath

import (
	"fmt"
	"math"
	"strings"

	"github.com/wytr/opencarve/pkg/raster"
)

// Params holds the generation parameters for one run.
// All values are in millimeters and mm/min unless noted.
type Params struct {
	MaxDepth     float64 // deepest cut for a black pixel
	SafeZ        float64 // retract height between rows
	FeedRateXY   float64 // controlled-move feed rate
	FeedRateZ    float64 // plunge/retract feed rate
	SpindleSpeed float64 // RPM, emitted integer-rounded
	StepDown     float64 // max additional depth per pass
	Margin       float64 // inset from every edge
	Width        float64 // target width of the carved area
	Height       float64 // target height of the carved area
	Subdivisions int     // extra interpolated points between pixels
}

// DefaultParams returns the parameter defaults used by the UI controls.
func DefaultParams() Params {
	return Params{
		MaxDepth:     2.0,
		SafeZ:        2.0,
		FeedRateXY:   300,
		FeedRateZ:    100,
		SpindleSpeed: 20000,
		StepDown:     3.0,
		Width:        100.0,
		Height:       100.0,
	}
}

// Passes returns the number of step-down passes for the parameters.
func (p Params) Passes() int {
	if p.StepDown <= 0 {
		return 1
	}
	return int(math.Ceil(p.MaxDepth / p.StepDown))
}

// PassDepth returns the depth ceiling for pass number pass (1-based).
func (p Params) PassDepth(pass int) float64 {
	return math.Min(float64(pass)*p.StepDown, p.MaxDepth)
}

// Generate converts a sample grid into G-code text. It is a pure
// function of its inputs. A nil or empty grid is rejected before any
// scanning begins.
func Generate(p Params, grid *raster.Grid) (string, error) {
	if grid == nil || grid.Rows() < 1 || grid.Cols() < 1 {
		return "", fmt.Errorf("toolpath: grid must have at least one row and one column")
	}

	rows, cols := grid.Rows(), grid.Cols()
	totalPasses := p.Passes()

	var b strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("G90 ; Use absolute coordinates")
	line("G21 ; Units in mm")
	line("G54 ; Work coordinate system")
	line("M3 S%d ; Spindle ON", int(math.Round(p.SpindleSpeed)))
	line("G4 P5 ; Dwell for 5 seconds")
	line("G0 Z%g F%g", p.SafeZ, p.FeedRateZ)
	line("; Begin raster scan")

	spanX := p.Width - 2*p.Margin
	spanY := p.Height - 2*p.Margin

	for pass := 1; pass <= totalPasses; pass++ {
		passDepth := p.PassDepth(pass)
		line("; --- Pass %d/%d, Depth = %g mm ---", pass, totalPasses, passDepth)

		for y := 0; y < rows; y++ {
			// Top row maps to the far Y edge, bottom row to the near
			// edge. A single row collapses to a zero-span mapping.
			fy := 0.0
			if rows > 1 {
				fy = float64(rows-1-y) / float64(rows-1)
			}
			yMM := p.Margin + fy*spanY

			line("G0 X%.3f Y%.3f F%g", p.Margin, yMM, p.FeedRateXY)

			xs := make([]float64, cols)
			zs := make([]float64, cols)
			for x := 0; x < cols; x++ {
				fx := 0.0
				if cols > 1 {
					fx = float64(x) / float64(cols-1)
				}
				xs[x] = p.Margin + fx*spanX
				depth := float64(255-grid.At(y, x)) / 255.0 * p.MaxDepth
				zs[x] = math.Min(depth, passDepth)
			}

			for i := 0; i < cols-1; i++ {
				for sub := 0; sub <= p.Subdivisions; sub++ {
					t := float64(sub) / float64(p.Subdivisions+1)
					xt := xs[i] + t*(xs[i+1]-xs[i])
					zt := zs[i] + t*(zs[i+1]-zs[i])
					line("G1 X%.3f Y%.3f Z-%.3f F%g", xt, yMM, zt, p.FeedRateXY)
				}
			}
			// Always reach the row's final target exactly, even when
			// subdivision produced points short of it.
			line("G1 X%.3f Y%.3f Z-%.3f F%g", xs[cols-1], yMM, zs[cols-1], p.FeedRateXY)
			line("G0 Z%g F%g", p.SafeZ, p.FeedRateZ)
		}
	}

	line("M5 ; Spindle OFF")
	fmt.Fprintf(&b, "G0 X0 Y0 Z%g", p.SafeZ)
	return b.String(), nil
}
