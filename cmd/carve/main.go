// Command carve converts a grayscale image into a G-code toolpath
// without the desktop UI. It runs the same pipeline as the app's
// Generate binding: generate, optionally compact, optionally estimate.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/wytr/opencarve/pkg/optimize"
	"github.com/wytr/opencarve/pkg/raster"
	"github.com/wytr/opencarve/pkg/simulate"
	"github.com/wytr/opencarve/pkg/toolpath"
)

var (
	flagIn  = flag.String("in", "", "input grayscale image (png, jpg, bmp, tif)")
	flagOut = flag.String("out", "", "output G-code file (default: stdout)")

	flagDepth    = flag.Float64("depth", 2.0, "maximum cutting depth in mm")
	flagSafeZ    = flag.Float64("safez", 2.0, "safe retract height in mm")
	flagFeedXY   = flag.Float64("feedxy", 300, "XY feed rate in mm/min")
	flagFeedZ    = flag.Float64("feedz", 100, "Z feed rate in mm/min")
	flagSpindle  = flag.Float64("spindle", 20000, "spindle speed in RPM")
	flagStepDown = flag.Float64("stepdown", 3.0, "max depth per pass in mm")
	flagMargin   = flag.Float64("margin", 0, "margin inset in mm")
	flagWidth    = flag.Float64("width", 100, "target width in mm")
	flagHeight   = flag.Float64("height", 100, "target height in mm")
	flagSubdiv   = flag.Int("subdiv", 0, "interpolated points between pixels")

	flagInvert   = flag.Bool("invert", false, "invert image intensities")
	flagOptimize = flag.Bool("optimize", false, "merge colinear moves")
	flagEstimate = flag.Bool("estimate", false, "print estimated machining time")
)

func run() error {
	if *flagIn == "" {
		return fmt.Errorf("input image must be specified with -in")
	}

	grid, err := raster.Load(*flagIn)
	if err != nil {
		return err
	}
	if *flagInvert {
		grid = grid.Invert()
	}

	params := toolpath.Params{
		MaxDepth:     *flagDepth,
		SafeZ:        *flagSafeZ,
		FeedRateXY:   *flagFeedXY,
		FeedRateZ:    *flagFeedZ,
		SpindleSpeed: *flagSpindle,
		StepDown:     *flagStepDown,
		Margin:       *flagMargin,
		Width:        *flagWidth,
		Height:       *flagHeight,
		Subdivisions: *flagSubdiv,
	}

	text, err := toolpath.Generate(params, grid)
	if err != nil {
		return err
	}
	if *flagOptimize {
		text = optimize.Merge(text)
	}

	if *flagOut == "" {
		fmt.Println(text)
	} else if err := os.WriteFile(*flagOut, []byte(text+"\n"), 0o644); err != nil {
		return err
	}

	if *flagEstimate {
		minutes := simulate.EstimateMinutes(text, params.FeedRateXY, 0)
		fmt.Fprintf(os.Stderr, "estimated machining time: %.2f minutes\n", minutes)
	}
	return nil
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "carve: %v\n", err)
		os.Exit(1)
	}
}
