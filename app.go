package main

import (
	"context"
	"log"
	"os"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/wytr/opencarve/pkg/gcode"
	"github.com/wytr/opencarve/pkg/optimize"
	"github.com/wytr/opencarve/pkg/preview"
	"github.com/wytr/opencarve/pkg/raster"
	"github.com/wytr/opencarve/pkg/simulate"
	"github.com/wytr/opencarve/pkg/toolpath"
)

// App is the Wails backend. It exposes methods to the frontend via
// bindings and holds the currently loaded sample grid.
type App struct {
	ctx  context.Context
	grid *raster.Grid
}

// NewApp creates a new App with no image loaded.
func NewApp() *App {
	return &App{}
}

// startup is called by Wails on app startup. The context is saved so
// runtime dialogs and the clipboard can be used later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// ImageInfo describes the loaded sample grid for the frontend.
type ImageInfo struct {
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
	Error string `json:"error,omitempty"`
}

// GenerateOptions bundles generation parameters with the post steps
// the frontend checkboxes control.
type GenerateOptions struct {
	Params   toolpath.Params `json:"params"`
	Optimize bool            `json:"optimize"`
	Estimate bool            `json:"estimate"`
}

// GenerateResult is the full result returned to the frontend: the
// command text, the interpreted toolpath as viewer line sets, any
// interpreter warnings and an optional time estimate in minutes.
type GenerateResult struct {
	Gcode    string             `json:"gcode"`
	Lines    *preview.LineSets  `json:"lines"`
	Warnings []gcode.Diagnostic `json:"warnings"`
	Minutes  float64            `json:"minutes"`
	Errors   []string           `json:"errors"`
}

// ParseResult is returned by Parse for externally supplied G-code.
type ParseResult struct {
	Lines    *preview.LineSets  `json:"lines"`
	Warnings []gcode.Diagnostic `json:"warnings"`
	Segments int                `json:"segments"`
	Layers   int                `json:"layers"`
	Errors   []string           `json:"errors"`
}

// LoadImage reads an image file into the working sample grid.
func (a *App) LoadImage(path string) ImageInfo {
	g, err := raster.Load(path)
	if err != nil {
		log.Printf("LoadImage: %v", err)
		return ImageInfo{Error: err.Error()}
	}
	a.grid = g
	return ImageInfo{Rows: g.Rows(), Cols: g.Cols()}
}

// OpenImageDialog shows a file-open dialog and loads the chosen image.
func (a *App) OpenImageDialog() ImageInfo {
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Open Grayscale Image",
		Filters: []runtime.FileFilter{
			{DisplayName: "Images", Pattern: "*.png;*.tif;*.bmp;*.jpg;*.jpeg"},
		},
	})
	if err != nil {
		return ImageInfo{Error: err.Error()}
	}
	if path == "" {
		return ImageInfo{Error: "no file selected"}
	}
	return a.LoadImage(path)
}

// InvertImage inverts the loaded grid so raised and carved areas swap.
func (a *App) InvertImage() ImageInfo {
	if a.grid == nil {
		return ImageInfo{Error: "no image loaded"}
	}
	a.grid = a.grid.Invert()
	return ImageInfo{Rows: a.grid.Rows(), Cols: a.grid.Cols()}
}

// Generate runs the full pipeline on the loaded grid: generate,
// optionally compact, interpret for the viewer, optionally estimate.
// This is the same path the CLI takes, but bound to the frontend.
func (a *App) Generate(opts GenerateOptions) GenerateResult {
	result := GenerateResult{
		Warnings: []gcode.Diagnostic{},
		Errors:   []string{},
	}

	if a.grid == nil {
		result.Errors = append(result.Errors, "no image loaded")
		return result
	}

	text, err := toolpath.Generate(opts.Params, a.grid)
	if err != nil {
		log.Printf("Generate: %v", err)
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if opts.Optimize {
		text = optimize.Merge(text)
	}
	result.Gcode = text

	model, err := gcode.Parse(text)
	if err != nil {
		// Self-generated text should always interpret cleanly.
		log.Printf("Generate: parse: %v", err)
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Lines = preview.BuildLineSets(model)
	result.Warnings = append(result.Warnings, model.Warnings...)

	if opts.Estimate {
		result.Minutes = simulate.EstimateMinutes(text, opts.Params.FeedRateXY, 0)
	}
	return result
}

// Parse interprets externally supplied G-code for display.
func (a *App) Parse(text string) ParseResult {
	result := ParseResult{
		Warnings: []gcode.Diagnostic{},
		Errors:   []string{},
	}

	model, err := gcode.Parse(text)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Lines = preview.BuildLineSets(model)
	result.Warnings = append(result.Warnings, model.Warnings...)
	result.Segments = len(model.Segments)
	result.Layers = len(model.Layers)
	return result
}

// ReliefPreview tessellates the carved stock for the 3D view.
func (a *App) ReliefPreview(params toolpath.Params) preview.Mesh {
	if a.grid == nil {
		return preview.Mesh{}
	}
	mesh, err := preview.ReliefMesh(params, a.grid, 0)
	if err != nil {
		log.Printf("ReliefPreview: %v", err)
		return preview.Mesh{}
	}
	return *mesh
}

// EstimateTime returns the estimated machining time in minutes.
func (a *App) EstimateTime(text string) float64 {
	return simulate.EstimateMinutes(text, 0, 0)
}

// SaveGcode shows a save dialog and writes the command text to the
// chosen file. Returns an empty string on success, else the error.
func (a *App) SaveGcode(text string) string {
	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Save G-code",
		DefaultFilename: "output.gcode",
		Filters: []runtime.FileFilter{
			{DisplayName: "G-code", Pattern: "*.gcode;*.nc;*.ngc"},
		},
	})
	if err != nil {
		return err.Error()
	}
	if path == "" {
		return "no file selected"
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		log.Printf("SaveGcode: %v", err)
		return err.Error()
	}
	return ""
}

// CopyGcode places the command text on the system clipboard.
func (a *App) CopyGcode(text string) string {
	if err := runtime.ClipboardSetText(a.ctx, text); err != nil {
		return err.Error()
	}
	return ""
}
