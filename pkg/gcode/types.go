// Package gcode interprets a G-code command stream into a structured
// motion model: ordered segments, layers, aggregate metrics and a
// bounding box. The dialect is millimeter-only; inch programs abort.
package gcode

import "fmt"

// Coords is a full coordinate state snapshot. X, Y and Z are machine
// positions, F is the active feed rate and E the material-flow axis.
type Coords struct {
	X, Y, Z, F, E float64
}

// MoveKind distinguishes rapid positioning moves from controlled moves.
type MoveKind int

const (
	MoveRapid      MoveKind = iota // G0
	MoveControlled                 // G1
)

func (k MoveKind) String() string {
	if k == MoveRapid {
		return "G0"
	}
	return "G1"
}

// Style classifies what a segment does, derived after the whole stream
// has been consumed.
type Style int

const (
	StyleFly     Style = iota // positioning, no material action
	StyleExtrude              // XY motion with increasing flow
	StyleRetract              // stationary XY, flow pulled back
	StyleRestore              // stationary XY, flow pushed forward
)

func (s Style) String() string {
	switch s {
	case StyleExtrude:
		return "extrude"
	case StyleRetract:
		return "retract"
	case StyleRestore:
		return "restore"
	default:
		return "fly"
	}
}

// Segment is one move in the interpreted stream. Coords is the absolute
// position at the segment's end. Style, Layer, Distance and Extrudate
// are filled in by post-processing.
type Segment struct {
	Kind      MoveKind
	Coords    Coords
	Line      int    // 1-based source line number
	Text      string // raw source line
	Style     Style
	Layer     int
	Distance  float64
	Extrudate float64
}

// Layer is a contiguous run of segments sharing a layer index.
// Start is the coordinate state just before the layer's first segment.
type Layer struct {
	Z         float64
	Start     Coords
	Segments  []*Segment
	Distance  float64
	Extrudate float64
}

// BBox is an axis-aligned bounding box over every visited coordinate.
type BBox struct {
	XMin, XMax float64
	YMin, YMax float64
	ZMin, ZMax float64
}

func newBBox(c Coords) *BBox {
	return &BBox{
		XMin: c.X, XMax: c.X,
		YMin: c.Y, YMax: c.Y,
		ZMin: c.Z, ZMax: c.Z,
	}
}

// Extend grows the box to include the given coordinate.
func (b *BBox) Extend(c Coords) {
	b.XMin = min(b.XMin, c.X)
	b.XMax = max(b.XMax, c.X)
	b.YMin = min(b.YMin, c.Y)
	b.YMax = max(b.YMax, c.Y)
	b.ZMin = min(b.ZMin, c.Z)
	b.ZMax = max(b.ZMax, c.Z)
}

// Dx returns the box's X extent.
func (b *BBox) Dx() float64 { return b.XMax - b.XMin }

// Dy returns the box's Y extent.
func (b *BBox) Dy() float64 { return b.YMax - b.YMin }

// Dz returns the box's Z extent.
func (b *BBox) Dz() float64 { return b.ZMax - b.ZMin }

// Center returns the box's center point.
func (b *BBox) Center() (x, y, z float64) {
	return (b.XMax + b.XMin) / 2, (b.YMax + b.YMin) / 2, (b.ZMax + b.ZMin) / 2
}

// Diagnostic is a recoverable issue found while interpreting a stream.
// Warnings never abort interpretation; they are collected on the model.
type Diagnostic struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
	Text    string `json:"text"` // raw source line
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s (text %q)", d.Line, d.Message, d.Text)
}

// FatalError aborts interpretation at the offending line. No model is
// returned alongside it.
type FatalError struct {
	Line   int
	Text   string
	Reason string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("line %d: %s (text %q)", e.Line, e.Reason, e.Text)
}
