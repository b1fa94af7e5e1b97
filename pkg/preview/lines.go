// Package preview converts interpreted motion models and sample grids
// into GPU-ready geometry for the frontend viewer: colored line sets
// for the toolpath and a triangle mesh of the carved stock.
package preview

import (
	"github.com/wytr/opencarve/pkg/gcode"
)

// Line colors, RGB in [0,1]. Rapids draw yellow, feed moves blue.
var (
	rapidColor = [3]float32{1, 1, 0}
	feedColor  = [3]float32{0, 0, 1}
)

// LineSet is a flat vertex buffer of line segments: 6 floats per vertex
// (x, y, z, r, g, b), two vertices per segment.
type LineSet struct {
	Vertices []float32 `json:"vertices"`
}

// SegmentCount returns the number of line segments in the set.
func (ls *LineSet) SegmentCount() int {
	return len(ls.Vertices) / 12
}

// LineSets holds the toolpath split into rapid and feed line sets so
// the viewer can toggle rapids independently.
type LineSets struct {
	Rapid LineSet `json:"rapid"`
	Feed  LineSet `json:"feed"`
}

// BuildLineSets converts the model's segment stream into rapid and feed
// vertex buffers. Each segment contributes a line from the previous
// endpoint (origin for the first segment) to its own endpoint.
func BuildLineSets(m *gcode.Model) *LineSets {
	ls := &LineSets{
		Rapid: LineSet{Vertices: []float32{}},
		Feed:  LineSet{Vertices: []float32{}},
	}
	var prev gcode.Coords

	for _, seg := range m.Segments {
		target := &ls.Feed
		color := feedColor
		if seg.Kind == gcode.MoveRapid {
			target = &ls.Rapid
			color = rapidColor
		}
		target.Vertices = append(target.Vertices,
			float32(prev.X), float32(prev.Y), float32(prev.Z),
			color[0], color[1], color[2],
			float32(seg.Coords.X), float32(seg.Coords.Y), float32(seg.Coords.Z),
			color[0], color[1], color[2],
		)
		prev = seg.Coords
	}
	return ls
}
