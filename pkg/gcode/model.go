package gcode

import "math"

// offsets holds the datum offset per offsettable axis. The feed rate
// has no offset; absolute position = offset + relative for X/Y/Z/E.
type offsets struct {
	X, Y, Z, E float64
}

// Model is the structured result of interpreting a command stream.
// Segments are in source order; Layers, Distance, Extrudate and BBox
// are derived by post-processing after the stream is fully consumed.
type Model struct {
	Segments  []*Segment
	Layers    []*Layer
	Distance  float64
	Extrudate float64
	BBox      *BBox
	Warnings  []Diagnostic

	relative   Coords
	offset     offsets
	isRelative bool
}

// move applies a G0/G1 to the coordinate state machine and records the
// resulting segment. Axes absent from the command keep their previous
// relative value; the feed rate persists the same way.
func (m *Model) move(kind MoveKind, args axisArgs, lineNb int, text string) {
	next := m.relative
	apply := func(cur *float64, val float64) {
		if m.isRelative {
			*cur += val
		} else {
			*cur = val
		}
	}
	if args.HasX {
		apply(&next.X, args.X)
	}
	if args.HasY {
		apply(&next.Y, args.Y)
	}
	if args.HasZ {
		apply(&next.Z, args.Z)
	}
	if args.HasF {
		apply(&next.F, args.F)
	}
	if args.HasE {
		apply(&next.E, args.E)
	}

	abs := Coords{
		X: m.offset.X + next.X,
		Y: m.offset.Y + next.Y,
		Z: m.offset.Z + next.Z,
		F: next.F,
		E: m.offset.E + next.E,
	}
	m.Segments = append(m.Segments, &Segment{
		Kind:   kind,
		Coords: abs,
		Line:   lineNb,
		Text:   text,
	})
	m.relative = next
}

// datumReset handles G92. With no axis arguments every offsettable axis
// is renumbered to zero. With arguments, the offset absorbs the
// difference so the physical absolute position is unchanged while the
// relative coordinate continues from the given value.
func (m *Model) datumReset(args axisArgs) {
	if args.empty() {
		args = axisArgs{
			X: 0, Y: 0, Z: 0, E: 0,
			HasX: true, HasY: true, HasZ: true, HasE: true,
		}
	}
	reset := func(off, rel *float64, val float64) {
		*off += *rel - val
		*rel = val
	}
	if args.HasX {
		reset(&m.offset.X, &m.relative.X, args.X)
	}
	if args.HasY {
		reset(&m.offset.Y, &m.relative.Y, args.Y)
	}
	if args.HasZ {
		reset(&m.offset.Z, &m.relative.Z, args.Z)
	}
	if args.HasE {
		reset(&m.offset.E, &m.relative.E, args.E)
	}
}

func (m *Model) setRelative(rel bool) {
	m.isRelative = rel
}

func (m *Model) warn(lineNb int, msg, text string) {
	m.Warnings = append(m.Warnings, Diagnostic{Line: lineNb, Message: msg, Text: text})
}

// postProcess derives styles, layers and metrics, in that order. Each
// stage consumes the previous stage's output over the full stream.
func (m *Model) postProcess() {
	m.classifySegments()
	m.splitLayers()
	m.calcMetrics()
}

// classifySegments walks the segments tracking the previous absolute
// coordinates, tagging each segment's style and layer index. A new
// layer begins when flow increases at a Z different from the layer's.
func (m *Model) classifySegments() {
	var prev Coords
	layerIdx := 0
	layerZ := 0.0

	for _, seg := range m.Segments {
		style := StyleFly
		if seg.Coords.X == prev.X && seg.Coords.Y == prev.Y && seg.Coords.E != prev.E {
			if seg.Coords.E < prev.E {
				style = StyleRetract
			} else {
				style = StyleRestore
			}
		}
		if (seg.Coords.X != prev.X || seg.Coords.Y != prev.Y) && seg.Coords.E > prev.E {
			style = StyleExtrude
		}
		if seg.Coords.E > prev.E && seg.Coords.Z != layerZ {
			layerZ = seg.Coords.Z
			layerIdx++
		}

		seg.Style = style
		seg.Layer = layerIdx
		prev = seg.Coords
	}
}

// splitLayers groups consecutive segments sharing a layer index. Each
// layer snapshots the coordinate state before its first segment.
func (m *Model) splitLayers() {
	var prev Coords
	m.Layers = nil
	currentIdx := -1
	var layer *Layer

	for _, seg := range m.Segments {
		if currentIdx != seg.Layer {
			layer = &Layer{Z: prev.Z, Start: prev}
			m.Layers = append(m.Layers, layer)
			currentIdx = seg.Layer
		}
		layer.Segments = append(layer.Segments, seg)
		prev = seg.Coords
	}
}

// calcMetrics accumulates per-segment and per-layer 3D distance and
// flow deltas, and extends the bounding box over every visited
// coordinate including the pre-move start state of each layer.
func (m *Model) calcMetrics() {
	m.Distance = 0
	m.Extrudate = 0
	m.BBox = nil

	extend := func(c Coords) {
		if m.BBox == nil {
			m.BBox = newBBox(c)
			return
		}
		m.BBox.Extend(c)
	}

	for _, layer := range m.Layers {
		cur := layer.Start
		layer.Distance = 0
		layer.Extrudate = 0
		extend(cur)

		for _, seg := range layer.Segments {
			dx := seg.Coords.X - cur.X
			dy := seg.Coords.Y - cur.Y
			dz := seg.Coords.Z - cur.Z
			seg.Distance = math.Sqrt(dx*dx + dy*dy + dz*dz)
			seg.Extrudate = seg.Coords.E - cur.E

			layer.Distance += seg.Distance
			layer.Extrudate += seg.Extrudate

			cur = seg.Coords
			extend(cur)
		}

		m.Distance += layer.Distance
		m.Extrudate += layer.Extrudate
	}
}
