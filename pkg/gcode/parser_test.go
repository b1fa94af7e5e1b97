package gcode

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, text string) *Model {
	t.Helper()
	m, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return m
}

func TestParseEmptyStream(t *testing.T) {
	m := mustParse(t, "")
	if len(m.Segments) != 0 {
		t.Errorf("expected 0 segments, got %d", len(m.Segments))
	}
	if len(m.Layers) != 0 {
		t.Errorf("expected 0 layers, got %d", len(m.Layers))
	}
	if m.BBox != nil {
		t.Errorf("expected nil bbox for empty stream, got %+v", m.BBox)
	}
}

func TestMoveRecordsAbsolutePosition(t *testing.T) {
	m := mustParse(t, "G1 X10 Y20 Z3 F150")
	if len(m.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(m.Segments))
	}
	seg := m.Segments[0]
	want := Coords{X: 10, Y: 20, Z: 3, F: 150}
	if seg.Coords != want {
		t.Errorf("coords = %+v, want %+v", seg.Coords, want)
	}
	if seg.Kind != MoveControlled {
		t.Errorf("kind = %v, want G1", seg.Kind)
	}
	if seg.Line != 1 {
		t.Errorf("line = %d, want 1", seg.Line)
	}
}

func TestAbsentAxesPersist(t *testing.T) {
	m := mustParse(t, "G1 X10 Y20 F100\nG1 X30")
	seg := m.Segments[1]
	if seg.Coords.Y != 20 {
		t.Errorf("Y should persist: got %g, want 20", seg.Coords.Y)
	}
	if seg.Coords.F != 100 {
		t.Errorf("F should persist: got %g, want 100", seg.Coords.F)
	}
}

func TestRelativeMode(t *testing.T) {
	m := mustParse(t, "G1 X10\nG91\nG1 X5\nG1 X5\nG90\nG1 X10")
	xs := []float64{10, 15, 20, 10}
	if len(m.Segments) != 4 {
		t.Fatalf("expected 4 segments, got %d", len(m.Segments))
	}
	for i, want := range xs {
		if got := m.Segments[i].Coords.X; got != want {
			t.Errorf("segment %d: X = %g, want %g", i, got, want)
		}
	}
}

// After G92 X0 at absolute position P, a move to X5 must land at
// absolute P+5: the datum reset renumbers without moving.
func TestDatumResetPreservesAbsolutePosition(t *testing.T) {
	m := mustParse(t, "G1 X10\nG92 X0\nG1 X5")
	last := m.Segments[len(m.Segments)-1]
	if last.Coords.X != 15 {
		t.Errorf("absolute X after reset+move = %g, want 15", last.Coords.X)
	}
}

func TestDatumResetNoArgsZeroesAllAxes(t *testing.T) {
	m := mustParse(t, "G1 X10 Y20 Z3 E4\nG92\nG1 X1 Y1 Z1 E1")
	last := m.Segments[len(m.Segments)-1]
	want := Coords{X: 11, Y: 21, Z: 4, E: 5}
	if last.Coords != want {
		t.Errorf("coords after full reset = %+v, want %+v", last.Coords, want)
	}
}

func TestDatumResetWithValue(t *testing.T) {
	// G92 E2 renumbers E to 2 at the current physical position.
	m := mustParse(t, "G1 E10\nG92 E2\nG1 E3")
	last := m.Segments[len(m.Segments)-1]
	// Physical flow advanced by 1 from the reset point: 10 + 1 = 11.
	if last.Coords.E != 11 {
		t.Errorf("absolute E = %g, want 11", last.Coords.E)
	}
}

func TestCommentStripping(t *testing.T) {
	m := mustParse(t, "(setup) G1 X5 (inline) Y6 ; trailing\n; full line comment\nG1 X7")
	if len(m.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(m.Segments))
	}
	if m.Segments[0].Coords.X != 5 || m.Segments[0].Coords.Y != 6 {
		t.Errorf("inline comments not stripped: %+v", m.Segments[0].Coords)
	}
	if len(m.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", m.Warnings)
	}
}

func TestUnterminatedCommentWarns(t *testing.T) {
	m := mustParse(t, "G1 X5 (oops no close")
	if len(m.Segments) != 1 || m.Segments[0].Coords.X != 5 {
		t.Fatalf("move before the open bracket should still apply")
	}
	if len(m.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(m.Warnings))
	}
	if !strings.Contains(m.Warnings[0].Message, "unterminated") {
		t.Errorf("warning = %q", m.Warnings[0].Message)
	}
}

func TestUnknownCommandWarnsAndContinues(t *testing.T) {
	m := mustParse(t, "M3 S20000\nG1 X5\nM5")
	if len(m.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(m.Segments))
	}
	if len(m.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(m.Warnings), m.Warnings)
	}
	if m.Warnings[0].Line != 1 || m.Warnings[1].Line != 3 {
		t.Errorf("warning lines = %d, %d; want 1, 3", m.Warnings[0].Line, m.Warnings[1].Line)
	}
}

func TestUnknownAxisWarns(t *testing.T) {
	m := mustParse(t, "G1 X5 Q9")
	if len(m.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(m.Warnings))
	}
	if !strings.Contains(m.Warnings[0].Message, "Q") {
		t.Errorf("warning should name the axis: %q", m.Warnings[0].Message)
	}
	if m.Segments[0].Coords.X != 5 {
		t.Errorf("known axes should still apply")
	}
}

func TestHomeCommandWarnsWithoutStateEffect(t *testing.T) {
	m := mustParse(t, "G1 X5\nG28\nG1 Y5")
	if len(m.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(m.Warnings))
	}
	last := m.Segments[len(m.Segments)-1]
	if last.Coords.X != 5 || last.Coords.Y != 5 {
		t.Errorf("G28 must not disturb coordinates: %+v", last.Coords)
	}
}

func TestMalformedNumberParsesAsOne(t *testing.T) {
	m := mustParse(t, "G1 X")
	if m.Segments[0].Coords.X != 1 {
		t.Errorf("X = %g, want 1", m.Segments[0].Coords.X)
	}
}

func TestInchUnitsFatal(t *testing.T) {
	m, err := Parse("G21\nG20 ; switch to inches\nG1 X5")
	if err == nil {
		t.Fatal("expected a fatal error for G20")
	}
	if m != nil {
		t.Error("no model may be returned on a fatal abort")
	}
	fe, ok := err.(*FatalError)
	if !ok {
		t.Fatalf("error type = %T, want *FatalError", err)
	}
	if fe.Line != 2 {
		t.Errorf("fatal line = %d, want 2", fe.Line)
	}
	if fe.Text != "G20 ; switch to inches" {
		t.Errorf("fatal text = %q", fe.Text)
	}
	if !strings.Contains(fe.Error(), "line 2") {
		t.Errorf("error string should name the line: %q", fe.Error())
	}
}

func TestMillimeterUnitsAccepted(t *testing.T) {
	m := mustParse(t, "G21\nG1 X5")
	if len(m.Warnings) != 0 {
		t.Errorf("G21 must not warn: %v", m.Warnings)
	}
	if len(m.Segments) != 1 {
		t.Errorf("expected 1 segment, got %d", len(m.Segments))
	}
}

func TestRapidAndControlledTaggedSeparately(t *testing.T) {
	m := mustParse(t, "G0 X5\nG1 X10")
	if m.Segments[0].Kind != MoveRapid {
		t.Errorf("first segment should be rapid")
	}
	if m.Segments[1].Kind != MoveControlled {
		t.Errorf("second segment should be controlled")
	}
}
