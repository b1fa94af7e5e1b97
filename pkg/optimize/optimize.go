// Package optimize compacts a G-code stream by merging runs of
// controlled moves that are colinear along X (same Y, Z and feed) into
// a single move ending at the furthest X. Rapid moves and non-move
// lines pass through untouched and act as merge barriers.
package optimize

import (
	"fmt"
	"strconv"
	"strings"
)

// pending is a buffered controlled move awaiting possible extension by
// a colinear successor. Fields absent from the source line stay nil.
type pending struct {
	x, y, z, f *float64
}

// merger is the single-pass compaction state machine. At most one
// controlled move is pending at a time; flush is the only way it is
// emitted.
type merger struct {
	out     []string
	buf     *pending
	lastCmd string // "G0", "G1" or ""
}

// flush emits the pending move, if any, at 3-decimal precision. The
// feed is included only when the buffered move carried one.
func (m *merger) flush() {
	if m.buf == nil {
		return
	}
	b := m.buf
	m.buf = nil
	line := fmt.Sprintf("G1 X%.3f Y%.3f Z%.3f", deref(b.x), deref(b.y), deref(b.z))
	if b.f != nil {
		line += fmt.Sprintf(" F%.0f", *b.f)
	}
	m.out = append(m.out, line)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func (m *merger) controlled(line string) {
	p := parseMoveFields(line)

	// A controlled move straight after a rapid is emitted verbatim and
	// never buffered, so a plunge following a repositioning rapid can
	// not be silently merged into a later move.
	if m.lastCmd == "G0" {
		m.flush()
		m.out = append(m.out, line)
		m.lastCmd = "G1"
		return
	}

	if m.buf == nil {
		m.buf = p
		m.lastCmd = "G1"
		return
	}

	if !eq(m.buf.y, p.y) || !eq(m.buf.z, p.z) || !eq(m.buf.f, p.f) {
		// An abrupt depth or feed change: emit both moves separately
		// rather than bridging them with a diagonal.
		m.flush()
		m.out = append(m.out, line)
		m.lastCmd = "G1"
		return
	}

	// Colinear along X: extend the pending move.
	m.buf.x = p.x
	m.lastCmd = "G1"
}

func (m *merger) rapid(line string) {
	m.flush()
	m.out = append(m.out, line)
	m.lastCmd = "G0"
}

func (m *merger) other(line string) {
	m.flush()
	m.out = append(m.out, line)
	m.lastCmd = ""
}

func eq(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// parseMoveFields extracts X/Y/Z/F from a move line. Malformed numbers
// are treated as "field absent"; merger input is trusted text.
func parseMoveFields(line string) *pending {
	p := &pending{}
	for _, tok := range strings.Fields(line)[1:] {
		if len(tok) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(tok[1:], 64)
		if err != nil {
			continue
		}
		switch tok[0] {
		case 'X':
			p.x = &v
		case 'Y':
			p.y = &v
		case 'Z':
			p.z = &v
		case 'F':
			p.f = &v
		}
	}
	return p
}

// MergeLines compacts the given lines in a single left-to-right pass.
func MergeLines(lines []string) []string {
	m := &merger{out: make([]string, 0, len(lines))}
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		switch firstToken(stripped) {
		case "G1":
			m.controlled(stripped)
		case "G0":
			m.rapid(stripped)
		default:
			m.other(stripped)
		}
	}
	m.flush()
	return m.out
}

// Merge compacts newline-joined command text.
func Merge(text string) string {
	return strings.Join(MergeLines(strings.Split(text, "\n")), "\n")
}

func firstToken(line string) string {
	if idx := strings.IndexAny(line, " \t"); idx >= 0 {
		return line[:idx]
	}
	return line
}
