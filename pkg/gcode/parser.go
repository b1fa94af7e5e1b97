package gcode

import (
	"regexp"
	"strconv"
	"strings"
)

// axisArgs is the fixed-field result of parsing a command's argument
// string. Unknown axis letters are reported at the parsing boundary and
// never reach the state machine.
type axisArgs struct {
	X, Y, Z, E, F float64
	HasX, HasY    bool
	HasZ, HasE    bool
	HasF          bool
}

func (a axisArgs) empty() bool {
	return !a.HasX && !a.HasY && !a.HasZ && !a.HasE && !a.HasF
}

var bracketComment = regexp.MustCompile(`\([^)]*\)`)

// Parse interprets a command stream into a motion model. Recoverable
// issues (unknown commands, unknown axis letters, unterminated bracket
// comments) are collected as warnings on the model; an inch-units
// selection aborts with a FatalError and no model.
func Parse(text string) (*Model, error) {
	m := &Model{}
	lineNb := 0
	for _, raw := range strings.Split(text, "\n") {
		lineNb++
		line := strings.TrimRight(raw, " \t\r")
		if err := parseLine(m, lineNb, line); err != nil {
			return nil, err
		}
	}
	m.postProcess()
	return m, nil
}

func parseLine(m *Model, lineNb int, line string) error {
	// Strip round-bracket comments, then anything after a semicolon.
	command := bracketComment.ReplaceAllString(line, "")
	if idx := strings.IndexByte(command, ';'); idx >= 0 {
		command = strings.TrimSpace(command[:idx])
	}
	// An unterminated '(' swallows the rest of the line.
	if idx := strings.IndexByte(command, '('); idx >= 0 {
		m.warn(lineNb, "Stripping unterminated round-bracket comment", line)
		command = strings.TrimSpace(command[:idx])
	}

	command = strings.TrimSpace(command)
	if command == "" {
		return nil
	}
	code := command
	argstr := ""
	if idx := strings.IndexAny(command, " \t"); idx >= 0 {
		code = command[:idx]
		argstr = strings.TrimSpace(command[idx:])
	}

	switch code {
	case "G0":
		m.move(MoveRapid, parseArgs(m, lineNb, line, argstr), lineNb, line)
	case "G1":
		m.move(MoveControlled, parseArgs(m, lineNb, line, argstr), lineNb, line)
	case "G20":
		return &FatalError{Line: lineNb, Text: line, Reason: "Unsupported & incompatible: G20 (Inches)"}
	case "G21":
		// mm is the default unit system.
	case "G28":
		m.warn(lineNb, "G28 unimplemented", line)
	case "G90":
		m.setRelative(false)
	case "G91":
		m.setRelative(true)
	case "G92":
		m.datumReset(parseArgs(m, lineNb, line, argstr))
	default:
		m.warn(lineNb, "Unknown code '"+code+"'", line)
	}
	return nil
}

// parseArgs splits an argument string into per-axis values. A value
// that fails to parse as a number counts as 1. Unrecognized axis
// letters produce a warning and are dropped here, so the coordinate
// state machine only ever sees valid axes.
func parseArgs(m *Model, lineNb int, line, args string) axisArgs {
	var out axisArgs
	for _, bit := range strings.Fields(args) {
		letter := bit[0]
		val, err := strconv.ParseFloat(bit[1:], 64)
		if err != nil {
			val = 1
		}
		switch letter {
		case 'X':
			out.X, out.HasX = val, true
		case 'Y':
			out.Y, out.HasY = val, true
		case 'Z':
			out.Z, out.HasZ = val, true
		case 'E':
			out.E, out.HasE = val, true
		case 'F':
			out.F, out.HasF = val, true
		default:
			m.warn(lineNb, "Unknown axis '"+string(letter)+"'", line)
		}
	}
	return out
}
