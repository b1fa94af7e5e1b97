// Package simulate estimates machining time for a G-code stream.
// Rapid moves travel at a fixed traverse rate; controlled moves use the
// last feed rate seen on the stream, or a default before any is set.
package simulate

import (
	"math"
	"strconv"
	"strings"
)

// Defaults used when the caller passes zero values.
const (
	DefaultFeedRate  = 300.0  // mm/min for G1 before any F word
	DefaultRapidRate = 1500.0 // mm/min for G0
)

// EstimateMinutes walks the command text and returns the estimated
// machining time in minutes. It tolerates arbitrary text; only G0/G1
// lines contribute.
func EstimateMinutes(text string, defaultFeed, rapidRate float64) float64 {
	if defaultFeed <= 0 {
		defaultFeed = DefaultFeedRate
	}
	if rapidRate <= 0 {
		rapidRate = DefaultRapidRate
	}

	var feed float64
	var lastX, lastY, lastZ *float64
	total := 0.0

	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		fields := strings.Fields(stripped)
		if len(fields) == 0 {
			continue
		}
		cmd := fields[0]
		if cmd != "G0" && cmd != "G1" {
			continue
		}

		newX, newY, newZ := lastX, lastY, lastZ
		for _, tok := range fields[1:] {
			if len(tok) < 2 {
				continue
			}
			v, err := strconv.ParseFloat(tok[1:], 64)
			if err != nil {
				continue
			}
			switch tok[0] {
			case 'X':
				newX = &v
			case 'Y':
				newY = &v
			case 'Z':
				newZ = &v
			case 'F':
				feed = v
			}
		}

		// The first positioned move only establishes a start point.
		if lastX == nil || lastY == nil || lastZ == nil {
			lastX, lastY, lastZ = newX, newY, newZ
			continue
		}

		dx := delta(newX, lastX)
		dy := delta(newY, lastY)
		dz := delta(newZ, lastZ)
		dist := math.Sqrt(dx*dx + dy*dy + dz*dz)

		rate := rapidRate
		if cmd == "G1" {
			rate = defaultFeed
			if feed > 0 {
				rate = feed
			}
		}
		if rate > 0 {
			total += dist / rate
		}
		lastX, lastY, lastZ = newX, newY, newZ
	}
	return total
}

func delta(to, from *float64) float64 {
	if to == nil {
		return 0
	}
	return *to - *from
}
