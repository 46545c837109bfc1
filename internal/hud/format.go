package hud

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"connector-align/internal/mathutil"
)

// Labels longer than this wrap at spaces.
const maxLabelWidth = 12

const placeholderLabel = " - "

// roundNumber rounds half to even at places decimals and prints the shortest
// representation, without a sign on zero.
func roundNumber(v float64, places int) string {
	p := math.Pow(10, float64(places))
	r := math.RoundToEven(v*p) / p
	if r == 0 || math.IsNaN(r) {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func formatPosition(v mathutil.Vec3, large bool) string {
	x, y, z := roundNumber(v[0], 2), roundNumber(v[1], 2), roundNumber(v[2], 2)
	if large {
		return fmt.Sprintf("%s\n%s\n%s", x, y, z)
	}
	return fmt.Sprintf("%s m\n%s m\n%s m", x, y, z)
}

func formatAngle(deg float64) string { return roundNumber(deg, 1) + "°" }

func formatSpeed(v float64) string { return roundNumber(v, 1) + " m/s" }

func formatLabel(name string) string {
	if len([]rune(name)) <= maxLabelWidth {
		return name
	}
	return strings.ReplaceAll(name, " ", "\n")
}

// placeholder is the readout shown when no pair exists.
func placeholder(large bool) Readout {
	return Readout{
		HomeLabel:   placeholderLabel,
		TargetLabel: placeholderLabel,
		Position:    formatPosition(mathutil.Vec3{}, large),
		Pitch:       formatAngle(0),
		Yaw:         formatAngle(0),
		Roll:        formatAngle(0),
		Speed:       formatSpeed(0),
	}
}
