package extractor

import (
	"math"
	"strconv"
	"strings"
)

// PixelRound rounds a pixel value to the nearest whole pixel, ties away from zero
// (10.5 -> 11, -10.5 -> -11). It is idempotent.
func PixelRound(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v)
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// formatNumber renders v in its shortest decimal form ("8", "0.5", "-2.25").
func formatNumber(v float64) string {
	if v == 0 {
		// Avoid "-0".
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// px renders v as a CSS pixel length.
func px(v float64) string {
	return formatNumber(v) + "px"
}

// CSSShorthand collapses four side values into a CSS shorthand string the way
// browsers serialize them: all equal -> "Apx", top/bottom and left/right pairs ->
// "Apx Bpx", left equal to right -> "Apx Bpx Cpx", otherwise all four sides.
// When ignoreZero is set and every side is zero the result is empty.
func CSSShorthand(top, right, bottom, left float64, ignoreZero bool) string {
	if ignoreZero && top == 0 && right == 0 && bottom == 0 && left == 0 {
		return ""
	}

	switch {
	case top == right && right == bottom && bottom == left:
		return px(top)
	case top == bottom && right == left:
		return px(top) + " " + px(right)
	case right == left:
		return strings.Join([]string{px(top), px(right), px(bottom)}, " ")
	default:
		return strings.Join([]string{px(top), px(right), px(bottom), px(left)}, " ")
	}
}
