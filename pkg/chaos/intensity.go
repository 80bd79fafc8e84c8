package chaos

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultIntensity is the emotional strength assumed when a script gives
// none, or gives one that cannot be read as a number.
const DefaultIntensity = 5

// numberPattern finds the first integer or decimal embedded in free text,
// so "approx 7 among friends" yields 7.
var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// SoftIntensity converts a raw intensity value to an int clamped to
// [0,10]. Absent values default to 5, booleans map to 0/1, numeric text
// rounds to the nearest integer, and other text falls back to the first
// embedded number or the default. It never fails.
func SoftIntensity(raw any) int {
	return Clamp(RawIntensity(raw), 0, 10)
}

// RawIntensity applies the same recovery rule as SoftIntensity without the
// final clamp, so callers can tell "15 clamped to 10" apart from
// "defaulted to 5".
func RawIntensity(raw any) int {
	switch v := raw.(type) {
	case nil:
		return DefaultIntensity
	case bool:
		if v {
			return 1
		}
		return 0
	case int:
		return v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return DefaultIntensity
		}
		return int(math.Round(v))
	case string:
		s := strings.TrimSpace(v)
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int(math.Round(f))
		}
		if m := numberPattern.FindString(s); m != "" {
			if f, err := strconv.ParseFloat(m, 64); err == nil {
				return int(math.Round(f))
			}
		}
		return DefaultIntensity
	default:
		return DefaultIntensity
	}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
