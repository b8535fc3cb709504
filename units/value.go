package units

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Conversion constants.
const (
	// DefaultRootFontSize is the browser default root font size in pixels.
	DefaultRootFontSize = 16.0

	// PxPerPt is the CSS reference ratio: 96 pixels per inch, 72 points per inch.
	PxPerPt = 96.0 / 72.0
)

// Value is an immutable numeric value paired with its unit.
type Value struct {
	Value float64
	Unit  Unit
}

// Zero is 0px, the fallback for anything that could not be parsed.
var Zero = Value{Value: 0, Unit: UnitPx}

// New creates value in given unit.
func New(v float64, u Unit) Value {
	return Value{Value: v, Unit: u}
}

// Px is shorthand for a pixel value.
func Px(v float64) Value {
	return Value{Value: v, Unit: UnitPx}
}

// Rem is shorthand for a rem value.
func Rem(v float64) Value {
	return Value{Value: v, Unit: UnitRem}
}

// Valid reports whether the numeric part is finite. Nothing in the engine
// checks this on its own.
func (v Value) Valid() bool {
	return !math.IsNaN(v.Value) && !math.IsInf(v.Value, 0)
}

// IsZero reports whether the numeric part is zero, regardless of unit.
func (v Value) IsZero() bool {
	return v.Value == 0
}

// String returns canonical CSS text, same as Format.
func (v Value) String() string {
	return Format(v)
}

// Convert converts v into target unit using rootFontSize for rem and em.
// Relative units on either side pass the number through unchanged.
func Convert(v Value, target Unit, rootFontSize float64) Value {
	if v.Unit == target {
		return v
	}
	if v.Unit.IsRelative() || target.IsRelative() {
		return Value{Value: v.Value, Unit: target}
	}
	return Value{Value: fromPixels(toPixels(v, rootFontSize), target, rootFontSize), Unit: target}
}

func toPixels(v Value, rootFontSize float64) float64 {
	switch v.Unit {
	case UnitRem, UnitEm:
		return v.Value * rootFontSize
	case UnitPt:
		return v.Value * PxPerPt
	default:
		return v.Value
	}
}

func fromPixels(px float64, target Unit, rootFontSize float64) float64 {
	switch target {
	case UnitRem, UnitEm:
		return px / rootFontSize
	case UnitPt:
		return px / PxPerPt
	default:
		return px
	}
}

// Format returns "<value><unit>", except zero which is always "0".
func Format(v Value) string {
	if v.Value == 0 {
		return "0"
	}
	return strconv.FormatFloat(v.Value, 'f', -1, 64) + v.Unit.String()
}

// FormatFixed formats value with exactly decimals digits after the point.
// Unlike Format zero keeps its unit.
func FormatFixed(v Value, decimals int) string {
	return strconv.FormatFloat(v.Value, 'f', decimals, 64) + v.Unit.String()
}

var sizeRe = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)(px|rem|em|vw|vh|%|pt|vmin|vmax)?$`)

// ParseString parses "-?digits(.digits)?unit?". Unit defaults to px. Second
// return value is false when text does not match, in which case Zero is
// returned.
func ParseString(s string) (Value, bool) {
	m := sizeRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Zero, false
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Zero, false
	}
	u, _ := ParseUnit(m[2])
	return Value{Value: num, Unit: u}, true
}

// FromNumber converts any Go numeric kind to a pixel value.
func FromNumber(in any) (Value, bool) {
	switch n := in.(type) {
	case float64:
		return Px(n), true
	case float32:
		return Px(float64(n)), true
	case int:
		return Px(float64(n)), true
	case int8:
		return Px(float64(n)), true
	case int16:
		return Px(float64(n)), true
	case int32:
		return Px(float64(n)), true
	case int64:
		return Px(float64(n)), true
	case uint:
		return Px(float64(n)), true
	case uint8:
		return Px(float64(n)), true
	case uint16:
		return Px(float64(n)), true
	case uint32:
		return Px(float64(n)), true
	case uint64:
		return Px(float64(n)), true
	}
	return Zero, false
}
