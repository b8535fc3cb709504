// Package units defines CSS size values and the pure arithmetic of converting,
// parsing and formatting them.
//
// Everything here is free of state. Caching versions of the same operations
// live in package size, attached to a computation context.
//
// # Supported units
//
// Absolute (convertible through a pixel basis):
//   - px: CSS pixel, the basis itself
//   - rem, em: multiples of the root font size
//   - pt: 1pt = 96/72 px
//
// Relative (viewport or container dependent, never converted):
//   - %, vw, vh, vmin, vmax
//
// A conversion that involves a relative unit on either side passes the
// numeric value through unchanged. The engine has no viewport to resolve
// them against.
package units

// Unit is a CSS length unit understood by the engine.
type Unit int

const (
	UnitPx Unit = iota
	UnitRem
	UnitEm
	UnitVw
	UnitVh
	UnitPercent
	UnitPt
	UnitVmin
	UnitVmax
)

var unitNames = [...]string{
	UnitPx:      "px",
	UnitRem:     "rem",
	UnitEm:      "em",
	UnitVw:      "vw",
	UnitVh:      "vh",
	UnitPercent: "%",
	UnitPt:      "pt",
	UnitVmin:    "vmin",
	UnitVmax:    "vmax",
}

// String returns CSS suffix of the unit.
func (u Unit) String() string {
	if u < 0 || int(u) >= len(unitNames) {
		return "px"
	}
	return unitNames[u]
}

// IsAbsolute reports whether the unit can be expressed in pixels without
// knowing anything about the viewport.
func (u Unit) IsAbsolute() bool {
	switch u {
	case UnitPx, UnitRem, UnitEm, UnitPt:
		return true
	default:
		return false
	}
}

// IsRelative is the complement of IsAbsolute.
func (u Unit) IsRelative() bool {
	return !u.IsAbsolute()
}

// ParseUnit maps CSS suffix to Unit. Empty suffix is px.
func ParseUnit(s string) (Unit, bool) {
	if s == "" {
		return UnitPx, true
	}
	for i, name := range unitNames {
		if name == s {
			return Unit(i), true
		}
	}
	return UnitPx, false
}

// UnitNames returns all unit suffixes in declaration order.
func UnitNames() []string {
	names := make([]string, len(unitNames))
	copy(names, unitNames[:])
	return names
}

// MarshalText implements encoding.TextMarshaler so units read naturally in YAML.
func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unit) UnmarshalText(text []byte) error {
	v, ok := ParseUnit(string(text))
	if !ok {
		return &UnknownUnitError{Name: string(text)}
	}
	*u = v
	return nil
}

// UnknownUnitError is returned when text does not name a supported unit.
type UnknownUnitError struct {
	Name string
}

func (e *UnknownUnitError) Error() string {
	return "unknown size unit: " + e.Name
}
