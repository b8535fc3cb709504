package units_test

import (
	"math"
	"testing"

	"sizekit/units"
)

func TestConvert_Absolute(t *testing.T) {
	tests := []struct {
		name string
		in   units.Value
		to   units.Unit
		root float64
		want float64
	}{
		{"px to rem", units.Px(16), units.UnitRem, 16, 1},
		{"px to rem custom root", units.Px(20), units.UnitRem, 10, 2},
		{"rem to px", units.Rem(1.5), units.UnitPx, 16, 24},
		{"em to px", units.New(2, units.UnitEm), units.UnitPx, 16, 32},
		{"pt to px", units.New(72, units.UnitPt), units.UnitPx, 16, 96},
		{"px to pt", units.Px(96), units.UnitPt, 16, 72},
		{"rem to pt", units.Rem(1), units.UnitPt, 16, 12},
		{"identity", units.Px(13), units.UnitPx, 16, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := units.Convert(tt.in, tt.to, tt.root)
			if got.Unit != tt.to {
				t.Errorf("unit = %s, want %s", got.Unit, tt.to)
			}
			if math.Abs(got.Value-tt.want) > 1e-9 {
				t.Errorf("value = %v, want %v", got.Value, tt.want)
			}
		})
	}
}

func TestConvert_RelativePassThrough(t *testing.T) {
	pairs := [][2]units.Unit{
		{units.UnitVw, units.UnitVh},
		{units.UnitPercent, units.UnitVw},
		{units.UnitVmin, units.UnitVmax},
		{units.UnitVw, units.UnitPx},
		{units.UnitRem, units.UnitPercent},
	}
	for _, p := range pairs {
		got := units.Convert(units.New(42, p[0]), p[1], 16)
		if got.Value != 42 || got.Unit != p[1] {
			t.Errorf("%s -> %s: got %v", p[0], p[1], got)
		}
	}
}

func TestConvert_AbsoluteRoundTrip(t *testing.T) {
	absolute := []units.Unit{units.UnitPx, units.UnitRem, units.UnitEm, units.UnitPt}
	samples := []float64{0, 1, -3.5, 16, 0.0625, 1234.5678}

	for _, from := range absolute {
		for _, to := range absolute {
			for _, n := range samples {
				v := units.New(n, from)
				back := units.Convert(units.Convert(v, to, 16), from, 16)
				if math.Abs(back.Value-v.Value) > 1e-6 || back.Unit != v.Unit {
					t.Errorf("round trip %v via %s = %v", v, to, back)
				}
			}
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   units.Value
		want string
	}{
		{units.Px(16), "16px"},
		{units.Rem(0.75), "0.75rem"},
		{units.New(50, units.UnitPercent), "50%"},
		{units.New(-2.5, units.UnitVw), "-2.5vw"},
		{units.Rem(0), "0"},
		{units.New(math.Copysign(0, -1), units.UnitPt), "0"},
		{units.New(100, units.UnitVmax), "100vmax"},
	}
	for _, tt := range tests {
		if got := units.Format(tt.in); got != tt.want {
			t.Errorf("Format(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseString(t *testing.T) {
	tests := []struct {
		in   string
		want units.Value
		ok   bool
	}{
		{"16px", units.Px(16), true},
		{"16", units.Px(16), true},
		{"1.5rem", units.Rem(1.5), true},
		{"-2em", units.New(-2, units.UnitEm), true},
		{"50%", units.New(50, units.UnitPercent), true},
		{"10vmin", units.New(10, units.UnitVmin), true},
		{" 12pt ", units.New(12, units.UnitPt), true},
		{"", units.Zero, false},
		{"abc", units.Zero, false},
		{".5rem", units.Zero, false},
		{"1e3px", units.Zero, false},
		{"12furlongs", units.Zero, false},
		{"+4px", units.Zero, false},
	}
	for _, tt := range tests {
		got, ok := units.ParseString(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseString(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFormatParseFormat(t *testing.T) {
	values := []units.Value{
		units.Px(16), units.Rem(0.875), units.New(-12.25, units.UnitPt),
		units.New(33.333, units.UnitPercent), units.Px(0), units.New(1e-7, units.UnitVh),
		units.New(123456789.5, units.UnitPx),
	}
	for _, v := range values {
		s := units.Format(v)
		back, _ := units.ParseString(s)
		if units.Format(back) != s {
			t.Errorf("Format(Parse(%q)) = %q", s, units.Format(back))
		}
	}
}

func TestValueValid(t *testing.T) {
	if !units.Px(1).Valid() {
		t.Error("1px should be valid")
	}
	if units.Px(math.NaN()).Valid() {
		t.Error("NaN should be invalid")
	}
	if units.Px(math.Inf(-1)).Valid() {
		t.Error("-Inf should be invalid")
	}
}

func TestUnitText(t *testing.T) {
	for _, name := range units.UnitNames() {
		var u units.Unit
		if err := u.UnmarshalText([]byte(name)); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", name, err)
		}
		if u.String() != name {
			t.Errorf("round trip %q = %q", name, u.String())
		}
	}
	var u units.Unit
	if err := u.UnmarshalText([]byte("parsec")); err == nil {
		t.Error("expected error for unknown unit")
	}
}

func TestFromNumber(t *testing.T) {
	for _, in := range []any{16, int64(16), float32(16), 16.0, uint8(16)} {
		v, ok := units.FromNumber(in)
		if !ok || v != units.Px(16) {
			t.Errorf("FromNumber(%T) = %v, %v", in, v, ok)
		}
	}
	if _, ok := units.FromNumber("16"); ok {
		t.Error("string is not a number")
	}
}
