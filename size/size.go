package size

import (
	"errors"
	"math"

	"sizekit/units"
)

// ErrDivisionByZero is returned by Divide when divisor is zero. It is the
// only failure of the arithmetic surface.
var ErrDivisionByZero = errors.New("division by zero")

// Epsilon is tolerance used when comparing sizes.
const Epsilon = 1e-3

type flags struct {
	pooled    bool
	pxCached  bool
	remCached bool
}

// Size is an arithmetic facade over units.Value. Operations never modify
// the receiver, they return new sizes in the receiver's unit. Derived pixel
// and rem values are memoized on first access, so a Size must not be shared
// between goroutines without synchronization.
type Size struct {
	ctx   *Context
	val   units.Value
	root  float64
	state flags

	px  float64
	rem float64
}

func (s *Size) init(v units.Value, root float64) {
	s.val = v
	s.root = root
	s.state = flags{}
	s.px, s.rem = 0, 0
}

func (s *Size) reset() {
	s.init(units.Zero, s.ctx.root)
}

func (s *Size) derive(v units.Value) *Size {
	return &Size{ctx: s.ctx, val: v, root: s.root}
}

// Value returns underlying value.
func (s *Size) Value() units.Value {
	return s.val
}

// Num returns numeric part.
func (s *Size) Num() float64 {
	return s.val.Value
}

// Unit returns unit.
func (s *Size) Unit() units.Unit {
	return s.val.Unit
}

// RootFontSize returns root font size the size was created with.
func (s *Size) RootFontSize() float64 {
	return s.root
}

// Pooled reports whether the instance is managed by the pool.
func (s *Size) Pooled() bool {
	return s.state.pooled
}

// Valid reports whether the numeric part is finite.
func (s *Size) Valid() bool {
	return s.val.Valid()
}

// String returns canonical CSS text.
func (s *Size) String() string {
	return s.ctx.Format(s.val)
}

// Pixels returns value in pixels, memoized.
func (s *Size) Pixels() float64 {
	if !s.state.pxCached {
		s.px = s.in(units.UnitPx)
		s.state.pxCached = true
	}
	return s.px
}

// Rem returns value in rem, memoized.
func (s *Size) Rem() float64 {
	if !s.state.remCached {
		s.rem = s.in(units.UnitRem)
		s.state.remCached = true
	}
	return s.rem
}

// Em returns value in em. The engine has no parent element, em resolves
// against the root font size exactly like rem.
func (s *Size) Em() float64 {
	if s.val.Unit == units.UnitEm {
		return s.val.Value
	}
	return s.Rem()
}

func (s *Size) in(u units.Unit) float64 {
	return s.ctx.ConvertWithRoot(s.val, u, s.root).Value
}

// To returns the size converted to unit.
func (s *Size) To(u units.Unit) *Size {
	return s.derive(s.ctx.ConvertWithRoot(s.val, u, s.root))
}

// operand returns other expressed in the receiver's unit. Pooled receivers
// borrow a temporary pooled instance for the operand and hand it straight
// back.
func (s *Size) operand(other any) float64 {
	if s.state.pooled {
		tmp := s.ctx.pool.Acquire(other, s.root)
		v := tmp.in(s.val.Unit)
		s.ctx.pool.Release(tmp)
		return v
	}
	return s.ctx.ConvertWithRoot(s.ctx.Parse(other), s.val.Unit, s.root).Value
}

// Add returns s + other.
func (s *Size) Add(other any) *Size {
	return s.derive(units.New(s.val.Value+s.operand(other), s.val.Unit))
}

// Subtract returns s - other.
func (s *Size) Subtract(other any) *Size {
	return s.derive(units.New(s.val.Value-s.operand(other), s.val.Unit))
}

// Scale returns s * factor.
func (s *Size) Scale(factor float64) *Size {
	return s.derive(units.New(s.val.Value*factor, s.val.Unit))
}

// Multiply is Scale.
func (s *Size) Multiply(factor float64) *Size {
	return s.Scale(factor)
}

// Divide returns s / divisor or ErrDivisionByZero.
func (s *Size) Divide(divisor float64) (*Size, error) {
	if divisor == 0 {
		return nil, ErrDivisionByZero
	}
	return s.derive(units.New(s.val.Value/divisor, s.val.Unit)), nil
}

// Negate returns -s.
func (s *Size) Negate() *Size {
	return s.derive(units.New(-s.val.Value, s.val.Unit))
}

// Abs returns |s|.
func (s *Size) Abs() *Size {
	return s.derive(units.New(math.Abs(s.val.Value), s.val.Unit))
}

// Round rounds numeric part to given number of decimals.
func (s *Size) Round(decimals int) *Size {
	if decimals < 0 {
		decimals = 0
	}
	p := math.Pow(10, float64(decimals))
	return s.derive(units.New(math.Round(s.val.Value*p)/p, s.val.Unit))
}

// Clamp limits s to [lo, hi], comparing in pixels. Result is in the
// receiver's unit.
func (s *Size) Clamp(lo, hi any) *Size {
	px := s.Pixels()
	lov := s.ctx.Parse(lo)
	if px < s.ctx.ConvertWithRoot(lov, units.UnitPx, s.root).Value {
		return s.derive(s.ctx.ConvertWithRoot(lov, s.val.Unit, s.root))
	}
	hiv := s.ctx.Parse(hi)
	if px > s.ctx.ConvertWithRoot(hiv, units.UnitPx, s.root).Value {
		return s.derive(s.ctx.ConvertWithRoot(hiv, s.val.Unit, s.root))
	}
	return s.derive(s.val)
}

// Min returns the smaller of s and other in the receiver's unit.
func (s *Size) Min(other any) *Size {
	if s.Compare(other) <= 0 {
		return s.derive(s.val)
	}
	return s.derive(units.New(s.operand(other), s.val.Unit))
}

// Max returns the larger of s and other in the receiver's unit.
func (s *Size) Max(other any) *Size {
	if s.Compare(other) >= 0 {
		return s.derive(s.val)
	}
	return s.derive(units.New(s.operand(other), s.val.Unit))
}

// Interpolate returns s + (to - s) * factor. Interpolation happens in
// pixels, result is converted back to the receiver's unit.
func (s *Size) Interpolate(to any, factor float64) *Size {
	from := s.Pixels()
	target := s.ctx.ConvertWithRoot(s.ctx.Parse(to), units.UnitPx, s.root).Value
	px := units.Px(from + (target-from)*factor)
	return s.derive(s.ctx.ConvertWithRoot(px, s.val.Unit, s.root))
}

// Equals compares within Epsilon. Sizes in the same unit are compared
// directly, otherwise both are converted to pixels.
func (s *Size) Equals(other any) bool {
	o := s.ctx.Parse(other)
	if o.Unit == s.val.Unit {
		return math.Abs(s.val.Value-o.Value) < Epsilon
	}
	return math.Abs(s.Pixels()-s.ctx.ConvertWithRoot(o, units.UnitPx, s.root).Value) < Epsilon
}

// Compare returns -1, 0 or 1 comparing s with other in pixels.
func (s *Size) Compare(other any) int {
	if s.Equals(other) {
		return 0
	}
	o := s.ctx.ConvertWithRoot(s.ctx.Parse(other), units.UnitPx, s.root).Value
	if s.Pixels() < o {
		return -1
	}
	return 1
}
