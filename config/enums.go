package config

import (
	"errors"
	"fmt"
	"strings"
)

// Named ratios of modular type scale.
// ENUM(minor-second, major-second, minor-third, major-third, perfect-fourth, augmented-fourth, perfect-fifth, golden)
type ScaleRatio int

const (
	ScaleRatioMinorSecond ScaleRatio = iota
	ScaleRatioMajorSecond
	ScaleRatioMinorThird
	ScaleRatioMajorThird
	ScaleRatioPerfectFourth
	ScaleRatioAugmentedFourth
	ScaleRatioPerfectFifth
	ScaleRatioGolden
)

var ErrInvalidScaleRatio = errors.New("not a valid ScaleRatio")

var scaleRatioNames = []string{
	"minor-second",
	"major-second",
	"minor-third",
	"major-third",
	"perfect-fourth",
	"augmented-fourth",
	"perfect-fifth",
	"golden",
}

var scaleRatioValues = []float64{1.067, 1.125, 1.2, 1.25, 1.333, 1.414, 1.5, 1.618}

// ScaleRatioNames returns list of possible string values of ScaleRatio.
func ScaleRatioNames() []string {
	tmp := make([]string, len(scaleRatioNames))
	copy(tmp, scaleRatioNames)
	return tmp
}

// String implements the Stringer interface.
func (x ScaleRatio) String() string {
	if x.IsValid() {
		return scaleRatioNames[x]
	}
	return fmt.Sprintf("ScaleRatio(%d)", x)
}

// IsValid provides a quick way to determine if the typed value is part of
// the allowed enumerated values.
func (x ScaleRatio) IsValid() bool {
	return x >= 0 && int(x) < len(scaleRatioNames)
}

// Ratio returns numeric ratio, 1 for invalid values.
func (x ScaleRatio) Ratio() float64 {
	if !x.IsValid() {
		return 1
	}
	return scaleRatioValues[x]
}

// ParseScaleRatio attempts to convert a string to a ScaleRatio.
func ParseScaleRatio(name string) (ScaleRatio, error) {
	for i, n := range scaleRatioNames {
		if strings.EqualFold(n, name) {
			return ScaleRatio(i), nil
		}
	}
	return ScaleRatio(0), fmt.Errorf("%s is %w", name, ErrInvalidScaleRatio)
}

// MarshalText implements the text marshaller method.
func (x ScaleRatio) MarshalText() ([]byte, error) {
	if !x.IsValid() {
		return nil, fmt.Errorf("%d is %w", x, ErrInvalidScaleRatio)
	}
	return []byte(x.String()), nil
}

// UnmarshalText implements the text unmarshaller method.
func (x *ScaleRatio) UnmarshalText(text []byte) error {
	tmp, err := ParseScaleRatio(string(text))
	if err != nil {
		return err
	}
	*x = tmp
	return nil
}
