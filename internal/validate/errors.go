package validate

import (
	"fmt"
	"strings"
)

// Kind identifies which consistency check failed. Kind implements error so a
// caller can match a kind anywhere in a result with errors.Is:
//
//	errors.Is(err, validate.InvalidWindDirection)
type Kind int

const (
	// NoPressureProfile means the vertical coordinate is missing.
	NoPressureProfile Kind = iota + 1
	// InvalidVectorLength means a profile's length differs from the pressure profile's.
	InvalidVectorLength
	// PressureNotDecreasingWithHeight means pressure rose with height or height
	// fell with level. Both orderings share this kind.
	PressureNotDecreasingWithHeight
	TemperatureLessThanWetBulb
	TemperatureLessThanDewPoint
	WetBulbLessThanDewPoint
	InvalidNegativeValue
	InvalidPositiveValue
	InvalidWindDirection
)

var kindNames = map[Kind]string{
	NoPressureProfile:               "no_pressure_profile",
	InvalidVectorLength:             "invalid_vector_length",
	PressureNotDecreasingWithHeight: "pressure_not_decreasing_with_height",
	TemperatureLessThanWetBulb:      "temperature_less_than_wet_bulb",
	TemperatureLessThanDewPoint:     "temperature_less_than_dew_point",
	WetBulbLessThanDewPoint:         "wet_bulb_less_than_dew_point",
	InvalidNegativeValue:            "invalid_negative_value",
	InvalidPositiveValue:            "invalid_positive_value",
	InvalidWindDirection:            "invalid_wind_direction",
}

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		NoPressureProfile,
		InvalidVectorLength,
		PressureNotDecreasingWithHeight,
		TemperatureLessThanWetBulb,
		TemperatureLessThanDewPoint,
		WetBulbLessThanDewPoint,
		InvalidNegativeValue,
		InvalidPositiveValue,
		InvalidWindDirection,
	}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) Error() string { return k.String() }

// Error is a single failed check. It carries the offending values and, for
// length mismatches, the actual and expected lengths.
type Error struct {
	kind     Kind
	field    string
	values   []float64
	actual   int
	expected int
}

func (e *Error) Kind() Kind { return e.kind }

// Field names the profile or scalar involved, if any.
func (e *Error) Field() string { return e.field }

// Values returns the offending values. Relational kinds return both operands
// in comparison order; ordering kinds return the lower level then the upper.
func (e *Error) Values() []float64 {
	return append([]float64(nil), e.values...)
}

// Lengths returns the actual and expected profile lengths of an
// InvalidVectorLength error.
func (e *Error) Lengths() (actual, expected int) { return e.actual, e.expected }

// Is matches a Kind target.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.kind
}

func (e *Error) Error() string {
	switch e.kind {
	case NoPressureProfile:
		return "pressure profile required as vertical coordinate, none given"
	case InvalidVectorLength:
		return fmt.Sprintf("%s profile has %d levels, pressure profile has %d", e.field, e.actual, e.expected)
	case PressureNotDecreasingWithHeight:
		if e.field == heightField {
			return fmt.Sprintf("height decreasing with height: %g > %g", e.values[0], e.values[1])
		}
		return fmt.Sprintf("pressure increasing with height: %g < %g", e.values[0], e.values[1])
	case TemperatureLessThanWetBulb:
		return fmt.Sprintf("temperature less than wet bulb: %g < %g", e.values[0], e.values[1])
	case TemperatureLessThanDewPoint:
		return fmt.Sprintf("temperature less than dew point: %g < %g", e.values[0], e.values[1])
	case WetBulbLessThanDewPoint:
		return fmt.Sprintf("wet bulb less than dew point: %g < %g", e.values[0], e.values[1])
	case InvalidNegativeValue:
		return fmt.Sprintf("%s must not be negative: %g", e.field, e.values[0])
	case InvalidPositiveValue:
		return fmt.Sprintf("%s must not be positive: %g", e.field, e.values[0])
	case InvalidWindDirection:
		return fmt.Sprintf("wind direction outside [0, 360]: %g", e.values[0])
	default:
		return e.kind.String()
	}
}

// ValidationErrors is every failure found in one Validate call, in the order
// the checks ran.
type ValidationErrors struct {
	errs []*Error
}

func (v *ValidationErrors) add(e *Error) {
	v.errs = append(v.errs, e)
}

// Errors returns the failures in check order.
func (v *ValidationErrors) Errors() []*Error {
	return append([]*Error(nil), v.errs...)
}

// Len returns the number of failures.
func (v *ValidationErrors) Len() int { return len(v.errs) }

// Filter returns the failures of one kind, in check order.
func (v *ValidationErrors) Filter(kind Kind) []*Error {
	var out []*Error
	for _, e := range v.errs {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of failures of one kind.
func (v *ValidationErrors) Count(kind Kind) int {
	return len(v.Filter(kind))
}

// Unwrap exposes each failure to errors.Is and errors.As.
func (v *ValidationErrors) Unwrap() []error {
	out := make([]error, len(v.errs))
	for i, e := range v.errs {
		out[i] = e
	}
	return out
}

// Error renders one line per failure.
func (v *ValidationErrors) Error() string {
	lines := make([]string, len(v.errs))
	for i, e := range v.errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}
