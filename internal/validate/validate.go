// Package validate checks that an atmospheric sounding is physically
// self-consistent. It does not check that a sounding is complete, and it never
// corrects or fills in data.
//
// Validate runs every check and reports every failure; it never stops at the
// first one. Missing samples are skipped, never treated as zero.
package validate

import (
	"math"

	"github.com/couchcryptid/storm-sounding-validator/internal/domain"
)

// Source is the read-only view of a sounding the checks run against.
// domain.Sounding implements it.
type Source interface {
	PressureProfile() []domain.Optional[domain.HectoPascal]
	TemperatureProfile() []domain.Optional[domain.Celsius]
	WetBulbProfile() []domain.Optional[domain.Celsius]
	DewPointProfile() []domain.Optional[domain.Celsius]
	ThetaEProfile() []domain.Optional[domain.Kelvin]
	WindProfile() []domain.Optional[domain.Wind]
	OmegaProfile() []domain.Optional[domain.PaPerSecond]
	HeightProfile() []domain.Optional[domain.Meters]
	CloudFractionProfile() []domain.Optional[domain.Percent]

	MSLP() domain.Optional[domain.HectoPascal]
	StationPressure() domain.Optional[domain.HectoPascal]
	SurfaceWind() domain.Optional[domain.Wind]
	LowCloud() domain.Optional[domain.Percent]
	MidCloud() domain.Optional[domain.Percent]
	HighCloud() domain.Optional[domain.Percent]
	CAPE() domain.Optional[domain.JPerKg]
	CIN() domain.Optional[domain.JPerKg]
	PWAT() domain.Optional[domain.Millimeters]
	Elevation() domain.Optional[domain.Meters]
}

const (
	pressureField = "Pressure"
	heightField   = "Height"
)

// Validate runs the full check battery against src. It returns nil when every
// check passes, otherwise a *ValidationErrors holding each failure in check
// order.
func Validate(src Source) error {
	errs := &ValidationErrors{}

	pressure := src.PressureProfile()

	// Pressure is required as the vertical coordinate. When it is missing the
	// expected length is 0, so every populated profile also reports a mismatch.
	if len(pressure) == 0 {
		errs.add(&Error{kind: NoPressureProfile})
	}

	n := len(pressure)
	checkLength(errs, "Temperature", src.TemperatureProfile(), n)
	checkLength(errs, "Wet bulb temperature", src.WetBulbProfile(), n)
	checkLength(errs, "Dew point", src.DewPointProfile(), n)
	checkLength(errs, "Theta-e", src.ThetaEProfile(), n)
	checkLength(errs, "Wind", src.WindProfile(), n)
	checkLength(errs, "Omega (pressure vertical velocity)", src.OmegaProfile(), n)
	checkLength(errs, heightField, src.HeightProfile(), n)
	checkLength(errs, "Cloud fraction", src.CloudFractionProfile(), n)

	checkPressureDecreasing(errs, pressure, src.StationPressure())
	checkHeightIncreasing(errs, src.HeightProfile(), src.Elevation())

	// dew point <= wet bulb <= temperature
	temperature := src.TemperatureProfile()
	wetBulb := src.WetBulbProfile()
	dewPoint := src.DewPointProfile()
	checkNotLess(errs, TemperatureLessThanWetBulb, temperature, wetBulb)
	checkNotLess(errs, TemperatureLessThanDewPoint, temperature, dewPoint)
	checkNotLess(errs, WetBulbLessThanDewPoint, wetBulb, dewPoint)

	for _, w := range src.WindProfile() {
		if w, ok := w.Get(); ok {
			checkNonNegative(errs, "Wind speed", domain.Some(w.Speed))
		}
	}
	for _, cld := range src.CloudFractionProfile() {
		checkNonNegative(errs, "Cloud fraction", cld)
	}
	checkNonNegative(errs, "Low cloud", src.LowCloud())
	checkNonNegative(errs, "Mid cloud", src.MidCloud())
	checkNonNegative(errs, "High cloud", src.HighCloud())
	if w, ok := src.SurfaceWind().Get(); ok {
		checkNonNegative(errs, "Surface wind speed", domain.Some(w.Speed))
	}
	checkNonNegative(errs, "MSLP", src.MSLP())
	checkNonNegative(errs, "Station pressure", src.StationPressure())
	checkNonNegative(errs, "CAPE", src.CAPE())
	checkNonNegative(errs, "PWAT", src.PWAT())
	checkNonPositive(errs, "CIN", src.CIN())

	for _, w := range src.WindProfile() {
		if w, ok := w.Get(); ok {
			checkWindDirection(errs, w.Direction)
		}
	}
	if w, ok := src.SurfaceWind().Get(); ok {
		checkWindDirection(errs, w.Direction)
	}

	if errs.Len() == 0 {
		return nil
	}
	return errs
}

// checkLength flags a populated profile whose length differs from the
// pressure profile's. An empty profile is simply not provided.
func checkLength[T any](errs *ValidationErrors, name string, profile []domain.Optional[T], expected int) {
	if len(profile) != 0 && len(profile) != expected {
		errs.add(&Error{kind: InvalidVectorLength, field: name, actual: len(profile), expected: expected})
	}
}

// checkPressureDecreasing walks the pressure profile upward starting from the
// station pressure. Each level that exceeds the one below it is reported, and
// the walk continues from the observed value.
func checkPressureDecreasing(errs *ValidationErrors, pressure []domain.Optional[domain.HectoPascal], station domain.Optional[domain.HectoPascal]) {
	below := math.MaxFloat64
	if p, ok := station.Get(); ok {
		below = p.Unpack()
	}
	for _, p := range pressure {
		p, ok := p.Get()
		if !ok {
			continue
		}
		if below < p.Unpack() {
			errs.add(&Error{kind: PressureNotDecreasingWithHeight, field: pressureField, values: []float64{below, p.Unpack()}})
		}
		below = p.Unpack()
	}
}

// checkHeightIncreasing walks the height profile upward starting from the
// station elevation.
func checkHeightIncreasing(errs *ValidationErrors, height []domain.Optional[domain.Meters], elevation domain.Optional[domain.Meters]) {
	below := -math.MaxFloat64
	if h, ok := elevation.Get(); ok {
		below = h.Unpack()
	}
	for _, h := range height {
		h, ok := h.Get()
		if !ok {
			continue
		}
		if below > h.Unpack() {
			errs.add(&Error{kind: PressureNotDecreasingWithHeight, field: heightField, values: []float64{below, h.Unpack()}})
		}
		below = h.Unpack()
	}
}

// checkNotLess reports every level where upper < lower, skipping levels where
// either side is missing.
func checkNotLess(errs *ValidationErrors, kind Kind, upper, lower []domain.Optional[domain.Celsius]) {
	for i := range min(len(upper), len(lower)) {
		u, uok := upper[i].Get()
		l, lok := lower[i].Get()
		if !uok || !lok {
			continue
		}
		if u.Unpack() < l.Unpack() {
			errs.add(&Error{kind: kind, values: []float64{u.Unpack(), l.Unpack()}})
		}
	}
}

func checkNonNegative[T domain.Quantity](errs *ValidationErrors, field string, v domain.Optional[T]) {
	if q, ok := v.Get(); ok && q.Unpack() < 0 {
		errs.add(&Error{kind: InvalidNegativeValue, field: field, values: []float64{q.Unpack()}})
	}
}

func checkNonPositive[T domain.Quantity](errs *ValidationErrors, field string, v domain.Optional[T]) {
	if q, ok := v.Get(); ok && q.Unpack() > 0 {
		errs.add(&Error{kind: InvalidPositiveValue, field: field, values: []float64{q.Unpack()}})
	}
}

func checkWindDirection(errs *ValidationErrors, dir domain.Degrees) {
	if d := dir.Unpack(); d < 0 || d > 360 {
		errs.add(&Error{kind: InvalidWindDirection, field: "Wind direction", values: []float64{d}})
	}
}
