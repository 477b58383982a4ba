package domain

import (
	"encoding/json"
	"errors"
)

// Quantity is a measurement tagged with its physical unit. Checks compare
// quantities of the same unit only, unpacking to float64 at the comparison site.
type Quantity interface {
	Unpack() float64
}

// HectoPascal is atmospheric pressure in hPa.
type HectoPascal float64

// Celsius is temperature in degrees Celsius.
type Celsius float64

// Kelvin is temperature in kelvin (equivalent potential temperature).
type Kelvin float64

// Knots is wind speed in knots.
type Knots float64

// Degrees is a compass direction in degrees clockwise from north.
type Degrees float64

// Meters is a height or elevation in meters.
type Meters float64

// PaPerSecond is pressure vertical velocity (omega) in Pa/s.
type PaPerSecond float64

// Percent is a cloud fraction from 0 to 100.
type Percent float64

// JPerKg is specific energy in J/kg (CAPE and CIN).
type JPerKg float64

// Millimeters is a depth in mm (precipitable water).
type Millimeters float64

func (v HectoPascal) Unpack() float64 { return float64(v) }
func (v Celsius) Unpack() float64     { return float64(v) }
func (v Kelvin) Unpack() float64      { return float64(v) }
func (v Knots) Unpack() float64       { return float64(v) }
func (v Degrees) Unpack() float64     { return float64(v) }
func (v Meters) Unpack() float64      { return float64(v) }
func (v PaPerSecond) Unpack() float64 { return float64(v) }
func (v Percent) Unpack() float64     { return float64(v) }
func (v JPerKg) Unpack() float64      { return float64(v) }
func (v Millimeters) Unpack() float64 { return float64(v) }

// Wind is a combined wind sample. A missing wind is a null sample, never a
// wind with one component left out.
type Wind struct {
	Speed     Knots   `json:"speed"`
	Direction Degrees `json:"direction"`
}

// ErrIncompleteWind is returned when a wind sample lacks speed or direction.
var ErrIncompleteWind = errors.New("wind sample requires both speed and direction")

// UnmarshalJSON rejects a wind object missing either component so that an
// absent value is never decoded as zero.
func (w *Wind) UnmarshalJSON(data []byte) error {
	var wire struct {
		Speed     *Knots   `json:"speed"`
		Direction *Degrees `json:"direction"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Speed == nil || wire.Direction == nil {
		return ErrIncompleteWind
	}
	*w = Wind{Speed: *wire.Speed, Direction: *wire.Direction}
	return nil
}
