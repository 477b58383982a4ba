// Package domain models upper-air soundings and their validation reports.
//
// # Soundings
//
// A sounding is one vertical profile of the atmosphere at a station and time,
// as produced by a radiosonde launch or a model forecast point. Each profile
// (pressure, temperature, wet bulb, dew point, theta-e, wind, omega,
// geopotential height, cloud fraction) holds one sample per level, ordered
// from the surface upward and aligned by index across profiles. Pressure is
// the vertical coordinate; every other profile is optional.
//
// A level may be missing a measurement for a given variable. Missing samples
// are carried as absent [Optional] values, never as zero, and are encoded as
// JSON null on the wire:
//
//	{"pressure": [840, 800, null, 500], "temperature": [20, 15, 2, null]}
//
// # Units
//
// Every measurement is a distinct named type ([HectoPascal], [Celsius],
// [Knots], [Degrees], [Meters], ...) so that a pressure can never be compared
// against a temperature by accident. Values are unpacked to float64 only where
// they are compared.
//
// # Scalars
//
// Surface values (MSLP, station pressure, surface wind, low/mid/high cloud),
// derived indices (CAPE, CIN, precipitable water) and station elevation are
// single optional values not tied to a level.
//
// # Reports
//
// Each consumed sounding yields a [Report] keyed by a deterministic sounding
// ID (station|valid time|lead time), so replays produce the same key.
package domain
