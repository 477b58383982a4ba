package domain

import (
	"encoding/json"
	"time"
)

// StationInfo identifies where a sounding was taken.
type StationInfo struct {
	ID        string            `json:"id,omitempty"`
	Latitude  Optional[float64] `json:"lat"`
	Longitude Optional[float64] `json:"lon"`
	Elevation Optional[Meters]  `json:"elevation"`
}

// Sounding is a read-only snapshot of one vertical profile plus its surface
// and index values. Profiles are ordered from the lowest level to the highest
// and are aligned by index. Build one with New and the With* methods; each
// With* call returns a modified copy.
type Sounding struct {
	station   StationInfo
	validTime time.Time
	leadTime  int

	pressure      []Optional[HectoPascal]
	temperature   []Optional[Celsius]
	wetBulb       []Optional[Celsius]
	dewPoint      []Optional[Celsius]
	thetaE        []Optional[Kelvin]
	wind          []Optional[Wind]
	omega         []Optional[PaPerSecond]
	height        []Optional[Meters]
	cloudFraction []Optional[Percent]

	mslp            Optional[HectoPascal]
	stationPressure Optional[HectoPascal]
	surfaceWind     Optional[Wind]
	lowCloud        Optional[Percent]
	midCloud        Optional[Percent]
	highCloud       Optional[Percent]
	cape            Optional[JPerKg]
	cin             Optional[JPerKg]
	pwat            Optional[Millimeters]
}

// New returns an empty sounding.
func New() Sounding { return Sounding{} }

// WithStation sets the station metadata.
func (s Sounding) WithStation(info StationInfo) Sounding {
	s.station = info
	return s
}

// WithValidTime sets the time the sounding is valid for.
func (s Sounding) WithValidTime(t time.Time) Sounding {
	s.validTime = t
	return s
}

// WithLeadTime sets the forecast lead time in hours; 0 for an observation.
func (s Sounding) WithLeadTime(hours int) Sounding {
	s.leadTime = hours
	return s
}

// WithPressure sets the pressure profile, the vertical coordinate.
func (s Sounding) WithPressure(p []Optional[HectoPascal]) Sounding {
	s.pressure = p
	return s
}

// WithTemperature sets the temperature profile.
func (s Sounding) WithTemperature(p []Optional[Celsius]) Sounding {
	s.temperature = p
	return s
}

// WithWetBulb sets the wet bulb temperature profile.
func (s Sounding) WithWetBulb(p []Optional[Celsius]) Sounding {
	s.wetBulb = p
	return s
}

// WithDewPoint sets the dew point profile.
func (s Sounding) WithDewPoint(p []Optional[Celsius]) Sounding {
	s.dewPoint = p
	return s
}

// WithThetaE sets the equivalent potential temperature profile.
func (s Sounding) WithThetaE(p []Optional[Kelvin]) Sounding {
	s.thetaE = p
	return s
}

// WithWind sets the wind profile.
func (s Sounding) WithWind(p []Optional[Wind]) Sounding {
	s.wind = p
	return s
}

// WithOmega sets the pressure vertical velocity profile.
func (s Sounding) WithOmega(p []Optional[PaPerSecond]) Sounding {
	s.omega = p
	return s
}

// WithHeight sets the geopotential height profile.
func (s Sounding) WithHeight(p []Optional[Meters]) Sounding {
	s.height = p
	return s
}

// WithCloudFraction sets the cloud fraction profile.
func (s Sounding) WithCloudFraction(p []Optional[Percent]) Sounding {
	s.cloudFraction = p
	return s
}

// WithMSLP sets the mean sea level pressure.
func (s Sounding) WithMSLP(v Optional[HectoPascal]) Sounding {
	s.mslp = v
	return s
}

// WithStationPressure sets the station pressure.
func (s Sounding) WithStationPressure(v Optional[HectoPascal]) Sounding {
	s.stationPressure = v
	return s
}

// WithSurfaceWind sets the surface wind.
func (s Sounding) WithSurfaceWind(v Optional[Wind]) Sounding {
	s.surfaceWind = v
	return s
}

// WithLowCloud sets the low cloud cover.
func (s Sounding) WithLowCloud(v Optional[Percent]) Sounding {
	s.lowCloud = v
	return s
}

// WithMidCloud sets the mid cloud cover.
func (s Sounding) WithMidCloud(v Optional[Percent]) Sounding {
	s.midCloud = v
	return s
}

// WithHighCloud sets the high cloud cover.
func (s Sounding) WithHighCloud(v Optional[Percent]) Sounding {
	s.highCloud = v
	return s
}

// WithCAPE sets convective available potential energy.
func (s Sounding) WithCAPE(v Optional[JPerKg]) Sounding {
	s.cape = v
	return s
}

// WithCIN sets convective inhibition.
func (s Sounding) WithCIN(v Optional[JPerKg]) Sounding {
	s.cin = v
	return s
}

// WithPWAT sets the precipitable water.
func (s Sounding) WithPWAT(v Optional[Millimeters]) Sounding {
	s.pwat = v
	return s
}

// Station returns the station metadata.
func (s Sounding) Station() StationInfo {
	return s.station
}

// ValidTime returns the time the sounding is valid for.
func (s Sounding) ValidTime() time.Time {
	return s.validTime
}

// LeadTime returns the forecast lead time in hours.
func (s Sounding) LeadTime() int {
	return s.leadTime
}

// Elevation returns the station elevation, the baseline for the height profile.
func (s Sounding) Elevation() Optional[Meters] {
	return s.station.Elevation
}

// PressureProfile returns the pressure profile, lowest level first.
func (s Sounding) PressureProfile() []Optional[HectoPascal] {
	return s.pressure
}

// TemperatureProfile returns the temperature profile.
func (s Sounding) TemperatureProfile() []Optional[Celsius] {
	return s.temperature
}

// WetBulbProfile returns the wet bulb temperature profile.
func (s Sounding) WetBulbProfile() []Optional[Celsius] {
	return s.wetBulb
}

// DewPointProfile returns the dew point profile.
func (s Sounding) DewPointProfile() []Optional[Celsius] {
	return s.dewPoint
}

// ThetaEProfile returns the equivalent potential temperature profile.
func (s Sounding) ThetaEProfile() []Optional[Kelvin] {
	return s.thetaE
}

// WindProfile returns the wind profile.
func (s Sounding) WindProfile() []Optional[Wind] {
	return s.wind
}

// OmegaProfile returns the pressure vertical velocity profile.
func (s Sounding) OmegaProfile() []Optional[PaPerSecond] {
	return s.omega
}

// HeightProfile returns the geopotential height profile.
func (s Sounding) HeightProfile() []Optional[Meters] {
	return s.height
}

// CloudFractionProfile returns the cloud fraction profile.
func (s Sounding) CloudFractionProfile() []Optional[Percent] {
	return s.cloudFraction
}

// MSLP returns the mean sea level pressure.
func (s Sounding) MSLP() Optional[HectoPascal] {
	return s.mslp
}

// StationPressure returns the station pressure.
func (s Sounding) StationPressure() Optional[HectoPascal] {
	return s.stationPressure
}

// SurfaceWind returns the surface wind.
func (s Sounding) SurfaceWind() Optional[Wind] {
	return s.surfaceWind
}

// LowCloud returns the low cloud cover.
func (s Sounding) LowCloud() Optional[Percent] {
	return s.lowCloud
}

// MidCloud returns the mid cloud cover.
func (s Sounding) MidCloud() Optional[Percent] {
	return s.midCloud
}

// HighCloud returns the high cloud cover.
func (s Sounding) HighCloud() Optional[Percent] {
	return s.highCloud
}

// CAPE returns convective available potential energy.
func (s Sounding) CAPE() Optional[JPerKg] {
	return s.cape
}

// CIN returns convective inhibition, which is never positive in a consistent sounding.
func (s Sounding) CIN() Optional[JPerKg] {
	return s.cin
}

// PWAT returns precipitable water.
func (s Sounding) PWAT() Optional[Millimeters] {
	return s.pwat
}

// wireSounding is the JSON form published by upstream sounding collectors.
// Profiles are arrays of number-or-null; missing keys mean an empty profile.
type wireSounding struct {
	Station   StationInfo `json:"station"`
	ValidTime time.Time   `json:"valid_time"`
	LeadTime  int         `json:"lead_time"`

	Pressure      []Optional[HectoPascal] `json:"pressure,omitempty"`
	Temperature   []Optional[Celsius]     `json:"temperature,omitempty"`
	WetBulb       []Optional[Celsius]     `json:"wet_bulb,omitempty"`
	DewPoint      []Optional[Celsius]     `json:"dew_point,omitempty"`
	ThetaE        []Optional[Kelvin]      `json:"theta_e,omitempty"`
	Wind          []Optional[Wind]        `json:"wind,omitempty"`
	Omega         []Optional[PaPerSecond] `json:"omega,omitempty"`
	Height        []Optional[Meters]      `json:"height,omitempty"`
	CloudFraction []Optional[Percent]     `json:"cloud_fraction,omitempty"`

	Surface wireSurface `json:"surface"`
	Indices wireIndices `json:"indices"`
}

type wireSurface struct {
	MSLP            Optional[HectoPascal] `json:"mslp"`
	StationPressure Optional[HectoPascal] `json:"station_pressure"`
	Wind            Optional[Wind]        `json:"wind"`
	LowCloud        Optional[Percent]     `json:"low_cloud"`
	MidCloud        Optional[Percent]     `json:"mid_cloud"`
	HighCloud       Optional[Percent]     `json:"high_cloud"`
}

type wireIndices struct {
	CAPE Optional[JPerKg]      `json:"cape"`
	CIN  Optional[JPerKg]      `json:"cin"`
	PWAT Optional[Millimeters] `json:"pwat"`
}

// MarshalJSON encodes the sounding in its wire form.
func (s Sounding) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireSounding{
		Station:       s.station,
		ValidTime:     s.validTime,
		LeadTime:      s.leadTime,
		Pressure:      s.pressure,
		Temperature:   s.temperature,
		WetBulb:       s.wetBulb,
		DewPoint:      s.dewPoint,
		ThetaE:        s.thetaE,
		Wind:          s.wind,
		Omega:         s.omega,
		Height:        s.height,
		CloudFraction: s.cloudFraction,
		Surface: wireSurface{
			MSLP:            s.mslp,
			StationPressure: s.stationPressure,
			Wind:            s.surfaceWind,
			LowCloud:        s.lowCloud,
			MidCloud:        s.midCloud,
			HighCloud:       s.highCloud,
		},
		Indices: wireIndices{CAPE: s.cape, CIN: s.cin, PWAT: s.pwat},
	})
}

// UnmarshalJSON decodes the wire form.
func (s *Sounding) UnmarshalJSON(data []byte) error {
	var w wireSounding
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Sounding{
		station:         w.Station,
		validTime:       w.ValidTime,
		leadTime:        w.LeadTime,
		pressure:        w.Pressure,
		temperature:     w.Temperature,
		wetBulb:         w.WetBulb,
		dewPoint:        w.DewPoint,
		thetaE:          w.ThetaE,
		wind:            w.Wind,
		omega:           w.Omega,
		height:          w.Height,
		cloudFraction:   w.CloudFraction,
		mslp:            w.Surface.MSLP,
		stationPressure: w.Surface.StationPressure,
		surfaceWind:     w.Surface.Wind,
		lowCloud:        w.Surface.LowCloud,
		midCloud:        w.Surface.MidCloud,
		highCloud:       w.Surface.HighCloud,
		cape:            w.Indices.CAPE,
		cin:             w.Indices.CIN,
		pwat:            w.Indices.PWAT,
	}
	return nil
}
