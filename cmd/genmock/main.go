// Command genmock generates the mock sounding fixture used by the pipeline
// tests and the integration suite. It starts from one physically consistent
// sounding and derives one perturbed copy per failure mode, then runs the real
// validator over each case to record the expected violation kinds.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/soundings.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/storm-sounding-validator/internal/domain"
	"github.com/couchcryptid/storm-sounding-validator/internal/pipeline"
	"github.com/couchcryptid/storm-sounding-validator/internal/validate"
)

var validTime = time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC)

// mockCase is one fixture entry.
type mockCase struct {
	Name          string          `json:"name"`
	ExpectedKinds []string        `json:"expected_kinds"`
	Sounding      domain.Sounding `json:"sounding"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the sounding fixture")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	defs := []struct {
		name string
		snd  domain.Sounding
	}{
		{"valid", baseSounding()},
		{"station_pressure_below_lowest_level", baseSounding().
			WithStationPressure(domain.Value[domain.HectoPascal](830))},
		{"no_pressure_profile", baseSounding().WithPressure(nil)},
		{"short_temperature_profile", baseSounding().
			WithTemperature(domain.Profile[domain.Celsius](20, 15, 2, -10, -20, -30, -50))},
		{"temperature_below_wet_bulb", baseSounding().
			WithTemperature(domain.Profile[domain.Celsius](20, 13, 0, -12, -20, -30, -50, -45))},
		{"temperature_below_dew_point", baseSounding().
			WithTemperature(domain.Profile[domain.Celsius](20, 10, -1, -13, -20, -30, -50, -45))},
		{"wet_bulb_below_dew_point", baseSounding().
			WithWetBulb(domain.Profile[domain.Celsius](20, 12, -1, -13, -25, -39, -58, -60))},
		{"negative_values", baseSounding().
			WithWind(winds([]float64{-5, -10, 15, 12, 27, 45, 62, 80}, baseDirections)).
			WithCloudFraction(domain.Profile[domain.Percent](100, -85, -70, 50, 30, 25, 20, 10)).
			WithMSLP(domain.Value[domain.HectoPascal](-1014)).
			WithStationPressure(domain.Value[domain.HectoPascal](-847)).
			WithSurfaceWind(domain.Some(domain.Wind{Speed: -10, Direction: 0}))},
		{"wind_direction_out_of_range", baseSounding().
			WithWind(winds(baseSpeeds, []float64{0, 40, -80, -120, 460, 4200, 240, 280})).
			WithSurfaceWind(domain.Some(domain.Wind{Speed: 0, Direction: -90}))},
		{"index_signs", baseSounding().
			WithCAPE(domain.Value[domain.JPerKg](-100)).
			WithCIN(domain.Value[domain.JPerKg](25))},
	}

	cases := make([]mockCase, 0, len(defs))
	kindCounts := map[string]int{}
	for i, d := range defs {
		snd := d.snd.WithLeadTime(i)
		expected := []string{}
		for _, v := range pipeline.Violations(validate.Validate(snd)) {
			expected = append(expected, v.Kind)
			kindCounts[v.Kind]++
		}
		cases = append(cases, mockCase{Name: d.name, ExpectedKinds: expected, Sounding: snd})
		log.Printf("%s: %d violations (id %s)", d.name, len(expected), domain.SoundingID(snd))
	}

	if err := writeJSON(*out, cases); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s (%d cases)", *out, len(cases))

	printStats(kindCounts)
	return nil
}

var (
	baseSpeeds     = []float64{5, 10, 15, 12, 27, 45, 62, 80}
	baseDirections = []float64{0, 40, 80, 120, 160, 200, 240, 280}
)

func baseSounding() domain.Sounding {
	return domain.New().
		WithStation(domain.StationInfo{
			ID:        "KBOI",
			Latitude:  domain.Some(45.0),
			Longitude: domain.Some(-115.0),
			Elevation: domain.Value[domain.Meters](1023),
		}).
		WithValidTime(validTime).
		WithPressure(domain.Profile[domain.HectoPascal](840, 800, 700, 500, 300, 250, 200, 100)).
		WithTemperature(domain.Profile[domain.Celsius](20, 15, 2, -10, -20, -30, -50, -45)).
		WithWetBulb(domain.Profile[domain.Celsius](20, 14, 1, -11, -25, -39, -58, -60)).
		WithDewPoint(domain.Profile[domain.Celsius](20, 13, 0, -12, -27, -45, -62, -80)).
		WithWind(winds(baseSpeeds, baseDirections)).
		WithHeight(domain.Profile[domain.Meters](1050, 2000, 3000, 4000, 5000, 6500, 7000, 8000)).
		WithCloudFraction(domain.Profile[domain.Percent](100, 85, 70, 50, 30, 25, 20, 10)).
		WithMSLP(domain.Value[domain.HectoPascal](1014)).
		WithStationPressure(domain.Value[domain.HectoPascal](847)).
		WithSurfaceWind(domain.Some(domain.Wind{Speed: 0, Direction: 0}))
}

func winds(speeds, dirs []float64) []domain.Optional[domain.Wind] {
	out := make([]domain.Optional[domain.Wind], len(speeds))
	for i := range speeds {
		out[i] = domain.Some(domain.Wind{Speed: domain.Knots(speeds[i]), Direction: domain.Degrees(dirs[i])})
	}
	return out
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(kindCounts map[string]int) {
	kinds := make([]string, 0, len(kindCounts))
	for k := range kindCounts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	fmt.Println("\nViolations by kind:")
	for _, k := range kinds {
		fmt.Printf("  %-40s %d\n", k, kindCounts[k])
	}
}
