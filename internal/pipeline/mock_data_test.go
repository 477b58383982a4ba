package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/storm-sounding-validator/internal/domain"
	"github.com/couchcryptid/storm-sounding-validator/internal/pipeline"
	"github.com/couchcryptid/storm-sounding-validator/internal/validate"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCase struct {
	Name          string          `json:"name"`
	ExpectedKinds []string        `json:"expected_kinds"`
	Sounding      json.RawMessage `json:"sounding"`
}

func TestSoundingValidator_WithMockData(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 13, 0, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() { domain.SetClock(nil) })

	metrics := newTestMetrics()
	validator := pipeline.NewSoundingValidator(slog.Default(), metrics)

	cases := readMockCases(t)
	require.NotEmpty(t, cases)

	invalid := 0
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			report, err := validator.Transform(context.Background(), domain.RawEvent{
				Value: tc.Sounding,
				Topic: "raw-soundings",
			})
			require.NoError(t, err)

			kinds := make([]string, 0, len(report.Violations))
			for _, v := range report.Violations {
				kinds = append(kinds, v.Kind)
				assert.NotEmpty(t, v.Message)
			}
			if diff := cmp.Diff(tc.ExpectedKinds, kinds); diff != "" {
				t.Fatalf("violation kinds mismatch (-want +got):\n%s", diff)
			}

			assert.Equal(t, len(tc.ExpectedKinds) == 0, report.Valid)
			assert.Equal(t, "KBOI", report.StationID)
			assert.Equal(t, fakeClock.Now(), report.ValidatedAt)
		})
		if len(tc.ExpectedKinds) > 0 {
			invalid++
		}
	}

	assert.InDelta(t, float64(len(cases)-invalid), testutil.ToFloat64(metrics.SoundingsValidated.WithLabelValues("valid")), 0)
	assert.InDelta(t, float64(invalid), testutil.ToFloat64(metrics.SoundingsValidated.WithLabelValues("invalid")), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(metrics.Violations.WithLabelValues("invalid_wind_direction")), 0)
}

func TestSoundingValidator_DistinctIDsPerCase(t *testing.T) {
	validator := pipeline.NewSoundingValidator(slog.Default(), newTestMetrics())

	seen := map[string]string{}
	for _, tc := range readMockCases(t) {
		report, err := validator.Transform(context.Background(), domain.RawEvent{Value: tc.Sounding})
		require.NoError(t, err)
		if prev, ok := seen[report.SoundingID]; ok {
			t.Fatalf("cases %q and %q share sounding id %s", prev, tc.Name, report.SoundingID)
		}
		seen[report.SoundingID] = tc.Name
	}
}

func TestSoundingValidator_UndecodablePayload(t *testing.T) {
	validator := pipeline.NewSoundingValidator(slog.Default(), newTestMetrics())

	_, err := validator.Transform(context.Background(), domain.RawEvent{Value: []byte(`{"pressure": "high"}`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse raw sounding")
}

func TestViolations(t *testing.T) {
	assert.Nil(t, pipeline.Violations(nil))
	assert.Nil(t, pipeline.Violations(errors.New("not a validation result")))

	snd := domain.New().
		WithPressure(domain.Profile[domain.HectoPascal](1000, 850)).
		WithTemperature(domain.Profile[domain.Celsius](20)).
		WithSurfaceWind(domain.Some(domain.Wind{Speed: 5, Direction: 400}))

	got := pipeline.Violations(validate.Validate(snd))
	require.Len(t, got, 2)

	length := got[0]
	assert.Equal(t, "invalid_vector_length", length.Kind)
	assert.Equal(t, "Temperature", length.Field)
	require.NotNil(t, length.Actual)
	require.NotNil(t, length.Expected)
	assert.Equal(t, 1, *length.Actual)
	assert.Equal(t, 2, *length.Expected)

	dir := got[1]
	assert.Equal(t, "invalid_wind_direction", dir.Kind)
	assert.Equal(t, []float64{400}, dir.Values)
	assert.Nil(t, dir.Actual)
	assert.Equal(t, "wind direction outside [0, 360]: 400", dir.Message)
}

// --- helpers ---

func readMockCases(t *testing.T) []mockCase {
	t.Helper()

	path := filepath.Join("..", "..", "data", "mock", "soundings.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cases []mockCase
	require.NoError(t, json.Unmarshal(data, &cases))
	return cases
}
