package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/storm-sounding-validator/internal/domain"
	"github.com/couchcryptid/storm-sounding-validator/internal/observability"
	"github.com/couchcryptid/storm-sounding-validator/internal/validate"
)

// SoundingValidator implements Transformer: it decodes a raw sounding, runs
// the consistency checks, and builds the report.
type SoundingValidator struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewSoundingValidator creates a SoundingValidator.
func NewSoundingValidator(logger *slog.Logger, metrics *observability.Metrics) *SoundingValidator {
	return &SoundingValidator{
		logger:  logger,
		metrics: metrics,
	}
}

// Transform decodes and validates one raw event. The returned error is only
// non-nil when the payload is not a sounding; consistency failures are
// reported in the Report.
func (v *SoundingValidator) Transform(_ context.Context, raw domain.RawEvent) (domain.Report, error) {
	snd, err := domain.ParseRawSounding(raw)
	if err != nil {
		return domain.Report{}, err
	}
	return v.Evaluate(snd), nil
}

// Evaluate validates a decoded sounding and records the outcome.
func (v *SoundingValidator) Evaluate(snd domain.Sounding) domain.Report {
	report := domain.NewReport(snd, Violations(validate.Validate(snd)))

	if report.Valid {
		v.metrics.SoundingsValidated.WithLabelValues("valid").Inc()
		return report
	}

	v.metrics.SoundingsValidated.WithLabelValues("invalid").Inc()
	for _, violation := range report.Violations {
		v.metrics.Violations.WithLabelValues(violation.Kind).Inc()
	}
	v.logger.Debug("sounding failed validation",
		"sounding_id", report.SoundingID,
		"station", report.StationID,
		"violations", len(report.Violations),
	)
	return report
}

// Violations flattens a Validate result into report violations. It returns
// nil for a nil error.
func Violations(err error) []domain.Violation {
	var verrs *validate.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]domain.Violation, 0, verrs.Len())
	for _, e := range verrs.Errors() {
		v := domain.Violation{
			Kind:    e.Kind().String(),
			Field:   e.Field(),
			Values:  e.Values(),
			Message: e.Error(),
		}
		if e.Kind() == validate.InvalidVectorLength {
			actual, expected := e.Lengths()
			v.Actual = &actual
			v.Expected = &expected
		}
		out = append(out, v)
	}
	return out
}
