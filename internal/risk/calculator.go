package risk

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Calculator runs the full pipeline a client request goes through: profile
// selection, input parsing, evaluation.
type Calculator struct {
	logger *slog.Logger
}

// NewCalculator creates a calculator. A nil logger discards output.
func NewCalculator(logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Calculator{logger: logger}
}

// Calculate parses and evaluates one submission.
func (c *Calculator) Calculate(ctx context.Context, raw RawInputs, sex, race string) (Result, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	profile, err := ParseProfile(sex, race)
	if err != nil {
		c.logOutcome(ctx, "", err, time.Since(start))
		return Result{}, err
	}

	in, err := ParseInputs(raw)
	if err != nil {
		c.logOutcome(ctx, profile.String(), err, time.Since(start))
		return Result{}, err
	}

	c.logger.DebugContext(ctx, "Evaluating risk",
		"profile", profile.String(),
		"age", in.Age,
		"total_cholesterol", in.TotalCholesterol,
		"hdl_cholesterol", in.HDLCholesterol,
		"systolic_bp", in.SystolicBP,
		"smoker", in.Smoker,
		"diabetes", in.Diabetes,
		"on_hypertension_meds", in.OnHypertensionMeds,
	)

	result, err := Evaluate(in, profile)
	c.logOutcome(ctx, profile.String(), err, time.Since(start))
	return result, err
}

func (c *Calculator) logOutcome(ctx context.Context, profile string, err error, d time.Duration) {
	if err == nil {
		c.logger.InfoContext(ctx, "Risk calculated",
			"profile", profile,
			"outcome", "ok",
			"duration_us", d.Microseconds(),
		)
		return
	}

	attrs := []any{
		"profile", profile,
		"outcome", Outcome(err),
		"error", err.Error(),
		"duration_us", d.Microseconds(),
	}
	if errors.Is(err, ErrInvalidResult) {
		c.logger.WarnContext(ctx, "Risk calculation failed", attrs...)
		return
	}
	c.logger.InfoContext(ctx, "Risk calculation rejected", attrs...)
}

// Outcome is a short label for err, used in logs, metrics and API error codes.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingInput):
		return "missing_input"
	case errors.Is(err, ErrNonPositiveInput):
		return "non_positive_input"
	case errors.Is(err, ErrUnsupportedProfile):
		return "unsupported_profile"
	case errors.Is(err, ErrInvalidResult):
		return "invalid_result"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
