package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculator(t *testing.T) {
	var buf bytes.Buffer
	calc := NewCalculator(slog.New(slog.NewJSONHandler(&buf, nil)))

	t.Run("calculates", func(t *testing.T) {
		buf.Reset()
		result, err := calc.Calculate(context.Background(), validRaw(), "male", "white")
		require.NoError(t, err)
		assert.Equal(t, "5.38%", result.String())
		assert.Equal(t, "Your estimated 10-year risk of ASCVD is 5.38%", result.Sentence())

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "Risk calculated", entry["msg"])
		assert.Equal(t, "male/white", entry["profile"])
		assert.NotContains(t, entry, "age")
		assert.NotContains(t, entry, "total_cholesterol")
	})

	t.Run("rejects missing input", func(t *testing.T) {
		raw := validRaw()
		raw.HDLCholesterol = ""

		_, err := calc.Calculate(context.Background(), raw, "female", "white")
		assert.ErrorIs(t, err, ErrMissingInput)
		assert.Equal(t, "missing_input", Outcome(err))
	})

	t.Run("rejects unsupported profile", func(t *testing.T) {
		_, err := calc.Calculate(context.Background(), validRaw(), "male", "martian")
		assert.ErrorIs(t, err, ErrUnsupportedProfile)
	})

	t.Run("honors cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := calc.Calculate(ctx, validRaw(), "male", "white")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("nil logger", func(t *testing.T) {
		result, err := NewCalculator(nil).Calculate(context.Background(), validRaw(), "", "")
		require.NoError(t, err)
		assert.Equal(t, "2.05%", result.String())
	})
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{nil, "ok"},
		{fieldErr(FieldAge, ErrMissingInput), "missing_input"},
		{ErrNonPositiveInput, "non_positive_input"},
		{ErrUnsupportedProfile, "unsupported_profile"},
		{ErrInvalidResult, "invalid_result"},
		{context.DeadlineExceeded, "canceled"},
		{assert.AnError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Outcome(tt.err))
		})
	}
}
