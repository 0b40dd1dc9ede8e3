package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRaw() RawInputs {
	return RawInputs{
		Age:              "55",
		TotalCholesterol: "213",
		HDLCholesterol:   "50",
		SystolicBP:       "120",
	}
}

func TestParseInputs(t *testing.T) {
	t.Run("parses form values", func(t *testing.T) {
		raw := validRaw()
		raw.Age = " 55.5 "
		raw.Smoker = true
		raw.OnHypertensionMeds = true

		in, err := ParseInputs(raw)
		require.NoError(t, err)
		assert.Equal(t, PatientInputs{
			Age:                55.5,
			TotalCholesterol:   213,
			HDLCholesterol:     50,
			SystolicBP:         120,
			Smoker:             true,
			OnHypertensionMeds: true,
		}, in)
	})

	tests := []struct {
		name    string
		mutate  func(*RawInputs)
		field   string
		wantErr error
	}{
		{"empty age", func(r *RawInputs) { r.Age = "" }, FieldAge, ErrMissingInput},
		{"blank total cholesterol", func(r *RawInputs) { r.TotalCholesterol = "   " }, FieldTotalCholesterol, ErrMissingInput},
		{"non numeric hdl", func(r *RawInputs) { r.HDLCholesterol = "fifty" }, FieldHDLCholesterol, ErrMissingInput},
		{"nan systolic bp", func(r *RawInputs) { r.SystolicBP = "NaN" }, FieldSystolicBP, ErrMissingInput},
		{"zero age", func(r *RawInputs) { r.Age = "0" }, FieldAge, ErrNonPositiveInput},
		{"negative hdl", func(r *RawInputs) { r.HDLCholesterol = "-3" }, FieldHDLCholesterol, ErrNonPositiveInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)

			_, err := ParseInputs(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}

	t.Run("reports first failing field in form order", func(t *testing.T) {
		raw := validRaw()
		raw.Age = ""
		raw.SystolicBP = "0"

		_, err := ParseInputs(raw)
		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, FieldAge, fe.Field)
		assert.ErrorIs(t, err, ErrMissingInput)
	})
}

func TestParseInputsOutOfRange(t *testing.T) {
	tests := []struct {
		name    string
		age     string
		want    float64
		wantErr error
	}{
		{"overflowing literal matches Inf", "1e400", math.Inf(1), nil},
		{"explicit Inf", "Inf", math.Inf(1), nil},
		{"negative overflow", "-1e400", 0, ErrNonPositiveInput},
		{"explicit negative Inf", "-Inf", 0, ErrNonPositiveInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			raw.Age = tt.age

			in, err := ParseInputs(raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, in.Age)

			_, err = Evaluate(in, Profile{Sex: Male, Race: White})
			assert.ErrorIs(t, err, ErrInvalidResult)
		})
	}
}

func TestParseProfile(t *testing.T) {
	tests := []struct {
		name     string
		sex      string
		race     string
		expected Profile
	}{
		{"defaults", "", "", Profile{Female, White}},
		{"canonical", "male", "african_american", Profile{Male, AfricanAmerican}},
		{"mixed case", "Female", "White", Profile{Female, White}},
		{"hyphenated race", "m", "African-American", Profile{Male, AfricanAmerican}},
		{"spaced race", " f ", "african american", Profile{Female, AfricanAmerican}},
		{"short race", "male", "AA", Profile{Male, AfricanAmerican}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseProfile(tt.sex, tt.race)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
		})
	}

	t.Run("unknown sex", func(t *testing.T) {
		_, err := ParseProfile("other", "white")
		assert.ErrorIs(t, err, ErrUnsupportedProfile)

		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, FieldSex, fe.Field)
	})

	t.Run("unknown race", func(t *testing.T) {
		_, err := ParseProfile("male", "hispanic")
		assert.ErrorIs(t, err, ErrUnsupportedProfile)

		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, FieldRace, fe.Field)
	})
}
