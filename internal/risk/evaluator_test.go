package risk

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseline = PatientInputs{
	Age:              55,
	TotalCholesterol: 213,
	HDLCholesterol:   50,
	SystolicBP:       120,
}

func withFlags(in PatientInputs, smoker, diabetes, meds bool) PatientInputs {
	in.Smoker = smoker
	in.Diabetes = diabetes
	in.OnHypertensionMeds = meds
	return in
}

func TestEvaluateRegressionFixtures(t *testing.T) {
	older := PatientInputs{
		Age:                60,
		TotalCholesterol:   240,
		HDLCholesterol:     40,
		SystolicBP:         150,
		Smoker:             true,
		OnHypertensionMeds: true,
	}

	tests := []struct {
		name     string
		in       PatientInputs
		profile  Profile
		expected string
	}{
		{"female white baseline", baseline, Profile{Female, White}, "2.05%"},
		{"female african american baseline", baseline, Profile{Female, AfricanAmerican}, "3.03%"},
		{"male white baseline", baseline, Profile{Male, White}, "5.38%"},
		{"male african american baseline", baseline, Profile{Male, AfricanAmerican}, "6.07%"},
		{"female white all flags", withFlags(baseline, true, true, true), Profile{Female, White}, "12.47%"},
		{"female african american all flags", withFlags(baseline, true, true, true), Profile{Female, AfricanAmerican}, "20.11%"},
		{"male white all flags", withFlags(baseline, true, true, true), Profile{Male, White}, "21.20%"},
		{"male african american all flags", withFlags(baseline, true, true, true), Profile{Male, AfricanAmerican}, "29.19%"},
		{"male white treated only", withFlags(baseline, false, false, true), Profile{Male, White}, "6.28%"},
		{"male white smoker only", withFlags(baseline, true, false, false), Profile{Male, White}, "10.00%"},
		{"male white diabetes only", withFlags(baseline, false, true, false), Profile{Male, White}, "10.14%"},
		{"female white older smoker treated", older, Profile{Female, White}, "17.39%"},
		{"female african american older smoker treated", older, Profile{Female, AfricanAmerican}, "27.61%"},
		{"male white older smoker treated", older, Profile{Male, White}, "27.50%"},
		{"male african american older smoker treated", older, Profile{Male, AfricanAmerican}, "31.76%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Evaluate(tt.in, tt.profile)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.String())
			assert.Equal(t, tt.profile, result.Profile)
		})
	}
}

func TestEvaluateAllProfilesInRange(t *testing.T) {
	for _, p := range Profiles() {
		t.Run(p.String(), func(t *testing.T) {
			result, err := Evaluate(baseline, p)
			require.NoError(t, err)
			assert.Greater(t, result.Float64(), 0.0)
			assert.Less(t, result.Float64(), 100.0)
		})
	}
}

func TestEvaluateValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PatientInputs)
		field   string
		wantErr error
	}{
		{"zero age", func(in *PatientInputs) { in.Age = 0 }, FieldAge, ErrNonPositiveInput},
		{"negative total cholesterol", func(in *PatientInputs) { in.TotalCholesterol = -1 }, FieldTotalCholesterol, ErrNonPositiveInput},
		{"zero hdl", func(in *PatientInputs) { in.HDLCholesterol = 0 }, FieldHDLCholesterol, ErrNonPositiveInput},
		{"negative systolic bp", func(in *PatientInputs) { in.SystolicBP = -120 }, FieldSystolicBP, ErrNonPositiveInput},
		{"nan age", func(in *PatientInputs) { in.Age = math.NaN() }, FieldAge, ErrMissingInput},
		{"nan systolic bp", func(in *PatientInputs) { in.SystolicBP = math.NaN() }, FieldSystolicBP, ErrMissingInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseline
			tt.mutate(&in)

			_, err := Evaluate(in, Profile{Male, White})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestEvaluateUnsupportedProfile(t *testing.T) {
	tests := []Profile{
		{Sex: "other", Race: White},
		{Sex: Male, Race: "asian"},
		{},
	}

	for _, p := range tests {
		t.Run(p.String(), func(t *testing.T) {
			_, err := Evaluate(baseline, p)
			assert.ErrorIs(t, err, ErrUnsupportedProfile)
		})
	}
}

func TestEvaluateInvalidResult(t *testing.T) {
	in := baseline
	in.Age = math.Inf(1)

	_, err := Evaluate(in, Profile{Male, White})
	assert.ErrorIs(t, err, ErrInvalidResult)
}

func TestEvaluateSaturatesAtHundred(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PatientInputs)
	}{
		{"extreme age", func(in *PatientInputs) { in.Age = 1e6 }},
		{"vanishing hdl", func(in *PatientInputs) { in.HDLCholesterol = 1e-9 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseline
			tt.mutate(&in)

			result, err := Evaluate(in, Profile{Male, White})
			require.NoError(t, err)
			assert.Equal(t, "100.00%", result.String())
		})
	}
}

func TestEvaluateMonotonicInTotalCholesterol(t *testing.T) {
	in := PatientInputs{Age: 55, HDLCholesterol: 35, SystolicBP: 120}
	expected := []string{"1.71%", "2.27%", "2.83%", "3.40%", "4.11%"}

	prev := -1.0
	for i, tc := range []float64{130, 170, 210, 250, 300} {
		in.TotalCholesterol = tc
		result, err := Evaluate(in, Profile{Female, White})
		require.NoError(t, err)
		assert.Equal(t, expected[i], result.String())
		assert.GreaterOrEqual(t, result.Float64(), prev)
		prev = result.Float64()
	}
}

func TestEvaluateIsDeterministicUnderConcurrency(t *testing.T) {
	in := withFlags(baseline, true, true, true)
	want, err := Evaluate(in, Profile{Female, AfricanAmerican})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]Result, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Evaluate(in, Profile{Female, AfricanAmerican})
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.True(t, want.Percent.Equal(r.Percent))
	}
}

func BenchmarkEvaluate(b *testing.B) {
	in := withFlags(baseline, true, false, true)
	p := Profile{Male, White}

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := Evaluate(in, p); err != nil {
				b.Fatal(err)
			}
		}
	})
}
