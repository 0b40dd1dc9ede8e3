package risk

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// RawInputs is the form as a client submits it: numbers as typed, flags as toggled.
type RawInputs struct {
	Age                string
	TotalCholesterol   string
	HDLCholesterol     string
	SystolicBP         string
	Smoker             bool
	Diabetes           bool
	OnHypertensionMeds bool
}

// ParseInputs converts raw form values into PatientInputs. Fields are checked in
// form order and the first failure is returned as a *FieldError.
func ParseInputs(raw RawInputs) (PatientInputs, error) {
	in := PatientInputs{
		Smoker:             raw.Smoker,
		Diabetes:           raw.Diabetes,
		OnHypertensionMeds: raw.OnHypertensionMeds,
	}

	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{FieldAge, raw.Age, &in.Age},
		{FieldTotalCholesterol, raw.TotalCholesterol, &in.TotalCholesterol},
		{FieldHDLCholesterol, raw.HDLCholesterol, &in.HDLCholesterol},
		{FieldSystolicBP, raw.SystolicBP, &in.SystolicBP},
	}
	for _, f := range fields {
		v, err := parseNumber(f.raw)
		if err != nil {
			return PatientInputs{}, fieldErr(f.name, err)
		}
		*f.dst = v
	}

	return in, nil
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMissingInput
	}
	// literals beyond float64 range parse to ±Inf, the same value "Inf" gives
	v, err := strconv.ParseFloat(s, 64)
	if (err != nil && !errors.Is(err, strconv.ErrRange)) || math.IsNaN(v) {
		return 0, ErrMissingInput
	}
	if v <= 0 {
		return 0, ErrNonPositiveInput
	}
	return v, nil
}

// ParseProfile maps the sex and race selections to a Profile. Blank values fall back
// to female and white, the form's initial selection.
func ParseProfile(sex, race string) (Profile, error) {
	s, ok := parseSex(sex)
	if !ok {
		return Profile{}, fieldErr(FieldSex, ErrUnsupportedProfile)
	}
	r, ok := parseRace(race)
	if !ok {
		return Profile{}, fieldErr(FieldRace, ErrUnsupportedProfile)
	}

	p := Profile{Sex: s, Race: r}
	if _, ok := coefficients[p]; !ok {
		return Profile{}, ErrUnsupportedProfile
	}
	return p, nil
}

func parseSex(s string) (Sex, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "female", "f":
		return Female, true
	case "male", "m":
		return Male, true
	}
	return "", false
}

func parseRace(s string) (Race, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	switch normalized {
	case "", "white":
		return White, true
	case "african_american", "aa":
		return AfricanAmerican, true
	}
	return "", false
}
