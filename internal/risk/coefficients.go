package risk

// CoefficientSet is one row group of the Pooled Cohort Equations (Goff et al. 2013).
// Age-prefixed fields are interaction terms with ln(age).
type CoefficientSet struct {
	Age              float64 `json:"ln_age"`
	SqAge            float64 `json:"ln_age_squared"`
	TotalChol        float64 `json:"ln_total_chol"`
	AgeTotalChol     float64 `json:"ln_age_x_ln_total_chol"`
	HDL              float64 `json:"ln_hdl"`
	AgeHDL           float64 `json:"ln_age_x_ln_hdl"`
	OnMeds           float64 `json:"ln_treated_sbp"`
	AgeOnMeds        float64 `json:"ln_age_x_ln_treated_sbp"`
	OffMeds          float64 `json:"ln_untreated_sbp"`
	AgeOffMeds       float64 `json:"ln_age_x_ln_untreated_sbp"`
	Smoker           float64 `json:"smoker"`
	AgeSmoker        float64 `json:"ln_age_x_smoker"`
	Diabetes         float64 `json:"diabetes"`
	BaselineSurvival float64 `json:"baseline_survival"`
	MeanTerms        float64 `json:"mean_terms"`
}

var coefficients = map[Profile]CoefficientSet{
	{Female, White}: {
		Age:              -29.799,
		SqAge:            4.884,
		TotalChol:        13.540,
		AgeTotalChol:     -3.114,
		HDL:              -13.578,
		AgeHDL:           3.149,
		OnMeds:           2.019,
		OffMeds:          1.957,
		Smoker:           7.574,
		AgeSmoker:        -1.665,
		Diabetes:         0.661,
		BaselineSurvival: 0.9665,
		MeanTerms:        -29.18,
	},
	{Female, AfricanAmerican}: {
		Age:              17.114,
		TotalChol:        0.940,
		HDL:              -18.920,
		AgeHDL:           4.475,
		OnMeds:           29.291,
		AgeOnMeds:        -6.432,
		OffMeds:          27.820,
		AgeOffMeds:       -6.087,
		Smoker:           0.691,
		Diabetes:         0.874,
		BaselineSurvival: 0.9533,
		MeanTerms:        86.61,
	},
	{Male, White}: {
		Age:              12.344,
		TotalChol:        11.853,
		AgeTotalChol:     -2.664,
		HDL:              -7.990,
		AgeHDL:           1.769,
		OnMeds:           1.797,
		OffMeds:          1.764,
		Smoker:           7.837,
		AgeSmoker:        -1.795,
		Diabetes:         0.658,
		BaselineSurvival: 0.9144,
		MeanTerms:        61.18,
	},
	{Male, AfricanAmerican}: {
		Age:              2.469,
		TotalChol:        0.302,
		HDL:              -0.307,
		OnMeds:           1.916,
		OffMeds:          1.809,
		Smoker:           0.549,
		Diabetes:         0.645,
		BaselineSurvival: 0.8954,
		MeanTerms:        19.54,
	},
}

var profileOrder = []Profile{
	{Female, White},
	{Female, AfricanAmerican},
	{Male, White},
	{Male, AfricanAmerican},
}

// CoefficientsFor returns a copy of the coefficients for p.
func CoefficientsFor(p Profile) (CoefficientSet, error) {
	c, ok := coefficients[p]
	if !ok {
		return CoefficientSet{}, ErrUnsupportedProfile
	}
	return c, nil
}

// Profiles lists the supported profiles, female before male and white before african_american.
func Profiles() []Profile {
	out := make([]Profile, len(profileOrder))
	copy(out, profileOrder)
	return out
}
