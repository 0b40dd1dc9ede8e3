package risk

import (
	"math"

	"github.com/shopspring/decimal"
)

// Evaluate computes the 10-year ASCVD risk for in using the coefficients of p.
// It is pure and safe for concurrent use.
func Evaluate(in PatientInputs, p Profile) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}

	c, ok := coefficients[p]
	if !ok {
		return Result{}, ErrUnsupportedProfile
	}

	pct := percent(c, terms(c, in))
	if math.IsNaN(pct) || math.IsInf(pct, 0) || pct < 0 || pct > 100 {
		return Result{}, ErrInvalidResult
	}

	return Result{
		Percent: decimal.NewFromFloat(pct).Round(2),
		Profile: p,
	}, nil
}

func validate(in PatientInputs) error {
	fields := []struct {
		name  string
		value float64
	}{
		{FieldAge, in.Age},
		{FieldTotalCholesterol, in.TotalCholesterol},
		{FieldHDLCholesterol, in.HDLCholesterol},
		{FieldSystolicBP, in.SystolicBP},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) {
			return fieldErr(f.name, ErrMissingInput)
		}
		if f.value <= 0 {
			return fieldErr(f.name, ErrNonPositiveInput)
		}
	}
	return nil
}

// terms is the individual sum of the equation before centering on the profile mean.
func terms(c CoefficientSet, in PatientInputs) float64 {
	lnAge := math.Log(in.Age)
	lnTC := math.Log(in.TotalCholesterol)
	lnHDL := math.Log(in.HDLCholesterol)
	lnSBP := math.Log(in.SystolicBP)

	sum := c.Age*lnAge +
		c.SqAge*lnAge*lnAge +
		c.TotalChol*lnTC +
		c.AgeTotalChol*lnAge*lnTC +
		c.HDL*lnHDL +
		c.AgeHDL*lnAge*lnHDL

	if in.OnHypertensionMeds {
		sum += c.OnMeds * lnSBP
		if c.AgeOnMeds != 0 {
			sum += c.AgeOnMeds * lnAge * lnSBP
		}
	} else {
		sum += c.OffMeds * lnSBP
		if c.AgeOffMeds != 0 {
			sum += c.AgeOffMeds * lnAge * lnSBP
		}
	}

	if in.Smoker {
		sum += c.Smoker
		if c.AgeSmoker != 0 {
			sum += c.AgeSmoker * lnAge
		}
	}

	if in.Diabetes {
		sum += c.Diabetes
	}

	return sum
}

func percent(c CoefficientSet, sum float64) float64 {
	return 100 * (1 - math.Pow(c.BaselineSurvival, math.Exp(sum-c.MeanTerms)))
}
