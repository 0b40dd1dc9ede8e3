package risk

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Sex string

const (
	Female Sex = "female"
	Male   Sex = "male"
)

type Race string

const (
	White           Race = "white"
	AfricanAmerican Race = "african_american"
)

// Profile selects one coefficient set. It is comparable and used directly as a map key.
type Profile struct {
	Sex  Sex  `json:"sex"`
	Race Race `json:"race"`
}

func (p Profile) String() string {
	return string(p.Sex) + "/" + string(p.Race)
}

// PatientInputs holds the clinical values for one evaluation.
type PatientInputs struct {
	Age                float64 `json:"age"`
	TotalCholesterol   float64 `json:"total_cholesterol"`
	HDLCholesterol     float64 `json:"hdl_cholesterol"`
	SystolicBP         float64 `json:"systolic_bp"`
	Smoker             bool    `json:"smoker"`
	Diabetes           bool    `json:"diabetes"`
	OnHypertensionMeds bool    `json:"on_hypertension_meds"`
}

// Result is a 10-year risk percentage in [0, 100], rounded to two decimals.
type Result struct {
	Percent decimal.Decimal `json:"percent"`
	Profile Profile         `json:"profile"`
}

func (r Result) Float64() float64 {
	f, _ := r.Percent.Float64()
	return f
}

func (r Result) String() string {
	return r.Percent.StringFixed(2) + "%"
}

// Sentence renders the result the way the calculator screen shows it.
func (r Result) Sentence() string {
	return fmt.Sprintf("Your estimated 10-year risk of ASCVD is %s", r.String())
}
