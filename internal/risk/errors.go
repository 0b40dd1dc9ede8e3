package risk

import "errors"

var (
	ErrMissingInput       = errors.New("missing input")
	ErrNonPositiveInput   = errors.New("input must be greater than zero")
	ErrUnsupportedProfile = errors.New("unsupported sex/race profile")
	ErrInvalidResult      = errors.New("computed risk is not a valid percentage")
)

// FieldError ties a validation failure to the input field that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldErr(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}

// Field names used in FieldError and in API error details.
const (
	FieldAge              = "age"
	FieldTotalCholesterol = "total_cholesterol"
	FieldHDLCholesterol   = "hdl_cholesterol"
	FieldSystolicBP       = "systolic_bp"
	FieldSex              = "sex"
	FieldRace             = "race"
)
