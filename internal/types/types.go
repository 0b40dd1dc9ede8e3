package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mohammedqas189/ASCVD-Calculator/internal/chat"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/resilience"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/risk"
)

// FormNumber is a numeric form field. The mobile client sends what was typed as a
// JSON string; other clients may send a JSON number. Both decode to the same text so
// empty and malformed fields can still be told apart.
type FormNumber string

func (n *FormNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = FormNumber(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("numeric field must be a string or a number: %w", err)
	}
	*n = FormNumber(num.String())
	return nil
}

// CalculateRequest is the calculator form as the mobile client submits it.
type CalculateRequest struct {
	Age                FormNumber `json:"age" example:"55"`
	TotalCholesterol   FormNumber `json:"total_cholesterol" example:"213"`
	HDLCholesterol     FormNumber `json:"hdl_cholesterol" example:"50"`
	SystolicBP         FormNumber `json:"systolic_bp" example:"120"`
	Smoker             bool       `json:"smoker"`
	Diabetes           bool       `json:"diabetes"`
	OnHypertensionMeds bool       `json:"on_hypertension_meds"`
	Sex                string     `json:"sex" example:"male"`
	Race               string     `json:"race" example:"white"`
}

func (r CalculateRequest) RawInputs() risk.RawInputs {
	return risk.RawInputs{
		Age:                string(r.Age),
		TotalCholesterol:   string(r.TotalCholesterol),
		HDLCholesterol:     string(r.HDLCholesterol),
		SystolicBP:         string(r.SystolicBP),
		Smoker:             r.Smoker,
		Diabetes:           r.Diabetes,
		OnHypertensionMeds: r.OnHypertensionMeds,
	}
}

type CalculateResponse struct {
	RiskPercent float64 `json:"risk_percent" example:"5.38"`
	Display     string  `json:"display" example:"5.38%"`
	Message     string  `json:"message" example:"Your estimated 10-year risk of ASCVD is 5.38%"`
	Profile     string  `json:"profile" example:"male/white"`
}

func NewCalculateResponse(res risk.Result) CalculateResponse {
	return CalculateResponse{
		RiskPercent: res.Float64(),
		Display:     res.String(),
		Message:     res.Sentence(),
		Profile:     res.Profile.String(),
	}
}

type ProfileInfo struct {
	Sex          risk.Sex            `json:"sex"`
	Race         risk.Race           `json:"race"`
	Coefficients risk.CoefficientSet `json:"coefficients"`
}

type ProfilesResponse struct {
	Profiles []ProfileInfo `json:"profiles"`
}

type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SendMessageRequest struct {
	Text string `json:"text" example:"What does my risk mean?"`
}

type MessagesResponse struct {
	SessionID string         `json:"session_id"`
	Messages  []chat.Message `json:"messages"`
}

type HealthResponse struct {
	Status       string                        `json:"status"`
	Timestamp    string                        `json:"timestamp"`
	Version      string                        `json:"version"`
	Dependencies []resilience.DependencyHealth `json:"dependencies"`
}
