package database

import (
	"time"

	"github.com/google/uuid"
)

// CalculationLog records that a calculation happened and how it ended
type CalculationLog struct {
	ID         string    `json:"id" db:"id"`
	Profile    string    `json:"profile" db:"profile"`
	Outcome    string    `json:"outcome" db:"outcome"`
	DurationUS int64     `json:"duration_us" db:"duration_us"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// CalculationStat aggregates calculation logs by profile and outcome
type CalculationStat struct {
	Profile       string  `json:"profile"`
	Outcome       string  `json:"outcome"`
	Count         int64   `json:"count"`
	AvgDurationUS float64 `json:"avg_duration_us"`
}

func NewCalculationLog(profile, outcome string, d time.Duration) *CalculationLog {
	return &CalculationLog{
		ID:         uuid.New().String(),
		Profile:    profile,
		Outcome:    outcome,
		DurationUS: d.Microseconds(),
		CreatedAt:  time.Now().UTC(),
	}
}
