package entity

import "strings"

// DefaultMaxSteps is the step budget used when a request leaves max_steps unset.
const DefaultMaxSteps = 10

type TaskRequest struct {
	ProfileID string `json:"profile_id"`
	Task      string `json:"task"`
	MaxSteps  int    `json:"max_steps,omitempty"`
}

// Normalize trims the text fields and applies the default step budget.
func (r TaskRequest) Normalize() TaskRequest {
	r.ProfileID = strings.TrimSpace(r.ProfileID)
	r.Task = strings.TrimSpace(r.Task)
	if r.MaxSteps == 0 {
		r.MaxSteps = DefaultMaxSteps
	}
	return r
}

func (r TaskRequest) Validate() error {
	if strings.TrimSpace(r.Task) == "" {
		return NewArgumentError("missing task")
	}
	if strings.TrimSpace(r.ProfileID) == "" {
		return NewArgumentError("missing profile_id")
	}
	if r.MaxSteps < 0 {
		return NewArgumentError("max_steps must be positive, got %d", r.MaxSteps)
	}
	return nil
}
