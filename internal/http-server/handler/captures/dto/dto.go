package dto

import "time"

type SubmitResponse struct {
	ID         string    `json:"id"`
	State      string    `json:"state"`
	Watermarks int       `json:"watermarks"`
	CapturedAt time.Time `json:"captured_at"`
}

type OutcomeResponse struct {
	ID        string            `json:"id"`
	State     string            `json:"state"`
	Message   string            `json:"message"`
	Artifacts map[string]string `json:"artifacts"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
