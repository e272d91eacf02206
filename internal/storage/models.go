package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidPrompt is returned when a prompt is missing required fields.
var ErrInvalidPrompt = errors.New("invalid prompt")

// Prompt is a reusable instruction stored in an owner's vault.
type Prompt struct {
	ID          int64     `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags"`
	Model       string    `json:"model,omitempty"`
	Public      bool      `json:"public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PromptFilter narrows ListPrompts. Zero values match everything.
type PromptFilter struct {
	Tag    string
	Search string
	Limit  int
}

// PromptUpdate carries the fields to change on an existing prompt.
// Nil fields are left untouched.
type PromptUpdate struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Content     *string   `json:"content"`
	Tags        *[]string `json:"tags"`
	Model       *string   `json:"model"`
	Public      *bool     `json:"public"`
}

// Run statuses.
const (
	RunCompleted = "completed"
	RunFailed    = "failed"
	RunDegraded  = "degraded"
)

// Run records one prompt chain execution.
type Run struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Status      string    `json:"status"`
	StepCount   int       `json:"step_count"`
	FinalAnswer string    `json:"final_answer"`
	TraceJSON   string    `json:"-"` // JSON array stored as text
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
