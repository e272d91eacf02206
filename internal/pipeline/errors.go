package pipeline

import (
	"errors"
	"fmt"
)

// User input errors. Callers map these to client-facing messages.
var (
	ErrEmptyTask    = errors.New("task description is empty")
	ErrEmptyVault   = errors.New("your prompt vault is empty; add prompts to use the planner")
	ErrNoCandidates = errors.New("no suitable prompts found in your vault for this task; try adding more relevant prompts")
)

// ErrInvalidStep marks a malformed chain step. It is a contract error, not a
// user input error.
var ErrInvalidStep = errors.New("invalid chain step")

// IsUserError reports whether err is caused by the caller's input rather than
// a dependency or programming fault.
func IsUserError(err error) bool {
	return errors.Is(err, ErrEmptyTask) || errors.Is(err, ErrEmptyVault) || errors.Is(err, ErrNoCandidates)
}

// StepError reports the chain step at which generation failed.
type StepError struct {
	Step     int
	PromptID int64
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (prompt %d): %v", e.Step, e.PromptID, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
