package utils

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrQuestionnaireNotFound = errors.New("questionnaire not found")
	ErrQuestionNotFound      = errors.New("question not found")
	ErrRunNotStarted         = errors.New("run not started")
	ErrCommitInFlight        = errors.New("a save is already in progress for this draft")
	ErrMissingSession        = errors.New("missing session id")
	ErrInvalidInput          = errors.New("invalid input")
	ErrDatabaseError         = errors.New("database error")
)

// FieldViolation names one failed rule, e.g. {"questions[1].text", "required"}.
type FieldViolation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError is raised before any store call; nothing has been written.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+" "+v.Rule)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// SyncError reports the store step that failed during a commit or submission.
// Steps before it may already be persisted when the store is not transactional.
type SyncError struct {
	Step          string
	QuestionIndex int
	Err           error
}

func (e *SyncError) Error() string {
	if e.QuestionIndex >= 0 {
		return fmt.Sprintf("sync failed at %s (question %d): %v", e.Step, e.QuestionIndex, e.Err)
	}
	return fmt.Sprintf("sync failed at %s: %v", e.Step, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func NewSyncError(step string, questionIndex int, err error) *SyncError {
	return &SyncError{Step: step, QuestionIndex: questionIndex, Err: err}
}
