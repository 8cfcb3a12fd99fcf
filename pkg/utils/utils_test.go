package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestElapsedSecondsFloors(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 42, ElapsedSeconds(start, start.Add(42*time.Second+900*time.Millisecond)))
	assert.Equal(t, 0, ElapsedSeconds(start, start.Add(-time.Second)))
}

func TestSyncErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewSyncError("update question", 2, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "sync failed at update question (question 2): connection reset", err.Error())
	assert.Equal(t, "sync failed at create questionnaire: connection reset",
		NewSyncError("create questionnaire", -1, cause).Error())
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Violations: []FieldViolation{{"name", "required"}, {"questions[0].text", "required"}}}
	assert.Equal(t, "validation failed: name required; questions[0].text required", err.Error())
}

func TestFormatRFC3339(t *testing.T) {
	assert.Equal(t, "", FormatRFC3339(time.Time{}))
	assert.Equal(t, "2026-01-01T10:00:00Z", FormatRFC3339(time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)))
}
