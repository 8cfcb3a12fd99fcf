package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	return c.GetString("trace_id")
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	RespondWithCode(c, http.StatusOK, data, message)
}

func RespondWithCode(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, APIResponse{
		Status:  "success",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	respondError(c, code, message, nil)
}

func respondError(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

// HandleServiceError maps service errors onto HTTP responses and logs the ones
// the client cannot fix.
func HandleServiceError(c *gin.Context, log *zap.Logger, err error) {
	var validationErr *ValidationError
	var syncErr *SyncError

	switch {
	case errors.As(err, &validationErr):
		respondError(c, http.StatusBadRequest, "Please fill in all fields and add at least one valid question.", validationErr.Violations)
	case errors.Is(err, ErrQuestionnaireNotFound):
		RespondError(c, http.StatusNotFound, "Questionnaire not found")
	case errors.Is(err, ErrQuestionNotFound):
		RespondError(c, http.StatusNotFound, "Question not found")
	case errors.Is(err, ErrRunNotStarted):
		RespondError(c, http.StatusConflict, "Run has not been started")
	case errors.Is(err, ErrCommitInFlight):
		RespondError(c, http.StatusConflict, "A save is already in progress")
	case errors.Is(err, ErrMissingSession):
		RespondError(c, http.StatusBadRequest, "Missing X-Session-ID header")
	case errors.Is(err, ErrInvalidInput):
		RespondError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &syncErr):
		log.Error("sync error", zap.String("trace_id", traceID(c)), zap.String("step", syncErr.Step),
			zap.Int("question_index", syncErr.QuestionIndex), zap.Error(syncErr.Err))
		RespondError(c, http.StatusBadGateway, "Saving failed, your draft is kept. Please retry.")
	case errors.Is(err, ErrDatabaseError):
		log.Error("database error", zap.String("trace_id", traceID(c)), zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		log.Error("unknown error", zap.String("trace_id", traceID(c)), zap.Error(err))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
