package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"surveyor/internal/models/request_models"
	"surveyor/internal/services"
	"surveyor/pkg/middleware"
	"surveyor/pkg/utils"
)

type RunController struct {
	runs services.RunServiceInterface
	log  *zap.Logger
}

func NewRunController(runs services.RunServiceInterface, log *zap.Logger) *RunController {
	return &RunController{runs: runs, log: log}
}

// StartRun godoc
// @Summary Start answering a questionnaire
// @Description Loads the questions, resumes saved answers and starts the timer
// @Tags Runs
// @Produce json
// @Param id path int true "Questionnaire ID"
// @Param X-Session-ID header string true "Client session"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /runs/{id}/start [post]
func (rc *RunController) StartRun(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, "Invalid questionnaire ID")
		return
	}

	view, err := rc.runs.Start(c.Request.Context(), middleware.SessionID(c), id)
	if err != nil {
		utils.HandleServiceError(c, rc.log, err)
		return
	}
	utils.RespondSuccess(c, view, "Run started")
}

// RecordAnswer godoc
// @Summary Record an answer
// @Description value is a string for text and single-choice questions, a list of strings for multiple-choice
// @Tags Runs
// @Accept json
// @Produce json
// @Param id path int true "Questionnaire ID"
// @Param questionId path int true "Question ID"
// @Param request body request_models.AnswerRequest true "Answer"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /runs/{id}/answers/{questionId} [put]
func (rc *RunController) RecordAnswer(c *gin.Context) {
	id, ok := pathID(c, "id")
	questionID, okQuestion := pathID(c, "questionId")
	if !ok || !okQuestion {
		utils.RespondError(c, http.StatusBadRequest, "Invalid questionnaire or question ID")
		return
	}

	var req request_models.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		utils.RespondError(c, http.StatusBadRequest, "Answer must be a string or a list of strings")
		return
	}

	answers, err := rc.runs.RecordAnswer(c.Request.Context(), middleware.SessionID(c), id, questionID, *req.Value)
	if err != nil {
		utils.HandleServiceError(c, rc.log, err)
		return
	}
	utils.RespondSuccess(c, answers, "Answer recorded")
}

// SubmitRun godoc
// @Summary Submit answers
// @Tags Runs
// @Produce json
// @Param id path int true "Questionnaire ID"
// @Success 201 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /runs/{id}/submit [post]
func (rc *RunController) SubmitRun(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, "Invalid questionnaire ID")
		return
	}

	res, err := rc.runs.Submit(c.Request.Context(), middleware.SessionID(c), id)
	if err != nil {
		utils.HandleServiceError(c, rc.log, err)
		return
	}
	utils.RespondWithCode(c, http.StatusCreated, res, "Answers submitted successfully!")
}
