package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"surveyor/internal/repositories"
	"surveyor/internal/services"
	"surveyor/pkg/utils"
)

type QuestionnaireController struct {
	questionnaires services.QuestionnaireServiceInterface
	log            *zap.Logger
}

func NewQuestionnaireController(questionnaires services.QuestionnaireServiceInterface, log *zap.Logger) *QuestionnaireController {
	return &QuestionnaireController{questionnaires: questionnaires, log: log}
}

// ListQuestionnaires godoc
// @Summary List questionnaires
// @Description Catalog of saved questionnaires with their question counts
// @Tags Questionnaires
// @Produce json
// @Param sort query string false "created_at, name or question_count" default(created_at)
// @Param dir query string false "asc or desc" default(desc)
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /questionnaires [get]
func (qc *QuestionnaireController) ListQuestionnaires(c *gin.Context) {
	field := repositories.CatalogSortField(c.DefaultQuery("sort", string(repositories.SortByCreatedAt)))
	switch field {
	case repositories.SortByCreatedAt, repositories.SortByName, repositories.SortByQuestionCount:
	default:
		utils.RespondError(c, http.StatusBadRequest, "Invalid sort field")
		return
	}

	var desc bool
	switch strings.ToLower(c.DefaultQuery("dir", "desc")) {
	case "desc":
		desc = true
	case "asc":
	default:
		utils.RespondError(c, http.StatusBadRequest, "Invalid sort direction (must be asc or desc)")
		return
	}

	list, err := qc.questionnaires.List(c.Request.Context(), repositories.CatalogSort{Field: field, Desc: desc})
	if err != nil {
		utils.HandleServiceError(c, qc.log, err)
		return
	}

	utils.RespondSuccess(c, list, "Fetched questionnaires successfully")
}

// GetQuestionnaire godoc
// @Summary Get questionnaire
// @Tags Questionnaires
// @Produce json
// @Param id path int true "Questionnaire ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /questionnaires/{id} [get]
func (qc *QuestionnaireController) GetQuestionnaire(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, "Invalid questionnaire ID")
		return
	}

	q, err := qc.questionnaires.LoadGraph(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, qc.log, err)
		return
	}

	utils.RespondSuccess(c, q, "Fetched questionnaire successfully")
}

// DeleteQuestionnaire godoc
// @Summary Delete questionnaire
// @Description Removes the questionnaire with its questions, options and responses
// @Tags Questionnaires
// @Param id path int true "Questionnaire ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /questionnaires/{id} [delete]
func (qc *QuestionnaireController) DeleteQuestionnaire(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, "Invalid questionnaire ID")
		return
	}

	if err := qc.questionnaires.Delete(c.Request.Context(), id); err != nil {
		utils.HandleServiceError(c, qc.log, err)
		return
	}

	utils.RespondSuccess(c, nil, "Questionnaire deleted successfully")
}
