package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"surveyor/internal/graph"
	"surveyor/internal/models/request_models"
	"surveyor/internal/services"
	"surveyor/pkg/middleware"
	"surveyor/pkg/utils"
)

type DraftController struct {
	editor services.EditorServiceInterface
	log    *zap.Logger
}

func NewDraftController(editor services.EditorServiceInterface, log *zap.Logger) *DraftController {
	return &DraftController{editor: editor, log: log}
}

// mutate runs fn against the session graph of :ref and writes the result.
func (dc *DraftController) mutate(c *gin.Context, message string, fn func(q *graph.Questionnaire) error) {
	ref, ok := draftRef(c)
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, "Invalid draft reference")
		return
	}

	q, err := dc.editor.Mutate(c.Request.Context(), middleware.SessionID(c), ref, fn)
	if err != nil {
		utils.HandleServiceError(c, dc.log, err)
		return
	}
	utils.RespondSuccess(c, q, message)
}

// OpenDraft godoc
// @Summary Open a draft
// @Description Returns the live draft, a resumed one, the stored questionnaire, or a blank one for ref "new"
// @Tags Drafts
// @Produce json
// @Param ref path string true "Questionnaire ID or new"
// @Param X-Session-ID header string true "Client session"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /drafts/{ref}/open [post]
func (dc *DraftController) OpenDraft(c *gin.Context) {
	ref, ok := draftRef(c)
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, "Invalid draft reference")
		return
	}

	q, err := dc.editor.Open(c.Request.Context(), middleware.SessionID(c), ref)
	if err != nil {
		utils.HandleServiceError(c, dc.log, err)
		return
	}
	utils.RespondSuccess(c, q, "Draft opened")
}

// UpdateDraft godoc
// @Summary Rename or describe a draft
// @Tags Drafts
// @Accept json
// @Produce json
// @Param ref path string true "Questionnaire ID or new"
// @Param request body request_models.UpdateDraftRequest true "Fields to change"
// @Success 200 {object} utils.APIResponse
// @Router /drafts/{ref} [patch]
func (dc *DraftController) UpdateDraft(c *gin.Context) {
	var req request_models.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	dc.mutate(c, "Draft updated", func(q *graph.Questionnaire) error {
		if req.Name != nil {
			q.Rename(*req.Name)
		}
		if req.Description != nil {
			q.Describe(*req.Description)
		}
		return nil
	})
}

// AddQuestion godoc
// @Summary Append a question
// @Tags Drafts
// @Accept json
// @Produce json
// @Param ref path string true "Questionnaire ID or new"
// @Param request body request_models.AddQuestionRequest true "Question"
// @Success 200 {object} utils.APIResponse
// @Router /drafts/{ref}/questions [post]
func (dc *DraftController) AddQuestion(c *gin.Context) {
	var req request_models.AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	ref, ok := draftRef(c)
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, "Invalid draft reference")
		return
	}

	q, err := dc.editor.AddQuestion(c.Request.Context(), middleware.SessionID(c), ref, graph.Kind(req.Type), req.Text)
	if err != nil {
		utils.HandleServiceError(c, dc.log, err)
		return
	}
	utils.RespondSuccess(c, q, "Question added")
}

func (dc *DraftController) UpdateQuestion(c *gin.Context) {
	index, ok := pathIndex(c, "index")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, "Invalid question index")
		return
	}
	var req request_models.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	dc.mutate(c, "Question updated", func(q *graph.Questionnaire) error {
		if req.Text != nil {
			if err := q.SetQuestionText(index, *req.Text); err != nil {
				return err
			}
		}
		if req.Type != nil {
			return q.SetQuestionKind(index, graph.Kind(*req.Type))
		}
		return nil
	})
}

func (dc *DraftController) RemoveQuestion(c *gin.Context) {
	index, ok := pathIndex(c, "index")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, "Invalid question index")
		return
	}

	dc.mutate(c, "Question removed", func(q *graph.Questionnaire) error {
		return q.RemoveQuestion(index)
	})
}

func (dc *DraftController) AddOption(c *gin.Context) {
	index, ok := pathIndex(c, "index")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, "Invalid question index")
		return
	}
	var req request_models.OptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	dc.mutate(c, "Option added", func(q *graph.Questionnaire) error {
		_, err := q.AddOption(index, req.Text)
		return err
	})
}

func (dc *DraftController) UpdateOption(c *gin.Context) {
	index, ok := pathIndex(c, "index")
	opt, okOpt := pathIndex(c, "opt")
	if !ok || !okOpt {
		utils.RespondError(c, http.StatusBadRequest, "Invalid question or option index")
		return
	}
	var req request_models.OptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	dc.mutate(c, "Option updated", func(q *graph.Questionnaire) error {
		return q.SetOptionText(index, opt, req.Text)
	})
}

func (dc *DraftController) RemoveOption(c *gin.Context) {
	index, ok := pathIndex(c, "index")
	opt, okOpt := pathIndex(c, "opt")
	if !ok || !okOpt {
		utils.RespondError(c, http.StatusBadRequest, "Invalid question or option index")
		return
	}

	dc.mutate(c, "Option removed", func(q *graph.Questionnaire) error {
		return q.RemoveOption(index, opt)
	})
}

// SaveDraft godoc
// @Summary Save a draft
// @Description Creates or updates the questionnaire in the store. The draft is kept when saving fails.
// @Tags Drafts
// @Produce json
// @Param ref path string true "Questionnaire ID or new"
// @Success 200 {object} utils.APIResponse
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /drafts/{ref}/save [post]
func (dc *DraftController) SaveDraft(c *gin.Context) {
	ref, ok := draftRef(c)
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, "Invalid draft reference")
		return
	}

	q, err := dc.editor.Save(c.Request.Context(), middleware.SessionID(c), ref)
	if err != nil {
		utils.HandleServiceError(c, dc.log, err)
		return
	}

	if _, editing := graph.IDOf(ref); editing {
		utils.RespondSuccess(c, q, "Questionnaire updated successfully!")
		return
	}
	utils.RespondWithCode(c, http.StatusCreated, q, "Questionnaire saved successfully!")
}

func (dc *DraftController) DiscardDraft(c *gin.Context) {
	ref, ok := draftRef(c)
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, "Invalid draft reference")
		return
	}

	if err := dc.editor.Discard(c.Request.Context(), middleware.SessionID(c), ref); err != nil {
		utils.HandleServiceError(c, dc.log, err)
		return
	}
	utils.RespondSuccess(c, nil, "Draft discarded")
}
