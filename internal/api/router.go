package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"surveyor/internal/api/controllers"
	"surveyor/internal/config"
	"surveyor/pkg/middleware"
	"surveyor/pkg/utils"
)

func NewRouter(
	cfg *config.Config,
	log *zap.Logger,
	questionnaireController *controllers.QuestionnaireController,
	draftController *controllers.DraftController,
	runController *controllers.RunController) *gin.Engine {

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.AccessLogMiddleware(log))
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowOrigin))

	RegisterRoutes(r, questionnaireController, draftController, runController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	questionnaireController *controllers.QuestionnaireController,
	draftController *controllers.DraftController,
	runController *controllers.RunController) {

	r.GET("/healthz", func(c *gin.Context) {
		utils.RespondSuccess(c, gin.H{"status": "ok"}, "")
	})

	questionnaires := r.Group("/questionnaires")
	questionnaires.GET("", questionnaireController.ListQuestionnaires)
	questionnaires.GET("/:id", questionnaireController.GetQuestionnaire)
	questionnaires.DELETE("/:id", questionnaireController.DeleteQuestionnaire)

	drafts := r.Group("/drafts/:ref", middleware.SessionMiddleware())
	drafts.POST("/open", draftController.OpenDraft)
	drafts.PATCH("", draftController.UpdateDraft)
	drafts.DELETE("", draftController.DiscardDraft)
	drafts.POST("/save", draftController.SaveDraft)
	drafts.POST("/questions", draftController.AddQuestion)
	drafts.PATCH("/questions/:index", draftController.UpdateQuestion)
	drafts.DELETE("/questions/:index", draftController.RemoveQuestion)
	drafts.POST("/questions/:index/options", draftController.AddOption)
	drafts.PATCH("/questions/:index/options/:opt", draftController.UpdateOption)
	drafts.DELETE("/questions/:index/options/:opt", draftController.RemoveOption)

	runs := r.Group("/runs/:id", middleware.SessionMiddleware())
	runs.POST("/start", runController.StartRun)
	runs.PUT("/answers/:questionId", runController.RecordAnswer)
	runs.POST("/submit", runController.SubmitRun)

	r.NoRoute(func(c *gin.Context) {
		utils.RespondError(c, http.StatusNotFound, "Route not found")
	})
}
