package questionnaire_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"surveyor/internal/config"
	"surveyor/internal/draft"
	"surveyor/internal/repositories"
	"surveyor/internal/services"
)

var Module = fx.Provide(
	provideQuestionnaireRepo,
	provideQuestionnaireService,
	provideReconciliationService,
	provideEditorService,
)

func provideQuestionnaireRepo(db *gorm.DB) repositories.QuestionnaireRepository {
	return repositories.NewQuestionnaireRepository(db)
}

func provideQuestionnaireService(repo repositories.QuestionnaireRepository, cfg *config.Config) services.QuestionnaireServiceInterface {
	return services.NewQuestionnaireService(repo, cfg.FetchConcurrency)
}

func provideReconciliationService(repo repositories.QuestionnaireRepository, cfg *config.Config, log *zap.Logger) services.ReconciliationServiceInterface {
	return services.NewReconciliationService(repo, cfg.RequireQuestionsOnEdit, log)
}

func provideEditorService(
	reconciler services.ReconciliationServiceInterface,
	questionnaires services.QuestionnaireServiceInterface,
	cache *draft.Cache,
	cfg *config.Config,
	log *zap.Logger) services.EditorServiceInterface {

	sessions := services.NewEditSessionRegistry(cfg.SessionIdleTTL, nil)
	return services.NewEditorService(reconciler, questionnaires, cache, sessions, log)
}
