package run_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"surveyor/internal/config"
	"surveyor/internal/draft"
	"surveyor/internal/repositories"
	"surveyor/internal/services"
)

var Module = fx.Provide(provideResponseRepo, provideRunService)

func provideResponseRepo(db *gorm.DB) repositories.ResponseRepository {
	return repositories.NewResponseRepository(db)
}

func provideRunService(
	questionnaires services.QuestionnaireServiceInterface,
	responses repositories.ResponseRepository,
	cache *draft.Cache,
	cfg *config.Config,
	log *zap.Logger) services.RunServiceInterface {

	sessions := services.NewRunSessionRegistry(cfg.SessionIdleTTL, nil)
	return services.NewRunService(questionnaires, responses, cache, sessions, nil, log)
}
