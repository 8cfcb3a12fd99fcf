package controllers_fx

import (
	"go.uber.org/fx"

	"surveyor/internal/api"
	"surveyor/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewQuestionnaireController),
	fx.Provide(controllers.NewDraftController),
	fx.Provide(controllers.NewRunController),
	fx.Provide(api.NewRouter))
