package config_fx

import (
	"go.uber.org/fx"

	"surveyor/internal/config"
)

var Module = fx.Provide(config.Load)
