package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"surveyor/cmd/fx/config_fx"
	"surveyor/cmd/fx/controllers_fx"
	"surveyor/cmd/fx/db_fx"
	"surveyor/cmd/fx/draft_fx"
	"surveyor/cmd/fx/janitor_fx"
	"surveyor/cmd/fx/logger_fx"
	"surveyor/cmd/fx/questionnaire_fx"
	"surveyor/cmd/fx/run_fx"
	"surveyor/internal/config"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),

		config_fx.Module,
		logger_fx.Module,
		db_fx.Module,
		draft_fx.Module,
		questionnaire_fx.Module,
		run_fx.Module,
		controllers_fx.Module,
		janitor_fx.Module,

		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("starting HTTP server", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}
