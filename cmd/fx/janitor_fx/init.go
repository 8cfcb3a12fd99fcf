package janitor_fx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"surveyor/internal/config"
	"surveyor/internal/services"
)

var Module = fx.Invoke(registerJanitor)

// registerJanitor drops idle editing and run sessions. Their drafts stay in
// the cache and are resumed on the next request.
func registerJanitor(lc fx.Lifecycle, cfg *config.Config, editor services.EditorServiceInterface, runs services.RunServiceInterface, log *zap.Logger) {
	interval := cfg.SessionIdleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}

	log = log.Named("janitor")
	stop := make(chan struct{})
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						if n := editor.Sweep() + runs.Sweep(); n > 0 {
							log.Debug("expired idle sessions", zap.Int("count", n))
						}
					case <-stop:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(stop)
			select {
			case <-done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}
