package draft_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"surveyor/internal/config"
	"surveyor/internal/draft"
	"surveyor/internal/infra"
	"surveyor/pkg/memcache"
)

var Module = fx.Provide(
	provideDraftStore, provideDraftCache)

// provideDraftStore uses Redis when REDIS_URL is set and an in-process map otherwise.
func provideDraftStore(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (draft.Store, error) {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set, drafts are kept in process memory")
		return memcache.NewStore(), nil
	}

	client, err := infra.InitRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	log.Info("draft store connected to Redis")
	return draft.NewRedisStore(client), nil
}

func provideDraftCache(store draft.Store, cfg *config.Config, log *zap.Logger) *draft.Cache {
	return draft.NewCache(store, cfg.DraftKeyPrefix, log)
}
