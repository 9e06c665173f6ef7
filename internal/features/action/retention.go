package action

import (
	"context"
	"time"

	"wa-assist/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// RegisterRetentionJob purges delivery logs past the configured retention
// window every night, so the log viewer stays bounded.
func RegisterRetentionJob(lc fx.Lifecycle, logRepo DeliveryLogRepository, cfg *config.Config, logger *zap.Logger) {
	scheduler := cron.New()

	purge := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cutoff := time.Now().AddDate(0, 0, -cfg.LogRetentionDays)
		deleted, err := logRepo.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			logger.Error("delivery log purge failed", zap.Error(err))
			return
		}
		if deleted > 0 {
			logger.Info("purged old delivery logs", zap.Int64("deleted", deleted))
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if _, err := scheduler.AddFunc("0 3 * * *", purge); err != nil {
				return err
			}
			scheduler.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			scheduler.Stop()
			return nil
		},
	})
}
