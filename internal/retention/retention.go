package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"sparkchat/pkg/config"
	"sparkchat/pkg/logger"
	"sparkchat/pkg/store"
)

const defaultStatusTTL = 24 * time.Hour

// Start launches the status purge scheduler if retention is enabled.
// Returns a cancel func; a disabled config returns a no-op cancel.
func Start(ctx context.Context, cfg config.RetentionConfig) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}

	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = "0 * * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("retention_invalid_cron", "cron", cfg.Cron)
		return nil, fmt.Errorf("invalid retention cron expression: %s", cfg.Cron)
	}

	ttl := cfg.StatusTTL.Duration()
	if ttl <= 0 {
		ttl = defaultStatusTTL
	}

	logger.Info("retention_enabled", "cron", cronExpr, "status_ttl", ttl.String())
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr, ttl)
	return cancel, nil
}

// RunOnce performs a single purge pass, deleting statuses older than ttl.
func RunOnce(ttl time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-ttl).UnixNano()
	return store.PurgeStatusesBefore(cutoff)
}

// runScheduler computes the next cron tick via gronx and sleeps until it
// fires or the context is cancelled.
func runScheduler(ctx context.Context, cronExpr string, ttl time.Duration) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("retention_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			n, err := RunOnce(ttl)
			if err != nil {
				logger.Error("retention_run_error", "error", err)
				continue
			}
			logger.Info("retention_run_complete", "purged", n)
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		}
	}
}
