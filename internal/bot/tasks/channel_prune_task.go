package tasks

import (
	"context"
	"fmt"
	"time"
)

// newChannelPruneTask creates the scheduled task function that drops channel
// directory entries not seen within the configured retention window.
func newChannelPruneTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "channel_prune")
	retention := time.Duration(deps.Config.Scheduler.ChannelRetentionDays) * 24 * time.Hour

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled channel prune task...", "retention", retention)
		startTime := time.Now()

		pruned, err := deps.Channels.Prune(ctx, retention)

		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "Channel prune task failed", "error", err, "duration", duration)

			return fmt.Errorf("channel prune failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled channel prune task completed", "pruned", pruned, "duration", duration)
		return nil
	}
}
