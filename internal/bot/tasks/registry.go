package tasks

import (
	"context"
)

// ScheduledTaskFunc defines the standard signature for all scheduled tasks.
// The context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks initializes and returns a map of all registered scheduled tasks.
// The keys of the map are identifiers for the tasks (e.g., "sql_maintenance"),
// used for configuration lookup and logging.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := make(map[string]ScheduledTaskFunc)

	// The key (e.g., "sql_maintenance") must match the key used in the
	// config.yaml scheduler section.
	tasks["sql_maintenance"] = newSQLMaintenanceTask(deps)
	tasks["channel_prune"] = newChannelPruneTask(deps)

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
