package tasks

import (
	"context"
	"fmt"
	"time"
)

// newBridgeHealthTask creates the scheduled task that pings the tool server
// session. A failed ping only logs; the bridge stays up so !status can report
// the outage and operators can decide whether to restart.
func newBridgeHealthTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "bridge_health")

	return func(ctx context.Context) error {
		log.DebugContext(ctx, "Pinging tool server...")
		startTime := time.Now()

		err := deps.Bridge.Ping(ctx)

		duration := time.Since(startTime)

		if err != nil {
			log.WarnContext(ctx, "Tool server ping failed", "error", err, "duration", duration)

			return fmt.Errorf("tool server health check failed: %w", err)
		}

		log.InfoContext(ctx, "Tool server ping succeeded",
			"duration", duration,
			"tool_count", deps.Bridge.ToolCount())
		return nil
	}
}
